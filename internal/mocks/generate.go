package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/match --output domain/match --outpkg matchmock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Prober --dir ../domain/match --output domain/match --outpkg matchmock --filename prober_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MatchRefresher --dir ../usecase --output usecase --outpkg usecasemock --filename match_refresher_mock.go
