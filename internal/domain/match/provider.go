package match

import "context"

// Provider fetches the fixtures of one calendar date in source order.
type Provider interface {
	FetchByDate(ctx context.Context, date string) ([]Fixture, error)
}

// Prober exposes the raw upstream response for diagnostics.
type Prober interface {
	Probe(ctx context.Context) (status int, body []byte, err error)
}
