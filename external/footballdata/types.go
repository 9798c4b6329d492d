package footballdata

type matchesEnvelope struct {
	// Pointer so an absent key can be told apart from an empty list.
	Matches *[]matchItem `json:"matches"`
}

type matchItem struct {
	ID          int64           `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Matchday    *int            `json:"matchday"`
	Stage       string          `json:"stage"`
	HomeTeam    teamItem        `json:"homeTeam"`
	AwayTeam    teamItem        `json:"awayTeam"`
	Score       scoreItem       `json:"score"`
	Competition competitionItem `json:"competition"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type scoreItem struct {
	Winner   string       `json:"winner"`
	Duration string       `json:"duration"`
	FullTime scoreSummary `json:"fullTime"`
	HalfTime scoreSummary `json:"halfTime"`
}

type scoreSummary struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type competitionItem struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Emblem string `json:"emblem"`
}
