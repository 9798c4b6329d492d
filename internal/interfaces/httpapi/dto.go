package httpapi

import (
	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/usecase"
)

// matchRecordResponse keeps the field names the front-end already reads.
type matchRecordResponse struct {
	Team1       string  `json:"team1"`
	Team2       string  `json:"team2"`
	Team1Logo   string  `json:"team1_logo"`
	Team2Logo   string  `json:"team2_logo"`
	Time        string  `json:"time"`
	Status      string  `json:"status"`
	IsLive      bool    `json:"is_live"`
	Score       string  `json:"score"`
	Competition string  `json:"competition"`
	StreamURL   *string `json:"stream_url"`
	HasStream   bool    `json:"has_stream"`
}

type matchDayResponse struct {
	Date    string                `json:"date"`
	Matches []matchRecordResponse `json:"matches"`
}

type streamResponse struct {
	Key      string `json:"key"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Provider string `json:"provider"`
	StreamID int64  `json:"stream_id"`
	URL      string `json:"url"`
}

type testAPIResponse struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

func toMatchRecordResponses(records []match.Record) []matchRecordResponse {
	out := make([]matchRecordResponse, 0, len(records))
	for _, r := range records {
		item := matchRecordResponse{
			Team1:       r.HomeTeam,
			Team2:       r.AwayTeam,
			Team1Logo:   r.HomeCrest,
			Team2Logo:   r.AwayCrest,
			Time:        r.KickoffClock(),
			Status:      r.Status,
			IsLive:      match.IsLiveStatus(r.Status),
			Score:       r.Score(),
			Competition: r.Competition,
			HasStream:   r.HasStream,
		}
		if r.HasStream {
			url := r.StreamURL
			item.StreamURL = &url
		}
		out = append(out, item)
	}
	return out
}

func toMatchDayResponses(days []match.Day) []matchDayResponse {
	out := make([]matchDayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, matchDayResponse{
			Date:    d.Date,
			Matches: toMatchRecordResponses(d.Matches),
		})
	}
	return out
}

func toStreamResponses(links []usecase.StreamLink) []streamResponse {
	out := make([]streamResponse, 0, len(links))
	for _, l := range links {
		out = append(out, streamResponse{
			Key:      l.Entry.Key(),
			HomeTeam: l.Entry.HomeTeam,
			AwayTeam: l.Entry.AwayTeam,
			Provider: string(l.Entry.Provider),
			StreamID: l.Entry.StreamID,
			URL:      l.URL,
		})
	}
	return out
}
