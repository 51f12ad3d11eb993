package model

import (
	"math"
	"time"
)

// Game is the input for one game: its rows plus the context the win
// probability correction needs.
type Game struct {
	ID          string       `json:"id"`
	Home        string       `json:"home"`
	Away        string       `json:"away"`
	PregameLine float64      `json:"pregame_line"`
	Winner      Winner       `json:"winner"`
	Rows        []RawPlayRow `json:"rows"`
}

// RawWP returns the per-row home win probability, NaN where a row has none.
// ok is false when no row carries a probability.
func (g *Game) RawWP() (wp []float64, ok bool) {
	wp = make([]float64, len(g.Rows))
	for i := range g.Rows {
		if g.Rows[i].HomeWP == nil {
			wp[i] = math.NaN()
			continue
		}
		wp[i] = *g.Rows[i].HomeWP
		ok = true
	}
	return wp, ok
}

// GameJob is the payload flowing through the work queue. Done, when set,
// receives exactly one outcome.
type GameJob struct {
	Game       Game
	EnqueuedAt time.Time
	Done       chan<- JobOutcome
}

// JobOutcome reports how a queued game finished.
type JobOutcome struct {
	GameID string
	Result *GameResult
	Err    error
}

// GameResult is the enriched output for one game.
type GameResult struct {
	GameID      string                `json:"game_id"`
	Home        string                `json:"home"`
	Away        string                `json:"away"`
	Winner      Winner                `json:"winner"`
	Timeline    Timeline              `json:"timeline"`
	Series      *WinProbabilitySeries `json:"series,omitempty"`
	Table       []TablePlay           `json:"table"`
	Unparsed    int                   `json:"unparsed"`
	ProcessedAt time.Time             `json:"processed_at"`
}

// TablePlay is one flat output row keyed by play index.
type TablePlay struct {
	Index          int      `json:"index"`
	Period         int      `json:"period,omitempty"`
	SecsIntoPeriod int      `json:"secs_into_period"`
	Kind           Kind     `json:"kind"`
	Detail         string   `json:"detail"`
	IsHomePlay     bool     `json:"is_home_play"`
	Team           string   `json:"team,omitempty"`
	Opp            string   `json:"opp,omitempty"`
	Payload        Payload  `json:"payload"`
	RawWP          *float64 `json:"raw_wp,omitempty"`
	CorrectedWP    *float64 `json:"corrected_wp,omitempty"`
	WPA            *float64 `json:"wpa,omitempty"`
}
