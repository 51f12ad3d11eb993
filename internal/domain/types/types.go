// Package types contains common types used across the application
package types

// Swing represents one play on the win-probability swing leaderboard
type Swing struct {
	Rank   int     `json:"rank"`
	GameID string  `json:"game_id"`
	Index  int     `json:"index"`
	Kind   string  `json:"kind"`
	Detail string  `json:"detail"`
	Team   string  `json:"team,omitempty"`
	WPA    float64 `json:"wpa"`
}
