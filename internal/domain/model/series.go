package model

import (
	"fmt"
	"strings"
)

// Winner is the game outcome from the home team's perspective.
type Winner string

// Possible outcomes.
const (
	WinnerHome Winner = "home"
	WinnerAway Winner = "away"
	WinnerTie  Winner = "tie"
)

// ParseWinner accepts home, away or tie (case-insensitive).
func ParseWinner(s string) (Winner, error) {
	w := Winner(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWinner, s)
	}
	return w, nil
}

// Valid reports whether w is one of the three outcomes.
func (w Winner) Valid() bool {
	return w == WinnerHome || w == WinnerAway || w == WinnerTie
}

// Terminal is the home win probability once the game is over.
func (w Winner) Terminal() float64 {
	switch w {
	case WinnerHome:
		return 100
	case WinnerAway:
		return 0
	default:
		return 50
	}
}

// WinProbabilitySeries holds the raw, corrected and added win probability
// of every play, index-aligned with the timeline. Values are home win
// probabilities in percent.
type WinProbabilitySeries struct {
	Raw       []float64 `json:"raw"`
	Corrected []float64 `json:"corrected"`
	WPA       []float64 `json:"wpa"`
}

// Len returns the number of plays covered.
func (s WinProbabilitySeries) Len() int { return len(s.WPA) }

// TotalWPA sums the added win probability over the game.
func (s WinProbabilitySeries) TotalWPA() float64 {
	var sum float64
	for _, v := range s.WPA {
		sum += v
	}
	return sum
}
