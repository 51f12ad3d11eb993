// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Kind identifies which play grammar produced an Event.
type Kind int

// Event kinds in classifier priority order. Unparsed is the fallback.
const (
	KindFieldGoalAttempt Kind = iota
	KindJumpBall
	KindRebound
	KindShootingFoul
	KindFreeThrowAttempt
	KindSubstitution
	KindTurnover
	KindOffensiveFoul
	KindPersonalFoul
	KindLooseBallFoul
	KindAwayFromPlayFoul
	KindInboundFoul
	KindFlagrantFoul
	KindClearPathFoul
	KindTimeout
	KindTechnicalFoul
	KindDefensiveThreeSeconds
	KindViolation
	KindUnparsed
)

var kindNames = [...]string{
	KindFieldGoalAttempt:      "field_goal_attempt",
	KindJumpBall:              "jump_ball",
	KindRebound:               "rebound",
	KindShootingFoul:          "shooting_foul",
	KindFreeThrowAttempt:      "free_throw_attempt",
	KindSubstitution:          "substitution",
	KindTurnover:              "turnover",
	KindOffensiveFoul:         "offensive_foul",
	KindPersonalFoul:          "personal_foul",
	KindLooseBallFoul:         "loose_ball_foul",
	KindAwayFromPlayFoul:      "away_from_play_foul",
	KindInboundFoul:           "inbound_foul",
	KindFlagrantFoul:          "flagrant_foul",
	KindClearPathFoul:         "clear_path_foul",
	KindTimeout:               "timeout",
	KindTechnicalFoul:         "technical_foul",
	KindDefensiveThreeSeconds: "defensive_three_seconds",
	KindViolation:             "violation",
	KindUnparsed:              "unparsed",
}

// Kinds returns every kind in classifier priority order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		out = append(out, Kind(k))
	}
	return out
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// IsFoul reports whether the kind is one of the foul grammars.
func (k Kind) IsFoul() bool {
	switch k {
	case KindShootingFoul, KindOffensiveFoul, KindPersonalFoul, KindLooseBallFoul,
		KindAwayFromPlayFoul, KindInboundFoul, KindFlagrantFoul, KindClearPathFoul,
		KindTechnicalFoul, KindDefensiveThreeSeconds:
		return true
	default:
		return false
	}
}
