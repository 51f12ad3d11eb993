package model

import "fmt"

// Event is one classified play. Team and Opp are empty when the grammar
// does not define them (jump balls, substitutions, most technicals and
// every unparsed play).
type Event struct {
	Kind       Kind    `json:"kind"`
	Detail     string  `json:"detail"`
	Home       string  `json:"home"`
	Away       string  `json:"away"`
	IsHomePlay bool    `json:"is_home_play"`
	Team       string  `json:"team,omitempty"`
	Opp        string  `json:"opp,omitempty"`
	Payload    Payload `json:"payload"`
}

// Validate checks that the payload is present and matches Kind.
func (e *Event) Validate() error {
	if e.Payload == nil {
		return fmt.Errorf("%w: %s", ErrMissingPayload, e.Kind)
	}
	if e.Payload.Kind() != e.Kind {
		return fmt.Errorf("%w: kind %s, payload %s", ErrKindMismatch, e.Kind, e.Payload.Kind())
	}
	return nil
}

// IsTimeout reports whether the event is a timeout of any kind.
func (e *Event) IsTimeout() bool { return e.Kind == KindTimeout }

// IsUnparsed reports whether no grammar matched the description.
func (e *Event) IsUnparsed() bool { return e.Kind == KindUnparsed }

// HasAttribution reports whether the classifier resolved a team for the event.
func (e *Event) HasAttribution() bool { return e.Team != "" }

// RawPlayRow is one row of the provider's play-by-play table. An empty
// Description is the explicit sentinel for an unparsable cell.
type RawPlayRow struct {
	Description    string   `json:"description"`
	SecsIntoPeriod int      `json:"secs_into_period"`
	IsHomePlay     bool     `json:"is_home_play"`
	Home           string   `json:"home"`
	Away           string   `json:"away"`
	HomeWP         *float64 `json:"home_wp,omitempty"`

	// Filled by the table adapter when available.
	Period    int    `json:"period,omitempty"`
	Clock     string `json:"clock,omitempty"`
	// HomeScore and AwayScore are the score entering the play, matching
	// HomeWP.
	HomeScore int    `json:"home_score,omitempty"`
	AwayScore int    `json:"away_score,omitempty"`
}

// IsPeriodStart reports whether the row is the first play of a period.
func (r *RawPlayRow) IsPeriodStart() bool { return r.SecsIntoPeriod == 0 }

// Play is an Event positioned in its game. Team and Opp hold the
// attribution after neighbour filling; Event.Team/Opp keep the
// classifier's own resolution.
type Play struct {
	Index          int    `json:"index"`
	SecsIntoPeriod int    `json:"secs_into_period"`
	Period         int    `json:"period,omitempty"`
	Team           string `json:"team,omitempty"`
	Opp            string `json:"opp,omitempty"`
	Event          Event  `json:"event"`
}

// Timeline is the ordered play sequence of one game, index-aligned with
// the input rows.
type Timeline struct {
	Plays []Play `json:"plays"`
}

// Len returns the number of plays.
func (t Timeline) Len() int { return len(t.Plays) }

// Unparsed returns the indexes of plays no grammar matched.
func (t Timeline) Unparsed() []int {
	var out []int
	for i := range t.Plays {
		if t.Plays[i].Event.IsUnparsed() {
			out = append(out, i)
		}
	}
	return out
}

// CountByKind tallies plays per kind.
func (t Timeline) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for i := range t.Plays {
		out[t.Plays[i].Event.Kind]++
	}
	return out
}
