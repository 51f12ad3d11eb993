// Package classify turns provider play descriptions into typed events.
//
// Classification runs in two phases. Parse depends only on the text and is
// safe to memoize by description; Resolve attributes the parsed payload to
// the home or away side of the row.
package classify

import (
	"strings"

	"github.com/okian/pbpwpa/internal/domain/model"
)

// Parser maps a description to its payload.
type Parser interface {
	Parse(description string) model.Payload
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(description string) model.Payload

// Parse calls f(description).
func (f ParserFunc) Parse(description string) model.Payload { return f(description) }

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithParser replaces the rule cascade, typically with a caching parser.
func WithParser(p Parser) Option {
	return func(c *Classifier) {
		if p != nil {
			c.parser = p
		}
	}
}

// Classifier classifies rows. The zero value is not usable; call New.
type Classifier struct {
	parser Parser
}

// New creates a Classifier backed by the rule cascade.
func New(opts ...Option) *Classifier {
	c := &Classifier{parser: ParserFunc(Parse)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify parses and attributes one description. It never fails:
// descriptions no grammar matches come back as model.KindUnparsed.
func (c *Classifier) Classify(description, home, away string, isHomePlay bool) model.Event {
	return Resolve(c.parser.Parse(description), description, home, away, isHomePlay)
}

// Classify runs the default rule cascade without caching.
func Classify(description, home, away string, isHomePlay bool) model.Event {
	return Resolve(Parse(description), description, home, away, isHomePlay)
}

// Normalize trims the description and collapses inner whitespace. Parse
// applies it first, so it is also a safe cache key.
func Normalize(description string) string {
	return strings.Join(strings.Fields(description), " ")
}

// Parse runs the rule cascade over the normalized description.
func Parse(description string) model.Payload {
	text := Normalize(description)
	if text == "" {
		return model.Unparsed{Text: description}
	}
	for i := range rules {
		r := &rules[i]
		c, ok := match(r.re, text)
		if !ok {
			continue
		}
		if p, ok := r.build(c); ok {
			return p
		}
	}
	return model.Unparsed{Text: description}
}

// Resolve builds the event for a parsed payload, deriving team, opponent
// and the side fields of the payload from isHomePlay.
func Resolve(p model.Payload, description, home, away string, isHomePlay bool) model.Event {
	e := model.Event{
		Detail:     description,
		Home:       home,
		Away:       away,
		IsHomePlay: isHomePlay,
	}
	side, other := away, home
	if isHomePlay {
		side, other = home, away
	}

	switch v := p.(type) {
	case model.FieldGoalAttempt, model.ShootingFoul, model.FreeThrowAttempt, model.Turnover:
		e.Team, e.Opp = side, other
	case model.JumpBall:
		// neither side is attributed
	case model.Rebound:
		v.ReboundTeam = side
		if v.Offensive {
			e.Team, e.Opp = side, other
		} else {
			e.Team, e.Opp = other, side
		}
		p = v
	case model.Substitution:
		v.SubTeam = side
		p = v
	case model.OffensiveFoul:
		e.Team, e.Opp = side, other
		v.FoulTeam = e.Team
		p = v
	case model.PersonalFoul:
		e.Team, e.Opp = other, side
		v.FoulTeam = e.Team
		p = v
	case model.LooseBallFoul:
		v.FoulTeam = side
		p = v
	case model.AwayFromPlayFoul:
		e.Team, e.Opp = other, side
		v.FoulTeam = e.Team
		p = v
	case model.InboundFoul:
		e.Team, e.Opp = other, side
		v.FoulTeam = e.Team
		p = v
	case model.FlagrantFoul:
		v.FoulTeam = side
		p = v
	case model.ClearPathFoul:
		e.Team, e.Opp = other, side
		v.FoulTeam = e.Team
		p = v
	case model.Timeout:
		e.Team, e.Opp = side, other
		if !v.IsOfficial() {
			v.TimeoutTeam = side
		}
		p = v
	case model.TechnicalFoul:
		v.FoulTeam = side
		p = v
	case model.DefensiveThreeSeconds:
		v.FoulTeam = side
		p = v
	case model.Violation:
		v.ViolationTeam = side
		p = v
	case model.Unparsed:
		v.Text = description
		p = v
	default:
		p = model.Unparsed{Text: description}
	}

	e.Kind = p.Kind()
	e.Payload = p
	return e
}
