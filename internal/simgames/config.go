// Package simgames generates synthetic games, runs them through the
// pipeline in-process and checks the corrected series of every game.
package simgames

import (
	"runtime"
	"time"
)

// Config holds configuration for a synthetic run.
type Config struct {
	NumGames       int           // Number of games to generate
	PlaysPerPeriod int           // Plays generated per period
	Periods        int           // Periods per game, overtime included
	TimeoutRate    float64       // Chance that a play is a timeout
	MissingRate    float64       // Chance that a row has no win probability
	Workers        int           // Service worker count
	TopN           int           // Number of top swings to report
	Timeout        time.Duration // Overall deadline for the batch
	OutputFile     string        // Optional JSON dump of the generated games
	Verbose        bool          // Log every violation
}

// Defaults for a synthetic run.
const (
	DefaultPeriods        = 4
	DefaultPlaysPerPeriod = 100
)

func (c *Config) applyDefaults() {
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.Periods < 1 {
		c.Periods = DefaultPeriods
	}
	if c.PlaysPerPeriod < 1 {
		c.PlaysPerPeriod = DefaultPlaysPerPeriod
	}
}

// Stats holds run statistics.
type Stats struct {
	GamesGenerated int
	GamesSucceeded int
	GamesFailed    int
	GamesInvalid   int
	Plays          int
	Timeouts       int
	Violations     int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
