package simgames

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/pkg/logger"
)

// Game generation constants.
const (
	randomFloatDivisor = 1000000
	periodSeconds      = 720
	maxStep            = 6.0
	minWP              = 0.5
	maxWP              = 99.5
	maxLine            = 12.0
)

var (
	homePlayers = []string{"tatumja01", "brownja02", "horfoal01", "whitede01", "holidjr01"}
	awayPlayers = []string{"jamesle01", "davisan02", "reaveau01", "russeda01", "hachiru01"}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(s []string) string { return s[randomInt(len(s))] }

// generateGames creates config.NumGames games concurrently.
func generateGames(ctx context.Context, config *Config, stats *Stats) ([]model.Game, error) {
	logger.OrNop().Info(ctx, "generating games", logger.Int("numGames", config.NumGames))

	games := make([]model.Game, config.NumGames)
	if config.NumGames == 0 {
		return games, nil
	}
	type gameResult struct {
		index int
		game  model.Game
		err   error
	}
	resultChan := make(chan gameResult, config.NumGames)

	workerCount := minInt(config.Workers, config.NumGames)
	perWorker := config.NumGames / workerCount
	for w := 0; w < workerCount; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == workerCount-1 {
			end = config.NumGames
		}
		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- gameResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- gameResult{index: i, game: generateGame(config)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumGames; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during game generation: %w", ctx.Err())
		case r := <-resultChan:
			if r.err != nil {
				return nil, fmt.Errorf("failed to generate game %d: %w", r.index, r.err)
			}
			games[r.index] = r.game
		}
	}

	stats.GamesGenerated = len(games)
	for i := range games {
		stats.Plays += len(games[i].Rows)
	}
	return games, nil
}

// generateGame builds one game: provider-style descriptions, clocks that
// restart at zero every period, and a random walk of home win probability.
func generateGame(config *Config) model.Game {
	g := model.Game{
		ID:          uuid.NewString(),
		Home:        "BOS",
		Away:        "LAL",
		PregameLine: (getRandomFloat()*2 - 1) * maxLine,
	}

	wp := 50.0
	for period := 1; period <= config.Periods; period++ {
		step := periodSeconds / (config.PlaysPerPeriod + 1)
		for k := 0; k < config.PlaysPerPeriod; k++ {
			secs := k * step
			home := randomInt(2) == 0
			desc := randomDescription(home)
			switch {
			case period == 1 && k == 0:
				desc, home = "Jump ball: "+pick(awayPlayers)+" vs. "+pick(homePlayers), false
			case getRandomFloat() < config.TimeoutRate:
				desc = timeoutDescription(home)
			}

			wp = clamp(wp+(getRandomFloat()*2-1)*maxStep, minWP, maxWP)
			row := model.RawPlayRow{
				Description:    desc,
				SecsIntoPeriod: secs,
				IsHomePlay:     home,
				Home:           g.Home,
				Away:           g.Away,
				Period:         period,
			}
			if getRandomFloat() >= config.MissingRate {
				v := wp
				row.HomeWP = &v
			}
			g.Rows = append(g.Rows, row)
		}
	}

	switch {
	case wp > 50:
		g.Winner = model.WinnerHome
	case wp < 50:
		g.Winner = model.WinnerAway
	default:
		g.Winner = model.WinnerTie
	}
	return g
}

func randomDescription(home bool) string {
	players, others := awayPlayers, homePlayers
	if home {
		players, others = homePlayers, awayPlayers
	}
	p := pick(players)
	switch randomInt(8) {
	case 0:
		return p + " makes 2-pt jump shot from " + strconv.Itoa(8+randomInt(14)) + " ft"
	case 1:
		return p + " misses 3-pt jump shot from " + strconv.Itoa(23+randomInt(6)) + " ft"
	case 2:
		return p + " makes 3-pt jump shot from 25 ft (assist by " + pick(players) + ")"
	case 3:
		return "Defensive rebound by " + p
	case 4:
		return "Offensive rebound by " + p
	case 5:
		return "Turnover by " + p + " (bad pass; steal by " + pick(others) + ")"
	case 6:
		return p + " makes free throw 1 of 2"
	default:
		return "Shooting foul by " + p + " (drawn by " + pick(others) + ")"
	}
}

func timeoutDescription(home bool) string {
	switch {
	case randomInt(4) == 0:
		return "Official timeout"
	case home:
		return "BOS full timeout"
	default:
		return "LAL full timeout"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
