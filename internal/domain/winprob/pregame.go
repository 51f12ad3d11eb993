package winprob

import "math"

// DefaultStdDev is the standard deviation of the final home margin around
// the line.
const DefaultStdDev = 13.86

// PregameWinProbability is the home win probability, in percent, implied
// by the home line. The final margin is modeled as normal with mean -line,
// so a negative line favors the home team. Margins within half a point of
// zero count as a coin flip.
func PregameWinProbability(line, stddev float64) float64 {
	if !(stddev > 0) {
		stddev = DefaultStdDev
	}
	mean := -line
	cdf := func(x float64) float64 {
		return 0.5 * (1 + math.Erf((x-mean)/(stddev*math.Sqrt2)))
	}
	win := 1 - cdf(0.5)
	tie := cdf(0.5) - cdf(-0.5)
	return 100 * (win + 0.5*tie)
}
