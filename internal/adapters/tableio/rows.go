// Package tableio reads game inputs from files and writes enriched tables.
package tableio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pbpwpa/internal/domain/model"
)

// Row file columns.
const (
	ColDescription = "description"
	ColSecs        = "secs_into_period"
	ColIsHome      = "is_home_play"
	ColHomeWP      = "home_wp"
	ColPeriod      = "period"
)

// ReadRows reads a CSV of plays with a header naming at least description,
// secs_into_period and is_home_play. Optional home_wp and period columns
// are used when present; an empty home_wp cell means no value.
func ReadRows(r io.Reader, home, away string) ([]model.RawPlayRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{ColDescription, ColSecs, ColIsHome} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var rows []model.RawPlayRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(name string) (string, bool) {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return "", false
			}
			return strings.TrimSpace(rec[i]), true
		}

		desc, _ := cell(ColDescription)
		row := model.RawPlayRow{Description: desc, Home: home, Away: away}

		secs, _ := cell(ColSecs)
		if row.SecsIntoPeriod, err = strconv.Atoi(secs); err != nil || row.SecsIntoPeriod < 0 {
			return nil, fmt.Errorf("%w: line %d: %s %q", ErrBadValue, line, ColSecs, secs)
		}
		isHome, _ := cell(ColIsHome)
		if row.IsHomePlay, err = strconv.ParseBool(isHome); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s %q", ErrBadValue, line, ColIsHome, isHome)
		}
		if v, ok := cell(ColHomeWP); ok && v != "" {
			wp, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s %q", ErrBadValue, line, ColHomeWP, v)
			}
			row.HomeWP = &wp
		}
		if v, ok := cell(ColPeriod); ok && v != "" {
			if row.Period, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %s %q", ErrBadValue, line, ColPeriod, v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadWP reads one home win probability per line. A blank line is a
// missing value and becomes NaN.
func ReadWP(r io.Reader) ([]float64, error) {
	var out []float64
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			out = append(out, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadValue, line, text)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read win probabilities: %w", err)
	}
	return out, nil
}

// ApplyWP sets each row's HomeWP from wp, which must be aligned with rows.
// NaN entries leave the row without a value.
func ApplyWP(rows []model.RawPlayRow, wp []float64) error {
	if len(wp) != len(rows) {
		return fmt.Errorf("%w: %d win probabilities for %d rows", ErrBadValue, len(wp), len(rows))
	}
	for i := range rows {
		if math.IsNaN(wp[i]) {
			rows[i].HomeWP = nil
			continue
		}
		v := wp[i]
		rows[i].HomeWP = &v
	}
	return nil
}
