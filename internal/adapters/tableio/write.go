package tableio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/pbpwpa/internal/domain/model"
)

var csvHeader = []string{
	"index", "period", "secs_into_period", "kind", "team", "opp", "is_home_play",
	"detail", "raw_wp", "corrected_wp", "wpa", "payload",
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteCSV writes one line per play. The payload column holds the
// kind-specific attributes as JSON; probability columns are empty when the
// game had no series.
func WriteCSV(w io.Writer, table []model.TablePlay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for i := range table {
		p := &table[i]
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("write csv: play %d: %w", p.Index, err)
		}
		rec := []string{
			strconv.Itoa(p.Index),
			strconv.Itoa(p.Period),
			strconv.Itoa(p.SecsIntoPeriod),
			p.Kind.String(),
			p.Team,
			p.Opp,
			strconv.FormatBool(p.IsHomePlay),
			p.Detail,
			formatOpt(p.RawWP),
			formatOpt(p.CorrectedWP),
			formatOpt(p.WPA),
			string(payload),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
