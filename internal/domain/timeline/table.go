package timeline

import (
	"fmt"

	"github.com/okian/pbpwpa/internal/domain/model"
)

// Enrich flattens the timeline into output rows keyed by play index. The
// probability columns are filled when series is non-nil, which must then
// be aligned with the timeline.
func Enrich(tl model.Timeline, series *model.WinProbabilitySeries) ([]model.TablePlay, error) {
	if series != nil {
		n := tl.Len()
		if len(series.Raw) != n || len(series.Corrected) != n || len(series.WPA) != n {
			return nil, fmt.Errorf("%w: %d plays, series of %d/%d/%d", model.ErrMisalignedTable,
				n, len(series.Raw), len(series.Corrected), len(series.WPA))
		}
	}

	out := make([]model.TablePlay, tl.Len())
	for i := range tl.Plays {
		p := &tl.Plays[i]
		row := model.TablePlay{
			Index:          p.Index,
			Period:         p.Period,
			SecsIntoPeriod: p.SecsIntoPeriod,
			Kind:           p.Event.Kind,
			Detail:         p.Event.Detail,
			IsHomePlay:     p.Event.IsHomePlay,
			Team:           p.Team,
			Opp:            p.Opp,
			Payload:        p.Event.Payload,
		}
		if series != nil {
			raw, corrected, wpa := series.Raw[i], series.Corrected[i], series.WPA[i]
			row.RawWP, row.CorrectedWP, row.WPA = &raw, &corrected, &wpa
		}
		out[i] = row
	}
	return out, nil
}
