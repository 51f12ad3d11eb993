// Package pbptable reads a stored provider play-by-play page into rows.
//
// The page holds one table whose data rows have either two cells (clock
// and a neutral description such as a jump ball or a period marker) or six
// cells (clock, away play, away points, score, home points, home play).
package pbptable

import (
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/pbpwpa/internal/domain/model"
)

const (
	regulationPeriods = 4
	regulationSecs    = 12 * 60
	overtimeSecs      = 5 * 60
)

var (
	clockRE = regexp.MustCompile(`^(\d+):(\d+)\.(\d+)`)
	scoreRE = regexp.MustCompile(`^(\d+)-(\d+)`)
)

// Parse reads the last play-by-play table in r. Rows are returned in page
// order with home and away set on each. The first play of every period has
// SecsIntoPeriod 0; later plays have at least 1, so 0 always marks a
// period start. Player links are replaced by the player's provider id.
func Parse(r io.Reader, home, away string) ([]model.RawPlayRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.stats_table").Last()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	p := &pageState{period: 1, periodStart: true, home: home, away: away}
	var rowErr error
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return true
		}
		if err := p.row(cells); err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return p.rows, nil
}

type pageState struct {
	period      int
	periodStart bool
	awayScore   int
	homeScore   int
	home, away  string
	rows        []model.RawPlayRow
}

func (p *pageState) row(cells *goquery.Selection) error {
	clock := strings.TrimSpace(cells.Eq(0).Text())

	switch cells.Length() {
	case 2:
		text := strings.TrimSpace(cells.Eq(1).Text())
		switch {
		case strings.HasPrefix(text, "End of "):
			p.period++
			p.periodStart = true
			return nil
		case strings.HasPrefix(text, "Jump ball: "):
			return p.add(clock, Flatten(cells.Eq(1)), false)
		default:
			// "Start of ..." and other markers are not plays.
			return nil
		}

	case 6:
		awayText := strings.TrimSpace(cells.Eq(1).Text())
		homeText := strings.TrimSpace(cells.Eq(5).Text())
		m := scoreRE.FindStringSubmatch(strings.TrimSpace(cells.Eq(3).Text()))
		if m == nil {
			return fmt.Errorf("%w: %q", ErrBadScore, cells.Eq(3).Text())
		}
		isHome := homeText != ""
		desc := ""
		switch {
		case isHome:
			desc = Flatten(cells.Eq(5))
		case awayText != "":
			desc = Flatten(cells.Eq(1))
		}
		// An empty desc keeps the slot as unparsable. The row carries the
		// score entering the play; the cell's score applies from the next row.
		err := p.add(clock, desc, isHome)
		p.awayScore, _ = strconv.Atoi(m[1])
		p.homeScore, _ = strconv.Atoi(m[2])
		return err

	default:
		return fmt.Errorf("%w: %d cells", ErrUnexpectedRow, cells.Length())
	}
}

func (p *pageState) add(clock, desc string, isHome bool) error {
	secs, err := SecsIntoPeriod(clock, p.period)
	if err != nil {
		return err
	}
	if p.periodStart {
		secs = 0
		p.periodStart = false
	} else if secs == 0 {
		secs = 1
	}
	p.rows = append(p.rows, model.RawPlayRow{
		Description:    desc,
		SecsIntoPeriod: secs,
		IsHomePlay:     isHome,
		Home:           p.home,
		Away:           p.away,
		Period:         p.period,
		Clock:          clock,
		HomeScore:      p.homeScore,
		AwayScore:      p.awayScore,
	})
	return nil
}

// SecsIntoPeriod converts a remaining-time clock "M:SS.t" into whole
// seconds elapsed in period, rounding up partial seconds. Periods one to
// four last twelve minutes, overtimes five.
func SecsIntoPeriod(clock string, period int) (int, error) {
	m := clockRE.FindStringSubmatch(strings.TrimSpace(clock))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	mins, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	tenths, _ := strconv.Atoi(m[3][:1])

	length := regulationSecs
	if period > regulationPeriods {
		length = overtimeSecs
	}
	remaining := (mins*60+secs)*10 + tenths
	elapsed := length*10 - remaining
	if elapsed < 0 {
		return 0, fmt.Errorf("%w: %q exceeds period %d", ErrBadClock, clock, period)
	}
	return (elapsed + 9) / 10, nil
}

// Flatten returns the text of sel with every player link replaced by the
// provider id taken from its href ("/players/j/jamesle01.html" becomes
// "jamesle01"). Whitespace is collapsed.
func Flatten(sel *goquery.Selection) string {
	var b strings.Builder
	flattenInto(&b, sel.Contents())
	return strings.Join(strings.Fields(b.String()), " ")
}

func flattenInto(b *strings.Builder, nodes *goquery.Selection) {
	nodes.Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "a" {
			if href, ok := n.Attr("href"); ok && href != "" {
				b.WriteString(strings.TrimSuffix(path.Base(href), path.Ext(href)))
				return
			}
		}
		if n.Children().Length() > 0 {
			flattenInto(b, n.Contents())
			return
		}
		b.WriteString(n.Text())
	})
}
