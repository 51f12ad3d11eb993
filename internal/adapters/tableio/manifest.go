package tableio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/pbpwpa/internal/adapters/pbptable"
	"github.com/okian/pbpwpa/internal/domain/model"
)

// ManifestEntry describes one game of a batch. Exactly one of Rows and
// HTML names the play source; WP optionally names a probability file
// that overrides the rows' home_wp column. Relative paths are resolved
// against the manifest's directory.
type ManifestEntry struct {
	ID     string  `koanf:"id"`
	Home   string  `koanf:"home"`
	Away   string  `koanf:"away"`
	Line   float64 `koanf:"line"`
	Winner string  `koanf:"winner"`
	Rows   string  `koanf:"rows"`
	HTML   string  `koanf:"html"`
	WP     string  `koanf:"wp"`
}

// Manifest is a batch of games.
type Manifest struct {
	Games []ManifestEntry `koanf:"games"`
}

// LoadManifest reads a YAML manifest. Entries without an id get a random
// one.
func LoadManifest(path string) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadManifest, path, err)
	}
	var m Manifest
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadManifest, path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Games {
		e := &m.Games[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if (e.Rows == "") == (e.HTML == "") {
			return nil, fmt.Errorf("%w: game %s: exactly one of rows and html is required", ErrBadManifest, e.ID)
		}
		if _, err := model.ParseWinner(e.Winner); err != nil {
			return nil, fmt.Errorf("%w: game %s: %w", ErrBadManifest, e.ID, err)
		}
		e.Rows = resolve(base, e.Rows)
		e.HTML = resolve(base, e.HTML)
		e.WP = resolve(base, e.WP)
	}
	return &m, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// LoadGame reads the files an entry points at into a Game.
func LoadGame(e *ManifestEntry) (model.Game, error) {
	winner, err := model.ParseWinner(e.Winner)
	if err != nil {
		return model.Game{}, err
	}
	g := model.Game{ID: e.ID, Home: e.Home, Away: e.Away, PregameLine: e.Line, Winner: winner}

	src := e.Rows
	if src == "" {
		src = e.HTML
	}
	f, err := os.Open(src)
	if err != nil {
		return model.Game{}, fmt.Errorf("game %s: %w", e.ID, err)
	}
	defer func() { _ = f.Close() }()

	if e.Rows != "" {
		g.Rows, err = ReadRows(f, e.Home, e.Away)
	} else {
		g.Rows, err = pbptable.Parse(f, e.Home, e.Away)
	}
	if err != nil {
		return model.Game{}, fmt.Errorf("game %s: %w", e.ID, err)
	}

	if e.WP != "" {
		wf, err := os.Open(e.WP)
		if err != nil {
			return model.Game{}, fmt.Errorf("game %s: %w", e.ID, err)
		}
		defer func() { _ = wf.Close() }()
		wp, err := ReadWP(wf)
		if err != nil {
			return model.Game{}, fmt.Errorf("game %s: %w", e.ID, err)
		}
		if err := ApplyWP(g.Rows, wp); err != nil {
			return model.Game{}, fmt.Errorf("game %s: %w", e.ID, err)
		}
	}
	return g, nil
}
