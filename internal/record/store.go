// Package record reads and writes the staged TOML files that chain the
// pipeline stages together: machine-extracted, human-verified, and
// georeferenced marker records.
package record

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/chanot/cadastre/internal/config"
	"github.com/chanot/cadastre/internal/deed"
)

// Stage identifies one of the chained record files of a document.
type Stage string

const (
	// StageRaw holds the machine-extracted records (<base>_OCR.toml).
	StageRaw Stage = "OCR"
	// StageVerified holds the human-reviewed records
	// (<base>_OCRedit.toml).
	StageVerified Stage = "OCRedit"
	// StageFinal holds the transformed WGS84 UTM records
	// (<base>_W84UTM.toml).
	StageFinal Stage = "W84UTM"
)

// ErrNotFound reports a record stage that does not exist for the
// document.
var ErrNotFound = errors.New("record stage not found")

// Path returns the stage file path for a document base (the document
// path without its role suffix, e.g. "survey/p08/p08").
func (s Stage) Path(base string) string {
	return fmt.Sprintf("%s_%s.toml", base, s)
}

// Store reads and writes staged record files. Writes are always whole
// file overwrites.
type Store struct {
	cfg *config.Config
}

// NewStore returns a store stamping the configured office and survey
// metadata into every record it writes.
func NewStore(cfg *config.Config) *Store {
	return &Store{cfg: cfg}
}

// Write renders the parcel to the stage file for the document base and
// returns the written path.
func (s *Store) Write(stage Stage, base string, p *deed.Parcel) (string, error) {
	path := stage.Path(base)
	content := s.render(p)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s stage: %w", stage, err)
	}
	slog.Debug("wrote record stage", "stage", string(stage), "path", path, "markers", len(p.Markers))
	return path, nil
}

// Read loads the parcel from the stage file for the document base.
//
// Reading the verified stage when only the raw stage exists copies the
// raw content forward as the initial verified file, so review always
// starts from the machine-generated baseline.
func (s *Store) Read(stage Stage, base string) (*deed.Parcel, error) {
	path := stage.Path(base)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && stage == StageVerified {
		data, err = s.copyForward(base)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s for %s: %w", stage, base, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s stage: %w", stage, err)
	}
	return s.decode(base, data)
}

// copyForward duplicates the raw stage as the initial verified stage.
func (s *Store) copyForward(base string) ([]byte, error) {
	data, err := os.ReadFile(StageRaw.Path(base))
	if err != nil {
		return nil, err
	}
	path := StageVerified.Path(base)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("seeding verified stage: %w", err)
	}
	slog.Info("seeded verified stage from raw records", "path", path)
	return data, nil
}

// recordFile mirrors the on-disk stage layout.
type recordFile struct {
	Meta struct {
		DOLOffice string `toml:"DOL_Office"`
	} `toml:"META"`
	Deed struct {
		ParcelNumber  string `toml:"ParcelNumber"`
		MapSheet      string `toml:"MapSheet"`
		SurveyType    string `toml:"Survey_Type"`
		EPSG          any    `toml:"EPSG"`
		Unit          string `toml:"unit"`
		PolygonClosed bool   `toml:"polygon_closed"`
		Marker        [][]any `toml:"marker"`
	} `toml:"Deed"`
}

func (s *Store) decode(base string, data []byte) (*deed.Parcel, error) {
	var rf recordFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing record file: %w", err)
	}

	epsg := s.cfg.EPSG
	switch v := rf.Deed.EPSG.(type) {
	case int64:
		epsg = int(v)
	case float64:
		epsg = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			epsg = n
		}
	}

	p := &deed.Parcel{
		// Stage bases come from the cropped table image name.
		SourceFile: filepath.Base(base) + "_table.jpg",
		EPSG:       epsg,
		Closed:     rf.Deed.PolygonClosed,
	}
	for _, row := range rf.Deed.Marker {
		if len(row) < 5 {
			continue
		}
		northing, okN := asFloat(row[3])
		easting, okE := asFloat(row[4])
		if !okN || !okE {
			slog.Warn("dropping marker row with unparseable coordinates",
				"base", base, "row", row)
			continue
		}
		seq, _ := asFloat(row[0])
		m := deed.Marker{
			Sequence: int(seq),
			Label:    asString(row[1]),
			Name:     asString(row[2]),
			Northing: northing,
			Easting:  easting,
		}
		p.Markers = append(p.Markers, m)
	}
	return p, nil
}

// asFloat accepts the numeric TOML forms plus quoted numbers, which
// hand-edited stage files sometimes carry.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// render produces the stage file content. The layout is templated
// instead of marshalled: surveyors edit these files by hand, so key
// order and the inline marker rows must stay byte-stable.
func (s *Store) render(p *deed.Parcel) string {
	var b strings.Builder
	b.WriteString("[META]\n")
	fmt.Fprintf(&b, "DOL_Office = %q\n", s.cfg.Office)
	b.WriteString("\n[Deed]\n")
	b.WriteString("ParcelNumber = \"000\"\n")
	b.WriteString("MapSheet = \"DDDD-II-DDDD\"\n")
	fmt.Fprintf(&b, "Survey_Type = %q\n", s.cfg.SurveyType)
	fmt.Fprintf(&b, "EPSG = %d\n", p.EPSG)
	fmt.Fprintf(&b, "unit = %q\n", s.cfg.Unit)
	b.WriteString("area_grid = \"rai-ngan-wa\"\n")
	b.WriteString("area_topo = \"rai-ngan-wa\"\n")
	fmt.Fprintf(&b, "polygon_closed = %t\n", p.Closed)
	b.WriteString("marker = [\n")
	for _, m := range p.Markers {
		fmt.Fprintf(&b, "  [%d, %q, %q, %.3f, %.3f],\n",
			m.Sequence, m.Label, m.Name, m.Northing, m.Easting)
	}
	b.WriteString("]\n")
	return b.String()
}

// Discover walks the folder for documents that have a raw or verified
// stage and returns their sorted, de-duplicated base paths.
func Discover(root string) ([]string, error) {
	seen := make(map[string]struct{})
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".toml") {
			return nil
		}
		for _, stage := range []Stage{StageVerified, StageRaw} {
			suffix := fmt.Sprintf("_%s.toml", stage)
			if strings.HasSuffix(path, suffix) {
				seen[strings.TrimSuffix(path, suffix)] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering record files under %s: %w", root, err)
	}

	bases := make([]string, 0, len(seen))
	for base := range seen {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	return bases, nil
}
