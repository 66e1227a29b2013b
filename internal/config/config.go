// Package config loads and validates the per-survey configuration file
// that every pipeline component receives at construction time.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEPSG is the display default applied when a survey folder does
// not name its source reference system. Identity fields (office,
// survey type) have no such default and must be configured.
const DefaultEPSG = 24047

// Config is the process-wide survey configuration. It is read once at
// startup and treated as immutable afterwards.
type Config struct {
	// Office is the land office the deeds belong to (META.DOL_Office).
	Office string

	// SurveyType names the survey method recorded on the deed
	// (Deed.Survey_Type).
	SurveyType string

	// EPSG is the default source reference system for marker
	// coordinates (Deed.EPSG).
	EPSG int

	// ToWGS84 is the optional 3-parameter datum shift aligning the
	// legacy Indian 1975 zones with WGS84 (META.towgs84).
	ToWGS84 []float64

	// ColumnSpec names the fields of extracted marker records
	// (META.COLUMN_SPEC): 3 entries for marker/northing/easting, 5 when
	// sequence and label columns are explicit.
	ColumnSpec []string

	// Unit is the coordinate unit recorded in stage files.
	Unit string

	// ViewScale is the initial zoom used by the review tooling
	// (RV25J_CENTER.view_scale); carried through for the side channel.
	ViewScale float64

	// LogLevel and Verbose control slog output.
	LogLevel string
	Verbose  bool
}

// Validate checks the configuration for the fatal conditions of a
// misconfigured run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Office) == "" {
		return fmt.Errorf("missing or empty META.DOL_Office")
	}
	if strings.TrimSpace(c.SurveyType) == "" {
		return fmt.Errorf("missing or empty Deed.Survey_Type")
	}
	if len(c.ColumnSpec) != 3 && len(c.ColumnSpec) != 5 {
		return fmt.Errorf("META.COLUMN_SPEC must have 3 or 5 entries, got %d", len(c.ColumnSpec))
	}
	for i, name := range c.ColumnSpec {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("META.COLUMN_SPEC entry %d is empty", i)
		}
	}
	if len(c.ToWGS84) != 0 && len(c.ToWGS84) != 3 {
		return fmt.Errorf("META.towgs84 must have exactly 3 parameters, got %d", len(c.ToWGS84))
	}
	if c.EPSG <= 0 {
		return fmt.Errorf("invalid Deed.EPSG: %d", c.EPSG)
	}
	return nil
}

// MarkerColumns returns the marker-name, northing, and easting field
// names regardless of whether the spec carries the extended 5-column
// per-vertex form.
func (c *Config) MarkerColumns() (name, northing, easting string) {
	cols := c.ColumnSpec
	if len(cols) == 5 {
		cols = cols[2:]
	}
	return cols[0], cols[1], cols[2]
}

// parseEPSG accepts the EPSG value as an integer or a digit string.
func parseEPSG(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return DefaultEPSG, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case string:
		s := strings.TrimSpace(t)
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid Deed.EPSG %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid Deed.EPSG value of type %T", v)
	}
}
