package config

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ConfigFileName is the base name of the survey configuration file
// expected in the survey folder.
const ConfigFileName = "config"

// Loader reads the survey configuration file.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with its own viper instance, so survey
// config never bleeds into the CLI flag bindings.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads config.toml from the given folder, applies defaults, and
// validates. Any error here is fatal to the run: a missing column spec
// or office identity means the whole batch is misconfigured.
func (l *Loader) Load(folder string) (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("toml")
	l.v.AddConfigPath(folder)

	l.v.SetDefault("deed.unit", "meter")
	l.v.SetDefault("rv25j_center.view_scale", 0.5)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config.toml in %s: %w", folder, err)
	}

	cfg := &Config{
		Office:     l.v.GetString("meta.dol_office"),
		SurveyType: l.v.GetString("deed.survey_type"),
		Unit:       l.v.GetString("deed.unit"),
		ViewScale:  l.v.GetFloat64("rv25j_center.view_scale"),
	}

	if raw := l.v.Get("meta.towgs84"); raw != nil {
		shift, err := cast.ToFloat64SliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid META.towgs84: %w", err)
		}
		cfg.ToWGS84 = shift
	}

	if raw := l.v.Get("meta.column_spec"); raw != nil {
		cols, err := cast.ToStringSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid META.COLUMN_SPEC: %w", err)
		}
		cfg.ColumnSpec = cols
	}

	epsg, err := parseEPSG(l.v.Get("deed.epsg"))
	if err != nil {
		return nil, err
	}
	cfg.EPSG = epsg

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// FileUsed returns the path of the configuration file that was read.
func (l *Loader) FileUsed() string {
	return l.v.ConfigFileUsed()
}
