// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package config loads the pipeline configuration from a YAML file, with
// overrides from the environment (and a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/extract"
	"github.com/drt-scenarios/drtprep/processors"
	"github.com/drt-scenarios/drtprep/router"
	"github.com/drt-scenarios/drtprep/sampling"
	"github.com/drt-scenarios/drtprep/timetable"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DRTPREP_"

// Config is the full pipeline configuration.
type Config struct {
	LogLevel string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Trim     TrimConfig    `yaml:"trim"`
	Extract  ExtractConfig `yaml:"extract"`
	Sample   SampleConfig  `yaml:"sample"`
	Router   RouterConfig  `yaml:"router"`
}

type TrimConfig struct {
	Policy       string   `yaml:"policy" validate:"required,oneof=both-endpoints both destination to-node"`
	Mode         string   `yaml:"mode" validate:"required"`
	CleanerModes []string `yaml:"cleaner_modes"`
	AllowEmpty   bool     `yaml:"allow_empty"`
}

// ExtractConfig holds the trip extraction settings. InterchangeStop
// selects the station when the timetable is read from GTFS.
type ExtractConfig struct {
	ConvertibleMode        string            `yaml:"convertible_mode" validate:"required"`
	InterchangeLink        string            `yaml:"interchange_link"`
	InterchangeStop        string            `yaml:"interchange_stop"`
	Alpha                  float64           `yaml:"alpha" validate:"gte=0"`
	Beta                   float64           `yaml:"beta" validate:"gte=0"`
	MinInterchangeDistance float64           `yaml:"min_interchange_distance" validate:"gte=0"`
	SlowLinkSpeed          float64           `yaml:"slow_link_speed" validate:"gt=0"`
	Seed                   int64             `yaml:"seed"`
	PersonPrefix           string            `yaml:"person_prefix" validate:"required"`
	Classes                []timetable.Class `yaml:"classes" validate:"dive"`
}

type SampleConfig struct {
	Seed        int64  `yaml:"seed"`
	ConvertSeed int64  `yaml:"convert_seed"`
	Scenario    string `yaml:"scenario"`
}

type RouterConfig struct {
	Mode      string `yaml:"mode"`
	CacheSize int    `yaml:"cache_size" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	ex := extract.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Trim: TrimConfig{
			Policy: processors.PolicyBothEndpoints.String(),
			Mode:   "car",
		},
		Extract: ExtractConfig{
			ConvertibleMode:        ex.ConvertibleMode,
			Alpha:                  ex.Alpha,
			Beta:                   ex.Beta,
			MinInterchangeDistance: ex.MinInterchangeDistance,
			SlowLinkSpeed:          ex.SlowLinkSpeed,
			Seed:                   ex.Seed,
			PersonPrefix:           ex.PersonPrefix,
			Classes:                ex.Partition,
		},
		Sample: SampleConfig{
			Seed:        4711,
			ConvertSeed: sampling.DefaultConvertSeed,
		},
		Router: RouterConfig{
			Mode:      "car",
			CacheSize: router.DefaultCacheSize,
		},
	}
}

// Load reads path over the defaults (an empty path keeps the defaults),
// applies the environment overrides and validates the result. All errors
// wrap errs.ErrConfiguration.
func Load(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg. Keys absent from data keep their
// current value.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	return nil
}

// Validate checks field constraints and the route class partition.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	if _, err := processors.ParsePolicy(c.Trim.Policy); err != nil {
		return err
	}
	return c.Partition().Validate()
}

// Partition returns the configured route classes.
func (c *Config) Partition() timetable.ClassPartition {
	return timetable.ClassPartition(c.Extract.Classes)
}

// ExtractorConfig returns the extractor settings.
func (c *Config) ExtractorConfig() extract.Config {
	ex := extract.DefaultConfig()
	ex.ConvertibleMode = c.Extract.ConvertibleMode
	ex.InterchangeLink = c.Extract.InterchangeLink
	ex.Alpha = c.Extract.Alpha
	ex.Beta = c.Extract.Beta
	ex.MinInterchangeDistance = c.Extract.MinInterchangeDistance
	ex.SlowLinkSpeed = c.Extract.SlowLinkSpeed
	ex.Seed = c.Extract.Seed
	ex.PersonPrefix = c.Extract.PersonPrefix
	ex.Partition = c.Partition()
	return ex
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid %s%s: %q", errs.ErrConfiguration, EnvPrefix, key, v)
		}
		*dst = f
		return nil
	}
	integer := func(key string, dst *int64) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid %s%s: %q", errs.ErrConfiguration, EnvPrefix, key, v)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("TRIM_POLICY", &c.Trim.Policy)
	str("TRIM_MODE", &c.Trim.Mode)
	str("CONVERTIBLE_MODE", &c.Extract.ConvertibleMode)
	str("INTERCHANGE_LINK", &c.Extract.InterchangeLink)
	str("INTERCHANGE_STOP", &c.Extract.InterchangeStop)
	str("PERSON_PREFIX", &c.Extract.PersonPrefix)
	str("ROUTER_MODE", &c.Router.Mode)
	str("SCENARIO", &c.Sample.Scenario)

	if v, ok := lookup(EnvPrefix + "CLEANER_MODES"); ok && v != "" {
		c.Trim.CleanerModes = strings.Split(v, ",")
	}

	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"ALPHA", &c.Extract.Alpha},
		{"BETA", &c.Extract.Beta},
		{"MIN_INTERCHANGE_DISTANCE", &c.Extract.MinInterchangeDistance},
		{"SLOW_LINK_SPEED", &c.Extract.SlowLinkSpeed},
	} {
		if err := float(f.key, f.dst); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		key string
		dst *int64
	}{
		{"EXTRACT_SEED", &c.Extract.Seed},
		{"SAMPLE_SEED", &c.Sample.Seed},
		{"CONVERT_SEED", &c.Sample.ConvertSeed},
	} {
		if err := integer(f.key, f.dst); err != nil {
			return err
		}
	}

	cache := int64(c.Router.CacheSize)
	if err := integer("ROUTER_CACHE_SIZE", &cache); err != nil {
		return err
	}
	c.Router.CacheSize = int(cache)

	return nil
}
