// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drt-scenarios/drtprep/errs"
)

const testYAML = `
log_level: debug
trim:
  policy: destination
  cleaner_modes: [car, ride]
extract:
  interchange_link: "pt_ORB_1"
  alpha: 1.5
  classes:
    - name: re5
      routes: [RE5]
      share: 0.7
    - name: rest
      share: 0.3
sample:
  seed: 42
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drtprep.yml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LogLevel != "debug" || cfg.Trim.Policy != "destination" || len(cfg.Trim.CleanerModes) != 2 {
		t.Errorf("trim section not read: %+v", cfg.Trim)
	}
	// keys not in the file keep their defaults
	if cfg.Trim.Mode != "car" || cfg.Extract.Beta != 900 || cfg.Extract.SlowLinkSpeed != 8.4 {
		t.Errorf("defaults lost: %+v", cfg.Extract)
	}

	ex := cfg.ExtractorConfig()
	if ex.InterchangeLink != "pt_ORB_1" || ex.Alpha != 1.5 || ex.Partition[0].Name != "re5" || ex.Partition.Pick(0.69) != "re5" {
		t.Errorf("extractor config = %+v", ex)
	}
	if cfg.Sample.Seed != 42 || cfg.Sample.ConvertSeed != 4711 {
		t.Errorf("sample section = %+v", cfg.Sample)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Extract.Seed != 1234 || cfg.Extract.PersonPrefix != "drt_passenger_" || len(cfg.Partition()) != 2 {
		t.Errorf("unexpected defaults %+v", cfg.Extract)
	}
}

func TestEnvOverride(t *testing.T) {
	env := map[string]string{
		"DRTPREP_ALPHA":             "3",
		"DRTPREP_INTERCHANGE_LINK":  "l9",
		"DRTPREP_EXTRACT_SEED":      "7",
		"DRTPREP_CLEANER_MODES":     "car,bike",
		"DRTPREP_ROUTER_CACHE_SIZE": "16",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Extract.Alpha != 3 || cfg.Extract.InterchangeLink != "l9" || cfg.Extract.Seed != 7 {
		t.Errorf("env not applied: %+v", cfg.Extract)
	}
	if len(cfg.Trim.CleanerModes) != 2 || cfg.Router.CacheSize != 16 {
		t.Errorf("env not applied: %+v %+v", cfg.Trim, cfg.Router)
	}

	env["DRTPREP_BETA"] = "lots"
	if err := Default().applyEnv(lookup); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("got %v, want configuration error", err)
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "trim: [\n"},
		{"policy", "trim:\n  policy: sideways\n"},
		{"negative alpha", "extract:\n  alpha: -1\n"},
		{"zero speed", "extract:\n  slow_link_speed: 0\n"},
		{"log level", "log_level: loud\n"},
		{"shares", "extract:\n  classes:\n    - name: a\n      share: 0.4\n"},
		{"unnamed class", "extract:\n  classes:\n    - share: 1\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(test.doc), cfg)
			if err == nil {
				err = cfg.Validate()
			}
			if !errors.Is(err, errs.ErrConfiguration) {
				t.Errorf("got %v, want configuration error", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("missing file: got %v", err)
	}
}
