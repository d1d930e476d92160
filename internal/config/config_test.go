package config

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := Default()
	cfg.Extraction.Efficiency = 1.5
	cfg.Consciousness.PathGain = 0.5
	cfg.Contradiction.RuptureWindow = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("validation error must wrap ErrConfig: %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"extraction.efficiency",
		"consciousness.path_gain",
		"contradiction.rupture_window",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not mention %s", msg, want)
		}
	}
}

func TestValidateOrderedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Contradiction.ActiveThreshold = 0.7
	cfg.Contradiction.CriticalThreshold = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("critical threshold below active must fail")
	}

	cfg = Default()
	cfg.Contradiction.RuptureCeiling = 0.4
	if err := cfg.Validate(); err == nil {
		t.Fatal("rupture ceiling below critical threshold must fail")
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("extraction:\n  efficiency: 0.8\n  wage_differential: 0.5\n  tenancy_rent_share: 0.1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Extraction.Efficiency != 0.8 {
		t.Fatalf("efficiency = %v, want 0.8", cfg.Extraction.Efficiency)
	}
	// Untouched groups keep their defaults.
	if cfg.Solidarity.DecayFactor != Default().Solidarity.DecayFactor {
		t.Fatal("unset group lost its default")
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	_, err := Parse([]byte("survival:\n  loss_aversion: 9\n"))
	if err == nil {
		t.Fatal("loss_aversion=9 must be rejected")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("parse error must wrap ErrConfig: %v", err)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("\t:not yaml"))
	if err == nil {
		t.Fatal("malformed YAML must be rejected")
	}
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("parse error must wrap ErrConfig: %v", err)
	}
}

func TestResolutionSeedsBounds(t *testing.T) {
	cfg := Default()
	cfg.Contradiction.ResolutionSeeds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero resolution seeds is legal: %v", err)
	}
	cfg.Contradiction.ResolutionSeeds = 4
	if err := cfg.Validate(); err == nil {
		t.Fatal("four resolution seeds must be rejected")
	}
}
