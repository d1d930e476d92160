package system

import (
	"math"
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

func metabolicWorld(population, biocapacity float64) *world.State {
	st := world.New()
	st.Territories["terr:m"] = &world.Territory{
		ID: "terr:m", Population: population, Biocapacity: biocapacity,
	}
	return st
}

func TestSustainableDrawLeavesBiocapacity(t *testing.T) {
	cfg := config.Default()
	cfg.Metabolism.DrawPerCapita = 0.01
	cfg.Metabolism.RegenRate = 0.05

	// Draw 10, regen 50: ratio 0.2, nothing degrades.
	st := metabolicWorld(1000, 1000)
	rec := event.NewRecorder(1)
	next, err := (Metabolism{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	terr := next.Territories["terr:m"]
	if math.Abs(terr.Overshoot-0.2) > 1e-12 {
		t.Fatalf("overshoot = %v, want 0.2", terr.Overshoot)
	}
	if terr.Biocapacity != 1000 {
		t.Fatalf("sustainable draw degraded biocapacity to %v", terr.Biocapacity)
	}
	for _, e := range rec.Events() {
		if e.Kind == event.KindOvershoot {
			t.Fatal("sustainable draw emitted an overshoot event")
		}
	}
}

func TestOvershootDegradesBiocapacity(t *testing.T) {
	cfg := config.Default()
	cfg.Metabolism.DrawPerCapita = 0.1
	cfg.Metabolism.RegenRate = 0.05
	cfg.Metabolism.DegradeRate = 0.02

	// Draw 100, regen 50: ratio 2, biocapacity erodes by 0.02×1000×1.
	st := metabolicWorld(1000, 1000)
	rec := event.NewRecorder(1)
	next, err := (Metabolism{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	terr := next.Territories["terr:m"]
	if math.Abs(terr.Overshoot-2) > 1e-12 {
		t.Fatalf("overshoot = %v, want 2", terr.Overshoot)
	}
	if math.Abs(terr.Biocapacity-980) > 1e-9 {
		t.Fatalf("biocapacity = %v, want 980", terr.Biocapacity)
	}

	found := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindOvershoot {
			p := e.Payload.(event.OvershootPayload)
			if p.Territory != "terr:m" || math.Abs(p.Ratio-2) > 1e-12 {
				t.Fatalf("overshoot payload %+v", p)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("overshoot emitted no event")
	}
}

func TestDeadTerritoryCapsAndReports(t *testing.T) {
	cfg := config.Default()

	// Zero biocapacity: the ratio is undefined, capped, and diagnosed.
	st := metabolicWorld(1000, 0)
	rec := event.NewRecorder(1)
	next, err := (Metabolism{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := next.Territories["terr:m"].Overshoot; got != overshootCap {
		t.Fatalf("overshoot = %v, want the cap %v", got, overshootCap)
	}

	diagnosed := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindDiagnostic {
			p := e.Payload.(event.DiagnosticPayload)
			if p.Code == event.CodeNumericDomain && p.System == "metabolism" {
				diagnosed = true
			}
		}
	}
	if !diagnosed {
		t.Fatal("undefined ratio produced no diagnostic")
	}
}

func TestEmptyWorldHasZeroGlobalOvershoot(t *testing.T) {
	cfg := config.Default()
	next, err := (Metabolism{}).Apply(world.New(), cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := next.Aggregates.Overshoot; got != 0 {
		t.Fatalf("empty world global overshoot = %v, want 0", got)
	}
}

func TestGlobalOvershootAggregates(t *testing.T) {
	cfg := config.Default()
	cfg.Metabolism.DrawPerCapita = 0.1
	cfg.Metabolism.RegenRate = 0.05

	st := metabolicWorld(1000, 1000)
	st.Territories["terr:n"] = &world.Territory{
		ID: "terr:n", Population: 0, Biocapacity: 3000,
	}

	next, err := (Metabolism{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Total draw 100 against total regen 200: globally sustainable even
	// though terr:m alone overshoots.
	if got := next.Aggregates.Overshoot; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("global overshoot = %v, want 0.5", got)
	}
}
