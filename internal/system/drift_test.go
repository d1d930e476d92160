package system

import (
	"math"
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// hotWorld puts a single extracted class in a fully heated territory so the
// agitation signal is strongly positive every tick.
func hotWorld() *world.State {
	st := world.New()
	st.Territories["terr:h"] = &world.Territory{
		ID: "terr:h", Population: 1000, Biocapacity: 1000, Heat: 1,
	}
	st.Classes["class:w"] = &world.Class{
		ID: "class:w", Role: world.RolePeripheryLabor,
		Wealth: 100, Population: 1000, Home: "terr:h", PathGain: 1,
	}
	return st
}

func driftTick(t *testing.T, st *world.State, cfg *config.Config) (*world.State, *event.Recorder) {
	t.Helper()
	rec := event.NewRecorder(st.Tick)
	next, err := (Drift{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return next, rec
}

func TestDriftCappedByCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Consciousness.Sensitivity = 1
	cfg.Consciousness.DriftCeiling = 0.1

	st := hotWorld()
	next, _ := driftTick(t, st, cfg)
	c := next.Classes["class:w"]
	if c.Consciousness > 0.1+1e-12 {
		t.Fatalf("drift exceeded ceiling: %v", c.Consciousness)
	}
	if c.Consciousness <= 0 {
		t.Fatalf("heat should push consciousness up, got %v", c.Consciousness)
	}
}

func TestUnalignedClassAccumulatesThenRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Consciousness.Sensitivity = 1
	cfg.Consciousness.DriftCeiling = 0.1
	cfg.Consciousness.HysteresisBand = 0.25
	cfg.Consciousness.PathGain = 1.6

	st := hotWorld()
	var rec *event.Recorder

	// Drift 0.1 per tick accumulates 0.2 over two ticks, still inside the
	// band. The third tick crosses it and routes by sign.
	for i := 0; i < 2; i++ {
		st, rec = driftTick(t, st, cfg)
		if st.Classes["class:w"].Alignment != world.AlignUnaligned {
			t.Fatalf("routed after %d ticks, inside the hysteresis band", i+1)
		}
	}

	st, rec = driftTick(t, st, cfg)
	c := st.Classes["class:w"]
	if c.Alignment != world.AlignLiberation {
		t.Fatalf("alignment %s, want liberation", c.Alignment)
	}
	if c.PathGain != cfg.Consciousness.PathGain {
		t.Fatalf("path gain %v, want %v", c.PathGain, cfg.Consciousness.PathGain)
	}

	routed := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindBifurcation {
			p := e.Payload.(event.BifurcationPayload)
			if p.Class != "class:w" || p.Alignment != "liberation" {
				t.Fatalf("bifurcation payload %+v", p)
			}
			routed = true
		}
	}
	if !routed {
		t.Fatal("routing emitted no event")
	}
}

func TestRoutingIsPermanent(t *testing.T) {
	cfg := config.Default()
	st := hotWorld()
	c := st.Classes["class:w"]
	c.Alignment = world.AlignLiberation
	c.PathGain = cfg.Consciousness.PathGain
	c.Consciousness = 0.5

	for i := 0; i < 5; i++ {
		st, _ = driftTick(t, st, cfg)
	}
	if st.Classes["class:w"].Alignment != world.AlignLiberation {
		t.Fatal("routed class re-routed")
	}
}

func TestPathGainAmplifiesOnlyTowardAttractor(t *testing.T) {
	cfg := config.Default()
	cfg.Consciousness.Sensitivity = 1
	cfg.Consciousness.DriftCeiling = 0.1

	// Liberation-routed class under positive agitation: drift is amplified.
	st := hotWorld()
	routedUp := st.Classes["class:w"]
	routedUp.Alignment = world.AlignLiberation
	routedUp.PathGain = 2

	next, _ := driftTick(t, st, cfg)
	up := next.Classes["class:w"].Consciousness
	if math.Abs(up-0.2) > 1e-9 {
		t.Fatalf("amplified drift = %v, want 0.2", up)
	}

	// Repression-routed class under the same positive agitation: drift
	// against the attractor runs at nominal rate.
	st = hotWorld()
	routedDown := st.Classes["class:w"]
	routedDown.Alignment = world.AlignRepression
	routedDown.PathGain = 2

	next, _ = driftTick(t, st, cfg)
	down := next.Classes["class:w"].Consciousness
	if math.Abs(down-0.1) > 1e-9 {
		t.Fatalf("counter-attractor drift = %v, want 0.1", down)
	}
}

func TestExtractorIsSedated(t *testing.T) {
	cfg := config.Default()
	cfg.Consciousness.Sensitivity = 1
	cfg.Consciousness.DriftCeiling = 0.1

	st := world.New()
	st.Territories["terr:c"] = &world.Territory{
		ID: "terr:c", Population: 100, Biocapacity: 1000,
	}
	st.Classes["class:core"] = &world.Class{
		ID: "class:core", Role: world.RoleCoreCapital,
		Wealth: 100, Population: 10, Home: "terr:c", PathGain: 1,
	}
	st.Classes["class:labor"] = &world.Class{
		ID: "class:labor", Role: world.RolePeripheryLabor,
		Wealth: 100, Population: 90, Home: "terr:c", PathGain: 1,
	}
	st.AddRelation(&world.Relation{
		ID: "rel:ext", Kind: world.RelExtraction,
		Source: "class:core", Target: "class:labor", Strength: 0.5, Flow: 50,
	})

	next, _ := driftTick(t, st, cfg)
	if got := next.Classes["class:core"].Consciousness; got >= 0 {
		t.Fatalf("captured rent should sedate, got drift to %v", got)
	}
	if got := next.Classes["class:labor"].Consciousness; got <= 0 {
		t.Fatalf("suffered rent should agitate, got drift to %v", got)
	}
}

func TestZeroConsciousnessKeepsAccumulating(t *testing.T) {
	cfg := config.Default()
	cfg.Consciousness.Sensitivity = 0 // no drift at all

	st := hotWorld()
	st.Classes["class:w"].DriftAccum = 10 // far past the band

	next, _ := driftTick(t, st, cfg)
	// Sign of consciousness is exactly zero: routing must decline.
	if got := next.Classes["class:w"].Alignment; got != world.AlignUnaligned {
		t.Fatalf("routed with zero consciousness into %s", got)
	}
}
