package system

import (
	"math"
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

func solidarityWorld() *world.State {
	st := world.New()
	st.Territories["terr:a"] = &world.Territory{
		ID: "terr:a", Population: 2000, Biocapacity: 1000,
	}
	st.Classes["class:a"] = &world.Class{
		ID: "class:a", Role: world.RolePeripheryLabor,
		Wealth: 100, Population: 1000, Consciousness: 0.8, Home: "terr:a", PathGain: 1,
	}
	st.Classes["class:b"] = &world.Class{
		ID: "class:b", Role: world.RolePeasantry,
		Wealth: 100, Population: 1000, Consciousness: 0.2, Home: "terr:a", PathGain: 1,
	}
	return st
}

func TestDiffusionPullsTowardNeighbor(t *testing.T) {
	cfg := config.Default()
	st := solidarityWorld()
	st.AddRelation(&world.Relation{
		ID: "sol:a:b", Kind: world.RelSolidarity,
		Source: "class:a", Target: "class:b", Strength: 0.5,
	})

	next, err := (Solidarity{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	a, b := next.Classes["class:a"], next.Classes["class:b"]
	if a.Consciousness >= 0.8 {
		t.Fatalf("higher pole did not move down: %v", a.Consciousness)
	}
	if b.Consciousness <= 0.2 {
		t.Fatalf("lower pole did not move up: %v", b.Consciousness)
	}
	// Symmetric transmission over one edge conserves the pair total.
	if got := a.Consciousness + b.Consciousness; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("pair total = %v, want 1.0", got)
	}
}

func TestDiffusionOrderIndependent(t *testing.T) {
	// The deltas are all read from the pre-tick state, so a chain a-b-c
	// must give b exactly the sum of both pulls regardless of edge order.
	cfg := config.Default()
	st := solidarityWorld()
	st.Classes["class:c"] = &world.Class{
		ID: "class:c", Role: world.RolePeasantry,
		Wealth: 100, Population: 1000, Consciousness: -0.4, Home: "terr:a", PathGain: 1,
	}
	st.AddRelation(&world.Relation{
		ID: "sol:a:b", Kind: world.RelSolidarity,
		Source: "class:a", Target: "class:b", Strength: 0.5,
	})
	st.AddRelation(&world.Relation{
		ID: "sol:b:c", Kind: world.RelSolidarity,
		Source: "class:b", Target: "class:c", Strength: 0.5,
	})

	next, err := (Solidarity{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	rate := cfg.Solidarity.TransmissionRate
	want := 0.2 + (0.8-0.2)*0.5*rate + (-0.4-0.2)*0.5*rate
	if got := next.Classes["class:b"].Consciousness; math.Abs(got-want) > 1e-9 {
		t.Fatalf("middle node consciousness = %v, want %v", got, want)
	}
}

func TestDecayThenPruneAtThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Solidarity.DecayFactor = 0.5
	cfg.Solidarity.PruneThreshold = 0.05
	cfg.Solidarity.FormThreshold = 0.99 // keep formation out of this test

	st := solidarityWorld()
	st.AddRelation(&world.Relation{
		ID: "sol:a:b", Kind: world.RelSolidarity,
		Source: "class:a", Target: "class:b", Strength: 0.1,
	})

	rec := event.NewRecorder(1)
	next, err := (Solidarity{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// 0.1 decays to exactly the threshold; at-threshold edges are pruned.
	if _, ok := next.Relations["sol:a:b"]; ok {
		t.Fatal("edge at prune threshold survived")
	}
	pruned := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindSolidarityPruned {
			pruned = true
		}
	}
	if !pruned {
		t.Fatal("prune emitted no event")
	}
}

func TestEdgeAbovePruneThresholdSurvives(t *testing.T) {
	cfg := config.Default()
	cfg.Solidarity.DecayFactor = 0.95
	cfg.Solidarity.PruneThreshold = 0.05
	cfg.Solidarity.FormThreshold = 0.99

	st := solidarityWorld()
	st.AddRelation(&world.Relation{
		ID: "sol:a:b", Kind: world.RelSolidarity,
		Source: "class:a", Target: "class:b", Strength: 0.5,
	})

	next, err := (Solidarity{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	r, ok := next.Relations["sol:a:b"]
	if !ok {
		t.Fatal("healthy edge was pruned")
	}
	if math.Abs(r.Strength-0.475) > 1e-12 {
		t.Fatalf("decayed strength = %v, want 0.475", r.Strength)
	}
}

func TestFormationRequiresSharedExtractor(t *testing.T) {
	cfg := config.Default()
	cfg.Solidarity.FormThreshold = 0.5

	st := solidarityWorld()
	st.Classes["class:a"].Consciousness = 0.7
	st.Classes["class:b"].Consciousness = 0.7

	// No shared extractor yet: nothing forms.
	next, err := (Solidarity{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(1))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(next.RelationsOfKind(world.RelSolidarity)) != 0 {
		t.Fatal("edge formed without a shared extractor")
	}

	// A common extractor links them.
	st.Classes["class:core"] = &world.Class{
		ID: "class:core", Role: world.RoleCoreCapital,
		Wealth: 1000, Population: 10, Home: "terr:a", PathGain: 1,
	}
	st.AddRelation(&world.Relation{
		ID: "ext:core:a", Kind: world.RelExtraction,
		Source: "class:core", Target: "class:a", Strength: 0.3,
	})
	st.AddRelation(&world.Relation{
		ID: "ext:core:b", Kind: world.RelExtraction,
		Source: "class:core", Target: "class:b", Strength: 0.3,
	})

	rec := event.NewRecorder(2)
	next, err = (Solidarity{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	r, ok := next.Relations["sol:class:a:class:b"]
	if !ok {
		t.Fatal("shared extraction did not form a solidarity edge")
	}
	if r.Strength != cfg.Solidarity.SeedStrength {
		t.Fatalf("seed strength = %v, want %v", r.Strength, cfg.Solidarity.SeedStrength)
	}
	formed := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindSolidarityFormed {
			formed = true
		}
	}
	if !formed {
		t.Fatal("formation emitted no event")
	}
}

func TestFormationIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Solidarity.FormThreshold = 0.5
	cfg.Solidarity.DecayFactor = 1
	cfg.Solidarity.PruneThreshold = 0

	st := solidarityWorld()
	st.Classes["class:a"].Consciousness = 0.7
	st.Classes["class:b"].Consciousness = 0.7
	st.Classes["class:core"] = &world.Class{
		ID: "class:core", Role: world.RoleCoreCapital,
		Wealth: 1000, Population: 10, Home: "terr:a", PathGain: 1,
	}
	st.AddRelation(&world.Relation{
		ID: "ext:core:a", Kind: world.RelExtraction,
		Source: "class:core", Target: "class:a", Strength: 0.3,
	})
	st.AddRelation(&world.Relation{
		ID: "ext:core:b", Kind: world.RelExtraction,
		Source: "class:core", Target: "class:b", Strength: 0.3,
	})

	var err error
	for i := 0; i < 3; i++ {
		st, err = (Solidarity{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(uint64(i)))
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := len(st.RelationsOfKind(world.RelSolidarity)); got != 1 {
		t.Fatalf("%d solidarity edges between one pair, want 1", got)
	}
}
