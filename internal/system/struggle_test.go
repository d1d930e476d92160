package system

import (
	"strings"
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/entropy"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// struggleWorld stages a revolt-ready class facing a repressor, with the
// tribute flow of the current tick still on the extraction edge.
func struggleWorld(organization, repression float64) *world.State {
	st := world.New()
	st.Tick = 7
	st.Territories["terr:s"] = &world.Territory{
		ID: "terr:s", Population: 1100, Biocapacity: 1000,
	}
	st.Classes["class:labor"] = &world.Class{
		ID: "class:labor", Role: world.RolePeripheryLabor,
		Wealth: 100, Population: 1000, Consciousness: 0.8,
		Organization: organization, RevoltP: 1, Home: "terr:s", PathGain: 1,
	}
	st.Classes["class:state"] = &world.Class{
		ID: "class:state", Role: world.RoleStateApparatus,
		Wealth: 1000, Population: 100, Repression: repression,
		Home: "terr:s", PathGain: 1,
	}
	st.AddRelation(&world.Relation{
		ID: "ext:state:labor", Kind: world.RelExtraction,
		Source: "class:state", Target: "class:labor", Strength: 0.6, Flow: 40,
	})
	st.AddRelation(&world.Relation{
		ID: "rep:state:labor", Kind: world.RelRepression,
		Source: "class:state", Target: "class:labor", Strength: 0.5,
	})
	return st
}

func TestVictoriousRevoltReclaimsTribute(t *testing.T) {
	cfg := config.Default()
	// Power 0.9×0.8×1000 = 720 against 0.5×0.1×100 = 5: labor wins.
	st := struggleWorld(0.9, 0.1)
	rec := event.NewRecorder(7)

	next, err := (Struggle{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	labor := next.Classes["class:labor"]
	if labor.Wealth != 140 {
		t.Fatalf("labor wealth = %v, want 140 after reclaiming the flow", labor.Wealth)
	}
	if next.Classes["class:state"].Wealth != 960 {
		t.Fatalf("state wealth = %v, want 960", next.Classes["class:state"].Wealth)
	}
	if got := next.Relations["ext:state:labor"].Strength; got != 0.3 {
		t.Fatalf("extraction strength = %v, want halved to 0.3", got)
	}
	if labor.Organization != 0.9+cfg.Struggle.OrganizationGain {
		t.Fatalf("organization = %v, want %v", labor.Organization, 0.9+cfg.Struggle.OrganizationGain)
	}

	won := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindStruggle {
			p := e.Payload.(event.StrugglePayload)
			if p.Action == "revolt" && p.Won {
				won = true
			}
		}
	}
	if !won {
		t.Fatal("no winning revolt event")
	}
}

func TestCrushedRevoltHardensRepression(t *testing.T) {
	cfg := config.Default()
	// Power 0.1×0.8×1000 = 80 against 0.5×0.9×100 = 45... raise the
	// state's weight so repression clearly prevails.
	st := struggleWorld(0.05, 0.9)
	rec := event.NewRecorder(7)

	next, err := (Struggle{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	labor := next.Classes["class:labor"]
	wantOrg := 0.05 * (1 - cfg.Struggle.RepressionBacklash)
	if labor.Organization != wantOrg {
		t.Fatalf("organization = %v, want %v", labor.Organization, wantOrg)
	}
	state := next.Classes["class:state"]
	if state.Repression != 0.9+cfg.Struggle.RepressionBacklash {
		t.Fatalf("state repression = %v, want hardened", state.Repression)
	}
	// Tribute stays where it was.
	if labor.Wealth != 100 {
		t.Fatalf("labor wealth = %v, want 100", labor.Wealth)
	}

	suppressed := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindStruggle {
			p := e.Payload.(event.StrugglePayload)
			if p.Action == "suppression" {
				suppressed = true
			}
		}
	}
	if !suppressed {
		t.Fatal("no suppression event")
	}
}

func TestRevolutionResolvesCriticalContradiction(t *testing.T) {
	cfg := config.Default()
	cfg.Contradiction.ResolutionSeeds = 2
	cfg.Struggle.ReformChance = 0

	st := struggleWorld(0.9, 0.1)
	st.Contradictions["con:1"] = &world.Contradiction{
		ID: "con:1", PoleA: "class:state", PoleB: "class:labor",
		Intensity: 0.9, Stage: world.StageCritical, TicksAtCeiling: 2,
	}

	rec := event.NewRecorder(7)
	next, err := (Struggle{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	con := next.Contradictions["con:1"]
	if con.Stage != world.StageResolved {
		t.Fatalf("stage = %s, want resolved", con.Stage)
	}
	if con.TransitionTick != 7 || con.TicksAtCeiling != 0 {
		t.Fatalf("resolution bookkeeping: tick=%d ceiling=%d", con.TransitionTick, con.TicksAtCeiling)
	}

	// Two fresh latent contradictions between the same poles.
	seeded := 0
	for _, id := range next.ContradictionIDs() {
		c := next.Contradictions[id]
		if strings.HasPrefix(string(id), "con:1:r") {
			if c.Stage != world.StageLatent || c.PoleA != "class:state" || c.PoleB != "class:labor" {
				t.Fatalf("seeded contradiction %+v", c)
			}
			seeded++
		}
	}
	if seeded != 2 {
		t.Fatalf("seeded %d contradictions, want 2", seeded)
	}

	var res event.ResolutionPayload
	found := false
	for _, e := range rec.Events() {
		if e.Kind == event.KindResolution {
			res = e.Payload.(event.ResolutionPayload)
			found = true
		}
	}
	if !found {
		t.Fatal("no resolution event")
	}
	if res.Action != "revolution" || len(res.Seeded) != 2 {
		t.Fatalf("resolution payload %+v", res)
	}
}

func TestReformEasesExtraction(t *testing.T) {
	cfg := config.Default()
	cfg.Struggle.ReformChance = 1 // always concede
	cfg.Struggle.RevoltThreshold = 1.1
	cfg.Contradiction.ResolutionSeeds = 0

	st := struggleWorld(0.9, 0.1)
	st.Classes["class:labor"].RevoltP = 0 // keep revolt out of this test
	st.Contradictions["con:1"] = &world.Contradiction{
		ID: "con:1", PoleA: "class:state", PoleB: "class:labor",
		Intensity: 0.9, Stage: world.StageCritical,
	}

	rec := event.NewRecorder(7)
	next, err := (Struggle{}).Apply(st, cfg, entropy.New(1), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if got := next.Contradictions["con:1"].Stage; got != world.StageResolved {
		t.Fatalf("stage = %s, want resolved by reform", got)
	}
	want := 0.6 * 0.8
	if got := next.Relations["ext:state:labor"].Strength; got != want {
		t.Fatalf("extraction strength = %v, want eased to %v", got, want)
	}
	if len(next.ContradictionIDs()) != 1 {
		t.Fatal("zero resolution seeds still spawned contradictions")
	}
}

func TestBelowThresholdNeverFires(t *testing.T) {
	cfg := config.Default()
	cfg.Struggle.RevoltThreshold = 0.55

	st := struggleWorld(0.9, 0.1)
	st.Classes["class:labor"].RevoltP = 0.5

	rec := event.NewRecorder(7)
	if _, err := (Struggle{}).Apply(st, cfg, entropy.New(1), rec); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, e := range rec.Events() {
		if e.Kind == event.KindStruggle {
			t.Fatal("revolt fired below the threshold")
		}
	}
}

func TestIndexesRecomputed(t *testing.T) {
	cfg := config.Default()
	cfg.Struggle.RevoltThreshold = 1.1 // no revolts

	st := struggleWorld(0.9, 0.5)
	st.Classes["class:labor"].RevoltP = 0
	st.Classes["class:labor"].Alignment = world.AlignLiberation

	next, err := (Struggle{}).Apply(st, cfg, entropy.New(1), event.NewRecorder(7))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Liberation: 1000×0.8 over 1100 total population.
	wantLib := 1000 * 0.8 / 1100
	if got := next.Aggregates.LiberationIndex; got != wantLib {
		t.Fatalf("liberation index = %v, want %v", got, wantLib)
	}
	// Repression: the state apparatus counts regardless of alignment.
	wantRep := 100 * 0.5 / 1100
	if got := next.Aggregates.RepressionIndex; got != wantRep {
		t.Fatalf("repression index = %v, want %v", got, wantRep)
	}
}
