// Package hydrate converts between the serializable snapshot document
// (typed node/edge lists) and the in-memory world state. Incoming documents
// are validated against a JSON Schema before decoding; a document that fails
// validation or referential checks is a configuration error, raised before
// the first tick.
package hydrate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// SnapshotVersion is the current document version.
const SnapshotVersion = 1

// Document is the serializable snapshot: everything a rendering or
// persistence layer needs, nothing derived.
type Document struct {
	Version        int                `json:"version"`
	Tick           uint64             `json:"tick"`
	Classes        []ClassDoc         `json:"classes"`
	Territories    []TerritoryDoc     `json:"territories"`
	Relations      []RelationDoc      `json:"relations"`
	Contradictions []ContradictionDoc `json:"contradictions,omitempty"`
	Aggregates     AggregatesDoc      `json:"aggregates"`
}

type ClassDoc struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	Wealth        float64 `json:"wealth"`
	Organization  float64 `json:"organization"`
	Consciousness float64 `json:"consciousness"`
	Population    float64 `json:"population"`
	Repression    float64 `json:"repression"`
	AcquiesceP    float64 `json:"acquiesce_p"`
	RevoltP       float64 `json:"revolt_p"`
	Alignment     string  `json:"alignment"`
	DriftAccum    float64 `json:"drift_accum"`
	PathGain      float64 `json:"path_gain"`
	Home          string  `json:"home,omitempty"`
}

type TerritoryDoc struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Heat        float64 `json:"heat"`
	Population  float64 `json:"population"`
	Biocapacity float64 `json:"biocapacity"`
	Draw        float64 `json:"draw"`
	Overshoot   float64 `json:"overshoot"`
}

type RelationDoc struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
	Flow     float64 `json:"flow"`
}

type ContradictionDoc struct {
	ID             string  `json:"id"`
	PoleA          string  `json:"pole_a"`
	PoleB          string  `json:"pole_b"`
	Intensity      float64 `json:"intensity"`
	Stage          string  `json:"stage"`
	TicksAtCeiling int     `json:"ticks_at_ceiling"`
	TransitionTick uint64  `json:"transition_tick"`
}

type AggregatesDoc struct {
	RentPool        float64 `json:"rent_pool"`
	LiberationIndex float64 `json:"liberation_index"`
	RepressionIndex float64 `json:"repression_index"`
	Overshoot       float64 `json:"overshoot"`
	Diagnostics     int     `json:"diagnostics"`
}

// Encode renders a state as a snapshot document.
func Encode(st *world.State) Document {
	doc := Document{
		Version: SnapshotVersion,
		Tick:    st.Tick,
		Aggregates: AggregatesDoc{
			RentPool:        st.Aggregates.RentPool,
			LiberationIndex: st.Aggregates.LiberationIndex,
			RepressionIndex: st.Aggregates.RepressionIndex,
			Overshoot:       st.Aggregates.Overshoot,
			Diagnostics:     st.Aggregates.Diagnostics,
		},
	}
	for _, id := range st.ClassIDs() {
		c := st.Classes[id]
		doc.Classes = append(doc.Classes, ClassDoc{
			ID:            string(c.ID),
			Name:          c.Name,
			Role:          c.Role.String(),
			Wealth:        c.Wealth,
			Organization:  c.Organization,
			Consciousness: c.Consciousness,
			Population:    c.Population,
			Repression:    c.Repression,
			AcquiesceP:    c.AcquiesceP,
			RevoltP:       c.RevoltP,
			Alignment:     c.Alignment.String(),
			DriftAccum:    c.DriftAccum,
			PathGain:      c.PathGain,
			Home:          string(c.Home),
		})
	}
	for _, id := range st.TerritoryIDs() {
		t := st.Territories[id]
		doc.Territories = append(doc.Territories, TerritoryDoc{
			ID:          string(t.ID),
			Name:        t.Name,
			Sector:      t.Sector.String(),
			Heat:        t.Heat,
			Population:  t.Population,
			Biocapacity: t.Biocapacity,
			Draw:        t.Draw,
			Overshoot:   t.Overshoot,
		})
	}
	for _, id := range st.RelationIDs() {
		r := st.Relations[id]
		doc.Relations = append(doc.Relations, RelationDoc{
			ID:       string(r.ID),
			Kind:     r.Kind.String(),
			Source:   r.Source,
			Target:   r.Target,
			Strength: r.Strength,
			Flow:     r.Flow,
		})
	}
	for _, id := range st.ContradictionIDs() {
		c := st.Contradictions[id]
		doc.Contradictions = append(doc.Contradictions, ContradictionDoc{
			ID:             string(c.ID),
			PoleA:          string(c.PoleA),
			PoleB:          string(c.PoleB),
			Intensity:      c.Intensity,
			Stage:          c.Stage.String(),
			TicksAtCeiling: c.TicksAtCeiling,
			TransitionTick: c.TransitionTick,
		})
	}
	return doc
}

// Marshal renders a state as snapshot JSON.
func Marshal(st *world.State) ([]byte, error) {
	return json.MarshalIndent(Encode(st), "", "  ")
}

// Decode builds a state from a document, enforcing referential integrity:
// unique ids, known enum names, relation endpoints that exist.
func Decode(doc Document) (*world.State, error) {
	if doc.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d, want %d", config.ErrConfig, doc.Version, SnapshotVersion)
	}

	st := world.New()
	st.Tick = doc.Tick
	st.Aggregates = world.Aggregates{
		RentPool:        doc.Aggregates.RentPool,
		LiberationIndex: doc.Aggregates.LiberationIndex,
		RepressionIndex: doc.Aggregates.RepressionIndex,
		Overshoot:       doc.Aggregates.Overshoot,
		Diagnostics:     doc.Aggregates.Diagnostics,
	}

	for _, cd := range doc.Classes {
		if _, dup := st.Classes[world.ClassID(cd.ID)]; dup {
			return nil, fmt.Errorf("%w: duplicate class id %q", config.ErrConfig, cd.ID)
		}
		role, ok := world.RoleFromString(cd.Role)
		if !ok {
			return nil, fmt.Errorf("%w: class %q has unknown role %q", config.ErrConfig, cd.ID, cd.Role)
		}
		align := world.AlignUnaligned
		switch cd.Alignment {
		case "", "unaligned":
		case "repression":
			align = world.AlignRepression
		case "liberation":
			align = world.AlignLiberation
		default:
			return nil, fmt.Errorf("%w: class %q has unknown alignment %q", config.ErrConfig, cd.ID, cd.Alignment)
		}
		pathGain := cd.PathGain
		if pathGain < 1 {
			pathGain = 1
		}
		st.Classes[world.ClassID(cd.ID)] = &world.Class{
			ID:            world.ClassID(cd.ID),
			Name:          cd.Name,
			Role:          role,
			Wealth:        cd.Wealth,
			Organization:  cd.Organization,
			Consciousness: cd.Consciousness,
			Population:    cd.Population,
			Repression:    cd.Repression,
			AcquiesceP:    cd.AcquiesceP,
			RevoltP:       cd.RevoltP,
			Alignment:     align,
			DriftAccum:    cd.DriftAccum,
			PathGain:      pathGain,
			Home:          world.TerritoryID(cd.Home),
		}
	}

	for _, td := range doc.Territories {
		if _, dup := st.Territories[world.TerritoryID(td.ID)]; dup {
			return nil, fmt.Errorf("%w: duplicate territory id %q", config.ErrConfig, td.ID)
		}
		sector, ok := world.SectorFromString(td.Sector)
		if !ok {
			return nil, fmt.Errorf("%w: territory %q has unknown sector %q", config.ErrConfig, td.ID, td.Sector)
		}
		st.Territories[world.TerritoryID(td.ID)] = &world.Territory{
			ID:          world.TerritoryID(td.ID),
			Name:        td.Name,
			Sector:      sector,
			Heat:        td.Heat,
			Population:  td.Population,
			Biocapacity: td.Biocapacity,
			Draw:        td.Draw,
			Overshoot:   td.Overshoot,
		}
	}

	for _, cd := range doc.Classes {
		if cd.Home == "" {
			continue
		}
		if _, ok := st.Territories[world.TerritoryID(cd.Home)]; !ok {
			return nil, fmt.Errorf("%w: class %q homed in unknown territory %q", config.ErrConfig, cd.ID, cd.Home)
		}
	}

	for _, rd := range doc.Relations {
		if _, dup := st.Relations[world.RelationID(rd.ID)]; dup {
			return nil, fmt.Errorf("%w: duplicate relation id %q", config.ErrConfig, rd.ID)
		}
		kind, ok := world.RelationKindFromString(rd.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: relation %q has unknown kind %q", config.ErrConfig, rd.ID, rd.Kind)
		}
		st.AddRelation(&world.Relation{
			ID:       world.RelationID(rd.ID),
			Kind:     kind,
			Source:   rd.Source,
			Target:   rd.Target,
			Strength: rd.Strength,
			Flow:     rd.Flow,
		})
	}
	if dropped := st.Normalize(); len(dropped) > 0 {
		ids := make([]string, len(dropped))
		for i, id := range dropped {
			ids[i] = string(id)
		}
		return nil, fmt.Errorf("%w: relations reference unknown nodes: %s", config.ErrConfig, strings.Join(ids, ", "))
	}

	for _, cd := range doc.Contradictions {
		if _, dup := st.Contradictions[world.ContradictionID(cd.ID)]; dup {
			return nil, fmt.Errorf("%w: duplicate contradiction id %q", config.ErrConfig, cd.ID)
		}
		stage, ok := world.StageFromString(cd.Stage)
		if !ok {
			return nil, fmt.Errorf("%w: contradiction %q has unknown stage %q", config.ErrConfig, cd.ID, cd.Stage)
		}
		for _, pole := range []string{cd.PoleA, cd.PoleB} {
			if _, ok := st.Classes[world.ClassID(pole)]; !ok {
				return nil, fmt.Errorf("%w: contradiction %q references unknown class %q", config.ErrConfig, cd.ID, pole)
			}
		}
		st.Contradictions[world.ContradictionID(cd.ID)] = &world.Contradiction{
			ID:             world.ContradictionID(cd.ID),
			PoleA:          world.ClassID(cd.PoleA),
			PoleB:          world.ClassID(cd.PoleB),
			Intensity:      cd.Intensity,
			Stage:          stage,
			TicksAtCeiling: cd.TicksAtCeiling,
			TransitionTick: cd.TransitionTick,
		}
	}

	return st, nil
}

// Unmarshal validates snapshot JSON against the schema and decodes it.
func Unmarshal(raw []byte) (*world.State, error) {
	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	return Decode(doc)
}

// LoadFile reads, validates, and decodes a snapshot file.
func LoadFile(path string) (*world.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	return Unmarshal(raw)
}
