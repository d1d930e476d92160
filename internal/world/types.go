// Package world provides the immutable world-state snapshot: class and
// territory nodes, typed relationships between them, tracked contradictions,
// and global aggregates. A snapshot is produced once per tick and never
// mutated afterwards, so observers can read it concurrently.
package world

// ClassID is the stable identifier of a social-class node.
type ClassID string

// TerritoryID is the stable identifier of a territory node.
type TerritoryID string

// RelationID is the stable identifier of a typed edge.
type RelationID string

// ContradictionID is the stable identifier of a tracked contradiction.
type ContradictionID string

// Role places a class in the world-system hierarchy.
type Role uint8

const (
	RoleCoreCapital Role = iota
	RoleCompradorElite
	RoleLaborAristocracy
	RolePeripheryLabor
	RolePeasantry
	RoleInformalProletariat
	RoleStateApparatus
)

var roleNames = [...]string{
	"core_capital",
	"comprador_elite",
	"labor_aristocracy",
	"periphery_labor",
	"peasantry",
	"informal_proletariat",
	"state_apparatus",
}

// String returns the snake_case name used in snapshots and event payloads.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// RoleFromString is the inverse of Role.String. The bool is false for
// unrecognized names.
func RoleFromString(s string) (Role, bool) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), true
		}
	}
	return 0, false
}

// Alignment is the bifurcation attractor a class has been routed into.
// Unaligned classes drift freely; routed classes amplify further drift by
// their path gain and do not re-route.
type Alignment uint8

const (
	AlignUnaligned Alignment = iota
	AlignRepression
	AlignLiberation
)

func (a Alignment) String() string {
	switch a {
	case AlignRepression:
		return "repression"
	case AlignLiberation:
		return "liberation"
	default:
		return "unaligned"
	}
}

// Class is a social-class node. Wealth is non-negative, Organization and
// Repression lie in [0,1], Consciousness in [-1,1].
type Class struct {
	ID            ClassID
	Name          string
	Role          Role
	Wealth        float64
	Organization  float64
	Consciousness float64
	Population    float64
	Repression    float64 // repressive capacity commanded by this class

	// Survival-calculus caches, recomputed each tick. Probabilities in [0,1].
	AcquiesceP float64
	RevoltP    float64

	// Bifurcation state. DriftAccum accumulates absolute drift until the
	// hysteresis band is crossed; PathGain amplifies drift once routed.
	Alignment  Alignment
	DriftAccum float64
	PathGain   float64

	Home TerritoryID
}

// Sector categorizes a territory's dominant economic activity.
type Sector uint8

const (
	SectorAgrarian Sector = iota
	SectorExtractive
	SectorIndustrial
	SectorFinancial
	SectorInformal
)

var sectorNames = [...]string{
	"agrarian",
	"extractive",
	"industrial",
	"financial",
	"informal",
}

func (s Sector) String() string {
	if int(s) < len(sectorNames) {
		return sectorNames[s]
	}
	return "unknown"
}

// SectorFromString is the inverse of Sector.String.
func SectorFromString(s string) (Sector, bool) {
	for i, n := range sectorNames {
		if n == s {
			return Sector(i), true
		}
	}
	return 0, false
}

// Territory is a territory node. Heat lies in [0,1]; Biocapacity and
// Population are positive; Draw is the current resource draw per tick.
type Territory struct {
	ID          TerritoryID
	Name        string
	Sector      Sector
	Heat        float64
	Population  float64
	Biocapacity float64
	Draw        float64
	Overshoot   float64 // draw/regeneration ratio cached by the metabolism stage
}

// RelationKind types an edge. Kind determines directionality: extraction,
// tenancy, and repression flow source→target; solidarity and adjacency are
// symmetric and stored once.
type RelationKind uint8

const (
	RelExtraction RelationKind = iota
	RelTenancy
	RelSolidarity
	RelAdjacency
	RelRepression
)

var relationKindNames = [...]string{
	"extraction",
	"tenancy",
	"solidarity",
	"adjacency",
	"repression",
}

func (k RelationKind) String() string {
	if int(k) < len(relationKindNames) {
		return relationKindNames[k]
	}
	return "unknown"
}

// RelationKindFromString is the inverse of RelationKind.String.
func RelationKindFromString(s string) (RelationKind, bool) {
	for i, n := range relationKindNames {
		if n == s {
			return RelationKind(i), true
		}
	}
	return 0, false
}

// Symmetric reports whether the kind is traversed in both directions.
func (k RelationKind) Symmetric() bool {
	return k == RelSolidarity || k == RelAdjacency
}

// Relation is a typed edge between two nodes. Source and Target hold class
// ids except for adjacency edges, which join territories. Strength lies in
// [0,1]; Flow is the value moved along the edge on the last tick.
type Relation struct {
	ID       RelationID
	Kind     RelationKind
	Source   string
	Target   string
	Strength float64
	Flow     float64
}

// ContradictionStage is the lifecycle stage of a tracked contradiction.
// Stages only ever advance; the machine never regresses. Resolution re-seeds
// fresh latent contradictions rather than rewinding this one.
type ContradictionStage uint8

const (
	StageLatent ContradictionStage = iota
	StageActive
	StageCritical
	StageResolved
	StageRuptured
)

var stageNames = [...]string{"latent", "active", "critical", "resolved", "ruptured"}

func (s ContradictionStage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// StageFromString is the inverse of ContradictionStage.String.
func StageFromString(s string) (ContradictionStage, bool) {
	for i, n := range stageNames {
		if n == s {
			return ContradictionStage(i), true
		}
	}
	return 0, false
}

// Terminal reports whether the stage admits no further transition.
func (s ContradictionStage) Terminal() bool {
	return s == StageResolved || s == StageRuptured
}

// Contradiction is a tracked dialectical tension between two poles
// (class ids). Intensity lies in [0,1].
type Contradiction struct {
	ID        ContradictionID
	PoleA     ClassID
	PoleB     ClassID
	Intensity float64
	Stage     ContradictionStage

	// TicksAtCeiling counts consecutive ticks the intensity has held above
	// the rupture ceiling while critical.
	TicksAtCeiling int
	// TransitionTick is the tick of the most recent stage change.
	TransitionTick uint64
}

// Aggregates are tick-level global quantities derived by the pipeline.
type Aggregates struct {
	RentPool        float64 // cumulative value transferred through extraction
	LiberationIndex float64 // population-weighted liberation-routed consciousness share
	RepressionIndex float64 // population-weighted repressive capacity share
	Overshoot       float64 // global draw/regeneration ratio
	Diagnostics     int     // diagnostic events emitted this tick
}
