package observer

import (
	"sync"

	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// TopologyTag is the registry tag of the topology monitor.
const TopologyTag = "topology"

// TopologyReport describes the relationship graph at a committed tick.
type TopologyReport struct {
	Tick                 uint64         `json:"tick"`
	EdgesByKind          map[string]int `json:"edges_by_kind"`
	SolidarityComponents int            `json:"solidarity_components"`
	IsolatedClasses      int            `json:"isolated_classes"`
}

// Topology monitors graph structure: edge counts per kind, connected
// components of the solidarity subgraph, and classes with no solidarity
// ties at all. Purely derived state; it never touches the world.
type Topology struct {
	mu     sync.Mutex
	report TopologyReport
}

// NewTopology returns an empty topology monitor.
func NewTopology() *Topology {
	return &Topology{}
}

func (t *Topology) Tag() string { return TopologyTag }

func (t *Topology) OnTick(before, after *world.State, events []event.Event) {
	byKind := make(map[string]int)
	for _, id := range after.RelationIDs() {
		byKind[after.Relations[id].Kind.String()]++
	}

	// Union-find over classes joined by solidarity edges.
	parent := make(map[world.ClassID]world.ClassID, len(after.Classes))
	for _, id := range after.ClassIDs() {
		parent[id] = id
	}
	var find func(world.ClassID) world.ClassID
	find = func(x world.ClassID) world.ClassID {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	linked := make(map[world.ClassID]bool)
	for _, r := range after.RelationsOfKind(world.RelSolidarity) {
		a, b := world.ClassID(r.Source), world.ClassID(r.Target)
		if _, ok := parent[a]; !ok {
			continue
		}
		if _, ok := parent[b]; !ok {
			continue
		}
		linked[a], linked[b] = true, true
		parent[find(a)] = find(b)
	}

	roots := make(map[world.ClassID]bool)
	isolated := 0
	for _, id := range after.ClassIDs() {
		if !linked[id] {
			isolated++
			continue
		}
		roots[find(id)] = true
	}

	t.mu.Lock()
	t.report = TopologyReport{
		Tick:                 after.Tick,
		EdgesByKind:          byKind,
		SolidarityComponents: len(roots),
		IsolatedClasses:      isolated,
	}
	t.mu.Unlock()
}

// Report returns the latest topology view.
func (t *Topology) Report() TopologyReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}
