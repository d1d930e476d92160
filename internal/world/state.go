package world

import (
	"sort"
)

// State is the immutable world snapshot for one tick. Systems build the next
// tick's State by cloning and mutating the clone; a committed State is never
// written again, so observers may read it without synchronization.
//
// Storage is arena-style: nodes and edges live in id-keyed maps and refer to
// each other by id only. The adjacency index is derived and rebuilt whenever
// the relation set changes.
type State struct {
	Tick           uint64
	Classes        map[ClassID]*Class
	Territories    map[TerritoryID]*Territory
	Relations      map[RelationID]*Relation
	Contradictions map[ContradictionID]*Contradiction
	Aggregates     Aggregates

	// adjacency maps node id → relation ids touching it, in sorted order.
	// Derived; never serialized.
	adjacency map[string][]RelationID
}

// New returns an empty snapshot at tick zero.
func New() *State {
	return &State{
		Classes:        make(map[ClassID]*Class),
		Territories:    make(map[TerritoryID]*Territory),
		Relations:      make(map[RelationID]*Relation),
		Contradictions: make(map[ContradictionID]*Contradiction),
	}
}

// Clone deep-copies the snapshot. The clone owns all of its nodes and edges;
// mutating it never touches the receiver.
func (st *State) Clone() *State {
	next := &State{
		Tick:           st.Tick,
		Classes:        make(map[ClassID]*Class, len(st.Classes)),
		Territories:    make(map[TerritoryID]*Territory, len(st.Territories)),
		Relations:      make(map[RelationID]*Relation, len(st.Relations)),
		Contradictions: make(map[ContradictionID]*Contradiction, len(st.Contradictions)),
		Aggregates:     st.Aggregates,
	}
	for id, c := range st.Classes {
		cc := *c
		next.Classes[id] = &cc
	}
	for id, t := range st.Territories {
		tc := *t
		next.Territories[id] = &tc
	}
	for id, r := range st.Relations {
		rc := *r
		next.Relations[id] = &rc
	}
	for id, c := range st.Contradictions {
		cc := *c
		next.Contradictions[id] = &cc
	}
	return next
}

// ClassIDs returns all class ids in sorted order. Deterministic iteration
// over map-backed storage always goes through these helpers.
func (st *State) ClassIDs() []ClassID {
	ids := make([]ClassID, 0, len(st.Classes))
	for id := range st.Classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TerritoryIDs returns all territory ids in sorted order.
func (st *State) TerritoryIDs() []TerritoryID {
	ids := make([]TerritoryID, 0, len(st.Territories))
	for id := range st.Territories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RelationIDs returns all relation ids in sorted order.
func (st *State) RelationIDs() []RelationID {
	ids := make([]RelationID, 0, len(st.Relations))
	for id := range st.Relations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ContradictionIDs returns all contradiction ids in sorted order.
func (st *State) ContradictionIDs() []ContradictionID {
	ids := make([]ContradictionID, 0, len(st.Contradictions))
	for id := range st.Contradictions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddRelation inserts an edge and invalidates the adjacency index.
func (st *State) AddRelation(r *Relation) {
	st.Relations[r.ID] = r
	st.adjacency = nil
}

// RemoveRelation deletes an edge and invalidates the adjacency index.
func (st *State) RemoveRelation(id RelationID) {
	delete(st.Relations, id)
	st.adjacency = nil
}

// Touching returns the ids of relations incident to the given node id,
// sorted. Symmetric kinds are reported for both endpoints; directed kinds
// for source and target alike; callers filter by kind and direction.
func (st *State) Touching(node string) []RelationID {
	if st.adjacency == nil {
		st.buildAdjacency()
	}
	return st.adjacency[node]
}

// RelationsOfKind returns the edges of one kind in sorted id order.
func (st *State) RelationsOfKind(kind RelationKind) []*Relation {
	var out []*Relation
	for _, id := range st.RelationIDs() {
		if r := st.Relations[id]; r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// HasRelationBetween reports whether an edge of the given kind joins a and b,
// in either direction for symmetric kinds.
func (st *State) HasRelationBetween(kind RelationKind, a, b string) bool {
	for _, r := range st.Relations {
		if r.Kind != kind {
			continue
		}
		if r.Source == a && r.Target == b {
			return true
		}
		if kind.Symmetric() && r.Source == b && r.Target == a {
			return true
		}
	}
	return false
}

func (st *State) buildAdjacency() {
	adj := make(map[string][]RelationID)
	for _, id := range st.RelationIDs() {
		r := st.Relations[id]
		adj[r.Source] = append(adj[r.Source], id)
		if r.Target != r.Source {
			adj[r.Target] = append(adj[r.Target], id)
		}
	}
	st.adjacency = adj
}

// nodeExists reports whether the id names a live class or territory.
func (st *State) nodeExists(id string) bool {
	if _, ok := st.Classes[ClassID(id)]; ok {
		return true
	}
	_, ok := st.Territories[TerritoryID(id)]
	return ok
}

// Normalize drops relations whose endpoints no longer exist and returns the
// dropped ids in sorted order. An orphan edge is an invariant violation; the
// caller is expected to emit a diagnostic per dropped id rather than ignore
// the repair.
func (st *State) Normalize() []RelationID {
	var dropped []RelationID
	for _, id := range st.RelationIDs() {
		r := st.Relations[id]
		if !st.nodeExists(r.Source) || !st.nodeExists(r.Target) {
			dropped = append(dropped, id)
		}
	}
	for _, id := range dropped {
		st.RemoveRelation(id)
	}
	return dropped
}

// TotalPopulation sums class populations.
func (st *State) TotalPopulation() float64 {
	total := 0.0
	for _, id := range st.ClassIDs() {
		total += st.Classes[id].Population
	}
	return total
}

// TotalWealth sums class wealth.
func (st *State) TotalWealth() float64 {
	total := 0.0
	for _, id := range st.ClassIDs() {
		total += st.Classes[id].Wealth
	}
	return total
}
