package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// Digest returns a hex SHA-256 over a canonical rendering of the snapshot.
// Two states with identical fields produce identical digests regardless of
// map iteration order, which is what determinism tests and the terminal
// event rely on.
func (st *State) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "tick:%d\n", st.Tick)

	for _, id := range st.ClassIDs() {
		c := st.Classes[id]
		fmt.Fprintf(h, "class:%s|%s|%d|%s|%s|%s|%s|%s|%s|%s|%d|%s|%s|%s\n",
			c.ID, c.Name, c.Role,
			f64(c.Wealth), f64(c.Organization), f64(c.Consciousness),
			f64(c.Population), f64(c.Repression),
			f64(c.AcquiesceP), f64(c.RevoltP),
			c.Alignment, f64(c.DriftAccum), f64(c.PathGain), c.Home)
	}
	for _, id := range st.TerritoryIDs() {
		t := st.Territories[id]
		fmt.Fprintf(h, "territory:%s|%s|%d|%s|%s|%s|%s|%s\n",
			t.ID, t.Name, t.Sector,
			f64(t.Heat), f64(t.Population), f64(t.Biocapacity),
			f64(t.Draw), f64(t.Overshoot))
	}
	for _, id := range st.RelationIDs() {
		r := st.Relations[id]
		fmt.Fprintf(h, "relation:%s|%d|%s|%s|%s|%s\n",
			r.ID, r.Kind, r.Source, r.Target, f64(r.Strength), f64(r.Flow))
	}
	for _, id := range st.ContradictionIDs() {
		c := st.Contradictions[id]
		fmt.Fprintf(h, "contradiction:%s|%s|%s|%s|%d|%d|%d\n",
			c.ID, c.PoleA, c.PoleB, f64(c.Intensity), c.Stage,
			c.TicksAtCeiling, c.TransitionTick)
	}
	writeAggregates(h, st.Aggregates)

	return hex.EncodeToString(h.Sum(nil))
}

func writeAggregates(w io.Writer, a Aggregates) {
	fmt.Fprintf(w, "aggregates:%s|%s|%s|%s|%d\n",
		f64(a.RentPool), f64(a.LiberationIndex), f64(a.RepressionIndex),
		f64(a.Overshoot), a.Diagnostics)
}

// f64 renders a float with full round-trip precision so the digest is
// bit-exact.
func f64(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
