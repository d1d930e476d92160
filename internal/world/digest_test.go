package world

import "testing"

func TestDigestStableAcrossClones(t *testing.T) {
	st := twoClassState()
	if st.Digest() != st.Clone().Digest() {
		t.Fatal("a clone must digest identically to its source")
	}
}

func TestDigestRepeatable(t *testing.T) {
	st := twoClassState()
	first := st.Digest()
	for i := 0; i < 10; i++ {
		if got := st.Digest(); got != first {
			t.Fatalf("digest unstable on repeat %d: %s vs %s", i, got, first)
		}
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := twoClassState().Digest()

	st := twoClassState()
	st.Classes["class:labor"].Wealth += 1e-9
	if st.Digest() == base {
		t.Fatal("digest must change with a tiny wealth delta")
	}

	st = twoClassState()
	st.Tick = 1
	if st.Digest() == base {
		t.Fatal("digest must change with the tick")
	}

	st = twoClassState()
	st.Contradictions["con:1"].Stage = StageActive
	if st.Digest() == base {
		t.Fatal("digest must change with a contradiction stage")
	}

	st = twoClassState()
	st.Aggregates.RentPool = 7
	if st.Digest() == base {
		t.Fatal("digest must change with aggregates")
	}
}
