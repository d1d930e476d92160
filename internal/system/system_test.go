package system

import "testing"

func TestPipelineOrder(t *testing.T) {
	want := []string{
		"extraction", "solidarity", "drift", "survival", "contradiction",
		"territory", "metabolism", "decomposition", "struggle",
	}
	got := Pipeline()
	if len(got) != len(want) {
		t.Fatalf("pipeline has %d stages, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.Name() != want[i] {
			t.Fatalf("stage %d is %q, want %q", i, s.Name(), want[i])
		}
	}
}
