package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
)

func TestArchiveRoundTrip(t *testing.T) {
	st := hydrate.Generate(hydrate.DefaultGenConfig())
	st.Tick = 500

	path := filepath.Join(t.TempDir(), "tick500.json.zst")
	if err := WriteArchive(path, st); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	back, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if back.Digest() != st.Digest() {
		t.Fatal("archived snapshot digests differently")
	}
}

func TestArchiveIsCompressed(t *testing.T) {
	st := hydrate.Generate(hydrate.GenConfig{Seed: 42, Territories: 12})
	path := filepath.Join(t.TempDir(), "big.json.zst")
	if err := WriteArchive(path, st); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	raw, err := hydrate.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() >= int64(len(raw)) {
		t.Fatalf("archive %d bytes not smaller than plain %d", info.Size(), len(raw))
	}
}

func TestReadArchiveRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.zst")
	if err := os.WriteFile(path, []byte("not zstd at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadArchive(path); err == nil {
		t.Fatal("garbage archive must not decode")
	}
}
