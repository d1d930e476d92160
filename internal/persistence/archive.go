package persistence

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

// WriteArchive writes a zstd-compressed snapshot document to path, for
// replaying ticks the history ring has already evicted.
func WriteArchive(path string, st *world.State) error {
	raw, err := hydrate.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return f.Sync()
}

// ReadArchive restores a snapshot from a zstd archive, revalidating it
// against the snapshot schema on the way in.
func ReadArchive(path string) (*world.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return hydrate.Unmarshal(raw)
}
