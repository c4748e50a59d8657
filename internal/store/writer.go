package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic writes data to path by first writing to a temp file in the
// same directory, then renaming it into place, so a crash mid-write never
// leaves a half-written artifact visible under its final name (§4.7
// "Atomic writes").
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("store: write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

// writeJSON pretty-prints v with two-space indentation and writes it
// atomically (§4.7 "All JSON is pretty-printed").
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", path, err)
	}
	return writeAtomic(path, data, 0o644)
}

// writeText writes a UTF-8 text file atomically.
func writeText(path, text string) error {
	return writeAtomic(path, []byte(text), 0o644)
}
