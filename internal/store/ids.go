// Package store implements the Artifact Store: the per-run, per-iteration
// filesystem layout with atomic write semantics, plus an advisory SQLite run
// index (SPEC_FULL.md §4.7).
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRunID generates a human-sortable, dsstar_-prefixed run id: a
// millisecond-resolution timestamp (so directory listings sort
// chronologically) plus a short random suffix to avoid collisions between
// runs started in the same millisecond (§3 "Go representation").
func NewRunID(now time.Time) string {
	return fmt.Sprintf("dsstar_%s_%s", now.UTC().Format("20060102T150405.000Z"), shortID())
}

func shortID() string {
	id := uuid.NewString()
	return id[:8]
}
