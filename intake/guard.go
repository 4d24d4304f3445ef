/*
guard.go - Duplicate detection within and across batches

PURPOSE:
  Decides INSERT vs SKIP for each record. A record is a duplicate if its
  idempotency key was already accepted earlier in the same batch, or if a
  record with the same decomposed key already exists in durable storage.

TWO-LEVEL CHECK:
  1. Batch-local: a set of keys accepted so far in this batch. Fresh per
     intake call; discarded when the batch completes.
  2. Persisted: a read-only count query against the persisted key index.

SIDE-EFFECT CONTRACT:
  The batch-local set is mutated only when the engine ACCEPTS a record,
  not when the guard merely checks it. A record that passes the guard but
  is later dropped by the location or quantity gate leaves no trace, so
  an identical later record gets its own full evaluation.

CONCURRENCY:
  Check-then-act against the shared persisted index is not serialized
  across concurrent batches; two batches can both observe "not yet
  persisted" for the same key and both accept. Preserved behavior, see
  DESIGN.md.

SEE ALSO:
  - key.go: Key composition
  - engine.go: Where Remember() is called on acceptance
*/
package intake

import (
	"context"
	"fmt"
)

// =============================================================================
// PERSISTED KEY INDEX - External collaborator (read path only)
// =============================================================================

// PersistedKeyIndex reports how many durable records match a decomposed
// key. The engine never writes through this interface; persistence does.
type PersistedKeyIndex interface {
	Count(ctx context.Context, key IdempotencyKey) (int, error)
}

// =============================================================================
// DECISION
// =============================================================================

type Decision int

const (
	Accept Decision = iota
	SkipInBatch
	SkipPersisted
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case SkipInBatch:
		return "skip_in_batch"
	case SkipPersisted:
		return "skip_persisted"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// =============================================================================
// DUPLICATE GUARD
// =============================================================================

// DuplicateGuard tracks keys accepted within the current batch and
// consults the persisted index for prior batches. One guard per intake
// call; never reused across batches.
type DuplicateGuard struct {
	index PersistedKeyIndex
	seen  map[string]struct{}
}

// NewDuplicateGuard creates a guard with an empty batch-local key set.
func NewDuplicateGuard(index PersistedKeyIndex) *DuplicateGuard {
	return &DuplicateGuard{
		index: index,
		seen:  make(map[string]struct{}),
	}
}

// ShouldAccept classifies a key. It does NOT record the key; call
// Remember once the record is actually accepted.
func (g *DuplicateGuard) ShouldAccept(ctx context.Context, key IdempotencyKey) (Decision, error) {
	if _, ok := g.seen[key.String()]; ok {
		return SkipInBatch, nil
	}

	n, err := g.index.Count(ctx, key)
	if err != nil {
		return SkipPersisted, fmt.Errorf("%w: %v", ErrIndexLookup, err)
	}
	if n > 0 {
		return SkipPersisted, nil
	}

	return Accept, nil
}

// Remember adds a key to the batch-local set so later duplicates in the
// same batch are caught.
func (g *DuplicateGuard) Remember(key IdempotencyKey) {
	g.seen[key.String()] = struct{}{}
}
