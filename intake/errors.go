/*
errors.go - Centralized error types for the intake engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Note the asymmetry with the batch status: duplicates and quantity
  overshoots are NOT errors (records are dropped silently); only
  collaborator failures reach the caller as Go errors.

ERROR CATEGORIES:
  1. Lookup errors - persisted index / quantity source read failures
  2. Persistence errors - the batch-level save failed

USAGE:
  if errors.Is(err, intake.ErrPersistence) {
      // whole batch failed; nothing was recorded about partial progress
  }

SEE ALSO:
  - engine.go: Where these are produced
*/
package intake

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIndexLookup is returned when the persisted key index cannot be
	// queried. Fatal to the batch: without the index the duplicate
	// contract cannot be honored.
	ErrIndexLookup = errors.New("persisted key index lookup failed")

	// ErrQuantityLookup is returned when an external quantity source
	// cannot be read. Fatal to the batch for the same reason.
	ErrQuantityLookup = errors.New("quantity source lookup failed")

	// ErrPersistence is returned when the accepted subset could not be
	// saved. The engine does not retry and performs no rollback
	// coordination beyond what persistence itself offers.
	ErrPersistence = errors.New("batch persistence failed")
)
