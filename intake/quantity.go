/*
quantity.go - Delivered-quantity ceiling for purchase-order deliveries

PURPOSE:
  A PO delivery must not push the cumulative delivered quantity for its
  (header, correlation-attribute) pair past the authoritative total.
  Records that would overshoot are dropped silently.

ALGORITHM (per record, not cached across the batch):
  1. Read totalQuantity for (headerID, attribute8) from the external
     source. Missing or unparseable totals count as zero, so any positive
     delivery against an unknown total is rejected.
  2. Read deliveredQuantitySoFar for attribute8.
  3. Within limit iff deliveredSoFar + deliveredQty <= totalQuantity.

STALENESS:
  Both reads happen fresh for every record. Two deliveries against the
  same header inside one batch each see the same persisted deliveredSoFar
  unless persistence lands between them. Preserved behavior, see
  DESIGN.md.

SEE ALSO:
  - engine.go: Applies the verdict and the virtual-kind rewrite
*/
package intake

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUANTITY SOURCE - External collaborator
// =============================================================================

// QuantitySource provides the authoritative total and the cumulative
// delivered quantity. The bool result reports whether a value exists;
// a missing value is treated as zero by the ledger.
type QuantitySource interface {
	TotalQuantity(ctx context.Context, headerID, attribute string) (decimal.Decimal, bool, error)
	DeliveredQuantity(ctx context.Context, attribute string) (decimal.Decimal, bool, error)
}

// =============================================================================
// QUANTITY LEDGER
// =============================================================================

type QuantityVerdict int

const (
	WithinLimit QuantityVerdict = iota
	ExceedsLimit
)

func (v QuantityVerdict) String() string {
	if v == ExceedsLimit {
		return "exceeds_limit"
	}
	return "within_limit"
}

// QuantityLedger applies the running-quantity ceiling. Stateless; every
// check reads the external source fresh.
type QuantityLedger struct {
	source QuantitySource
}

func NewQuantityLedger(source QuantitySource) *QuantityLedger {
	return &QuantityLedger{source: source}
}

// CheckAndReserve decides whether delivering qty for the pair stays
// within the ceiling. The name reflects the contract, not an in-memory
// reservation: the delivered total only moves once persistence commits.
func (l *QuantityLedger) CheckAndReserve(ctx context.Context, headerID, attribute string, qty decimal.Decimal) (QuantityVerdict, error) {
	total, ok, err := l.source.TotalQuantity(ctx, headerID, attribute)
	if err != nil {
		return ExceedsLimit, fmt.Errorf("%w: total quantity: %v", ErrQuantityLookup, err)
	}
	if !ok {
		total = decimal.Zero
	}

	delivered, ok, err := l.source.DeliveredQuantity(ctx, attribute)
	if err != nil {
		return ExceedsLimit, fmt.Errorf("%w: delivered quantity: %v", ErrQuantityLookup, err)
	}
	if !ok {
		delivered = decimal.Zero
	}

	if delivered.Add(qty).LessThanOrEqual(total) {
		return WithinLimit, nil
	}
	return ExceedsLimit, nil
}
