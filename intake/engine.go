/*
engine.go - Batch intake orchestration

PURPOSE:
  Drives the per-record pipeline over one inbound batch:

    RECEIVED -> KEYED -> DUP-CHECKED -> [LOCATION] -> [QUANTITY]
             -> ACCEPTED | REJECTED

  and presents exactly the accepted subset to persistence. The caller
  gets one aggregated BatchResult for the whole batch, never a
  per-record report.

ORDERING:
  Records are evaluated strictly in submission order on the calling
  goroutine. Record N's acceptance feeds record N+1's duplicate check,
  so there is no intra-batch parallelism by design.

STATUS AGGREGATION:
  The status/error pair reflects the last significant branch taken:
  processing any recognized record lands on 200 "Created" unless an
  invalid locator set 400 "Invalid Locator". Rejections for duplication
  or quantity are silent. An empty batch (or one containing only foreign
  kinds) returns 200 with an empty error.

FAILURE SEMANTICS:
  Collaborator read failures and persistence failures are fatal to the
  batch and propagate as a single error; the engine never retries and
  offers no partial-commit coordination.

SEE ALSO:
  - guard.go, quantity.go, location.go: The individual gates
  - api/handlers.go: HTTP layer calling IntakeBatch
*/
package intake

import (
	"context"
	"fmt"
	"net/http"
)

// statusCreated is the error-field text the devices expect on success.
const statusCreated = "Created"

// statusInvalidLocator is surfaced when a delivery names a bad location.
const statusInvalidLocator = "Invalid Locator"

// Persistence stores the accepted subset of a batch. Implementations own
// whatever atomicity they can offer; the engine neither retries nor
// rolls back.
type Persistence interface {
	SaveAll(ctx context.Context, records []TransactionRecord) ([]TransactionRecord, error)
}

// Engine wires the gates together. One Engine serves many batches;
// all per-batch state lives in locals inside IntakeBatch.
type Engine struct {
	index       PersistedKeyIndex
	locations   LocationValidator
	quantities  QuantitySource
	persistence Persistence
}

func NewEngine(index PersistedKeyIndex, locations LocationValidator, quantities QuantitySource, persistence Persistence) *Engine {
	return &Engine{
		index:       index,
		locations:   locations,
		quantities:  quantities,
		persistence: persistence,
	}
}

// IntakeBatch screens one inbound batch and persists the survivors.
//
// Records whose kind does not belong to family fall through silently,
// mirroring the per-family services this engine consolidates.
func (e *Engine) IntakeBatch(ctx context.Context, family Family, batch []TransactionRecord) (BatchResult, error) {
	result := BatchResult{Status: http.StatusOK}

	guard := NewDuplicateGuard(e.index)
	ledger := NewQuantityLedger(e.quantities)

	// Filter/accumulate pass: the input slice is never mutated.
	accepted := make([]TransactionRecord, 0, len(batch))

	for _, record := range batch {
		if !family.Accepts(record.Kind) {
			continue
		}

		key := ComposeKey(record)

		decision, err := guard.ShouldAccept(ctx, key)
		if err != nil {
			return BatchResult{}, err
		}
		if decision != Accept {
			result.Status, result.Error = http.StatusOK, statusCreated
			continue
		}

		if record.Kind.NeedsLocationCheck() {
			subinv, locator := record.LocationPair()
			verdict, err := e.locations.Validate(ctx, subinv, locator)
			if err != nil {
				// Validator trouble is a no-decision, never a batch failure.
				verdict = LocationUnknown
			}
			switch verdict {
			case LocationInvalid:
				result.Status, result.Error = http.StatusBadRequest, statusInvalidLocator
				continue
			case LocationUnknown:
				continue
			}
		}

		if record.Kind.NeedsQuantityCheck() {
			verdict, err := ledger.CheckAndReserve(ctx, record.PoHeaderID, record.Attribute8, record.DeliveredQty)
			if err != nil {
				return BatchResult{}, err
			}
			if verdict == ExceedsLimit {
				result.Status, result.Error = http.StatusOK, statusCreated
				continue
			}
			if record.Kind == KindPODeliveryVirtual {
				// The virtual designation is a request-time hint only.
				record.Kind = KindPODelivery
			}
		}

		accepted = append(accepted, record)
		guard.Remember(key)
		result.Status, result.Error = http.StatusOK, statusCreated
	}

	saved, err := e.persistence.SaveAll(ctx, accepted)
	if err != nil {
		return BatchResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	result.Data = saved

	return result, nil
}
