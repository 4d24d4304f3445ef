/*
location.go - Warehouse location validation contract

PURPOSE:
  Delivery-type records carry a destination (subinventory, locator) pair
  that must exist in the warehouse before the record is accepted. The
  engine only consumes the tri-state result; how validation happens
  (database lookup, remote call) is the implementation's business.

RESULT SEMANTICS:
  LocationValid:   accept the pair, continue processing the record.
  LocationInvalid: the batch status becomes 400 "Invalid Locator" and the
                   record is dropped. Records accepted earlier in the
                   batch stay accepted.
  LocationUnknown: the validator produced no decision (missing result,
                   transport trouble). The record is dropped silently and
                   the batch status is left untouched. Inherited behavior;
                   see DESIGN.md before changing it.

SEE ALSO:
  - engine.go: Where results are acted on
  - store/sqlite: Locator-table-backed implementation
*/
package intake

import "context"

// LocationResult is the validator's tri-state decision.
type LocationResult int

const (
	LocationUnknown LocationResult = iota
	LocationValid
	LocationInvalid
)

func (r LocationResult) String() string {
	switch r {
	case LocationValid:
		return "valid"
	case LocationInvalid:
		return "invalid"
	}
	return "unknown"
}

// LocationValidator checks that a destination pair exists.
//
// Implementations should return LocationUnknown rather than an error for
// "could not decide" conditions; a returned error is also treated as
// LocationUnknown by the engine, which never fails a batch on validator
// trouble.
type LocationValidator interface {
	Validate(ctx context.Context, subinventory, locator string) (LocationResult, error)
}
