/*
key.go - Idempotency key composition

PURPOSE:
  Builds the deterministic business key used to decide whether two
  records represent the same real-world event. Each Kind has a fixed,
  ordered list of fields; two records of the same kind with identical
  key fields are duplicates.

KEY SHAPE:
  The key is a structured tuple internally (kind + ordered field values).
  String concatenation only happens at the boundary, via String(), for
  callers that need a flat map key. The field order per kind is part of
  the wire contract with the existing data and must not change.

FAILURE MODE:
  None. A missing field is the empty string and produces a degenerate,
  collision-prone key component rather than an error.

SEE ALSO:
  - guard.go: Consumes keys for duplicate detection
  - types.go: TransactionRecord field definitions
*/
package intake

import "strings"

// keyDelimiter joins key fields in the flat string form. It matches the
// separator the persisted records were originally keyed with.
const keyDelimiter = "-"

// IdempotencyKey identifies one real-world transaction event. Fields are
// ordered per the kind's schema.
type IdempotencyKey struct {
	Kind   Kind
	Fields []string
}

// String flattens the key for use as a set member. Collision-resistant
// for well-formed business data; fields containing the delimiter are the
// caller's problem, exactly as in the stored data.
func (k IdempotencyKey) String() string {
	return string(k.Kind) + keyDelimiter + strings.Join(k.Fields, keyDelimiter)
}

// ComposeKey builds the idempotency key for a record. Pure function of
// the record's fields for a given kind; never fails.
//
// RMA schemas embed the kind string itself as the first field because the
// persisted RMA rows are keyed that way. The other families key on
// business fields only.
func ComposeKey(r TransactionRecord) IdempotencyKey {
	var fields []string

	switch r.Kind {
	case KindPOReceipt:
		fields = []string{
			r.PoHeaderID,
			r.ReleaseNum,
			r.ItemID,
			r.SupplierInvoiceNum,
			r.SupplierInvoiceDate,
			r.Status,
			r.Attribute8,
		}
	case KindPODelivery, KindPODeliveryVirtual:
		fields = []string{
			r.PoHeaderID,
			r.ReleaseNum,
			r.ItemID,
			r.DeliveryLocator,
			r.Status,
			r.ReceiptNum,
			r.Attribute8,
		}
	case KindRMAReceipt:
		fields = []string{
			string(r.Kind),
			r.LineNum,
			r.OrderHeaderID,
			r.OrderLineID,
			r.Attribute3,
			r.ItemID,
			r.Status,
		}
	case KindRMADelivery:
		fields = []string{
			string(r.Kind),
			r.ReceiptNum,
			r.LineNum,
			r.OrderHeaderID,
			r.OrderLineID,
			r.Attribute3,
			r.Attribute10,
			r.ItemID,
			r.Status,
		}
	case KindIOReceipt:
		fields = []string{
			r.LineNum,
			r.ItemID,
			r.ShipmentHeaderID,
			r.Status,
			r.ShipmentLineID,
		}
	case KindIODelivery:
		fields = []string{
			r.LineNum,
			r.ItemID,
			r.ShipmentHeaderID,
			r.ReceiptNum,
			r.Status,
			r.DeliveryLocator,
			r.ShipmentLineID,
		}
	}

	kind := r.Kind
	if kind == KindPODeliveryVirtual {
		// A virtual delivery is the same real-world event as the plain
		// delivery it becomes on acceptance; the two must collide.
		kind = KindPODelivery
	}

	return IdempotencyKey{Kind: kind, Fields: fields}
}
