/*
Package intake implements the batch intake engine for handheld-device
inventory transactions.

PURPOSE:
  This package contains the decision logic of the mobile-integration
  backend: composing idempotency keys per transaction kind, screening out
  duplicates within a batch and against durable storage, validating
  warehouse locations for delivery transactions, and enforcing the
  cumulative quantity ceiling on purchase-order deliveries.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: the business transaction type of a record (receipt, delivery, ...)
  - Family: a transaction family served by one intake endpoint (PO/RMA/IO)
  - TransactionRecord: one line-level event submitted by a device
  - BatchResult: the single aggregated outcome of an intake call

DESIGN PRINCIPLES:
  1. Order matters: records are evaluated strictly in submission order;
     record N's acceptance affects record N+1's duplicate check.
  2. Precision: delivered quantities use decimal.Decimal, never floats.
  3. Silent drops: duplicates and quantity overshoots are dropped, not
     errored - only an invalid locator surfaces in the batch status.

SEE ALSO:
  - key.go: Idempotency key composition per kind
  - guard.go: Duplicate detection
  - quantity.go: Delivery quantity ceiling
  - engine.go: Orchestration
*/
package intake

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Business transaction type
// =============================================================================

type Kind string

const (
	KindPOReceipt         Kind = "PO_RECEIPT"
	KindPODelivery        Kind = "PO_DELIVERY"
	KindPODeliveryVirtual Kind = "PO_DELIVERY_VIRTUAL"
	KindRMAReceipt        Kind = "RMA_RECEIPT"
	KindRMADelivery       Kind = "RMA_DELIVERY"
	KindIOReceipt         Kind = "IO_RECEIPT"
	KindIODelivery        Kind = "IO_DELIVERY"
)

// NeedsLocationCheck reports whether records of this kind carry a
// destination (subinventory, locator) pair that must be validated
// before acceptance.
func (k Kind) NeedsLocationCheck() bool {
	switch k {
	case KindPODelivery, KindPODeliveryVirtual, KindRMADelivery, KindIODelivery:
		return true
	}
	return false
}

// NeedsQuantityCheck reports whether records of this kind are subject to
// the cumulative delivered-quantity ceiling.
func (k Kind) NeedsQuantityCheck() bool {
	return k == KindPODelivery || k == KindPODeliveryVirtual
}

// =============================================================================
// FAMILY - Transaction family served by one intake endpoint
// =============================================================================

// Family scopes an intake call to the kinds its endpoint accepts.
// Records of other kinds fall through silently, matching the original
// per-family services.
type Family string

const (
	FamilyPO  Family = "po"
	FamilyRMA Family = "rma"
	FamilyIO  Family = "io"
)

// Accepts reports whether this family processes records of the given kind.
func (f Family) Accepts(k Kind) bool {
	switch f {
	case FamilyPO:
		return k == KindPOReceipt || k == KindPODelivery || k == KindPODeliveryVirtual
	case FamilyRMA:
		return k == KindRMAReceipt || k == KindRMADelivery
	case FamilyIO:
		return k == KindIOReceipt || k == KindIODelivery
	}
	return false
}

// =============================================================================
// TRANSACTION RECORD - One line-level event from a device
// =============================================================================

// TransactionRecord is the union of the business fields the three device
// payload shapes carry. Which fields are meaningful depends on Kind; a
// field absent from the payload is the empty string and degrades to an
// empty key component rather than failing (see key.go).
type TransactionRecord struct {
	Kind Kind

	// Purchase order fields
	PoHeaderID          string
	ReleaseNum          string
	SupplierInvoiceNum  string
	SupplierInvoiceDate string

	// Sales order / RMA fields
	OrderHeaderID string
	OrderLineID   string

	// Inter-org shipment fields
	ShipmentHeaderID string
	ShipmentLineID   string

	// Shared line fields
	ItemID     string
	LineNum    string
	Status     string
	ReceiptNum string

	// Destination location (delivery kinds)
	DeliverySubinv  string
	DeliveryLocator string

	// Free-form correlation attributes
	Attribute3  string
	Attribute8  string
	Attribute10 string

	// Delivered quantity (delivery kinds)
	DeliveredQty decimal.Decimal
}

// LocationPair returns the (subinventory, locator) pair to validate for
// this record. RMA deliveries carry their locator in attribute10; the
// other delivery kinds use the dedicated locator field.
func (r TransactionRecord) LocationPair() (subinventory, locator string) {
	if r.Kind == KindRMADelivery {
		return r.DeliverySubinv, r.Attribute10
	}
	return r.DeliverySubinv, r.DeliveryLocator
}

// =============================================================================
// BATCH RESULT - Single aggregated outcome per intake call
// =============================================================================

// BatchResult mirrors the original response envelope: one status/error
// pair for the whole batch, reflecting the last significant branch taken,
// plus the records actually persisted. There is no per-record report.
type BatchResult struct {
	Status int
	Error  string
	Data   []TransactionRecord
}
