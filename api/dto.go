/*
dto.go - Request/response data structures for the intake API

PURPOSE:
  Wire-level shapes for the device payloads and the response envelope.
  Field names follow the handheld integration contract (camelCase,
  matching the upstream mobile client); the domain types in intake/
  stay free of JSON concerns.

CONVENTIONS:
  - Every business field is a string on the wire except deliveredQty,
    which decodes through decimal.Decimal (accepts both number and
    string forms).
  - Absent fields decode to "" and flow into key composition as empty
    components; the API never rejects a record for a missing field.

SEE ALSO:
  - handlers.go: Uses these DTOs
  - intake/types.go: Domain counterpart
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/gsretail/mobile-intake/intake"
)

// TransactionRecordDTO is one line-level device record on the wire.
type TransactionRecordDTO struct {
	TransactionType string `json:"transactionType"`

	PoHeaderID          string `json:"poHeaderId,omitempty"`
	ReleaseNum          string `json:"releaseNum,omitempty"`
	SupplierInvoiceNum  string `json:"supInvNum,omitempty"`
	SupplierInvoiceDate string `json:"supInvDate,omitempty"`

	OrderHeaderID string `json:"orderHeaderId,omitempty"`
	OrderLineID   string `json:"orderLineId,omitempty"`

	ShipmentHeaderID string `json:"shipmentHeaderId,omitempty"`
	ShipmentLineID   string `json:"shipmentLineId,omitempty"`

	ItemID     string `json:"itemId,omitempty"`
	LineNum    string `json:"lineNumber,omitempty"`
	Status     string `json:"status,omitempty"`
	ReceiptNum string `json:"receiptNum,omitempty"`

	DeliverySubinv  string `json:"delivSubInv,omitempty"`
	DeliveryLocator string `json:"delivLocator,omitempty"`

	Attribute3  string `json:"attribute3,omitempty"`
	Attribute8  string `json:"attribute8,omitempty"`
	Attribute10 string `json:"attribute10,omitempty"`

	DeliveredQty decimal.Decimal `json:"deliveredQty"`
}

// EnvelopeDTO mirrors the response envelope the devices already parse:
// one status/error pair per batch, optional saved records.
type EnvelopeDTO struct {
	Status int                    `json:"status"`
	Error  string                 `json:"error,omitempty"`
	Data   []TransactionRecordDTO `json:"data,omitempty"`
}

func toRecord(d TransactionRecordDTO) intake.TransactionRecord {
	return intake.TransactionRecord{
		Kind:                intake.Kind(d.TransactionType),
		PoHeaderID:          d.PoHeaderID,
		ReleaseNum:          d.ReleaseNum,
		SupplierInvoiceNum:  d.SupplierInvoiceNum,
		SupplierInvoiceDate: d.SupplierInvoiceDate,
		OrderHeaderID:       d.OrderHeaderID,
		OrderLineID:         d.OrderLineID,
		ShipmentHeaderID:    d.ShipmentHeaderID,
		ShipmentLineID:      d.ShipmentLineID,
		ItemID:              d.ItemID,
		LineNum:             d.LineNum,
		Status:              d.Status,
		ReceiptNum:          d.ReceiptNum,
		DeliverySubinv:      d.DeliverySubinv,
		DeliveryLocator:     d.DeliveryLocator,
		Attribute3:          d.Attribute3,
		Attribute8:          d.Attribute8,
		Attribute10:         d.Attribute10,
		DeliveredQty:        d.DeliveredQty,
	}
}

func fromRecord(r intake.TransactionRecord) TransactionRecordDTO {
	return TransactionRecordDTO{
		TransactionType:     string(r.Kind),
		PoHeaderID:          r.PoHeaderID,
		ReleaseNum:          r.ReleaseNum,
		SupplierInvoiceNum:  r.SupplierInvoiceNum,
		SupplierInvoiceDate: r.SupplierInvoiceDate,
		OrderHeaderID:       r.OrderHeaderID,
		OrderLineID:         r.OrderLineID,
		ShipmentHeaderID:    r.ShipmentHeaderID,
		ShipmentLineID:      r.ShipmentLineID,
		ItemID:              r.ItemID,
		LineNum:             r.LineNum,
		Status:              r.Status,
		ReceiptNum:          r.ReceiptNum,
		DeliverySubinv:      r.DeliverySubinv,
		DeliveryLocator:     r.DeliveryLocator,
		Attribute3:          r.Attribute3,
		Attribute8:          r.Attribute8,
		Attribute10:         r.Attribute10,
		DeliveredQty:        r.DeliveredQty,
	}
}

func toRecords(dtos []TransactionRecordDTO) []intake.TransactionRecord {
	records := make([]intake.TransactionRecord, len(dtos))
	for i, d := range dtos {
		records[i] = toRecord(d)
	}
	return records
}

func fromRecords(records []intake.TransactionRecord) []TransactionRecordDTO {
	if len(records) == 0 {
		return nil
	}
	dtos := make([]TransactionRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = fromRecord(r)
	}
	return dtos
}
