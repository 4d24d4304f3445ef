package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsretail/mobile-intake/api"
	"github.com/gsretail/mobile-intake/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(api.NewRouter(api.NewHandler(store)))
	t.Cleanup(server.Close)
	return server, store
}

func postBatch(t *testing.T, server *httptest.Server, path string, batch []api.TransactionRecordDTO) api.EnvelopeDTO {
	body, err := json.Marshal(batch)
	require.NoError(t, err)
	return postRaw(t, server, path, body)
}

func postRaw(t *testing.T, server *httptest.Server, path string, body []byte) api.EnvelopeDTO {
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	// The devices read the envelope, not the transport status.
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope api.EnvelopeDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func getEnvelope(t *testing.T, server *httptest.Server, path string) api.EnvelopeDTO {
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope api.EnvelopeDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

// =============================================================================
// PO CONFIRMATION
// =============================================================================

func TestConfirmPO_DuplicateReceipts_OneCreated(t *testing.T) {
	// GIVEN: A batch carrying the same PO receipt twice
	// WHEN: The batch is posted
	// THEN: One record persists; the envelope reports 200 "Created"

	server, _ := newTestServer(t)

	receipt := api.TransactionRecordDTO{
		TransactionType:    "PO_RECEIPT",
		PoHeaderID:         "1001",
		ItemID:             "ITM-1",
		SupplierInvoiceNum: "INV-1",
		Status:             "OPEN",
	}
	envelope := postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{receipt, receipt})

	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "Created", envelope.Error)
	assert.Len(t, envelope.Data, 1)

	// A replay of the same batch persists nothing new.
	envelope = postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{receipt})
	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "Created", envelope.Error)
	assert.Empty(t, envelope.Data)

	listed := getEnvelope(t, server, "/api/po/confirm")
	assert.Len(t, listed.Data, 1)
}

func TestConfirmPO_Delivery_FullPipeline(t *testing.T) {
	// GIVEN: A registered locator and a line total of 100, 90 delivered
	// WHEN: Deliveries of 10 and then 15 are posted
	// THEN: The exact fit persists; the overshoot drops silently

	server, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.AddLocator(ctx, "MAIN", "A-01-02"))
	require.NoError(t, store.SetTotalQuantity(ctx, "1001", "CORR-1", decimal.NewFromInt(100)))

	delivery := func(receiptNum string, qty int64) api.TransactionRecordDTO {
		return api.TransactionRecordDTO{
			TransactionType: "PO_DELIVERY",
			PoHeaderID:      "1001",
			ItemID:          "ITM-1",
			ReceiptNum:      receiptNum,
			Status:          "OPEN",
			DeliverySubinv:  "MAIN",
			DeliveryLocator: "A-01-02",
			Attribute8:      "CORR-1",
			DeliveredQty:    decimal.NewFromInt(qty),
		}
	}

	// Seed 90 of the 100 units.
	envelope := postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{delivery("R-1", 90)})
	require.Len(t, envelope.Data, 1)

	envelope = postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{delivery("R-2", 10)})
	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "Created", envelope.Error)
	assert.Len(t, envelope.Data, 1)

	envelope = postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{delivery("R-3", 15)})
	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "Created", envelope.Error)
	assert.Empty(t, envelope.Data, "overshoot must drop silently")
}

func TestConfirmPO_InvalidLocator_Reported(t *testing.T) {
	// GIVEN: A delivery naming a locator the store does not know
	// WHEN: The batch is posted
	// THEN: Envelope 400 "Invalid Locator"; transport stays 200

	server, store := newTestServer(t)
	require.NoError(t, store.AddLocator(context.Background(), "MAIN", "A-01-02"))

	envelope := postBatch(t, server, "/api/po/confirm", []api.TransactionRecordDTO{{
		TransactionType: "PO_DELIVERY",
		PoHeaderID:      "1001",
		ItemID:          "ITM-1",
		ReceiptNum:      "R-1",
		DeliverySubinv:  "MAIN",
		DeliveryLocator: "Z-99-99",
	}})

	assert.Equal(t, http.StatusBadRequest, envelope.Status)
	assert.Equal(t, "Invalid Locator", envelope.Error)
	assert.Empty(t, envelope.Data)
}

func TestConfirmPO_MalformedBody_Rejected(t *testing.T) {
	server, _ := newTestServer(t)

	envelope := postRaw(t, server, "/api/po/confirm", []byte(`{"not":"an array"`))

	assert.Equal(t, http.StatusBadRequest, envelope.Status)
	assert.Equal(t, "Invalid request body", envelope.Error)
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

func TestConfirmPO_FailureOutcomeReachesAuditLog(t *testing.T) {
	// GIVEN: A malformed request body
	// WHEN: The batch is posted
	// THEN: The audit row carries both the raw payload and the error
	//       envelope the device was sent

	server, store := newTestServer(t)

	envelope := postRaw(t, server, "/api/po/confirm", []byte(`{"not":"an array"`))
	require.Equal(t, http.StatusBadRequest, envelope.Status)

	entries, err := store.AuditEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PO Confirmation", entries[0].Module)
	assert.Equal(t, `{"not":"an array"`, entries[0].Request)
	assert.Contains(t, entries[0].Response, "Invalid request body")
}

// =============================================================================
// FAMILY ROUTING
// =============================================================================

func TestConfirmRMA_IgnoresForeignKinds(t *testing.T) {
	// GIVEN: A PO receipt posted to the RMA endpoint
	// WHEN: The batch is processed
	// THEN: Nothing persists and nothing is reported

	server, _ := newTestServer(t)

	envelope := postBatch(t, server, "/api/rma/confirm", []api.TransactionRecordDTO{{
		TransactionType:    "PO_RECEIPT",
		PoHeaderID:         "1001",
		SupplierInvoiceNum: "INV-1",
	}})

	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Empty(t, envelope.Error)
	assert.Empty(t, envelope.Data)

	listed := getEnvelope(t, server, "/api/po/confirm")
	assert.Empty(t, listed.Data)
}

func TestConfirmIO_ReceiptPersists(t *testing.T) {
	server, _ := newTestServer(t)

	envelope := postBatch(t, server, "/api/io/confirm", []api.TransactionRecordDTO{{
		TransactionType:  "IO_RECEIPT",
		ShipmentHeaderID: "SH-1",
		ShipmentLineID:   "SL-1",
		ItemID:           "ITM-1",
		LineNum:          "1",
		Status:           "OPEN",
	}})

	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "Created", envelope.Error)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "IO_RECEIPT", envelope.Data[0].TransactionType)

	listed := getEnvelope(t, server, "/api/io/confirm")
	assert.Len(t, listed.Data, 1)
}
