/*
handlers.go - HTTP handlers for the mobile intake API

PURPOSE:
  Exposes the batch intake engine to the handheld devices. Handles HTTP
  request/response, JSON serialization, audit logging of raw payloads,
  and delegates every decision to the intake engine.

ENDPOINTS:
  PO confirmation:
    POST /api/po/confirm      Intake a batch of PO receipt/delivery records
    GET  /api/po/confirm      List persisted PO records

  RMA confirmation:
    POST /api/rma/confirm     Intake a batch of RMA receipt/delivery records
    GET  /api/rma/confirm     List persisted RMA records

  IO receipt confirmation:
    POST /api/io/confirm      Intake a batch of IO receipt/delivery records
    GET  /api/io/confirm      List persisted IO records

REQUEST FLOW:
  1. Read the raw body and write the audit-log entry
  2. Decode the batch
  3. Run the intake engine for the endpoint's family
  4. Serialize the aggregated envelope
  5. Attach the response to the audit-log entry

ERROR HANDLING:
  The envelope carries the batch-level status the devices already parse:
  - 200 "Created": batch processed (duplicates/overshoots drop silently)
  - 400 "Invalid Locator": a delivery named a bad location
  - 400: request body did not decode
  - 500: a collaborator or persistence failure killed the batch

SEE ALSO:
  - dto.go: Wire shapes
  - server.go: Router setup and middleware
  - intake/engine.go: The decisions themselves
*/
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gsretail/mobile-intake/intake"
	"github.com/gsretail/mobile-intake/store/sqlite"
	"github.com/gsretail/mobile-intake/translog"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *intake.Engine
	Audit  *translog.Logger
}

// NewHandler wires the engine against the store, which implements every
// collaborator interface.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:  store,
		Engine: intake.NewEngine(store, store, store, store),
		Audit:  translog.New(store),
	}
}

// =============================================================================
// INTAKE HANDLERS
// =============================================================================

// ConfirmPO intakes a batch of PO receipt/delivery records.
func (h *Handler) ConfirmPO(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, intake.FamilyPO, "PO Confirmation")
}

// ConfirmRMA intakes a batch of RMA receipt/delivery records.
func (h *Handler) ConfirmRMA(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, intake.FamilyRMA, "RMA Confirmation")
}

// ConfirmIO intakes a batch of inter-org receipt/delivery records.
func (h *Handler) ConfirmIO(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, intake.FamilyIO, "IO Receipt Confirmation")
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, family intake.Family, module string) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeEnvelope(w, EnvelopeDTO{Status: http.StatusBadRequest, Error: "Failed to read request body"})
		return
	}

	// Raw payload first: the audit row must exist even if decoding fails.
	entry := h.Audit.Request(ctx, module, body)

	// Every outcome, failures included, lands on the audit row so support
	// staff can replay what the device was actually told.
	respond := func(envelope EnvelopeDTO) {
		if response, err := json.Marshal(envelope); err == nil {
			h.Audit.Response(ctx, entry, response)
		}
		writeEnvelope(w, envelope)
	}

	var dtos []TransactionRecordDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		respond(EnvelopeDTO{Status: http.StatusBadRequest, Error: "Invalid request body"})
		return
	}

	result, err := h.Engine.IntakeBatch(ctx, family, toRecords(dtos))
	if err != nil {
		respond(EnvelopeDTO{Status: http.StatusInternalServerError, Error: "Batch processing failed"})
		return
	}

	respond(EnvelopeDTO{
		Status: result.Status,
		Error:  result.Error,
		Data:   fromRecords(result.Data),
	})
}

// =============================================================================
// LISTING HANDLERS
// =============================================================================

// ListPO returns all persisted PO records.
func (h *Handler) ListPO(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, intake.FamilyPO)
}

// ListRMA returns all persisted RMA records.
func (h *Handler) ListRMA(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, intake.FamilyRMA)
}

// ListIO returns all persisted IO records.
func (h *Handler) ListIO(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, intake.FamilyIO)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, family intake.Family) {
	records, err := h.Store.ListByFamily(r.Context(), family)
	if err != nil {
		writeEnvelope(w, EnvelopeDTO{Status: http.StatusInternalServerError, Error: "Failed to list records"})
		return
	}
	writeEnvelope(w, EnvelopeDTO{Status: http.StatusOK, Data: fromRecords(records)})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeEnvelope always answers HTTP 200 with the batch status inside the
// envelope; the devices read the envelope, not the transport status.
func writeEnvelope(w http.ResponseWriter, envelope EnvelopeDTO) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope)
}
