package translog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gsretail/mobile-intake/translog"
)

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) SaveEntry(context.Context, translog.Entry) error {
	return errors.New("audit table locked")
}

func (failingStore) SetResponse(context.Context, string, string) error {
	return errors.New("audit table locked")
}

func TestLogger_StoreFailure_Swallowed(t *testing.T) {
	// GIVEN: A store that rejects every write
	// WHEN: A request and its response are logged
	// THEN: No panic, and the caller still gets a usable entry

	logger := translog.New(failingStore{})
	ctx := context.Background()

	entry := logger.Request(ctx, "PO Confirmation", []byte(`[]`))
	if entry.ID == "" {
		t.Error("expected an entry ID even when the store fails")
	}
	if entry.Module != "PO Confirmation" {
		t.Errorf("unexpected module: %q", entry.Module)
	}

	logger.Response(ctx, entry, []byte(`{"status":200}`))
}

func TestLogger_EntryCarriesRawPayload(t *testing.T) {
	logger := translog.New(failingStore{})

	payload := []byte(`[{"transactionType":"PO_RECEIPT"}]`)
	entry := logger.Request(context.Background(), "PO Confirmation", payload)

	if entry.Request != string(payload) {
		t.Errorf("expected raw payload preserved, got %q", entry.Request)
	}
	if entry.ProcessedAt.IsZero() {
		t.Error("expected ProcessedAt to be set")
	}
}
