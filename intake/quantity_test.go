package intake_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gsretail/mobile-intake/intake"
	"github.com/gsretail/mobile-intake/intake/store"
)

// =============================================================================
// QUANTITY LEDGER
// =============================================================================

func TestQuantityLedger_WithinLimit(t *testing.T) {
	mem := store.NewMemory()
	mem.SetTotalQuantity("1001", "CORR-1", decimal.NewFromInt(100))
	mem.SetDeliveredQuantity("CORR-1", decimal.NewFromInt(40))
	ledger := intake.NewQuantityLedger(mem)

	verdict, err := ledger.CheckAndReserve(context.Background(), "1001", "CORR-1", decimal.NewFromInt(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.WithinLimit {
		t.Errorf("expected WithinLimit at the exact boundary, got %v", verdict)
	}
}

func TestQuantityLedger_ExceedsLimit(t *testing.T) {
	mem := store.NewMemory()
	mem.SetTotalQuantity("1001", "CORR-1", decimal.NewFromInt(100))
	mem.SetDeliveredQuantity("CORR-1", decimal.NewFromInt(90))
	ledger := intake.NewQuantityLedger(mem)

	verdict, err := ledger.CheckAndReserve(context.Background(), "1001", "CORR-1", decimal.NewFromInt(15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.ExceedsLimit {
		t.Errorf("expected ExceedsLimit, got %v", verdict)
	}
}

func TestQuantityLedger_MissingTotalDefaultsToZero(t *testing.T) {
	// GIVEN: No registered total for the pair
	// WHEN: Any positive quantity is checked
	// THEN: ExceedsLimit; a zero quantity still fits (0+0 <= 0)

	mem := store.NewMemory()
	ledger := intake.NewQuantityLedger(mem)
	ctx := context.Background()

	verdict, err := ledger.CheckAndReserve(ctx, "1001", "CORR-1", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.ExceedsLimit {
		t.Errorf("expected positive delivery on unknown total to exceed, got %v", verdict)
	}

	verdict, err = ledger.CheckAndReserve(ctx, "1001", "CORR-1", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.WithinLimit {
		t.Errorf("expected zero delivery to fit an unknown total, got %v", verdict)
	}
}

func TestQuantityLedger_MissingDeliveredDefaultsToZero(t *testing.T) {
	mem := store.NewMemory()
	mem.SetTotalQuantity("1001", "CORR-1", decimal.NewFromInt(10))
	ledger := intake.NewQuantityLedger(mem)

	verdict, err := ledger.CheckAndReserve(context.Background(), "1001", "CORR-1", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.WithinLimit {
		t.Errorf("expected full delivery against untouched total to fit, got %v", verdict)
	}
}

func TestQuantityLedger_FractionalQuantities(t *testing.T) {
	// Decimal arithmetic: 0.1+0.2 style sums must not drift.
	mem := store.NewMemory()
	mem.SetTotalQuantity("1001", "CORR-1", decimal.RequireFromString("0.3"))
	mem.SetDeliveredQuantity("CORR-1", decimal.RequireFromString("0.1"))
	ledger := intake.NewQuantityLedger(mem)

	verdict, err := ledger.CheckAndReserve(context.Background(), "1001", "CORR-1", decimal.RequireFromString("0.2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != intake.WithinLimit {
		t.Errorf("expected 0.1+0.2 <= 0.3 to hold exactly, got %v", verdict)
	}
}
