// Package store provides in-memory implementations of the intake
// collaborators (for testing/dev).
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/gsretail/mobile-intake/intake"
)

// =============================================================================
// MEMORY - In-memory collaborators (key index, persistence, quantities,
// location validation) behind one lock, mirroring production where all
// four live in one database.
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []intake.TransactionRecord
	keys    map[string]int

	totals    map[string]decimal.Decimal // headerID + "\x00" + attribute
	delivered map[string]decimal.Decimal // attribute

	locators  map[string]bool                   // subinventory + "\x00" + locator
	overrides map[string]intake.LocationResult // explicit verdicts, incl. Unknown
}

func NewMemory() *Memory {
	return &Memory{
		keys:      make(map[string]int),
		totals:    make(map[string]decimal.Decimal),
		delivered: make(map[string]decimal.Decimal),
		overrides: make(map[string]intake.LocationResult),
	}
}

func pairKey(a, b string) string { return a + "\x00" + b }

// =============================================================================
// PERSISTED KEY INDEX
// =============================================================================

// Count reports how many saved records share the key.
func (m *Memory) Count(_ context.Context, key intake.IdempotencyKey) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[key.String()], nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// SaveAll appends the accepted subset and feeds both the key index and
// the delivered-quantity totals, so later batches observe this one.
func (m *Memory) SaveAll(_ context.Context, records []intake.TransactionRecord) ([]intake.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		m.records = append(m.records, r)
		m.keys[intake.ComposeKey(r).String()]++

		if r.Kind == intake.KindPODelivery {
			m.delivered[r.Attribute8] = m.delivered[r.Attribute8].Add(r.DeliveredQty)
		}
	}
	return records, nil
}

// Records returns everything saved so far, in save order.
func (m *Memory) Records() []intake.TransactionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]intake.TransactionRecord, len(m.records))
	copy(out, m.records)
	return out
}

// =============================================================================
// QUANTITY SOURCE
// =============================================================================

func (m *Memory) SetTotalQuantity(headerID, attribute string, total decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[pairKey(headerID, attribute)] = total
}

func (m *Memory) SetDeliveredQuantity(attribute string, qty decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered[attribute] = qty
}

func (m *Memory) TotalQuantity(_ context.Context, headerID, attribute string) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total, ok := m.totals[pairKey(headerID, attribute)]
	return total, ok, nil
}

func (m *Memory) DeliveredQuantity(_ context.Context, attribute string) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qty, ok := m.delivered[attribute]
	return qty, ok, nil
}

// =============================================================================
// LOCATION VALIDATOR
// =============================================================================

// AddLocator registers a valid (subinventory, locator) pair. Once any
// pair is registered, unregistered pairs validate as invalid.
func (m *Memory) AddLocator(subinventory, locator string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locators == nil {
		m.locators = make(map[string]bool)
	}
	m.locators[pairKey(subinventory, locator)] = true
}

// SetLocationResult pins an explicit verdict for a pair, including
// LocationUnknown for exercising the no-decision path.
func (m *Memory) SetLocationResult(subinventory, locator string, result intake.LocationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[pairKey(subinventory, locator)] = result
}

// Validate checks overrides first, then the locator set. With no
// locators registered at all every pair is valid, which keeps dev
// setups and tests that don't care about locations friction-free.
func (m *Memory) Validate(_ context.Context, subinventory, locator string) (intake.LocationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if result, ok := m.overrides[pairKey(subinventory, locator)]; ok {
		return result, nil
	}
	if m.locators == nil {
		return intake.LocationValid, nil
	}
	if m.locators[pairKey(subinventory, locator)] {
		return intake.LocationValid, nil
	}
	return intake.LocationInvalid, nil
}
