/*
Package sqlite provides the SQLite-backed implementation of the intake
collaborators.

PURPOSE:
  Implements every external interface the engine consumes - the
  persisted key index, batch persistence, quantity sources, location
  validation - plus audit-log storage, all on one database. In
  production the same patterns apply to PostgreSQL; only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  intake.PersistedKeyIndex: duplicate check against durable rows
  intake.Persistence:       batch insert of the accepted subset
  intake.QuantitySource:    authoritative totals + cumulative deliveries
  intake.LocationValidator: locator-table existence check
  translog.Store:           raw payload audit rows

KEY TABLES:
  transactions:   accepted device records, one row per line-level event
  po_line_totals: authoritative total quantity per (header, attribute)
  locators:       valid (subinventory, locator) pairs
  mob_trans_logs: raw request/response payloads per intake call

DUPLICATE INDEX:
  Each transaction row stores its flattened idempotency key alongside
  the decomposed business columns. The duplicate check counts rows by
  that key; it is indexed, and deliberately NOT unique - concurrent
  batches racing the check-then-act span is inherited behavior (see
  DESIGN.md).

DELIVERED QUANTITY:
  Derived from persisted PO_DELIVERY rows at read time, summed with
  decimal arithmetic in Go rather than SQL to avoid float drift on the
  TEXT-stored quantities.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/intake.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := intake.NewEngine(store, store, store, store)

SEE ALSO:
  - intake: interface definitions
  - intake/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/gsretail/mobile-intake/intake"
	"github.com/gsretail/mobile-intake/translog"
)

// Store implements all collaborator interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from vanishing between connections.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Accepted device transactions, one row per line-level event
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		idem_key TEXT NOT NULL,
		po_header_id TEXT NOT NULL DEFAULT '',
		release_num TEXT NOT NULL DEFAULT '',
		supplier_invoice_num TEXT NOT NULL DEFAULT '',
		supplier_invoice_date TEXT NOT NULL DEFAULT '',
		order_header_id TEXT NOT NULL DEFAULT '',
		order_line_id TEXT NOT NULL DEFAULT '',
		shipment_header_id TEXT NOT NULL DEFAULT '',
		shipment_line_id TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL DEFAULT '',
		line_num TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		receipt_num TEXT NOT NULL DEFAULT '',
		delivery_subinv TEXT NOT NULL DEFAULT '',
		delivery_locator TEXT NOT NULL DEFAULT '',
		attribute3 TEXT NOT NULL DEFAULT '',
		attribute8 TEXT NOT NULL DEFAULT '',
		attribute10 TEXT NOT NULL DEFAULT '',
		delivered_qty TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Duplicate check (hot path). NOT unique: the cross-batch
	-- check-then-act race is inherited behavior.
	CREATE INDEX IF NOT EXISTS idx_transactions_idem_key
		ON transactions(kind, idem_key);

	-- Cumulative delivered quantity per correlation attribute
	CREATE INDEX IF NOT EXISTS idx_transactions_kind_attribute8
		ON transactions(kind, attribute8);

	-- Authoritative quantity ceiling per (PO header, correlation attribute)
	CREATE TABLE IF NOT EXISTS po_line_totals (
		po_header_id TEXT NOT NULL,
		attribute TEXT NOT NULL,
		total_qty TEXT NOT NULL,
		PRIMARY KEY (po_header_id, attribute)
	);

	-- Valid warehouse locations
	CREATE TABLE IF NOT EXISTS locators (
		subinventory TEXT NOT NULL,
		locator TEXT NOT NULL,
		PRIMARY KEY (subinventory, locator)
	);

	-- Raw request/response audit rows
	CREATE TABLE IF NOT EXISTS mob_trans_logs (
		id TEXT PRIMARY KEY,
		module TEXT NOT NULL,
		request TEXT NOT NULL,
		response TEXT NOT NULL DEFAULT '',
		processed_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PERSISTED KEY INDEX (intake.PersistedKeyIndex)
// =============================================================================

// Count reports how many persisted rows share the decomposed key.
// Read path only; rows are written by SaveAll.
func (s *Store) Count(ctx context.Context, key intake.IdempotencyKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE kind = ? AND idem_key = ?`,
		string(key.Kind), key.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting persisted keys: %w", err)
	}
	return n, nil
}

// =============================================================================
// PERSISTENCE (intake.Persistence)
// =============================================================================

// SaveAll inserts the accepted subset in one database transaction.
// Either all rows land or none do.
func (s *Store) SaveAll(ctx context.Context, records []intake.TransactionRecord) ([]intake.TransactionRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			kind, idem_key,
			po_header_id, release_num, supplier_invoice_num, supplier_invoice_date,
			order_header_id, order_line_id, shipment_header_id, shipment_line_id,
			item_id, line_num, status, receipt_num,
			delivery_subinv, delivery_locator,
			attribute3, attribute8, attribute10,
			delivered_qty, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		key := intake.ComposeKey(r)
		_, err := stmt.ExecContext(ctx,
			string(r.Kind), key.String(),
			r.PoHeaderID, r.ReleaseNum, r.SupplierInvoiceNum, r.SupplierInvoiceDate,
			r.OrderHeaderID, r.OrderLineID, r.ShipmentHeaderID, r.ShipmentLineID,
			r.ItemID, r.LineNum, r.Status, r.ReceiptNum,
			r.DeliverySubinv, r.DeliveryLocator,
			r.Attribute3, r.Attribute8, r.Attribute10,
			r.DeliveredQty.String(), now,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByFamily returns all persisted records of the family's kinds,
// in insertion order.
func (s *Store) ListByFamily(ctx context.Context, family intake.Family) ([]intake.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind,
			po_header_id, release_num, supplier_invoice_num, supplier_invoice_date,
			order_header_id, order_line_id, shipment_header_id, shipment_line_id,
			item_id, line_num, status, receipt_num,
			delivery_subinv, delivery_locator,
			attribute3, attribute8, attribute10,
			delivered_qty
		FROM transactions
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []intake.TransactionRecord
	for rows.Next() {
		var r intake.TransactionRecord
		var kind, qty string
		if err := rows.Scan(&kind,
			&r.PoHeaderID, &r.ReleaseNum, &r.SupplierInvoiceNum, &r.SupplierInvoiceDate,
			&r.OrderHeaderID, &r.OrderLineID, &r.ShipmentHeaderID, &r.ShipmentLineID,
			&r.ItemID, &r.LineNum, &r.Status, &r.ReceiptNum,
			&r.DeliverySubinv, &r.DeliveryLocator,
			&r.Attribute3, &r.Attribute8, &r.Attribute10,
			&qty,
		); err != nil {
			return nil, err
		}
		r.Kind = intake.Kind(kind)
		if !family.Accepts(r.Kind) {
			continue
		}
		d, err := decimal.NewFromString(qty)
		if err != nil {
			d = decimal.Zero
		}
		r.DeliveredQty = d
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// QUANTITY SOURCE (intake.QuantitySource)
// =============================================================================

// SetTotalQuantity upserts the authoritative ceiling for a
// (PO header, correlation attribute) pair. Seeded by the ERP sync job.
func (s *Store) SetTotalQuantity(ctx context.Context, headerID, attribute string, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO po_line_totals (po_header_id, attribute, total_qty)
		VALUES (?, ?, ?)
		ON CONFLICT(po_header_id, attribute) DO UPDATE SET total_qty = excluded.total_qty`,
		headerID, attribute, total.String())
	return err
}

// TotalQuantity reads the ceiling for the pair. Missing rows report
// ok=false; the ledger treats that as zero.
func (s *Store) TotalQuantity(ctx context.Context, headerID, attribute string) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total string
	err := s.db.QueryRowContext(ctx,
		`SELECT total_qty FROM po_line_totals WHERE po_header_id = ? AND attribute = ?`,
		headerID, attribute,
	).Scan(&total)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	d, err := decimal.NewFromString(total)
	if err != nil {
		// Unparseable totals degrade to "missing", not to an error.
		return decimal.Zero, false, nil
	}
	return d, true, nil
}

// DeliveredQuantity sums persisted PO_DELIVERY quantities for the
// correlation attribute. Summed in Go with decimal arithmetic.
func (s *Store) DeliveredQuantity(ctx context.Context, attribute string) (decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT delivered_qty FROM transactions WHERE kind = ? AND attribute8 = ?`,
		string(intake.KindPODelivery), attribute)
	if err != nil {
		return decimal.Zero, false, err
	}
	defer rows.Close()

	sum := decimal.Zero
	found := false
	for rows.Next() {
		var qty string
		if err := rows.Scan(&qty); err != nil {
			return decimal.Zero, false, err
		}
		d, err := decimal.NewFromString(qty)
		if err != nil {
			continue
		}
		sum = sum.Add(d)
		found = true
	}
	return sum, found, rows.Err()
}

// =============================================================================
// LOCATION VALIDATOR (intake.LocationValidator)
// =============================================================================

// AddLocator registers a valid (subinventory, locator) pair.
// Seeded by the ERP sync job.
func (s *Store) AddLocator(ctx context.Context, subinventory, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO locators (subinventory, locator) VALUES (?, ?)`,
		subinventory, locator)
	return err
}

// Validate checks the locator table. A read failure is reported as
// LocationUnknown; the engine treats that as a no-decision.
func (s *Store) Validate(ctx context.Context, subinventory, locator string) (intake.LocationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locators WHERE subinventory = ? AND locator = ?`,
		subinventory, locator,
	).Scan(&n)
	if err != nil {
		return intake.LocationUnknown, err
	}
	if n > 0 {
		return intake.LocationValid, nil
	}
	return intake.LocationInvalid, nil
}

// =============================================================================
// AUDIT LOG (translog.Store)
// =============================================================================

// SaveEntry inserts an audit row.
func (s *Store) SaveEntry(ctx context.Context, e translog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mob_trans_logs (id, module, request, response, processed_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Module, e.Request, e.Response, e.ProcessedAt.Format(time.RFC3339))
	return err
}

// SetResponse attaches the outcome payload to an existing audit row.
func (s *Store) SetResponse(ctx context.Context, id, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE mob_trans_logs SET response = ? WHERE id = ?`, response, id)
	return err
}

// AuditEntries returns all audit rows in processing order. Support
// tooling reads these to replay what a handheld actually sent.
func (s *Store) AuditEntries(ctx context.Context) ([]translog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module, request, response, processed_at FROM mob_trans_logs ORDER BY processed_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []translog.Entry
	for rows.Next() {
		var e translog.Entry
		var processedAt string
		if err := rows.Scan(&e.ID, &e.Module, &e.Request, &e.Response, &processedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, processedAt); err == nil {
			e.ProcessedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
