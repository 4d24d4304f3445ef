/*
Package translog records raw intake payloads for troubleshooting.

PURPOSE:
  Every intake request is logged (module name + raw request body) before
  the engine runs, and the persisted set is attached afterwards. Support
  staff use these rows to replay what a handheld actually sent when a
  store disputes a receipt.

FAILURE POLICY:
  Audit logging must never fail an intake. Store errors are written to
  the process log and swallowed.

STATE:
  An Entry is a local value built per call and threaded through
  explicitly; the logger itself holds no per-request state and is safe
  for concurrent use.

SEE ALSO:
  - store/sqlite: Durable entry storage
  - api/handlers.go: Where requests are logged
*/
package translog

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Entry is one request/response audit row.
type Entry struct {
	ID          string
	Module      string
	Request     string
	Response    string
	ProcessedAt time.Time
}

// Store persists audit entries.
type Store interface {
	SaveEntry(ctx context.Context, e Entry) error
	SetResponse(ctx context.Context, id, response string) error
}

// Logger writes audit entries, swallowing storage failures.
type Logger struct {
	store Store
}

func New(store Store) *Logger {
	return &Logger{store: store}
}

// Request records an inbound payload and returns the entry for the
// follow-up Response call. Always returns a usable entry.
func (l *Logger) Request(ctx context.Context, module string, payload []byte) Entry {
	e := Entry{
		ID:          uuid.NewString(),
		Module:      module,
		Request:     string(payload),
		ProcessedAt: time.Now().UTC(),
	}
	if err := l.store.SaveEntry(ctx, e); err != nil {
		log.Printf("translog: saving request entry for %s: %v", module, err)
	}
	return e
}

// Response attaches the outcome payload to a previously logged entry.
func (l *Logger) Response(ctx context.Context, e Entry, payload []byte) {
	if err := l.store.SetResponse(ctx, e.ID, string(payload)); err != nil {
		log.Printf("translog: saving response entry for %s: %v", e.Module, err)
	}
}
