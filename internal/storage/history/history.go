// Package history archives every emitted ledger event into a relational
// store, so the lifecycle of an order can be queried long after the order
// itself has left the pending set.
package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	type        TEXT    NOT NULL,
	order_id    INTEGER NOT NULL,
	owner       TEXT    NOT NULL,
	maturity    INTEGER NOT NULL,
	asset       TEXT    NOT NULL,
	amount      INTEGER NOT NULL,
	destination TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_order ON events(order_id);
`

// Archive is a sqlite-backed event log.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path. ":memory:" gives an
// ephemeral archive for tests.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// sqlite allows one writer; a second connection would see lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Record appends one event.
func (a *Archive) Record(ctx context.Context, ev ledger.Event) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO events (type, order_id, owner, maturity, asset, amount, destination)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(ev.Type), ev.ID, ev.Owner, ev.Maturity, ev.Asset, ev.Amount, ev.Destination,
	)
	if err != nil {
		return fmt.Errorf("record event for order %d: %w", ev.ID, err)
	}
	return nil
}

// ByOrder returns the archived events for one order id, oldest first.
func (a *Archive) ByOrder(ctx context.Context, id uint64) ([]ledger.Event, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT type, order_id, owner, maturity, asset, amount, destination
		 FROM events WHERE order_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query events for order %d: %w", id, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Recent returns the newest limit events across all orders, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]ledger.Event, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT type, order_id, owner, maturity, asset, amount, destination
		 FROM events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]ledger.Event, error) {
	var out []ledger.Event
	for rows.Next() {
		var (
			typ string
			ev  ledger.Event
		)
		if err := rows.Scan(&typ, &ev.ID, &ev.Owner, &ev.Maturity, &ev.Asset, &ev.Amount, &ev.Destination); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Type = ledger.EventType(typ)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
