package auditlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"leicca/pkg/platform/sentinel"
)

// PostgresStore is the durable event log. Insertion order is preserved by a
// serial sequence column, independent of event timestamps.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and pings the audit database.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open audit database: %v", sentinel.ErrUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: ping audit database: %v", sentinel.ErrUnavailable, err)
	}
	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			seq           BIGSERIAL PRIMARY KEY,
			id            TEXT NOT NULL UNIQUE,
			event_type    TEXT NOT NULL,
			reference_id  TEXT NOT NULL,
			description   TEXT NOT NULL,
			lei           TEXT NOT NULL DEFAULT '',
			said          TEXT NOT NULL DEFAULT '',
			txid          TEXT NOT NULL DEFAULT '',
			encrypted_hex TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("%w: migrate audit schema: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event AuditEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, event_type, reference_id, description, lei, said, txid, encrypted_hex, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.EventType, event.ReferenceID, event.Description,
		event.LEI, event.SAID, event.TxID, event.EncryptedHex, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: append audit event: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, reference_id, description, lei, said, txid, encrypted_hex, created_at
		FROM audit_events
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: list audit events: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var ev AuditEvent
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.ReferenceID, &ev.Description,
			&ev.LEI, &ev.SAID, &ev.TxID, &ev.EncryptedHex, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan audit event: %v", sentinel.ErrUnavailable, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate audit events: %v", sentinel.ErrUnavailable, err)
	}
	return events, nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
