// Package postgres persists ledger entries through a dedicated pgx pool.
// The pool is never shared with the document and share transactions, so a
// ledger write can neither join nor roll back a primary operation.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const eventColumns = `id, document_id, event_type, actor_user_id, share_id, metadata,
	origin_ip, user_agent, browser, os, mobile, occurred_at, recorded_at`

// Append inserts one entry. Replays of the same id are ignored.
func (s *Store) Append(ctx context.Context, event models.Event) error {
	metadata, err := json.Marshal(nonNilMetadata(event.Metadata))
	if err != nil {
		return fmt.Errorf("marshal ledger metadata: %w", err)
	}
	recordedAt := event.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO ledger_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.pool.Exec(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.DocumentID),
		string(event.Type),
		nullUser(event.ActorUserID),
		nullShare(event.ShareID),
		metadata,
		event.Origin.IP,
		event.Origin.UserAgent,
		event.Origin.Browser,
		event.Origin.OS,
		event.Origin.Mobile,
		event.OccurredAt,
		recordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

func (s *Store) CountByType(ctx context.Context, documentID domain.DocumentID) ([]models.TypeCount, error) {
	query := `
		SELECT event_type, COUNT(*), MAX(occurred_at)
		FROM ledger_events
		WHERE document_id = $1
		GROUP BY event_type
		ORDER BY event_type
	`
	rows, err := s.pool.Query(ctx, query, uuid.UUID(documentID))
	if err != nil {
		return nil, fmt.Errorf("count ledger events: %w", err)
	}
	defer rows.Close()

	var out []models.TypeCount
	for rows.Next() {
		var (
			eventType string
			c         models.TypeCount
		)
		if err := rows.Scan(&eventType, &c.Count, &c.LastOccurred); err != nil {
			return nil, fmt.Errorf("scan ledger count: %w", err)
		}
		c.Type = models.EventType(eventType)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger counts: %w", err)
	}
	return out, nil
}

func (s *Store) ListByDocument(ctx context.Context, documentID domain.DocumentID, q models.TimelineQuery) ([]models.Event, int, error) {
	types := typeFilter(q.Types)

	var total int
	countQuery := `
		SELECT COUNT(*) FROM ledger_events
		WHERE document_id = $1 AND ($2::text[] IS NULL OR event_type = ANY($2))
	`
	if err := s.pool.QueryRow(ctx, countQuery, uuid.UUID(documentID), types).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger timeline: %w", err)
	}

	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		WHERE document_id = $1 AND ($2::text[] IS NULL OR event_type = ANY($2))
		ORDER BY occurred_at DESC, recorded_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.pool.Query(ctx, query, uuid.UUID(documentID), types, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger timeline: %w", err)
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListShareEvents returns entries correlated with a share, by column or by
// the share_id metadata key, oldest first.
func (s *Store) ListShareEvents(ctx context.Context, documentID domain.DocumentID) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM ledger_events
		WHERE document_id = $1 AND (share_id IS NOT NULL OR metadata ? 'share_id')
		ORDER BY occurred_at ASC, recorded_at ASC
	`
	rows, err := s.pool.Query(ctx, query, uuid.UUID(documentID))
	if err != nil {
		return nil, fmt.Errorf("list share events: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()
	events := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var (
		id, documentID uuid.UUID
		eventType      string
		actor, share   uuid.NullUUID
		metadata       []byte
		e              models.Event
	)
	err := row.Scan(&id, &documentID, &eventType, &actor, &share, &metadata,
		&e.Origin.IP, &e.Origin.UserAgent, &e.Origin.Browser, &e.Origin.OS, &e.Origin.Mobile,
		&e.OccurredAt, &e.RecordedAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("scan ledger event: %w", err)
	}
	e.ID = domain.EventID(id)
	e.DocumentID = domain.DocumentID(documentID)
	e.Type = models.EventType(eventType)
	if actor.Valid {
		uid := domain.UserID(actor.UUID)
		e.ActorUserID = &uid
	}
	if share.Valid {
		sid := domain.ShareID(share.UUID)
		e.ShareID = &sid
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return models.Event{}, fmt.Errorf("decode ledger metadata: %w", err)
		}
	}
	return e, nil
}

func typeFilter(types []models.EventType) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nullUser(id *domain.UserID) uuid.NullUUID {
	if id == nil || id.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}

func nullShare(id *domain.ShareID) uuid.NullUUID {
	if id == nil || id.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
