package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"homedisclose/internal/sharing/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/email"
	"homedisclose/pkg/platform/sentinel"
	txcontext "homedisclose/pkg/platform/tx"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

const shareColumns = `id, document_id, recipient_email, recipient_name, message, recipient_user_id,
	access_token, status, view_count, first_viewed_at, last_viewed_at, acknowledged_at, signed_at,
	expires_at, created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO share_grants (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(share.ID),
		uuid.UUID(share.DocumentID),
		share.RecipientEmail,
		share.RecipientName,
		share.Message,
		nullUserID(share.RecipientUserID),
		share.AccessToken,
		string(share.Status),
		share.ViewCount,
		share.FirstViewedAt,
		share.LastViewedAt,
		share.AcknowledgedAt,
		share.SignedAt,
		share.ExpiresAt,
		uuid.UUID(share.CreatedBy),
		share.CreatedAt,
		share.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert share grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ShareID) (*models.Share, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(id))
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.Share, error) {
	return s.findOne(ctx, "access_token = $1", token)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM share_grants WHERE ` + where
	share, err := scanShare(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find share grant: %w", err)
	}
	return share, nil
}

func (s *PostgresStore) ListByDocument(ctx context.Context, documentID domain.DocumentID) ([]*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM share_grants WHERE document_id = $1 ORDER BY created_at DESC, id`
	return s.list(ctx, query, uuid.UUID(documentID))
}

func (s *PostgresStore) ListForRecipient(ctx context.Context, userID domain.UserID, address string) ([]*models.Share, error) {
	query := `
		SELECT ` + shareColumns + ` FROM share_grants
		WHERE recipient_user_id = $1 OR recipient_email = $2
		ORDER BY created_at DESC, id
	`
	return s.list(ctx, query, uuid.UUID(userID), email.Normalize(address))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Share, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list share grants: %w", err)
	}
	defer rows.Close()

	var out []*models.Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share grant: %w", err)
		}
		out = append(out, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share grants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) BindRecipient(ctx context.Context, id domain.ShareID, userID domain.UserID, now time.Time) error {
	query := `
		UPDATE share_grants SET recipient_user_id = $2, updated_at = $3
		WHERE id = $1 AND recipient_user_id IS NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(id), uuid.UUID(userID), now)
	if err != nil {
		return fmt.Errorf("bind share recipient: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bind share recipient rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// Nothing updated: either missing or already bound.
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.RecipientUserID != nil && *current.RecipientUserID == userID {
		return nil
	}
	return sentinel.ErrInvalidState
}

// RecordView locks the row, increments the counter and sets the first-view
// fields only when unset, all in one statement. first_view is computed from
// the locked row so two concurrent views cannot both win.
func (s *PostgresStore) RecordView(ctx context.Context, id domain.ShareID, now time.Time) (*models.Share, bool, error) {
	query := `
		WITH locked AS (
			SELECT id, first_viewed_at IS NULL AS first_view
			FROM share_grants WHERE id = $1
			FOR UPDATE
		), updated AS (
			UPDATE share_grants g SET
				view_count = g.view_count + 1,
				last_viewed_at = $2,
				first_viewed_at = COALESCE(g.first_viewed_at, $2),
				status = CASE WHEN g.status = 'pending' THEN 'viewed' ELSE g.status END,
				updated_at = $2
			FROM locked
			WHERE g.id = locked.id
			RETURNING ` + qualified("g") + `, locked.first_view
		)
		SELECT * FROM updated
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id), now)
	var first bool
	share, err := scanShare(row, &first)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, sentinel.ErrNotFound
		}
		return nil, false, fmt.Errorf("record share view: %w", err)
	}
	return share, first, nil
}

// Transition is a conditional update guarded by the expected status.
func (s *PostgresStore) Transition(ctx context.Context, id domain.ShareID, expected, next models.Status, now time.Time) (*models.Share, error) {
	if !expected.CanTransitionTo(next) {
		return nil, sentinel.ErrInvalidState
	}
	query := `
		UPDATE share_grants SET
			status = $3,
			acknowledged_at = CASE WHEN $3 = 'acknowledged' THEN $4 ELSE acknowledged_at END,
			signed_at = CASE WHEN $3 = 'signed' THEN $4 ELSE signed_at END,
			updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + shareColumns
	share, err := scanShare(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id), string(expected), string(next), now))
	if err == nil {
		return share, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition share grant: %w", err)
	}
	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, sentinel.ErrInvalidState
}

func qualified(alias string) string {
	return alias + `.id, ` + alias + `.document_id, ` + alias + `.recipient_email, ` + alias + `.recipient_name, ` +
		alias + `.message, ` + alias + `.recipient_user_id, ` + alias + `.access_token, ` + alias + `.status, ` +
		alias + `.view_count, ` + alias + `.first_viewed_at, ` + alias + `.last_viewed_at, ` +
		alias + `.acknowledged_at, ` + alias + `.signed_at, ` + alias + `.expires_at, ` +
		alias + `.created_by, ` + alias + `.created_at, ` + alias + `.updated_at`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShare(row scanner, extra ...any) (*models.Share, error) {
	var (
		share                                           models.Share
		id, documentID, createdBy                       uuid.UUID
		recipientUserID                                 uuid.NullUUID
		status                                          string
		firstViewed, lastViewed, acked, signed, expires sql.NullTime
	)
	dest := []any{
		&id, &documentID, &share.RecipientEmail, &share.RecipientName, &share.Message, &recipientUserID,
		&share.AccessToken, &status, &share.ViewCount, &firstViewed, &lastViewed, &acked, &signed,
		&expires, &createdBy, &share.CreatedAt, &share.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	share.ID = domain.ShareID(id)
	share.DocumentID = domain.DocumentID(documentID)
	share.CreatedBy = domain.UserID(createdBy)
	share.Status = models.Status(status)
	if recipientUserID.Valid {
		uid := domain.UserID(recipientUserID.UUID)
		share.RecipientUserID = &uid
	}
	share.FirstViewedAt = timePtr(firstViewed)
	share.LastViewedAt = timePtr(lastViewed)
	share.AcknowledgedAt = timePtr(acked)
	share.SignedAt = timePtr(signed)
	share.ExpiresAt = timePtr(expires)
	return &share, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullUserID(id *domain.UserID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*id), Valid: true}
}
