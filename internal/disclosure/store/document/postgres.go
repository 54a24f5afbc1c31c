package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"homedisclose/internal/disclosure/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/sentinel"
	txcontext "homedisclose/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists documents with the JSON-shaped parts (header,
// sections, signatures, attachments) in JSONB columns. Reads inside a
// transaction lock the row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

const documentColumns = `id, property_id, seller_id, status, header, sections, completion_percentage,
	signatures, attachments, pdf_url, pdf_generated_at, completed_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, doc *models.Document) error {
	cols, err := encodeColumns(doc)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO disclosure_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.PropertyID),
		uuid.UUID(doc.SellerID),
		string(doc.Status),
		cols.header,
		cols.sections,
		doc.CompletionPercentage,
		cols.signatures,
		cols.attachments,
		nullString(doc.PDFURL),
		doc.PDFGeneratedAt,
		doc.CompletedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert disclosure document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DocumentID) (*models.Document, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(id))
}

func (s *PostgresStore) FindByPropertyID(ctx context.Context, propertyID domain.PropertyID) (*models.Document, error) {
	return s.findOne(ctx, "property_id = $1", uuid.UUID(propertyID))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM disclosure_documents WHERE ` + where
	if _, inTx := txcontext.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	doc, err := scanDocument(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find disclosure document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) Update(ctx context.Context, doc *models.Document) error {
	cols, err := encodeColumns(doc)
	if err != nil {
		return err
	}
	query := `
		UPDATE disclosure_documents
		SET status = $2, header = $3, sections = $4, completion_percentage = $5,
			signatures = $6, attachments = $7, pdf_url = $8, pdf_generated_at = $9,
			completed_at = $10, updated_at = $11
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		string(doc.Status),
		cols.header,
		cols.sections,
		doc.CompletionPercentage,
		cols.signatures,
		cols.attachments,
		nullString(doc.PDFURL),
		doc.PDFGeneratedAt,
		doc.CompletedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update disclosure document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update disclosure document rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type encodedColumns struct {
	header, sections, signatures, attachments []byte
}

func encodeColumns(doc *models.Document) (encodedColumns, error) {
	var (
		cols encodedColumns
		err  error
	)
	if cols.header, err = json.Marshal(doc.Header); err != nil {
		return cols, fmt.Errorf("marshal header: %w", err)
	}
	sections := doc.Sections
	if sections == nil {
		sections = models.Sections{}
	}
	if cols.sections, err = json.Marshal(sections); err != nil {
		return cols, fmt.Errorf("marshal sections: %w", err)
	}
	if cols.signatures, err = json.Marshal(doc.Signatures); err != nil {
		return cols, fmt.Errorf("marshal signatures: %w", err)
	}
	attachments := doc.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	if cols.attachments, err = json.Marshal(attachments); err != nil {
		return cols, fmt.Errorf("marshal attachments: %w", err)
	}
	return cols, nil
}

func scanDocument(row *sql.Row) (*models.Document, error) {
	var (
		id, propertyID, sellerID                  uuid.UUID
		status                                    string
		header, sections, signatures, attachments []byte
		pdfURL                                    sql.NullString
		pdfGeneratedAt, completedAt               sql.NullTime
		doc                                       models.Document
	)
	err := row.Scan(&id, &propertyID, &sellerID, &status, &header, &sections,
		&doc.CompletionPercentage, &signatures, &attachments, &pdfURL,
		&pdfGeneratedAt, &completedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.ID = domain.DocumentID(id)
	doc.PropertyID = domain.PropertyID(propertyID)
	doc.SellerID = domain.UserID(sellerID)
	doc.Status = models.Status(status)
	doc.PDFURL = pdfURL.String
	if pdfGeneratedAt.Valid {
		t := pdfGeneratedAt.Time
		doc.PDFGeneratedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		doc.CompletedAt = &t
	}
	if err := json.Unmarshal(header, &doc.Header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	doc.Sections = models.Sections{}
	if err := json.Unmarshal(sections, &doc.Sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	if err := json.Unmarshal(signatures, &doc.Signatures); err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}
	if err := json.Unmarshal(attachments, &doc.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	return &doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
