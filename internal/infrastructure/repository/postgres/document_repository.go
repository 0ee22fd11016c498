package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, loan_id, category, status, is_required, notes, filename, mime_type, size_bytes, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.LoanDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO loan_documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.LoanID, doc.Category, string(doc.Status), doc.IsRequired, doc.Notes,
		doc.Filename, doc.MimeType, doc.SizeBytes, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.LoanDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM loan_documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

// Update stores the lifecycle fields of a document. File metadata is immutable.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.LoanDocument) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE loan_documents
SET category = $2, status = $3, is_required = $4, notes = $5, updated_at = $6
WHERE id = $1
`, doc.ID, doc.Category, string(doc.Status), doc.IsRequired, doc.Notes, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id=%s", doc.ID))
	}
	return nil
}

// ListByLoan returns the loan's documents in upload order.
func (r *DocumentRepository) ListByLoan(ctx context.Context, loanID string) ([]domain.LoanDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM loan_documents
WHERE loan_id = $1
ORDER BY created_at ASC, id ASC
`, loanID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LoanDocument, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func scanDocument(row rowScanner) (domain.LoanDocument, error) {
	var doc domain.LoanDocument
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.LoanID,
		&doc.Category,
		&status,
		&doc.IsRequired,
		&doc.Notes,
		&doc.Filename,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.LoanDocument{}, err
	}
	doc.Status = domain.DocumentStatus(status)
	if !doc.Status.Valid() {
		return domain.LoanDocument{}, fmt.Errorf("unknown document status %q", status)
	}
	return doc, nil
}
