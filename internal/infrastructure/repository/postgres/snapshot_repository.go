package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
)

// SnapshotRepository appends checklist snapshots written by the worker.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.ChecklistSnapshot) error {
	summaryJSON, err := json.Marshal(snapshot.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	missing := snapshot.Missing
	if missing == nil {
		missing = []string{}
	}
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		return fmt.Errorf("marshal missing: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO loan_checklist_snapshots (loan_id, event_id, lender, summary, missing, dscr, dscr_band, ltv, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		snapshot.LoanID, snapshot.EventID, snapshot.Lender, summaryJSON, missingJSON,
		snapshot.DSCR, string(snapshot.DSCRBand), snapshot.LTV, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checklist snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot stored for the loan.
func (r *SnapshotRepository) Latest(ctx context.Context, loanID string) (*domain.ChecklistSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT loan_id, event_id, lender, summary, missing, dscr, dscr_band, ltv, created_at
FROM loan_checklist_snapshots
WHERE loan_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, loanID)

	var snapshot domain.ChecklistSnapshot
	var summaryRaw, missingRaw []byte
	var band string
	err := row.Scan(
		&snapshot.LoanID, &snapshot.EventID, &snapshot.Lender, &summaryRaw, &missingRaw,
		&snapshot.DSCR, &band, &snapshot.LTV, &snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrLoanNotFound, "latest checklist snapshot", fmt.Errorf("loan_id=%s", loanID))
		}
		return nil, fmt.Errorf("scan checklist snapshot: %w", err)
	}
	if err := json.Unmarshal(summaryRaw, &snapshot.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(missingRaw, &snapshot.Missing); err != nil {
		return nil, fmt.Errorf("unmarshal missing: %w", err)
	}
	snapshot.DSCRBand = dscr.Band(band)
	return &snapshot, nil
}
