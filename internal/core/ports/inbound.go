package ports

import (
	"context"

	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
)

// LoanService owns reads and edits of the loan aggregate.
type LoanService interface {
	Create(ctx context.Context, loan domain.Loan) (*domain.Loan, error)
	Get(ctx context.Context, id string) (*domain.Loan, error)
	Update(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error)
	Checklist(ctx context.Context, id string) (*domain.Loan, checklist.Result, error)
	DSCR(ctx context.Context, id string) (dscr.Result, error)
}

// DocumentService runs document lifecycle commands against the stores.
type DocumentService interface {
	Upload(ctx context.Context, loanID string, meta domain.DocumentMetadata, category, notes string) (*domain.LoanDocument, error)
	Assign(ctx context.Context, documentID, category string) (*domain.LoanDocument, error)
	Unassign(ctx context.Context, documentID string) (*domain.LoanDocument, error)
	Approve(ctx context.Context, documentID string) (*domain.LoanDocument, error)
	Reject(ctx context.Context, documentID string) (*domain.LoanDocument, error)
	ResetAll(ctx context.Context, loanID string) ([]domain.LoanDocument, error)
	ListByLoan(ctx context.Context, loanID string) ([]domain.LoanDocument, error)
	AddCustomRequirement(ctx context.Context, loanID, name string) ([]string, error)
	CustomRequirements(ctx context.Context, loanID string) ([]string, error)
}

// ChecklistRefresher rebuilds the reporting snapshot for one loan.
type ChecklistRefresher interface {
	Refresh(ctx context.Context, event domain.LoanEvent) (*domain.ChecklistSnapshot, error)
}

// ChecklistSnapshotReader serves the last stored snapshot of a loan.
type ChecklistSnapshotReader interface {
	Latest(ctx context.Context, loanID string) (*domain.ChecklistSnapshot, error)
}
