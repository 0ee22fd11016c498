package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
)

// ChecklistSnapshotUseCase rebuilds a loan's reporting snapshot when a loan
// event arrives.
type ChecklistSnapshotUseCase struct {
	loans      ports.LoanRepository
	documents  ports.DocumentRepository
	custom     ports.CustomRequirementStore
	classifier *checklist.Classifier
	snapshots  ports.ChecklistSnapshotStore
	now        func() time.Time
}

func NewChecklistSnapshotUseCase(
	loans ports.LoanRepository,
	documents ports.DocumentRepository,
	custom ports.CustomRequirementStore,
	catalog ports.RequirementCatalog,
	snapshots ports.ChecklistSnapshotStore,
) *ChecklistSnapshotUseCase {
	return &ChecklistSnapshotUseCase{
		loans:      loans,
		documents:  documents,
		custom:     custom,
		classifier: checklist.NewClassifier(catalog),
		snapshots:  snapshots,
		now:        utcNow,
	}
}

func (uc *ChecklistSnapshotUseCase) Refresh(ctx context.Context, event domain.LoanEvent) (*domain.ChecklistSnapshot, error) {
	if strings.TrimSpace(event.LoanID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "refresh checklist", errors.New("event has no loan id"))
	}

	loan, err := uc.loadLoan(ctx, event.LoanID)
	if err != nil {
		return nil, err
	}
	docs, err := uc.loadDocuments(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	custom, err := uc.loadCustom(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	result := uc.classifier.Classify(*loan, docs, custom)
	snapshot := uc.buildSnapshot(loan, result, event)

	if err := uc.persist(ctx, snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (uc *ChecklistSnapshotUseCase) loadLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := uc.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	return loan, nil
}

func (uc *ChecklistSnapshotUseCase) loadDocuments(ctx context.Context, loanID string) ([]domain.LoanDocument, error) {
	docs, err := uc.documents.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list loan documents: %w", err)
	}
	return docs, nil
}

func (uc *ChecklistSnapshotUseCase) loadCustom(ctx context.Context, loanID string) ([]string, error) {
	names, err := uc.custom.List(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list custom requirements: %w", err)
	}
	return names, nil
}

func (uc *ChecklistSnapshotUseCase) buildSnapshot(loan *domain.Loan, result checklist.Result, event domain.LoanEvent) domain.ChecklistSnapshot {
	evaluated := dscr.Evaluate(loan.DSCRInputs())
	return domain.ChecklistSnapshot{
		LoanID:    loan.ID,
		Lender:    loan.Lender,
		Summary:   result.Summary(),
		Missing:   result.MissingNames(),
		DSCR:      evaluated.DSCR,
		DSCRBand:  evaluated.Band,
		LTV:       loan.LTV,
		EventID:   event.ID,
		CreatedAt: uc.now(),
	}
}

func (uc *ChecklistSnapshotUseCase) persist(ctx context.Context, snapshot domain.ChecklistSnapshot) error {
	if err := uc.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save checklist snapshot: %w", err)
	}
	return nil
}

// Latest returns the newest stored snapshot. A loan that exists but has not
// been refreshed yet reports ErrLoanNotFound from the store.
func (uc *ChecklistSnapshotUseCase) Latest(ctx context.Context, loanID string) (*domain.ChecklistSnapshot, error) {
	if strings.TrimSpace(loanID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "latest checklist snapshot", errors.New("loan id is required"))
	}
	if _, err := uc.loadLoan(ctx, loanID); err != nil {
		return nil, err
	}
	snapshot, err := uc.snapshots.Latest(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("load latest checklist snapshot: %w", err)
	}
	return snapshot, nil
}
