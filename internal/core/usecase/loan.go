package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
)

type LoanUseCase struct {
	loans      ports.LoanRepository
	documents  ports.DocumentRepository
	custom     ports.CustomRequirementStore
	classifier *checklist.Classifier
	events     eventNotifier
	locks      *loanLocks
	now        func() time.Time
}

func NewLoanUseCase(
	loans ports.LoanRepository,
	documents ports.DocumentRepository,
	custom ports.CustomRequirementStore,
	catalog ports.RequirementCatalog,
	publisher ports.EventPublisher,
) *LoanUseCase {
	return &LoanUseCase{
		loans:      loans,
		documents:  documents,
		custom:     custom,
		classifier: checklist.NewClassifier(catalog),
		events:     eventNotifier{publisher: publisher},
		locks:      newLoanLocks(),
		now:        utcNow,
	}
}

func (uc *LoanUseCase) Create(ctx context.Context, loan domain.Loan) (*domain.Loan, error) {
	if err := validateLoan(loan); err != nil {
		return nil, err
	}
	now := uc.now()
	if strings.TrimSpace(loan.ID) == "" {
		loan.ID = uuid.NewString()
	}
	loan.Lender = strings.TrimSpace(loan.Lender)
	loan.CreatedAt = now
	loan.UpdatedAt = now
	loan.Recompute()

	if err := uc.loans.Create(ctx, &loan); err != nil {
		return nil, fmt.Errorf("create loan: %w", err)
	}
	uc.events.notify(ctx, loan.ID, "", domain.ActionLoanCreated, now)
	return &loan, nil
}

func (uc *LoanUseCase) Get(ctx context.Context, id string) (*domain.Loan, error) {
	loan, err := uc.loans.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	return loan, nil
}

// Update applies patch and stores the loan with DSCR and LTV recomputed in
// the same write.
func (uc *LoanUseCase) Update(ctx context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	unlock := uc.locks.lock(id)
	defer unlock()

	loan, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return loan, nil
	}
	if patch.Lender != nil {
		trimmed := strings.TrimSpace(*patch.Lender)
		patch.Lender = &trimmed
	}

	now := uc.now()
	loan.Apply(patch, now)
	if err := validateLoan(*loan); err != nil {
		return nil, err
	}
	if err := uc.loans.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("update loan: %w", err)
	}
	unlock()
	uc.events.notify(ctx, loan.ID, "", domain.ActionLoanUpdated, now)
	return loan, nil
}

// Checklist classifies the loan's current documents.
func (uc *LoanUseCase) Checklist(ctx context.Context, id string) (*domain.Loan, checklist.Result, error) {
	loan, err := uc.Get(ctx, id)
	if err != nil {
		return nil, checklist.Result{}, err
	}
	docs, err := uc.documents.ListByLoan(ctx, id)
	if err != nil {
		return nil, checklist.Result{}, fmt.Errorf("list loan documents: %w", err)
	}
	custom, err := uc.custom.List(ctx, id)
	if err != nil {
		return nil, checklist.Result{}, fmt.Errorf("list custom requirements: %w", err)
	}
	return loan, uc.classifier.Classify(*loan, docs, custom), nil
}

func (uc *LoanUseCase) DSCR(ctx context.Context, id string) (dscr.Result, error) {
	loan, err := uc.Get(ctx, id)
	if err != nil {
		return dscr.Result{}, err
	}
	return dscr.Evaluate(loan.DSCRInputs()), nil
}

func validateLoan(loan domain.Loan) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"loan_amount", loan.LoanAmount},
		{"property_value", loan.PropertyValue},
		{"interest_rate", loan.InterestRate},
		{"monthly_rent", loan.MonthlyRent},
		{"annual_taxes", loan.AnnualTaxes},
		{"annual_insurance", loan.AnnualInsurance},
		{"annual_hoa", loan.AnnualHOA},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return domain.WrapError(domain.ErrInvalidInput, "validate loan", errors.New(f.name+" must be a non-negative number"))
		}
	}
	return nil
}
