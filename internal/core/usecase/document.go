package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/lifecycle"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
)

type DocumentUseCase struct {
	loans     ports.LoanRepository
	documents ports.DocumentRepository
	custom    ports.CustomRequirementStore
	catalog   ports.RequirementCatalog
	events    eventNotifier
	locks     *loanLocks
	now       func() time.Time
}

func NewDocumentUseCase(
	loans ports.LoanRepository,
	documents ports.DocumentRepository,
	custom ports.CustomRequirementStore,
	catalog ports.RequirementCatalog,
	publisher ports.EventPublisher,
) *DocumentUseCase {
	return &DocumentUseCase{
		loans:     loans,
		documents: documents,
		custom:    custom,
		catalog:   catalog,
		events:    eventNotifier{publisher: publisher},
		locks:     newLoanLocks(),
		now:       utcNow,
	}
}

func (uc *DocumentUseCase) Upload(
	ctx context.Context,
	loanID string,
	meta domain.DocumentMetadata,
	category, notes string,
) (*domain.LoanDocument, error) {
	unlock := uc.locks.lock(loanID)
	defer unlock()

	required, err := uc.requirementSet(ctx, loanID)
	if err != nil {
		return nil, err
	}

	meta.Filename = sanitizeFilename(meta.Filename)
	now := uc.now()
	doc, err := lifecycle.Upload(uuid.NewString(), loanID, meta, category, notes, required, now)
	if err != nil {
		return nil, err
	}
	if err := uc.documents.Create(ctx, &doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	unlock()
	uc.events.notify(ctx, loanID, doc.ID, domain.ActionDocumentUploaded, now)
	return &doc, nil
}

func (uc *DocumentUseCase) Assign(ctx context.Context, documentID, category string) (*domain.LoanDocument, error) {
	return uc.transition(ctx, documentID, domain.ActionDocumentAssigned, func(doc domain.LoanDocument, now time.Time) (domain.LoanDocument, error) {
		return lifecycle.Assign(doc, category, now)
	})
}

func (uc *DocumentUseCase) Unassign(ctx context.Context, documentID string) (*domain.LoanDocument, error) {
	return uc.transition(ctx, documentID, domain.ActionDocumentUnassign, infallible(lifecycle.Unassign))
}

func (uc *DocumentUseCase) Approve(ctx context.Context, documentID string) (*domain.LoanDocument, error) {
	return uc.transition(ctx, documentID, domain.ActionDocumentApproved, infallible(lifecycle.Approve))
}

func (uc *DocumentUseCase) Reject(ctx context.Context, documentID string) (*domain.LoanDocument, error) {
	return uc.transition(ctx, documentID, domain.ActionDocumentRejected, infallible(lifecycle.Reject))
}

// ResetAll unassigns every assigned document of the loan and returns the
// documents that changed.
func (uc *DocumentUseCase) ResetAll(ctx context.Context, loanID string) ([]domain.LoanDocument, error) {
	unlock := uc.locks.lock(loanID)
	defer unlock()

	if _, err := uc.loans.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	docs, err := uc.documents.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list loan documents: %w", err)
	}

	now := uc.now()
	changed := lifecycle.ResetAll(docs, now)
	for i := range changed {
		if err := uc.documents.Update(ctx, &changed[i]); err != nil {
			return nil, fmt.Errorf("update document %s: %w", changed[i].ID, err)
		}
	}
	unlock()
	if len(changed) > 0 {
		uc.events.notify(ctx, loanID, "", domain.ActionDocumentsReset, now)
	}
	return changed, nil
}

func (uc *DocumentUseCase) ListByLoan(ctx context.Context, loanID string) ([]domain.LoanDocument, error) {
	if _, err := uc.loans.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	docs, err := uc.documents.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list loan documents: %w", err)
	}
	return docs, nil
}

// AddCustomRequirement records an ad-hoc requirement for the loan and returns
// the loan's custom requirements in insertion order. Adding a name twice is a
// no-op; a name that is already a catalog requirement is a conflict.
func (uc *DocumentUseCase) AddCustomRequirement(ctx context.Context, loanID, name string) ([]string, error) {
	name = domain.NormalizeCustomRequirement(name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add custom requirement", errors.New("name is required"))
	}

	unlock := uc.locks.lock(loanID)
	defer unlock()

	loan, err := uc.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	for _, id := range uc.catalog.RequiredIDs(loan.Lender) {
		if id == name {
			return nil, domain.WrapError(domain.ErrConflict, "add custom requirement", fmt.Errorf("%q is already required by %s", name, loan.Lender))
		}
	}

	if err := uc.custom.Add(ctx, loanID, name); err != nil {
		return nil, fmt.Errorf("store custom requirement: %w", err)
	}
	names, err := uc.custom.List(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list custom requirements: %w", err)
	}
	unlock()
	uc.events.notify(ctx, loanID, "", domain.ActionCustomRequirement, uc.now())
	return names, nil
}

func (uc *DocumentUseCase) CustomRequirements(ctx context.Context, loanID string) ([]string, error) {
	if _, err := uc.loans.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	names, err := uc.custom.List(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list custom requirements: %w", err)
	}
	return names, nil
}

type transitionFunc func(doc domain.LoanDocument, now time.Time) (domain.LoanDocument, error)

func infallible(fn func(domain.LoanDocument, time.Time) domain.LoanDocument) transitionFunc {
	return func(doc domain.LoanDocument, now time.Time) (domain.LoanDocument, error) {
		return fn(doc, now), nil
	}
}

func (uc *DocumentUseCase) transition(ctx context.Context, documentID string, action domain.LoanAction, apply transitionFunc) (*domain.LoanDocument, error) {
	current, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	unlock := uc.locks.lock(current.LoanID)
	defer unlock()

	// Re-read under the loan lock so concurrent commands see each other's writes.
	current, err = uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	now := uc.now()
	next, err := apply(*current, now)
	if err != nil {
		return nil, err
	}
	if err := uc.documents.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	unlock()
	uc.events.notify(ctx, next.LoanID, next.ID, action, now)
	return &next, nil
}

func (uc *DocumentUseCase) requirementSet(ctx context.Context, loanID string) (domain.RequirementSet, error) {
	loan, err := uc.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("fetch loan by id: %w", err)
	}
	custom, err := uc.custom.List(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("list custom requirements: %w", err)
	}
	return domain.NewRequirementSet(uc.catalog.RequiredIDs(loan.Lender), custom), nil
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "." || base == "" {
		return "document.bin"
	}
	return base
}
