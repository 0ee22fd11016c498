package ports

import (
	"context"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

// LoanRepository persists the authoritative loan record.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
}

// DocumentRepository persists document metadata and requirement state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.LoanDocument) error
	GetByID(ctx context.Context, id string) (*domain.LoanDocument, error)
	Update(ctx context.Context, doc *domain.LoanDocument) error
	ListByLoan(ctx context.Context, loanID string) ([]domain.LoanDocument, error)
}

// CustomRequirementStore keeps loan-scoped ad-hoc requirements in first-insertion order.
type CustomRequirementStore interface {
	Add(ctx context.Context, loanID, name string) error
	List(ctx context.Context, loanID string) ([]string, error)
}

// RequirementCatalog is the static per-lender requirement lookup.
type RequirementCatalog interface {
	RequirementsForFunder(lender string) []domain.RequirementDescriptor
	RequiredDocumentCount(lender string) int
	RequiredIDs(lender string) []string
	StageFor(id string) string
	Lenders() []string
}

// EventPublisher announces committed loan changes.
type EventPublisher interface {
	PublishLoanEvent(ctx context.Context, event domain.LoanEvent) error
}

// EventSubscriber delivers loan events to a handler until ctx is done.
type EventSubscriber interface {
	SubscribeLoanEvents(ctx context.Context, handler func(context.Context, domain.LoanEvent) error) error
}

// ChecklistSnapshotStore stores reporting snapshots of a loan's checklist.
type ChecklistSnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot domain.ChecklistSnapshot) error
	Latest(ctx context.Context, loanID string) (*domain.ChecklistSnapshot, error)
}
