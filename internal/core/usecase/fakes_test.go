package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

var testNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type loanRepoFake struct {
	mu        sync.Mutex
	loans     map[string]domain.Loan
	createErr error
	updateErr error
	updates   int
}

func newLoanRepoFake(loans ...domain.Loan) *loanRepoFake {
	f := &loanRepoFake{loans: make(map[string]domain.Loan)}
	for _, loan := range loans {
		f.loans[loan.ID] = loan
	}
	return f
}

func (f *loanRepoFake) Create(_ context.Context, loan *domain.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.loans[loan.ID] = *loan
	return nil
}

func (f *loanRepoFake) GetByID(_ context.Context, id string) (*domain.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loan, ok := f.loans[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrLoanNotFound, "get loan", errors.New(id))
	}
	return &loan, nil
}

func (f *loanRepoFake) Update(_ context.Context, loan *domain.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	f.loans[loan.ID] = *loan
	return nil
}

type documentRepoFake struct {
	mu        sync.Mutex
	docs      map[string]domain.LoanDocument
	order     []string
	updateErr error
	updates   int
}

func newDocumentRepoFake(docs ...domain.LoanDocument) *documentRepoFake {
	f := &documentRepoFake{docs: make(map[string]domain.LoanDocument)}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
		f.order = append(f.order, doc.ID)
	}
	return f
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.LoanDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = *doc
	f.order = append(f.order, doc.ID)
	return nil
}

func (f *documentRepoFake) GetByID(_ context.Context, id string) (*domain.LoanDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	return &doc, nil
}

func (f *documentRepoFake) Update(_ context.Context, doc *domain.LoanDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	f.docs[doc.ID] = *doc
	return nil
}

func (f *documentRepoFake) ListByLoan(_ context.Context, loanID string) ([]domain.LoanDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LoanDocument, 0)
	for _, id := range f.order {
		if doc := f.docs[id]; doc.LoanID == loanID {
			out = append(out, doc)
		}
	}
	return out, nil
}

type customStoreFake struct {
	mu      sync.Mutex
	names   map[string][]string
	listErr error
}

func newCustomStoreFake() *customStoreFake {
	return &customStoreFake{names: make(map[string][]string)}
}

func (f *customStoreFake) Add(_ context.Context, loanID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.names[loanID] {
		if existing == name {
			return nil
		}
	}
	f.names[loanID] = append(f.names[loanID], name)
	return nil
}

func (f *customStoreFake) List(_ context.Context, loanID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.names[loanID]...), nil
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.LoanEvent
	err    error

	// When hold is set, the first publish signals entered and waits on hold.
	hold    chan struct{}
	entered chan struct{}
	held    bool
}

func (f *publisherFake) PublishLoanEvent(_ context.Context, event domain.LoanEvent) error {
	f.mu.Lock()
	first := f.hold != nil && !f.held
	f.held = true
	f.mu.Unlock()
	if first {
		close(f.entered)
		<-f.hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *publisherFake) actions() []domain.LoanAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LoanAction, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Action)
	}
	return out
}

type snapshotStoreFake struct {
	saved []domain.ChecklistSnapshot
	err   error
}

func (f *snapshotStoreFake) SaveSnapshot(_ context.Context, snapshot domain.ChecklistSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, snapshot)
	return nil
}

func (f *snapshotStoreFake) Latest(_ context.Context, loanID string) (*domain.ChecklistSnapshot, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].LoanID == loanID {
			snapshot := f.saved[i]
			return &snapshot, nil
		}
	}
	return nil, domain.WrapError(domain.ErrLoanNotFound, "latest checklist snapshot", errors.New(loanID))
}

type catalogFake struct {
	required map[string][]string
}

func (f catalogFake) RequirementsForFunder(lender string) []domain.RequirementDescriptor {
	out := make([]domain.RequirementDescriptor, 0)
	for _, id := range f.required[lender] {
		out = append(out, domain.RequirementDescriptor{ID: id, Name: id, Required: true})
	}
	return out
}

func (f catalogFake) RequiredDocumentCount(lender string) int { return len(f.required[lender]) }

func (f catalogFake) RequiredIDs(lender string) []string {
	return append([]string(nil), f.required[lender]...)
}

func (f catalogFake) StageFor(string) string { return "Documents" }

func (f catalogFake) Lenders() []string {
	out := make([]string, 0, len(f.required))
	for lender := range f.required {
		out = append(out, lender)
	}
	sort.Strings(out)
	return out
}

func testCatalog() catalogFake {
	return catalogFake{required: map[string][]string{
		"Kiavi": {"Appraisal", "Photo ID", "Title Commitment"},
	}}
}

func kiaviLoan() domain.Loan {
	return domain.Loan{
		ID:              "loan-1",
		BorrowerName:    "Dana Whitfield",
		Lender:          "Kiavi",
		LoanAmount:      850000,
		PropertyValue:   1000000,
		InterestRate:    7.5,
		MonthlyRent:     4500,
		AnnualTaxes:     12000,
		AnnualInsurance: 2400,
	}
}
