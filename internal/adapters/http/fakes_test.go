package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/loan-workbench/internal/config"
	"github.com/kirillkom/loan-workbench/internal/core/catalog"
	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
	"github.com/kirillkom/loan-workbench/internal/observability/metrics"
)

var testNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func kiaviLoan() domain.Loan {
	loan := domain.Loan{
		ID:              "loan-1",
		BorrowerName:    "Dana Whitfield",
		Lender:          "Kiavi",
		LoanAmount:      850000,
		PropertyValue:   1000000,
		InterestRate:    7.5,
		MonthlyRent:     4500,
		AnnualTaxes:     12000,
		AnnualInsurance: 2400,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
	loan.Recompute()
	return loan
}

type loanServiceFake struct {
	mu      sync.Mutex
	loan    domain.Loan
	docs    []domain.LoanDocument
	err     error
	panics  bool
	created []domain.Loan
	patches []domain.LoanPatch
}

func newLoanServiceFake() *loanServiceFake {
	return &loanServiceFake{loan: kiaviLoan()}
}

func (f *loanServiceFake) Create(_ context.Context, loan domain.Loan) (*domain.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if loan.ID == "" {
		loan.ID = "loan-new"
	}
	if loan.ID == f.loan.ID {
		return nil, domain.WrapError(domain.ErrConflict, "insert loan", errors.New("id="+loan.ID))
	}
	loan.Recompute()
	f.created = append(f.created, loan)
	return &loan, nil
}

func (f *loanServiceFake) Get(_ context.Context, id string) (*domain.Loan, error) {
	if f.panics {
		panic("loan store exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	if id != f.loan.ID {
		return nil, domain.WrapError(domain.ErrLoanNotFound, "get loan", errors.New("id="+id))
	}
	loan := f.loan
	return &loan, nil
}

func (f *loanServiceFake) Update(_ context.Context, id string, patch domain.LoanPatch) (*domain.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.patches = append(f.patches, patch)
	loan := f.loan
	loan.Apply(patch, testNow)
	return &loan, nil
}

func (f *loanServiceFake) Checklist(ctx context.Context, id string) (*domain.Loan, checklist.Result, error) {
	loan, err := f.Get(ctx, id)
	if err != nil {
		return nil, checklist.Result{}, err
	}
	result := checklist.NewClassifier(catalog.Default()).Classify(*loan, f.docs, nil)
	return loan, result, nil
}

func (f *loanServiceFake) DSCR(ctx context.Context, id string) (dscr.Result, error) {
	loan, err := f.Get(ctx, id)
	if err != nil {
		return dscr.Result{}, err
	}
	return dscr.Evaluate(loan.DSCRInputs()), nil
}

type documentServiceFake struct {
	mu     sync.Mutex
	err    error
	calls  []string
	custom []string
}

func (f *documentServiceFake) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *documentServiceFake) document(id string, status domain.DocumentStatus) *domain.LoanDocument {
	return &domain.LoanDocument{ID: id, LoanID: "loan-1", Status: status, CreatedAt: testNow, UpdatedAt: testNow}
}

func (f *documentServiceFake) Upload(_ context.Context, loanID string, meta domain.DocumentMetadata, category, _ string) (*domain.LoanDocument, error) {
	if err := f.record("upload:" + loanID + ":" + meta.Filename + ":" + category); err != nil {
		return nil, err
	}
	doc := f.document("doc-new", domain.StatusUploaded)
	doc.Filename = meta.Filename
	doc.Category = category
	doc.IsRequired = category != ""
	return doc, nil
}

func (f *documentServiceFake) Assign(_ context.Context, documentID, category string) (*domain.LoanDocument, error) {
	if err := f.record("assign:" + documentID + ":" + category); err != nil {
		return nil, err
	}
	doc := f.document(documentID, domain.StatusUploaded)
	doc.Category = category
	doc.IsRequired = true
	return doc, nil
}

func (f *documentServiceFake) Unassign(_ context.Context, documentID string) (*domain.LoanDocument, error) {
	if err := f.record("unassign:" + documentID); err != nil {
		return nil, err
	}
	return f.document(documentID, domain.StatusUploaded), nil
}

func (f *documentServiceFake) Approve(_ context.Context, documentID string) (*domain.LoanDocument, error) {
	if err := f.record("approve:" + documentID); err != nil {
		return nil, err
	}
	return f.document(documentID, domain.StatusApproved), nil
}

func (f *documentServiceFake) Reject(_ context.Context, documentID string) (*domain.LoanDocument, error) {
	if err := f.record("reject:" + documentID); err != nil {
		return nil, err
	}
	return f.document(documentID, domain.StatusRejected), nil
}

func (f *documentServiceFake) ResetAll(_ context.Context, loanID string) ([]domain.LoanDocument, error) {
	if err := f.record("reset:" + loanID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *documentServiceFake) ListByLoan(_ context.Context, loanID string) ([]domain.LoanDocument, error) {
	if err := f.record("list:" + loanID); err != nil {
		return nil, err
	}
	return []domain.LoanDocument{*f.document("doc-1", domain.StatusUploaded)}, nil
}

func (f *documentServiceFake) AddCustomRequirement(_ context.Context, loanID, name string) ([]string, error) {
	if err := f.record("custom:" + loanID + ":" + name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.custom = append(f.custom, strings.TrimSpace(name))
	return append([]string(nil), f.custom...), nil
}

func (f *documentServiceFake) CustomRequirements(_ context.Context, loanID string) ([]string, error) {
	if err := f.record("custom-list:" + loanID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.custom...), nil
}

type snapshotReaderFake struct {
	snapshot *domain.ChecklistSnapshot
}

func (f snapshotReaderFake) Latest(_ context.Context, loanID string) (*domain.ChecklistSnapshot, error) {
	if f.snapshot == nil || f.snapshot.LoanID != loanID {
		return nil, domain.WrapError(domain.ErrLoanNotFound, "latest checklist snapshot", errors.New("loan_id="+loanID))
	}
	return f.snapshot, nil
}

type routerHarness struct {
	handler   http.Handler
	loans     *loanServiceFake
	documents *documentServiceFake
	metrics   *metrics.HTTPServerMetrics
}

func newRouterHarness(cfg config.Config) routerHarness {
	h := routerHarness{
		loans:     newLoanServiceFake(),
		documents: &documentServiceFake{},
		metrics:   metrics.NewHTTPServerMetrics(serviceName),
	}
	h.handler = NewRouter(cfg, h.loans, h.documents, catalog.Default(), nil, h.metrics).Handler()
	return h
}

func newJSONRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (h routerHarness) serve(req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.handler.ServeHTTP(res, req)
	return res
}

func (h routerHarness) do(method, path, body string) *httptest.ResponseRecorder {
	return h.serve(newJSONRequest(method, path, body))
}
