package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

type documentHarness struct {
	loans     *loanRepoFake
	docs      *documentRepoFake
	custom    *customStoreFake
	publisher *publisherFake
	uc        *DocumentUseCase
}

func newDocumentHarness(docs ...domain.LoanDocument) documentHarness {
	h := documentHarness{
		loans:     newLoanRepoFake(kiaviLoan()),
		docs:      newDocumentRepoFake(docs...),
		custom:    newCustomStoreFake(),
		publisher: &publisherFake{},
	}
	h.uc = NewDocumentUseCase(h.loans, h.docs, h.custom, testCatalog(), h.publisher)
	h.uc.now = fixedNow
	return h
}

func TestDocumentUploadSuccess(t *testing.T) {
	h := newDocumentHarness()
	meta := domain.DocumentMetadata{Filename: "appraisal report.pdf", MimeType: "application/pdf", SizeBytes: 1024}

	doc, err := h.uc.Upload(context.Background(), "loan-1", meta, "Appraisal", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusUploaded || !doc.IsRequired {
		t.Fatalf("expected uploaded required document, got %+v", doc)
	}
	if doc.Filename != "appraisal_report.pdf" {
		t.Fatalf("expected sanitized filename, got %s", doc.Filename)
	}
	if _, ok := h.docs.docs[doc.ID]; !ok {
		t.Fatalf("expected repo.Create call")
	}
	if got := h.publisher.actions(); len(got) != 1 || got[0] != domain.ActionDocumentUploaded {
		t.Fatalf("expected upload event, got %v", got)
	}
}

func TestDocumentUploadMatchesCustomRequirement(t *testing.T) {
	h := newDocumentHarness()
	if _, err := h.uc.AddCustomRequirement(context.Background(), "loan-1", "HOA Estoppel"); err != nil {
		t.Fatalf("AddCustomRequirement() error = %v", err)
	}

	doc, err := h.uc.Upload(context.Background(), "loan-1", domain.DocumentMetadata{Filename: "hoa.pdf"}, "HOA Estoppel", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !doc.IsRequired {
		t.Fatalf("expected custom requirement to mark document required")
	}
}

func TestDocumentUploadUnknownLoan(t *testing.T) {
	h := newDocumentHarness()

	_, err := h.uc.Upload(context.Background(), "missing", domain.DocumentMetadata{Filename: "a.pdf"}, "", "")
	if !domain.IsKind(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestDocumentUploadPublishFailureIsNotFatal(t *testing.T) {
	h := newDocumentHarness()
	h.publisher.err = errors.New("nats down")

	doc, err := h.uc.Upload(context.Background(), "loan-1", domain.DocumentMetadata{Filename: "a.pdf"}, "Photo ID", "")
	if err != nil {
		t.Fatalf("publish failure must not fail the command, got %v", err)
	}
	if _, ok := h.docs.docs[doc.ID]; !ok {
		t.Fatalf("expected document to be stored")
	}
}

func TestDocumentTransitions(t *testing.T) {
	h := newDocumentHarness(domain.LoanDocument{
		ID: "doc-1", LoanID: "loan-1", Category: "Misc", Status: domain.StatusUploaded, Filename: "a.pdf",
	})
	ctx := context.Background()

	assigned, err := h.uc.Assign(ctx, "doc-1", "Appraisal")
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if assigned.Category != "Appraisal" || !assigned.IsRequired {
		t.Fatalf("unexpected assigned document %+v", assigned)
	}

	approved, err := h.uc.Approve(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.Status != domain.StatusApproved || !approved.IsRequired {
		t.Fatalf("unexpected approved document %+v", approved)
	}

	rejected, err := h.uc.Reject(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != domain.StatusRejected {
		t.Fatalf("unexpected rejected document %+v", rejected)
	}

	unassigned, err := h.uc.Unassign(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Unassign() error = %v", err)
	}
	if unassigned.IsRequired || unassigned.Status != domain.StatusUploaded || unassigned.Category != "Appraisal" {
		t.Fatalf("unexpected unassigned document %+v", unassigned)
	}

	want := []domain.LoanAction{
		domain.ActionDocumentAssigned,
		domain.ActionDocumentApproved,
		domain.ActionDocumentRejected,
		domain.ActionDocumentUnassign,
	}
	got := h.publisher.actions()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if stored := h.docs.docs["doc-1"]; stored.IsRequired || stored.Status != domain.StatusUploaded {
		t.Fatalf("expected stored state to follow transitions, got %+v", stored)
	}
}

func TestDocumentAssignRejectsBlankCategory(t *testing.T) {
	h := newDocumentHarness(domain.LoanDocument{ID: "doc-1", LoanID: "loan-1", Status: domain.StatusUploaded})

	_, err := h.uc.Assign(context.Background(), "doc-1", " ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if h.docs.updates != 0 {
		t.Fatalf("expected no write on invalid assign")
	}
}

func TestDocumentTransitionUnknownDocument(t *testing.T) {
	h := newDocumentHarness()

	_, err := h.uc.Approve(context.Background(), "nope")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentTransitionUpdateError(t *testing.T) {
	h := newDocumentHarness(domain.LoanDocument{ID: "doc-1", LoanID: "loan-1", Status: domain.StatusUploaded})
	h.docs.updateErr = errors.New("db down")

	_, err := h.uc.Approve(context.Background(), "doc-1")
	if err == nil || !strings.Contains(err.Error(), "update document") {
		t.Fatalf("expected update error, got %v", err)
	}
	if len(h.publisher.actions()) != 0 {
		t.Fatalf("expected no event when the write fails")
	}
}

func TestDocumentResetAll(t *testing.T) {
	h := newDocumentHarness(
		domain.LoanDocument{ID: "a", LoanID: "loan-1", Category: "Appraisal", IsRequired: true, Status: domain.StatusApproved},
		domain.LoanDocument{ID: "b", LoanID: "loan-1", Category: "Misc", Status: domain.StatusUploaded},
		domain.LoanDocument{ID: "c", LoanID: "loan-2", Category: "Photo ID", IsRequired: true, Status: domain.StatusApproved},
	)

	changed, err := h.uc.ResetAll(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if len(changed) != 1 || changed[0].ID != "a" {
		t.Fatalf("expected only doc a to change, got %+v", changed)
	}
	if h.docs.docs["a"].IsRequired {
		t.Fatalf("expected doc a to be stored unassigned")
	}
	if !h.docs.docs["c"].IsRequired {
		t.Fatalf("other loans must be untouched")
	}
	if got := h.publisher.actions(); len(got) != 1 || got[0] != domain.ActionDocumentsReset {
		t.Fatalf("expected reset event, got %v", got)
	}

	again, err := h.uc.ResetAll(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if len(again) != 0 || len(h.publisher.actions()) != 1 {
		t.Fatalf("second reset must be a no-op")
	}
}

func TestDocumentAddCustomRequirement(t *testing.T) {
	h := newDocumentHarness()
	ctx := context.Background()

	names, err := h.uc.AddCustomRequirement(ctx, "loan-1", "  Rehab Budget ")
	if err != nil {
		t.Fatalf("AddCustomRequirement() error = %v", err)
	}
	if _, err := h.uc.AddCustomRequirement(ctx, "loan-1", "Flood Cert"); err != nil {
		t.Fatalf("AddCustomRequirement() error = %v", err)
	}
	names, err = h.uc.AddCustomRequirement(ctx, "loan-1", "Rehab Budget")
	if err != nil {
		t.Fatalf("AddCustomRequirement() error = %v", err)
	}
	if len(names) != 2 || names[0] != "Rehab Budget" || names[1] != "Flood Cert" {
		t.Fatalf("expected insertion order without duplicates, got %v", names)
	}

	if _, err := h.uc.AddCustomRequirement(ctx, "loan-1", "Appraisal"); !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for catalog requirement, got %v", err)
	}
	if _, err := h.uc.AddCustomRequirement(ctx, "loan-1", "   "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := h.uc.AddCustomRequirement(ctx, "missing", "X"); !domain.IsKind(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}

	listed, err := h.uc.CustomRequirements(ctx, "loan-1")
	if err != nil {
		t.Fatalf("CustomRequirements() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 custom requirements, got %v", listed)
	}
}

func TestDocumentConcurrentCommandsOnOneLoan(t *testing.T) {
	docs := make([]domain.LoanDocument, 0, 20)
	for i := 0; i < 20; i++ {
		docs = append(docs, domain.LoanDocument{
			ID: "doc-" + string(rune('a'+i)), LoanID: "loan-1", Category: "Appraisal", Status: domain.StatusUploaded,
		})
	}
	h := newDocumentHarness(docs...)

	var wg sync.WaitGroup
	for _, doc := range docs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := h.uc.Assign(context.Background(), id, "Appraisal"); err != nil {
				t.Errorf("Assign(%s) error = %v", id, err)
			}
		}(doc.ID)
	}
	wg.Wait()

	listed, err := h.uc.ListByLoan(context.Background(), "loan-1")
	if err != nil {
		t.Fatalf("ListByLoan() error = %v", err)
	}
	for _, doc := range listed {
		if !doc.IsRequired {
			t.Fatalf("expected every document assigned, got %+v", doc)
		}
	}
	if len(h.uc.locks.locks) != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", len(h.uc.locks.locks))
	}
}

func TestDocumentSlowPublishDoesNotBlockLoan(t *testing.T) {
	h := newDocumentHarness(
		domain.LoanDocument{ID: "doc-1", LoanID: "loan-1", Category: "Appraisal", Status: domain.StatusUploaded},
		domain.LoanDocument{ID: "doc-2", LoanID: "loan-1", Category: "Photo ID", Status: domain.StatusUploaded},
	)
	h.publisher.hold = make(chan struct{})
	h.publisher.entered = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := h.uc.Assign(context.Background(), "doc-1", "Appraisal")
		first <- err
	}()
	<-h.publisher.entered

	done := make(chan error, 1)
	go func() {
		_, err := h.uc.Approve(context.Background(), "doc-2")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second command on the loan waited for the first command's publish")
	}

	close(h.publisher.hold)
	if err := <-first; err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if got := h.publisher.actions(); len(got) != 2 {
		t.Fatalf("expected two published events, got %v", got)
	}
}

func TestLoanLocksReleaseIsIdempotent(t *testing.T) {
	locks := newLoanLocks()
	unlock := locks.lock("loan-1")
	unlock()
	unlock()

	relock := locks.lock("loan-1")
	relock()
	if len(locks.locks) != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", len(locks.locks))
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report 1.pdf":       "report_1.pdf",
		"../../etc/passwd":   "passwd",
		"lease (signed).pdf": "lease__signed_.pdf",
		"":                   "",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
