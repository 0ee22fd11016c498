// Package lifecycle holds the document state transitions. Each command takes
// a document value and returns the updated value; persisting it is the
// caller's job.
package lifecycle

import (
	"errors"
	"strings"
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

// Upload creates a document in the uploaded state. It counts as assigned when
// its category is one of the loan's required slots.
func Upload(
	id, loanID string,
	meta domain.DocumentMetadata,
	category, notes string,
	required domain.RequirementSet,
	now time.Time,
) (domain.LoanDocument, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(loanID) == "" {
		return domain.LoanDocument{}, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("document and loan ids are required"))
	}
	if strings.TrimSpace(meta.Filename) == "" {
		return domain.LoanDocument{}, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if meta.SizeBytes < 0 {
		return domain.LoanDocument{}, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("size must not be negative"))
	}

	category = strings.TrimSpace(category)
	return domain.LoanDocument{
		ID:         id,
		LoanID:     loanID,
		Category:   category,
		Status:     domain.StatusUploaded,
		IsRequired: category != "" && required.Contains(category),
		Notes:      notes,
		Filename:   meta.Filename,
		MimeType:   meta.MimeType,
		SizeBytes:  meta.SizeBytes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Assign moves the document into category and sends it back for review.
func Assign(doc domain.LoanDocument, category string, now time.Time) (domain.LoanDocument, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return doc, domain.WrapError(domain.ErrInvalidInput, "assign document", errors.New("category is required"))
	}
	doc.Category = category
	doc.IsRequired = true
	doc.Status = domain.StatusUploaded
	doc.UpdatedAt = now
	return doc, nil
}

// Unassign returns the document to the unassigned pool. The category is kept,
// so the document still remembers the slot it last filled.
func Unassign(doc domain.LoanDocument, now time.Time) domain.LoanDocument {
	doc.IsRequired = false
	doc.Status = domain.StatusUploaded
	doc.UpdatedAt = now
	return doc
}

func Approve(doc domain.LoanDocument, now time.Time) domain.LoanDocument {
	doc.Status = domain.StatusApproved
	doc.UpdatedAt = now
	return doc
}

func Reject(doc domain.LoanDocument, now time.Time) domain.LoanDocument {
	doc.Status = domain.StatusRejected
	doc.UpdatedAt = now
	return doc
}

// ResetAll unassigns every assigned document and returns only the ones that changed.
func ResetAll(docs []domain.LoanDocument, now time.Time) []domain.LoanDocument {
	changed := make([]domain.LoanDocument, 0, len(docs))
	for _, doc := range docs {
		if !doc.IsRequired {
			continue
		}
		changed = append(changed, Unassign(doc, now))
	}
	return changed
}
