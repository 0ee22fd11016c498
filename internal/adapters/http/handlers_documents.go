package httpadapter

import (
	"context"
	"net/http"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

type uploadDocumentRequest struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
}

type documentListResponse struct {
	LoanID    string                `json:"loan_id"`
	Documents []domain.LoanDocument `json:"documents"`
}

type customRequirementsResponse struct {
	LoanID             string   `json:"loan_id"`
	CustomRequirements []string `json:"custom_requirements"`
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")
	docs, err := rt.documents.ListByLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentListResponse{LoanID: loanID, Documents: nonNilDocuments(docs)})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var req uploadDocumentRequest
	if err := decodeBody(w, r, uploadDocumentSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := rt.documents.Upload(
		r.Context(),
		r.PathValue("id"),
		domain.DocumentMetadata{Filename: req.Filename, MimeType: req.MimeType, SizeBytes: req.SizeBytes},
		req.Category,
		req.Notes,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.recordTransition(string(domain.ActionDocumentUploaded))
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) resetDocuments(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")
	docs, err := rt.documents.ResetAll(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.recordTransition(string(domain.ActionDocumentsReset))
	writeJSON(w, http.StatusOK, documentListResponse{LoanID: loanID, Documents: nonNilDocuments(docs)})
}

func (rt *Router) listCustomRequirements(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")
	names, err := rt.documents.CustomRequirements(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customRequirementsResponse{LoanID: loanID, CustomRequirements: nonNilStrings(names)})
}

func (rt *Router) addCustomRequirement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, customRequirementSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	loanID := r.PathValue("id")
	names, err := rt.documents.AddCustomRequirement(r.Context(), loanID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customRequirementsResponse{LoanID: loanID, CustomRequirements: nonNilStrings(names)})
}

func (rt *Router) assignDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeBody(w, r, assignDocumentSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt.runTransition(w, r, domain.ActionDocumentAssigned, func(ctx context.Context, id string) (*domain.LoanDocument, error) {
		return rt.documents.Assign(ctx, id, req.Category)
	})
}

func (rt *Router) unassignDocument(w http.ResponseWriter, r *http.Request) {
	rt.runTransition(w, r, domain.ActionDocumentUnassign, rt.documents.Unassign)
}

func (rt *Router) approveDocument(w http.ResponseWriter, r *http.Request) {
	rt.runTransition(w, r, domain.ActionDocumentApproved, rt.documents.Approve)
}

func (rt *Router) rejectDocument(w http.ResponseWriter, r *http.Request) {
	rt.runTransition(w, r, domain.ActionDocumentRejected, rt.documents.Reject)
}

func (rt *Router) runTransition(
	w http.ResponseWriter,
	r *http.Request,
	action domain.LoanAction,
	apply func(ctx context.Context, documentID string) (*domain.LoanDocument, error),
) {
	doc, err := apply(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.recordTransition(string(action))
	writeJSON(w, http.StatusOK, doc)
}

func nonNilDocuments(docs []domain.LoanDocument) []domain.LoanDocument {
	if docs == nil {
		return []domain.LoanDocument{}
	}
	return docs
}

func nonNilStrings(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
