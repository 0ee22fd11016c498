package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/dscr"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/export/xlsx"
)

type checklistResponse struct {
	LoanID     string                      `json:"loan_id"`
	Lender     string                      `json:"lender"`
	Missing    []domain.MissingRequirement `json:"missing"`
	Completed  []domain.CompletedDocument  `json:"completed"`
	Unassigned []domain.LoanDocument       `json:"unassigned"`
	Summary    domain.ChecklistSummary     `json:"summary"`
}

func (rt *Router) calculateDSCR(w http.ResponseWriter, r *http.Request) {
	var in dscr.Inputs
	if err := decodeBody(w, r, dscrSchema, &in); err != nil {
		writeError(w, r, err)
		return
	}

	result := dscr.Evaluate(in)
	rt.recordDSCR(string(result.Band))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) createLoan(w http.ResponseWriter, r *http.Request) {
	var loan domain.Loan
	if err := decodeBody(w, r, createLoanSchema, &loan); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := rt.loans.Create(r.Context(), loan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/loans/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) getLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := rt.loans.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (rt *Router) updateLoan(w http.ResponseWriter, r *http.Request) {
	var patch domain.LoanPatch
	if err := decodeBody(w, r, patchLoanSchema, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := rt.loans.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (rt *Router) loanDSCR(w http.ResponseWriter, r *http.Request) {
	result, err := rt.loans.DSCR(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.recordDSCR(string(result.Band))
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) checklist(w http.ResponseWriter, r *http.Request) {
	loan, result, err := rt.loans.Checklist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary := result.Summary()
	rt.observeProgress(summary.ProgressPercent)
	writeJSON(w, http.StatusOK, newChecklistResponse(loan, result, summary))
}

func newChecklistResponse(loan *domain.Loan, result checklist.Result, summary domain.ChecklistSummary) checklistResponse {
	return checklistResponse{
		LoanID:     loan.ID,
		Lender:     loan.Lender,
		Missing:    result.Missing,
		Completed:  result.Completed,
		Unassigned: result.Unassigned,
		Summary:    summary,
	}
}

func (rt *Router) checklistWorkbook(w http.ResponseWriter, r *http.Request) {
	loan, result, err := rt.loans.Checklist(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.WriteChecklist(&buf, *loan, result); err != nil {
		writeError(w, r, fmt.Errorf("render checklist workbook: %w", err))
		return
	}

	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "checklist-"+loan.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) checklistSnapshot(w http.ResponseWriter, r *http.Request) {
	if rt.snapshots == nil {
		writeError(w, r, domain.WrapError(domain.ErrLoanNotFound, "latest checklist snapshot", errors.New("snapshots are not enabled")))
		return
	}
	snapshot, err := rt.snapshots.Latest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
