package httpadapter

import (
	"net/http"
	"strings"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

type lenderRequirementsResponse struct {
	Lender        string                         `json:"lender"`
	RequiredCount int                            `json:"required_count"`
	Requirements  []domain.RequirementDescriptor `json:"requirements"`
}

func (rt *Router) listLenders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"lenders": rt.catalog.Lenders()})
}

// lenderRequirements falls back to the baseline list for unknown lenders.
func (rt *Router) lenderRequirements(w http.ResponseWriter, r *http.Request) {
	lender := strings.TrimSpace(r.PathValue("lender"))
	writeJSON(w, http.StatusOK, lenderRequirementsResponse{
		Lender:        lender,
		RequiredCount: rt.catalog.RequiredDocumentCount(lender),
		Requirements:  rt.catalog.RequirementsForFunder(lender),
	})
}
