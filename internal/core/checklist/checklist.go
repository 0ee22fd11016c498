// Package checklist partitions a loan's documents against the requirements
// of its lender and the loan's custom requirements.
package checklist

import (
	"math"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

// Catalog is the subset of the requirement catalog the classifier reads.
type Catalog interface {
	RequiredIDs(lender string) []string
	StageFor(id string) string
}

type Result struct {
	Missing    []domain.MissingRequirement `json:"missing"`
	Completed  []domain.CompletedDocument  `json:"completed"`
	Unassigned []domain.LoanDocument       `json:"unassigned"`

	requiredSlots  int
	fulfilledSlots int
}

type Classifier struct {
	catalog Catalog
}

func NewClassifier(catalog Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify never mutates its arguments and returns freshly allocated slices,
// so repeated calls with equal inputs give equal results.
func (c *Classifier) Classify(loan domain.Loan, documents []domain.LoanDocument, customRequirements []string) Result {
	requiredIDs := c.catalog.RequiredIDs(loan.Lender)
	required := domain.NewRequirementSet(requiredIDs, customRequirements)

	out := Result{
		Missing:    make([]domain.MissingRequirement, 0),
		Completed:  make([]domain.CompletedDocument, 0),
		Unassigned: make([]domain.LoanDocument, 0),
	}

	for _, id := range requiredIDs {
		out.requiredSlots++
		if fulfilledBy(documents, id) {
			out.fulfilledSlots++
			continue
		}
		out.Missing = append(out.Missing, domain.MissingRequirement{
			Requirement: domain.CatalogRef(id),
			Name:        id,
			Stage:       c.catalog.StageFor(id),
		})
	}

	for _, name := range customOrder(customRequirements, required) {
		out.requiredSlots++
		if fulfilledBy(documents, name) {
			out.fulfilledSlots++
			continue
		}
		out.Missing = append(out.Missing, domain.MissingRequirement{
			Requirement: domain.CustomRef(name),
			Name:        name,
			Stage:       c.catalog.StageFor(name),
		})
	}

	for _, doc := range documents {
		if !doc.IsRequired {
			out.Unassigned = append(out.Unassigned, doc)
			continue
		}
		if doc.Status != domain.StatusApproved && doc.Status != domain.StatusUploaded {
			continue
		}
		entry := domain.CompletedDocument{Document: doc}
		if ref, ok := required.Lookup(doc.Category); ok {
			entry.Requirement = &ref
		}
		out.Completed = append(out.Completed, entry)
	}

	return out
}

func fulfilledBy(documents []domain.LoanDocument, category string) bool {
	for _, doc := range documents {
		if doc.Fulfills(category) {
			return true
		}
	}
	return false
}

// customOrder keeps the caller's order of custom requirements, dropping blanks,
// repeats and names that are already catalog requirements.
func customOrder(custom []string, required domain.RequirementSet) []string {
	out := make([]string, 0, len(custom))
	seen := make(map[string]struct{}, len(custom))
	for _, name := range custom {
		name = domain.NormalizeCustomRequirement(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if ref, ok := required.Lookup(name); ok && ref.IsCatalog() {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Summary counts the classified slots. ProgressPercent is 100 when nothing is
// required, which includes a lender missing from the catalog: RequiredIDs is
// empty for it even though RequiredDocumentCount reports the baseline size.
// RequiredCount here is the number of slots actually classified.
func (r Result) Summary() domain.ChecklistSummary {
	approved := 0
	for _, entry := range r.Completed {
		if entry.Document.Status == domain.StatusApproved {
			approved++
		}
	}

	progress := 100.0
	if r.requiredSlots > 0 {
		progress = math.Round(float64(r.fulfilledSlots)/float64(r.requiredSlots)*10000) / 100
	}

	return domain.ChecklistSummary{
		RequiredCount:   r.requiredSlots,
		FulfilledCount:  r.fulfilledSlots,
		MissingCount:    len(r.Missing),
		CompletedCount:  len(r.Completed),
		ApprovedCount:   approved,
		UnassignedCount: len(r.Unassigned),
		ProgressPercent: progress,
	}
}

// MissingNames lists missing requirement names in order.
func (r Result) MissingNames() []string {
	out := make([]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		out = append(out, m.Name)
	}
	return out
}
