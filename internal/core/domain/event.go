package domain

import "time"

type LoanAction string

const (
	ActionLoanCreated       LoanAction = "loan.created"
	ActionLoanUpdated       LoanAction = "loan.updated"
	ActionDocumentUploaded  LoanAction = "document.uploaded"
	ActionDocumentAssigned  LoanAction = "document.assigned"
	ActionDocumentUnassign  LoanAction = "document.unassigned"
	ActionDocumentApproved  LoanAction = "document.approved"
	ActionDocumentRejected  LoanAction = "document.rejected"
	ActionDocumentsReset    LoanAction = "documents.reset"
	ActionCustomRequirement LoanAction = "custom_requirement.added"
)

// LoanEvent announces a committed change to a loan or one of its documents.
type LoanEvent struct {
	ID         string     `json:"id"`
	LoanID     string     `json:"loan_id"`
	DocumentID string     `json:"document_id,omitempty"`
	Action     LoanAction `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
}
