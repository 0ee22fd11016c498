package domain

import (
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/dscr"
)

type MissingRequirement struct {
	Requirement RequirementRef `json:"requirement"`
	Name        string         `json:"name"`
	Stage       string         `json:"stage"`
}

// CompletedDocument is an assigned, non-rejected document. Requirement is nil
// when the document's category matches no catalog or custom requirement.
type CompletedDocument struct {
	Document    LoanDocument    `json:"document"`
	Requirement *RequirementRef `json:"requirement,omitempty"`
}

type ChecklistSummary struct {
	RequiredCount   int     `json:"required_count"`
	FulfilledCount  int     `json:"fulfilled_count"`
	MissingCount    int     `json:"missing_count"`
	CompletedCount  int     `json:"completed_count"`
	ApprovedCount   int     `json:"approved_count"`
	UnassignedCount int     `json:"unassigned_count"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ChecklistSnapshot is the reporting row the worker stores after each loan event.
type ChecklistSnapshot struct {
	LoanID    string           `json:"loan_id"`
	Lender    string           `json:"lender"`
	Summary   ChecklistSummary `json:"summary"`
	Missing   []string         `json:"missing"`
	DSCR      float64          `json:"dscr"`
	DSCRBand  dscr.Band        `json:"dscr_band"`
	LTV       float64          `json:"ltv"`
	EventID   string           `json:"event_id"`
	CreatedAt time.Time        `json:"created_at"`
}
