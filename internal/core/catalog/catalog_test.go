package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

func TestRequirementsForFunderAppliesLenderOverlay(t *testing.T) {
	c := Default()

	reqs := c.RequirementsForFunder("Kiavi")
	if len(reqs) != len(baselineRequirements)+2 {
		t.Fatalf("expected baseline plus 2 funder entries, got %d", len(reqs))
	}
	last := reqs[len(reqs)-1]
	if last.ID != "Track Record" || !last.FunderSpecific {
		t.Fatalf("expected funder-specific Track Record last, got %+v", last)
	}

	var rentRoll domain.RequirementDescriptor
	for _, req := range reqs {
		if req.ID == "Rent Roll" {
			rentRoll = req
		}
	}
	if !rentRoll.Required {
		t.Fatalf("expected Kiavi override to require Rent Roll")
	}
}

func TestRequirementsForFunderUnknownLenderReturnsBaseline(t *testing.T) {
	c := Default()

	reqs := c.RequirementsForFunder("Some Credit Union")
	if len(reqs) != len(baselineRequirements) {
		t.Fatalf("expected baseline list, got %d entries", len(reqs))
	}
	if _, ok := c.Lookup("Some Credit Union"); ok {
		t.Fatalf("expected strict lookup to miss")
	}
	if ids := c.RequiredIDs("Some Credit Union"); len(ids) != 0 {
		t.Fatalf("expected no required ids for unknown lender, got %v", ids)
	}
}

func TestLenderKeyIsCaseInsensitive(t *testing.T) {
	c := Default()
	if _, ok := c.Lookup("  kiavi "); !ok {
		t.Fatalf("expected lookup to ignore case and surrounding space")
	}
}

func TestRequirementsForFunderReturnsCopy(t *testing.T) {
	c := Default()
	reqs := c.RequirementsForFunder("Kiavi")
	reqs[0].Required = false
	reqs[0].ID = "mutated"

	again := c.RequirementsForFunder("Kiavi")
	if again[0].ID != "Loan Application" || !again[0].Required {
		t.Fatalf("catalog mutated through returned slice: %+v", again[0])
	}
}

func TestRequiredDocumentCountMatchesRequiredIDs(t *testing.T) {
	c := Default()
	for _, lender := range c.Lenders() {
		count := c.RequiredDocumentCount(lender)
		ids := c.RequiredIDs(lender)
		if count != len(ids) {
			t.Fatalf("%s: count %d != len(required ids) %d", lender, count, len(ids))
		}
	}
	if got := c.RequiredDocumentCount("Visio Lending"); got != 11 {
		t.Fatalf("expected Visio Lending to require 11 documents, got %d", got)
	}
}

func TestStageForFallsBackToDocuments(t *testing.T) {
	c := Default()
	if got := c.StageFor("Appraisal"); got != "Underwriting" {
		t.Fatalf("expected Underwriting, got %q", got)
	}
	if got := c.StageFor("Lima One Background Authorization"); got != DefaultStage {
		t.Fatalf("expected default stage, got %q", got)
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New(baselineRequirements, []LenderOverlay{{
		Name: "Dup Lender",
		Requirements: []domain.RequirementDescriptor{
			{ID: "Appraisal", Required: true},
		},
	}}, nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewRejectsUnknownOverride(t *testing.T) {
	_, err := New(baselineRequirements, []LenderOverlay{{
		Name:      "Odd Lender",
		Overrides: []RequiredOverride{{ID: "Nope", Required: true}},
	}}, nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadFileMergesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	overlay := `
stages:
  Flood Certificate: Closing
lenders:
  - name: Kiavi
    requirements:
      - id: Flood Certificate
        category: Closing
        required: true
  - name: Easy Street Capital
    overrides:
      - id: Payoff Statement
        required: true
`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	base := Default()
	c, err := LoadFile(base, path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	kiavi := c.RequiredIDs("Kiavi")
	if kiavi[len(kiavi)-1] != "Flood Certificate" {
		t.Fatalf("expected Flood Certificate appended for Kiavi, got %v", kiavi)
	}
	if contains(kiavi, "Kiavi Borrower Authorization") {
		t.Fatalf("expected overlay to replace the built-in Kiavi entry, got %v", kiavi)
	}
	if c.StageFor("Flood Certificate") != "Closing" {
		t.Fatalf("expected merged stage")
	}
	if !contains(c.RequiredIDs("Easy Street Capital"), "Payoff Statement") {
		t.Fatalf("expected new lender with payoff override")
	}
	if _, ok := c.Lookup("Roc Capital"); !ok {
		t.Fatalf("expected untouched lenders to survive merge")
	}
	if contains(base.RequiredIDs("Kiavi"), "Flood Certificate") {
		t.Fatalf("base catalog must not change")
	}
}

func TestParseOverlayRejectsUnknownFields(t *testing.T) {
	_, err := ParseOverlay([]byte("lenders:\n  - name: X\n    colour: red\n"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
