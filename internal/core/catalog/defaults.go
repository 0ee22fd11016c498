package catalog

import "github.com/kirillkom/loan-workbench/internal/core/domain"

var baselineRequirements = []domain.RequirementDescriptor{
	{ID: "Loan Application", Name: "Loan Application", Category: "Borrower", Required: true, Description: "Signed 1003 or lender application form"},
	{ID: "Photo ID", Name: "Photo ID", Category: "Borrower", Required: true, Description: "Government issued ID for every guarantor"},
	{ID: "Credit Report", Name: "Credit Report", Category: "Borrower", Required: true, Description: "Tri-merge credit report, less than 90 days old"},
	{ID: "Entity Documents", Name: "Entity Documents", Category: "Entity", Required: true, Description: "Articles, operating agreement, EIN letter, good standing"},
	{ID: "Bank Statements", Name: "Bank Statements", Category: "Assets", Required: true, Description: "Two most recent months showing reserves and down payment"},
	{ID: "Purchase Contract", Name: "Purchase Contract", Category: "Property", Required: true, Description: "Fully executed purchase agreement with addenda"},
	{ID: "Lease Agreement", Name: "Lease Agreement", Category: "Property", Required: true, Description: "Current signed lease for each occupied unit"},
	{ID: "Appraisal", Name: "Appraisal", Category: "Property", Required: true, Description: "Full interior appraisal ordered through the lender AMC"},
	{ID: "Insurance Binder", Name: "Insurance Binder", Category: "Closing", Required: true, Description: "Hazard policy with rent loss coverage and mortgagee clause"},
	{ID: "Title Commitment", Name: "Title Commitment", Category: "Closing", Required: true, Description: "Preliminary title commitment and CPL"},
	{ID: "Rent Roll", Name: "Rent Roll", Category: "Property", Required: false, Description: "Unit level rent roll for multi-unit properties"},
	{ID: "Schedule of Real Estate Owned", Name: "Schedule of Real Estate Owned", Category: "Borrower", Required: false, Description: "Current REO schedule with balances"},
	{ID: "Payoff Statement", Name: "Payoff Statement", Category: "Closing", Required: false, Description: "Payoff letter for refinance transactions"},
}

var lenderOverlays = []LenderOverlay{
	{
		Name: "Kiavi",
		Overrides: []RequiredOverride{
			{ID: "Rent Roll", Required: true},
		},
		Requirements: []domain.RequirementDescriptor{
			{ID: "Kiavi Borrower Authorization", Name: "Kiavi Borrower Authorization", Category: "Borrower", Required: true, Description: "Signed credit and background authorization from the Kiavi portal"},
			{ID: "Track Record", Name: "Track Record", Category: "Borrower", Required: false, Description: "Investor experience worksheet for pricing tiers"},
		},
	},
	{
		Name: "Visio Lending",
		Overrides: []RequiredOverride{
			{ID: "Purchase Contract", Required: false},
		},
		Requirements: []domain.RequirementDescriptor{
			{ID: "1007 Rent Schedule", Name: "1007 Rent Schedule", Category: "Property", Required: true, Description: "Single family comparable rent schedule attached to the appraisal"},
			{ID: "Visio Term Sheet", Name: "Visio Term Sheet", Category: "Closing", Required: true, Description: "Signed term sheet and rate lock confirmation"},
		},
	},
	{
		Name: "Lima One Capital",
		Requirements: []domain.RequirementDescriptor{
			{ID: "Lima One Background Authorization", Name: "Lima One Background Authorization", Category: "Borrower", Required: true, Description: "Background and credit authorization for each guarantor"},
			{ID: "Property Management Agreement", Name: "Property Management Agreement", Category: "Property", Required: false, Description: "Agreement with third-party manager when applicable"},
		},
	},
	{
		Name: "Roc Capital",
		Overrides: []RequiredOverride{
			{ID: "Schedule of Real Estate Owned", Required: true},
		},
		Requirements: []domain.RequirementDescriptor{
			{ID: "Roc Guarantor Form", Name: "Roc Guarantor Form", Category: "Borrower", Required: true, Description: "Personal guaranty signed by each member over 20 percent"},
			{ID: "W-9", Name: "W-9", Category: "Entity", Required: true, Description: "Borrowing entity W-9"},
		},
	},
}

var requirementStages = map[string]string{
	"Loan Application":              "Application",
	"Photo ID":                      "Application",
	"Credit Report":                 "Application",
	"Kiavi Borrower Authorization":  "Application",
	"Entity Documents":              "Processing",
	"Bank Statements":               "Processing",
	"Schedule of Real Estate Owned": "Processing",
	"Rent Roll":                     "Processing",
	"Lease Agreement":               "Processing",
	"Purchase Contract":             "Processing",
	"Appraisal":                     "Underwriting",
	"1007 Rent Schedule":            "Underwriting",
	"Insurance Binder":              "Closing",
	"Title Commitment":              "Closing",
	"Payoff Statement":              "Closing",
	"Visio Term Sheet":              "Closing",
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(baselineRequirements, lenderOverlays, requirementStages)
	if err != nil {
		panic("catalog: invalid built-in tables: " + err.Error())
	}
	return c
}
