package domain

import (
	"time"

	"github.com/kirillkom/loan-workbench/internal/core/dscr"
)

// Loan is the authoritative loan record. LTV and DSCR are derived and are
// rewritten by Recompute on every change; they are never taken from callers.
type Loan struct {
	ID string `json:"id"`

	BorrowerName  string `json:"borrower_name"`
	BorrowerEmail string `json:"borrower_email,omitempty"`
	BorrowerPhone string `json:"borrower_phone,omitempty"`
	EntityName    string `json:"entity_name,omitempty"`

	PropertyAddress string `json:"property_address,omitempty"`
	PropertyType    string `json:"property_type,omitempty"`

	LoanAmount      float64 `json:"loan_amount"`
	PropertyValue   float64 `json:"property_value"`
	LTV             float64 `json:"ltv"`
	Lender          string  `json:"lender"`
	InterestOnly    bool    `json:"interest_only"`
	InterestRate    float64 `json:"interest_rate"`
	MonthlyRent     float64 `json:"monthly_rent"`
	AnnualTaxes     float64 `json:"annual_taxes"`
	AnnualInsurance float64 `json:"annual_insurance"`
	AnnualHOA       float64 `json:"annual_hoa"`
	DSCR            float64 `json:"dscr"`

	Stage string `json:"stage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoanPatch carries the editable fields of a loan; nil means unchanged.
type LoanPatch struct {
	BorrowerName    *string  `json:"borrower_name,omitempty"`
	BorrowerEmail   *string  `json:"borrower_email,omitempty"`
	BorrowerPhone   *string  `json:"borrower_phone,omitempty"`
	EntityName      *string  `json:"entity_name,omitempty"`
	PropertyAddress *string  `json:"property_address,omitempty"`
	PropertyType    *string  `json:"property_type,omitempty"`
	LoanAmount      *float64 `json:"loan_amount,omitempty"`
	PropertyValue   *float64 `json:"property_value,omitempty"`
	Lender          *string  `json:"lender,omitempty"`
	InterestOnly    *bool    `json:"interest_only,omitempty"`
	InterestRate    *float64 `json:"interest_rate,omitempty"`
	MonthlyRent     *float64 `json:"monthly_rent,omitempty"`
	AnnualTaxes     *float64 `json:"annual_taxes,omitempty"`
	AnnualInsurance *float64 `json:"annual_insurance,omitempty"`
	AnnualHOA       *float64 `json:"annual_hoa,omitempty"`
	Stage           *string  `json:"stage,omitempty"`
}

func (p LoanPatch) Empty() bool {
	return p == LoanPatch{}
}

// Apply writes the patch and recomputes derived fields in the same step.
func (l *Loan) Apply(p LoanPatch, now time.Time) {
	setString(&l.BorrowerName, p.BorrowerName)
	setString(&l.BorrowerEmail, p.BorrowerEmail)
	setString(&l.BorrowerPhone, p.BorrowerPhone)
	setString(&l.EntityName, p.EntityName)
	setString(&l.PropertyAddress, p.PropertyAddress)
	setString(&l.PropertyType, p.PropertyType)
	setString(&l.Lender, p.Lender)
	setString(&l.Stage, p.Stage)
	setFloat(&l.LoanAmount, p.LoanAmount)
	setFloat(&l.PropertyValue, p.PropertyValue)
	setFloat(&l.InterestRate, p.InterestRate)
	setFloat(&l.MonthlyRent, p.MonthlyRent)
	setFloat(&l.AnnualTaxes, p.AnnualTaxes)
	setFloat(&l.AnnualInsurance, p.AnnualInsurance)
	setFloat(&l.AnnualHOA, p.AnnualHOA)
	if p.InterestOnly != nil {
		l.InterestOnly = *p.InterestOnly
	}

	l.Recompute()
	l.UpdatedAt = now
}

func (l *Loan) Recompute() {
	l.DSCR = dscr.Calculate(
		l.LoanAmount,
		l.InterestRate,
		l.MonthlyRent,
		l.AnnualTaxes,
		l.AnnualInsurance,
		l.AnnualHOA,
		l.InterestOnly,
	)
	l.LTV = dscr.LTV(l.LoanAmount, l.PropertyValue)
}

func (l Loan) DSCRInputs() dscr.Inputs {
	return dscr.Inputs{
		LoanAmount:      l.LoanAmount,
		InterestRate:    l.InterestRate,
		MonthlyRent:     l.MonthlyRent,
		AnnualTaxes:     l.AnnualTaxes,
		AnnualInsurance: l.AnnualInsurance,
		AnnualHOA:       l.AnnualHOA,
		InterestOnly:    l.InterestOnly,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
