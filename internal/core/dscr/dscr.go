// Package dscr computes debt-service coverage for investment property loans.
//
// Every function here is pure. Partially filled inputs produce zero rather
// than an error so that a half-completed loan form never breaks callers.
package dscr

import "math"

// AmortizationPayments is the fixed 30-year schedule used for amortized loans.
// There is no term parameter; HELOC and shorter products use the same term.
const AmortizationPayments = 360

type Band string

const (
	BandNone           Band = ""
	BandStrong         Band = "strong"
	BandAcceptable     Band = "acceptable"
	BandBelowThreshold Band = "below_threshold"
)

const (
	StrongThreshold     = 1.25
	AcceptableThreshold = 1.0
)

type Inputs struct {
	LoanAmount      float64 `json:"loan_amount"`
	InterestRate    float64 `json:"interest_rate"`
	MonthlyRent     float64 `json:"monthly_rent"`
	AnnualTaxes     float64 `json:"annual_taxes"`
	AnnualInsurance float64 `json:"annual_insurance"`
	AnnualHOA       float64 `json:"annual_hoa"`
	InterestOnly    bool    `json:"interest_only"`
}

type Result struct {
	MonthlyDebtService float64 `json:"monthly_debt_service"`
	AnnualDebtService  float64 `json:"annual_debt_service"`
	NOI                float64 `json:"noi"`
	DSCR               float64 `json:"dscr"`
	Band               Band    `json:"band"`
}

// Calculate returns the debt-service coverage ratio rounded to two decimals,
// or 0 when loan amount, rate or rent is missing.
func Calculate(loanAmount, interestRate, monthlyRent, annualTaxes, annualInsurance, annualHOA float64, interestOnly bool) float64 {
	return Evaluate(Inputs{
		LoanAmount:      loanAmount,
		InterestRate:    interestRate,
		MonthlyRent:     monthlyRent,
		AnnualTaxes:     annualTaxes,
		AnnualInsurance: annualInsurance,
		AnnualHOA:       annualHOA,
		InterestOnly:    interestOnly,
	}).DSCR
}

// Evaluate returns the full breakdown behind Calculate. Band is empty when the
// ratio could not be computed.
func Evaluate(in Inputs) Result {
	if !positive(in.LoanAmount) || !positive(in.InterestRate) || !positive(in.MonthlyRent) {
		return Result{}
	}

	monthly := MonthlyDebtService(in.LoanAmount, in.InterestRate, in.InterestOnly)
	annual := monthly * 12
	noi := NOI(in.MonthlyRent, in.AnnualTaxes, in.AnnualInsurance, in.AnnualHOA)

	out := Result{
		MonthlyDebtService: round2(monthly),
		AnnualDebtService:  round2(annual),
		NOI:                round2(noi),
	}
	if annual == 0 || !finite(annual) {
		return out
	}
	out.DSCR = round2(noi / annual)
	out.Band = Classify(out.DSCR)
	return out
}

// MonthlyDebtService returns the unrounded monthly payment.
func MonthlyDebtService(loanAmount, interestRate float64, interestOnly bool) float64 {
	if !positive(loanAmount) || !positive(interestRate) {
		return 0
	}
	if interestOnly {
		return loanAmount * interestRate / 100 / 12
	}
	r := interestRate / 100 / 12
	growth := math.Pow(1+r, AmortizationPayments)
	if growth == 1 {
		return loanAmount / AmortizationPayments
	}
	return loanAmount * r * growth / (growth - 1)
}

// NOI is annual rent less taxes, insurance and HOA dues. Non-finite expenses count as zero.
func NOI(monthlyRent, annualTaxes, annualInsurance, annualHOA float64) float64 {
	return orZero(monthlyRent)*12 - (orZero(annualTaxes) + orZero(annualInsurance) + orZero(annualHOA))
}

func Classify(ratio float64) Band {
	switch {
	case ratio >= StrongThreshold:
		return BandStrong
	case ratio >= AcceptableThreshold:
		return BandAcceptable
	default:
		return BandBelowThreshold
	}
}

// LTV returns loan-to-value as a percentage rounded to two decimals.
func LTV(loanAmount, propertyValue float64) float64 {
	if !positive(propertyValue) || !finite(loanAmount) || loanAmount < 0 {
		return 0
	}
	return round2(loanAmount / propertyValue * 100)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func orZero(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
