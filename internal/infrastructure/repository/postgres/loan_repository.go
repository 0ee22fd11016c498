package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

const uniqueViolation = "23505"

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

const loanColumns = `id, borrower_name, borrower_email, borrower_phone, entity_name, property_address, property_type,
	loan_amount, property_value, ltv, lender, interest_only, interest_rate, monthly_rent,
	annual_taxes, annual_insurance, annual_hoa, dscr, stage, created_at, updated_at`

func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO loans (`+loanColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
`,
		loan.ID, loan.BorrowerName, loan.BorrowerEmail, loan.BorrowerPhone, loan.EntityName,
		loan.PropertyAddress, loan.PropertyType, loan.LoanAmount, loan.PropertyValue, loan.LTV,
		loan.Lender, loan.InterestOnly, loan.InterestRate, loan.MonthlyRent, loan.AnnualTaxes,
		loan.AnnualInsurance, loan.AnnualHOA, loan.DSCR, loan.Stage, loan.CreatedAt, loan.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert loan", fmt.Errorf("id=%s: %w", loan.ID, err))
		}
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+loanColumns+`
FROM loans
WHERE id = $1
`, id)

	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrLoanNotFound, "get loan by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	return &loan, nil
}

// Update rewrites every column, derived DSCR and LTV included, in one statement.
func (r *LoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE loans
SET borrower_name = $2, borrower_email = $3, borrower_phone = $4, entity_name = $5,
	property_address = $6, property_type = $7, loan_amount = $8, property_value = $9, ltv = $10,
	lender = $11, interest_only = $12, interest_rate = $13, monthly_rent = $14, annual_taxes = $15,
	annual_insurance = $16, annual_hoa = $17, dscr = $18, stage = $19, updated_at = $20
WHERE id = $1
`,
		loan.ID, loan.BorrowerName, loan.BorrowerEmail, loan.BorrowerPhone, loan.EntityName,
		loan.PropertyAddress, loan.PropertyType, loan.LoanAmount, loan.PropertyValue, loan.LTV,
		loan.Lender, loan.InterestOnly, loan.InterestRate, loan.MonthlyRent, loan.AnnualTaxes,
		loan.AnnualInsurance, loan.AnnualHOA, loan.DSCR, loan.Stage, loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update loan rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrLoanNotFound, "update loan", fmt.Errorf("id=%s", loan.ID))
	}
	return nil
}

func scanLoan(row rowScanner) (domain.Loan, error) {
	var loan domain.Loan
	err := row.Scan(
		&loan.ID,
		&loan.BorrowerName,
		&loan.BorrowerEmail,
		&loan.BorrowerPhone,
		&loan.EntityName,
		&loan.PropertyAddress,
		&loan.PropertyType,
		&loan.LoanAmount,
		&loan.PropertyValue,
		&loan.LTV,
		&loan.Lender,
		&loan.InterestOnly,
		&loan.InterestRate,
		&loan.MonthlyRent,
		&loan.AnnualTaxes,
		&loan.AnnualInsurance,
		&loan.AnnualHOA,
		&loan.DSCR,
		&loan.Stage,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return domain.Loan{}, err
	}
	return loan, nil
}
