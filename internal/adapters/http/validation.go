package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

const maxRequestBodyBytes = 1 << 20

const loanFieldsSchema = `
		"borrower_name":    {"type": "string"},
		"borrower_email":   {"type": "string"},
		"borrower_phone":   {"type": "string"},
		"entity_name":      {"type": "string"},
		"property_address": {"type": "string"},
		"property_type":    {"type": "string"},
		"lender":           {"type": "string"},
		"stage":            {"type": "string"},
		"interest_only":    {"type": "boolean"},
		"loan_amount":      {"type": "number", "minimum": 0},
		"property_value":   {"type": "number", "minimum": 0},
		"interest_rate":    {"type": "number", "minimum": 0},
		"monthly_rent":     {"type": "number", "minimum": 0},
		"annual_taxes":     {"type": "number", "minimum": 0},
		"annual_insurance": {"type": "number", "minimum": 0},
		"annual_hoa":       {"type": "number", "minimum": 0}`

var (
	createLoanSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["borrower_name", "lender"],
	"properties": {
		"id": {"type": "string"},` + loanFieldsSchema + `
	}
}`)

	// Derived fields (ltv, dscr) and identity are not editable.
	patchLoanSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {` + loanFieldsSchema + `
	}
}`)

	dscrSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"loan_amount":      {"type": "number", "minimum": 0},
		"interest_rate":    {"type": "number", "minimum": 0},
		"monthly_rent":     {"type": "number", "minimum": 0},
		"annual_taxes":     {"type": "number", "minimum": 0},
		"annual_insurance": {"type": "number", "minimum": 0},
		"annual_hoa":       {"type": "number", "minimum": 0},
		"interest_only":    {"type": "boolean"}
	}
}`)

	uploadDocumentSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["filename"],
	"properties": {
		"filename":   {"type": "string", "minLength": 1},
		"mime_type":  {"type": "string"},
		"size_bytes": {"type": "integer", "minimum": 0},
		"category":   {"type": "string"},
		"notes":      {"type": "string"}
	}
}`)

	assignDocumentSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["category"],
	"properties": {
		"category": {"type": "string", "minLength": 1}
	}
}`)

	customRequirementSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1}
	}
}`)
)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return schema
}

// validationError carries per-field schema violations. It matches
// domain.ErrInvalidInput.
type validationError struct {
	details []string
}

func (e *validationError) Error() string {
	return "request body failed validation"
}

func (e *validationError) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

// decodeBody validates the JSON body against schema and decodes it into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.WrapError(domain.ErrInvalidInput, "read request body", fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
		}
		return domain.WrapError(domain.ErrInvalidInput, "read request body", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", errors.New("body is required"))
	}
	if !json.Valid(body) {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", errors.New("invalid json"))
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate request body", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			details = append(details, violation.String())
		}
		return &validationError{details: details}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", err)
	}
	return nil
}
