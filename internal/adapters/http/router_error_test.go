package httpadapter

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/kirillkom/loan-workbench/internal/config"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "update loan", errors.New("loan_amount is NaN")), http.StatusBadRequest},
		{"loan not found", domain.WrapError(domain.ErrLoanNotFound, "get loan", errors.New("id=missing")), http.StatusNotFound},
		{"document not found", domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id=missing")), http.StatusNotFound},
		{"conflict", domain.WrapError(domain.ErrConflict, "add custom requirement", errors.New("Appraisal")), http.StatusConflict},
		{"temporary", domain.WrapError(domain.ErrTemporary, "redis.zrange", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"unexpected", errors.New("pq: relation loans does not exist"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newRouterHarness(config.Config{})
			h.loans.err = tc.err

			res := h.do(http.MethodGet, "/v1/loans/loan-1", "")
			if res.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, res.Code)
			}

			resp := decodeJSON[errorResponse](t, res.Body)
			if resp.RequestID == "" {
				t.Fatalf("expected request id in error body")
			}
			if tc.wantStatus == http.StatusInternalServerError && resp.Error != "internal error" {
				t.Fatalf("internal errors must not leak, got %q", resp.Error)
			}
			if tc.wantStatus == http.StatusServiceUnavailable && res.Header().Get("Retry-After") == "" {
				t.Fatalf("expected Retry-After on 503")
			}
		})
	}
}

func TestDocumentNotFoundOnTransition(t *testing.T) {
	h := newRouterHarness(config.Config{})
	h.documents.err = domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id=missing"))

	res := h.do(http.MethodPost, "/v1/documents/missing/approve", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestUnknownLoanIs404(t *testing.T) {
	h := newRouterHarness(config.Config{})

	res := h.do(http.MethodGet, "/v1/loans/nope/checklist", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestPanicIsRecoveredAs500(t *testing.T) {
	h := newRouterHarness(config.Config{})
	h.loans.panics = true

	res := h.do(http.MethodGet, "/v1/loans/loan-1", "")
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "internal error") {
		t.Fatalf("expected generic error body, got %s", res.Body.String())
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newRouterHarness(config.Config{})

	req := newJSONRequest(http.MethodGet, "/v1/loans/missing", "")
	req.Header.Set(requestIDHeader, "req-42")
	res := h.serve(req)

	if res.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id echoed, got %q", res.Header().Get(requestIDHeader))
	}
	if resp := decodeJSON[errorResponse](t, res.Body); resp.RequestID != "req-42" {
		t.Fatalf("expected request id in body, got %q", resp.RequestID)
	}
}

func TestOversizedBodyIsRejected(t *testing.T) {
	h := newRouterHarness(config.Config{})

	body := `{"name": "` + strings.Repeat("x", maxRequestBodyBytes) + `"}`
	res := h.do(http.MethodPost, "/v1/loans/loan-1/custom-requirements", body)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
