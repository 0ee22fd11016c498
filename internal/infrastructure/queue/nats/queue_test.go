package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/resilience"
)

func TestEventRoundTripKeepsFields(t *testing.T) {
	event := domain.LoanEvent{
		ID:         "evt-1",
		LoanID:     "loan-1",
		DocumentID: "doc-1",
		Action:     domain.ActionDocumentApproved,
		OccurredAt: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	}

	payload, err := encodeEvent(event)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	got, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if got.ID != event.ID || got.LoanID != event.LoanID || got.DocumentID != event.DocumentID || got.Action != event.Action {
		t.Fatalf("expected %+v, got %+v", event, got)
	}
	if !got.OccurredAt.Equal(event.OccurredAt) {
		t.Fatalf("expected occurred_at %s, got %s", event.OccurredAt, got.OccurredAt)
	}
}

func TestDecodeEventRejectsMalformedPayload(t *testing.T) {
	if _, err := decodeEvent([]byte("loan-1")); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-json payload, got %v", err)
	}
	if _, err := decodeEvent([]byte(`{"id":"evt-1"}`)); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without loan id, got %v", err)
	}
}

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
		record    bool
	}{
		{"canceled", context.Canceled, false, false},
		{"no servers", fmt.Errorf("nats publish: %w", nats.ErrNoServers), true, true},
		{"timeout", nats.ErrTimeout, true, true},
		{"breaker open", gobreaker.ErrOpenState, true, true},
		{"bad subject", nats.ErrBadSubject, false, true},
	}
	for _, tc := range cases {
		got := classifyNATSError(tc.err)
		if got.Retryable != tc.retryable || got.RecordFailure != tc.record {
			t.Fatalf("%s: got %+v", tc.name, got)
		}
	}
}

func TestWrapTemporaryForRetryableNATSError(t *testing.T) {
	err := resilience.WrapTemporary("nats publish", nats.ErrConnectionClosed, classifyNATSError)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Fatalf("expected original error to be preserved")
	}
}
