package bootstrap

import (
	"context"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
)

type publishRecorder interface {
	RecordEventPublish(action string, err error)
}

// observedPublisher counts every publish attempt by action and outcome.
type observedPublisher struct {
	next     ports.EventPublisher
	recorder publishRecorder
}

func newObservedPublisher(next ports.EventPublisher, recorder publishRecorder) *observedPublisher {
	return &observedPublisher{next: next, recorder: recorder}
}

func (p *observedPublisher) PublishLoanEvent(ctx context.Context, event domain.LoanEvent) error {
	err := p.next.PublishLoanEvent(ctx, event)
	p.recorder.RecordEventPublish(string(event.Action), err)
	return err
}
