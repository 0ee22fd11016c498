package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/loan-workbench/internal/core/domain"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
)

// eventNotifier publishes loan events after a change is committed and the loan
// lock is released. Publish failures are logged and dropped: the stored state
// is already authoritative.
type eventNotifier struct {
	publisher ports.EventPublisher
}

func (n eventNotifier) notify(ctx context.Context, loanID, documentID string, action domain.LoanAction, now time.Time) {
	if n.publisher == nil {
		return
	}
	event := domain.LoanEvent{
		ID:         uuid.NewString(),
		LoanID:     loanID,
		DocumentID: documentID,
		Action:     action,
		OccurredAt: now,
	}
	if err := n.publisher.PublishLoanEvent(ctx, event); err != nil {
		slog.Warn("loan_event_publish_failed",
			"loan_id", loanID,
			"document_id", documentID,
			"action", string(action),
			"error", err,
		)
	}
}

// loanLocks serialises mutating commands per loan id. The release func returned
// by lock is safe to call more than once, so commands can release before
// publishing and still defer it for the error paths.
type loanLocks struct {
	mu    sync.Mutex
	locks map[string]*loanLock
}

type loanLock struct {
	mu   sync.Mutex
	refs int
}

func newLoanLocks() *loanLocks {
	return &loanLocks{locks: make(map[string]*loanLock)}
}

func (l *loanLocks) lock(loanID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[loanID]
	if !ok {
		entry = &loanLock{}
		l.locks[loanID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, loanID)
			}
			l.mu.Unlock()
		})
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
