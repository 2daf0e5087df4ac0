package service

import (
	"context"
	"sync"
	"time"

	userstore "civicpulse/internal/identity/store/user"
	reportstore "civicpulse/internal/report/store/report"
	votestore "civicpulse/internal/report/store/vote"
	dErrors "civicpulse/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// memoryTx gives commit-or-nothing semantics over the in-memory stores by
// serializing mutations under one lock and restoring pre-transaction
// snapshots when fn fails. Coarse, but the in-memory stores only back tests
// and single-node development.
type memoryTx struct {
	mu      sync.Mutex
	reports *reportstore.InMemory
	users   *userstore.InMemory
	votes   *votestore.InMemory
	timeout time.Duration
}

func NewMemoryTx(reports *reportstore.InMemory, users *userstore.InMemory, votes *votestore.InMemory) TxRunner {
	return &memoryTx{reports: reports, users: users, votes: votes}
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	reports := t.reports.Snapshot()
	users := t.users.Snapshot()
	votes := t.votes.Snapshot()

	if err := fn(ctx); err != nil {
		t.reports.Restore(reports)
		t.users.Restore(users)
		t.votes.Restore(votes)
		return err
	}
	return nil
}
