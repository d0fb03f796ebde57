package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and hands the
// infra-defined tx handle (pgx.Tx for Postgres) to repositories through tx.
// Repositories must accept a nil tx and fall back to the pool.
// Callbacks registered with AfterCommit run once the transaction commits.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

type afterCommitKey struct{}

type afterCommitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithAfterCommit returns a context collecting AfterCommit callbacks and the
// func that runs them. Transaction managers call it on the committed path only.
func WithAfterCommit(ctx context.Context) (context.Context, func()) {
	h := &afterCommitHooks{}
	run := func() {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
	return context.WithValue(ctx, afterCommitKey{}, h), run
}

// AfterCommit defers fn until the enclosing transaction commits. Outside a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	h, ok := ctx.Value(afterCommitKey{}).(*afterCommitHooks)
	if !ok {
		fn()
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
