package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs aggregate bodies in a real transaction on DB (or with
// no transaction when DB is nil) and lets tests force failures at the
// boundaries.
type InjectedTxRunner struct {
	DB *gorm.DB

	// FailBegin is returned before the body runs.
	FailBegin error
	// FailAfterBody rolls back a body that succeeded, as a failed commit would.
	FailAfterBody error

	mu        sync.Mutex
	BodyCalls int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.FailBegin != nil {
		return r.FailBegin
	}
	run := func(dbc dbctx.Context) error {
		r.mu.Lock()
		r.BodyCalls++
		r.mu.Unlock()
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return r.FailAfterBody
	}

	var err error
	if r.DB == nil {
		err = run(dbctx.Context{Ctx: ctx})
	} else {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return run(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	}

	r.mu.Lock()
	if err != nil {
		r.Rollbacks++
	} else {
		r.Commits++
	}
	r.mu.Unlock()
	return err
}
