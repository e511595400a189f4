package db

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/uptrace/bun"
)

const (
	txAttempts  = 3
	txBaseDelay = 50 * time.Millisecond
)

// TxFunc is a unit of work run inside one transaction.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// RunInTx runs fn inside a single transaction: commit when fn returns nil,
// rollback on error or panic. The whole unit is retried on deadlocks and
// lock wait timeouts; any other error is returned after the first attempt.
func RunInTx(ctx context.Context, bdb *bun.DB, fn TxFunc) error {
	return retry.Do(
		func() error {
			return bdb.RunInTx(ctx, nil, fn)
		},
		retry.Context(ctx),
		retry.Attempts(txAttempts),
		retry.Delay(txBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
	)
}
