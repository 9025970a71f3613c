package main

import (
	"context"
	"database/sql"
	"time"

	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	txcontext "travelogy/pkg/platform/tx"
)

const defaultConsentTxTimeout = 5 * time.Second

// consentPostgresTx runs consent updates inside a real database transaction.
// The flag update and the ledger appends see the same *sql.Tx through the
// context, so they commit or roll back together.
type consentPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newConsentPostgresTx(db *sql.DB) *consentPostgresTx {
	return &consentPostgresTx{db: db}
}

func (t *consentPostgresTx) RunInTx(ctx context.Context, _ id.UserID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultConsentTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
