package service

import (
	"context"
	"sync"
	"time"

	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
)

// StoreTx provides the transactional boundary for a consent update: the user
// flag change and the ledger append both happen inside fn and must commit or
// fail together. Implementations wrap a database transaction or, in-memory,
// a per-user lock.
type StoreTx interface {
	RunInTx(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error
}

// shardedConsentTx serializes consent updates per user with sharded mutexes.
// Operations hash the user ID across N shards, so two devices updating the
// same user's consent serialize while unrelated users proceed in parallel.
const numConsentShards = 128

// defaultConsentTxTimeout bounds a consent transaction when the request
// carries no deadline of its own.
const defaultConsentTxTimeout = 5 * time.Second

type shardedConsentTx struct {
	shards  [numConsentShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx returns the in-memory StoreTx implementation.
func NewShardedTx() StoreTx {
	return &shardedConsentTx{}
}

func (t *shardedConsentTx) RunInTx(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
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

	shard := int(hashConsentString(userID.String()) % numConsentShards)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashConsentString uses FNV-1a for even shard distribution.
func hashConsentString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
