package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "homedisclose/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction when the caller's context has no
// deadline.
const DefaultTimeout = 5 * time.Second

// Runner runs fn as one atomic unit. key names the aggregate being mutated
// (a document id); implementations may serialize on it.
type Runner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func begin(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return ctx, func() {}, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

// numShards spreads keys over independent locks so unrelated documents do
// not contend.
const numShards = 128

// ShardedRunner serializes in-memory mutations per key. It cannot roll back,
// so callers validate everything before their first write.
type ShardedRunner struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedRunner(timeout time.Duration) *ShardedRunner {
	return &ShardedRunner{timeout: timeout}
}

func (r *ShardedRunner) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ctx, cancel, err := begin(ctx, r.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	shard := &r.shards[hashKey(key)%numShards]
	shard.Lock()
	defer shard.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// hashKey is FNV-1a.
func hashKey(s string) uint32 {
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

// SQLRunner opens a *sql.Tx and binds it to the context so stores join it.
// Row locks taken by the stores serialize concurrent writers, so key is unused.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB, timeout time.Duration) *SQLRunner {
	return &SQLRunner{db: db, timeout: timeout}
}

func (r *SQLRunner) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if _, nested := From(ctx); nested {
		return fn(ctx)
	}
	ctx, cancel, err := begin(ctx, r.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
