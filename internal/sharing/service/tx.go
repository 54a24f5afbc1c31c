package service

import (
	"context"

	"homedisclose/pkg/domain"
	txcontext "homedisclose/pkg/platform/tx"
)

// TxStores are the stores a counter-signature writes through.
type TxStores struct {
	Shares    Store
	Documents DocumentStore
}

// SigningTx is the transactional boundary around a buyer counter-signature:
// the grant's transition and the document's buyer slot commit together or
// not at all. Transactions are keyed by document so they serialize with the
// seller's own edits.
type SigningTx interface {
	RunInTx(ctx context.Context, documentID domain.DocumentID, fn func(ctx context.Context, stores TxStores) error) error
}

type runnerTx struct {
	runner txcontext.Runner
	stores TxStores
}

// NewSigningTx binds the shared transaction runner to the sharing stores.
func NewSigningTx(runner txcontext.Runner, shares Store, documents DocumentStore) SigningTx {
	return &runnerTx{runner: runner, stores: TxStores{Shares: shares, Documents: documents}}
}

func (t *runnerTx) RunInTx(ctx context.Context, documentID domain.DocumentID, fn func(ctx context.Context, stores TxStores) error) error {
	return t.runner.RunInTx(ctx, documentID.String(), func(ctx context.Context) error {
		return fn(ctx, t.stores)
	})
}
