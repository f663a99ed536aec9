package services

import "context"

// TxRunner scopes a function to one store transaction. The postgres plugin
// provides the real implementation; NopTxRunner serves the in-memory store,
// whose operations are individually atomic.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type NopTxRunner struct{}

func (NopTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
