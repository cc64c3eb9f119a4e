package memory

import "context"

// Transactor runs fn directly. The memory stores apply each write atomically on their own;
// callers validate before their first write so a rejected call leaves nothing behind.
type Transactor struct{}

// NewTransactor creates a new Transactor.
func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTx calls fn with ctx.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
