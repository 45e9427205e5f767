package bigip

import (
	"context"
	"errors"
)

// Transaction scopes a sequence of calls so the appliance applies them
// atomically on submit or discards them on rollback.
//
// The appliance tracks the open transaction server-side against the
// calling session, so transactions are only reliable through a
// session-bound client (NewSession); without one, connection reuse
// decides which calls land inside the transaction.
type Transaction struct {
	client *Client
	svc    *Service
}

// StartTransaction opens a transaction on the appliance. Every subsequent
// call through the same client joins it until Submit or Rollback.
func (c *Client) StartTransaction(ctx context.Context) (*Transaction, error) {
	svc, err := c.Resolve(ctx, sessionNamespace)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Call(ctx, "start_transaction"); err != nil {
		return nil, err
	}
	return &Transaction{client: c, svc: svc}, nil
}

// Submit commits every call made inside the transaction.
func (t *Transaction) Submit(ctx context.Context) error {
	_, err := t.svc.Call(ctx, "submit_transaction")
	return err
}

// Rollback discards the transaction. Unlike the rollback inside
// WithTransaction, failures here are returned as-is.
func (t *Transaction) Rollback(ctx context.Context) error {
	_, err := t.svc.Call(ctx, "rollback_transaction")
	return err
}

// WithTransaction runs fn inside a transaction: submit on success,
// rollback on error.
//
// When fn fails, the fn error is what callers need to see. A rollback
// that then fails with an appliance fault is suppressed, because the
// usual cause is the transaction already being gone (timed out or torn
// down with the session). Rollback failures of any other kind are joined
// to the fn error so a dead connection still surfaces.
func (c *Client) WithTransaction(ctx context.Context, fn func(*Client) error) error {
	tx, err := c.StartTransaction(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, ErrServer) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Submit(ctx)
}
