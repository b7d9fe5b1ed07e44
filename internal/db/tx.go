// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nexus-app/workspace-service/internal/logging"
)

// maxTxDuration bounds a request transaction independently of the request context.
const maxTxDuration = time.Minute

var txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

type txKey struct{}
type pendingTxKey struct{}

// pendingTx opens its transaction on the first statement only, so requests that
// never reach the database do not hold a connection.
type pendingTx struct {
	db     *sql.DB
	logger logging.LoggerInterface

	tx     TxInterface
	cancel context.CancelFunc
	done   bool
}

func (p *pendingTx) begin() (TxInterface, error) {
	if p.tx != nil {
		return p.tx, nil
	}

	// detached from the request so a client disconnect cannot roll back a committed answer
	ctx, cancel := context.WithTimeout(context.Background(), maxTxDuration)

	tx, err := p.db.BeginTx(ctx, txOptions)
	if err != nil {
		cancel()
		return nil, err
	}

	p.tx = tx
	p.cancel = cancel

	return tx, nil
}

func (p *pendingTx) commit() error {
	if p.tx == nil {
		return nil
	}

	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	p.done = true

	return nil
}

func (p *pendingTx) release() {
	if p.tx != nil && !p.done {
		if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			p.logger.Errorf("failed to rollback transaction: %v", err)
		}
	}

	if p.cancel != nil {
		p.cancel()
	}
}

// ContextWithTx attaches an already open transaction to ctx.
func ContextWithTx(ctx context.Context, tx TxInterface) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction attached with ContextWithTx, if any.
func TxFromContext(ctx context.Context) TxInterface {
	tx, _ := ctx.Value(txKey{}).(TxInterface)
	return tx
}

func pendingTxFromContext(ctx context.Context) *pendingTx {
	p, _ := ctx.Value(pendingTxKey{}).(*pendingTx)
	return p
}

// WithTx runs fn inside a transaction opened on the first statement fn issues.
// fn returning an error rolls back; otherwise the transaction, if any, commits.
// Calls nested inside another WithTx or BeginTx join the outer transaction.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if pendingTxFromContext(ctx) != nil || TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	p := &pendingTx{db: d.db, logger: d.logger}
	defer p.release()

	if err := fn(context.WithValue(ctx, pendingTxKey{}, p)); err != nil {
		return err
	}

	return p.commit()
}

// BeginTx opens a transaction eagerly and attaches it to the returned context.
// The caller owns commit and rollback.
func (d *DBClient) BeginTx(ctx context.Context) (context.Context, TxInterface, error) {
	tx, err := d.db.BeginTx(ctx, txOptions)
	if err != nil {
		return ctx, nil, err
	}

	return ContextWithTx(ctx, tx), tx, nil
}
