package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Agenda-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    Beginner
	timeout time.Duration
	retries int
}

// NewTxRunner construye el runner con el pool. El inicio de la transacción respeta
// timeout y reintentos; dentro de la transacción no se reintenta.
func NewTxRunner(pool Beginner, timeout time.Duration, retries int) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout, retries: retries}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	var tx pgx.Tx
	begin := NewDB(r.pool, r.timeout, r.retries)
	err := begin.do(ctx, "begin transaction", func(ctx context.Context, _ Querier) error {
		var err error
		tx, err = r.pool.Begin(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	db := NewDB(tx, 0, 0)
	repos := repository.Repos{
		Users:   NewUserRepository(db),
		Sectors: NewSectorRepository(db),
		Events:  NewEventRepository(db),
		Audit:   NewAuditRepository(db),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
