package postgres

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Agenda-api/internal/domain"
)

// DB envuelve un Querier con timeout por intento y reintentos ante fallos transitorios.
type DB struct {
	q       Querier
	timeout time.Duration
	retries int
}

// NewDB construye el ejecutor. timeout <= 0 desactiva el límite por intento.
func NewDB(q Querier, timeout time.Duration, retries int) *DB {
	if retries < 0 {
		retries = 0
	}
	return &DB{q: q, timeout: timeout, retries: retries}
}

// do ejecuta fn hasta 1+retries veces. Cada intento recibe su propio contexto con timeout;
// fn debe consumir las filas dentro del callback. Los errores no transitorios se devuelven tal cual.
// Solo para lecturas y sentencias idempotentes (UPDATE con valores absolutos).
func (d *DB) do(ctx context.Context, op string, fn func(ctx context.Context, q Querier) error) error {
	return d.run(ctx, op, false, fn)
}

// doWrite como do, para INSERT y DELETE: tras un fallo transitorio solo reintenta si la
// sentencia no llegó al servidor; si pudo ejecutarse devuelve UnavailableError sin repetirla.
func (d *DB) doWrite(ctx context.Context, op string, fn func(ctx context.Context, q Querier) error) error {
	return d.run(ctx, op, true, fn)
}

func (d *DB) run(ctx context.Context, op string, write bool, fn func(ctx context.Context, q Querier) error) error {
	var last error
	attempts := 0
	for attempts <= d.retries {
		attempts++
		last = d.attempt(ctx, fn)
		if last == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isTransient(last) {
			return last
		}
		if write && !notSent(last) {
			break
		}
	}
	return &domain.UnavailableError{Op: op, Attempts: attempts, Err: last}
}

func (d *DB) attempt(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	if d.timeout <= 0 {
		return fn(ctx, d.q)
	}
	actx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return fn(actx, d.q)
}

// isTransient reconoce timeouts y errores de red o de conexión.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08xxx connection exception, 57P01 admin_shutdown
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code == "57P01")
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// notSent reconoce los fallos en que la sentencia no llegó a enviarse.
func notSent(err error) bool {
	var connErr *pgconn.ConnectError
	return pgconn.SafeToRetry(err) || errors.As(err, &connErr)
}
