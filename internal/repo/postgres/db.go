package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const DefaultConnectAttempts = 5

var ErrGatewayUnavailable = errors.New("postgres gateway is not initialized")

// Querier is satisfied by both *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ConnectivityError struct {
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("postgres unavailable after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func NewPool(ctx context.Context, dsn string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MinConns = 0
	if connectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = connectTimeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	return pool, nil
}

type Gateway struct {
	pool     *pgxpool.Pool
	attempts int
	logger   *zap.Logger
}

func NewGateway(pool *pgxpool.Pool, attempts int, logger *zap.Logger) *Gateway {
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{pool: pool, attempts: attempts, logger: logger}
}

func (g *Gateway) Close() {
	if g != nil && g.pool != nil {
		g.pool.Close()
	}
}

// Ping acquires one connection through the retry loop and runs SELECT 1.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.WithConn(ctx, "ping postgres", func(ctx context.Context, q Querier) error {
		_, err := q.Exec(ctx, "SELECT 1")
		return err
	})
}

// WithConn runs fn on a freshly acquired connection and always releases it.
func (g *Gateway) WithConn(ctx context.Context, op string, fn func(context.Context, Querier) error) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if err := fn(ctx, conn); err != nil {
		return classify(op, err)
	}
	return nil
}

func (g *Gateway) WithTx(ctx context.Context, op string, fn func(context.Context, pgx.Tx) error) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify("begin tx", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return classify(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit tx", err)
	}

	return nil
}

func (g *Gateway) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if g == nil || g.pool == nil {
		return nil, ErrGatewayUnavailable
	}

	var conn *pgxpool.Conn
	attempts, err := connectWithRetry(ctx, g.attempts, func(ctx context.Context) error {
		acquired, err := g.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		conn = acquired
		return nil
	})
	if err != nil {
		g.logger.Warn("postgres acquire failed", zap.Int("attempts", attempts), zap.Error(err))
		return nil, err
	}
	if attempts > 1 {
		g.logger.Info("postgres acquired after retry", zap.Int("attempts", attempts))
	}
	return conn, nil
}

// connectWithRetry retries connect immediately while it fails with a
// connectivity error. It returns the number of attempts made.
func connectWithRetry(ctx context.Context, attempts int, connect func(context.Context) error) (int, error) {
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = connect(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if !IsConnectivityError(lastErr) {
			return attempt, classify("acquire connection", lastErr)
		}
	}

	return attempts, &ConnectivityError{Attempts: attempts, Err: lastErr}
}

// IsConnectivityError reports whether err means the server could not be
// reached. An error reported by the server itself (auth, SQL) is not one.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	var connectivityErr *ConnectivityError
	if errors.As(err, &connectivityErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var connectivityErr *ConnectivityError
	var queryErr *QueryError
	if errors.As(err, &connectivityErr) || errors.As(err, &queryErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{Op: op, Err: err}
	}
	if IsConnectivityError(err) {
		return &ConnectivityError{Attempts: 1, Err: err}
	}
	return err
}
