package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
)

//go:embed schema.sql
var schema string

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool  *pgxpool.Pool
	mylog logger.Logger
}

// Start opens a connection pool, pings it and makes sure the schema exists.
func Start(ctx context.Context, dbCfg *config.Postgres, mylog logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Database,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if dbCfg.MaxConns > 0 {
		poolCfg.MaxConns = dbCfg.MaxConns
	}

	return Open(ctx, poolCfg, mylog)
}

func Open(ctx context.Context, poolCfg *pgxpool.Config, mylog logger.Logger) (*Store, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDBConn, err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrDBConn, err)
	}
	if _, err := pool.Exec(connCtx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	mylog.Action("db_connected").Info("Connected to PostgreSQL database")
	return &Store{pool: pool, mylog: mylog}, nil
}

// Tx runs fn in a read-committed transaction. Row locks taken by the repos
// (SELECT ... FOR UPDATE) serialize competing writers on the same rows.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, repos core.IRepos) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.mylog.Action("rollback_failed").Error("Failed to roll back transaction", rbErr)
			}
		}
	}()

	if err = fn(ctx, &repos{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) IsAlive(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("DB is not initialized")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDBConn, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type repos struct {
	q querier
}

func (r *repos) Menu() core.IMenuRepo                { return &menuRepo{q: r.q} }
func (r *repos) Orders() core.IOrderRepo             { return &orderRepo{q: r.q} }
func (r *repos) History() core.IHistoryRepo          { return &historyRepo{q: r.q} }
func (r *repos) ClientOrders() core.IClientOrderRepo { return &clientOrderRepo{q: r.q} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
