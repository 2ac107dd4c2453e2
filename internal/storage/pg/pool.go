// Package pg is the Postgres document store: one row per (source, article_id)
// with language variants held in a jsonb column.
package pg

import (
	"context"
	"fmt"

	"github.com/heritage-kr/noticehub/internal/apperr"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	ConnStr string
}

type ConnectionPool struct {
	conn *pgxpool.Pool
}

// NewConnectionPool connects and pings. An unreachable database is fatal at
// startup, so the ping failure surfaces as a connectivity error.
func NewConnectionPool(ctx context.Context, cfg PoolConfig) (*ConnectionPool, error) {
	dbpool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, apperr.NewConnectivity("postgres", err)
	}

	return &ConnectionPool{conn: dbpool}, nil
}

func (p *ConnectionPool) GetConn() *pgxpool.Pool {
	return p.conn
}

func (p *ConnectionPool) Close() {
	p.conn.Close()
}

func (p *ConnectionPool) Ping(ctx context.Context) error {
	c, err := p.conn.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()
	return c.Ping(ctx)
}
