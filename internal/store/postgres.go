package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitquest/internal/fitness"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS fitness_state (
	id         SMALLINT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS fitness_watermark (
	id                  SMALLINT PRIMARY KEY,
	last_redeemed_index INTEGER NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// 两张表都只使用 id = 1 这一行
const singletonRowID = 1

// PostgresStore 把状态保存为 JSONB 文档
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 建立连接池并确保表存在
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fitness_watermark (id, last_redeemed_index)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, singletonRowID, fitness.InitialWatermark)
	if err != nil {
		return fmt.Errorf("seed watermark: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (fitness.State, error) {
	var document []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM fitness_state WHERE id = $1`, singletonRowID).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return fitness.DefaultState(), nil
	}
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("load postgres state: %w", err)
	}

	state, err := fitness.DecodeState(document)
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("decode postgres state: %w", err)
	}
	return state, nil
}

func (s *PostgresStore) Save(ctx context.Context, state fitness.State) error {
	document, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO fitness_state (id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()
	`, singletonRowID, document)
	if err != nil {
		return fmt.Errorf("save postgres state: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadWatermark(ctx context.Context) (int, error) {
	var index int
	err := s.pool.QueryRow(ctx, `SELECT last_redeemed_index FROM fitness_watermark WHERE id = $1`, singletonRowID).Scan(&index)
	if errors.Is(err, pgx.ErrNoRows) {
		return fitness.InitialWatermark, nil
	}
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("load postgres watermark: %w", err)
	}
	return index, nil
}

// SwapWatermark 用带旧值条件的 UPDATE 做比较并交换
func (s *PostgresStore) SwapWatermark(ctx context.Context, old, next int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE fitness_watermark
		SET last_redeemed_index = $2, updated_at = NOW()
		WHERE id = $3 AND last_redeemed_index = $1
	`, old, next, singletonRowID)
	if err != nil {
		return fmt.Errorf("swap postgres watermark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWatermarkConflict
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
