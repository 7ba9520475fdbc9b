// Package store 负责运动状态文档与兑换水位线的持久化。
// 两者分开存放：状态整体读写，水位线单独做比较并交换。
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fitquest/internal/config"
	"github.com/fitquest/internal/db"
	"github.com/fitquest/internal/fitness"
)

var (
	// ErrWatermarkConflict 在水位线已被其他请求修改时返回
	ErrWatermarkConflict = errors.New("redemption watermark changed concurrently")
	// ErrUnknownBackend 表示 STORE_BACKEND 取值不受支持
	ErrUnknownBackend = errors.New("unknown store backend")
)

// StateStore 整体读写状态文档
type StateStore interface {
	Load(ctx context.Context) (fitness.State, error)
	Save(ctx context.Context, state fitness.State) error
}

// WatermarkStore 读写兑换水位线
type WatermarkStore interface {
	LoadWatermark(ctx context.Context) (int, error)
	// SwapWatermark 仅当当前值等于 old 时写入 next，否则返回 ErrWatermarkConflict
	SwapWatermark(ctx context.Context, old, next int) error
}

// Store 是服务层依赖的完整持久化接口
type Store interface {
	StateStore
	WatermarkStore
	Ping(ctx context.Context) error
	Close() error
}

// New 根据配置创建对应的存储后端
func New(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		gdb, err := db.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("using sqlite store", zap.String("path", cfg.DatabasePath))
		return NewGormStore(gdb), nil
	case config.BackendFile:
		logger.Info("using file store", zap.String("path", cfg.DataFilePath))
		return NewFileStore(cfg.DataFilePath)
	case config.BackendRedis:
		client := NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rs := NewRedisStore(client, cfg.RedisKeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("using redis store", zap.String("addr", cfg.RedisAddr), zap.String("prefix", cfg.RedisKeyPrefix))
		return rs, nil
	case config.BackendPostgres:
		ps, err := NewPostgresStore(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres store", zap.Int32("max_conns", cfg.PostgresMaxConns))
		return ps, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}
