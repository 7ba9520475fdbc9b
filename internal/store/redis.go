package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fitquest/internal/fitness"
)

const (
	redisStateKey     = "state"
	redisWatermarkKey = "last_redeemed_index"
)

// swapWatermarkScript 只有当前值与 ARGV[1] 相同才写入，键不存在时视为 ARGV[3]
var swapWatermarkScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then current = ARGV[3] end
if current ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// RedisStore 把状态文档存为一个 JSON 字符串
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient 使用统一的超时参数创建客户端
func NewRedisClient(addr, password string, database int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           database,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedisStore 构造 RedisStore
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Load 读取状态，键不存在时返回空状态
func (s *RedisStore) Load(ctx context.Context) (fitness.State, error) {
	data, err := s.client.Get(ctx, s.key(redisStateKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return fitness.DefaultState(), nil
	}
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("redis get state: %w", err)
	}

	state, err := fitness.DecodeState(data)
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("decode redis state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state fitness.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(redisStateKey), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set state: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadWatermark(ctx context.Context) (int, error) {
	value, err := s.client.Get(ctx, s.key(redisWatermarkKey)).Result()
	if errors.Is(err, redis.Nil) {
		return fitness.InitialWatermark, nil
	}
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("redis get watermark: %w", err)
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("parse watermark %q: %w", value, err)
	}
	return index, nil
}

// SwapWatermark 通过 Lua 脚本保证比较与写入原子执行
func (s *RedisStore) SwapWatermark(ctx context.Context, old, next int) error {
	swapped, err := swapWatermarkScript.Run(ctx, s.client,
		[]string{s.key(redisWatermarkKey)},
		strconv.Itoa(old), strconv.Itoa(next), strconv.Itoa(fitness.InitialWatermark),
	).Int()
	if err != nil {
		return fmt.Errorf("redis swap watermark: %w", err)
	}
	if swapped == 0 {
		return ErrWatermarkConflict
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
