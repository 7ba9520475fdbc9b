package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitquest/internal/db"
	"github.com/fitquest/internal/fitness"
)

const (
	balanceRowID = 1
	insertBatch  = 200
)

// GormStore 使用关系表保存状态，水位线放在 system_settings
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 构造 GormStore
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// DB 返回底层连接，供同库的其他数据使用
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Load 按保存顺序还原状态
func (s *GormStore) Load(ctx context.Context) (fitness.State, error) {
	state := fitness.DefaultState()
	tx := s.db.WithContext(ctx)

	var records []db.ActivityRecord
	if err := tx.Order("position ASC").Find(&records).Error; err != nil {
		return state, fmt.Errorf("load records: %w", err)
	}
	for _, record := range records {
		state.Records = append(state.Records, fitness.ActivityRecord{
			Date:         record.Date,
			ActivityType: record.ActivityType,
			Duration:     record.Duration,
			Distance:     record.Distance,
			Note:         record.Note,
		})
	}

	var balance db.RewardBalance
	err := tx.First(&balance, balanceRowID).Error
	switch {
	case err == nil:
		state.Rewards = fitness.RewardBalance{Small: balance.Small, Medium: balance.Medium, Large: balance.Large}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return state, fmt.Errorf("load reward balance: %w", err)
	}

	var history []db.RewardHistoryEntry
	if err := tx.Order("position ASC").Find(&history).Error; err != nil {
		return state, fmt.Errorf("load reward history: %w", err)
	}
	for _, entry := range history {
		state.RewardHistory = append(state.RewardHistory, fitness.RewardHistoryEntry{
			Date:    entry.Date,
			Action:  entry.Action,
			Type:    fitness.Tier(entry.Type),
			From:    splitTiers(entry.From),
			To:      fitness.Tier(entry.To),
			Details: entry.Details,
			Message: entry.Message,
		})
	}

	return state, nil
}

// Save 在一个事务中整体替换状态
func (s *GormStore) Save(ctx context.Context, state fitness.State) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.ActivityRecord{}).Error; err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		if len(state.Records) > 0 {
			rows := make([]db.ActivityRecord, 0, len(state.Records))
			for i, record := range state.Records {
				rows = append(rows, db.ActivityRecord{
					Position:     i,
					Date:         record.Date,
					ActivityType: record.ActivityType,
					Duration:     record.Duration,
					Distance:     record.Distance,
					Note:         record.Note,
				})
			}
			if err := tx.CreateInBatches(rows, insertBatch).Error; err != nil {
				return fmt.Errorf("insert records: %w", err)
			}
		}

		balance := db.RewardBalance{
			ID:     balanceRowID,
			Small:  state.Rewards.Small,
			Medium: state.Rewards.Medium,
			Large:  state.Rewards.Large,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&balance).Error; err != nil {
			return fmt.Errorf("upsert reward balance: %w", err)
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.RewardHistoryEntry{}).Error; err != nil {
			return fmt.Errorf("clear reward history: %w", err)
		}
		if len(state.RewardHistory) > 0 {
			rows := make([]db.RewardHistoryEntry, 0, len(state.RewardHistory))
			for i, entry := range state.RewardHistory {
				rows = append(rows, db.RewardHistoryEntry{
					Position: i,
					Date:     entry.Date,
					Action:   entry.Action,
					Type:     string(entry.Type),
					From:     joinTiers(entry.From),
					To:       string(entry.To),
					Details:  entry.Details,
					Message:  entry.Message,
				})
			}
			if err := tx.CreateInBatches(rows, insertBatch).Error; err != nil {
				return fmt.Errorf("insert reward history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadWatermark 读取水位线，未设置时返回初始值
func (s *GormStore) LoadWatermark(ctx context.Context) (int, error) {
	var setting db.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", db.SettingKeyLastRedeemedIndex).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fitness.InitialWatermark, nil
	}
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("load watermark: %w", err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(setting.Value))
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("parse watermark %q: %w", setting.Value, err)
	}
	return value, nil
}

// SwapWatermark 用条件更新实现比较并交换
func (s *GormStore) SwapWatermark(ctx context.Context, old, next int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.SystemSetting{}).
			Where("key = ? AND value = ?", db.SettingKeyLastRedeemedIndex, strconv.Itoa(old)).
			Updates(map[string]interface{}{
				"value":      strconv.Itoa(next),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			})
		if result.Error != nil {
			return fmt.Errorf("update watermark: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}

		// 首次兑换时还没有这一行
		if old != fitness.InitialWatermark {
			return ErrWatermarkConflict
		}
		setting := db.SystemSetting{Key: db.SettingKeyLastRedeemedIndex, Value: strconv.Itoa(next)}
		created := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&setting)
		if created.Error != nil {
			return fmt.Errorf("insert watermark: %w", created.Error)
		}
		if created.RowsAffected == 0 {
			return ErrWatermarkConflict
		}
		return nil
	})
}

// Ping 检查底层连接
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func joinTiers(tiers []fitness.Tier) string {
	parts := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		parts = append(parts, string(tier))
	}
	return strings.Join(parts, ",")
}

func splitTiers(value string) []fitness.Tier {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]fitness.Tier, 0, len(parts))
	for _, part := range parts {
		out = append(out, fitness.Tier(strings.TrimSpace(part)))
	}
	return out
}
