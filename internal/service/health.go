package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fitquest/internal/db"
	"github.com/fitquest/internal/fitness"
)

var (
	// ErrHealthRoleNotFound 在角色不存在时返回
	ErrHealthRoleNotFound = errors.New("health role not found")
	// ErrHealthRoleInvalid 角色名称为空或已被占用
	ErrHealthRoleInvalid = errors.New("invalid health role")
	// ErrHealthRecordNotFound 在健康记录不存在时返回
	ErrHealthRecordNotFound = errors.New("health record not found")
	// ErrHealthRecordExists 同一角色同一天已有记录
	ErrHealthRecordExists = errors.New("health record already exists for this date")
)

// HealthService 管理多个角色的每日健康记录
// 每个角色每天最多一条，修改请按 ID 更新
type HealthService struct {
	db *gorm.DB
}

// HealthRoleInput 创建角色时的字段
type HealthRoleInput struct {
	Name  string
	Color string
}

// HealthRecordInput 新增记录时的字段
type HealthRecordInput struct {
	Date string
	fitness.HealthMetrics
}

// HealthRecordPatch 只更新非 nil 的字段
type HealthRecordPatch struct {
	Date       *string
	Weight     *float64
	SleepHours *float64
	Steps      *int
	HeartRate  *int
	Mood       *string
	Note       *string
}

// NewHealthService 构造 HealthService
func NewHealthService(gdb *gorm.DB) *HealthService {
	return &HealthService{db: gdb}
}

// ListRoles 按创建顺序返回角色
func (s *HealthService) ListRoles(ctx context.Context) ([]db.HealthRole, error) {
	roles := make([]db.HealthRole, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list health roles: %w", err)
	}
	return roles, nil
}

// CreateRole 新建角色
func (s *HealthService) CreateRole(ctx context.Context, input HealthRoleInput) (*db.HealthRole, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrHealthRoleInvalid)
	}

	tx := s.db.WithContext(ctx)
	var count int64
	if err := tx.Model(&db.HealthRole{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check health role: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s already exists", ErrHealthRoleInvalid, name)
	}

	role := db.HealthRole{Name: name, Color: strings.TrimSpace(input.Color)}
	if err := tx.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("create health role: %w", err)
	}
	return &role, nil
}

// AddRecord 为角色新增一天的记录
func (s *HealthService) AddRecord(ctx context.Context, roleID uint, input HealthRecordInput) (*db.HealthRecord, error) {
	date, err := fitness.NormalizeDate(input.Date)
	if err != nil {
		return nil, err
	}
	metrics := input.HealthMetrics.Normalize()
	if err := metrics.Validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	if err := s.ensureRole(tx, roleID); err != nil {
		return nil, err
	}
	if err := s.ensureDateFree(tx, roleID, date, 0); err != nil {
		return nil, err
	}

	record := db.HealthRecord{RoleID: roleID, Date: date}
	applyMetrics(&record, metrics)
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create health record: %w", err)
	}
	return &record, nil
}

// UpdateRecord 按 ID 合并更新
func (s *HealthService) UpdateRecord(ctx context.Context, id uint, patch HealthRecordPatch) (*db.HealthRecord, error) {
	tx := s.db.WithContext(ctx)

	var record db.HealthRecord
	if err := tx.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHealthRecordNotFound
		}
		return nil, fmt.Errorf("find health record: %w", err)
	}

	if patch.Date != nil {
		date, err := fitness.NormalizeDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		if err := s.ensureDateFree(tx, record.RoleID, date, record.ID); err != nil {
			return nil, err
		}
		record.Date = date
	}

	metrics := metricsOf(record)
	if patch.Weight != nil {
		metrics.Weight = *patch.Weight
	}
	if patch.SleepHours != nil {
		metrics.SleepHours = *patch.SleepHours
	}
	if patch.Steps != nil {
		metrics.Steps = *patch.Steps
	}
	if patch.HeartRate != nil {
		metrics.HeartRate = *patch.HeartRate
	}
	if patch.Mood != nil {
		metrics.Mood = *patch.Mood
	}
	if patch.Note != nil {
		metrics.Note = *patch.Note
	}
	metrics = metrics.Normalize()
	if err := metrics.Validate(); err != nil {
		return nil, err
	}
	applyMetrics(&record, metrics)

	if err := tx.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("update health record: %w", err)
	}
	return &record, nil
}

// DeleteRecord 按 ID 删除
func (s *HealthService) DeleteRecord(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.HealthRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete health record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHealthRecordNotFound
	}
	return nil
}

// RoleRecords 返回角色的全部记录，最新的在前
func (s *HealthService) RoleRecords(ctx context.Context, roleID uint) ([]db.HealthRecord, error) {
	tx := s.db.WithContext(ctx)
	if err := s.ensureRole(tx, roleID); err != nil {
		return nil, err
	}

	records := make([]db.HealthRecord, 0)
	if err := tx.Where("role_id = ?", roleID).Order("date DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	return records, nil
}

// RecordByDate 返回角色在某天的记录
func (s *HealthService) RecordByDate(ctx context.Context, roleID uint, date string) (*db.HealthRecord, error) {
	day, err := fitness.NormalizeDate(date)
	if err != nil {
		return nil, err
	}

	var record db.HealthRecord
	if err := s.db.WithContext(ctx).Where("role_id = ? AND date = ?", roleID, day).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHealthRecordNotFound
		}
		return nil, fmt.Errorf("find health record: %w", err)
	}
	return &record, nil
}

// AllRecords 返回所有角色的记录，按日期升序，用于图表
func (s *HealthService) AllRecords(ctx context.Context) ([]db.HealthRecord, error) {
	records := make([]db.HealthRecord, 0)
	if err := s.db.WithContext(ctx).Order("date ASC, role_id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list all health records: %w", err)
	}
	return records, nil
}

func (s *HealthService) ensureRole(tx *gorm.DB, roleID uint) error {
	var count int64
	if err := tx.Model(&db.HealthRole{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("check health role: %w", err)
	}
	if count == 0 {
		return ErrHealthRoleNotFound
	}
	return nil
}

func (s *HealthService) ensureDateFree(tx *gorm.DB, roleID uint, date string, exceptID uint) error {
	var count int64
	if err := tx.Model(&db.HealthRecord{}).
		Where("role_id = ? AND date = ? AND id <> ?", roleID, date, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check health record date: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrHealthRecordExists, date)
	}
	return nil
}

func metricsOf(record db.HealthRecord) fitness.HealthMetrics {
	return fitness.HealthMetrics{
		Weight:     record.Weight,
		SleepHours: record.SleepHours,
		Steps:      record.Steps,
		HeartRate:  record.HeartRate,
		Mood:       record.Mood,
		Note:       record.Note,
	}
}

func applyMetrics(record *db.HealthRecord, metrics fitness.HealthMetrics) {
	record.Weight = metrics.Weight
	record.SleepHours = metrics.SleepHours
	record.Steps = metrics.Steps
	record.HeartRate = metrics.HeartRate
	record.Mood = metrics.Mood
	record.Note = metrics.Note
}
