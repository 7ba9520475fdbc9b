package db

import "gorm.io/gorm"

// SystemSetting 存储系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyLastRedeemedIndex 记录兑换水位线，与运动数据分开存放。
	SettingKeyLastRedeemedIndex = "last_redeemed_index"
)
