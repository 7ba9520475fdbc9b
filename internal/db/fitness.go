package db

import "time"

// ActivityRecord 对应一条运动打卡，Date 唯一
// Position 保存文档中的顺序，读取时按它还原
type ActivityRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Position     int    `gorm:"index"`
	Date         string `gorm:"size:10;uniqueIndex;not null"`
	ActivityType string `gorm:"size:32;index"`
	Duration     int
	Distance     float64
	Note         string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 固定表名
func (ActivityRecord) TableName() string {
	return "activity_records"
}

// RewardBalance 只有一行，保存各档奖励数量
type RewardBalance struct {
	ID        uint `gorm:"primaryKey"`
	Small     int
	Medium    int
	Large     int
	UpdatedAt time.Time
}

func (RewardBalance) TableName() string {
	return "reward_balances"
}

// RewardHistoryEntry 奖励流水，From 以逗号分隔存储
type RewardHistoryEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Position  int    `gorm:"index"`
	Date      string `gorm:"size:10"`
	Action    string `gorm:"size:16"`
	Type      string `gorm:"size:16"`
	From      string `gorm:"size:64"`
	To        string `gorm:"size:16"`
	Details   string `gorm:"type:text"`
	Message   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (RewardHistoryEntry) TableName() string {
	return "reward_history"
}
