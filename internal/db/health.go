package db

import "time"

// HealthRole 是记录健康数据的成员，名称唯一
type HealthRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"size:16" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (HealthRole) TableName() string {
	return "health_roles"
}

// HealthRecord 每个角色每天一条，RoleID + Date 唯一
type HealthRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RoleID     uint       `gorm:"not null;index;uniqueIndex:idx_health_role_date" json:"roleId"`
	Role       HealthRole `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Date       string     `gorm:"size:10;not null;uniqueIndex:idx_health_role_date" json:"date"`
	Weight     float64    `json:"weight"`
	SleepHours float64    `json:"sleepHours"`
	Steps      int        `json:"steps"`
	HeartRate  int        `json:"heartRate"`
	Mood       string     `gorm:"size:32" json:"mood"`
	Note       string     `gorm:"type:text" json:"note"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// TableName 确保唯一索引作用到 role_id + date
func (HealthRecord) TableName() string {
	return "health_records"
}
