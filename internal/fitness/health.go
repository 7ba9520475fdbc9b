package fitness

import (
	"errors"
	"fmt"
	"strings"
)

const maxSleepHours = 24

// ErrInvalidHealthRecord 在健康数据超出合理范围时返回
var ErrInvalidHealthRecord = errors.New("invalid health record")

// HealthMetrics 是某个角色一天的健康数据
type HealthMetrics struct {
	Weight     float64 `json:"weight"`
	SleepHours float64 `json:"sleepHours"`
	Steps      int     `json:"steps"`
	HeartRate  int     `json:"heartRate"`
	Mood       string  `json:"mood"`
	Note       string  `json:"note"`
}

// Normalize 清洗文本字段
func (m HealthMetrics) Normalize() HealthMetrics {
	m.Mood = strings.TrimSpace(m.Mood)
	m.Note = SanitizeNote(m.Note)
	return m
}

// Validate 数值不能为负，睡眠不超过 24 小时
func (m HealthMetrics) Validate() error {
	switch {
	case m.Weight < 0:
		return fmt.Errorf("%w: negative weight", ErrInvalidHealthRecord)
	case m.SleepHours < 0 || m.SleepHours > maxSleepHours:
		return fmt.Errorf("%w: sleep hours out of range", ErrInvalidHealthRecord)
	case m.Steps < 0:
		return fmt.Errorf("%w: negative steps", ErrInvalidHealthRecord)
	case m.HeartRate < 0:
		return fmt.Errorf("%w: negative heart rate", ErrInvalidHealthRecord)
	}
	return nil
}
