package fitness

import "strings"

const (
	// monthlyBaseline 每月前 15 次不计入有效次数
	monthlyBaseline = 15
	// bonusThreshold 有效次数达到该值后进入加成区间
	bonusThreshold = 20
	bonusPivot     = 19

	cyclingQualifiedMinutes = 60
	walkingQualifiedMinutes = 90
)

// MonthlyReward 是某个自然月的奖励计算结果
type MonthlyReward struct {
	YearMonth         string `json:"yearMonth"`
	TotalDays         int    `json:"totalDays"`
	QualifiedDays     int    `json:"qualifiedDays"`
	ValidCount        int    `json:"validCount"`
	RewardCount       int    `json:"rewardCount"`
	EarnedSmallReward bool   `json:"earnedSmallReward"`
}

// CalculateMonthlyReward 统计 yearMonth(YYYY-MM) 内的记录并计算奖励次数
// QualifiedDays 仅用于展示，不参与奖励公式
func CalculateMonthlyReward(records []ActivityRecord, yearMonth string) MonthlyReward {
	result := MonthlyReward{YearMonth: yearMonth}
	if strings.TrimSpace(yearMonth) == "" {
		return result
	}

	for _, record := range records {
		if !strings.HasPrefix(record.Date, yearMonth) {
			continue
		}
		result.TotalDays++
		if isQualified(record) {
			result.QualifiedDays++
		}
	}

	if result.TotalDays > monthlyBaseline {
		result.ValidCount = result.TotalDays - monthlyBaseline
	}

	result.RewardCount = RewardCountFor(result.ValidCount)
	result.EarnedSmallReward = result.RewardCount > 0 && result.RewardCount < bonusThreshold

	return result
}

// RewardCountFor 将有效次数换算为奖励次数：超过 19 的部分每 2 次折算 3 次
func RewardCountFor(validCount int) int {
	if validCount < bonusThreshold {
		return validCount
	}
	excess := validCount - bonusPivot
	bonus := (excess / 2) * 3
	return bonusPivot + bonus
}

func isQualified(record ActivityRecord) bool {
	switch record.ActivityType {
	case ActivityCycling:
		return record.Duration >= cyclingQualifiedMinutes
	case ActivityWalking:
		return record.Duration >= walkingQualifiedMinutes
	default:
		return false
	}
}
