package fitness

import (
	"slices"
	"time"
)

// LongestStreak 计算记录中最长的连续打卡天数
// 同一天的多条记录只算一次，输入无需预先排序
func LongestStreak(records []ActivityRecord) int {
	days := distinctDays(records)
	if len(days) < 2 {
		return len(days)
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			current++
		} else {
			current = 1
		}
		// 每一步都更新，保证末尾的连胜也被计入
		longest = max(longest, current)
	}

	return longest
}

func distinctDays(records []ActivityRecord) []time.Time {
	seen := make(map[string]struct{}, len(records))
	days := make([]time.Time, 0, len(records))

	for _, record := range records {
		day, err := ParseDay(record.Date)
		if err != nil {
			continue
		}
		key := day.Format(DateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}

	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return days
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
