package fitness

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
)

// 时间范围过滤条件
const (
	RangeAll        = "all"
	RangeMonth      = "month"
	RangeLastMonth  = "lastMonth"
	RangeLastThree  = "3months"
	RangeYear       = "year"
	TypeFilterAll   = "all"
	trendMonthCount = 12
)

// Statistics 汇总报表使用的总量
type Statistics struct {
	TotalCount    int     `json:"totalCount"`
	TotalMinutes  int     `json:"totalMinutes"`
	TotalDuration float64 `json:"totalDuration"`
	TotalDistance float64 `json:"totalDistance"`
	LongestStreak int     `json:"longestStreak"`
}

// RecordFilter 描述历史记录的筛选条件
type RecordFilter struct {
	TimeRange    string
	ActivityType string
	Search       string
}

// TypeCount 表示某一运动类型的次数
type TypeCount struct {
	ActivityType string `json:"activityType"`
	Count        int    `json:"count"`
}

// PeriodSummary 是某个时间段(本周/本月)的记录概览
type PeriodSummary struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	RecordCount   int    `json:"recordCount"`
	LongestStreak int    `json:"longestStreak"`
}

// Overview 对应首页的本周与本月概览
type Overview struct {
	Week  PeriodSummary `json:"week"`
	Month PeriodSummary `json:"month"`
}

// Aggregate 计算条数、总时长(小时，保留 1 位)、总距离(公里，保留 2 位)和最长连续天数
func Aggregate(records []ActivityRecord) Statistics {
	stats := Statistics{TotalCount: len(records)}

	var distance float64
	for _, record := range records {
		stats.TotalMinutes += record.Duration
		distance += record.Distance
	}

	stats.TotalDuration = roundTo(float64(stats.TotalMinutes)/60, 1)
	stats.TotalDistance = roundTo(distance, 2)
	stats.LongestStreak = LongestStreak(records)

	return stats
}

// FilterRecords 依次按时间范围、运动类型、关键字过滤，now 决定"本月"等相对范围
func FilterRecords(records []ActivityRecord, filter RecordFilter, now time.Time) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(records))
	activityType := strings.TrimSpace(filter.ActivityType)
	if strings.EqualFold(activityType, TypeFilterAll) {
		activityType = ""
	}
	activityType = NormalizeActivityType(activityType)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, record := range records {
		if !inTimeRange(record, filter.TimeRange, now) {
			continue
		}
		if activityType != "" && record.ActivityType != activityType {
			continue
		}
		if search != "" && !strings.Contains(record.ActivityType, search) && !strings.Contains(strings.ToLower(record.Note), search) {
			continue
		}
		out = append(out, record)
	}

	return out
}

// TypeDistribution 统计各运动类型的次数，按次数倒序、类型名正序
func TypeDistribution(records []ActivityRecord) []TypeCount {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.ActivityType]++
	}

	out := make([]TypeCount, 0, len(counts))
	for activityType, count := range counts {
		out = append(out, TypeCount{ActivityType: activityType, Count: count})
	}

	slices.SortFunc(out, func(a, b TypeCount) int {
		if diff := cmp.Compare(b.Count, a.Count); diff != 0 {
			return diff
		}
		return cmp.Compare(a.ActivityType, b.ActivityType)
	})
	return out
}

// DurationTrend 返回指定年份每月的运动分钟数，下标 0 为一月
func DurationTrend(records []ActivityRecord, year int) []int {
	trend := make([]int, trendMonthCount)
	for _, record := range records {
		day, err := ParseDay(record.Date)
		if err != nil || day.Year() != year {
			continue
		}
		trend[int(day.Month())-1] += record.Duration
	}
	return trend
}

// BuildOverview 计算本周(周一开始)与本月的记录数与最长连续天数
func BuildOverview(records []ActivityRecord, now time.Time) Overview {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := today.AddDate(0, 0, -weekday+1)
	weekEnd := weekStart.AddDate(0, 0, 6)

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	return Overview{
		Week:  summarizePeriod(records, weekStart, weekEnd),
		Month: summarizePeriod(records, monthStart, monthEnd),
	}
}

func summarizePeriod(records []ActivityRecord, start, end time.Time) PeriodSummary {
	inPeriod := make([]ActivityRecord, 0)
	for _, record := range records {
		day, err := ParseDay(record.Date)
		if err != nil {
			continue
		}
		if day.Before(start) || day.After(end) {
			continue
		}
		inPeriod = append(inPeriod, record)
	}

	return PeriodSummary{
		Start:         start.Format(DateLayout),
		End:           end.Format(DateLayout),
		RecordCount:   len(inPeriod),
		LongestStreak: LongestStreak(inPeriod),
	}
}

func inTimeRange(record ActivityRecord, timeRange string, now time.Time) bool {
	if timeRange == "" || timeRange == RangeAll {
		return true
	}

	day, err := ParseDay(record.Date)
	if err != nil {
		return false
	}

	switch timeRange {
	case RangeMonth:
		return day.Year() == now.Year() && day.Month() == now.Month()
	case RangeLastMonth:
		last := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return day.Year() == last.Year() && day.Month() == last.Month()
	case RangeLastThree:
		threeMonthsAgo := time.Date(now.Year(), now.Month()-3, 1, 0, 0, 0, 0, time.UTC)
		return !day.Before(threeMonthsAgo)
	case RangeYear:
		return day.Year() == now.Year()
	default:
		return true
	}
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
