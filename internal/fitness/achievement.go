package fitness

// Achievement 是成就目录中的静态条目
type Achievement struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameEN        string `json:"-"`
	Description   string `json:"description"`
	DescriptionEN string `json:"-"`
	Icon          string `json:"icon"`
	Category      string `json:"category"`

	unlocked func(AchievementStats) bool
}

// AchievementStatus 是每次评估时重新计算的解锁结果
type AchievementStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

// AchievementStats 是成就规则依赖的汇总数据
type AchievementStats struct {
	TotalActivities int
	LongestStreak   int
	DistanceByType  map[string]float64
	MaxDuration     int
}

var achievementCatalog = []Achievement{
	{ID: "streak3", Name: "坚持不懈", NameEN: "Persistent", Description: "连续打卡3天", DescriptionEN: "Log 3 days in a row", Icon: "fire", Category: "streak",
		unlocked: func(s AchievementStats) bool { return s.LongestStreak >= 3 }},
	{ID: "streak7", Name: "连续一周", NameEN: "Full Week", Description: "连续打卡7天", DescriptionEN: "Log 7 days in a row", Icon: "fire", Category: "streak",
		unlocked: func(s AchievementStats) bool { return s.LongestStreak >= 7 }},
	{ID: "streak14", Name: "毅力惊人", NameEN: "Iron Will", Description: "连续打卡14天", DescriptionEN: "Log 14 days in a row", Icon: "fire", Category: "streak",
		unlocked: func(s AchievementStats) bool { return s.LongestStreak >= 14 }},
	{ID: "run10k", Name: "跑步新手", NameEN: "Rookie Runner", Description: "累计跑步10公里", DescriptionEN: "Run 10 km in total", Icon: "running", Category: "distance",
		unlocked: func(s AchievementStats) bool { return s.DistanceByType[ActivityRunning] >= 10 }},
	{ID: "run50k", Name: "跑步达人", NameEN: "Seasoned Runner", Description: "累计跑步50公里", DescriptionEN: "Run 50 km in total", Icon: "running", Category: "distance",
		unlocked: func(s AchievementStats) bool { return s.DistanceByType[ActivityRunning] >= 50 }},
	{ID: "run100k", Name: "长跑健将", NameEN: "Distance Runner", Description: "累计跑步100公里", DescriptionEN: "Run 100 km in total", Icon: "running", Category: "distance",
		unlocked: func(s AchievementStats) bool { return s.DistanceByType[ActivityRunning] >= 100 }},
	{ID: "cycle25k", Name: "骑行初体验", NameEN: "First Rides", Description: "累计骑行25公里", DescriptionEN: "Cycle 25 km in total", Icon: "cycling", Category: "distance",
		unlocked: func(s AchievementStats) bool { return s.DistanceByType[ActivityCycling] >= 25 }},
	{ID: "cycle100k", Name: "单车好手", NameEN: "Road Cyclist", Description: "累计骑行100公里", DescriptionEN: "Cycle 100 km in total", Icon: "cycling", Category: "distance",
		unlocked: func(s AchievementStats) bool { return s.DistanceByType[ActivityCycling] >= 100 }},
	{ID: "firstActivity", Name: "初次尝试", NameEN: "First Step", Description: "完成首次运动打卡", DescriptionEN: "Log your first activity", Icon: "calendar-check", Category: "milestone",
		unlocked: func(s AchievementStats) bool { return s.TotalActivities >= 1 }},
	{ID: "total10", Name: "运动健将", NameEN: "Regular", Description: "累计完成10次运动", DescriptionEN: "Log 10 activities", Icon: "bolt", Category: "milestone",
		unlocked: func(s AchievementStats) bool { return s.TotalActivities >= 10 }},
	{ID: "total50", Name: "运动狂人", NameEN: "Fanatic", Description: "累计完成50次运动", DescriptionEN: "Log 50 activities", Icon: "bolt", Category: "milestone",
		unlocked: func(s AchievementStats) bool { return s.TotalActivities >= 50 }},
	{ID: "long_duration", Name: "时间管理大师", NameEN: "Time Master", Description: "单次运动超过1小时", DescriptionEN: "One session of at least an hour", Icon: "clock", Category: "special",
		unlocked: func(s AchievementStats) bool { return s.MaxDuration >= 60 }},
}

// Catalog 返回成就目录的副本，顺序固定
func Catalog() []Achievement {
	out := make([]Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

// CollectAchievementStats 基于全部记录计算成就所需的汇总
func CollectAchievementStats(records []ActivityRecord) AchievementStats {
	stats := AchievementStats{
		TotalActivities: len(records),
		LongestStreak:   LongestStreak(records),
		DistanceByType:  make(map[string]float64),
	}

	for _, record := range records {
		stats.DistanceByType[record.ActivityType] += record.Distance
		stats.MaxDuration = max(stats.MaxDuration, record.Duration)
	}

	return stats
}

// EvaluateAchievements 总是返回完整目录，并标注每一项是否解锁
func EvaluateAchievements(records []ActivityRecord) []AchievementStatus {
	return EvaluateAchievementStats(CollectAchievementStats(records))
}

// EvaluateAchievementStats 对已汇总的数据执行规则
func EvaluateAchievementStats(stats AchievementStats) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(achievementCatalog))
	for _, achievement := range achievementCatalog {
		out = append(out, AchievementStatus{
			Achievement: achievement,
			Unlocked:    achievement.unlocked(stats),
		})
	}
	return out
}
