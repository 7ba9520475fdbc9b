package locale

import "strings"

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

var activityLabels = map[string][2]string{
	"cycling":  {"Cycling", "骑行"},
	"walking":  {"Walking", "步行"},
	"running":  {"Running", "跑步"},
	"swimming": {"Swimming", "游泳"},
	"yoga":     {"Yoga", "瑜伽"},
}

var tierLabels = map[string][2]string{
	"small":  {"Small reward", "小奖励"},
	"medium": {"Medium reward", "中级奖励"},
	"large":  {"Large reward", "大奖励"},
}

// ActivityLabel 返回运动类型的展示名，未知类型原样返回
func ActivityLabel(language, activityType string) string {
	key := strings.ToLower(strings.TrimSpace(activityType))
	labels, ok := activityLabels[key]
	if !ok {
		return activityType
	}
	return Pick(language, labels[0], labels[1])
}

// TierLabel 返回奖励档位的展示名
func TierLabel(language, tier string) string {
	labels, ok := tierLabels[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return tier
	}
	return Pick(language, labels[0], labels[1])
}
