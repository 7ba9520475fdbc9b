package fitness

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// DateLayout 是记录日期的规范格式
const DateLayout = "2006-01-02"

const maxSanitizePasses = 4

// 已知运动类型，集合本身是开放的
const (
	ActivityCycling = "cycling"
	ActivityWalking = "walking"
	ActivityRunning = "running"
)

var (
	// ErrInvalidDate 在记录日期无法解析时返回
	ErrInvalidDate = errors.New("invalid record date")

	noteSanitizer = bluemonday.StrictPolicy()

	activityAliases = map[string]string{
		"cycle":   ActivityCycling,
		"bike":    ActivityCycling,
		"骑行":      ActivityCycling,
		"walk":    ActivityWalking,
		"步行":      ActivityWalking,
		"走路":      ActivityWalking,
		"run":     ActivityRunning,
		"跑步":      ActivityRunning,
	}
)

// ActivityRecord 表示一次运动打卡，Date 为自然键
type ActivityRecord struct {
	Date         string  `json:"date"`
	ActivityType string  `json:"activityType"`
	Duration     int     `json:"duration"`
	Distance     float64 `json:"distance"`
	Note         string  `json:"note,omitempty"`
}

// rawRecord 兼容历史数据中的字段命名差异，只在反序列化入口使用
type rawRecord struct {
	Date          string          `json:"date"`
	ActivityType  string          `json:"activityType"`
	ActivityTypeS string          `json:"activity_type"`
	Type          string          `json:"type"`
	Duration      json.RawMessage `json:"duration"`
	SportsTime    json.RawMessage `json:"sportsTime"`
	SportsTimeS   json.RawMessage `json:"sports_time"`
	Distance      json.RawMessage `json:"distance"`
	Note          string          `json:"note"`
}

// UnmarshalJSON 将各种字段变体统一为规范结构
func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	activityType := firstNonEmpty(raw.ActivityType, raw.ActivityTypeS, raw.Type)
	duration := firstPresent(raw.Duration, raw.SportsTime, raw.SportsTimeS)

	record, err := NewRecord(raw.Date, activityType, decodeLoose(duration), decodeLoose(raw.Distance), raw.Note)
	if err != nil {
		return err
	}
	*r = record
	return nil
}

// NewRecord 构造规范化的记录；时长与距离可以是数字或带单位的字符串
func NewRecord(date, activityType string, duration, distance any, note string) (ActivityRecord, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return ActivityRecord{}, err
	}

	return ActivityRecord{
		Date:         day,
		ActivityType: NormalizeActivityType(activityType),
		Duration:     ParseDuration(duration),
		Distance:     ParseDistance(distance),
		Note:         SanitizeNote(note),
	}, nil
}

// SanitizeNote 去掉备注中的标签，并还原被转义的普通字符
// 还原后可能重新出现标签（如 &lt;b&gt;），所以反复清洗直到结果稳定
func SanitizeNote(note string) string {
	out := strings.TrimSpace(note)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(noteSanitizer.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}

// NormalizeDate 接受 2006-01-02、RFC3339 或不带时区的时间戳，返回日粒度字符串
func NormalizeDate(value string) (string, error) {
	day, err := ParseDay(value)
	if err != nil {
		return "", err
	}
	return day.Format(DateLayout), nil
}

// ParseDay 将日期解析为 UTC 零点，便于按天做差
func ParseDay(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	if idx := strings.IndexByte(trimmed, 'T'); idx > 0 {
		trimmed = trimmed[:idx]
	}

	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// NormalizeActivityType 统一大小写并折叠常见别名
func NormalizeActivityType(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := activityAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// UpsertRecord 按日期替换或追加记录，并按日期倒序返回新切片
func UpsertRecord(records []ActivityRecord, record ActivityRecord) []ActivityRecord {
	out := slices.Clone(records)

	idx := slices.IndexFunc(out, func(r ActivityRecord) bool { return r.Date == record.Date })
	if idx >= 0 {
		out[idx] = record
	} else {
		out = append(out, record)
	}

	SortByDateDesc(out)
	return out
}

// RemoveRecord 删除指定日期的记录，返回是否命中
func RemoveRecord(records []ActivityRecord, date string) ([]ActivityRecord, bool) {
	idx := slices.IndexFunc(records, func(r ActivityRecord) bool { return r.Date == date })
	if idx < 0 {
		return records, false
	}
	return slices.Delete(slices.Clone(records), idx, idx+1), true
}

// SortByDateDesc 展示用排序，同日期保持原有顺序
func SortByDateDesc(records []ActivityRecord) {
	slices.SortStableFunc(records, func(a, b ActivityRecord) int {
		return cmp.Compare(b.Date, a.Date)
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPresent(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			return v
		}
	}
	return nil
}

// decodeLoose 把数字或字符串字段解码成 float64/string，其余情况返回 nil
func decodeLoose(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return nil
}
