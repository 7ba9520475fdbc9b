package fitness

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingIntPattern = regexp.MustCompile(`^[+-]?\d+`)
	decimalPattern    = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
)

// ParseDuration 解析 "60min" 这类时长字段，单位为分钟
// 非法输入一律视为 0
func ParseDuration(value any) int {
	switch v := value.(type) {
	case int:
		return clampInt(v)
	case int64:
		return clampInt(int(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return clampInt(int(v))
	case string:
		match := leadingIntPattern.FindString(strings.TrimSpace(v))
		if match == "" {
			return 0
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			return 0
		}
		return clampInt(n)
	default:
		return 0
	}
}

// ParseDistance 解析 "18.95(公里)" 这类距离字段，单位为公里
func ParseDistance(value any) float64 {
	switch v := value.(type) {
	case int:
		return clampFloat(float64(v))
	case float64:
		return clampFloat(v)
	case string:
		match := decimalPattern.FindString(v)
		if match == "" {
			return 0
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0
		}
		return clampFloat(f)
	default:
		return 0
	}
}

func clampInt(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
