package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/locale"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// MonthlyReport 是某月的运动报告
type MonthlyReport struct {
	Month    string                `json:"month"`
	Language string                `json:"language"`
	Monthly  fitness.MonthlyReward `json:"monthly"`
	Stats    fitness.Statistics    `json:"stats"`
	Markdown string                `json:"markdown"`
	HTML     string                `json:"html"`
}

// Report 生成指定月份的 Markdown 报告并渲染为安全的 HTML
func (t *Tracker) Report(month, language string) (MonthlyReport, error) {
	t.mu.Lock()
	ym, err := t.resolveMonthLocked(month)
	if err != nil {
		t.mu.Unlock()
		return MonthlyReport{}, err
	}
	records := make([]fitness.ActivityRecord, 0)
	for _, record := range t.state.Records {
		if strings.HasPrefix(record.Date, ym) {
			records = append(records, record)
		}
	}
	t.mu.Unlock()

	lang := locale.Resolve(language, "")
	fitness.SortByDateDesc(records)

	report := MonthlyReport{
		Month:    ym,
		Language: lang,
		Monthly:  fitness.CalculateMonthlyReward(records, ym),
		Stats:    fitness.Aggregate(records),
	}
	report.Markdown = buildReportMarkdown(report, records, lang)

	rendered, err := renderMarkdown(report.Markdown)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("render report: %w", err)
	}
	report.HTML = rendered
	return report, nil
}

func buildReportMarkdown(report MonthlyReport, records []fitness.ActivityRecord, lang string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", locale.Pick(lang, "Fitness report "+report.Month, report.Month+" 运动月报"))

	fmt.Fprintf(&b, "| %s | %s |\n| --- | --- |\n", locale.Pick(lang, "Metric", "指标"), locale.Pick(lang, "Value", "数值"))
	rows := []struct {
		label string
		value string
	}{
		{locale.Pick(lang, "Active days", "打卡天数"), fmt.Sprint(report.Monthly.TotalDays)},
		{locale.Pick(lang, "Qualified days", "达标天数"), fmt.Sprint(report.Monthly.QualifiedDays)},
		{locale.Pick(lang, "Valid count", "有效次数"), fmt.Sprint(report.Monthly.ValidCount)},
		{locale.Pick(lang, "Reward count", "奖励次数"), fmt.Sprint(report.Monthly.RewardCount)},
		{locale.Pick(lang, "Total hours", "总时长(小时)"), fmt.Sprint(report.Stats.TotalDuration)},
		{locale.Pick(lang, "Total km", "总距离(公里)"), fmt.Sprint(report.Stats.TotalDistance)},
		{locale.Pick(lang, "Longest streak", "最长连续天数"), fmt.Sprint(report.Stats.LongestStreak)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.label, row.value)
	}

	if report.Monthly.EarnedSmallReward {
		fmt.Fprintf(&b, "\n> %s\n", locale.Pick(lang, "This month qualifies for a small reward.", "本月可获得 1 个小奖励。"))
	}

	if len(records) == 0 {
		fmt.Fprintf(&b, "\n%s\n", locale.Pick(lang, "No activity recorded this month.", "本月暂无运动记录。"))
		return b.String()
	}

	fmt.Fprintf(&b, "\n## %s\n\n", locale.Pick(lang, "By activity", "运动类型"))
	for _, item := range fitness.TypeDistribution(records) {
		fmt.Fprintf(&b, "- %s: %d\n", locale.ActivityLabel(lang, item.ActivityType), item.Count)
	}

	fmt.Fprintf(&b, "\n## %s\n\n", locale.Pick(lang, "Details", "明细"))
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n| --- | --- | ---: | ---: | --- |\n",
		locale.Pick(lang, "Date", "日期"),
		locale.Pick(lang, "Activity", "类型"),
		locale.Pick(lang, "Minutes", "时长(分钟)"),
		locale.Pick(lang, "Km", "距离(公里)"),
		locale.Pick(lang, "Note", "备注"),
	)
	for _, record := range records {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %s |\n",
			record.Date,
			locale.ActivityLabel(lang, record.ActivityType),
			record.Duration,
			record.Distance,
			escapeTableCell(record.Note),
		)
	}

	return b.String()
}

func renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func escapeTableCell(value string) string {
	replacer := strings.NewReplacer("|", "\\|", "\r\n", " ", "\n", " ")
	return replacer.Replace(value)
}
