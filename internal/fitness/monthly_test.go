package fitness

import (
	"fmt"
	"testing"
)

func monthRecords(yearMonth string, count int, activityType string, duration int) []ActivityRecord {
	out := make([]ActivityRecord, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, ActivityRecord{
			Date:         fmt.Sprintf("%s-%02d", yearMonth, i%28+1),
			ActivityType: activityType,
			Duration:     duration,
		})
	}
	return out
}

func TestRewardCountFor(t *testing.T) {
	cases := []struct {
		validCount int
		want       int
	}{
		{validCount: 0, want: 0},
		{validCount: 1, want: 1},
		{validCount: 19, want: 19},
		{validCount: 20, want: 19},
		{validCount: 21, want: 22},
		{validCount: 22, want: 22},
		{validCount: 23, want: 25},
		{validCount: 25, want: 28},
	}

	for _, tc := range cases {
		if got := RewardCountFor(tc.validCount); got != tc.want {
			t.Fatalf("RewardCountFor(%d) = %d, want %d", tc.validCount, got, tc.want)
		}
	}
}

func TestCalculateMonthlyReward(t *testing.T) {
	tests := []struct {
		name       string
		records    []ActivityRecord
		wantTotal  int
		wantValid  int
		wantReward int
		wantEarned bool
	}{
		{name: "empty", wantTotal: 0},
		{name: "at baseline", records: monthRecords("2024-03", 15, ActivityRunning, 30), wantTotal: 15},
		{name: "one above baseline", records: monthRecords("2024-03", 16, ActivityRunning, 30), wantTotal: 16, wantValid: 1, wantReward: 1, wantEarned: true},
		{name: "last linear count", records: monthRecords("2024-03", 34, ActivityRunning, 30), wantTotal: 34, wantValid: 19, wantReward: 19, wantEarned: true},
		{name: "bonus pivot still earns", records: monthRecords("2024-03", 35, ActivityRunning, 30), wantTotal: 35, wantValid: 20, wantReward: 19, wantEarned: true},
		{name: "bonus range", records: monthRecords("2024-03", 40, ActivityRunning, 30), wantTotal: 40, wantValid: 25, wantReward: 28},
		{name: "other months ignored", records: append(monthRecords("2024-02", 20, ActivityRunning, 30), monthRecords("2024-03", 2, ActivityRunning, 30)...), wantTotal: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMonthlyReward(tt.records, "2024-03")
			if got.YearMonth != "2024-03" {
				t.Fatalf("unexpected year month %q", got.YearMonth)
			}
			if got.TotalDays != tt.wantTotal || got.ValidCount != tt.wantValid || got.RewardCount != tt.wantReward || got.EarnedSmallReward != tt.wantEarned {
				t.Fatalf("unexpected result %+v", got)
			}
		})
	}
}

func TestCalculateMonthlyRewardQualifiedDays(t *testing.T) {
	records := []ActivityRecord{
		{Date: "2024-03-01", ActivityType: ActivityCycling, Duration: 60},
		{Date: "2024-03-02", ActivityType: ActivityCycling, Duration: 59},
		{Date: "2024-03-03", ActivityType: ActivityWalking, Duration: 90},
		{Date: "2024-03-04", ActivityType: ActivityWalking, Duration: 89},
		{Date: "2024-03-05", ActivityType: ActivityRunning, Duration: 120},
	}

	got := CalculateMonthlyReward(records, "2024-03")
	if got.QualifiedDays != 2 {
		t.Fatalf("expected 2 qualified days, got %d", got.QualifiedDays)
	}
	if got.RewardCount != 0 || got.EarnedSmallReward {
		t.Fatalf("qualified days must not affect rewards: %+v", got)
	}
}
