package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fitquest/internal/db"
	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/store"
)

var fixedNow = time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

func setupTrackerStore(t *testing.T) *store.GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:tracker-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	s := store.NewGormStore(gdb)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestTracker(t *testing.T, st store.Store) *Tracker {
	t.Helper()
	tracker := NewTracker(st, zap.NewNop(), time.UTC)
	tracker.SetClock(func() time.Time { return fixedNow })
	tracker.Init(context.Background())
	return tracker
}

func addDays(t *testing.T, tracker *Tracker, month string, days int) {
	t.Helper()
	for day := 1; day <= days; day++ {
		_, err := tracker.AddRecord(context.Background(), RecordInput{
			Date:         fmt.Sprintf("%s-%02d", month, day),
			ActivityType: "running",
			Duration:     "30min",
			Distance:     "5(公里)",
		})
		if err != nil {
			t.Fatalf("add record %s-%02d: %v", month, day, err)
		}
	}
}

// failingStore 用于模拟存储故障
type failingStore struct {
	*store.GormStore
	loadErr error
	saveErr error
}

func (f *failingStore) Load(ctx context.Context) (fitness.State, error) {
	if f.loadErr != nil {
		return fitness.State{}, f.loadErr
	}
	return f.GormStore.Load(ctx)
}

func (f *failingStore) Save(ctx context.Context, state fitness.State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.GormStore.Save(ctx, state)
}

// staleWatermarkStore 总是读到初始水位线，用于模拟并发兑换
type staleWatermarkStore struct {
	*store.GormStore
}

func (s *staleWatermarkStore) LoadWatermark(ctx context.Context) (int, error) {
	return fitness.InitialWatermark, nil
}

func TestTrackerAddRecordGrantsMonthlyRewardOnce(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))

	addDays(t, tracker, "2024-03", 15)
	if got := tracker.Rewards().Balance.Small; got != 0 {
		t.Fatalf("expected no reward after 15 days, got %d", got)
	}

	result, err := tracker.AddRecord(context.Background(), RecordInput{Date: "2024-03-16", ActivityType: "Walk", Duration: 95, Distance: 4.2})
	if err != nil {
		t.Fatalf("add record: %v", err)
	}
	if !result.RewardGranted || result.Monthly.RewardCount != 1 {
		t.Fatalf("expected reward on 16th day, got %+v", result)
	}
	if result.Record.ActivityType != fitness.ActivityWalking {
		t.Fatalf("expected normalized activity type, got %q", result.Record.ActivityType)
	}

	// 同一天再次提交只替换记录
	result, err = tracker.AddRecord(context.Background(), RecordInput{Date: "2024-03-16", ActivityType: "cycling", Duration: 60})
	if err != nil {
		t.Fatalf("replace record: %v", err)
	}
	if result.RewardGranted {
		t.Fatalf("month must not be rewarded twice")
	}

	rewards := tracker.Rewards()
	if rewards.Balance.Small != 1 || len(rewards.History) != 1 {
		t.Fatalf("unexpected rewards %+v", rewards)
	}
	if rewards.History[0].Date != "2024-03-20" {
		t.Fatalf("history should be dated today, got %s", rewards.History[0].Date)
	}

	records := tracker.Records(fitness.RecordFilter{})
	if len(records) != 16 || records[0].Date != "2024-03-16" || records[0].ActivityType != fitness.ActivityCycling {
		t.Fatalf("unexpected records head %+v (len %d)", records[0], len(records))
	}
}

func TestTrackerPersistsAcrossRestart(t *testing.T) {
	st := setupTrackerStore(t)
	tracker := newTestTracker(t, st)
	addDays(t, tracker, "2024-03", 16)

	restarted := newTestTracker(t, st)
	snapshot := restarted.Snapshot()
	if len(snapshot.Records) != 16 || snapshot.Rewards.Small != 1 || len(snapshot.RewardHistory) != 1 {
		t.Fatalf("unexpected reloaded state: %d records, rewards %+v", len(snapshot.Records), snapshot.Rewards)
	}
}

func TestTrackerAddRecordValidation(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))

	if _, err := tracker.AddRecord(context.Background(), RecordInput{Date: "yesterday", ActivityType: "running"}); !errors.Is(err, fitness.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := tracker.AddRecord(context.Background(), RecordInput{Date: "2024-03-01", ActivityType: " "}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestTrackerDeleteRecord(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))
	addDays(t, tracker, "2024-03", 2)

	if err := tracker.DeleteRecord(context.Background(), "2024-03-01T09:00:00"); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if err := tracker.DeleteRecord(context.Background(), "2024-03-01"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := tracker.DeleteRecord(context.Background(), "bad"); !errors.Is(err, fitness.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if got := len(tracker.Records(fitness.RecordFilter{})); got != 1 {
		t.Fatalf("expected 1 record left, got %d", got)
	}
}

func TestTrackerInitFallsBackOnLoadFailure(t *testing.T) {
	st := &failingStore{GormStore: setupTrackerStore(t), loadErr: errors.New("disk on fire")}
	tracker := newTestTracker(t, st)

	snapshot := tracker.Snapshot()
	if len(snapshot.Records) != 0 || snapshot.Rewards != (fitness.RewardBalance{}) {
		t.Fatalf("expected default state, got %+v", snapshot)
	}
}

func TestTrackerSaveFailureKeepsInMemoryState(t *testing.T) {
	st := &failingStore{GormStore: setupTrackerStore(t), saveErr: errors.New("read only")}
	tracker := newTestTracker(t, st)

	if _, err := tracker.AddRecord(context.Background(), RecordInput{Date: "2024-03-01", ActivityType: "running", Duration: 30}); err != nil {
		t.Fatalf("record add should not surface save errors: %v", err)
	}
	if got := len(tracker.Records(fitness.RecordFilter{})); got != 1 {
		t.Fatalf("expected record kept in memory, got %d", got)
	}
}

func TestTrackerExchange(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))

	if _, _, err := tracker.Exchange(context.Background(), fitness.TierSmall, fitness.TierMedium); !errors.Is(err, fitness.ErrInsufficientRewards) {
		t.Fatalf("expected ErrInsufficientRewards, got %v", err)
	}

	if _, err := tracker.Import(context.Background(), []byte(`{"records":[],"rewards":{"small":3,"medium":0,"large":0}}`)); err != nil {
		t.Fatalf("import: %v", err)
	}

	entry, balance, err := tracker.Exchange(context.Background(), fitness.TierSmall, fitness.TierMedium)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if balance != (fitness.RewardBalance{Medium: 1}) || entry.Action != fitness.ActionExchanged {
		t.Fatalf("unexpected exchange result %+v %+v", balance, entry)
	}

	if _, _, err := tracker.Exchange(context.Background(), fitness.TierMedium, fitness.TierLarge); !errors.Is(err, fitness.ErrUnsupportedExchange) {
		t.Fatalf("expected ErrUnsupportedExchange, got %v", err)
	}
}

func TestTrackerRedeem(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))
	addDays(t, tracker, "2024-01", 20)

	status, err := tracker.RedemptionStatus(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.UnredeemedCount != 20 || status.AvailableTier != fitness.TierLarge {
		t.Fatalf("unexpected status %+v", status)
	}

	if _, err := tracker.Redeem(context.Background(), fitness.TierSmall); !errors.Is(err, fitness.ErrTierUnavailable) {
		t.Fatalf("expected ErrTierUnavailable, got %v", err)
	}

	result, err := tracker.Redeem(context.Background(), fitness.TierLarge)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.LastRedeemedIndex != 19 || result.Consumed != 20 {
		t.Fatalf("unexpected redemption %+v", result)
	}

	status, err = tracker.RedemptionStatus(context.Background())
	if err != nil {
		t.Fatalf("status after redeem: %v", err)
	}
	if status.UnredeemedCount != 0 || status.AvailableTier != fitness.TierNone || status.LastRedeemedIndex != 19 {
		t.Fatalf("unexpected status after redeem %+v", status)
	}

	if _, err := tracker.Redeem(context.Background(), fitness.TierLarge); !errors.Is(err, fitness.ErrTierUnavailable) {
		t.Fatalf("expected second redemption to be rejected, got %v", err)
	}

	// 兑换不影响月度奖励余额
	if got := tracker.Rewards().Balance; got.Large != 0 {
		t.Fatalf("redemption must not touch reward balance, got %+v", got)
	}
}

func TestTrackerRedeemDetectsConcurrentSwap(t *testing.T) {
	base := setupTrackerStore(t)
	tracker := newTestTracker(t, &staleWatermarkStore{GormStore: base})
	addDays(t, tracker, "2024-01", 20)

	if _, err := tracker.Redeem(context.Background(), fitness.TierLarge); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := tracker.Redeem(context.Background(), fitness.TierLarge); !errors.Is(err, store.ErrWatermarkConflict) {
		t.Fatalf("expected ErrWatermarkConflict, got %v", err)
	}
}

func TestTrackerImportExport(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))
	addDays(t, tracker, "2024-03", 3)

	if _, err := tracker.Import(context.Background(), []byte(`{"records":[]}`)); !errors.Is(err, fitness.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if got := len(tracker.Snapshot().Records); got != 3 {
		t.Fatalf("failed import must leave state unchanged, got %d records", got)
	}

	data, filename, err := tracker.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filename != "fitness-data-2024-03-20.json" {
		t.Fatalf("unexpected filename %q", filename)
	}

	other := newTestTracker(t, setupTrackerStore(t))
	imported, err := other.Import(context.Background(), data)
	if err != nil {
		t.Fatalf("import exported data: %v", err)
	}
	if len(imported.Records) != 3 || imported.Records[0].Date != "2024-03-03" {
		t.Fatalf("unexpected imported state %+v", imported)
	}
}

func TestTrackerImportSurfacesSaveFailure(t *testing.T) {
	st := &failingStore{GormStore: setupTrackerStore(t), saveErr: errors.New("read only")}
	tracker := newTestTracker(t, st)

	_, err := tracker.Import(context.Background(), []byte(`{"records":[{"date":"2024-03-01","activityType":"running","duration":30}],"rewards":{}}`))
	if err == nil {
		t.Fatalf("expected save error")
	}
	if got := len(tracker.Snapshot().Records); got != 0 {
		t.Fatalf("state should be unchanged after failed import, got %d records", got)
	}
}

func TestTrackerSettleMonth(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))

	records := make([]string, 0, 16)
	for day := 1; day <= 16; day++ {
		records = append(records, fmt.Sprintf(`{"date":"2024-02-%02d","activityType":"running","duration":30}`, day))
	}
	payload := fmt.Sprintf(`{"records":[%s],"rewards":{"small":0,"medium":0,"large":0}}`, strings.Join(records, ","))
	if _, err := tracker.Import(context.Background(), []byte(payload)); err != nil {
		t.Fatalf("import: %v", err)
	}

	if got := tracker.PreviousMonth(); got != "2024-02" {
		t.Fatalf("expected previous month 2024-02, got %s", got)
	}

	monthly, granted, err := tracker.SettleMonth(context.Background(), tracker.PreviousMonth())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !granted || monthly.ValidCount != 1 {
		t.Fatalf("expected settlement to grant reward, got %+v granted=%v", monthly, granted)
	}

	if _, granted, err := tracker.SettleMonth(context.Background(), "2024-02"); err != nil || granted {
		t.Fatalf("second settlement should be a no-op, granted=%v err=%v", granted, err)
	}
	if _, _, err := tracker.SettleMonth(context.Background(), "2024/02"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestTrackerStatsAndOverview(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))
	addDays(t, tracker, "2024-03", 3)
	addDays(t, tracker, "2024-01", 1)

	stats := tracker.Stats(fitness.RecordFilter{TimeRange: fitness.RangeMonth})
	if stats.TotalCount != 3 || stats.TotalMinutes != 90 || stats.TotalDistance != 15 || stats.LongestStreak != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Year != 2024 || len(stats.Trend) != 12 || stats.Trend[0] != 30 || stats.Trend[2] != 90 {
		t.Fatalf("unexpected trend %+v", stats.Trend)
	}

	overview := tracker.Overview()
	if overview.Month.RecordCount != 3 || overview.Week.RecordCount != 0 {
		t.Fatalf("unexpected overview %+v", overview)
	}

	if _, err := tracker.Monthly("March"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	monthly, err := tracker.Monthly("")
	if err != nil || monthly.YearMonth != "2024-03" || monthly.TotalDays != 3 {
		t.Fatalf("unexpected monthly %+v err=%v", monthly, err)
	}
}

func TestTrackerAchievements(t *testing.T) {
	tracker := newTestTracker(t, setupTrackerStore(t))
	addDays(t, tracker, "2024-03", 3)

	unlocked := map[string]bool{}
	for _, status := range tracker.Achievements() {
		unlocked[status.ID] = status.Unlocked
	}
	if !unlocked["streak3"] || !unlocked["run10k"] || !unlocked["firstActivity"] || unlocked["total10"] {
		t.Fatalf("unexpected achievements %+v", unlocked)
	}
}
