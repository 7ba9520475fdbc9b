package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/observability"
	"github.com/fitquest/internal/store"
)

const yearMonthLayout = "2006-01"

var (
	// ErrRecordNotFound 删除不存在的记录时返回
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidMonth 月份参数不是 YYYY-MM
	ErrInvalidMonth = errors.New("invalid month")
	// ErrInvalidRecord 记录缺少运动类型
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordInput 描述新增记录的原始输入，时长与距离允许带单位的字符串
type RecordInput struct {
	Date         string
	ActivityType string
	Duration     any
	Distance     any
	Note         string
}

// AddResult 是新增记录后的结果，包含当月奖励计算
type AddResult struct {
	Record        fitness.ActivityRecord `json:"record"`
	Monthly       fitness.MonthlyReward  `json:"monthly"`
	RewardGranted bool                   `json:"rewardGranted"`
}

// StatsReport 汇总统计、类型分布与年度趋势
type StatsReport struct {
	fitness.Statistics
	Distribution []fitness.TypeCount `json:"distribution"`
	Year         int                 `json:"year"`
	Trend        []int               `json:"trend"`
}

// RewardsView 是奖励余额与流水
type RewardsView struct {
	Balance fitness.RewardBalance        `json:"balance"`
	History []fitness.RewardHistoryEntry `json:"history"`
}

// Tracker 持有内存中的状态快照，所有修改串行执行并写回存储
type Tracker struct {
	store  store.Store
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time

	mu    sync.Mutex
	state fitness.State
}

// NewTracker 构造 Tracker，调用 Init 之前状态为空
func NewTracker(st store.Store, logger *zap.Logger, loc *time.Location) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{
		store:  st,
		logger: logger,
		loc:    loc,
		now:    time.Now,
		state:  fitness.DefaultState(),
	}
}

// SetClock 替换时间来源，主要面向测试场景。
func (t *Tracker) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Init 从存储加载状态；加载失败时记录日志并使用空状态
func (t *Tracker) Init(ctx context.Context) {
	state, err := t.store.Load(ctx)
	if err != nil {
		observability.RecordStoreError("load")
		t.logger.Warn("load state failed, starting with empty state", zap.Error(err))
		state = fitness.DefaultState()
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	observability.SetRecordCount(len(state.Records))
	t.logger.Info("state loaded", zap.Int("records", len(state.Records)))
}

// Ping 检查存储是否可用
func (t *Tracker) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}

// Now 返回业务时区下的当前时间
func (t *Tracker) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nowLocked()
}

func (t *Tracker) nowLocked() time.Time {
	return t.now().In(t.loc)
}

// Snapshot 返回状态的深拷贝
func (t *Tracker) Snapshot() fitness.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Records 返回过滤后的记录，按日期倒序
func (t *Tracker) Records(filter fitness.RecordFilter) []fitness.ActivityRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := fitness.FilterRecords(t.state.Records, filter, t.nowLocked())
	fitness.SortByDateDesc(out)
	return out
}

// AddRecord 按日期新增或替换记录，随后处理该月的月度奖励
func (t *Tracker) AddRecord(ctx context.Context, input RecordInput) (AddResult, error) {
	record, err := fitness.NewRecord(input.Date, input.ActivityType, input.Duration, input.Distance, input.Note)
	if err != nil {
		return AddResult{}, err
	}
	if record.ActivityType == "" {
		return AddResult{}, fmt.Errorf("%w: activity type is required", ErrInvalidRecord)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	next.Records = fitness.UpsertRecord(next.Records, record)
	monthly, granted := fitness.ProcessMonthlyReward(&next, record.Date[:len(yearMonthLayout)], t.nowLocked())

	t.state = next
	t.persistLocked(ctx, "add_record")

	observability.SetRecordCount(len(next.Records))
	if granted {
		observability.RecordRewardEarned()
		t.logger.Info("monthly reward granted", zap.String("month", monthly.YearMonth), zap.Int("reward_count", monthly.RewardCount))
	}

	return AddResult{Record: record, Monthly: monthly, RewardGranted: granted}, nil
}

// DeleteRecord 按日期删除记录
func (t *Tracker) DeleteRecord(ctx context.Context, date string) error {
	day, err := fitness.NormalizeDate(date)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining, ok := fitness.RemoveRecord(t.state.Records, day)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, day)
	}

	next := t.state.Clone()
	next.Records = remaining
	t.state = next
	t.persistLocked(ctx, "delete_record")

	observability.SetRecordCount(len(remaining))
	return nil
}

// Stats 对过滤后的记录计算统计，趋势始终取当前年份
func (t *Tracker) Stats(filter fitness.RecordFilter) StatsReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowLocked()
	filtered := fitness.FilterRecords(t.state.Records, filter, now)

	return StatsReport{
		Statistics:   fitness.Aggregate(filtered),
		Distribution: fitness.TypeDistribution(filtered),
		Year:         now.Year(),
		Trend:        fitness.DurationTrend(t.state.Records, now.Year()),
	}
}

// Overview 返回本周与本月概览
func (t *Tracker) Overview() fitness.Overview {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fitness.BuildOverview(t.state.Records, t.nowLocked())
}

// Monthly 计算指定月份的奖励，month 为空时取当前月份
func (t *Tracker) Monthly(month string) (fitness.MonthlyReward, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ym, err := t.resolveMonthLocked(month)
	if err != nil {
		return fitness.MonthlyReward{}, err
	}
	return fitness.CalculateMonthlyReward(t.state.Records, ym), nil
}

// Rewards 返回奖励余额与流水
func (t *Tracker) Rewards() RewardsView {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.state.Clone()
	return RewardsView{Balance: snapshot.Rewards, History: snapshot.RewardHistory}
}

// Exchange 执行奖励兑换，目前只支持 3 小换 1 中
func (t *Tracker) Exchange(ctx context.Context, from, to fitness.Tier) (fitness.RewardHistoryEntry, fitness.RewardBalance, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.Clone()
	entry, err := fitness.ExchangeRewards(&next, from, to, t.nowLocked())
	if err != nil {
		return fitness.RewardHistoryEntry{}, t.state.Rewards, err
	}

	t.state = next
	t.persistLocked(ctx, "exchange")
	observability.RecordExchange()

	return entry, next.Rewards, nil
}

// RedemptionStatus 结合记录数与存储中的水位线计算兑换状态
func (t *Tracker) RedemptionStatus(ctx context.Context) (fitness.RedemptionStatus, error) {
	t.mu.Lock()
	total := len(t.state.Records)
	t.mu.Unlock()

	watermark, err := t.store.LoadWatermark(ctx)
	if err != nil {
		observability.RecordStoreError("load_watermark")
		return fitness.RedemptionStatus{}, fmt.Errorf("load watermark: %w", err)
	}
	return fitness.StatusFor(total, watermark), nil
}

// Redeem 校验档位后以比较并交换的方式推进水位线
func (t *Tracker) Redeem(ctx context.Context, tier fitness.Tier) (fitness.Redemption, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	watermark, err := t.store.LoadWatermark(ctx)
	if err != nil {
		observability.RecordStoreError("load_watermark")
		observability.RecordRedemption(string(tier), "error")
		return fitness.Redemption{}, fmt.Errorf("load watermark: %w", err)
	}

	result, err := fitness.Redeem(len(t.state.Records), watermark, tier)
	if err != nil {
		observability.RecordRedemption(string(tier), "rejected")
		return fitness.Redemption{}, err
	}

	if err := t.store.SwapWatermark(ctx, watermark, result.LastRedeemedIndex); err != nil {
		if errors.Is(err, store.ErrWatermarkConflict) {
			observability.RecordRedemption(string(tier), "conflict")
			return fitness.Redemption{}, err
		}
		observability.RecordStoreError("swap_watermark")
		observability.RecordRedemption(string(tier), "error")
		return fitness.Redemption{}, fmt.Errorf("swap watermark: %w", err)
	}

	observability.RecordRedemption(string(tier), "ok")
	t.logger.Info("reward redeemed",
		zap.String("tier", string(result.Tier)),
		zap.Int("consumed", result.Consumed),
		zap.Int("last_redeemed_index", result.LastRedeemedIndex),
	)
	return result, nil
}

// Achievements 基于全部记录评估成就
func (t *Tracker) Achievements() []fitness.AchievementStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fitness.EvaluateAchievements(t.state.Records)
}

// Export 返回缩进的 JSON 文档与下载文件名
func (t *Tracker) Export() ([]byte, string, error) {
	t.mu.Lock()
	snapshot := t.state.Clone()
	now := t.nowLocked()
	t.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode export: %w", err)
	}
	return data, fmt.Sprintf("fitness-data-%s.json", now.Format(fitness.DateLayout)), nil
}

// Import 校验并整体替换状态；保存失败时保留原状态并返回错误
func (t *Tracker) Import(ctx context.Context, data []byte) (fitness.State, error) {
	state, err := fitness.DecodeState(data)
	if err != nil {
		return fitness.State{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Save(ctx, state); err != nil {
		observability.RecordStoreError("import")
		return fitness.State{}, fmt.Errorf("save imported state: %w", err)
	}

	t.state = state
	observability.SetRecordCount(len(state.Records))
	t.logger.Info("state imported", zap.Int("records", len(state.Records)))
	return state.Clone(), nil
}

// SettleMonth 对指定月份执行月度奖励处理，已发放过的月份不会重复发放
func (t *Tracker) SettleMonth(ctx context.Context, month string) (fitness.MonthlyReward, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ym, err := t.resolveMonthLocked(month)
	if err != nil {
		return fitness.MonthlyReward{}, false, err
	}

	next := t.state.Clone()
	monthly, granted := fitness.ProcessMonthlyReward(&next, ym, t.nowLocked())
	if !granted {
		return monthly, false, nil
	}

	if err := t.store.Save(ctx, next); err != nil {
		observability.RecordStoreError("settle")
		return monthly, false, fmt.Errorf("save settlement: %w", err)
	}
	t.state = next
	observability.RecordRewardEarned()
	return monthly, true, nil
}

// PreviousMonth 返回当前时间的上一个自然月
func (t *Tracker) PreviousMonth() string {
	now := t.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -1, 0).Format(yearMonthLayout)
}

func (t *Tracker) resolveMonthLocked(month string) (string, error) {
	trimmed := strings.TrimSpace(month)
	if trimmed == "" {
		return t.nowLocked().Format(yearMonthLayout), nil
	}
	parsed, err := time.Parse(yearMonthLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return parsed.Format(yearMonthLayout), nil
}

// persistLocked 尽力保存，失败只记录日志和指标
func (t *Tracker) persistLocked(ctx context.Context, operation string) {
	if err := t.store.Save(ctx, t.state); err != nil {
		observability.RecordStoreError(operation)
		t.logger.Error("persist state failed", zap.String("operation", operation), zap.Error(err))
	}
}
