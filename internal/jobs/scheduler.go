// Package jobs 管理后台定时任务。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/observability"
)

// Settler 是月结任务依赖的服务能力
type Settler interface {
	PreviousMonth() string
	SettleMonth(ctx context.Context, month string) (fitness.MonthlyReward, bool, error)
}

// Scheduler 按 cron 表达式执行上月奖励结算
type Scheduler struct {
	cron    *cron.Cron
	settler Settler
	logger  *zap.Logger
	spec    string
}

// NewScheduler 创建使用业务时区的调度器
func NewScheduler(settler Settler, spec string, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		settler: settler,
		logger:  logger,
		spec:    spec,
	}
}

// Start 注册任务并启动调度
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunSettlement(ctx) }); err != nil {
		return fmt.Errorf("register settlement job %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("settlement_cron", s.spec))
	return nil
}

// RunSettlement 结算上一个自然月
func (s *Scheduler) RunSettlement(ctx context.Context) {
	month := s.settler.PreviousMonth()
	monthly, granted, err := s.settler.SettleMonth(ctx, month)
	if err != nil {
		s.logger.Error("[CRON] monthly settlement failed", zap.String("month", month), zap.Error(err))
		return
	}

	observability.RecordSettlement(time.Now())
	s.logger.Info("[CRON] monthly settlement finished",
		zap.String("month", month),
		zap.Int("valid_count", monthly.ValidCount),
		zap.Int("reward_count", monthly.RewardCount),
		zap.Bool("granted", granted),
	)
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
