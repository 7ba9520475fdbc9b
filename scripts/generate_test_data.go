package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fitquest/internal/config"
	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/logging"
	"github.com/fitquest/internal/store"
)

type seedOptions struct {
	Months  int
	Density float64
	Seed    uint64
	Now     time.Time
}

type activityProfile struct {
	activityType string
	minMinutes   int
	maxMinutes   int
	kmPerHour    float64
	notes        []string
}

var profiles = []activityProfile{
	{activityType: fitness.ActivityCycling, minMinutes: 30, maxMinutes: 120, kmPerHour: 18, notes: []string{"环湖骑行", "通勤", "爬坡训练"}},
	{activityType: fitness.ActivityWalking, minMinutes: 20, maxMinutes: 90, kmPerHour: 5, notes: []string{"饭后散步", "公园快走"}},
	{activityType: fitness.ActivityRunning, minMinutes: 20, maxMinutes: 70, kmPerHour: 10, notes: []string{"晨跑", "间歇跑", "轻松跑"}},
}

// 测试数据生成器
func main() {
	months := flag.Int("months", 3, "生成最近几个月的数据")
	density := flag.Float64("density", 0.7, "每天有记录的概率")
	seed := flag.Uint64("seed", 42, "随机种子")
	dryRun := flag.Bool("dry-run", false, "只输出 JSON，不写入存储")
	flag.Parse()

	state := generateState(seedOptions{Months: *months, Density: *density, Seed: *seed, Now: time.Now()})

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			log.Fatalf("输出失败: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	if err := st.Save(ctx, state); err != nil {
		logger.Fatal("写入测试数据失败", zap.Error(err))
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("存储: %s\n", cfg.StoreBackend)
	fmt.Printf("记录: %d 条\n", len(state.Records))
	fmt.Printf("小奖励: %d 个\n", state.Rewards.Small)
}

// generateState 按月份生成随机记录，并依次执行月度奖励处理
func generateState(opts seedOptions) fitness.State {
	state := fitness.DefaultState()
	if opts.Months <= 0 {
		return state
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	today := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, time.UTC)
	firstMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(opts.Months - 1), 0)

	for day := firstMonth; !day.After(today); day = day.AddDate(0, 0, 1) {
		if rng.Float64() >= opts.Density {
			continue
		}
		profile := profiles[rng.IntN(len(profiles))]
		minutes := profile.minMinutes + rng.IntN(profile.maxMinutes-profile.minMinutes+1)
		distance := float64(minutes) / 60 * profile.kmPerHour

		record, err := fitness.NewRecord(
			day.Format(fitness.DateLayout),
			profile.activityType,
			fmt.Sprintf("%dmin", minutes),
			fmt.Sprintf("%.2f(公里)", distance),
			profile.notes[rng.IntN(len(profile.notes))],
		)
		if err != nil {
			continue
		}
		state.Records = fitness.UpsertRecord(state.Records, record)
	}

	for month := firstMonth; !month.After(today); month = month.AddDate(0, 1, 0) {
		fitness.ProcessMonthlyReward(&state, month.Format("2006-01"), today)
	}

	fitness.SortByDateDesc(state.Records)
	return state
}
