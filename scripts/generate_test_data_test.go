package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fitquest/internal/fitness"
	"github.com/fitquest/internal/store"
)

var seedNow = time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

func TestGenerateStateIsDeterministic(t *testing.T) {
	opts := seedOptions{Months: 3, Density: 0.7, Seed: 7, Now: seedNow}

	a := generateState(opts)
	b := generateState(opts)

	if len(a.Records) == 0 {
		t.Fatalf("expected generated records")
	}
	if len(a.Records) != len(b.Records) {
		t.Fatalf("expected same record count, got %d and %d", len(a.Records), len(b.Records))
	}
	for i := range a.Records {
		if a.Records[i] != b.Records[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, a.Records[i], b.Records[i])
		}
	}
}

func TestGenerateStateProducesValidState(t *testing.T) {
	state := generateState(seedOptions{Months: 4, Density: 1, Seed: 1, Now: seedNow})

	if err := state.Validate(); err != nil {
		t.Fatalf("generated state should be valid: %v", err)
	}

	// 2023-12-01 到 2024-03-20 每天一条
	if len(state.Records) != 31+31+29+20 {
		t.Fatalf("unexpected record count %d", len(state.Records))
	}
	if state.Records[0].Date != "2024-03-20" || state.Records[len(state.Records)-1].Date != "2023-12-01" {
		t.Fatalf("records should be sorted newest first")
	}
	for _, record := range state.Records {
		if !strings.HasPrefix(record.Date, "202") || record.Duration <= 0 || record.Distance <= 0 {
			t.Fatalf("unexpected record %+v", record)
		}
	}

	// 每月打卡超过 15 天且奖励次数低于 20 的月份各得一个小奖励
	for _, ym := range []string{"2024-02", "2024-03"} {
		if !fitness.MonthRewarded(state.RewardHistory, ym) {
			t.Fatalf("expected %s to be rewarded", ym)
		}
	}
	if state.Rewards.Small != len(state.RewardHistory) {
		t.Fatalf("balance %d should match history %d", state.Rewards.Small, len(state.RewardHistory))
	}
}

func TestGenerateStateSavesToFileStore(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir() + "/data.json")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	state := generateState(seedOptions{Months: 1, Density: 0.5, Seed: 3, Now: seedNow})
	if err := st.Save(context.Background(), state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Records) != len(state.Records) {
		t.Fatalf("expected %d records, got %d", len(state.Records), len(loaded.Records))
	}
}

func TestGenerateStateZeroMonths(t *testing.T) {
	state := generateState(seedOptions{Months: 0, Seed: 1, Now: seedNow})
	if len(state.Records) != 0 || state.Rewards.Small != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}
