package fitness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// 奖励历史动作
const (
	ActionEarned    = "earned"
	ActionExchanged = "exchanged"

	smallPerMedium = 3
)

var (
	// ErrInvalidState 导入文档缺少字段或内容非法
	ErrInvalidState = errors.New("invalid state document")
	// ErrInsufficientRewards 兑换时小奖励数量不足
	ErrInsufficientRewards = errors.New("insufficient rewards")
	// ErrUnsupportedExchange 只支持 3 个小奖励换 1 个中奖励
	ErrUnsupportedExchange = errors.New("unsupported exchange")
)

// RewardBalance 是各档奖励的持有数量
type RewardBalance struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

// RewardHistoryEntry 是只追加的奖励流水
type RewardHistoryEntry struct {
	Date    string `json:"date"`
	Action  string `json:"action"`
	Type    Tier   `json:"type,omitempty"`
	From    []Tier `json:"from,omitempty"`
	To      Tier   `json:"to,omitempty"`
	Details string `json:"details,omitempty"`
	Message string `json:"message"`
}

// State 是持久化与导入导出的完整文档
type State struct {
	Records       []ActivityRecord     `json:"records"`
	Rewards       RewardBalance        `json:"rewards"`
	RewardHistory []RewardHistoryEntry `json:"rewardHistory"`
}

// DefaultState 返回空状态，加载失败时用它兜底
func DefaultState() State {
	return State{
		Records:       []ActivityRecord{},
		RewardHistory: []RewardHistoryEntry{},
	}
}

// Clone 深拷贝，避免调用方修改内部快照
func (s State) Clone() State {
	out := State{
		Records:       make([]ActivityRecord, len(s.Records)),
		Rewards:       s.Rewards,
		RewardHistory: make([]RewardHistoryEntry, len(s.RewardHistory)),
	}
	copy(out.Records, s.Records)
	for i, entry := range s.RewardHistory {
		entry.From = append([]Tier(nil), entry.From...)
		out.RewardHistory[i] = entry
	}
	return out
}

// DecodeState 解析导入文档；records 和 rewards 必须存在且非 null
func DecodeState(data []byte) (State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	for _, key := range []string{"records", "rewards"} {
		value, ok := raw[key]
		if !ok || isNull(value) {
			return State{}, fmt.Errorf("%w: missing %s", ErrInvalidState, key)
		}
	}

	state := DefaultState()
	if err := json.Unmarshal(raw["records"], &state.Records); err != nil {
		return State{}, fmt.Errorf("%w: records: %v", ErrInvalidState, err)
	}
	if err := json.Unmarshal(raw["rewards"], &state.Rewards); err != nil {
		return State{}, fmt.Errorf("%w: rewards: %v", ErrInvalidState, err)
	}
	if history, ok := raw["rewardHistory"]; ok && !isNull(history) {
		if err := json.Unmarshal(history, &state.RewardHistory); err != nil {
			return State{}, fmt.Errorf("%w: rewardHistory: %v", ErrInvalidState, err)
		}
	}

	if err := state.Validate(); err != nil {
		return State{}, err
	}

	SortByDateDesc(state.Records)
	return state, nil
}

// Validate 检查奖励数量非负、记录类型非空且日期唯一
func (s State) Validate() error {
	if s.Rewards.Small < 0 || s.Rewards.Medium < 0 || s.Rewards.Large < 0 {
		return fmt.Errorf("%w: negative reward balance", ErrInvalidState)
	}

	seen := make(map[string]struct{}, len(s.Records))
	for _, record := range s.Records {
		if _, err := ParseDay(record.Date); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if strings.TrimSpace(record.ActivityType) == "" {
			return fmt.Errorf("%w: record %s has no activity type", ErrInvalidState, record.Date)
		}
		if _, ok := seen[record.Date]; ok {
			return fmt.Errorf("%w: duplicate record date %s", ErrInvalidState, record.Date)
		}
		seen[record.Date] = struct{}{}
	}
	return nil
}

// MonthRewarded 判断某月是否已经发放过小奖励
func MonthRewarded(history []RewardHistoryEntry, yearMonth string) bool {
	for _, entry := range history {
		if entry.Message != "" && strings.Contains(entry.Message, yearMonth) {
			return true
		}
	}
	return false
}

// ProcessMonthlyReward 在满足条件且当月未发放时追加一个小奖励，返回是否发放
func ProcessMonthlyReward(state *State, yearMonth string, today time.Time) (MonthlyReward, bool) {
	result := CalculateMonthlyReward(state.Records, yearMonth)
	if !result.EarnedSmallReward || MonthRewarded(state.RewardHistory, yearMonth) {
		return result, false
	}

	state.Rewards.Small++
	state.RewardHistory = append(state.RewardHistory, RewardHistoryEntry{
		Date:    today.Format(DateLayout),
		Action:  ActionEarned,
		Type:    TierSmall,
		Message: fmt.Sprintf("因%s月奖励次数(%d)未达20，获得1个小奖励", yearMonth, result.RewardCount),
	})
	return result, true
}

// ExchangeRewards 用 3 个小奖励兑换 1 个中奖励
func ExchangeRewards(state *State, from, to Tier, today time.Time) (RewardHistoryEntry, error) {
	if from != TierSmall || to != TierMedium {
		return RewardHistoryEntry{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedExchange, from, to)
	}
	if state.Rewards.Small < smallPerMedium {
		return RewardHistoryEntry{}, fmt.Errorf("%w: have %d small, need %d", ErrInsufficientRewards, state.Rewards.Small, smallPerMedium)
	}

	state.Rewards.Small -= smallPerMedium
	state.Rewards.Medium++

	entry := RewardHistoryEntry{
		Date:    today.Format(DateLayout),
		Action:  ActionExchanged,
		From:    []Tier{TierSmall, TierSmall, TierSmall},
		To:      TierMedium,
		Message: "用3个小奖励兑换了1个中级奖励",
	}
	state.RewardHistory = append(state.RewardHistory, entry)
	return entry, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
