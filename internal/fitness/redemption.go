package fitness

import (
	"errors"
	"fmt"
)

// Tier 表示奖励档位
type Tier string

const (
	TierNone   Tier = ""
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

const (
	// InitialWatermark 表示尚未兑换过任何记录
	InitialWatermark = -1

	smallGiftThreshold = 15
	largeGiftThreshold = 20
)

// ErrTierUnavailable 在请求的档位与当前可兑换档位不一致时返回
var ErrTierUnavailable = errors.New("reward tier not available")

var giftItems = map[Tier]string{
	TierSmall: "【运动补给水杯】",
	TierLarge: "【品牌蛋白粉一罐】",
}

var giftNames = map[Tier]string{
	TierSmall: "小礼盒",
	TierLarge: "大礼盒",
}

// ParseTier 解析档位字符串，未知值返回 TierNone
func ParseTier(value string) Tier {
	switch Tier(value) {
	case TierSmall, TierMedium, TierLarge:
		return Tier(value)
	default:
		return TierNone
	}
}

// RedemptionStatus 描述兑换水位线的当前状态
type RedemptionStatus struct {
	TotalRecords      int  `json:"totalRecords"`
	LastRedeemedIndex int  `json:"lastRedeemedIndex"`
	UnredeemedCount   int  `json:"unredeemedCount"`
	AvailableTier     Tier `json:"availableTier"`
}

// Redemption 是一次成功兑换的结果
type Redemption struct {
	Tier              Tier   `json:"tier"`
	GiftName          string `json:"giftName"`
	GiftItem          string `json:"giftItem"`
	Consumed          int    `json:"consumed"`
	LastRedeemedIndex int    `json:"lastRedeemedIndex"`
	Message           string `json:"message"`
}

// UnredeemedCount 返回水位线之后尚未兑换的记录数
func UnredeemedCount(totalRecords, lastRedeemedIndex int) int {
	if totalRecords <= 0 {
		return 0
	}
	// 记录被删除到水位线以下时不会出现负数
	return max(0, totalRecords-(lastRedeemedIndex+1))
}

// AvailableTier 根据未兑换数量决定当前可兑换的礼盒
func AvailableTier(unredeemed int) Tier {
	switch {
	case unredeemed >= largeGiftThreshold:
		return TierLarge
	case unredeemed >= smallGiftThreshold:
		return TierSmall
	default:
		return TierNone
	}
}

// StatusFor 汇总水位线状态
func StatusFor(totalRecords, lastRedeemedIndex int) RedemptionStatus {
	unredeemed := UnredeemedCount(totalRecords, lastRedeemedIndex)
	return RedemptionStatus{
		TotalRecords:      totalRecords,
		LastRedeemedIndex: lastRedeemedIndex,
		UnredeemedCount:   unredeemed,
		AvailableTier:     AvailableTier(unredeemed),
	}
}

// Redeem 校验档位并计算新的水位线
// 兑换一次性消耗全部未兑换记录，不存在部分消耗
func Redeem(totalRecords, lastRedeemedIndex int, tier Tier) (Redemption, error) {
	status := StatusFor(totalRecords, lastRedeemedIndex)
	if tier == TierNone || tier != status.AvailableTier {
		return Redemption{}, fmt.Errorf("%w: requested %q, available %q", ErrTierUnavailable, tier, status.AvailableTier)
	}

	name := giftNames[tier]
	item := giftItems[tier]

	return Redemption{
		Tier:              tier,
		GiftName:          name,
		GiftItem:          item,
		Consumed:          status.UnredeemedCount,
		LastRedeemedIndex: totalRecords - 1,
		Message:           fmt.Sprintf("恭喜！成功兑换一个%s，获得随机奖励：%s！", name, item),
	}, nil
}
