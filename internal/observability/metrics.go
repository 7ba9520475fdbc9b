package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitquest"

var (
	recordsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "records",
		Name:      "total",
		Help:      "Number of activity records currently held.",
	})
	rewardsEarned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rewards",
		Name:      "monthly_earned_total",
		Help:      "Small rewards granted by monthly processing.",
	})
	rewardsExchanged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rewards",
		Name:      "exchanged_total",
		Help:      "Successful small to medium reward exchanges.",
	})
	redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "redemption",
		Name:      "total",
		Help:      "Redemption attempts by tier and outcome.",
	}, []string{"tier", "outcome"})
	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Persistence failures by operation.",
	}, []string{"operation"})
	settlementGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "settlement",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the most recent monthly settlement run.",
	})
)

func init() {
	prometheus.MustRegister(recordsGauge, rewardsEarned, rewardsExchanged, redemptions, storeErrors, settlementGauge)
}

// SetRecordCount 更新当前记录数
func SetRecordCount(n int) {
	recordsGauge.Set(float64(n))
}

// RecordRewardEarned 月度处理发放了一个小奖励
func RecordRewardEarned() {
	rewardsEarned.Inc()
}

// RecordExchange 完成一次奖励兑换
func RecordExchange() {
	rewardsExchanged.Inc()
}

// RecordRedemption 记录兑换尝试，outcome 取 ok/rejected/conflict/error
func RecordRedemption(tier, outcome string) {
	if tier == "" {
		tier = "none"
	}
	redemptions.WithLabelValues(tier, outcome).Inc()
}

// RecordStoreError 记录持久化失败
func RecordStoreError(operation string) {
	storeErrors.WithLabelValues(operation).Inc()
}

// RecordSettlement 更新最近一次月结时间
func RecordSettlement(ts time.Time) {
	if ts.IsZero() {
		return
	}
	settlementGauge.Set(float64(ts.Unix()))
}
