package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BetsPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fplbot_bets_placed_total",
		Help: "bets accepted, by bet type",
	}, []string{"bet_type"})

	BetsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fplbot_bets_rejected_total",
		Help: "bets refused at placement, by reason",
	}, []string{"reason"})

	BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fplbot_bets_settled_total",
		Help: "bets settled, by bet type and result",
	}, []string{"bet_type", "result"})

	CoinsWagered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fplbot_coins_wagered_total",
		Help: "coins debited for bets",
	})

	CoinsPaidOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fplbot_coins_paid_out_total",
		Help: "coins credited for winning bets",
	})

	OpenBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fplbot_open_bets",
		Help: "unsettled bets after the last sweep",
	})

	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fplbot_sweep_duration_seconds",
		Help:    "time spent settling due bets",
		Buckets: prometheus.DefBuckets,
	})

	FplRefreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fplbot_fpl_refresh_total",
		Help: "fpl data refreshes, by status",
	}, []string{"status"})

	FplLastRefresh = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fplbot_fpl_last_refresh_timestamp_seconds",
		Help: "unix time of the last successful fpl refresh",
	})

	CommandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fplbot_commands_total",
		Help: "discord commands handled, by name",
	}, []string{"command"})
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BetsPlaced, BetsRejected, BetsSettled,
			CoinsWagered, CoinsPaidOut, OpenBets, SweepDuration,
			FplRefreshes, FplLastRefresh, CommandsHandled,
		)
	})
}
