// Package metrics exposes Prometheus counters for the lock lifecycle.
// Every helper is a no-op until Init has been called.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	TriggersTotal     *prometheus.CounterVec
	InterruptsTotal   prometheus.Counter
	LocksTotal        *prometheus.CounterVec
	LockFailuresTotal *prometheus.CounterVec
	UnlocksTotal      *prometheus.CounterVec
	StaleTimersTotal  *prometheus.CounterVec

	ChannelsGauge *prometheus.GaugeVec
)

// Init registers the metrics with the default registry (idempotent).
func Init() {
	once.Do(func() {
		TriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "lock_triggers_total", Help: "Accepted lock triggers by category"}, []string{"category"})
		InterruptsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "lock_interrupts_total", Help: "Countdowns interrupted by a catch"})
		LocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "lock_activations_total", Help: "Channel locks applied, by source"}, []string{"source"})
		LockFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "lock_failures_total", Help: "Permission changes that failed, by operation"}, []string{"op"})
		UnlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "lock_unlocks_total", Help: "Channel unlocks, by source"}, []string{"source"})
		StaleTimersTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "lock_stale_timers_total", Help: "Timers that fired after being superseded"}, []string{"timer"})
		ChannelsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{Name: "lock_channels", Help: "Channels currently in each lock phase"}, []string{"phase"})
	})
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func Trigger(category string) {
	if TriggersTotal != nil {
		TriggersTotal.WithLabelValues(category).Inc()
	}
}

func Interrupt() {
	if InterruptsTotal != nil {
		InterruptsTotal.Inc()
	}
}

func Locked(source string) {
	if LocksTotal != nil {
		LocksTotal.WithLabelValues(source).Inc()
	}
}

func LockFailed(op string) {
	if LockFailuresTotal != nil {
		LockFailuresTotal.WithLabelValues(op).Inc()
	}
}

func Unlocked(source string) {
	if UnlocksTotal != nil {
		UnlocksTotal.WithLabelValues(source).Inc()
	}
}

func StaleTimer(timer string) {
	if StaleTimersTotal != nil {
		StaleTimersTotal.WithLabelValues(timer).Inc()
	}
}

// SetChannels records how many channels are counting down and locked.
func SetChannels(countdown, locked int) {
	if ChannelsGauge != nil {
		ChannelsGauge.WithLabelValues("countdown").Set(float64(countdown))
		ChannelsGauge.WithLabelValues("locked").Set(float64(locked))
	}
}
