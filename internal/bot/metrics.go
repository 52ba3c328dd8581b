package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики торгового ядра
// ============================================================
//
// Использование:
// - Grafana дашборды для наблюдения за live-торговлей
// - Анализ поведения стратегий после бэктестов

// ============ Метрики сигналов ============

// ZScoreObserved - наблюдаемые z-score по парам
var ZScoreObserved = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "zscore_observed",
		Help:      "Observed z-score values per pair",
		Buckets:   []float64{-3, -2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2, 3},
	},
	[]string{"pair"},
)

// EntrySignals - сигналы входа по направлению
var EntrySignals = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "entry_signals_total",
		Help:      "Number of entry threshold crossings",
	},
	[]string{"pair", "direction"}, // direction: LONG, SHORT
)

// ============ Счётчики событий ============

// EventsDispatched - события, прошедшие через цикл диспетчеризации
var EventsDispatched = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "events_dispatched_total",
		Help:      "Total number of dispatched events",
	},
	[]string{"type"}, // bar, order_update
)

// TradesTotal - закрытые сделки пар
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "trades_total",
		Help:      "Total number of completed pair trades",
	},
	[]string{"pair"},
)

// StrategyFailures - стратегии, отключённые защитной обёрткой
var StrategyFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "strategy_failures_total",
		Help:      "Number of strategies permanently disabled by the dispatch guard",
	},
	[]string{"pair"},
)

// ============ Метрики состояния ============

// ActivePairs - количество пар по состояниям
var ActivePairs = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "active_pairs",
		Help:      "Number of pair strategies by state",
	},
	[]string{"state"},
)

// AccountEquity - капитал счёта
var AccountEquity = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "huba",
		Subsystem: "account",
		Name:      "equity",
		Help:      "Account equity reported by the execution venue",
	},
)

// DailyROIObserved - дневная доходность пар
var DailyROIObserved = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "huba",
		Subsystem: "trading",
		Name:      "daily_roi_percent",
		Help:      "Daily ROI per pair in percent",
		Buckets:   []float64{-5, -2, -1, -0.5, 0, 0.5, 1, 2, 5},
	},
	[]string{"pair"},
)

// ============ Вспомогательные функции ============

// RecordZScore записывает наблюдаемый z-score
func RecordZScore(pair string, z float64) {
	ZScoreObserved.WithLabelValues(pair).Observe(z)
}

// RecordEntrySignal записывает сигнал входа
func RecordEntrySignal(pair, direction string) {
	EntrySignals.WithLabelValues(pair, direction).Inc()
}

// RecordDispatch записывает обработанное событие
func RecordDispatch(eventType string) {
	EventsDispatched.WithLabelValues(eventType).Inc()
}

// RecordTrade записывает закрытую сделку и её дневной вклад
func RecordTrade(pair string, roiPct float64) {
	TradesTotal.WithLabelValues(pair).Inc()
	DailyROIObserved.WithLabelValues(pair).Observe(roiPct)
}

// RecordStrategyFailure записывает отключение стратегии
func RecordStrategyFailure(pair string) {
	StrategyFailures.WithLabelValues(pair).Inc()
}

// UpdateStateGauge обновляет счётчик пар в состоянии
func UpdateStateGauge(state string, delta float64) {
	ActivePairs.WithLabelValues(state).Add(delta)
}

// UpdateEquity обновляет метрику капитала
func UpdateEquity(equity float64) {
	AccountEquity.Set(equity)
}
