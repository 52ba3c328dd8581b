package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/tibkiss/huba-v1/internal/broker"
	"github.com/tibkiss/huba-v1/internal/config"
	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// agent.go - однопоточный оркестратор торговых стратегий
//
// Единственная goroutine забирает события у фида и площадки
// (pull-модель) и раздаёт их стратегиям. Все стратегии работают
// в потоке оркестратора: внутри ядра нет ни блокировок, ни гонок.

// ResultSink - приёмник результатов для персистентности.
// nil-приёмник допустим: результаты только логируются.
type ResultSink interface {
	SaveDailyROI(roi models.DailyROI) error
	SaveEquityPoint(point models.EquityPoint) error
	SaveTrade(trade models.Trade) error
}

// Notifier - широковещательный канал real-time обновлений для
// live-дашборда. Реализуется websocket.Hub; nil допустим (бэктест).
type Notifier interface {
	BroadcastZScore(pair, state string, zscore, spread, hedgeRatio float64)
	BroadcastEquity(equity, leverage float64)
	BroadcastTradeClosed(trade models.Trade)
	BroadcastDailyResult(roi models.DailyROI)
}

// AgentConfig - параметры запуска оркестратора
type AgentConfig struct {
	Live      bool          // live-режим: пустой цикл ждёт, конец сессии завершает процесс
	LiveSleep time.Duration // пауза пустого цикла в live-режиме
}

// Agent координирует жизненный цикл стратегий одного запуска.
//
// Несколько агентов с непересекающимися наборами пар могут работать
// в одном процессе: агент не использует глобальное состояние.
type Agent struct {
	cfg       AgentConfig
	runConfig *config.RunConfig
	feed      broker.Feed
	venue     broker.Broker
	calendar  broker.Calendar
	risk      *RiskManager
	sink      ResultSink
	notifier  Notifier
	log       *utils.Logger

	// mu защищает strategies от конкурентного чтения из HTTP API;
	// ядро по-прежнему работает в одной goroutine
	mu           sync.RWMutex
	strategies   []*StatArbStrategy
	byInstrument map[string]*StatArbStrategy

	currentDay  time.Time
	currentHour int
	dayOpen     bool
	running     bool
	stopped     bool

	lastPrice map[string]float64
}

// NewAgent собирает оркестратор. sink может быть nil.
func NewAgent(cfg AgentConfig, runConfig *config.RunConfig,
	feed broker.Feed, venue broker.Broker, calendar broker.Calendar,
	risk *RiskManager, sink ResultSink, log *utils.Logger) *Agent {

	return &Agent{
		cfg:          cfg,
		runConfig:    runConfig,
		feed:         feed,
		venue:        venue,
		calendar:     calendar,
		risk:         risk,
		sink:         sink,
		log:          log.WithComponent("agent"),
		byInstrument: make(map[string]*StatArbStrategy),
		lastPrice:    make(map[string]float64),
	}
}

// SetNotifier подключает широковещательный канал дашборда.
// Вызывается до Run.
func (a *Agent) SetNotifier(notifier Notifier) {
	a.notifier = notifier
}

// Strategies возвращает стратегии текущего дня (для API и отладки)
func (a *Agent) Strategies() []*StatArbStrategy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.strategies
}

// PairStatuses возвращает снимок состояния всех стратегий текущего дня
func (a *Agent) PairStatuses() []models.PairStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	statuses := make([]models.PairStatus, 0, len(a.strategies))
	for _, s := range a.strategies {
		z, haveZ := s.LastZScore()
		statuses = append(statuses, models.PairStatus{
			Pair:       s.Pair().Key(),
			State:      s.State(),
			Direction:  s.Direction().String(),
			ZScore:     z,
			HasZScore:  haveZ,
			HedgeRatio: s.HedgeRatio(),
			Alive:      s.Alive(),
		})
	}
	return statuses
}

// ============================================================
// Главный цикл
// ============================================================

// Run крутит цикл диспетчеризации до исчерпания данных (бэктест)
// или до конца торговой сессии / вызова Stop (live)
func (a *Agent) Run() error {
	a.running = true
	a.log.Info("Agent started",
		utils.Bool("live", a.cfg.Live),
		utils.Int("pairs", len(a.runConfig.Pairs)))

	for a.running {
		worked := false

		// События исполнения обрабатываются раньше новых баров
		for a.venue.HasPending() {
			event, ok := a.venue.NextEvent()
			if !ok {
				break
			}
			a.dispatchOrderEvent(event)
			worked = true
		}

		if a.feed.HasPending() {
			if bars := a.feed.NextBars(); len(bars) > 0 {
				a.handleBars(bars)
				worked = true
			}
		} else if !a.cfg.Live {
			// Бэктест: данные кончились
			break
		}

		if !worked && a.cfg.Live {
			time.Sleep(a.cfg.LiveSleep)
		}
	}

	if a.dayOpen {
		a.endDay()
	}
	a.log.Info("Agent finished")
	return nil
}

// Stop завершает работу агента. Идемпотентен, можно звать из другой
// goroutine только через закрытие источников (feed/venue Stop).
func (a *Agent) Stop() {
	if a.stopped {
		return
	}
	a.stopped = true
	a.running = false

	if a.dayOpen {
		a.endDay()
	}
	a.venue.Stop()
	a.feed.Stop()
	a.log.Info("Agent stopped")
}

// ============================================================
// Диспетчеризация
// ============================================================

// handleBars обрабатывает пачку баров одного timestamp
func (a *Agent) handleBars(bars []models.Bar) {
	ts := bars[0].Timestamp.In(utils.MarketLocation())

	if utils.BeforeRTH(ts) {
		a.log.Warn("Dropping pre-session bars",
			utils.String("ts", ts.Format(time.RFC3339)),
			utils.Int("count", len(bars)))
		return
	}

	if utils.AtOrAfterRTHEnd(ts) {
		if a.dayOpen {
			a.endDay()
		}
		if a.cfg.Live {
			// Конец сессии завершает live-процесс
			a.running = false
		}
		return
	}

	if !a.dayOpen || !utils.SameDate(ts, a.currentDay) {
		a.startDay(ts)
	} else if ts.Hour() != a.currentHour {
		a.currentHour = ts.Hour()
		a.logHourly(ts)
	}

	touched := make(map[*StatArbStrategy]bool)
	for _, bar := range bars {
		a.lastPrice[bar.Instrument] = bar.Close
		strategy, ok := a.byInstrument[bar.Instrument]
		if !ok {
			continue
		}
		RecordDispatch("bar")
		b := bar
		a.guarded(strategy, func() { strategy.OnBar(b) })
		touched[strategy] = true
	}

	if a.notifier != nil {
		for s := range touched {
			if z, ok := s.LastZScore(); ok {
				a.notifier.BroadcastZScore(s.Pair().Key(), s.State(),
					z, s.LastSpread(), s.HedgeRatio())
			}
		}
	}
}

// dispatchOrderEvent доставляет событие исполнения стратегии пары
func (a *Agent) dispatchOrderEvent(event models.OrderEvent) {
	strategy, ok := a.byInstrument[event.Order.Instrument]
	if !ok {
		a.log.Warn("Order event for unknown instrument",
			utils.Instrument(event.Order.Instrument),
			utils.OrderID(event.Order.ID))
		return
	}
	RecordDispatch("order_update")
	a.guarded(strategy, func() { strategy.OnOrderUpdate(event) })
}

// guarded вызывает обработчик стратегии под защитой от паники.
// Паника навсегда отключает пару, остальные продолжают работать.
func (a *Agent) guarded(s *StatArbStrategy, fn func()) {
	if !s.Alive() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Strategy disabled by dispatch guard",
				utils.PairKey(s.Pair().Key()),
				utils.Err(fmt.Errorf("%w: %v", errStrategyPanic, r)))
			s.disable()
		}
	}()
	fn()
}

// ============================================================
// Границы торгового дня
// ============================================================

// startDay открывает новый торговый день: фиксирует капитал,
// обновляет торговый капитал аллокатора и пересоздаёт стратегии
func (a *Agent) startDay(ts time.Time) {
	if a.dayOpen {
		a.endDay()
	}

	equity := a.venue.GetEquity()
	a.log.Info("Trading day started",
		utils.String("date", ts.Format("2006-01-02")),
		utils.Equity(equity))
	UpdateEquity(equity)
	a.risk.SetTradeCapital(equity)
	a.saveEquity(ts, equity)

	a.mu.Lock()
	a.strategies = nil
	a.byInstrument = make(map[string]*StatArbStrategy)
	a.mu.Unlock()

	for _, pair := range a.runConfig.PairList() {
		params := a.runConfig.ParamsFor(pair)
		s := NewStatArbStrategy(pair, params, a.feed, a.venue, a.calendar, a.risk, a.log)

		if err := s.Init(ts); err != nil {
			// День пары пропускается, остальные продолжают
			a.log.Warn("Strategy init failed, pair skipped for the day",
				utils.PairKey(pair.Key()), utils.Err(err))
			s.Stop()
		}

		a.mu.Lock()
		a.strategies = append(a.strategies, s)
		a.byInstrument[pair.Leg0] = s
		a.byInstrument[pair.Leg1] = s
		a.mu.Unlock()
	}

	a.currentDay = utils.MarketDate(ts)
	a.currentHour = ts.Hour()
	a.dayOpen = true
}

// endDay останавливает стратегии и фиксирует дневные итоги
func (a *Agent) endDay() {
	a.log.Info("Trading day ended",
		utils.String("date", a.currentDay.Format("2006-01-02")))

	// Неисполненные дневные ордера снимаются: их завтрашнее исполнение
	// пришло бы уже пересозданной стратегии
	a.venue.CancelPending()

	for _, s := range a.strategies {
		a.guarded(s, s.Stop)

		result := s.DailyResult(a.currentDay)
		trades := s.TakeClosedTrades()

		if a.notifier != nil {
			a.notifier.BroadcastDailyResult(result)
			for _, trade := range trades {
				a.notifier.BroadcastTradeClosed(trade)
			}
		}

		if a.sink != nil {
			if err := a.sink.SaveDailyROI(result); err != nil {
				a.log.Error("Failed to persist daily ROI",
					utils.PairKey(s.Pair().Key()), utils.Err(err))
			}
			for _, trade := range trades {
				if err := a.sink.SaveTrade(trade); err != nil {
					a.log.Error("Failed to persist trade",
						utils.PairKey(trade.Pair), utils.Err(err))
				}
			}
		}
	}

	equity := a.venue.GetEquity()
	UpdateEquity(equity)
	a.log.Info("End of day equity", utils.Equity(equity))
	a.dayOpen = false
}

// logHourly пишет часовой срез капитала и плеча
func (a *Agent) logHourly(ts time.Time) {
	equity := a.venue.GetEquity()
	leverage := a.grossExposure() / equity
	UpdateEquity(equity)

	a.log.Info("Hourly account snapshot",
		utils.Equity(equity), utils.Float64("leverage", leverage))
	if a.notifier != nil {
		a.notifier.BroadcastEquity(equity, leverage)
	}
	a.saveEquityWithLeverage(ts, equity, leverage)
}

// grossExposure - суммарная абсолютная стоимость открытых ног
func (a *Agent) grossExposure() float64 {
	var gross float64
	for instrument, price := range a.lastPrice {
		shares := a.venue.GetShares(instrument)
		if shares != 0 {
			gross += utils.Abs(float64(shares) * price)
		}
	}
	return gross
}

func (a *Agent) saveEquity(ts time.Time, equity float64) {
	a.saveEquityWithLeverage(ts, equity, 0)
}

func (a *Agent) saveEquityWithLeverage(ts time.Time, equity, leverage float64) {
	if a.sink == nil {
		return
	}
	point := models.EquityPoint{Timestamp: ts, Equity: equity, Leverage: leverage}
	if err := a.sink.SaveEquityPoint(point); err != nil {
		a.log.Error("Failed to persist equity point", utils.Err(err))
	}
}
