package bot

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tibkiss/huba-v1/internal/broker"
	"github.com/tibkiss/huba-v1/internal/config"
	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// statarb.go - стратегия статистического арбитража одной пары
//
// Жизненный цикл: Initial → {Cleanup | WaitForEntry | InTrade},
// Cleanup → WaitForEntry, WaitForEntry → Entering → InTrade →
// Exiting → WaitForEntry, из любого состояния → Stopped.
//
// Стратегия создаётся заново каждый торговый день: состояние фильтра,
// lookback-статистика и направление позиции начинаются с чистого листа.
// Все методы вызываются из однопоточного цикла оркестратора.

// seenOrderWindow - размер окна дедупликации событий исполнения
const seenOrderWindow = 100

// orderWindow - ограниченное множество недавних order id.
// Повторное событие по уже применённому ордеру игнорируется.
type orderWindow struct {
	capacity int
	ids      map[int]struct{}
	fifo     []int
}

func newOrderWindow(capacity int) *orderWindow {
	return &orderWindow{
		capacity: capacity,
		ids:      make(map[int]struct{}, capacity),
	}
}

// Seen отмечает ордер и сообщает, встречался ли он раньше
func (w *orderWindow) Seen(id int) bool {
	if _, ok := w.ids[id]; ok {
		return true
	}
	w.ids[id] = struct{}{}
	w.fifo = append(w.fifo, id)
	if len(w.fifo) > w.capacity {
		oldest := w.fifo[0]
		w.fifo = w.fifo[1:]
		delete(w.ids, oldest)
	}
	return false
}

// StatArbStrategy - машина состояний одной пары
type StatArbStrategy struct {
	log    *utils.Logger
	pair   models.Pair
	params config.StrategyParams

	feed     broker.Feed
	venue    broker.Broker
	calendar broker.Calendar
	risk     *RiskManager

	state     string
	direction models.Direction
	alive     bool
	stopped   bool

	kalman        *KalmanFilter
	hedgeRatio    float64
	hedgeValid    bool
	lookbackMean  float64
	lookbackStd   float64
	lookbackReady bool
	tradeAllowed  bool

	lastZScore float64
	lastSpread float64
	haveZScore bool

	// Состояние по ногам: индекс 0 = Leg0, 1 = Leg1
	barBuffer      [2][]models.Bar
	lastPrice      [2]float64
	heldQty        [2]int
	entryPrice     [2]float64
	entryQty       [2]int
	exitPrice      [2]float64
	yesterdayClose [2]float64
	tick           [2]float64

	enteredToday bool

	// Дневной учёт закрытых сделок
	realizedProfit  float64
	realizedCapital float64
	tradesClosed    int
	closedTrades    []models.Trade

	seenOrders *orderWindow
}

// NewStatArbStrategy создаёт стратегию пары.
// До вызова Init стратегия не готова к приёму событий.
func NewStatArbStrategy(pair models.Pair, params config.StrategyParams,
	feed broker.Feed, venue broker.Broker, calendar broker.Calendar,
	risk *RiskManager, log *utils.Logger) *StatArbStrategy {

	return &StatArbStrategy{
		log:          log.WithPair(pair.Key()),
		pair:         pair,
		params:       params,
		feed:         feed,
		venue:        venue,
		calendar:     calendar,
		risk:         risk,
		state:        models.StateInitial,
		direction:    models.DirInvalid,
		alive:        true,
		tradeAllowed: true,
		kalman:       NewKalmanFilter(params.Delta, params.Ve),
		seenOrders:   newOrderWindow(seenOrderWindow),
	}
}

// Pair возвращает пару стратегии
func (s *StatArbStrategy) Pair() models.Pair { return s.pair }

// State возвращает текущее состояние
func (s *StatArbStrategy) State() string { return s.state }

// Alive сообщает, принимает ли стратегия события
func (s *StatArbStrategy) Alive() bool { return s.alive && !s.stopped }

// LastZScore возвращает последний вычисленный z-score
func (s *StatArbStrategy) LastZScore() (float64, bool) { return s.lastZScore, s.haveZScore }

// LastSpread возвращает последний вычисленный спред
func (s *StatArbStrategy) LastSpread() float64 { return s.lastSpread }

// HedgeRatio возвращает зафиксированный на день коэффициент хеджирования
func (s *StatArbStrategy) HedgeRatio() float64 { return s.hedgeRatio }

// Direction возвращает направление открытой позиции
func (s *StatArbStrategy) Direction() models.Direction { return s.direction }

// transition переводит машину в новое состояние.
// Недопустимый переход - внутренняя ошибка: стратегия останавливается.
func (s *StatArbStrategy) transition(to string) bool {
	if !CanTransition(s.state, to) {
		s.log.Error("Invalid state transition",
			utils.String("from", s.state), utils.String("to", to))
		s.disable()
		return false
	}
	UpdateStateGauge(s.state, -1)
	UpdateStateGauge(to, 1)
	s.state = to
	return true
}

// disable навсегда выключает стратегию (защита оркестратора)
func (s *StatArbStrategy) disable() {
	s.alive = false
	if s.state != models.StateStopped {
		UpdateStateGauge(s.state, -1)
		UpdateStateGauge(models.StateStopped, 1)
		s.state = models.StateStopped
	}
	RecordStrategyFailure(s.pair.Key())
}

// ============================================================
// Инициализация
// ============================================================

// Init приводит стратегию в рабочее состояние на текущий день.
//
// Порядок жёсткий: сначала регистрация в аллокаторе (при отказе -
// Stopped без обращений к площадке), затем сверка позиции с площадкой,
// затем прогрев фильтра на lookback-окне и проверка календаря.
func (s *StatArbStrategy) Init(now time.Time) error {
	UpdateStateGauge(models.StateInitial, 1)

	if _, err := s.risk.AddPosition(s.pair, 0); err != nil {
		s.log.Warn("Allocator refused registration, strategy will not trade", utils.Err(err))
		s.transition(models.StateStopped)
		s.stopped = true
		s.alive = false
		return nil
	}

	// Сверка позиции с площадкой
	q0 := s.venue.GetShares(s.pair.Leg0)
	q1 := s.venue.GetShares(s.pair.Leg1)
	s.heldQty[0], s.heldQty[1] = q0, q1

	switch {
	case q0 == 0 && q1 == 0:
		s.transition(models.StateWaitForEntry)

	case (q0 > 0 && q1 < 0) || (q0 < 0 && q1 > 0):
		// Корректная захеджированная позиция с прошлого дня
		s.entryPrice[0] = s.venue.GetAvgCost(s.pair.Leg0)
		s.entryPrice[1] = s.venue.GetAvgCost(s.pair.Leg1)
		s.entryQty[0], s.entryQty[1] = q0, q1
		if q0 > 0 {
			s.direction = models.DirLong
		} else {
			s.direction = models.DirShort
		}
		s.log.Info("Resuming open position",
			utils.Side(s.direction.String()),
			utils.Qty(q0), utils.Int("qty1", q1))
		s.transition(models.StateInTrade)

	default:
		// Рассинхронизация: закрываем обе ненулевые ноги
		s.log.Warn("Inconsistent leg quantities at init, flattening",
			utils.Qty(q0), utils.Int("qty1", q1))
		s.transition(models.StateCleanup)
		s.flattenLegs()
	}

	if err := s.warmup(now); err != nil {
		return err
	}

	s.checkCalendar(now)
	return nil
}

// flattenLegs отправляет закрывающие рыночные ордера по ненулевым ногам
func (s *StatArbStrategy) flattenLegs() {
	for leg, instrument := range [2]string{s.pair.Leg0, s.pair.Leg1} {
		qty := s.heldQty[leg]
		if qty == 0 {
			continue
		}
		action := models.ActionSell
		if qty < 0 {
			action = models.ActionBuy
		}
		order := s.venue.CreateMarketOrder(action, instrument, utils.AbsInt(qty))
		if err := s.venue.PlaceOrder(order); err != nil {
			s.log.Error("Failed to place cleanup order",
				utils.Instrument(instrument), utils.Err(err))
			s.disable()
			return
		}
		s.log.Info("Cleanup order placed",
			utils.Instrument(instrument), utils.Side(action), utils.Qty(qty))
	}
}

// warmup прогревает фильтр на lookback-окне и считает статистику спреда.
// Окно заканчивается предыдущим рабочим днём: бар текущего дня в прогрев
// не попадает.
func (s *StatArbStrategy) warmup(now time.Time) error {
	start := utils.AddWorkdays(now, -s.params.Lookback)
	end := utils.AddWorkdays(now, -1)

	bars0, err := s.feed.LoadBars(s.pair.Leg0, start, end, models.FrequencyDay)
	if err != nil {
		return fmt.Errorf("load %s lookback bars: %w", s.pair.Leg0, err)
	}
	bars1, err := s.feed.LoadBars(s.pair.Leg1, start, end, models.FrequencyDay)
	if err != nil {
		return fmt.Errorf("load %s lookback bars: %w", s.pair.Leg1, err)
	}

	bars0, bars1 = alignByDate(bars0, bars1)
	n := len(bars0)
	if n < 2 {
		return fmt.Errorf("%w: %s needs %d lookback bars, got %d",
			broker.ErrDataUnavailable, s.pair.Key(), s.params.Lookback, n)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = s.warmupPrice(bars0[i])
		ys[i] = s.warmupPrice(bars1[i])
		s.kalman.Update(xs[i], ys[i])
	}

	s.yesterdayClose[0] = bars0[n-1].Close
	s.yesterdayClose[1] = bars1[n-1].Close

	if s.kalman.Slope() == 0 {
		// Вырожденная оценка: z-score считать нельзя, день пропускается
		s.log.Warn("Hedge ratio undefined after warmup (zero slope), z-score updates disabled")
		s.hedgeValid = false
		return nil
	}

	s.hedgeRatio = 1 / s.kalman.Slope()
	s.hedgeValid = true

	// Спред всего окна считается финальным коэффициентом: промежуточные
	// несошедшиеся оценки в статистику не попадают
	spreads := make([]float64, n)
	for i := 0; i < n; i++ {
		spreads[i] = xs[i] - ys[i]*s.hedgeRatio
	}
	if len(spreads) > s.params.Lookback {
		spreads = spreads[len(spreads)-s.params.Lookback:]
	}
	s.lookbackMean = utils.Mean(spreads)
	s.lookbackStd = utils.Std(spreads)
	s.lookbackReady = s.lookbackStd > 0

	if !s.lookbackReady {
		s.log.Warn("Degenerate lookback spread (zero stddev), z-score updates disabled")
	}

	s.log.Info("Warmup complete",
		utils.HedgeRatio(s.hedgeRatio),
		utils.Float64("lookback_mean", s.lookbackMean),
		utils.Float64("lookback_std", s.lookbackStd),
		utils.Int("bars", n))
	return nil
}

// alignByDate сопоставляет бары ног по дате: дни, отсутствующие в одной
// из ног, выбрасываются из обеих, чтобы пары (x, y) не сдвигались
func alignByDate(bars0, bars1 []models.Bar) ([]models.Bar, []models.Bar) {
	byDate := make(map[time.Time]models.Bar, len(bars1))
	for _, bar := range bars1 {
		byDate[bar.Timestamp.UTC()] = bar
	}

	aligned0 := make([]models.Bar, 0, len(bars0))
	aligned1 := make([]models.Bar, 0, len(bars0))
	for _, bar := range bars0 {
		match, ok := byDate[bar.Timestamp.UTC()]
		if !ok {
			continue
		}
		aligned0 = append(aligned0, bar)
		aligned1 = append(aligned1, match)
	}
	return aligned0, aligned1
}

// warmupPrice возвращает цену для прогрева фильтра
func (s *StatArbStrategy) warmupPrice(bar models.Bar) float64 {
	price := bar.AdjClose
	if price == 0 {
		price = bar.Close
	}
	if s.params.LogPrices {
		return math.Log(price)
	}
	return price
}

// checkCalendar выставляет tradeAllowed по событиям календаря.
// Блэкаут проверяется только на входе в сделку, выход не блокируется.
func (s *StatArbStrategy) checkCalendar(now time.Time) {
	if !s.params.EarningsBlackout {
		return
	}

	from := now.AddDate(0, 0, -s.params.BlackoutDaysAfter)
	to := now.AddDate(0, 0, s.params.BlackoutDaysBefore)

	for _, instrument := range [2]string{s.pair.Leg0, s.pair.Leg1} {
		events, err := s.calendar.BlackoutEvents(instrument, from, to)
		if err != nil {
			s.log.Warn("Calendar lookup failed, trading allowed",
				utils.Instrument(instrument), utils.Err(err))
			continue
		}
		if len(events) > 0 {
			s.log.Info("Earnings blackout active, entries disabled for the day",
				utils.Instrument(instrument))
			s.tradeAllowed = false
			return
		}
	}
}

// ============================================================
// Обработка баров
// ============================================================

// OnBar обрабатывает бар одной из ног пары
func (s *StatArbStrategy) OnBar(bar models.Bar) {
	if bar.Volume == 0 {
		return
	}

	leg := s.pair.LegIndex(bar.Instrument)
	if leg < 0 {
		return
	}

	// Цена для сайзинга и лимитов - скорректированное закрытие,
	// как и в прогреве; Close - запасной вариант
	price := bar.AdjClose
	if price == 0 {
		price = bar.Close
	}
	s.lastPrice[leg] = price

	s.barBuffer[leg] = append(s.barBuffer[leg], bar)
	if len(s.barBuffer[leg]) > s.params.ZScoreUpdateBuffer {
		s.barBuffer[leg] = s.barBuffer[leg][1:]
	}

	if len(s.barBuffer[0]) == 0 || len(s.barBuffer[1]) == 0 {
		return
	}

	s.updateZScore()
}

// updateZScore пересчитывает z-score и принимает торговое решение
func (s *StatArbStrategy) updateZScore() {
	if !s.hedgeValid || !s.lookbackReady {
		return
	}

	mid0 := models.ReduceBars(s.barBuffer[0]).Midpoint()
	mid1 := models.ReduceBars(s.barBuffer[1]).Midpoint()

	var spread float64
	if s.params.LogPrices {
		spread = math.Log(mid0) - math.Log(mid1)*s.hedgeRatio
	} else {
		spread = mid0 - mid1*s.hedgeRatio
	}

	z := (spread - s.lookbackMean) / s.lookbackStd
	s.lastZScore = z
	s.lastSpread = spread
	s.haveZScore = true
	RecordZScore(s.pair.Key(), z)

	s.log.Debug("Z-score updated",
		utils.ZScore(z), utils.Spread(spread), utils.State(s.state))

	switch s.state {
	case models.StateWaitForEntry:
		if z >= s.params.EntryZScore {
			s.enterTrade(true)
		} else if z <= -s.params.EntryZScore {
			s.enterTrade(false)
		}

	case models.StateInTrade:
		if s.direction == models.DirLong && z >= -s.params.ExitZScore {
			s.exitTrade()
		} else if s.direction == models.DirShort && z <= s.params.ExitZScore {
			s.exitTrade()
		}
	}
}

// ============================================================
// Вход и выход
// ============================================================

// enterTrade размещает парные ордера на вход.
// short=true: leg0 продаётся, leg1 покупается.
func (s *StatArbStrategy) enterTrade(short bool) {
	price0, price1 := s.lastPrice[0], s.lastPrice[1]

	qty0, err := s.risk.AddPosition(s.pair, price0)
	if err != nil {
		// Ожидаемый отказ: входа не будет, состояние не меняется
		s.log.Info("Entry abandoned, allocator refused", utils.Err(err))
		return
	}

	if !s.tradeAllowed {
		// Блэкаут: снимаем регистрацию и отказываемся от входа
		if err := s.risk.RemovePosition(s.pair); err != nil {
			s.log.Error("Deregistration failed on blocked entry", utils.Err(err))
			s.disable()
			return
		}
		s.log.Info("Entry suppressed by calendar blackout")
		return
	}

	qty1 := -utils.RoundToInt(float64(qty0) * price0 / price1)
	if short {
		qty0, qty1 = -qty0, -qty1
		s.direction = models.DirShort
	} else {
		s.direction = models.DirLong
	}

	if !s.transition(models.StateEntering) {
		return
	}

	RecordEntrySignal(s.pair.Key(), s.direction.String())
	s.log.Info("Entering trade",
		utils.Side(s.direction.String()),
		utils.ZScore(s.lastZScore),
		utils.Qty(qty0), utils.Int("qty1", qty1),
		utils.Price(price0), utils.Float64("price1", price1))

	s.placeLegOrder(0, qty0, s.params.EntryOrderDistance)
	s.placeLegOrder(1, qty1, s.params.EntryOrderDistance)
}

// exitTrade размещает закрывающие ордера и сразу снимает регистрацию
// в аллокаторе (не дожидаясь подтверждения исполнения)
func (s *StatArbStrategy) exitTrade() {
	if !s.transition(models.StateExiting) {
		return
	}

	s.log.Info("Exiting trade",
		utils.Side(s.direction.String()), utils.ZScore(s.lastZScore))

	for leg := 0; leg < 2; leg++ {
		if s.heldQty[leg] != 0 {
			s.placeLegOrder(leg, -s.heldQty[leg], s.params.ExitOrderDistance)
		}
	}

	if err := s.risk.RemovePosition(s.pair); err != nil {
		// Протокольная ошибка - фатальна для пары
		s.log.Error("Deregistration failed on exit", utils.Err(err))
		s.disable()
	}
}

// placeLegOrder отправляет ордер по ноге.
// distance < 0 означает рыночный ордер; иначе лимит со смещением
// price·(1±distance), округлённым до шага цены ноги.
func (s *StatArbStrategy) placeLegOrder(leg, qty int, distance float64) {
	instrument := s.pair.Leg0
	if leg == 1 {
		instrument = s.pair.Leg1
	}

	action := models.ActionBuy
	if qty < 0 {
		action = models.ActionSell
	}

	var order models.Order
	if distance < 0 {
		order = s.venue.CreateMarketOrder(action, instrument, utils.AbsInt(qty))
	} else {
		price := s.lastPrice[leg]
		var raw float64
		if action == models.ActionBuy {
			raw = price * (1 + distance)
		} else {
			raw = price * (1 - distance)
		}

		tick := s.legTick(leg, price)
		limit := utils.PriceRound(raw, utils.TickPrecision(tick), tick)
		order = s.venue.CreateLimitOrder(action, instrument, limit, utils.AbsInt(qty))
	}

	if err := s.venue.PlaceOrder(order); err != nil {
		s.log.Error("Order placement failed",
			utils.Instrument(instrument), utils.Side(action), utils.Err(err))
		s.disable()
		return
	}

	s.log.Info("Order placed",
		utils.OrderID(order.ID), utils.Instrument(instrument),
		utils.Side(action), utils.Qty(qty), utils.Price(order.LimitPrice))
}

// legTick возвращает шаг цены для ноги
func (s *StatArbStrategy) legTick(leg int, price float64) float64 {
	configured := s.params.TickIncrement0
	if leg == 1 {
		configured = s.params.TickIncrement1
	}
	if configured > 0 {
		return configured
	}
	return utils.DefaultTickIncrement(price)
}

// ============================================================
// Сверка исполнений
// ============================================================

// OnOrderUpdate применяет событие исполнения к состоянию пары.
//
// Допустимо только в Cleanup, Entering и Exiting; в остальных
// состояниях событие - протокольная ошибка, пара останавливается.
func (s *StatArbStrategy) OnOrderUpdate(event models.OrderEvent) {
	if event.Status != models.OrderStatusFilled {
		s.log.Debug("Order status update",
			utils.OrderID(event.Order.ID), utils.String("status", event.Status))
		return
	}

	// Повторное уведомление об уже применённом исполнении - no-op,
	// даже если состояние уже успело смениться
	if s.seenOrders.Seen(event.Order.ID) {
		s.log.Debug("Duplicate fill ignored", utils.OrderID(event.Order.ID))
		return
	}

	if !CanReceiveOrderUpdate(s.state) {
		s.log.Error("Order update in invalid state",
			utils.State(s.state), utils.OrderID(event.Order.ID))
		s.disable()
		return
	}

	leg := s.pair.LegIndex(event.Order.Instrument)
	if leg < 0 {
		s.log.Error("Fill for foreign instrument",
			utils.Instrument(event.Order.Instrument))
		s.disable()
		return
	}

	delta := event.FillQty
	if event.Order.Action == models.ActionSell {
		delta = -delta
	}
	s.heldQty[leg] += delta

	s.log.Info("Fill applied",
		utils.OrderID(event.Order.ID),
		utils.Instrument(event.Order.Instrument),
		utils.Price(event.FillPrice), utils.Qty(delta),
		utils.Int("held", s.heldQty[leg]), utils.State(s.state))

	switch s.state {
	case models.StateCleanup:
		if s.heldQty[0] == 0 && s.heldQty[1] == 0 {
			s.log.Info("Cleanup complete, legs flat")
			s.transition(models.StateWaitForEntry)
		}

	case models.StateEntering:
		s.entryPrice[leg] = event.FillPrice
		s.entryQty[leg] += delta
		s.enteredToday = true
		if s.heldQty[0] != 0 && s.heldQty[1] != 0 {
			s.transition(models.StateInTrade)
		}

	case models.StateExiting:
		s.exitPrice[leg] = event.FillPrice
		if s.heldQty[0] == 0 && s.heldQty[1] == 0 {
			s.finishTrade()
		}
	}
}

// finishTrade считает реализованный результат закрытой сделки
func (s *StatArbStrategy) finishTrade() {
	var profit, capital float64
	for leg := 0; leg < 2; leg++ {
		profit += (s.exitPrice[leg] - s.entryPrice[leg]) * float64(s.entryQty[leg])
		capital += s.entryPrice[leg] * float64(utils.AbsInt(s.entryQty[leg]))
	}

	var roi float64
	if capital > 0 {
		roi = 100 * profit / capital
	}

	s.realizedProfit += profit
	s.realizedCapital += capital
	s.tradesClosed++
	RecordTrade(s.pair.Key(), roi)

	now := time.Now()
	for leg, instrument := range [2]string{s.pair.Leg0, s.pair.Leg1} {
		s.closedTrades = append(s.closedTrades, models.Trade{
			Pair:       s.pair.Key(),
			Instrument: instrument,
			Direction:  s.direction.String(),
			Quantity:   s.entryQty[leg],
			EntryPrice: s.entryPrice[leg],
			ExitPrice:  s.exitPrice[leg],
			Profit:     (s.exitPrice[leg] - s.entryPrice[leg]) * float64(s.entryQty[leg]),
			ClosedAt:   now,
		})
	}

	s.log.Info("Trade closed",
		utils.Side(s.direction.String()),
		utils.Float64("profit", profit), utils.ROI(roi))

	s.entryPrice = [2]float64{}
	s.entryQty = [2]int{}
	s.exitPrice = [2]float64{}
	s.direction = models.DirInvalid

	s.transition(models.StateWaitForEntry)
}

// ============================================================
// Остановка и дневной итог
// ============================================================

// Stop завершает работу стратегии. Идемпотентен.
func (s *StatArbStrategy) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true

	roi := s.dailyROI()
	s.log.Info("Strategy stopped",
		utils.ROI(roi), utils.Int("trades", s.tradesClosed))

	if s.state != models.StateStopped {
		s.transition(models.StateStopped)
	}
	s.alive = false
}

// dailyROI - дневная доходность: реализованные сделки плюс
// mark-to-market открытой позиции. База открытой позиции -
// цена входа, если вход был сегодня, иначе вчерашнее закрытие.
func (s *StatArbStrategy) dailyROI() float64 {
	profit := s.realizedProfit
	capital := s.realizedCapital

	for leg := 0; leg < 2; leg++ {
		qty := s.heldQty[leg]
		if qty == 0 {
			continue
		}
		basis := s.entryPrice[leg]
		if !s.enteredToday {
			basis = s.yesterdayClose[leg]
		}
		mark := s.lastPrice[leg]
		if mark == 0 {
			mark = basis
		}
		profit += (mark - basis) * float64(qty)
		capital += basis * float64(utils.AbsInt(qty))
	}

	if capital <= 0 {
		return 0
	}
	return 100 * profit / capital
}

// TakeClosedTrades отдаёт накопленные закрытые сделки и очищает буфер
func (s *StatArbStrategy) TakeClosedTrades() []models.Trade {
	trades := s.closedTrades
	s.closedTrades = nil
	return trades
}

// DailyResult возвращает дневной итог для персистентности
func (s *StatArbStrategy) DailyResult(date time.Time) models.DailyROI {
	return models.DailyROI{
		Pair:     s.pair.Key(),
		Date:     date,
		ROIPct:   s.dailyROI(),
		Trades:   s.tradesClosed,
		Realized: s.heldQty[0] == 0 && s.heldQty[1] == 0,
	}
}

// errStrategyPanic используется защитной обёрткой оркестратора
var errStrategyPanic = errors.New("strategy panicked")
