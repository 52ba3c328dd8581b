package broker

import (
	"fmt"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// backtest.go - симуляция торговой площадки для бэктестов
//
// Модель исполнения:
//   - рыночный ордер исполняется по цене открытия следующего бара
//   - лимит на покупку исполняется, если Low бара <= лимита,
//     по лучшей из цен (открытие или лимит)
//   - лимит на продажу - зеркально по High
//
// Ордер, не исполнившийся за весь день, снимается на закрытии дня.

// Commission оценивает комиссию за исполнение qty акций
type Commission interface {
	Estimate(qty int, price float64) float64
}

// BacktestBroker - симулятор Execution Venue.
// Не потокобезопасен: живёт в цикле оркестратора.
type BacktestBroker struct {
	log        *utils.Logger
	cash       float64
	commission Commission // nil = без комиссии

	shares    map[string]int
	avgCost   map[string]float64
	lastPrice map[string]float64

	nextOrderID int
	pending     []models.Order
	events      []models.OrderEvent
	stopped     bool
}

// NewBacktestBroker создаёт симулятор с начальным капиталом.
// commission может быть nil.
func NewBacktestBroker(startingCash float64, commission Commission, log *utils.Logger) *BacktestBroker {
	return &BacktestBroker{
		log:        log.WithComponent("backtest-broker"),
		cash:       startingCash,
		commission: commission,
		shares:     make(map[string]int),
		avgCost:    make(map[string]float64),
		lastPrice:  make(map[string]float64),
	}
}

// GetShares возвращает количество акций инструмента (со знаком)
func (b *BacktestBroker) GetShares(instrument string) int {
	return b.shares[instrument]
}

// GetAvgCost возвращает среднюю цену открытой позиции
func (b *BacktestBroker) GetAvgCost(instrument string) float64 {
	return b.avgCost[instrument]
}

// GetEquity возвращает капитал: кэш плюс стоимость открытых позиций
// по последним известным ценам
func (b *BacktestBroker) GetEquity() float64 {
	equity := b.cash
	for instrument, qty := range b.shares {
		equity += float64(qty) * b.lastPrice[instrument]
	}
	return equity
}

// CreateMarketOrder конструирует рыночный ордер
func (b *BacktestBroker) CreateMarketOrder(action, instrument string, quantity int) models.Order {
	b.nextOrderID++
	return models.Order{
		ID:         b.nextOrderID,
		Instrument: instrument,
		Action:     action,
		Quantity:   quantity,
	}
}

// CreateLimitOrder конструирует лимитный ордер
func (b *BacktestBroker) CreateLimitOrder(action, instrument string, limitPrice float64, quantity int) models.Order {
	b.nextOrderID++
	return models.Order{
		ID:         b.nextOrderID,
		Instrument: instrument,
		Action:     action,
		Quantity:   quantity,
		LimitPrice: limitPrice,
	}
}

// PlaceOrder ставит ордер в очередь на исполнение
func (b *BacktestBroker) PlaceOrder(order models.Order) error {
	if b.stopped {
		return fmt.Errorf("broker stopped, order %d rejected", order.ID)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("order %d has non-positive quantity %d", order.ID, order.Quantity)
	}

	b.pending = append(b.pending, order)
	b.events = append(b.events, models.OrderEvent{
		Order:  order,
		Status: models.OrderStatusAccepted,
	})
	return nil
}

// HasPending сообщает о наличии недоставленных событий
func (b *BacktestBroker) HasPending() bool {
	return len(b.events) > 0
}

// NextEvent забирает следующее событие исполнения
func (b *BacktestBroker) NextEvent() (models.OrderEvent, bool) {
	if len(b.events) == 0 {
		return models.OrderEvent{}, false
	}
	event := b.events[0]
	b.events = b.events[1:]
	return event, true
}

// Stop завершает работу симулятора
func (b *BacktestBroker) Stop() {
	b.stopped = true
}

// ============================================================
// Исполнение против баров
// ============================================================

// OnBars применяет пачку баров: обновляет последние цены и пытается
// исполнить ожидающие ордера. Вызывается фидом до доставки баров
// стратегиям, поэтому исполнение происходит "на следующем баре".
func (b *BacktestBroker) OnBars(bars []models.Bar) {
	for _, bar := range bars {
		b.lastPrice[bar.Instrument] = bar.Close
	}

	if len(b.pending) == 0 {
		return
	}

	remaining := b.pending[:0]
	for _, order := range b.pending {
		bar, ok := findBar(bars, order.Instrument)
		if !ok {
			remaining = append(remaining, order)
			continue
		}

		fillPrice, filled := fillPrice(order, bar)
		if !filled {
			remaining = append(remaining, order)
			continue
		}

		b.applyFill(order, fillPrice, bar.Timestamp)
	}
	b.pending = remaining
}

// CancelPending снимает все неисполненные ордера (конец дня)
func (b *BacktestBroker) CancelPending() {
	for _, order := range b.pending {
		b.events = append(b.events, models.OrderEvent{
			Order:  order,
			Status: models.OrderStatusCanceled,
		})
		b.log.Debug("Order canceled at session end", utils.OrderID(order.ID))
	}
	b.pending = nil
}

func findBar(bars []models.Bar, instrument string) (models.Bar, bool) {
	for _, bar := range bars {
		if bar.Instrument == instrument {
			return bar, true
		}
	}
	return models.Bar{}, false
}

// fillPrice определяет цену исполнения ордера против бара
func fillPrice(order models.Order, bar models.Bar) (float64, bool) {
	if order.IsMarket() {
		return bar.Open, true
	}

	if order.Action == models.ActionBuy {
		if bar.Low <= order.LimitPrice {
			if bar.Open < order.LimitPrice {
				return bar.Open, true
			}
			return order.LimitPrice, true
		}
		return 0, false
	}

	// SELL
	if bar.High >= order.LimitPrice {
		if bar.Open > order.LimitPrice {
			return bar.Open, true
		}
		return order.LimitPrice, true
	}
	return 0, false
}

// applyFill проводит исполнение по счёту и ставит событие в очередь
func (b *BacktestBroker) applyFill(order models.Order, price float64, ts time.Time) {
	signed := order.SignedQuantity()

	var fee float64
	if b.commission != nil {
		fee = b.commission.Estimate(order.Quantity, price)
	}
	b.cash -= float64(signed)*price + fee

	prev := b.shares[order.Instrument]
	next := prev + signed
	b.updateAvgCost(order.Instrument, prev, next, price)
	if next == 0 {
		delete(b.shares, order.Instrument)
	} else {
		b.shares[order.Instrument] = next
	}

	b.events = append(b.events, models.OrderEvent{
		Order:     order,
		Status:    models.OrderStatusFilled,
		FillPrice: price,
		FillQty:   order.Quantity,
		Timestamp: ts,
	})

	b.log.Debug("Order filled",
		utils.OrderID(order.ID), utils.Instrument(order.Instrument),
		utils.Side(order.Action), utils.Qty(signed), utils.Price(price))
}

// updateAvgCost пересчитывает среднюю цену позиции
func (b *BacktestBroker) updateAvgCost(instrument string, prev, next int, price float64) {
	switch {
	case next == 0:
		delete(b.avgCost, instrument)
	case prev == 0 || (prev > 0) != (next > 0):
		// Новая позиция или переворот через ноль
		b.avgCost[instrument] = price
	case utils.AbsInt(next) > utils.AbsInt(prev):
		// Увеличение позиции: средневзвешенная цена
		prevAbs := float64(utils.AbsInt(prev))
		addAbs := float64(utils.AbsInt(next - prev))
		b.avgCost[instrument] = (b.avgCost[instrument]*prevAbs + price*addAbs) / (prevAbs + addAbs)
	}
	// Уменьшение позиции среднюю цену не меняет
}
