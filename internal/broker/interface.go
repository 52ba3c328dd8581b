package broker

import (
	"errors"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
)

// Внешние коллабораторы торгового ядра.
// Ядро зависит только от этих интерфейсов; конкретные реализации
// (бэктест, live-подключение) подставляются при сборке запуска.

// ErrDataUnavailable - исторические данные не удалось получить.
// Затронутый запуск/день пропускается, процесс продолжает работу.
var ErrDataUnavailable = errors.New("historical data unavailable")

// Feed - поставщик рыночных данных.
//
// LoadBars возвращает упорядоченные по времени бары инструмента.
// HasPending/NextBars - pull-интерфейс диспетчеризации: оркестратор
// забирает по одной пачке баров (все бары одного timestamp) за цикл.
type Feed interface {
	LoadBars(instrument string, start, end time.Time, freq models.Frequency) ([]models.Bar, error)
	HasPending() bool
	NextBars() []models.Bar
	Stop()
}

// Broker - торговая площадка (Execution Venue).
//
// Создание ордера и его отправка разделены: CreateMarketOrder /
// CreateLimitOrder конструируют заявку, PlaceOrder ставит её в очередь.
// События исполнения приходят асинхронно через HasPending/NextEvent.
// Все ордера дневные: CancelPending снимает неисполненные заявки на
// закрытии сессии, чтобы они не пережили границу дня.
type Broker interface {
	GetShares(instrument string) int
	GetAvgCost(instrument string) float64
	GetEquity() float64

	CreateMarketOrder(action, instrument string, quantity int) models.Order
	CreateLimitOrder(action, instrument string, limitPrice float64, quantity int) models.Order
	PlaceOrder(order models.Order) error

	HasPending() bool
	NextEvent() (models.OrderEvent, bool)
	CancelPending()
	Stop()
}

// Calendar - оракул календарных событий (отчётность и т.п.).
// Пустой результат означает отсутствие блэкаутов.
type Calendar interface {
	BlackoutEvents(instrument string, start, end time.Time) ([]time.Time, error)
}

// NopCalendar - календарь без событий (блэкаут отключён)
type NopCalendar struct{}

// BlackoutEvents всегда возвращает пустой список
func (NopCalendar) BlackoutEvents(string, time.Time, time.Time) ([]time.Time, error) {
	return nil, nil
}
