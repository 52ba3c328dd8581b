package models

import "time"

// Действия ордера
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Статусы ордера в событиях исполнения
const (
	OrderStatusAccepted = "ACCEPTED"
	OrderStatusFilled   = "FILLED"
	OrderStatusCanceled = "CANCELED"
)

// Order представляет заявку, созданную через Execution Venue.
//
// LimitPrice == 0 означает рыночный ордер.
type Order struct {
	ID         int     `json:"id"`
	Instrument string  `json:"instrument"`
	Action     string  `json:"action"` // BUY или SELL
	Quantity   int     `json:"quantity"`
	LimitPrice float64 `json:"limit_price"`
}

// IsMarket сообщает, является ли ордер рыночным
func (o Order) IsMarket() bool {
	return o.LimitPrice == 0
}

// SignedQuantity возвращает количество со знаком стороны:
// положительное для BUY, отрицательное для SELL
func (o Order) SignedQuantity() int {
	if o.Action == ActionSell {
		return -o.Quantity
	}
	return o.Quantity
}

// OrderEvent - асинхронное событие исполнения от Execution Venue
type OrderEvent struct {
	Order     Order     `json:"order"`
	Status    string    `json:"status"`
	FillPrice float64   `json:"fill_price"`
	FillQty   int       `json:"fill_qty"`
	Timestamp time.Time `json:"timestamp"`
}
