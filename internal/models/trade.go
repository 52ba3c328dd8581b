package models

import "time"

// Trade - закрытая сделка по одной ноге пары, для персистентности
type Trade struct {
	ID         int64     `json:"id" db:"id"`
	Pair       string    `json:"pair" db:"pair"`
	Instrument string    `json:"instrument" db:"instrument"`
	Direction  string    `json:"direction" db:"direction"` // LONG или SHORT
	Quantity   int       `json:"quantity" db:"quantity"`   // со знаком
	EntryPrice float64   `json:"entry_price" db:"entry_price"`
	ExitPrice  float64   `json:"exit_price" db:"exit_price"`
	Profit     float64   `json:"profit" db:"profit"`
	ClosedAt   time.Time `json:"closed_at" db:"closed_at"`
}

// DailyROI - дневная доходность пары
type DailyROI struct {
	ID       int64     `json:"id" db:"id"`
	Pair     string    `json:"pair" db:"pair"`
	Date     time.Time `json:"date" db:"date"`
	ROIPct   float64   `json:"roi_pct" db:"roi_pct"`
	Trades   int       `json:"trades" db:"trades"`
	Realized bool      `json:"realized" db:"realized"` // false = включает mark-to-market
}

// EquityPoint - точка кривой капитала счёта
type EquityPoint struct {
	ID        int64     `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Equity    float64   `json:"equity" db:"equity"`
	Leverage  float64   `json:"leverage" db:"leverage"`
}
