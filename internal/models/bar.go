package models

import "time"

// Frequency - частота баров
type Frequency string

const (
	FrequencyMinute Frequency = "minute"
	FrequencyDay    Frequency = "day"
)

// Bar представляет один OHLCV бар инструмента
type Bar struct {
	Instrument string    `json:"instrument"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	AdjClose   float64   `json:"adj_close"`
	Volume     int64     `json:"volume"`
	Timestamp  time.Time `json:"timestamp"`
}

// Midpoint возвращает середину бара: (O+H+L+C)/4
func (b Bar) Midpoint() float64 {
	return (b.Open + b.High + b.Low + b.Close) / 4
}

// ReduceBars сворачивает последовательность баров в один:
// open первого, close последнего, максимальный high, минимальный low,
// суммарный объём. Timestamp берётся от последнего бара.
//
// Пустой вход даёт нулевой бар.
func ReduceBars(bars []Bar) Bar {
	if len(bars) == 0 {
		return Bar{}
	}

	reduced := Bar{
		Instrument: bars[0].Instrument,
		Open:       bars[0].Open,
		High:       bars[0].High,
		Low:        bars[0].Low,
		Close:      bars[len(bars)-1].Close,
		AdjClose:   bars[len(bars)-1].AdjClose,
		Timestamp:  bars[len(bars)-1].Timestamp,
	}
	for _, b := range bars {
		if b.High > reduced.High {
			reduced.High = b.High
		}
		if b.Low < reduced.Low {
			reduced.Low = b.Low
		}
		reduced.Volume += b.Volume
	}
	return reduced
}
