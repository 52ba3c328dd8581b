package websocket

import (
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeZScoreUpdate - свежий z-score пары
	// Отправляется после каждого пересчёта z-score
	MessageTypeZScoreUpdate MessageType = "zscoreUpdate"

	// MessageTypeEquityUpdate - обновление капитала счёта
	// Отправляется на границах дня и каждый час
	MessageTypeEquityUpdate MessageType = "equityUpdate"

	// MessageTypeTradeClosed - закрытая сделка пары
	MessageTypeTradeClosed MessageType = "tradeClosed"

	// MessageTypeDailyResult - дневной итог пары
	MessageTypeDailyResult MessageType = "dailyResult"
)

// BaseMessage - базовая структура всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// ZScoreUpdateMessage - сообщение с новым z-score пары
type ZScoreUpdateMessage struct {
	BaseMessage
	Pair       string  `json:"pair"`
	State      string  `json:"state"`
	ZScore     float64 `json:"zscore"`
	Spread     float64 `json:"spread"`
	HedgeRatio float64 `json:"hedge_ratio"`
}

// EquityUpdateMessage - сообщение об обновлении капитала
type EquityUpdateMessage struct {
	BaseMessage
	Equity   float64 `json:"equity"`
	Leverage float64 `json:"leverage"`
}

// TradeClosedMessage - сообщение о закрытой сделке
type TradeClosedMessage struct {
	BaseMessage
	Data models.Trade `json:"data"`
}

// DailyResultMessage - сообщение с дневным итогом пары
type DailyResultMessage struct {
	BaseMessage
	Data models.DailyROI `json:"data"`
}

// ============ Фабричные функции ============

// NewZScoreUpdateMessage создаёт сообщение обновления z-score
func NewZScoreUpdateMessage(pair, state string, zscore, spread, hedgeRatio float64) *ZScoreUpdateMessage {
	return &ZScoreUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeZScoreUpdate,
			Timestamp: time.Now(),
		},
		Pair:       pair,
		State:      state,
		ZScore:     zscore,
		Spread:     spread,
		HedgeRatio: hedgeRatio,
	}
}

// NewEquityUpdateMessage создаёт сообщение обновления капитала
func NewEquityUpdateMessage(equity, leverage float64) *EquityUpdateMessage {
	return &EquityUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeEquityUpdate,
			Timestamp: time.Now(),
		},
		Equity:   equity,
		Leverage: leverage,
	}
}

// NewTradeClosedMessage создаёт сообщение о закрытой сделке
func NewTradeClosedMessage(trade models.Trade) *TradeClosedMessage {
	return &TradeClosedMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeTradeClosed,
			Timestamp: time.Now(),
		},
		Data: trade,
	}
}

// NewDailyResultMessage создаёт сообщение с дневным итогом
func NewDailyResultMessage(roi models.DailyROI) *DailyResultMessage {
	return &DailyResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeDailyResult,
			Timestamp: time.Now(),
		},
		Data: roi,
	}
}
