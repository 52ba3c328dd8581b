package handlers

import (
	"net/http"
	"time"
)

// AccountInfo - сведения аллокатора о капитале и позициях.
// Реализуется bot.RiskManager.
type AccountInfo interface {
	GetTradeCapital() float64
	PositionCount() int
	Capacity() int
}

// ClientCounter отдаёт количество подключенных WebSocket клиентов.
// Реализуется websocket.Hub.
type ClientCounter interface {
	ClientCount() int
}

// StatusHandler обрабатывает запросы о состоянии бота.
//
// Endpoints:
// - GET /api/v1/status - режим, uptime, капитал, позиции
type StatusHandler struct {
	mode      string
	startedAt time.Time
	account   AccountInfo
	clients   ClientCounter
}

// NewStatusHandler создает новый StatusHandler.
// clients может быть nil (backtest без WebSocket).
func NewStatusHandler(mode string, account AccountInfo, clients ClientCounter) *StatusHandler {
	return &StatusHandler{
		mode:      mode,
		startedAt: time.Now(),
		account:   account,
		clients:   clients,
	}
}

// GetStatus возвращает состояние бота.
//
// GET /api/v1/status
//
// Response 200 OK:
//
//	{"mode": "live", "uptime": "2h15m3s", "trade_capital": 100000,
//	 "open_positions": 3, "position_capacity": 10, "ws_clients": 1}
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"mode":   h.mode,
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.account != nil {
		status["trade_capital"] = h.account.GetTradeCapital()
		status["open_positions"] = h.account.PositionCount()
		status["position_capacity"] = h.account.Capacity()
	}
	if h.clients != nil {
		status["ws_clients"] = h.clients.ClientCount()
	}

	writeJSON(w, http.StatusOK, status)
}
