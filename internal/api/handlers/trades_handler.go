package handlers

import (
	"net/http"
	"strconv"

	"github.com/tibkiss/huba-v1/internal/models"
)

// TradeStore - доступ к сохранённым сделкам.
// Реализуется repository.TradeRepository.
type TradeStore interface {
	GetRecent(limit int) ([]*models.Trade, error)
	TotalProfitByPair(pair string) (float64, error)
	Count() (int, error)
}

// TradesHandler обрабатывает HTTP запросы к истории сделок.
//
// Endpoints:
// - GET /api/v1/trades?limit=N - последние закрытые сделки
// - GET /api/v1/trades/summary?pair=SPY/IVV - суммарный профит пары
type TradesHandler struct {
	trades TradeStore
}

// NewTradesHandler создает новый TradesHandler
func NewTradesHandler(trades TradeStore) *TradesHandler {
	return &TradesHandler{trades: trades}
}

// GetTrades возвращает последние закрытые сделки.
//
// GET /api/v1/trades?limit=50
//
// Query Parameters:
// - limit (optional): количество сделок (по умолчанию 50, максимум 500)
func (h *TradesHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	if h.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = parsed
		if limit > 500 {
			limit = 500
		}
	}

	trades, err := h.trades.GetRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trades", err)
		return
	}
	if trades == nil {
		trades = []*models.Trade{}
	}

	writeJSON(w, http.StatusOK, trades)
}

// GetSummary возвращает суммарный профит и количество сделок.
//
// GET /api/v1/trades/summary?pair=SPY/IVV
//
// Response 200 OK:
//
//	{"pair": "SPY/IVV", "total_profit": 1250.50, "total_trades": 150}
func (h *TradesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if h.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "pair parameter required", nil)
		return
	}

	profit, err := h.trades.TotalProfitByPair(pair)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get profit", err)
		return
	}

	count, err := h.trades.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get trade count", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pair":         pair,
		"total_profit": profit,
		"total_trades": count,
	})
}
