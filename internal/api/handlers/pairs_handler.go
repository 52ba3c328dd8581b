package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tibkiss/huba-v1/internal/models"
)

// PairStatusProvider отдаёт снимок состояния стратегий текущего дня.
// Реализуется оркестратором.
type PairStatusProvider interface {
	PairStatuses() []models.PairStatus
}

// PairsHandler обрабатывает HTTP запросы о состоянии торгуемых пар.
//
// Endpoints:
// - GET /api/v1/pairs - снимок всех пар (state, z-score, hedge ratio)
// - GET /api/v1/pairs/{pair} - снимок одной пары; ключ вида "SPY/IVV"
type PairsHandler struct {
	provider PairStatusProvider
}

// NewPairsHandler создает новый PairsHandler
func NewPairsHandler(provider PairStatusProvider) *PairsHandler {
	return &PairsHandler{provider: provider}
}

// GetPairs возвращает снимок состояния всех пар.
//
// GET /api/v1/pairs
//
// Response 200 OK:
//
//	[
//	  {"pair": "SPY/IVV", "state": "InTrade", "direction": "LONG",
//	   "zscore": -1.82, "has_zscore": true, "hedge_ratio": 0.98, "alive": true}
//	]
func (h *PairsHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusInternalServerError, "agent not initialized", nil)
		return
	}

	statuses := h.provider.PairStatuses()
	if statuses == nil {
		statuses = []models.PairStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

// GetPair возвращает снимок состояния одной пары.
//
// GET /api/v1/pairs/{leg0}/{leg1}
//
// Response 404 Not Found: пара не торгуется в текущем запуске
func (h *PairsHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusInternalServerError, "agent not initialized", nil)
		return
	}

	vars := mux.Vars(r)
	key := vars["leg0"] + "/" + vars["leg1"]

	for _, status := range h.provider.PairStatuses() {
		if status.Pair == key {
			writeJSON(w, http.StatusOK, status)
			return
		}
	}

	writeError(w, http.StatusNotFound, "pair not found", nil)
}
