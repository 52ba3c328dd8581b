package handlers

import (
	"net/http"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

const dateLayout = "2006-01-02"

// ROIStore - доступ к дневным доходностям пар.
// Реализуется repository.ROIRepository.
type ROIStore interface {
	GetByPair(pair string, from, to time.Time) ([]*models.DailyROI, error)
	AverageROI(pair string) (float64, error)
}

// EquityStore - доступ к кривой капитала.
// Реализуется repository.EquityRepository.
type EquityStore interface {
	GetRange(from, to time.Time) ([]*models.EquityPoint, error)
	Latest() (*models.EquityPoint, error)
}

// ResultsHandler обрабатывает HTTP запросы к результатам торговли.
//
// Endpoints:
// - GET /api/v1/roi?pair=SPY/IVV&from=2017-01-01&to=2017-12-31
// - GET /api/v1/roi/average?pair=SPY/IVV
// - GET /api/v1/equity?from=2017-01-01&to=2017-12-31
// - GET /api/v1/equity/latest
type ResultsHandler struct {
	roi    ROIStore
	equity EquityStore
}

// NewResultsHandler создает новый ResultsHandler
func NewResultsHandler(roi ROIStore, equity EquityStore) *ResultsHandler {
	return &ResultsHandler{roi: roi, equity: equity}
}

// parseDateRange читает from/to из query string.
// По умолчанию последние 30 дней.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().In(utils.MarketLocation())
	from := now.AddDate(0, 0, -30)
	to := now

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, fromStr, utils.MarketLocation())
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, toStr, utils.MarketLocation())
		if err != nil {
			return from, to, err
		}
		// Включаем весь день "to"
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// GetROI возвращает дневные доходности пары за период
func (h *ResultsHandler) GetROI(w http.ResponseWriter, r *http.Request) {
	if h.roi == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "pair parameter required", nil)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err)
		return
	}

	rois, err := h.roi.GetByPair(pair, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get daily ROI", err)
		return
	}
	if rois == nil {
		rois = []*models.DailyROI{}
	}

	writeJSON(w, http.StatusOK, rois)
}

// GetAverageROI возвращает среднюю дневную доходность пары
func (h *ResultsHandler) GetAverageROI(w http.ResponseWriter, r *http.Request) {
	if h.roi == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, http.StatusBadRequest, "pair parameter required", nil)
		return
	}

	avg, err := h.roi.AverageROI(pair)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get average ROI", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pair":        pair,
		"avg_roi_pct": avg,
	})
}

// GetEquity возвращает кривую капитала за период
func (h *ResultsHandler) GetEquity(w http.ResponseWriter, r *http.Request) {
	if h.equity == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err)
		return
	}

	points, err := h.equity.GetRange(from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get equity curve", err)
		return
	}
	if points == nil {
		points = []*models.EquityPoint{}
	}

	writeJSON(w, http.StatusOK, points)
}

// GetLatestEquity возвращает последнюю точку кривой капитала
func (h *ResultsHandler) GetLatestEquity(w http.ResponseWriter, r *http.Request) {
	if h.equity == nil {
		writeError(w, http.StatusServiceUnavailable, "database disabled", nil)
		return
	}

	point, err := h.equity.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get equity", err)
		return
	}
	if point == nil {
		writeError(w, http.StatusNotFound, "no equity data", nil)
		return
	}

	writeJSON(w, http.StatusOK, point)
}
