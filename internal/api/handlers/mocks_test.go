package handlers

import (
	"errors"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
)

// ============================================================
// Mocks
// ============================================================

var errStore = errors.New("store failure")

// mockProvider реализует PairStatusProvider
type mockProvider struct {
	statuses []models.PairStatus
}

func (m *mockProvider) PairStatuses() []models.PairStatus {
	return m.statuses
}

// mockTradeStore реализует TradeStore
type mockTradeStore struct {
	trades []*models.Trade
	profit float64
	count  int
	err    error
}

func (m *mockTradeStore) GetRecent(limit int) ([]*models.Trade, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.trades) {
		return m.trades[:limit], nil
	}
	return m.trades, nil
}

func (m *mockTradeStore) TotalProfitByPair(pair string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.profit, nil
}

func (m *mockTradeStore) Count() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

// mockROIStore реализует ROIStore
type mockROIStore struct {
	rois []*models.DailyROI
	avg  float64
	err  error
}

func (m *mockROIStore) GetByPair(pair string, from, to time.Time) ([]*models.DailyROI, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rois, nil
}

func (m *mockROIStore) AverageROI(pair string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.avg, nil
}

// mockEquityStore реализует EquityStore
type mockEquityStore struct {
	points []*models.EquityPoint
	latest *models.EquityPoint
	err    error
}

func (m *mockEquityStore) GetRange(from, to time.Time) ([]*models.EquityPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.points, nil
}

func (m *mockEquityStore) Latest() (*models.EquityPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.latest, nil
}

// mockAccount реализует AccountInfo
type mockAccount struct {
	capital   float64
	positions int
	capacity  int
}

func (m *mockAccount) GetTradeCapital() float64 { return m.capital }
func (m *mockAccount) PositionCount() int       { return m.positions }
func (m *mockAccount) Capacity() int            { return m.capacity }

// mockClients реализует ClientCounter
type mockClients struct {
	count int
}

func (m *mockClients) ClientCount() int { return m.count }
