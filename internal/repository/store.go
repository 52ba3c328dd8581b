package repository

import (
	"database/sql"

	"github.com/tibkiss/huba-v1/internal/models"
)

// ResultStore объединяет репозитории результатов и реализует
// приёмник результатов оркестратора (bot.ResultSink)
type ResultStore struct {
	trades *TradeRepository
	roi    *ROIRepository
	equity *EquityRepository
}

// NewResultStore создаёт хранилище результатов поверх подключения
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{
		trades: NewTradeRepository(db),
		roi:    NewROIRepository(db),
		equity: NewEquityRepository(db),
	}
}

// Trades возвращает репозиторий сделок
func (s *ResultStore) Trades() *TradeRepository { return s.trades }

// ROI возвращает репозиторий дневных итогов
func (s *ResultStore) ROI() *ROIRepository { return s.roi }

// Equity возвращает репозиторий кривой капитала
func (s *ResultStore) Equity() *EquityRepository { return s.equity }

// SaveDailyROI записывает дневной итог пары
func (s *ResultStore) SaveDailyROI(roi models.DailyROI) error {
	return s.roi.Upsert(&roi)
}

// SaveEquityPoint записывает точку кривой капитала
func (s *ResultStore) SaveEquityPoint(point models.EquityPoint) error {
	return s.equity.Create(&point)
}

// SaveTrade записывает закрытую сделку
func (s *ResultStore) SaveTrade(trade models.Trade) error {
	return s.trades.Create(&trade)
}
