package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
)

// Ошибки репозитория сделок
var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository - работа с таблицей trades
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create записывает закрытую сделку ноги
func (r *TradeRepository) Create(trade *models.Trade) error {
	query := `
		INSERT INTO trades (pair, instrument, direction, quantity, entry_price, exit_price, profit, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.db.QueryRow(
		query,
		trade.Pair,
		trade.Instrument,
		trade.Direction,
		trade.Quantity,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Profit,
		trade.ClosedAt,
	).Scan(&trade.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetByID возвращает сделку по ID
func (r *TradeRepository) GetByID(id int64) (*models.Trade, error) {
	query := `
		SELECT id, pair, instrument, direction, quantity, entry_price, exit_price, profit, closed_at
		FROM trades
		WHERE id = $1`

	trade := &models.Trade{}
	err := r.db.QueryRow(query, id).Scan(
		&trade.ID,
		&trade.Pair,
		&trade.Instrument,
		&trade.Direction,
		&trade.Quantity,
		&trade.EntryPrice,
		&trade.ExitPrice,
		&trade.Profit,
		&trade.ClosedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}

	return trade, nil
}

// GetByPair возвращает сделки пары за период
func (r *TradeRepository) GetByPair(pair string, from, to time.Time) ([]*models.Trade, error) {
	query := `
		SELECT id, pair, instrument, direction, quantity, entry_price, exit_price, profit, closed_at
		FROM trades
		WHERE pair = $1 AND closed_at >= $2 AND closed_at <= $3
		ORDER BY closed_at DESC`

	rows, err := r.db.Query(query, pair, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetRecent возвращает последние N сделок
func (r *TradeRepository) GetRecent(limit int) ([]*models.Trade, error) {
	query := `
		SELECT id, pair, instrument, direction, quantity, entry_price, exit_price, profit, closed_at
		FROM trades
		ORDER BY closed_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrades(rows)
}

// TotalProfitByPair возвращает суммарную прибыль пары
func (r *TradeRepository) TotalProfitByPair(pair string) (float64, error) {
	query := `SELECT COALESCE(SUM(profit), 0) FROM trades WHERE pair = $1`

	var total float64
	if err := r.db.QueryRow(query, pair).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Count возвращает общее количество сделок
func (r *TradeRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM trades`

	var count int
	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOlderThan удаляет сделки старше указанной даты
func (r *TradeRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	query := `DELETE FROM trades WHERE closed_at < $1`

	result, err := r.db.Exec(query, timestamp)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanTrades(rows *sql.Rows) ([]*models.Trade, error) {
	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Pair,
			&trade.Instrument,
			&trade.Direction,
			&trade.Quantity,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.Profit,
			&trade.ClosedAt,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}
