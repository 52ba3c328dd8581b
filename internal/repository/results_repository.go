package repository

import (
	"database/sql"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
)

// results_repository.go - дневные доходности и кривая капитала

// ROIRepository - работа с таблицей daily_roi
type ROIRepository struct {
	db *sql.DB
}

// NewROIRepository создает новый экземпляр репозитория
func NewROIRepository(db *sql.DB) *ROIRepository {
	return &ROIRepository{db: db}
}

// Upsert записывает дневной итог пары.
// Повторная запись за тот же день перезаписывает строку: при
// рестарте live-бота день может закрываться дважды.
func (r *ROIRepository) Upsert(roi *models.DailyROI) error {
	query := `
		INSERT INTO daily_roi (pair, date, roi_pct, trades, realized)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pair, date)
		DO UPDATE SET roi_pct = EXCLUDED.roi_pct, trades = EXCLUDED.trades, realized = EXCLUDED.realized
		RETURNING id`

	return r.db.QueryRow(
		query,
		roi.Pair,
		roi.Date,
		roi.ROIPct,
		roi.Trades,
		roi.Realized,
	).Scan(&roi.ID)
}

// GetByPair возвращает дневные итоги пары за период
func (r *ROIRepository) GetByPair(pair string, from, to time.Time) ([]*models.DailyROI, error) {
	query := `
		SELECT id, pair, date, roi_pct, trades, realized
		FROM daily_roi
		WHERE pair = $1 AND date >= $2 AND date <= $3
		ORDER BY date`

	rows, err := r.db.Query(query, pair, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.DailyROI
	for rows.Next() {
		roi := &models.DailyROI{}
		err := rows.Scan(
			&roi.ID,
			&roi.Pair,
			&roi.Date,
			&roi.ROIPct,
			&roi.Trades,
			&roi.Realized,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, roi)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// AverageROI возвращает среднюю дневную доходность пары
func (r *ROIRepository) AverageROI(pair string) (float64, error) {
	query := `SELECT COALESCE(AVG(roi_pct), 0) FROM daily_roi WHERE pair = $1`

	var avg float64
	if err := r.db.QueryRow(query, pair).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// EquityRepository - работа с таблицей equity_curve
type EquityRepository struct {
	db *sql.DB
}

// NewEquityRepository создает новый экземпляр репозитория
func NewEquityRepository(db *sql.DB) *EquityRepository {
	return &EquityRepository{db: db}
}

// Create записывает точку кривой капитала
func (r *EquityRepository) Create(point *models.EquityPoint) error {
	query := `
		INSERT INTO equity_curve (ts, equity, leverage)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRow(query, point.Timestamp, point.Equity, point.Leverage).Scan(&point.ID)
}

// GetRange возвращает точки кривой капитала за период
func (r *EquityRepository) GetRange(from, to time.Time) ([]*models.EquityPoint, error) {
	query := `
		SELECT id, ts, equity, leverage
		FROM equity_curve
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts`

	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*models.EquityPoint
	for rows.Next() {
		point := &models.EquityPoint{}
		if err := rows.Scan(&point.ID, &point.Timestamp, &point.Equity, &point.Leverage); err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// Latest возвращает последнюю точку кривой капитала
func (r *EquityRepository) Latest() (*models.EquityPoint, error) {
	query := `
		SELECT id, ts, equity, leverage
		FROM equity_curve
		ORDER BY ts DESC
		LIMIT 1`

	point := &models.EquityPoint{}
	err := r.db.QueryRow(query).Scan(&point.ID, &point.Timestamp, &point.Equity, &point.Leverage)
	if err == sql.ErrNoRows {
		// Пустая кривая - не ошибка
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return point, nil
}
