package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // драйвер postgres

	"github.com/tibkiss/huba-v1/internal/config"
)

// postgres.go - подключение к PostgreSQL и схема таблиц результатов

// Connect открывает и проверяет соединение с базой
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.DSNWithoutPassword(), err)
	}
	return db, nil
}

// Migrate создаёт таблицы результатов, если их ещё нет
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id          BIGSERIAL PRIMARY KEY,
			pair        TEXT NOT NULL,
			instrument  TEXT NOT NULL,
			direction   TEXT NOT NULL,
			quantity    INTEGER NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			exit_price  DOUBLE PRECISION NOT NULL,
			profit      DOUBLE PRECISION NOT NULL,
			closed_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_roi (
			id       BIGSERIAL PRIMARY KEY,
			pair     TEXT NOT NULL,
			date     DATE NOT NULL,
			roi_pct  DOUBLE PRECISION NOT NULL,
			trades   INTEGER NOT NULL,
			realized BOOLEAN NOT NULL,
			UNIQUE (pair, date)
		)`,
		`CREATE TABLE IF NOT EXISTS equity_curve (
			id       BIGSERIAL PRIMARY KEY,
			ts       TIMESTAMPTZ NOT NULL,
			equity   DOUBLE PRECISION NOT NULL,
			leverage DOUBLE PRECISION NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
