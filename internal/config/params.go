package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/tibkiss/huba-v1/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StrategyParams - параметры стратегии одной пары.
//
// Неизменяемы после привязки к запуску. Передаются явным объектом
// в оркестратор, без глобальных реестров - так несколько независимых
// запусков (parameter sweep) могут работать в одном процессе.
type StrategyParams struct {
	Lookback           int     `json:"lookback"`             // окно калибровки, торговых дней
	EntryZScore        float64 `json:"entry_zscore"`         // порог входа
	ExitZScore         float64 `json:"exit_zscore"`          // порог выхода
	ZScoreUpdateBuffer int     `json:"zscore_update_buffer"` // размер буфера баров на ногу
	Delta              float64 `json:"delta"`                // коэффициент шума процесса фильтра
	Ve                 float64 `json:"ve"`                   // дисперсия шума наблюдения

	// Блэкаут вокруг отчётности: торговля запрещается, если внутри окна
	// [DaysBefore, DaysAfter] вокруг даты события попадает текущий день
	EarningsBlackout   bool `json:"earnings_blackout"`
	BlackoutDaysBefore int  `json:"blackout_days_before"`
	BlackoutDaysAfter  int  `json:"blackout_days_after"`

	LogPrices bool `json:"log_prices"` // спред по логарифмам цен

	// Лимитные ордера: отступ цены от текущей (доля).
	// Отрицательное значение = рыночный ордер.
	EntryOrderDistance float64 `json:"entry_order_distance"`
	ExitOrderDistance  float64 `json:"exit_order_distance"`

	// Шаг цены для округления лимитов, по ноге. 0 = автоматически
	// (0.01 для цены >= $1, иначе 0.0001)
	TickIncrement0 float64 `json:"tick_increment0"`
	TickIncrement1 float64 `json:"tick_increment1"`
}

// DefaultStrategyParams возвращает параметры по умолчанию
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		Lookback:           60,
		EntryZScore:        1.0,
		ExitZScore:         0.0,
		ZScoreUpdateBuffer: 2,
		Delta:              1e-4,
		Ve:                 1e-3,
		EarningsBlackout:   false,
		BlackoutDaysBefore: 1,
		BlackoutDaysAfter:  1,
		LogPrices:          false,
		EntryOrderDistance: 0.005,
		ExitOrderDistance:  0.005,
	}
}

// Validate проверяет корректность параметров стратегии
func (p StrategyParams) Validate() error {
	if p.Lookback < 2 {
		return fmt.Errorf("lookback must be at least 2, got %d", p.Lookback)
	}
	if p.EntryZScore <= 0 {
		return fmt.Errorf("entry_zscore must be positive, got %v", p.EntryZScore)
	}
	if p.ExitZScore < 0 {
		return fmt.Errorf("exit_zscore cannot be negative, got %v", p.ExitZScore)
	}
	if p.ZScoreUpdateBuffer < 1 {
		return fmt.Errorf("zscore_update_buffer must be at least 1, got %d", p.ZScoreUpdateBuffer)
	}
	if p.Delta <= 0 || p.Delta >= 1 {
		return fmt.Errorf("delta must be in (0, 1), got %v", p.Delta)
	}
	if p.Ve <= 0 {
		return fmt.Errorf("ve must be positive, got %v", p.Ve)
	}
	return nil
}

// PairEntry - пара и её параметры в файле запуска
type PairEntry struct {
	Leg0   string          `json:"leg0"`
	Leg1   string          `json:"leg1"`
	Params *StrategyParams `json:"params,omitempty"` // nil = defaults файла
}

// RunConfig - явная конфигурация одного запуска (бэктест или live)
type RunConfig struct {
	Defaults StrategyParams `json:"defaults"`
	Pairs    []PairEntry    `json:"pairs"`
}

// ParamsFor возвращает параметры для пары (override или defaults)
func (rc *RunConfig) ParamsFor(pair models.Pair) StrategyParams {
	for _, e := range rc.Pairs {
		if e.Leg0 == pair.Leg0 && e.Leg1 == pair.Leg1 && e.Params != nil {
			return *e.Params
		}
	}
	return rc.Defaults
}

// PairList возвращает список пар запуска
func (rc *RunConfig) PairList() []models.Pair {
	pairs := make([]models.Pair, 0, len(rc.Pairs))
	for _, e := range rc.Pairs {
		pairs = append(pairs, models.NewPair(e.Leg0, e.Leg1))
	}
	return pairs
}

// LoadRunConfig читает конфигурацию запуска из JSON файла
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config %s: %w", path, err)
	}

	rc := &RunConfig{Defaults: DefaultStrategyParams()}
	if err := json.Unmarshal(data, rc); err != nil {
		return nil, fmt.Errorf("parse run config %s: %w", path, err)
	}

	if len(rc.Pairs) == 0 {
		return nil, fmt.Errorf("run config %s contains no pairs", path)
	}

	if err := rc.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("run config %s defaults: %w", path, err)
	}
	for _, e := range rc.Pairs {
		if e.Leg0 == "" || e.Leg1 == "" {
			return nil, fmt.Errorf("run config %s: pair with empty leg", path)
		}
		if e.Params != nil {
			if err := e.Params.Validate(); err != nil {
				return nil, fmt.Errorf("run config %s pair %s/%s: %w", path, e.Leg0, e.Leg1, err)
			}
		}
	}

	return rc, nil
}
