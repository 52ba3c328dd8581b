package marketdata

import (
	"fmt"
	"sort"
	"time"

	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// feed.go - pull-фид бэктеста
//
// Бары всех инструментов предзагружаются и группируются по timestamp.
// Оркестратор забирает по одной пачке за цикл; перед доставкой пачка
// показывается наблюдателю (симулятору площадки), чтобы ожидающие
// ордера исполнялись "на следующем баре".

// BarLoader - источник исторических баров (обычно CSVStore)
type BarLoader interface {
	LoadBars(instrument string, start, end time.Time, freq models.Frequency) ([]models.Bar, error)
}

// BarObserver получает каждую пачку баров до стратегий
type BarObserver interface {
	OnBars(bars []models.Bar)
}

// BacktestFeed - фид с предзагруженными барами
type BacktestFeed struct {
	log      *utils.Logger
	loader   BarLoader
	observer BarObserver

	batches [][]models.Bar
	stopped bool
}

// NewBacktestFeed предзагружает бары инструментов в диапазоне запуска.
// observer может быть nil (подключается позже через Attach).
func NewBacktestFeed(loader BarLoader, instruments []string, start, end time.Time,
	freq models.Frequency, log *utils.Logger) (*BacktestFeed, error) {

	byTime := make(map[time.Time][]models.Bar)
	for _, instrument := range instruments {
		bars, err := loader.LoadBars(instrument, start, end, freq)
		if err != nil {
			return nil, fmt.Errorf("preload %s: %w", instrument, err)
		}
		for _, bar := range bars {
			key := bar.Timestamp.UTC()
			byTime[key] = append(byTime[key], bar)
		}
	}

	keys := make([]time.Time, 0, len(byTime))
	for key := range byTime {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	batches := make([][]models.Bar, 0, len(keys))
	for _, key := range keys {
		batches = append(batches, byTime[key])
	}

	log.Info("Backtest feed loaded",
		utils.Int("instruments", len(instruments)),
		utils.Int("batches", len(batches)))

	return &BacktestFeed{
		log:     log.WithComponent("backtest-feed"),
		loader:  loader,
		batches: batches,
	}, nil
}

// Attach подключает наблюдателя баров (симулятор площадки)
func (f *BacktestFeed) Attach(observer BarObserver) {
	f.observer = observer
}

// LoadBars делегирует хранилищу (прогрев стратегий)
func (f *BacktestFeed) LoadBars(instrument string, start, end time.Time, freq models.Frequency) ([]models.Bar, error) {
	return f.loader.LoadBars(instrument, start, end, freq)
}

// HasPending сообщает о наличии недоставленных баров
func (f *BacktestFeed) HasPending() bool {
	return !f.stopped && len(f.batches) > 0
}

// NextBars отдаёт следующую пачку баров одного timestamp
func (f *BacktestFeed) NextBars() []models.Bar {
	if f.stopped || len(f.batches) == 0 {
		return nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]

	if f.observer != nil {
		f.observer.OnBars(batch)
	}
	return batch
}

// Stop прекращает выдачу баров
func (f *BacktestFeed) Stop() {
	f.stopped = true
}
