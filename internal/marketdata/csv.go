package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/tibkiss/huba-v1/internal/broker"
	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/retry"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// csv.go - файловое хранилище исторических баров
//
// Бары лежат в CSV файлах кэш-директории, по файлу на инструмент
// и частоту: <cache>/<INSTRUMENT>-day.csv, <cache>/<INSTRUMENT>-minute.csv
//
// Формат строки:
//   day:    Date,Open,High,Low,Close,Adj Close,Volume
//   minute: Datetime,Open,High,Low,Close,Adj Close,Volume
//
// Отсутствующий файл догружается через Fetcher (с retry) и кэшируется.
// Без Fetcher отсутствие файла - ErrDataUnavailable.

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// Fetcher догружает бары из внешнего источника (сеть, брокер)
type Fetcher interface {
	Fetch(instrument string, freq models.Frequency, start, end time.Time) ([]models.Bar, error)
}

// CSVStore - кэширующее хранилище баров
type CSVStore struct {
	log      *utils.Logger
	cacheDir string
	fetcher  Fetcher // nil = только кэш
	retryCfg retry.Config
}

// NewCSVStore создаёт хранилище. fetcher может быть nil.
func NewCSVStore(cacheDir string, fetcher Fetcher, dataLoadRetries int, log *utils.Logger) *CSVStore {
	cfg := retry.DataLoadConfig(dataLoadRetries)
	cfg.RetryIf = retry.RetryIfNotPermanent
	return &CSVStore{
		log:      log.WithComponent("csv-store"),
		cacheDir: cacheDir,
		fetcher:  fetcher,
		retryCfg: cfg,
	}
}

// LoadBars возвращает бары инструмента в диапазоне [start, end],
// упорядоченные по времени
func (s *CSVStore) LoadBars(instrument string, start, end time.Time, freq models.Frequency) ([]models.Bar, error) {
	path := s.cachePath(instrument, freq)

	if _, err := os.Stat(path); err != nil {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: no cache file for %s", broker.ErrDataUnavailable, instrument)
		}
		if err := s.download(instrument, freq, start, end); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", broker.ErrDataUnavailable, instrument, err)
		}
	}

	bars, err := s.readFile(path, instrument, freq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", broker.ErrDataUnavailable, instrument, err)
	}

	filtered := bars[:0]
	for _, bar := range bars {
		if !bar.Timestamp.Before(start) && !bar.Timestamp.After(end) {
			filtered = append(filtered, bar)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})
	return filtered, nil
}

// download забирает бары через Fetcher с retry и пишет кэш-файл
func (s *CSVStore) download(instrument string, freq models.Frequency, start, end time.Time) error {
	s.log.Info("Cache miss, fetching bars",
		utils.Instrument(instrument), utils.String("freq", string(freq)))

	cfg := s.retryCfg
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.log.Warn("Bar fetch retry",
			utils.Instrument(instrument), utils.Int("attempt", attempt), utils.Err(err))
	}

	bars, err := retry.DoWithResult(context.Background(), func() ([]models.Bar, error) {
		return s.fetcher.Fetch(instrument, freq, start, end)
	}, cfg)
	if err != nil {
		return err
	}

	return s.writeFile(s.cachePath(instrument, freq), bars, freq)
}

func (s *CSVStore) cachePath(instrument string, freq models.Frequency) string {
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s-%s.csv", instrument, freq))
}

// readFile читает и парсит CSV файл с барами
func (s *CSVStore) readFile(path, instrument string, freq models.Frequency) ([]models.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	bars := make([]models.Bar, 0, len(records))
	for i, record := range records {
		if i == 0 && (record[0] == "Date" || record[0] == "Datetime") {
			continue // заголовок
		}
		bar, err := parseRecord(record, instrument, freq)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseRecord разбирает одну строку CSV в бар
func parseRecord(record []string, instrument string, freq models.Frequency) (models.Bar, error) {
	if len(record) < 7 {
		return models.Bar{}, fmt.Errorf("expected 7 columns, got %d", len(record))
	}

	layout := dateLayout
	if freq == models.FrequencyMinute {
		layout = datetimeLayout
	}
	ts, err := time.ParseInLocation(layout, record[0], utils.MarketLocation())
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad timestamp %q: %w", record[0], err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		fields[i], err = strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("bad value %q: %w", record[i+1], err)
		}
	}
	volume, err := strconv.ParseInt(record[6], 10, 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("bad volume %q: %w", record[6], err)
	}

	return models.Bar{
		Instrument: instrument,
		Open:       fields[0],
		High:       fields[1],
		Low:        fields[2],
		Close:      fields[3],
		AdjClose:   fields[4],
		Volume:     volume,
		Timestamp:  ts,
	}, nil
}

// writeFile сохраняет бары в кэш-файл
func (s *CSVStore) writeFile(path string, bars []models.Bar, freq models.Frequency) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	layout := dateLayout
	header := "Date"
	if freq == models.FrequencyMinute {
		layout = datetimeLayout
		header = "Datetime"
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{header, "Open", "High", "Low", "Close", "Adj Close", "Volume"}); err != nil {
		return err
	}
	for _, bar := range bars {
		record := []string{
			bar.Timestamp.In(utils.MarketLocation()).Format(layout),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.AdjClose, 'f', -1, 64),
			strconv.FormatInt(bar.Volume, 10),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
