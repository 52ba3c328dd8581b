package marketdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tibkiss/huba-v1/internal/broker"
	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

func testLogger(t *testing.T) *utils.Logger {
	t.Helper()
	return utils.InitLogger(utils.LogConfig{Level: "error", Format: "console"})
}

const dailyCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2017-03-16,100,101,99,100.5,100.5,12000
2017-03-17,100.5,102,100,101.5,101.5,15000
2017-03-20,101.5,103,101,102.5,102.5,11000
`

func writeCache(t *testing.T, dir, instrument string, freq models.Frequency, content string) {
	t.Helper()
	path := filepath.Join(dir, instrument+"-"+string(freq)+".csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write cache file: %v", err)
	}
}

func marketDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, utils.MarketLocation())
}

func TestCSVStore_LoadFromCache(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "AAPL", models.FrequencyDay, dailyCSV)
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	bars, err := store.LoadBars("AAPL", marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay)
	if err != nil {
		t.Fatalf("LoadBars error = %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}

	first := bars[0]
	if first.Instrument != "AAPL" {
		t.Errorf("Instrument = %s, want AAPL", first.Instrument)
	}
	if first.Open != 100 || first.High != 101 || first.Low != 99 || first.Close != 100.5 {
		t.Errorf("OHLC = %v/%v/%v/%v, want 100/101/99/100.5",
			first.Open, first.High, first.Low, first.Close)
	}
	if first.Volume != 12000 {
		t.Errorf("Volume = %d, want 12000", first.Volume)
	}

	// Бары упорядочены по времени
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			t.Errorf("bars not ordered at index %d", i)
		}
	}
}

func TestCSVStore_RangeFilter(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "AAPL", models.FrequencyDay, dailyCSV)
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	bars, err := store.LoadBars("AAPL", marketDay(2017, 3, 17), marketDay(2017, 3, 17), models.FrequencyDay)
	if err != nil {
		t.Fatalf("LoadBars error = %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("bars = %d, want 1", len(bars))
	}
	if bars[0].Close != 101.5 {
		t.Errorf("Close = %v, want 101.5", bars[0].Close)
	}
}

func TestCSVStore_MissingFileWithoutFetcher(t *testing.T) {
	store := NewCSVStore(t.TempDir(), nil, 3, testLogger(t))

	_, err := store.LoadBars("NOPE", marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay)
	if !errors.Is(err, broker.ErrDataUnavailable) {
		t.Errorf("LoadBars error = %v, want ErrDataUnavailable", err)
	}
}

func TestCSVStore_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "BAD", models.FrequencyDay, "Date,Open\n2017-03-16,oops\n")
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	_, err := store.LoadBars("BAD", marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay)
	if !errors.Is(err, broker.ErrDataUnavailable) {
		t.Errorf("LoadBars error = %v, want ErrDataUnavailable", err)
	}
}

// countingFetcher считает вызовы и может падать первые failures раз
type countingFetcher struct {
	bars     []models.Bar
	failures int
	calls    int
}

func (f *countingFetcher) Fetch(instrument string, freq models.Frequency, start, end time.Time) ([]models.Bar, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient fetch error")
	}
	return f.bars, nil
}

func TestCSVStore_FetchesAndCachesOnMiss(t *testing.T) {
	dir := t.TempDir()
	fetched := []models.Bar{
		{
			Instrument: "MSFT",
			Open:       60, High: 61, Low: 59, Close: 60.5, AdjClose: 60.5,
			Volume:    9000,
			Timestamp: marketDay(2017, 3, 17),
		},
	}
	fetcher := &countingFetcher{bars: fetched, failures: 1}
	store := NewCSVStore(dir, fetcher, 3, testLogger(t))

	bars, err := store.LoadBars("MSFT", marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay)
	if err != nil {
		t.Fatalf("LoadBars error = %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 60.5 {
		t.Fatalf("bars = %+v, want one bar with close 60.5", bars)
	}
	// Первая попытка упала, retry добился успеха
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2 (one retry)", fetcher.calls)
	}

	// Повторная загрузка идёт из кэша, без обращения к источнику
	if _, err := store.LoadBars("MSFT", marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay); err != nil {
		t.Fatalf("cached LoadBars error = %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls after cache hit = %d, want 2", fetcher.calls)
	}
}

func TestBacktestFeed_BatchesByTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "AAPL", models.FrequencyDay, dailyCSV)
	writeCache(t, dir, "MSFT", models.FrequencyDay, dailyCSV)
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	feed, err := NewBacktestFeed(store, []string{"AAPL", "MSFT"},
		marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay, testLogger(t))
	if err != nil {
		t.Fatalf("NewBacktestFeed error = %v", err)
	}

	var batches int
	var prev time.Time
	for feed.HasPending() {
		batch := feed.NextBars()
		if len(batch) != 2 {
			t.Errorf("batch size = %d, want 2 (both instruments)", len(batch))
		}
		ts := batch[0].Timestamp
		if batches > 0 && !ts.After(prev) {
			t.Error("batches not ordered by timestamp")
		}
		prev = ts
		batches++
	}
	if batches != 3 {
		t.Errorf("batches = %d, want 3", batches)
	}
}

type csvRecordingObserver struct {
	seen [][]models.Bar
}

func (o *csvRecordingObserver) OnBars(bars []models.Bar) {
	o.seen = append(o.seen, bars)
}

func TestBacktestFeed_NotifiesObserverBeforeDelivery(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "AAPL", models.FrequencyDay, dailyCSV)
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	feed, err := NewBacktestFeed(store, []string{"AAPL"},
		marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay, testLogger(t))
	if err != nil {
		t.Fatalf("NewBacktestFeed error = %v", err)
	}

	observer := &csvRecordingObserver{}
	feed.Attach(observer)

	batch := feed.NextBars()
	if len(observer.seen) != 1 {
		t.Fatalf("observer batches = %d, want 1", len(observer.seen))
	}
	if len(batch) != len(observer.seen[0]) {
		t.Error("observer saw different batch than delivered")
	}
}

func TestBacktestFeed_StopEndsStream(t *testing.T) {
	dir := t.TempDir()
	writeCache(t, dir, "AAPL", models.FrequencyDay, dailyCSV)
	store := NewCSVStore(dir, nil, 3, testLogger(t))

	feed, err := NewBacktestFeed(store, []string{"AAPL"},
		marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay, testLogger(t))
	if err != nil {
		t.Fatalf("NewBacktestFeed error = %v", err)
	}

	feed.Stop()
	if feed.HasPending() {
		t.Error("HasPending = true after Stop, want false")
	}
	if bars := feed.NextBars(); bars != nil {
		t.Errorf("NextBars after Stop = %v, want nil", bars)
	}
}

func TestBacktestFeed_MissingInstrumentFails(t *testing.T) {
	store := NewCSVStore(t.TempDir(), nil, 3, testLogger(t))

	_, err := NewBacktestFeed(store, []string{"NOPE"},
		marketDay(2017, 3, 16), marketDay(2017, 3, 20), models.FrequencyDay, testLogger(t))
	if !errors.Is(err, broker.ErrDataUnavailable) {
		t.Errorf("NewBacktestFeed error = %v, want ErrDataUnavailable", err)
	}
}
