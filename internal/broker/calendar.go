package broker

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tibkiss/huba-v1/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// calendar.go - календарь отчётности из статического JSON файла
//
// Формат файла:
//
//	{
//	  "AAPL": ["2017-01-31", "2017-05-02"],
//	  "MSFT": ["2017-01-26"]
//	}
//
// Даты интерпретируются в биржевом времени (полночь US/Eastern).

// JSONCalendar - календарь событий, загруженный из файла
type JSONCalendar struct {
	events map[string][]time.Time
}

// LoadJSONCalendar читает календарь из JSON файла
func LoadJSONCalendar(path string) (*JSONCalendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", path, err)
	}

	events := make(map[string][]time.Time, len(raw))
	for instrument, dates := range raw {
		for _, date := range dates {
			ts, err := time.ParseInLocation("2006-01-02", date, utils.MarketLocation())
			if err != nil {
				return nil, fmt.Errorf("calendar %s: %s: bad date %q: %w", path, instrument, date, err)
			}
			events[instrument] = append(events[instrument], ts)
		}
	}

	return &JSONCalendar{events: events}, nil
}

// BlackoutEvents возвращает события инструмента в диапазоне [start, end]
func (c *JSONCalendar) BlackoutEvents(instrument string, start, end time.Time) ([]time.Time, error) {
	var matched []time.Time
	for _, ts := range c.events[instrument] {
		if !ts.Before(utils.MarketDate(start)) && !ts.After(end) {
			matched = append(matched, ts)
		}
	}
	return matched, nil
}
