package broker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tibkiss/huba-v1/pkg/utils"
)

func writeCalendarFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "earnings.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}
	return path
}

func TestLoadJSONCalendar(t *testing.T) {
	path := writeCalendarFile(t, `{
		"AAPL": ["2017-01-31", "2017-05-02"],
		"MSFT": ["2017-01-26"]
	}`)

	calendar, err := LoadJSONCalendar(path)
	if err != nil {
		t.Fatalf("LoadJSONCalendar error = %v", err)
	}

	loc := utils.MarketLocation()
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(2017, 12, 31, 0, 0, 0, 0, loc)

	events, err := calendar.BlackoutEvents("AAPL", start, end)
	if err != nil {
		t.Fatalf("BlackoutEvents error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("AAPL events = %d, want 2", len(events))
	}
	// Даты парсятся в биржевом времени
	if events[0].Location() != loc {
		t.Errorf("event location = %v, want %v", events[0].Location(), loc)
	}
}

func TestJSONCalendarRangeFilter(t *testing.T) {
	path := writeCalendarFile(t, `{"AAPL": ["2017-01-31", "2017-05-02", "2017-08-01"]}`)
	calendar, err := LoadJSONCalendar(path)
	if err != nil {
		t.Fatalf("LoadJSONCalendar error = %v", err)
	}

	loc := utils.MarketLocation()
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"full year", time.Date(2017, 1, 1, 0, 0, 0, 0, loc), time.Date(2017, 12, 31, 0, 0, 0, 0, loc), 3},
		{"first half", time.Date(2017, 1, 1, 0, 0, 0, 0, loc), time.Date(2017, 6, 30, 0, 0, 0, 0, loc), 2},
		{"event on boundary", time.Date(2017, 1, 31, 0, 0, 0, 0, loc), time.Date(2017, 1, 31, 0, 0, 0, 0, loc), 1},
		{"empty window", time.Date(2017, 2, 1, 0, 0, 0, 0, loc), time.Date(2017, 4, 30, 0, 0, 0, 0, loc), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := calendar.BlackoutEvents("AAPL", tt.start, tt.end)
			if err != nil {
				t.Fatalf("BlackoutEvents error = %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("events = %d, want %d", len(events), tt.want)
			}
		})
	}
}

func TestJSONCalendarUnknownInstrument(t *testing.T) {
	path := writeCalendarFile(t, `{"AAPL": ["2017-01-31"]}`)
	calendar, err := LoadJSONCalendar(path)
	if err != nil {
		t.Fatalf("LoadJSONCalendar error = %v", err)
	}

	loc := utils.MarketLocation()
	events, err := calendar.BlackoutEvents("TSLA",
		time.Date(2017, 1, 1, 0, 0, 0, 0, loc), time.Date(2017, 12, 31, 0, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("BlackoutEvents error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0 for unknown instrument", len(events))
	}
}

func TestLoadJSONCalendarErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"AAPL": [`},
		{"bad date", `{"AAPL": ["31-01-2017"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCalendarFile(t, tt.content)
			if _, err := LoadJSONCalendar(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadJSONCalendar(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestNopCalendar(t *testing.T) {
	events, err := NopCalendar{}.BlackoutEvents("AAPL", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("BlackoutEvents error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}
