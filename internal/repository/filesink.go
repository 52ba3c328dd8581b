package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/tibkiss/huba-v1/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// filesink.go - файловый приёмник результатов
//
// Используется, когда база отключена, и для parameter sweep: каждый
// запуск пишет в свои файлы, помеченные тегом запуска, поэтому
// параллельные свипы не конфликтуют.

// FileSink пишет результаты в JSON Lines файлы результат-директории:
// <dir>/<tag>-trades.jsonl, <tag>-daily_roi.jsonl, <tag>-equity.jsonl
type FileSink struct {
	mu     sync.Mutex
	dir    string
	tag    string
	files  map[string]*os.File
	closed bool
}

// NewFileSink создаёт приёмник. Директория создаётся при необходимости.
func NewFileSink(dir, tag string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create result dir %s: %w", dir, err)
	}
	return &FileSink{
		dir:   dir,
		tag:   tag,
		files: make(map[string]*os.File),
	}, nil
}

// SaveDailyROI дописывает дневной итог пары
func (s *FileSink) SaveDailyROI(roi models.DailyROI) error {
	return s.appendLine("daily_roi", roi)
}

// SaveEquityPoint дописывает точку кривой капитала
func (s *FileSink) SaveEquityPoint(point models.EquityPoint) error {
	return s.appendLine("equity", point)
}

// SaveTrade дописывает закрытую сделку
func (s *FileSink) SaveTrade(trade models.Trade) error {
	return s.appendLine("trades", trade)
}

// Close закрывает все открытые файлы
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	var firstErr error
	for _, file := range s.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.files = make(map[string]*os.File)
	return firstErr
}

func (s *FileSink) appendLine(kind string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("file sink closed")
	}

	file, ok := s.files[kind]
	if !ok {
		path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.jsonl", s.tag, kind))
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open result file %s: %w", path, err)
		}
		s.files[kind] = file
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
