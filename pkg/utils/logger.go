package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger.go - структурированное логирование на базе zap
//
// Назначение:
// Единая точка создания логгеров для всего приложения.
// Поддерживает JSON (production) и текстовый (development) форматы,
// вывод в файл или stderr, глобальный логгер для пакетов без DI.
//
// Использование:
//
//	logger := utils.InitLogger(utils.LogConfig{Level: "info", Format: "json"})
//	logger.Info("Strategy started", utils.Instrument("AAPL"))
//
//	utils.InitGlobalLogger(cfg)
//	utils.L().Warn("Bar dropped", utils.Instrument("MSFT"))

// LogConfig - конфигурация логгера
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу; пусто = stderr
	Development bool   // режим разработки
}

// Logger оборачивает zap.Logger и добавляет доменные helpers
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// ============================================================
// Инициализация
// ============================================================

// parseLevel преобразует строку в zapcore.Level (default: info)
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger создаёт новый логгер согласно конфигурации.
//
// Особенности:
//   - Пустая конфигурация даёт JSON-логгер уровня info в stderr
//   - Невалидный путь Output не фатален: fallback на stderr
func InitLogger(cfg LogConfig) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	// Вывод: файл или stderr. Ошибка открытия файла не роняет процесс.
	sink := zapcore.AddSync(os.Stderr)
	if cfg.Output != "" {
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			sink = zapcore.AddSync(file)
		}
	}

	core := zapcore.NewCore(encoder, sink, parseLevel(cfg.Level))

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	return &Logger{
		Logger: zl,
		sugar:  zl.Sugar(),
	}
}

// ============================================================
// Глобальный логгер
// ============================================================

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitGlobalLogger инициализирует глобальный логгер
func InitGlobalLogger(cfg LogConfig) *Logger {
	logger := InitLogger(cfg)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// GetGlobalLogger возвращает глобальный логгер.
// Если логгер не инициализирован, создаёт логгер по умолчанию.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()

	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// L - короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// ============================================================
// Методы Logger
// ============================================================

// With возвращает новый логгер с добавленными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	zl := l.Logger.With(fields...)
	return &Logger{
		Logger: zl,
		sugar:  zl.Sugar(),
	}
}

// Sugar возвращает SugaredLogger для printf-style логирования
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// WithComponent возвращает логгер с полем component
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(Component(component))
}

// WithInstrument возвращает логгер с полем instrument
func (l *Logger) WithInstrument(instrument string) *Logger {
	return l.With(Instrument(instrument))
}

// WithPair возвращает логгер с полем pair
func (l *Logger) WithPair(pair string) *Logger {
	return l.With(PairKey(pair))
}

// WithState возвращает логгер с полем state
func (l *Logger) WithState(state string) *Logger {
	return l.With(State(state))
}

// Debugf логирует отформатированное сообщение уровня debug
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.sugar.Debugf(template, args...)
}

// Infof логирует отформатированное сообщение уровня info
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// Warnf логирует отформатированное сообщение уровня warn
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warnf(template, args...)
}

// Errorf логирует отформатированное сообщение уровня error
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Errorf(template, args...)
}

// Fatalf логирует отформатированное сообщение и завершает процесс
func (l *Logger) Fatalf(template string, args ...interface{}) {
	l.sugar.Fatalf(template, args...)
}

// ============================================================
// Глобальные функции логирования
// ============================================================

// Debug логирует сообщение уровня debug через глобальный логгер
func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().Debug(msg, fields...)
}

// Info логирует сообщение уровня info через глобальный логгер
func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().Info(msg, fields...)
}

// Warn логирует сообщение уровня warn через глобальный логгер
func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().Warn(msg, fields...)
}

// Error логирует сообщение уровня error через глобальный логгер
func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().Error(msg, fields...)
}

// Fatal логирует сообщение и завершает процесс
func Fatal(msg string, fields ...zap.Field) {
	GetGlobalLogger().Fatal(msg, fields...)
}

// Debugf - printf-style debug через глобальный логгер
func Debugf(template string, args ...interface{}) {
	GetGlobalLogger().Debugf(template, args...)
}

// Infof - printf-style info через глобальный логгер
func Infof(template string, args ...interface{}) {
	GetGlobalLogger().Infof(template, args...)
}

// Warnf - printf-style warn через глобальный логгер
func Warnf(template string, args ...interface{}) {
	GetGlobalLogger().Warnf(template, args...)
}

// Errorf - printf-style error через глобальный логгер
func Errorf(template string, args ...interface{}) {
	GetGlobalLogger().Errorf(template, args...)
}

// ============================================================
// Конструкторы доменных полей
// ============================================================

// Instrument - тикер инструмента
func Instrument(symbol string) zap.Field {
	return zap.String("instrument", symbol)
}

// PairKey - торговая пара в формате "LEG0/LEG1"
func PairKey(pair string) zap.Field {
	return zap.String("pair", pair)
}

// OrderID - идентификатор ордера
func OrderID(id int) zap.Field {
	return zap.Int("order_id", id)
}

// Price - цена
func Price(price float64) zap.Field {
	return zap.Float64("price", price)
}

// Qty - количество акций (со знаком)
func Qty(qty int) zap.Field {
	return zap.Int("qty", qty)
}

// Spread - значение спреда пары
func Spread(spread float64) zap.Field {
	return zap.Float64("spread", spread)
}

// ZScore - стандартизованный спред
func ZScore(z float64) zap.Field {
	return zap.Float64("zscore", z)
}

// HedgeRatio - текущий коэффициент хеджирования
func HedgeRatio(ratio float64) zap.Field {
	return zap.Float64("hedge_ratio", ratio)
}

// ROI - доходность в процентах
func ROI(pct float64) zap.Field {
	return zap.Float64("roi_pct", pct)
}

// Equity - капитал счёта
func Equity(equity float64) zap.Field {
	return zap.Float64("equity", equity)
}

// Side - направление ордера (BUY/SELL) или позиции (LONG/SHORT)
func Side(side string) zap.Field {
	return zap.String("side", side)
}

// State - состояние стратегии
func State(state string) zap.Field {
	return zap.String("state", state)
}

// Component - имя компонента системы
func Component(component string) zap.Field {
	return zap.String("component", component)
}

// ============================================================
// Переэкспорт стандартных конструкторов zap
// ============================================================

// String - строковое поле
func String(key, value string) zap.Field { return zap.String(key, value) }

// Int - целочисленное поле
func Int(key string, value int) zap.Field { return zap.Int(key, value) }

// Int64 - поле int64
func Int64(key string, value int64) zap.Field { return zap.Int64(key, value) }

// Float64 - поле float64
func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }

// Bool - булево поле
func Bool(key string, value bool) zap.Field { return zap.Bool(key, value) }

// Err - поле с ошибкой
func Err(err error) zap.Field { return zap.Error(err) }

// Any - поле произвольного типа
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// fieldsToInterface преобразует zap.Field в плоский список key, value
// для передачи в методы SugaredLogger
func fieldsToInterface(fields []zap.Field) []interface{} {
	result := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		var value interface{}
		switch f.Type {
		case zapcore.StringType:
			value = f.String
		case zapcore.Int64Type, zapcore.Int32Type:
			value = f.Integer
		case zapcore.BoolType:
			value = f.Integer == 1
		case zapcore.ErrorType:
			value = f.Interface
		default:
			value = f.Interface
		}
		result = append(result, f.Key, value)
	}
	return result
}
