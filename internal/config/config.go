package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Trading  TradingConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера (live режим)
type ServerConfig struct {
	Port         int
	Host         string
	AuthUser     string
	AuthPassHash string // bcrypt-хэш пароля для Basic Auth
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	Enabled  bool // без БД результаты пишутся только в файлы
}

// TradingConfig - настройки торгового ядра
type TradingConfig struct {
	TradeCapital     float64       // стартовый капитал для бэктеста
	Leverage         float64       // плечо аллокатора
	MaxPositionCount int           // максимум одновременно открытых пар
	CommissionFixed  float64       // фиксированная часть комиссии за ордер
	CommissionPerShr float64       // комиссия за акцию
	CacheDir         string        // локальный кэш исторических баров
	ResultDir        string        // каталог результатов бэктестов
	LiveSleep        time.Duration // пауза цикла диспетчеризации в live
	DataLoadRetries  int           // попытки загрузки исторических данных
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			AuthUser:     getEnv("API_AUTH_USER", ""),
			AuthPassHash: getEnv("API_AUTH_PASS_HASH", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "huba"),
			User:     getEnv("DB_USER", "huba"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			Enabled:  getEnvAsBool("DB_ENABLED", false),
		},
		Trading: TradingConfig{
			TradeCapital:     getEnvAsFloat("TRADE_CAPITAL", 100000),
			Leverage:         getEnvAsFloat("LEVERAGE", 1.5),
			MaxPositionCount: getEnvAsInt("MAX_POSITION_COUNT", 10),
			CommissionFixed:  getEnvAsFloat("COMMISSION_FIXED", 0),
			CommissionPerShr: getEnvAsFloat("COMMISSION_PER_SHARE", 0.005),
			CacheDir:         getEnv("BAR_CACHE_DIR", "./cache"),
			ResultDir:        getEnv("RESULT_DIR", "./results"),
			LiveSleep:        getEnvAsDuration("LIVE_SLEEP", 100*time.Millisecond),
			DataLoadRetries:  getEnvAsInt("DATA_LOAD_RETRIES", 3),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", ""),
		},
	}

	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Trading.TradeCapital <= 0 {
		return fmt.Errorf("TRADE_CAPITAL must be positive, got %v", c.Trading.TradeCapital)
	}

	if c.Trading.Leverage <= 0 {
		return fmt.Errorf("LEVERAGE must be positive, got %v", c.Trading.Leverage)
	}

	if c.Trading.MaxPositionCount < 1 {
		return fmt.Errorf("MAX_POSITION_COUNT must be at least 1, got %d", c.Trading.MaxPositionCount)
	}

	if c.Trading.DataLoadRetries < 0 {
		return fmt.Errorf("DATA_LOAD_RETRIES cannot be negative, got %d", c.Trading.DataLoadRetries)
	}

	if c.Trading.DataLoadRetries > 10 {
		return fmt.Errorf("DATA_LOAD_RETRIES should not exceed 10, got %d", c.Trading.DataLoadRetries)
	}

	if c.Trading.LiveSleep <= 0 {
		return fmt.Errorf("LIVE_SLEEP must be positive, got %v", c.Trading.LiveSleep)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
