package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/tibkiss/huba-v1/internal/api"
	"github.com/tibkiss/huba-v1/internal/bot"
	"github.com/tibkiss/huba-v1/internal/broker"
	"github.com/tibkiss/huba-v1/internal/config"
	"github.com/tibkiss/huba-v1/internal/marketdata"
	"github.com/tibkiss/huba-v1/internal/models"
	"github.com/tibkiss/huba-v1/internal/repository"
	"github.com/tibkiss/huba-v1/internal/websocket"
	"github.com/tibkiss/huba-v1/pkg/crypto"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

const dateLayout = "2006-01-02"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: huba <command> [flags]

Commands:
  backtest   прогнать стратегии на исторических данных
  live       торговый цикл с HTTP дашбордом
  sweep      параллельный прогон нескольких конфигураций
  hash-pass  сгенерировать bcrypt-хэш для API_AUTH_PASS_HASH

Run 'huba <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		runBacktest(os.Args[2:])
	case "live":
		runLive(os.Args[2:])
	case "sweep":
		runSweep(os.Args[2:])
	case "hash-pass":
		runHashPass(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

// loadConfig загружает конфигурацию и инициализирует глобальный логгер
func loadConfig() (*config.Config, *utils.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	return cfg, log
}

func parseDate(log *utils.Logger, name, value string) time.Time {
	ts, err := time.ParseInLocation(dateLayout, value, utils.MarketLocation())
	if err != nil {
		log.Fatalf("Invalid -%s date %q, expected YYYY-MM-DD", name, value)
	}
	return ts
}

func parseFrequency(log *utils.Logger, value string) models.Frequency {
	switch value {
	case "day":
		return models.FrequencyDay
	case "minute":
		return models.FrequencyMinute
	default:
		log.Fatalf("Invalid -freq %q, expected day or minute", value)
		return ""
	}
}

// instrumentsOf собирает уникальные инструменты запуска
func instrumentsOf(rc *config.RunConfig) []string {
	seen := make(map[string]bool)
	var instruments []string
	for _, pair := range rc.PairList() {
		for _, leg := range []string{pair.Leg0, pair.Leg1} {
			if !seen[leg] {
				seen[leg] = true
				instruments = append(instruments, leg)
			}
		}
	}
	return instruments
}

func loadCalendar(path string, log *utils.Logger) broker.Calendar {
	if path == "" {
		return broker.NopCalendar{}
	}
	calendar, err := broker.LoadJSONCalendar(path)
	if err != nil {
		log.Fatalf("Failed to load earnings calendar %s: %v", path, err)
	}
	return calendar
}

// buildAgent собирает оркестратор бэктест-запуска
func buildAgent(cfg *config.Config, rc *config.RunConfig, from, to time.Time,
	freq models.Frequency, calendar broker.Calendar, live bool,
	sink bot.ResultSink, log *utils.Logger) (*bot.Agent, *bot.RiskManager, error) {

	store := marketdata.NewCSVStore(cfg.Trading.CacheDir, nil, cfg.Trading.DataLoadRetries, log)
	feed, err := marketdata.NewBacktestFeed(store, instrumentsOf(rc), from, to, freq, log)
	if err != nil {
		return nil, nil, err
	}

	commission := bot.FixedPlusPerShare{
		Fixed:    cfg.Trading.CommissionFixed,
		PerShare: cfg.Trading.CommissionPerShr,
	}
	venue := broker.NewBacktestBroker(cfg.Trading.TradeCapital, commission, log)
	feed.Attach(venue)

	risk := bot.NewRiskManager(cfg.Trading.TradeCapital, cfg.Trading.Leverage,
		cfg.Trading.MaxPositionCount, 2, commission)

	agentCfg := bot.AgentConfig{Live: live, LiveSleep: cfg.Trading.LiveSleep}
	agent := bot.NewAgent(agentCfg, rc, feed, venue, calendar, risk, sink, log)
	return agent, risk, nil
}

// openSink выбирает приёмник результатов: БД, если включена, иначе файлы
func openSink(cfg *config.Config, tag string, log *utils.Logger) (bot.ResultSink, func(), *repository.ResultStore) {
	if cfg.Database.Enabled {
		db, err := repository.Connect(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := repository.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Info("Connected to database",
			utils.String("dsn", cfg.Database.DSNWithoutPassword()))

		store := repository.NewResultStore(db)
		return store, func() { db.Close() }, store
	}

	sink, err := repository.NewFileSink(cfg.Trading.ResultDir, tag)
	if err != nil {
		log.Fatalf("Failed to create result sink: %v", err)
	}
	log.Info("Writing results to files",
		utils.String("dir", cfg.Trading.ResultDir), utils.String("tag", tag))
	return sink, func() {
		if err := sink.Close(); err != nil {
			log.Errorf("Failed to close result sink: %v", err)
		}
	}, nil
}

// ============================================================
// backtest
// ============================================================

func runBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	runConfigPath := fs.String("run-config", "", "путь к JSON конфигурации запуска (обязательно)")
	fromStr := fs.String("from", "", "начало периода, YYYY-MM-DD (обязательно)")
	toStr := fs.String("to", "", "конец периода, YYYY-MM-DD (обязательно)")
	freqStr := fs.String("freq", "minute", "частота баров: day | minute")
	calendarPath := fs.String("calendar", "", "JSON календарь отчётности (опционально)")
	tag := fs.String("tag", "", "тег файлов результатов (по умолчанию backtest-<время>)")
	fs.Parse(args)

	cfg, log := loadConfig()
	defer log.Sync()

	if *runConfigPath == "" || *fromStr == "" || *toStr == "" {
		log.Fatalf("backtest requires -run-config, -from and -to")
	}

	rc, err := config.LoadRunConfig(*runConfigPath)
	if err != nil {
		log.Fatalf("Failed to load run config: %v", err)
	}

	from := parseDate(log, "from", *fromStr)
	to := parseDate(log, "to", *toStr).AddDate(0, 0, 1) // включительно
	freq := parseFrequency(log, *freqStr)
	calendar := loadCalendar(*calendarPath, log)

	if *tag == "" {
		*tag = "backtest-" + time.Now().Format("20060102T150405")
	}
	sink, closeSink, _ := openSink(cfg, *tag, log)
	defer closeSink()

	agent, risk, err := buildAgent(cfg, rc, from, to, freq, calendar, false, sink, log)
	if err != nil {
		log.Fatalf("Failed to assemble backtest: %v", err)
	}

	start := time.Now()
	if err := agent.Run(); err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	log.Info("Backtest finished",
		utils.Int("pairs", len(rc.Pairs)),
		utils.Float64("trade_capital", risk.GetTradeCapital()),
		utils.String("duration", time.Since(start).Round(time.Millisecond).String()))
}

// ============================================================
// live
// ============================================================

func runLive(args []string) {
	fs := flag.NewFlagSet("live", flag.ExitOnError)
	runConfigPath := fs.String("run-config", "", "путь к JSON конфигурации запуска (обязательно)")
	calendarPath := fs.String("calendar", "", "JSON календарь отчётности (опционально)")
	freqStr := fs.String("freq", "minute", "частота баров: day | minute")
	fs.Parse(args)

	cfg, log := loadConfig()
	defer log.Sync()

	if *runConfigPath == "" {
		log.Fatalf("live requires -run-config")
	}

	rc, err := config.LoadRunConfig(*runConfigPath)
	if err != nil {
		log.Fatalf("Failed to load run config: %v", err)
	}

	freq := parseFrequency(log, *freqStr)
	calendar := loadCalendar(*calendarPath, log)

	// Live-запуск читает данные с сегодняшнего warmup-горизонта
	now := time.Now().In(utils.MarketLocation())
	from := now.AddDate(0, 0, -(rc.Defaults.Lookback*2 + 7))
	to := now.AddDate(0, 0, 1)

	tag := "live-" + now.Format("20060102T150405")
	sink, closeSink, store := openSink(cfg, tag, log)
	defer closeSink()

	agent, risk, err := buildAgent(cfg, rc, from, to, freq, calendar, true, sink, log)
	if err != nil {
		log.Fatalf("Failed to assemble live run: %v", err)
	}

	// WebSocket hub для real-time обновлений дашборда
	hub := websocket.NewHub(log)
	go hub.Run()
	agent.SetNotifier(hub)

	router := api.SetupRoutes(&api.Dependencies{
		Agent:        agent,
		Risk:         risk,
		Store:        store,
		Hub:          hub,
		Log:          log,
		Mode:         "live",
		AuthUser:     cfg.Server.AuthUser,
		AuthPassHash: cfg.Server.AuthPassHash,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Dashboard server started", utils.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Торговый цикл в отдельной горутине: main ждёт сигнала или конца сессии
	agentDone := make(chan error, 1)
	go func() { agentDone <- agent.Run() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
		agent.Stop()
		<-agentDone
	case err := <-agentDone:
		if err != nil {
			log.Errorf("Trading loop failed: %v", err)
		} else {
			log.Info("Trading session ended")
		}
	}

	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Live run exited")
}

// ============================================================
// sweep
// ============================================================

func runSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	workers := fs.Int("workers", runtime.NumCPU(), "количество параллельных воркеров")
	fromStr := fs.String("from", "", "начало периода, YYYY-MM-DD (обязательно)")
	toStr := fs.String("to", "", "конец периода, YYYY-MM-DD (обязательно)")
	freqStr := fs.String("freq", "minute", "частота баров: day | minute")
	calendarPath := fs.String("calendar", "", "JSON календарь отчётности (опционально)")
	fs.Parse(args)

	cfg, log := loadConfig()
	defer log.Sync()

	if *fromStr == "" || *toStr == "" || fs.NArg() == 0 {
		log.Fatalf("sweep requires -from, -to and at least one run config path")
	}

	from := parseDate(log, "from", *fromStr)
	to := parseDate(log, "to", *toStr).AddDate(0, 0, 1)
	freq := parseFrequency(log, *freqStr)
	calendar := loadCalendar(*calendarPath, log)

	var variants []bot.SweepVariant
	for _, path := range fs.Args() {
		rc, err := config.LoadRunConfig(path)
		if err != nil {
			log.Fatalf("Failed to load run config %s: %v", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		variants = append(variants, bot.SweepVariant{Name: name, RunConfig: rc})
	}

	// Каждый вариант пишет в свои файлы: параллельные записи не пересекаются
	newSink := func(tag string) (bot.ResultSink, func() error, error) {
		sink, err := repository.NewFileSink(cfg.Trading.ResultDir, tag)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil
	}

	newAgent := func(v bot.SweepVariant, sink bot.ResultSink) (*bot.Agent, error) {
		agent, _, err := buildAgent(cfg, v.RunConfig, from, to, freq, calendar, false, sink, log)
		return agent, err
	}

	results := bot.RunSweep(variants, *workers, newSink, newAgent, log)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Errorf("Variant %s failed: %v", r.Variant, r.Err)
		}
	}
	if failed > 0 {
		log.Fatalf("Sweep finished with %d failed variants", failed)
	}
}

// ============================================================
// hash-pass
// ============================================================

func runHashPass(args []string) {
	fs := flag.NewFlagSet("hash-pass", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: huba hash-pass <password>")
		os.Exit(2)
	}

	hash, err := crypto.HashPassword(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API_AUTH_PASS_HASH=%s\n", hash)
}
