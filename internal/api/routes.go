package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tibkiss/huba-v1/internal/api/handlers"
	"github.com/tibkiss/huba-v1/internal/api/middleware"
	"github.com/tibkiss/huba-v1/internal/bot"
	"github.com/tibkiss/huba-v1/internal/repository"
	"github.com/tibkiss/huba-v1/internal/websocket"
	"github.com/tibkiss/huba-v1/pkg/ratelimit"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers.
// Store и Hub опциональны: без БД data endpoints отвечают 503,
// без Hub не регистрируется /ws.
type Dependencies struct {
	Agent *bot.Agent
	Risk  *bot.RiskManager
	Store *repository.ResultStore
	Hub   *websocket.Hub
	Log   *utils.Logger

	Mode         string // "live" или "backtest"
	AuthUser     string
	AuthPassHash string
}

// SetupRoutes настраивает все HTTP маршруты live-дашборда
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /status - режим, uptime, капитал, позиции
//	├── /pairs - снимок состояния всех пар
//	├── /pairs/{leg0}/{leg1} - снимок одной пары
//	├── /trades?limit=N - последние закрытые сделки
//	├── /trades/summary?pair= - суммарный профит пары
//	├── /roi?pair=&from=&to= - дневные доходности
//	├── /roi/average?pair= - средняя дневная доходность
//	├── /equity?from=&to= - кривая капитала
//	└── /equity/latest - последняя точка капитала
//
// /ws - WebSocket поток real-time обновлений
// /metrics - Prometheus метрики
// /health - liveness проверка
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. BasicAuth (только /api/v1, если настроен)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.Logging(deps.Log))
	router.Use(middleware.CORS)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Bruteforce по Basic Auth душится лимитером: bcrypt дорог
	authLimiter := ratelimit.NewRateLimiter(5, 10)
	api.Use(middleware.BasicAuth(deps.AuthUser, deps.AuthPassHash, authLimiter, deps.Log))

	// Интерфейсные поля заполняются только ненулевыми указателями,
	// иначе проверка на nil внутри handler не сработает
	var clients handlers.ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}
	var account handlers.AccountInfo
	if deps.Risk != nil {
		account = deps.Risk
	}

	statusHandler := handlers.NewStatusHandler(deps.Mode, account, clients)
	api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")

	var pairs handlers.PairStatusProvider
	if deps.Agent != nil {
		pairs = deps.Agent
	}
	pairsHandler := handlers.NewPairsHandler(pairs)
	api.HandleFunc("/pairs", pairsHandler.GetPairs).Methods("GET")
	api.HandleFunc("/pairs/{leg0}/{leg1}", pairsHandler.GetPair).Methods("GET")

	// Data endpoints работают только с БД; без неё отвечают 503
	var tradesHandler *handlers.TradesHandler
	var resultsHandler *handlers.ResultsHandler
	if deps.Store != nil {
		tradesHandler = handlers.NewTradesHandler(deps.Store.Trades())
		resultsHandler = handlers.NewResultsHandler(deps.Store.ROI(), deps.Store.Equity())
	} else {
		tradesHandler = handlers.NewTradesHandler(nil)
		resultsHandler = handlers.NewResultsHandler(nil, nil)
	}

	api.HandleFunc("/trades", tradesHandler.GetTrades).Methods("GET")
	api.HandleFunc("/trades/summary", tradesHandler.GetSummary).Methods("GET")
	api.HandleFunc("/roi", resultsHandler.GetROI).Methods("GET")
	api.HandleFunc("/roi/average", resultsHandler.GetAverageROI).Methods("GET")
	api.HandleFunc("/equity", resultsHandler.GetEquity).Methods("GET")
	api.HandleFunc("/equity/latest", resultsHandler.GetLatestEquity).Methods("GET")

	// WebSocket route
	if deps.Hub != nil {
		router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
