package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/ipinfo/go/v2/ipinfo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/cyclingcoach/internal/activities"
	"github.com/2beens/cyclingcoach/internal/config"
	"github.com/2beens/cyclingcoach/internal/db"
	"github.com/2beens/cyclingcoach/internal/geoip"
	"github.com/2beens/cyclingcoach/internal/memories"
	"github.com/2beens/cyclingcoach/internal/middleware"
	"github.com/2beens/cyclingcoach/internal/schedule"
	"github.com/2beens/cyclingcoach/internal/stats"
	statsmcp "github.com/2beens/cyclingcoach/internal/stats/mcp"
	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/internal/weather"
	"github.com/2beens/cyclingcoach/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	toolSecret        string // shared with the voice agent webhooks and MCP clients

	config     *config.Config
	dbPool     *pgxpool.Pool
	db         db.Conn
	geoIp      *geoip.Api
	weatherApi *weather.Api

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	DBPassword              string
	RedisPassword           string
	ToolSecret              string
	IpInfoAPIKey            string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.DBHost,
		DBPort:         params.Config.DBPort,
		DBName:         params.Config.DBName,
		DBUser:         params.Config.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.DBName},
	)
	promRegistry, err := metrics.NewRegistry(pgxpoolCollector)
	if err != nil {
		return nil, fmt.Errorf("metrics registry: %w", err)
	}
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "cycling-coach-backend", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   15 * time.Second,
	}

	s := &Server{
		config:     params.Config,
		dbPool:     dbPool,
		db:         dbPool,
		toolSecret: params.ToolSecret,
		geoIp: geoip.NewApi(
			ipinfo.NewClient(tracedHttpClient, nil, params.IpInfoAPIKey),
			rdb,
		),
		weatherApi: weather.NewApi(weather.NewApiParams{
			OpenMeteoBaseURL:     params.Config.OpenMeteoBaseURL,
			SunriseSunsetBaseURL: params.Config.SunriseSunsetBaseURL,
			OpenAQBaseURL:        params.Config.OpenAQBaseURL,
			HTTPClient:           tracedHttpClient,
			Backoff:              weather.DefaultBackoff,
			MetricsManager:       metricsManager,
		}),

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", handleRoot).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/temp/health", handleHealth).Methods("GET", "OPTIONS").Name("health")
	r.HandleFunc("/temp/health/", handleHealth).Methods("GET", "OPTIONS").Name("health-slash")

	activitiesRepo := activities.NewRepo(s.db)
	analyzer := stats.NewAnalyzer(activitiesRepo, s.metricsManager)

	statsHandler := stats.NewHandler(analyzer)
	r.HandleFunc("/stats/summary", statsHandler.HandleSummary).Methods("GET", "OPTIONS").Name("stats-summary")
	r.HandleFunc("/stats/weekly", statsHandler.HandleWeekly).Methods("GET", "OPTIONS").Name("stats-weekly")
	r.HandleFunc("/stats/daily", statsHandler.HandleDaily).Methods("GET", "OPTIONS").Name("stats-daily")
	r.HandleFunc("/stats/overtraining", statsHandler.HandleOvertraining).Methods("GET", "OPTIONS").Name("stats-overtraining")
	r.HandleFunc("/stats/workload_score", statsHandler.HandleWorkloadScore).Methods("GET", "OPTIONS").Name("stats-workload-score")
	r.HandleFunc("/stats/vo2max_trend", statsHandler.HandleVo2maxTrend).Methods("GET", "OPTIONS").Name("stats-vo2max-trend")
	r.HandleFunc("/stats/climb_metrics", statsHandler.HandleClimbMetrics).Methods("GET", "OPTIONS").Name("stats-climb-metrics")
	r.HandleFunc("/stats/top_rides", statsHandler.HandleTopRides).Methods("GET", "OPTIONS").Name("stats-top-rides")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	activitiesHandler := activities.NewHandler(activitiesRepo, s.metricsManager)
	toolsRouter := r.PathPrefix("/api/tools").Subrouter()
	toolsRouter.HandleFunc("/load_cycling_activities", activitiesHandler.HandleLoadActivities).Methods("POST", "OPTIONS").Name("tools-load-activities")
	toolsRouter.HandleFunc("/create_cycling_activity", activitiesHandler.HandleCreateActivity).Methods("POST", "OPTIONS").Name("tools-create-activity")
	toolsRouter.Use(middleware.RateLimit(reqRateLimiter, "tools", s.config.ToolsRateLimitPerMinute, s.metricsManager))

	memoriesHandler := memories.NewHandler(memories.NewRepo(s.db), s.metricsManager)
	r.HandleFunc("/memories", memoriesHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-memory")
	r.HandleFunc("/memories", memoriesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-memories")
	r.HandleFunc("/memories", memoriesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-memory")

	scheduleHandler := schedule.NewHandler(schedule.NewRepo(s.db))
	r.HandleFunc("/schedule/intervals", scheduleHandler.HandleList).Methods("GET", "OPTIONS").Name("list-intervals")
	r.HandleFunc("/schedule/intervals", scheduleHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-interval")
	r.HandleFunc("/schedule/intervals", scheduleHandler.HandleUpdate).Methods("PATCH", "OPTIONS").Name("update-interval")
	r.HandleFunc("/schedule/intervals", scheduleHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-interval")

	weatherHandler := weather.NewHandler(s.weatherApi, s.geoIp)
	r.HandleFunc("/weather/by_time", weatherHandler.HandleByTime).Methods("GET", "OPTIONS").Name("weather-by-time")
	r.HandleFunc("/weather/daylight", weatherHandler.HandleDaylight).Methods("GET", "OPTIONS").Name("weather-daylight")
	r.HandleFunc("/weather/air_quality", weatherHandler.HandleAirQuality).Methods("GET", "OPTIONS").Name("weather-air-quality")
	r.HandleFunc("/weather/location", weatherHandler.HandleLocation).Methods("GET", "OPTIONS").Name("weather-location")

	mcpServer := statsmcp.NewServer(analyzer)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{Stateless: true})
	r.PathPrefix("/mcp").Handler(mcpHandler).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS").Name("unknown")

	if s.toolSecret == "" {
		log.Warnln("tool secret not set, /api/tools and /mcp are not protected")
	}

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.ToolSecretCheck(s.toolSecret, middleware.ToolPathPrefixes...))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "cycling coach backend, all good")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, `{"info":"test check"}`)
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}
