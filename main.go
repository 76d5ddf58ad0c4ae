package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"solarfleet/internal/auth"
	masterdatarepo "solarfleet/internal/masterdata/infrastructure/postgres"
	"solarfleet/internal/observability/metrics"
	readingsrepo "solarfleet/internal/readings/infrastructure/postgres"
	"solarfleet/internal/report/application"
	reporthttp "solarfleet/internal/report/interfaces/http"
	statusws "solarfleet/internal/status/interfaces/ws"
	target "solarfleet/internal/target/domain"
	targetfile "solarfleet/internal/target/infrastructure/file"
	targetrepo "solarfleet/internal/target/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Fatalf("timezone error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	plantRepo := masterdatarepo.NewPlantRepository(db)
	inverterRepo := masterdatarepo.NewInverterRepository(db)
	readingQuery := readingsrepo.NewReadingQuery(db, readingsrepo.WithRowCap(cfg.ReadingRowCap))

	resolverCfg, formulaProfiles, err := target.LoadResolverConfig(cfg.TargetsConfig)
	if err != nil {
		logger.Fatalf("target config error: %v", err)
	}
	resolver, err := target.NewProfileResolver(resolverCfg)
	if err != nil {
		logger.Fatalf("profile resolver error: %v", err)
	}

	var source target.TargetSource
	switch cfg.TargetSource {
	case "formula":
		source = target.NewFormulaSource(formulaProfiles)
	case "file":
		fileSource, err := targetfile.Load(cfg.TargetsFile)
		if err != nil {
			logger.Fatalf("target file error: %v", err)
		}
		source = fileSource
	default:
		source = targetrepo.NewTargetRepository(db)
	}

	periodTargets, err := target.NewPeriodTargetService(resolver, source)
	if err != nil {
		logger.Fatalf("period target service error: %v", err)
	}

	performance, err := application.NewPerformanceService(
		plantRepo,
		inverterRepo,
		readingQuery,
		periodTargets,
		loc,
		application.SystemClock{},
	)
	if err != nil {
		logger.Fatalf("performance service error: %v", err)
	}

	statusHub := statusws.NewHub(logger)
	statusFeeder := statusws.NewFeeder(statusHub, performance, cfg.StatusFeedInterval, logger)
	go statusFeeder.Run(context.Background())
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.SetStatusFeedClients(statusHub.ClientCount())
		}
	}()

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/performance", reporthttp.NewPerformanceHandler(performance, loc))
	mux.Handle("/api/v1/power-curve", reporthttp.NewPowerCurveHandler(performance, loc))
	mux.Handle("/api/v1/compare-days", reporthttp.NewCompareDaysHandler(performance, loc))
	mux.Handle("/api/v1/status", reporthttp.NewStatusHandler(performance))
	mux.Handle("/api/v1/status/live", statusws.NewHandler(statusHub, logger))
	mux.Handle("/api/v1/exports/performance.xlsx", reporthttp.NewExportPerformanceHandler(performance, loc, "xlsx"))
	mux.Handle("/api/v1/exports/performance.pdf", reporthttp.NewExportPerformanceHandler(performance, loc, "pdf"))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL        string
	HTTPAddr           string
	DisplayTimezone    string
	ReadingRowCap      int
	TargetSource       string
	TargetsFile        string
	TargetsConfig      string
	JWTSecret          string
	StatusFeedInterval time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		DisplayTimezone:    getenvDefault("DISPLAY_TIMEZONE", "America/Sao_Paulo"),
		ReadingRowCap:      getenvIntDefault("READING_ROW_CAP", 500000),
		TargetSource:       getenvDefault("TARGET_SOURCE", "db"),
		TargetsFile:        getenvDefault("TARGETS_FILE", ""),
		TargetsConfig:      getenvDefault("TARGETS_CONFIG", ""),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		StatusFeedInterval: getenvDuration("STATUS_FEED_INTERVAL", time.Minute),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	if cfg.TargetSource == "file" && cfg.TargetsFile == "" {
		log.Fatal("TARGETS_FILE is required when TARGET_SOURCE=file")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
