package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/aliranalvi/bond-wise-insight/src/config"
	"github.com/aliranalvi/bond-wise-insight/src/handlers"
	"github.com/aliranalvi/bond-wise-insight/src/logger"
	"github.com/aliranalvi/bond-wise-insight/src/parsers"
	"github.com/aliranalvi/bond-wise-insight/src/processors"
	"github.com/aliranalvi/bond-wise-insight/src/services"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Session-ID, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Bond portfolio backend server starting...")

	logger.L.Info("Initializing caches...")
	sessionStore := cache.New(config.Cfg.SessionTTL, config.Cfg.SessionSweepInterval)
	reportCache := cache.New(config.Cfg.ReportCacheTTL, 2*config.Cfg.ReportCacheTTL)
	logger.L.Info("Caches initialized.", "sessionTTL", config.Cfg.SessionTTL, "reportCacheTTL", config.Cfg.ReportCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	workbookReader := parsers.NewXLSXReader()
	pivotProcessor := processors.NewPivotProcessor()
	reconProcessor := processors.NewReconciliationProcessor()
	interestProcessor := processors.NewInterestProcessor()

	uploadService := services.NewUploadService(
		workbookReader, pivotProcessor, reconProcessor, interestProcessor,
		sessionStore, reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(uploadService)
	portfolioHandler := handlers.NewPortfolioHandler(uploadService)
	bondHandler := handlers.NewBondHandler(uploadService)
	recordsHandler := handlers.NewRecordsHandler(uploadService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiRouter.HandleFunc("GET /api/portfolio/pivot", portfolioHandler.HandleGetPivot)
	apiRouter.HandleFunc("GET /api/portfolio/summary", portfolioHandler.HandleGetSummary)
	apiRouter.HandleFunc("GET /api/bonds", bondHandler.HandleGetBonds)
	apiRouter.HandleFunc("GET /api/bonds/issuers", bondHandler.HandleGetIssuers)
	apiRouter.HandleFunc("GET /api/bonds/schedule", bondHandler.HandleGetSchedule)
	apiRouter.HandleFunc("GET /api/bonds/missed-interest", bondHandler.HandleGetMissedInterest)
	apiRouter.HandleFunc("GET /api/records", recordsHandler.HandleGetRecords)
	apiRouter.HandleFunc("DELETE /api/session", recordsHandler.HandleClearSession)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Bond portfolio backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
