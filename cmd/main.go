package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/emlakcrm/go-audit-api/internal/config"
	"github.com/emlakcrm/go-audit-api/internal/db"
	"github.com/emlakcrm/go-audit-api/internal/handlers"
	"github.com/emlakcrm/go-audit-api/internal/logger"
	"github.com/emlakcrm/go-audit-api/internal/middleware"
	"github.com/emlakcrm/go-audit-api/internal/repository"
	"github.com/emlakcrm/go-audit-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv)
	appLogger := logger.New(cfg.AppEnv)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Int("retention_days", cfg.RetentionDays).
		Msg("🚀 Audit API Projesi başlatıldı")

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	// Repository, Service, Handler katmanları
	auditRepo := repository.NewAuditRepository(database)
	userRepo := repository.NewUserRepository(database)

	securityService := services.NewSecurityService(auditRepo, appLogger)
	retentionService := services.NewRetentionService(auditRepo, cfg.RetentionDays, appLogger)
	userService := services.NewUserService(userRepo, securityService, appLogger)

	// Audit Queue oluştur (async request trail yazımları için)
	auditQueue := services.NewAuditQueue(cfg.AuditQueueWorkers, securityService, cfg.AuditQueueBuffer, appLogger)
	auditQueue.Start()

	securityHandler := handlers.NewSecurityHandler(securityService, retentionService)
	userHandler := handlers.NewUserHandler(userService)

	// Gorilla Mux Router Setup
	router := setupRouter(securityHandler, userHandler, auditQueue)

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Server'ı goroutine'de başlat
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("addr", serverAddr).
			Int("read_timeout", 15).
			Int("write_timeout", 15).
			Int("idle_timeout", 60).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	// Shutdown signal'ını bekle
	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	// Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat (aktif bağlantıları bekle)
	log.Info().Msg("📡 HTTP Server kapatılıyor...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Audit Queue'yu kapat (kuyruktaki kayıtlar işlensin)
	log.Info().Msg("🔄 Audit Queue kapatılıyor...")
	auditQueue.Stop()
	log.Info().Msg("✅ Audit Queue başarıyla kapatıldı")

	// 3. Database bağlantısını kapat (defer ile zaten kapatılacak)
	log.Info().Msg("🗄️  Database bağlantısı kapatılıyor...")

	log.Info().Msg("👋 Audit API başarıyla kapatıldı")
}

// setupRouter Gorilla Mux router'ını ayarlar
func setupRouter(securityHandler *handlers.SecurityHandler, userHandler *handlers.UserHandler, auditQueue *services.AuditQueue) *mux.Router {
	router := mux.NewRouter()

	// Global middleware chain
	router.Use(middleware.ErrorHandlingMiddlewareWithDefaults())
	router.Use(middleware.RequestLoggingMiddlewareWithDefaults())
	router.Use(middleware.RateLimitMiddlewareWithDefaults())
	router.Use(middleware.CORSMiddlewareWithDefaults())
	router.Use(middleware.SecurityHeadersMiddlewareWithDefaults())

	// JSON 404/405 handler'ları
	router.NotFoundHandler = middleware.NotFoundJSONHandler()
	router.MethodNotAllowedHandler = middleware.MethodNotAllowedJSONHandler()

	// Health check (public)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 subrouter
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public endpoints (Authentication)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/register", userHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", userHandler.Login).Methods("POST")
	authRoutes.HandleFunc("/refresh", userHandler.Refresh).Methods("POST")

	// Protected endpoints (Authentication required)
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.Use(middleware.AuditTrailMiddleware(auditQueue, middleware.DefaultAuditTrailConfig()))

	// Security / Audit endpoints
	security := protected.PathPrefix("/security").Subrouter()
	security.HandleFunc("/audit-log", securityHandler.CreateAuditLog).Methods("POST")
	security.HandleFunc("/audit-logs", securityHandler.GetAuditLogs).Methods("GET")

	// NOT: export {id} route'undan ÖNCE kayıt edilmeli
	exportRoute := security.PathPrefix("/audit-logs/export").Subrouter()
	exportRoute.Use(middleware.RequirePermission(middleware.PermExportAuditLogs))
	exportRoute.HandleFunc("", securityHandler.ExportAuditLogs).Methods("GET")

	security.HandleFunc("/audit-logs/{id}", securityHandler.GetAuditLogByID).Methods("GET")

	cleanupRoute := security.PathPrefix("/cleanup").Subrouter()
	cleanupRoute.Use(middleware.RequirePermission(middleware.PermPurgeAuditLogs))
	cleanupRoute.HandleFunc("", securityHandler.CleanupAuditLogs).Methods("POST")

	security.HandleFunc("/by-action/{action}", securityHandler.GetByAction).Methods("GET")
	security.HandleFunc("/by-resource/{resource}", securityHandler.GetByResource).Methods("GET")
	security.HandleFunc("/by-user/{userId}", securityHandler.GetByUser).Methods("GET")
	security.HandleFunc("/by-status/{status}", securityHandler.GetByStatus).Methods("GET")
	security.HandleFunc("/by-severity/{severity}", securityHandler.GetBySeverity).Methods("GET")

	security.HandleFunc("/stats", securityHandler.GetSecurityStats).Methods("GET")
	security.HandleFunc("/alerts", securityHandler.GetSecurityAlerts).Methods("GET")
	security.HandleFunc("/failed-logins", securityHandler.GetFailedLogins).Methods("GET")
	security.HandleFunc("/data-access", securityHandler.GetDataAccessLogs).Methods("GET")
	security.HandleFunc("/search", securityHandler.SearchAuditLogs).Methods("GET")

	// Route listesini log'la (development için)
	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("📍 Route registered")
		}
		return nil
	})

	return router
}
