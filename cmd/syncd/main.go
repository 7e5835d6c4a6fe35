package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campus-sync/internal/api"
	"campus-sync/internal/config"
	"campus-sync/internal/connectivity"
	"campus-sync/internal/logger"
	"campus-sync/internal/remote"
	"campus-sync/internal/repo"
	"campus-sync/internal/store"
	"campus-sync/internal/sync"
)

func main() {
	// Load Config
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Init Logger
	if err := logger.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("Starting campus sync service")

	// Init Durable Store
	st, err := store.NewSQLiteStore(cfg.Store)
	if err != nil {
		logger.Log.Fatal("Failed to open durable store", zap.Error(err))
	}
	defer st.Close()

	// Remote Gateway
	gateway := remote.NewClient(cfg.Remote)

	// Connectivity Monitor
	monitor := connectivity.NewMonitor(cfg.Connectivity)
	monitor.Start()
	defer monitor.Stop()

	// Repositories
	studentRepo := repo.NewStudentRepository(st, gateway, monitor)
	teacherRepo := repo.NewTeacherRepository(st, gateway, monitor, "")

	// Sync Coordinator + Scheduler
	coordinator := sync.NewCoordinator(st, gateway, monitor, sync.NewRetryPolicy(cfg.Sync), studentRepo, teacherRepo)
	coordinator.Start()
	defer coordinator.Stop()

	scheduler := sync.NewScheduler(cfg.Sync.Scheduler, coordinator)
	scheduler.Start()
	defer scheduler.Stop()

	// Diagnostics API
	handler := api.NewHandler(cfg.Server, coordinator, st)
	router := handler.Routes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		logger.Log.Info("Diagnostics server listening", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
}
