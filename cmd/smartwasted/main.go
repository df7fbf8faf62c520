package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"smartwaste-backend/config"
	"smartwaste-backend/internal/api"
	"smartwaste-backend/internal/db"
	"smartwaste-backend/internal/live"
	"smartwaste-backend/internal/model"
	"smartwaste-backend/internal/mw"
	"smartwaste-backend/internal/notification"
	"smartwaste-backend/internal/simulator"
	"smartwaste-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "smartwaste ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, using process environment")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Printf("no configuration at %s, using defaults", configPath)
		cfg = config.Default()
	case err != nil:
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	default:
		logger.Printf("configuration loaded successfully from %s", configPath)
	}
	cfg.ApplyEnv()

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snapshots store.SnapshotRepository
	if cfg.Database.PersistState {
		snapshots = store.NewGormSnapshotRepository(gormDB)
	}

	state, err := loadState(ctx, cfg, snapshots, logger)
	if err != nil {
		logger.Fatalf("failed to initialize state: %v", err)
	}

	hub := live.NewHub()
	go hub.Run(ctx)

	// Push notifications are optional
	var webpushOptions *webpush.Options
	var dispatcher notification.Dispatcher
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		dispatcher = pool
		logger.Printf("push notifications enabled with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; critical bins will only be logged")
	}
	alerter := notification.NewAlerter(state.Settings(), dispatcher, cfg.Alerts.Cooldown)

	responseCache := mw.NewResponseCache(cfg.Server.CacheTTL)

	sim := simulator.NewService(cfg.Simulator, state.Bins())
	sim.OnTick(func(_ context.Context, tick simulator.Tick) {
		responseCache.Flush()
		hub.Publish(live.TypeBins, model.ViewBins(tick.After, state.Settings().Get().CriticalFillPercent))
	})
	sim.OnTick(alerter.OnTick)
	if snapshots != nil {
		sim.OnTick(func(ctx context.Context, _ simulator.Tick) {
			if err := snapshots.Save(ctx, state.Snapshot()); err != nil {
				logger.Printf("failed to persist state: %v", err)
			}
		})
	}
	sim.Start(ctx)

	// Initialize router
	handler := api.NewHandler(state, gormDB, hub, webpushOptions)
	router := api.NewRouter(handler, cfg.Server, responseCache, hub.Serve)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("SmartWaste backend running at http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	sim.Stop()

	if snapshots != nil {
		if err := snapshots.Save(shutdownCtx, state.Snapshot()); err != nil {
			logger.Printf("failed to persist state on shutdown: %v", err)
		} else {
			logger.Println("state persisted")
		}
	}
	cancel()

	logger.Println("Server gracefully stopped")
}

// loadState restores the last persisted state, or builds a fresh one from the
// configured seed and initial settings.
func loadState(ctx context.Context, cfg *config.Config, snapshots store.SnapshotRepository, logger *log.Logger) (*store.State, error) {
	if snapshots != nil {
		snap, found, err := snapshots.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		if found {
			logger.Printf("restored %d bins and %d schedules", len(snap.Bins), len(snap.Schedules))
			return store.New(snap)
		}
	}

	today := time.Now().Format("2006-01-02")
	seed := store.DefaultSeed(today)
	if len(cfg.Seed.Bins) > 0 {
		seed.Bins, seed.Schedules = cfg.Seed.Model(today)
	}

	state, err := store.New(seed)
	if err != nil {
		return nil, err
	}
	state.Settings().Update(cfg.Settings.Patch())
	logger.Printf("seeded %d bins and %d schedules", len(seed.Bins), len(seed.Schedules))
	return state, nil
}
