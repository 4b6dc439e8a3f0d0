package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/foodapp/pkg/cache"
	"github.com/Sternrassler/foodapp/pkg/config"
	"github.com/Sternrassler/foodapp/pkg/logging"
	"github.com/Sternrassler/foodapp/pkg/metrics"
	"github.com/Sternrassler/foodapp/pkg/service"
	"github.com/Sternrassler/foodapp/pkg/store"
	"github.com/Sternrassler/foodapp/pkg/sweeper"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(getEnv("FOODAPP_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("foodapp stopped with error")
	}
}

// run serves until ctx is done, then stops the sweeper, the HTTP server and
// the cache backend in that order.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	backend, closeBackend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	manager := cache.NewManager(backend, logging.NewLogger(logging.ComponentCache))
	services := service.New(newMemoryStores(), manager, logging.NewLogger(logging.ComponentService))

	if err := services.Users.Warm(ctx); err != nil {
		logger.Warn().Err(err).Msg("User cache warm-up failed")
	}

	sup, err := newSweeper(manager, cfg)
	if err != nil {
		return err
	}
	sup.Start()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newMux(cfg.Cache.Backend, sup),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("backend", cfg.Cache.Backend).Msg("Starting foodapp")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := sup.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Sweeper did not stop cleanly")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server did not stop cleanly")
	}
	return runErr
}

// newBackend builds the configured cache backend. The returned close func
// is always safe to call.
func newBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Backend, func(), error) {
	if cfg.Cache.Backend != config.BackendRedis {
		return cache.NewMemoryBackend(cfg.Cache.MaxEntriesPerRegion, cache.Regions()...), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := cache.ConnectRedis(ctx, redisClient, cfg.Redis.Connect(), logger); err != nil {
		redisClient.Close()
		return nil, func() {}, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("Connected to Redis")

	closeClient := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	return cache.NewRedisBackend(redisClient, cfg.Cache.KeyPrefix), closeClient, nil
}

func newMemoryStores() service.Stores {
	foods := store.NewFoods()
	orders := store.NewOrders()
	return service.Stores{
		Foods:       foods,
		Restaurants: store.NewRestaurants(),
		Orders:      orders,
		Users:       store.NewUsers(),
		Menu:        store.NewMemoryMenu(foods),
		OrderIndex:  orders,
	}
}

func newSweeper(manager *cache.Manager, cfg *config.Config) (*sweeper.Supervisor, error) {
	loc, err := cfg.Sweep.Loc()
	if err != nil {
		return nil, err
	}
	jobs, err := sweeper.DefaultJobs(cfg.Sweep.Schedules())
	if err != nil {
		return nil, err
	}

	sup := sweeper.New(manager, logging.NewLogger(logging.ComponentSweeper), loc)
	for _, job := range jobs {
		if err := sup.Register(job); err != nil {
			return nil, err
		}
	}
	return sup, nil
}

func newMux(backend string, sup *sweeper.Supervisor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(backend, sup))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

type healthResponse struct {
	Status  string      `json:"status"`
	Backend string      `json:"backend"`
	Sweeps  []sweepInfo `json:"sweeps"`
}

type sweepInfo struct {
	Job  string    `json:"job"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev"`
}

func healthHandler(backend string, sup *sweeper.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Backend: backend}
		for _, j := range sup.Jobs() {
			resp.Sweeps = append(resp.Sweeps, sweepInfo{Job: j.Name, Next: j.Next, Prev: j.Prev})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write health response")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
