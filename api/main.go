package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-app/internal/config"
	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-app/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-app/internal/http/router"
	"github.com/rogerio-castellano/inventory-app/internal/logging"
	"github.com/rogerio-castellano/inventory-app/internal/notify"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

// @title Inventory API
// @version 1.0
// @description REST API for a single-table product inventory with change notifications.
// @host localhost:8080
// @BasePath /
func main() {
	configFile := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := db.NewEngine(db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if _, err := engine.Open(ctx); err != nil {
		log.WithError(err).Fatal("could not open database")
	}
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	var rdb *redis.Client

	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("could not connect to Redis")
		}

		relay := notify.NewRedisRelay(rdb, cfg.Redis.Channel, hub, log)
		notifier = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("change relay stopped")
			}
		}()
		log.WithField("channel", cfg.Redis.Channel).Info("relaying changes through Redis")
	}

	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.RunCleanup(ctx)

	h := handlers.New(handlers.Config{
		Products:  repo.NewSQLProductRepository(engine, notifier),
		Metrics:   repo.NewSQLMetricsRepository(engine),
		Hub:       hub,
		Storage:   engine,
		Logger:    log,
		SeedCount: cfg.Seed.Count,
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router.NewRouter(h, router.Options{Logger: log, Limiter: limiter}),
		// request contexts end with ctx so open event streams close on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// the store and Redis close only after the server has drained
			"http-server": func(ctx context.Context) error {
				cancel()
				err := srv.Shutdown(ctx)
				if rdb != nil {
					err = errors.Join(err, rdb.Close())
				}
				return errors.Join(err, engine.Close())
			},
		},
	)

	exitCode := <-wait
	log.WithField("code", exitCode).Info("server stopped")
	os.Exit(exitCode)
}
