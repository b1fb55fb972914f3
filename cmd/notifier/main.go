package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dariomolina/cintelink-challenge/internal/api"
	"github.com/dariomolina/cintelink-challenge/internal/auth"
	"github.com/dariomolina/cintelink-challenge/internal/fanout"
	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/session"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/broadcast"
	"github.com/dariomolina/cintelink-challenge/pkg/config"
	"github.com/dariomolina/cintelink-challenge/pkg/httpserver"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
	"github.com/dariomolina/cintelink-challenge/pkg/pg"
	"github.com/dariomolina/cintelink-challenge/pkg/redis"
)

type appConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"notifier"`
	BusBackend  string `env:"BUS_BACKEND" envDefault:"memory"`       // memory | redis
	BusBuffer   int    `env:"BUS_BUFFER" envDefault:"16"`            // per-session event buffer
	BusPrefix   string `env:"BUS_CHANNEL_PREFIX" envDefault:"ntf:"`  // redis channel namespace
	AutoMigrate bool   `env:"PG_AUTO_MIGRATE" envDefault:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		appCfg     appConfig
		logCfg     logger.Config
		pgCfg      pg.Config
		httpCfg    httpserver.Config
		sessionCfg session.Config
		authCfg    auth.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&authCfg)

	log := logger.NewFromConfig(logCfg, appCfg.ServiceName)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.Error("database connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if appCfg.AutoMigrate {
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			log.Error("migrations failed", logger.Error(err))
			os.Exit(1)
		}
	}

	records := store.NewPostgres(pool)

	var bus broadcast.Bus[notification.Event]
	switch appCfg.BusBackend {
	case "redis":
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		bus = broadcast.NewRedisBus[notification.Event](
			client, appCfg.BusPrefix, appCfg.BusBuffer,
			broadcast.WithRedisBusLogger[notification.Event](log),
		)
	default:
		bus = broadcast.NewMemoryBus[notification.Event](appCfg.BusBuffer)
	}
	defer func() { _ = bus.Close() }()

	verifier, err := auth.New(authCfg)
	if err != nil {
		log.Error("verifier setup failed", logger.Error(err))
		os.Exit(1)
	}

	engine := fanout.New(records, bus, fanout.WithLogger(log))
	wsHandler := session.NewHandler(sessionCfg, verifier, records, bus, log)
	router := api.Router(engine, records, verifier, wsHandler, log)

	srv := httpserver.New(httpCfg, log)
	if err := srv.Run(ctx, router); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}
