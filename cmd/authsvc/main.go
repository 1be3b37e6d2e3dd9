package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	auth "github.com/VloneMe/alx-backend-user-data"
	"github.com/VloneMe/alx-backend-user-data/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "authsvc").
		Logger()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DBDSN).Msg("open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	if cfg.DBReset {
		if err := auth.ResetUserTable(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("reset schema")
		}
	} else if err := auth.CreateUserTable(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}

	// PII never reaches log output, even at debug level.
	logger := auth.NewRedactingLogger(zerologAdapter{log: log})

	store := auth.NewUserStore(db, auth.WithStoreLogger(logger))

	auther := auth.NewAuthenticator(store).
		WithLogger(logger).
		WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
			log.Info().
				Str("event", string(event.EventType)).
				Int64("user_id", event.UserID).
				Time("occurred_at", event.OccurredAt).
				Msg("auth activity")
			return nil
		}))

	app := fiber.New(fiber.Config{
		AppName:               "authsvc",
		DisableStartupMessage: true,
	})

	auth.RegisterAuthRoutes(app,
		auth.WithAuther(auther),
		auth.WithControllerLogger(logger),
		auth.WithDebug(cfg.Debug),
	)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Msg("listening")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	sig := waitExitSignal()
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func waitExitSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// zerologAdapter exposes a zerolog.Logger through the auth.Logger interface.
// Arguments after the message are treated as key/value pairs, the way the
// library logs them.
type zerologAdapter struct {
	log zerolog.Logger
}

func (l zerologAdapter) Debug(format string, args ...any) {
	withFields(l.log.Debug(), args).Msg(format)
}

func (l zerologAdapter) Info(format string, args ...any) {
	withFields(l.log.Info(), args).Msg(format)
}

func (l zerologAdapter) Error(format string, args ...any) {
	withFields(l.log.Error(), args).Msg(format)
}

func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}
