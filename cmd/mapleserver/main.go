// Command mapleserver boots one login/world/channel listener instance,
// mirroring the teacher's main.go bootstrap (open config, decode, fatal on
// error, start accept loop) generalized to spec.md §6's three server
// roles and a pluggable persistence backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ezer1025/rustymaple-go/internal/config"
	"github.com/ezer1025/rustymaple-go/internal/handler/login"
	"github.com/ezer1025/rustymaple-go/internal/handler/placeholder"
	"github.com/ezer1025/rustymaple-go/internal/listener"
	"github.com/ezer1025/rustymaple-go/internal/logging"
	"github.com/ezer1025/rustymaple-go/internal/netio/handler"
	"github.com/ezer1025/rustymaple-go/internal/store"
)

func main() {
	configPath := flag.String("config", "server.yaml", "path to the server's YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapleserver: ", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{
		ServiceName:  string(cfg.ServerType),
		ConsoleLevel: parseLevel(cfg.LogLevel),
		FilePath:     cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapleserver: ", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, closeStore, err := buildRouter(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	if closeStore != nil {
		defer closeStore()
	}

	l := listener.New(cfg, router, log)
	if err := l.Run(ctx); err != nil {
		log.Error("listener exited with error", zap.Error(err))
		os.Exit(1)
	}
}

// buildRouter selects the role handler and, for the login role, the
// persistence backend behind it. spec.md §4.D/§4.G/§6.
func buildRouter(ctx context.Context, cfg config.Config, log *zap.Logger) (*handler.Router, func(), error) {
	switch cfg.ServerType {
	case config.RoleLogin:
		us, closeFn, err := buildUserStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		h := login.New(us, cfg.AutoRegister, log)
		return handler.NewRouter(h), closeFn, nil

	case config.RoleWorld:
		return handler.NewRouter(placeholder.World{}), nil, nil

	case config.RoleChannel:
		return handler.NewRouter(placeholder.Channel{}), nil, nil

	default:
		return nil, nil, fmt.Errorf("mapleserver: unknown server_type %q", cfg.ServerType)
	}
}

// buildUserStore picks Postgres when database_url is configured, and an
// in-memory store otherwise — useful for local smoke testing without a
// database, matching spec.md's treatment of persistence as an injected
// capability rather than a hard dependency of the core.
func buildUserStore(ctx context.Context, cfg config.Config) (store.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil, nil
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("mapleserver: connect store: %w", err)
	}
	return pg, pg.Close, nil
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
