package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"Lumen/internal/cli/bootstrap"
	"Lumen/internal/cli/commands"
	"Lumen/internal/cli/session"
	"Lumen/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода; os.Exit вызывается только в main, чтобы отработали defer.
func run() int {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return 0
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, cleanup, err := bootstrap.OpenSession(cfg, sugar)
	if err != nil {
		sugar.Errorw("failed to open session", "error", err)
		return 1
	}
	defer func() {
		if err := cleanup(); err != nil {
			sugar.Warnw("failed to close token store", "error", err)
		}
	}()

	s.Subscribe(func(st session.State) {
		sugar.Debugw("session changed",
			"username", st.User.Username,
			"logged_in", st.IsLoggedIn,
			"guest", st.IsGuest,
			"has_token", st.Token != "",
		)
	})

	return commands.Dispatch(ctx, s, flag.Args())
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func printVersion() {
	fmt.Printf("Lumen CLI\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
