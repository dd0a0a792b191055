package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/caffeinepub/m-employed/internal/devserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := devserver.ConfigFromEnv()
	if err != nil {
		return err
	}

	srv := devserver.NewServer(cfg, logger)
	logger.Info("dev server listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Handler())
}
