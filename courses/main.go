package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Bwc9876/wcu-course-db/config"
	"github.com/lmittmann/tint"
)

var cfg = config.Default()

func setupLogging(level slog.Level) {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func main() {
	setupLogging(slog.LevelInfo)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fatal("courses failed", err)
	}
}
