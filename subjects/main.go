package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Bwc9876/wcu-course-db/catalog"
	"github.com/Bwc9876/wcu-course-db/config"
	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/Bwc9876/wcu-course-db/fetch"
	"github.com/lmittmann/tint"
)

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "config.json5", "The configuration file.")
	flag.Parse()

	cfg, err := config.Read(*configPath)
	if err != nil {
		fatal("failed to read config", err)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	subjects, err := catalog.ScrapeSubjects(ctx, fetch.New(cfg.FetchConfig()), cfg.IndexURL)
	if err != nil {
		fatal("failed to scrape subjects", err)
	}
	subjects = catalog.Dedupe(subjects)

	for _, subject := range subjects {
		fmt.Println(subject)
	}

	connString := cfg.Database()
	if connString == "" {
		slog.Info("no database configured, skipping insert", "subjects", len(subjects))
		return
	}

	database, err := db.Connect(ctx, connString)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		fatal("failed to create tables", err)
	}
	if err := database.InsertSubjects(ctx, subjects); err != nil {
		fatal("failed to insert subjects", err)
	}

	stored, err := database.ListSubjects(ctx)
	if err != nil {
		fatal("failed to list subjects", err)
	}
	slog.Info("inserted subjects", "scraped", len(subjects), "stored", len(stored))
}
