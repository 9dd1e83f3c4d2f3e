package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/Bwc9876/wcu-course-db/config"
	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/Bwc9876/wcu-course-db/graph"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cachePath  string
	outPath    string
	refresh    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The configuration file, merged with its .local variant.")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "The course cache, defaults to the configured cache.")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the graph to this file instead of stdout.")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the catalog even if a cache exists.")
}

var rootCmd = &cobra.Command{
	Use:   "courses [subject]",
	Short: "courses builds a prerequisite graph of the WCU course catalog.",
	Long: `courses builds a prerequisite graph for one subject, ex: BIO, or for the
whole catalog with "*". The catalog is fetched and cached on first use.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Read(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if cachePath == "" {
			cachePath = cfg.Cache
		}
		setupLogging(cfg.SlogLevel())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := cfg.DefaultSubject
		if len(args) == 1 {
			subject = args[0]
		}

		set, err := loadOrFetch(cmd.Context())
		if err != nil {
			return err
		}

		g := graph.Build(set.Courses, subject)

		var out io.Writer = os.Stdout
		if outPath != "" {
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}

		if err := graph.WriteDot(out, g); err != nil {
			return err
		}

		slog.Info("built graph", "subject", subject, "nodes", len(g.Nodes), "edges", len(g.Edges))
		return nil
	},
}

// loadOrFetch reads the cache, fetching the whole catalog when it is missing.
func loadOrFetch(ctx context.Context) (db.CourseSet, error) {
	if !refresh {
		set, err := db.LoadJSON(cachePath)
		if err == nil {
			slog.Debug("loaded cache", "path", cachePath, "courses", len(set.Courses))
			return set, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return db.CourseSet{}, err
		}
		slog.Info("no cache found, fetching catalog", "path", cachePath)
	}

	set, err := fetchCatalog(ctx)
	if err != nil {
		return db.CourseSet{}, err
	}
	if err := db.SaveJSON(cachePath, set); err != nil {
		return db.CourseSet{}, err
	}
	return set, nil
}
