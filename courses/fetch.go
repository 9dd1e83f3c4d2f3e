package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Bwc9876/wcu-course-db/catalog"
	"github.com/Bwc9876/wcu-course-db/config"
	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/Bwc9876/wcu-course-db/fetch"
	"github.com/Bwc9876/wcu-course-db/graph"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

var (
	sqlitePath string
	postgres   bool
)

func init() {
	fetchCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also write the courses to this SQLite database.")
	fetchCmd.Flags().BoolVar(&postgres, "postgres", false, "Also push subjects, courses and relations to Postgres.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--sqlite <path/to/courses.db>] [--postgres]",
	Short: "Fetches the whole catalog and refreshes the cache.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		t1 := time.Now()
		set, err := fetchCatalog(ctx)
		if err != nil {
			return err
		}
		slog.Info("fetch time", "seconds", time.Since(t1).Seconds())

		if err := db.SaveJSON(cachePath, set); err != nil {
			return err
		}

		if sqlitePath != "" {
			store, err := db.OpenSQLite(sqlitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveCourseSet(ctx, set); err != nil {
				return err
			}
			slog.Info("wrote sqlite cache", "path", sqlitePath)
		}

		if postgres {
			if err := pushPostgres(ctx, set); err != nil {
				return err
			}
		}

		return nil
	},
}

func fetchCatalog(ctx context.Context) (db.CourseSet, error) {
	writer := progress.NewWriter()
	writer.SetOutputWriter(os.Stderr)
	writer.SetAutoStop(false)
	writer.SetTrackerLength(50)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.Style().Visibility.ETA = true
	go writer.Render()

	tracker := &progress.Tracker{Message: "Fetching subjects", Units: progress.UnitsDefault}
	writer.AppendTracker(tracker)

	aggregator := &catalog.Aggregator{
		Getter:      fetch.New(cfg.FetchConfig()),
		BaseURL:     cfg.CatalogURL,
		Concurrency: cfg.Concurrency,
		OnSubject: func(r catalog.SubjectResult) {
			tracker.UpdateTotal(int64(r.Total))
			tracker.UpdateMessage(fmt.Sprintf("Fetched courses for %v", r.Subject))
			tracker.Increment(1)
		},
	}

	set, err := aggregator.Run(ctx, cfg.IndexURL)
	if err != nil {
		tracker.MarkAsErrored()
	} else {
		tracker.MarkAsDone()
	}
	writer.Stop()
	for writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		return db.CourseSet{}, err
	}

	fmt.Fprintf(os.Stderr, "Fetched %d total courses from %d total subjects\n", len(set.Courses), len(set.Prefixes))
	return set, nil
}

func pushPostgres(ctx context.Context, set db.CourseSet) error {
	connString := cfg.Database()
	if connString == "" {
		return fmt.Errorf("no postgres connection string, set database_url or %v", config.DatabaseEnv)
	}

	database, err := db.Connect(ctx, connString)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		return err
	}

	prefixes := make([]string, 0, len(set.Prefixes))
	for _, prefix := range set.Prefixes {
		prefixes = append(prefixes, strings.ToUpper(prefix))
	}
	prefixes = catalog.Dedupe(prefixes)

	if err := database.InsertSubjects(ctx, prefixes); err != nil {
		return err
	}
	if err := database.InsertCourses(ctx, set.Courses); err != nil {
		return err
	}

	var relations []db.Relation
	for _, prefix := range prefixes {
		relations = append(relations, graph.Relations(graph.Build(set.Courses, prefix))...)
	}
	if err := database.InsertRelations(ctx, relations); err != nil {
		return err
	}

	slog.Info("pushed to postgres", "subjects", len(prefixes), "courses", len(set.Courses), "relations", len(relations))
	return nil
}
