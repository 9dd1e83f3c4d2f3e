package main

import (
	"os"
	"strings"

	"github.com/Bwc9876/wcu-course-db/catalog"
	"github.com/Bwc9876/wcu-course-db/db"
	"github.com/Bwc9876/wcu-course-db/fetch"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(subjectsCmd)
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Lists the subjects of the catalog index.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := catalog.ScrapeSubjects(cmd.Context(), fetch.New(cfg.FetchConfig()), cfg.IndexURL)
		if err != nil {
			return err
		}

		// course counts are only known once the catalog is cached
		cached, cacheErr := db.LoadJSON(cachePath)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		header := table.Row{"#", "Subject"}
		if cacheErr == nil {
			header = append(header, "Courses")
		}
		t.AppendHeader(header)

		for i, subject := range catalog.Dedupe(subjects) {
			row := table.Row{i + 1, subject}
			if cacheErr == nil {
				row = append(row, len(cached.Subject(strings.ToUpper(subject))))
			}
			t.AppendRow(row)
		}
		t.Render()

		return nil
	},
}
