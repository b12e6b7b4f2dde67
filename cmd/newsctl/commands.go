package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newshub/db"
	"newshub/internal/app"
	"newshub/internal/model"
	"newshub/internal/query"
	"newshub/pkg/news"
)

var (
	flagCategory string
	flagSearch   string
	flagLimit    int
	flagLogLimit int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		pipeline, err := a.Pipeline(news.DefaultRegistry())
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		res := pipeline.Run(cmd.Context())
		if res.Skipped {
			return fmt.Errorf("another ingestion run is in progress")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: stored %d new article(s) from %d fetch(es), %d failure(s)\n",
			res.Status, res.ArticlesFetched, res.Fetches, res.Failures)
		return nil
	},
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Print stored articles as JSON, most recently ingested first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		articles, err := a.Query.SearchArticles(cmd.Context(), flagCategory, flagSearch, flagLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), articles)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the supported categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range model.Categories() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Query.ListLogs(cmd.Context(), flagLogLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIMESTAMP\tSTORED\tSTATUS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", e.ID, e.Timestamp.UTC().Format(time.RFC3339), e.ArticlesFetched, e.Status)
		}
		return w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show article store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", a.Config.Database.Driver)
		fmt.Fprintf(out, "Articles: %d\n", stats.Articles)
		for _, c := range stats.ByCategory {
			fmt.Fprintf(out, "  %-14s %d\n", c.Category, c.Count)
		}
		if stats.LastRun != nil {
			fmt.Fprintf(out, "Last run: %s (%s, %d stored)\n",
				stats.LastRun.Timestamp.UTC().Format(time.RFC3339), stats.LastRun.Status, stats.LastRun.ArticlesFetched)
		} else {
			fmt.Fprintln(out, "Last run: never")
		}

		if a.Redis != nil {
			n, err := db.QueueLength(cmd.Context(), a.Redis, db.IngestedQueueKey)
			if err != nil {
				return fmt.Errorf("reading queue length: %w", err)
			}
			fmt.Fprintf(out, "Queued URLs: %d\n", n)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a few sample articles for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		saved, err := app.Seed(cmd.Context(), a.Store)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d article(s).\n", saved)
		return nil
	},
}

func init() {
	articlesCmd.Flags().StringVar(&flagCategory, "category", "", "only show articles in this category")
	articlesCmd.Flags().StringVarP(&flagSearch, "query", "q", "", "only show articles whose title or description contains this text")
	articlesCmd.Flags().IntVar(&flagLimit, "limit", query.DefaultLimit, "maximum number of articles")
	logsCmd.Flags().IntVar(&flagLogLimit, "limit", query.DefaultLogLimit, "maximum number of log entries")
}
