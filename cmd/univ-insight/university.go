// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/univ-insight/internal/views"
	"github.com/pdiddy/univ-insight/pkg/types"
)

var universityCmd = &cobra.Command{
	Use:     "university",
	Aliases: []string{"univ"},
	Short:   "Explore universities and trigger paper crawls",
}

var universityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List universities, optionally filtered by name",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		v := views.NewUniversityListView(a.catalog)
		if _, err := v.Load(ctx); err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		us := v.Filter(filter)
		if done, err := writeStructured(os.Stdout, format, us); done {
			return err
		}
		writeUniversityTable(os.Stdout, us)
		return nil
	}),
}

func writeUniversityTable(w io.Writer, us []types.University) {
	if len(us) == 0 {
		fmt.Fprintln(w, "No universities found.")
		return
	}
	fmt.Fprintf(w, "%-12s  %-35s  %-20s  %-12s  %s\n", "ID", "Name", "Local name", "Location", "Tier")
	rule(w, 100)
	for _, u := range us {
		fmt.Fprintf(w, "%-12s  %-35s  %-20s  %-12s  %s\n",
			truncate(u.ID, 12), truncate(u.Name, 35), truncate(u.NameLocal, 20), truncate(dash(u.Location), 12), dash(u.Tier))
	}
	fmt.Fprintf(w, "\n%d universities\n", len(us))
}

var universityShowCmd = &cobra.Command{
	Use:   "show <university-id>",
	Short: "Show a university",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		st, err := views.NewUniversityView(a.catalog, a.crawl, a.logger).Load(ctx, args[0])
		if err != nil {
			return err
		}
		u := st.University
		fmt.Printf("%s (%s)\n", u.Name, dash(u.NameLocal))
		rule(os.Stdout, 60)
		fmt.Printf("ID:          %s\n", u.ID)
		fmt.Printf("Location:    %s\n", dash(u.Location))
		fmt.Printf("Tier:        %s\n", dash(u.Tier))
		fmt.Printf("Website:     %s\n", dash(u.URL))
		if u.EstablishedYear > 0 {
			fmt.Printf("Established: %d\n", u.EstablishedYear)
		}
		if u.Ranking > 0 {
			fmt.Printf("Ranking:     %d\n", u.Ranking)
		}
		if u.Description != "" {
			fmt.Printf("\n%s\n", u.Description)
		}
		return nil
	}),
}

var universityPapersCmd = &cobra.Command{
	Use:   "papers <university-id>",
	Short: "List the crawled papers of a university",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		v := views.NewUniversityView(a.catalog, a.crawl, a.logger)
		if _, err := v.Load(ctx, args[0]); err != nil {
			return err
		}
		st, err := v.RefreshPapers(ctx)
		if err != nil {
			return err
		}
		if done, err := writeStructured(os.Stdout, format, types.Page[types.CrawledPaper]{TotalCount: st.PapersTotal, Items: st.Papers}); done {
			return err
		}
		writeCrawledPapers(os.Stdout, st.Papers, st.PapersTotal)
		return nil
	}),
}

func writeCrawledPapers(w io.Writer, ps []types.CrawledPaper, total int) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No crawled papers yet. Trigger one with \"univ-insight university crawl\".")
		return
	}
	fmt.Fprintf(w, "%-4s  %-60s  %s\n", "#", "Title", "Crawled")
	rule(w, 90)
	for i, p := range ps {
		crawled := "-"
		if !p.CrawledAt.IsZero() {
			crawled = p.CrawledAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-60s  %s\n", i+1, truncate(p.Title, 60), crawled)
	}
	fmt.Fprintf(w, "\n%d of %d papers\n", len(ps), total)
}

var universityCrawlCmd = &cobra.Command{
	Use:   "crawl <university-id>",
	Short: "Queue a crawl of a university's research pages",
	Long: `Crawl asks the server to queue an ingestion job. The job runs in the
background: the command returns as soon as the server accepts it. Use
"univ-insight university papers <id>" later to see new results.

The target defaults to the university's website.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		v := views.NewUniversityView(a.catalog, a.crawl, a.logger)
		if _, err := v.Load(ctx, args[0]); err != nil {
			return err
		}
		if target, _ := cmd.Flags().GetString("url"); target != "" {
			v.SetCrawlURL(target)
		}
		st, err := v.Crawl(ctx, "")
		if err != nil {
			return fmt.Errorf("crawl not queued: %w", err)
		}
		fmt.Println(st.Info)
		return nil
	}),
}

func init() {
	universityListCmd.Flags().String("filter", "", "match English (case-insensitive) or local name")
	universityListCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")
	universityPapersCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")
	universityCrawlCmd.Flags().String("url", "", "page to crawl (default: the university website)")

	universityCmd.AddCommand(universityListCmd)
	universityCmd.AddCommand(universityShowCmd)
	universityCmd.AddCommand(universityPapersCmd)
	universityCmd.AddCommand(universityCrawlCmd)

	rootCmd.AddCommand(universityCmd)
}
