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

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and browse your research digest reports",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new digest report for your interests",
	Long: `Generate asks the server to compose a new report. The request is sent
exactly once; if it fails, nothing is retried and no sample data is shown.
Run the command again to retry.`,
	RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		v := views.NewReportView(a.reports, a.store, nil, a.logger)
		at, err := v.Generate(ctx)
		if err != nil {
			return fmt.Errorf("report generation failed: %w", err)
		}
		r := at.Report
		fmt.Printf("Report %s generated (%s) with %d paper(s).\n", r.ReportID, r.Status, len(r.Papers))
		for i, p := range r.Papers {
			fmt.Printf("  %d. %s\n", i+1, truncate(p.Title, 90))
		}
		return nil
	}),
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reports",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		st, err := views.NewReportView(a.reports, a.store, a.samples, a.logger).List(ctx)
		if err != nil {
			return err
		}
		sampleNotice(st.Source, st.Err)
		if done, err := writeStructured(os.Stdout, format, types.Page[types.Report]{TotalCount: st.Total, Items: st.Reports}); done {
			return err
		}
		writeReportTable(os.Stdout, st.Reports)
		return nil
	}),
}

func writeReportTable(w io.Writer, reports []types.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports yet. Run \"univ-insight report generate\".")
		return
	}
	fmt.Fprintf(w, "%-38s  %-16s  %-6s  %-10s  %s\n", "ID", "Created", "Papers", "Status", "Page")
	rule(w, 100)
	for _, r := range reports {
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-38s  %-16s  %-6d  %-10s  %s\n",
			truncate(r.ID, 38), created, r.PapersCount, r.Status, dash(r.NotionPageURL))
	}
}

var reportShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Expand a report and list its papers",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		_, r, err := views.NewReportView(a.reports, a.store, nil, a.logger).Toggle(ctx, args[0])
		if err != nil {
			return err
		}
		if done, err := writeStructured(os.Stdout, format, r); done {
			return err
		}
		fmt.Printf("Report %s (%s), %d paper(s)\n", r.ID, r.Status, r.PapersCount)
		if r.NotionPageURL != "" {
			fmt.Printf("Page: %s\n", r.NotionPageURL)
		}
		rule(os.Stdout, 60)
		for i, p := range r.Papers {
			fmt.Printf("%d. %s\n", i+1, p.Title)
			if p.Summary != "" {
				fmt.Printf("   %s\n", truncate(p.Summary, 100))
			}
		}
		return nil
	}),
}

func init() {
	reportListCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")
	reportShowCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")

	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)

	rootCmd.AddCommand(reportCmd)
}
