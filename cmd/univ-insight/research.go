// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/views"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search university research papers",
	Long: `Search queries the research catalog by topic and university. Unset
filters are not sent. When the API cannot be reached the command shows a
small sample set and says so on stderr; pass --no-fallback to fail instead.`,
	RunE: withApp(runSearch),
}

func runSearch(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	f := catalog.Filters{}
	f.Topic, _ = cmd.Flags().GetString("topic")
	f.University, _ = cmd.Flags().GetString("university")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	f.Offset, _ = cmd.Flags().GetInt("offset")
	if f.Limit <= 0 {
		f.Limit = viper.GetInt("search.limit")
	}

	v := views.NewResearchView(a.catalog, a.recommend, a.samples, a.logger)
	st, err := v.Search(ctx, f)
	if err != nil {
		return err
	}
	sampleNotice(st.Source, st.Err)

	if done, err := writeStructured(os.Stdout, format, types.Page[types.ResearchPaper]{TotalCount: st.Total, Items: st.Papers}); done {
		return err
	}
	writePaperTable(os.Stdout, st.Papers, st.Total)
	return nil
}

func writePaperTable(w io.Writer, papers []types.ResearchPaper, total int) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-12s  %-50s  %-25s  %s\n", "#", "ID", "Title", "University", "Published")
	rule(w, 110)
	for i, p := range papers {
		published := "-"
		if !p.PublicationDate.IsZero() {
			published = p.PublicationDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-12s  %-50s  %-25s  %s\n",
			i+1, truncate(p.ID, 12), truncate(p.Title, 50), truncate(p.University, 25), published)
	}
	fmt.Fprintf(w, "\n%d of %d papers\n", len(papers), total)
}

// --- paper ---

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Explain a paper or find Plan B alternatives",
}

var paperAnalysisCmd = &cobra.Command{
	Use:   "analysis <paper-id>",
	Short: "Show the plain-language analysis of a paper",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		v := views.NewResearchView(a.catalog, a.recommend, a.samples, a.logger)
		d, err := v.OpenDetail(ctx, args[0])
		if err != nil {
			return err
		}
		sampleNotice(d.Source, d.Err)
		if done, err := writeStructured(os.Stdout, format, d.Analysis); done {
			return err
		}
		writeAnalysis(os.Stdout, *d.Analysis)
		return nil
	}),
}

func writeAnalysis(w io.Writer, an types.Analysis) {
	fmt.Fprintf(w, "Paper: %s\n\n%s\n", an.PaperID, an.Narrative)
	if cp := an.CareerPath; cp != nil {
		fmt.Fprintln(w, "\nCareer path")
		rule(w, 40)
		fmt.Fprintf(w, "Job:       %s\n", dash(cp.JobTitle))
		fmt.Fprintf(w, "Salary:    %s\n", dash(cp.SalaryHint))
		fmt.Fprintf(w, "Companies: %s\n", dash(strings.Join(cp.RelatedCompanies, ", ")))
	}
	if ai := an.ActionItems; ai != nil {
		fmt.Fprintln(w, "\nWhat to do now")
		rule(w, 40)
		fmt.Fprintf(w, "Subjects:  %s\n", dash(strings.Join(ai.Subjects, ", ")))
		fmt.Fprintf(w, "Topic:     %s\n", dash(ai.ResearchTopic))
	}
}

var paperPlanBCmd = &cobra.Command{
	Use:   "planb <paper-id>",
	Short: "List alternative universities with similar research",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		st, err := views.NewPlanBView(a.recommend).Load(ctx, args[0])
		if err != nil {
			return err
		}
		if done, err := writeStructured(os.Stdout, format, types.PlanB{Original: st.Original, Suggestions: st.Suggestions}); done {
			return err
		}
		writePlanB(os.Stdout, st)
		return nil
	}),
}

// writePlanB prints suggestions in server order.
func writePlanB(w io.Writer, st views.PlanBState) {
	o := st.Original
	fmt.Fprintf(w, "Original: %s (%s, tier %d)\n\n", o.Title, o.University, o.UniversityTier)
	if st.Empty() {
		fmt.Fprintln(w, "No Plan B universities found for this paper.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-25s  %-4s  %-10s  %s\n", "Rank", "University", "Tier", "Similarity", "Title")
	rule(w, 100)
	for i, s := range st.Suggestions {
		fmt.Fprintf(w, "%-4d  %-25s  %-4d  %9d%%  %s\n",
			i+1, truncate(s.University, 25), s.UniversityTier, s.SimilarityPercent(), truncate(s.Title, 45))
		if s.Reason != "" {
			fmt.Fprintf(w, "      %s\n", truncate(s.Reason, 90))
		}
	}
}

func init() {
	searchCmd.Flags().String("topic", "", "research topic filter")
	searchCmd.Flags().String("university", "", "university filter")
	searchCmd.Flags().Int("limit", 0, "page size (0 = search.limit)")
	searchCmd.Flags().Int("offset", 0, "result offset")
	searchCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")

	paperAnalysisCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")
	paperPlanBCmd.Flags().String("format", formatTable, "output format: table, json, or yaml")

	paperCmd.AddCommand(paperAnalysisCmd)
	paperCmd.AddCommand(paperPlanBCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(paperCmd)
}
