// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend fetches the AI analysis of a paper and its Plan B
// alternatives.
package recommend

import (
	"context"
	"math"
	"net/url"
	"strings"

	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// Getter is the slice of the gateway the client needs.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Client fetches recommendations. It keeps no state between calls.
type Client struct {
	gw Getter
}

// New returns a Client that issues its calls through gw.
func New(gw Getter) *Client {
	return &Client{gw: gw}
}

// GetAnalysis fetches the analysis of a paper. An unknown paper fails with
// gateway.NotFound.
func (c *Client) GetAnalysis(ctx context.Context, paperID string) (types.Analysis, error) {
	if strings.TrimSpace(paperID) == "" {
		return types.Analysis{}, &gateway.Error{Kind: gateway.NotFound, Op: "GET /research/{id}/analysis", Detail: "empty id"}
	}
	op := "GET /research/" + paperID + "/analysis"

	var w analysisWire
	if err := c.gw.Get(ctx, "/research/"+url.PathEscape(paperID)+"/analysis", nil, &w); err != nil {
		return types.Analysis{}, err
	}
	if w.PaperID != "" && w.PaperID != paperID {
		return types.Analysis{}, gateway.Invalid(op, "analysis is for paper %q", w.PaperID)
	}

	narrative := w.Analysis
	if narrative == "" {
		narrative = w.EasySummary
	}
	if narrative == "" {
		return types.Analysis{}, gateway.Invalid(op, "analysis has no narrative")
	}

	a := types.Analysis{PaperID: paperID, Narrative: narrative}
	if cp := w.CareerPath; cp != nil {
		companies := cp.RelatedCompanies
		if len(companies) == 0 {
			companies = cp.Companies
		}
		a.CareerPath = &types.CareerPath{
			JobTitle:         cp.JobTitle,
			SalaryHint:       cp.SalaryHint,
			RelatedCompanies: nonNil(companies),
		}
	}
	if ai := w.ActionItems; ai != nil {
		a.ActionItems = &types.ActionItems{
			Subjects:      nonNil(ai.Subjects),
			ResearchTopic: ai.ResearchTopic,
		}
	}
	return a, nil
}

// GetPlanB fetches alternatives for a paper. Suggestions keep exactly the
// order the server returned, which is its rank order; nothing is re-sorted
// here even when scores are not monotonic. An empty suggestion list is a
// valid result and comes back as a non-nil empty slice.
func (c *Client) GetPlanB(ctx context.Context, paperID string) (types.PlanB, error) {
	if strings.TrimSpace(paperID) == "" {
		return types.PlanB{}, &gateway.Error{Kind: gateway.NotFound, Op: "GET /research/{id}/plan-b", Detail: "empty id"}
	}
	op := "GET /research/" + paperID + "/plan-b"

	var w planBWire
	if err := c.gw.Get(ctx, "/research/"+url.PathEscape(paperID)+"/plan-b", nil, &w); err != nil {
		return types.PlanB{}, err
	}
	if w.Suggestions == nil {
		return types.PlanB{}, gateway.Invalid(op, "response has no plan_b_suggestions")
	}

	out := types.PlanB{
		Original: types.OriginalPaper{
			Title:          w.Original.Title,
			University:     w.Original.University,
			UniversityTier: w.Original.UniversityTier,
		},
		Suggestions: make([]types.PlanBSuggestion, 0, len(w.Suggestions)),
	}
	for i, s := range w.Suggestions {
		if math.IsNaN(s.SimilarityScore) || s.SimilarityScore < 0 || s.SimilarityScore > 1 {
			return types.PlanB{}, gateway.Invalid(op, "suggestion %d has similarity_score %v outside [0, 1]", i, s.SimilarityScore)
		}
		out.Suggestions = append(out.Suggestions, types.PlanBSuggestion{
			PaperID:         s.PaperID,
			Title:           s.Title,
			University:      s.University,
			UniversityTier:  s.UniversityTier,
			Summary:         s.Summary,
			SimilarityScore: s.SimilarityScore,
			Reason:          s.Reason,
		})
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// API JSON structures.

type analysisWire struct {
	PaperID     string           `json:"paper_id"`
	Analysis    string           `json:"analysis"`
	EasySummary string           `json:"easy_summary"`
	CareerPath  *careerPathWire  `json:"career_path"`
	ActionItems *actionItemsWire `json:"action_items"`
}

type careerPathWire struct {
	Companies        []string `json:"companies"`
	RelatedCompanies []string `json:"related_companies"`
	JobTitle         string   `json:"job_title"`
	SalaryHint       string   `json:"salary_hint"`
}

type actionItemsWire struct {
	Subjects      []string `json:"subjects"`
	ResearchTopic string   `json:"research_topic"`
}

type planBWire struct {
	Original struct {
		Title          string `json:"title"`
		University     string `json:"university"`
		UniversityTier int    `json:"university_tier"`
	} `json:"original_paper"`
	Suggestions []suggestionWire `json:"plan_b_suggestions"`
}

type suggestionWire struct {
	PaperID         string  `json:"paper_id"`
	Title           string  `json:"title"`
	University      string  `json:"university"`
	UniversityTier  int     `json:"university_tier"`
	Summary         string  `json:"summary"`
	SimilarityScore float64 `json:"similarity_score"`
	Reason          string  `json:"reason"`
}
