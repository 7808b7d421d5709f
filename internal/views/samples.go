// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	_ "embed"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/univ-insight/pkg/types"
)

//go:embed samples.yaml
var samplesYAML []byte

// Samples is the degraded data set read paths fall back to. A nil *Samples
// disables fallback.
type Samples struct {
	papers   []types.ResearchPaper
	analysis types.Analysis
	reports  []sampleReport
	now      func() time.Time
}

type sampleReport struct {
	ID          string             `yaml:"id"`
	DaysAgo     int                `yaml:"days_ago"`
	PapersCount int                `yaml:"papers_count"`
	Status      types.ReportStatus `yaml:"status"`
}

type samplesFile struct {
	Papers   []types.ResearchPaper `yaml:"papers"`
	Analysis types.Analysis        `yaml:"analysis"`
	Reports  []sampleReport        `yaml:"reports"`
}

// LoadSamples parses the bundled sample set.
func LoadSamples() (*Samples, error) {
	return parseSamples(samplesYAML)
}

func parseSamples(data []byte) (*Samples, error) {
	var f samplesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sample data: %w", err)
	}
	if len(f.Papers) == 0 || f.Analysis.Narrative == "" {
		return nil, fmt.Errorf("sample data needs papers and an analysis")
	}
	for _, r := range f.Reports {
		if !r.Status.Valid() || r.PapersCount < 0 {
			return nil, fmt.Errorf("sample report %s: bad status or count", r.ID)
		}
	}
	return &Samples{
		papers:   f.Papers,
		analysis: f.Analysis,
		reports:  f.Reports,
		now:      time.Now,
	}, nil
}

// Papers returns a fresh copy of the sample search results.
func (s *Samples) Papers() []types.ResearchPaper {
	return append([]types.ResearchPaper(nil), s.papers...)
}

// Analysis returns the sample analysis attributed to paperID.
func (s *Samples) Analysis(paperID string) types.Analysis {
	a := s.analysis
	a.PaperID = paperID
	if s.analysis.CareerPath != nil {
		cp := *s.analysis.CareerPath
		cp.RelatedCompanies = append([]string{}, cp.RelatedCompanies...)
		a.CareerPath = &cp
	}
	if s.analysis.ActionItems != nil {
		ai := *s.analysis.ActionItems
		ai.Subjects = append([]string{}, ai.Subjects...)
		a.ActionItems = &ai
	}
	return a
}

// Reports returns the sample report list, dated relative to now.
func (s *Samples) Reports(userID string) []types.Report {
	now := s.now().UTC().Truncate(time.Second)
	out := make([]types.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, types.Report{
			ID:          r.ID,
			UserID:      userID,
			CreatedAt:   now.AddDate(0, 0, -r.DaysAgo),
			PapersCount: r.PapersCount,
			Status:      r.Status,
		})
	}
	return out
}
