// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// SearchState is a snapshot of the search results panel.
type SearchState struct {
	Filters catalog.Filters
	Papers  []types.ResearchPaper
	Total   int
	Loading bool
	Source  Source

	// Err is the last failure of the slot. With Source == Sample it is the
	// failure that triggered the fallback.
	Err error
}

// DetailState is a snapshot of the paper detail panel.
type DetailState struct {
	PaperID  string
	Open     bool
	Analysis *types.Analysis
	Loading  bool
	Source   Source
	Err      error
}

// ResearchView drives the research page: a search slot and a detail slot
// holding the analysis of one selected paper.
type ResearchView struct {
	search   Searcher
	analyzer Analyzer
	samples  *Samples
	logger   *slog.Logger

	mu        sync.Mutex
	searchSeq sequence
	detailSeq sequence
	results   SearchState
	detail    DetailState
}

// NewResearchView returns a view over the given clients. A nil samples
// disables the degraded fallback.
func NewResearchView(s Searcher, a Analyzer, samples *Samples, logger *slog.Logger) *ResearchView {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ResearchView{search: s, analyzer: a, samples: samples, logger: logger}
}

// Search runs a search and, if it is still the latest one when it settles,
// applies its outcome. A failure on which fallback is allowed replaces the
// results with the sample papers, marks them Sample and records the error;
// it returns nil so the caller renders the degraded set. Other failures
// leave the previous results in place and are returned.
func (v *ResearchView) Search(ctx context.Context, f catalog.Filters) (SearchState, error) {
	v.mu.Lock()
	token := v.searchSeq.issue()
	v.results.Filters = f
	v.results.Loading = true
	v.mu.Unlock()

	page, err := v.search.Search(ctx, f)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.searchSeq.isLatest(token) {
		v.logger.Debug("dropping stale search response", "token", token)
		return v.results.snapshot(), ErrSuperseded
	}
	v.results.Loading = false

	switch {
	case err == nil:
		v.results.Papers = page.Items
		v.results.Total = page.TotalCount
		v.results.Source = Live
		v.results.Err = nil
	case v.samples != nil && degradable(err):
		v.logger.Warn("search failed, showing sample papers", "error", err)
		v.results.Papers = v.samples.Papers()
		v.results.Total = len(v.results.Papers)
		v.results.Source = Sample
		v.results.Err = err
	default:
		v.results.Err = err
		return v.results.snapshot(), err
	}
	return v.results.snapshot(), nil
}

// Results returns the current search state.
func (v *ResearchView) Results() SearchState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results.snapshot()
}

// OpenDetail selects a paper and loads its analysis. A live analysis
// already loaded for the same paper is reused; a sample one is not, so
// reopening retries the server. When the lookup fails and fallback is
// allowed, the sample analysis is shown instead, marked Sample.
func (v *ResearchView) OpenDetail(ctx context.Context, paperID string) (DetailState, error) {
	v.mu.Lock()
	if v.detail.Open && v.detail.PaperID == paperID && v.detail.Analysis != nil && v.detail.Source == Live {
		d := v.detail.snapshot()
		v.mu.Unlock()
		return d, nil
	}
	token := v.detailSeq.issue()
	v.detail = DetailState{PaperID: paperID, Open: true, Loading: true}
	v.mu.Unlock()

	a, err := v.analyzer.GetAnalysis(ctx, paperID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.detailSeq.isLatest(token) {
		return v.detail.snapshot(), ErrSuperseded
	}
	v.detail.Loading = false

	switch {
	case err == nil:
		v.detail.Analysis = &a
		v.detail.Source = Live
	case v.samples != nil && degradable(err):
		v.logger.Warn("analysis failed, showing sample analysis", "paper", paperID, "error", err)
		sample := v.samples.Analysis(paperID)
		v.detail.Analysis = &sample
		v.detail.Source = Sample
		v.detail.Err = err
	default:
		v.detail.Err = err
		return v.detail.snapshot(), err
	}
	return v.detail.snapshot(), nil
}

// CloseDetail closes the panel and drops the cached analysis. A lookup
// still in flight is superseded.
func (v *ResearchView) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detailSeq.issue()
	v.detail = DetailState{}
}

// Detail returns the current detail state.
func (v *ResearchView) Detail() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detail.snapshot()
}

func (s SearchState) snapshot() SearchState {
	s.Papers = append([]types.ResearchPaper(nil), s.Papers...)
	return s
}

func (d DetailState) snapshot() DetailState {
	if d.Analysis != nil {
		a := *d.Analysis
		d.Analysis = &a
	}
	return d
}
