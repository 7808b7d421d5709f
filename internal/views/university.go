// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pdiddy/univ-insight/pkg/types"
)

// UniversityListState is a snapshot of the university list page.
type UniversityListState struct {
	Universities []types.University
	Total        int
	Loading      bool
	Err          error
}

// UniversityListView drives the university list page.
type UniversityListView struct {
	catalog UniversityCatalog

	mu    sync.Mutex
	seq   sequence
	state UniversityListState
}

// NewUniversityListView returns a view over c.
func NewUniversityListView(c UniversityCatalog) *UniversityListView {
	return &UniversityListView{catalog: c}
}

// Load fetches the list. A failure keeps the previous list.
func (v *UniversityListView) Load(ctx context.Context) (UniversityListState, error) {
	v.mu.Lock()
	token := v.seq.issue()
	v.state.Loading = true
	v.mu.Unlock()

	page, err := v.catalog.ListUniversities(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.seq.isLatest(token) {
		return v.state.snapshot(), ErrSuperseded
	}
	v.state.Loading = false
	if err != nil {
		v.state.Err = err
		return v.state.snapshot(), err
	}
	v.state.Universities = page.Items
	v.state.Total = page.TotalCount
	v.state.Err = nil
	return v.state.snapshot(), nil
}

// Filter returns the loaded universities whose English name contains q
// case-insensitively or whose local name contains q. An empty q matches
// everything. No request is made.
func (v *UniversityListView) Filter(q string) []types.University {
	v.mu.Lock()
	defer v.mu.Unlock()
	return FilterUniversities(v.state.Universities, q)
}

// FilterUniversities applies the list page's name filter to us.
func FilterUniversities(us []types.University, q string) []types.University {
	q = strings.TrimSpace(q)
	out := make([]types.University, 0, len(us))
	lower := strings.ToLower(q)
	for _, u := range us {
		if q == "" || strings.Contains(strings.ToLower(u.Name), lower) || strings.Contains(u.NameLocal, q) {
			out = append(out, u)
		}
	}
	return out
}

func (s UniversityListState) snapshot() UniversityListState {
	s.Universities = append([]types.University(nil), s.Universities...)
	return s
}

// UniversityState is a snapshot of one university's page.
type UniversityState struct {
	University *types.University
	Loading    bool
	Err        error

	Papers        []types.CrawledPaper
	PapersTotal   int
	PapersLoading bool
	PapersErr     error

	// CrawlURL is the crawl target, pre-filled with the university URL.
	CrawlURL string
	Crawling bool
	CrawlErr error

	// Info is the message shown after a crawl was accepted.
	Info string
}

// UniversityView drives the university detail page: university info, its
// crawled papers, and the crawl trigger. A crawl acknowledgment means the
// job was queued; the paper list is only re-read by RefreshPapers.
type UniversityView struct {
	catalog UniversityCatalog
	crawler Crawler
	logger  *slog.Logger

	mu       sync.Mutex
	univSeq  sequence
	paperSeq sequence
	crawlSeq sequence
	state    UniversityState
}

// NewUniversityView returns a view over c and cr.
func NewUniversityView(c UniversityCatalog, cr Crawler, logger *slog.Logger) *UniversityView {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &UniversityView{catalog: c, crawler: cr, logger: logger}
}

// Load fetches the university and pre-fills the crawl target with its URL.
// Opening a different university resets the page; a paper refresh or crawl
// still in flight for the previous one is superseded.
func (v *UniversityView) Load(ctx context.Context, id string) (UniversityState, error) {
	v.mu.Lock()
	token := v.univSeq.issue()
	if v.state.University == nil || v.state.University.ID != id {
		v.paperSeq.issue()
		v.crawlSeq.issue()
		v.state = UniversityState{}
	}
	v.state.Loading = true
	v.mu.Unlock()

	u, err := v.catalog.GetUniversity(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.univSeq.isLatest(token) {
		return v.state.snapshot(), ErrSuperseded
	}
	v.state.Loading = false
	if err != nil {
		v.state.Err = err
		return v.state.snapshot(), err
	}
	v.state.University = &u
	v.state.Err = nil
	if v.state.CrawlURL == "" {
		v.state.CrawlURL = u.URL
	}
	return v.state.snapshot(), nil
}

// SetCrawlURL overrides the crawl target.
func (v *UniversityView) SetCrawlURL(target string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.CrawlURL = strings.TrimSpace(target)
}

// RefreshPapers re-reads the crawled papers of the loaded university.
func (v *UniversityView) RefreshPapers(ctx context.Context) (UniversityState, error) {
	v.mu.Lock()
	if v.state.University == nil {
		v.mu.Unlock()
		return UniversityState{}, fmt.Errorf("no university loaded")
	}
	id := v.state.University.ID
	token := v.paperSeq.issue()
	v.state.PapersLoading = true
	v.mu.Unlock()

	page, err := v.catalog.GetPapers(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.paperSeq.isLatest(token) {
		return v.state.snapshot(), ErrSuperseded
	}
	v.state.PapersLoading = false
	if err != nil {
		v.state.PapersErr = err
		return v.state.snapshot(), err
	}
	v.state.Papers = page.Items
	v.state.PapersTotal = page.TotalCount
	v.state.PapersErr = nil
	return v.state.snapshot(), nil
}

// Crawl triggers a crawl of the loaded university. An empty target falls
// back to the pre-filled crawl URL. Only one crawl per university runs at a
// time; a second call while one is in flight returns ErrInFlight without a
// request. If another university is loaded before the acknowledgment
// arrives, the acknowledgment is dropped and ErrSuperseded returned. The
// papers list is not refreshed. Failures are never masked.
func (v *UniversityView) Crawl(ctx context.Context, target string) (UniversityState, error) {
	v.mu.Lock()
	if v.state.Crawling {
		v.mu.Unlock()
		return v.State(), ErrInFlight
	}
	if v.state.University == nil {
		v.mu.Unlock()
		return UniversityState{}, fmt.Errorf("no university loaded")
	}
	id := v.state.University.ID
	target = strings.TrimSpace(target)
	if target == "" {
		target = v.state.CrawlURL
	}
	token := v.crawlSeq.issue()
	v.state.Crawling = true
	v.state.CrawlErr = nil
	v.state.Info = ""
	v.mu.Unlock()

	ack, err := v.crawler.Trigger(ctx, id, target)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.crawlSeq.isLatest(token) {
		v.logger.Debug("dropping crawl acknowledgment for a closed page", "university", id)
		return v.state.snapshot(), ErrSuperseded
	}
	v.state.Crawling = false
	if err != nil {
		v.state.CrawlErr = err
		return v.state.snapshot(), err
	}
	v.logger.Info("crawl accepted", "university", id, "status", ack.Status)
	v.state.Info = crawlInfo(ack)
	return v.state.snapshot(), nil
}

// State returns the current page state.
func (v *UniversityView) State() UniversityState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.snapshot()
}

func crawlInfo(ack types.CrawlAck) string {
	msg := fmt.Sprintf("Crawl job accepted (status: %s).", ack.Status)
	if ack.Message != "" {
		msg += " " + ack.Message + "."
	}
	return msg + " Refresh papers to see new results."
}

func (s UniversityState) snapshot() UniversityState {
	if s.University != nil {
		u := *s.University
		s.University = &u
	}
	s.Papers = append([]types.CrawledPaper(nil), s.Papers...)
	return s
}
