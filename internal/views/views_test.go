// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"sync"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/internal/users"
	"github.com/pdiddy/univ-insight/pkg/types"
)

var (
	errUnavailable = &gateway.Error{Kind: gateway.UpstreamUnavailable, Op: "test"}
	errNotFound    = &gateway.Error{Kind: gateway.NotFound, Op: "test", Status: 404}
	errRejected    = &gateway.Error{Kind: gateway.Rejected, Op: "test", Status: 400}
)

// memSession is an in-memory Session.
type memSession struct {
	mu      sync.Mutex
	id      *types.Identity
	setErr  error
	cleared int
}

func loggedIn(userID string) *memSession {
	return &memSession{id: &types.Identity{ID: userID, Name: "Test", Role: types.RoleStudent, Interests: []string{}}}
}

func (s *memSession) Identity() (types.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == nil {
		return types.Identity{}, false
	}
	return copyIdentity(*s.id), true
}

func (s *memSession) UserID() string {
	id, _ := s.Identity()
	return id.ID
}

func (s *memSession) SetIdentity(_ context.Context, id types.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	id = copyIdentity(id)
	s.id = &id
	return nil
}

func (s *memSession) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = nil
	s.cleared++
	return nil
}

// pendingSearch is one search call held open until the test replies.
type pendingSearch struct {
	filters catalog.Filters
	reply   chan searchReply
}

type searchReply struct {
	page types.Page[types.ResearchPaper]
	err  error
}

// scriptedSearcher hands every call to the test and blocks until answered.
type scriptedSearcher struct {
	requests chan pendingSearch
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{requests: make(chan pendingSearch)}
}

func (s *scriptedSearcher) Search(_ context.Context, f catalog.Filters) (types.Page[types.ResearchPaper], error) {
	p := pendingSearch{filters: f, reply: make(chan searchReply)}
	s.requests <- p
	r := <-p.reply
	return r.page, r.err
}

// stubSearcher answers immediately.
type stubSearcher struct {
	page types.Page[types.ResearchPaper]
	err  error
}

func (s stubSearcher) Search(context.Context, catalog.Filters) (types.Page[types.ResearchPaper], error) {
	return s.page, s.err
}

func papers(ids ...string) types.Page[types.ResearchPaper] {
	items := make([]types.ResearchPaper, 0, len(ids))
	for _, id := range ids {
		items = append(items, types.ResearchPaper{ID: id, Title: "Paper " + id})
	}
	return types.Page[types.ResearchPaper]{TotalCount: len(items), Items: items}
}

type stubAnalyzer struct {
	mu    sync.Mutex
	calls int
	a     types.Analysis
	err   error
}

func (s *stubAnalyzer) GetAnalysis(_ context.Context, paperID string) (types.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return types.Analysis{}, s.err
	}
	a := s.a
	a.PaperID = paperID
	return a, nil
}

type stubPlanB struct {
	pb  types.PlanB
	err error
}

func (s stubPlanB) GetPlanB(context.Context, string) (types.PlanB, error) {
	return s.pb, s.err
}

// blockingReporter holds Generate open until release receives.
type blockingReporter struct {
	mu        sync.Mutex
	generates int
	gets      int
	lists     int
	started   chan string
	release   chan error

	list    types.Page[types.Report]
	listErr error
	reports map[string]types.Report
}

func newBlockingReporter() *blockingReporter {
	return &blockingReporter{
		started: make(chan string, 4),
		release: make(chan error, 4),
		reports: map[string]types.Report{},
	}
}

func (r *blockingReporter) Generate(_ context.Context, userID string) (types.GeneratedReport, error) {
	r.mu.Lock()
	r.generates++
	r.mu.Unlock()
	r.started <- userID
	if err := <-r.release; err != nil {
		return types.GeneratedReport{}, err
	}
	return types.GeneratedReport{Status: "success", ReportID: "r-new", Papers: []types.ReportPaper{}}, nil
}

func (r *blockingReporter) List(context.Context, string) (types.Page[types.Report], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	return r.list, r.listErr
}

func (r *blockingReporter) Get(_ context.Context, id string) (types.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	rep, ok := r.reports[id]
	if !ok {
		return types.Report{}, errNotFound
	}
	return rep, nil
}

func (r *blockingReporter) generateCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generates
}

type stubUniversities struct {
	mu         sync.Mutex
	list       types.Page[types.University]
	univ       types.University
	univErr    error
	papers     types.Page[types.CrawledPaper]
	paperCalls int
}

func (s *stubUniversities) ListUniversities(context.Context) (types.Page[types.University], error) {
	return s.list, nil
}

func (s *stubUniversities) GetUniversity(_ context.Context, id string) (types.University, error) {
	if s.univErr != nil {
		return types.University{}, s.univErr
	}
	u := s.univ
	u.ID = id
	return u, nil
}

func (s *stubUniversities) GetPapers(context.Context, string) (types.Page[types.CrawledPaper], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paperCalls++
	return s.papers, nil
}

// gatedCrawler blocks until release receives when gate is set.
type gatedCrawler struct {
	mu      sync.Mutex
	calls   []string
	ack     types.CrawlAck
	err     error
	started chan struct{}
	release chan struct{}
}

func (c *gatedCrawler) Trigger(_ context.Context, universityID, target string) (types.CrawlAck, error) {
	c.mu.Lock()
	c.calls = append(c.calls, universityID+" "+target)
	c.mu.Unlock()
	if c.started != nil {
		c.started <- struct{}{}
		<-c.release
	}
	ack := c.ack
	if ack.Message == "" {
		ack.Message = "queued " + universityID
	}
	return ack, c.err
}

type stubProfiles struct {
	saved   []users.Profile
	saveErr error
	remote  types.Identity
}

func (s *stubProfiles) Get(context.Context, string) (types.Identity, error) {
	return s.remote, nil
}

func (s *stubProfiles) Save(_ context.Context, p users.Profile) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, p)
	return "success", nil
}
