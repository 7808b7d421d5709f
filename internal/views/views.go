// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package views holds one controller per page of the client. Controllers
// sequence remote calls and translate their results into render state; the
// business rules live in the client packages they call.
//
// Every controller is safe for use from several goroutines. Each logical
// slot ("search", "detail", "plan-b", "reports", "university", "papers")
// tags its requests with an increasing sequence number; a response that is
// no longer the latest for its slot is dropped and the call returns
// ErrSuperseded. State is exposed only as value snapshots.
package views

import (
	"context"
	"errors"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/internal/users"
	"github.com/pdiddy/univ-insight/pkg/types"
)

var (
	// ErrSuperseded is returned when a newer request for the same slot was
	// issued before this one settled. The view state was left untouched.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrInFlight is returned when a non-idempotent action is invoked while
	// the previous invocation has not settled.
	ErrInFlight = errors.New("already in progress")

	// ErrNotAuthenticated is returned by actions that need an identity.
	ErrNotAuthenticated = errors.New("not logged in")
)

// Source tells whether displayed data came from the server or from the
// bundled sample set.
type Source string

const (
	Live   Source = "live"
	Sample Source = "sample"
)

// Session is the part of the session store the views use.
type Session interface {
	Identity() (types.Identity, bool)
	UserID() string
	SetIdentity(ctx context.Context, id types.Identity) error
	Clear(ctx context.Context) error
}

// Searcher runs paper searches.
type Searcher interface {
	Search(ctx context.Context, f catalog.Filters) (types.Page[types.ResearchPaper], error)
}

// Analyzer fetches paper analyses.
type Analyzer interface {
	GetAnalysis(ctx context.Context, paperID string) (types.Analysis, error)
}

// PlanBFinder fetches Plan B suggestions.
type PlanBFinder interface {
	GetPlanB(ctx context.Context, paperID string) (types.PlanB, error)
}

// Reporter generates, lists and expands reports.
type Reporter interface {
	Generate(ctx context.Context, userID string) (types.GeneratedReport, error)
	List(ctx context.Context, userID string) (types.Page[types.Report], error)
	Get(ctx context.Context, reportID string) (types.Report, error)
}

// UniversityCatalog reads universities and their crawled papers.
type UniversityCatalog interface {
	ListUniversities(ctx context.Context) (types.Page[types.University], error)
	GetUniversity(ctx context.Context, id string) (types.University, error)
	GetPapers(ctx context.Context, universityID string) (types.Page[types.CrawledPaper], error)
}

// Crawler triggers crawl jobs.
type Crawler interface {
	Trigger(ctx context.Context, universityID, targetURL string) (types.CrawlAck, error)
}

// ProfileClient reads and saves profiles upstream.
type ProfileClient interface {
	Get(ctx context.Context, userID string) (types.Identity, error)
	Save(ctx context.Context, p users.Profile) (string, error)
}

// sequence issues request tokens for one slot. The owning view's mutex
// guards it.
type sequence struct {
	latest uint64
}

func (s *sequence) issue() uint64 {
	s.latest++
	return s.latest
}

func (s *sequence) isLatest(token uint64) bool {
	return token == s.latest
}

// degradable reports whether a read failure may be papered over with
// sample data. Rejected and Unauthorized answers are shown as errors.
func degradable(err error) bool {
	switch gateway.KindOf(err) {
	case gateway.UpstreamUnavailable, gateway.NotFound, gateway.InvalidResponse:
		return true
	}
	return false
}
