// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/internal/report"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// ReportListState is a snapshot of the report list.
type ReportListState struct {
	Reports  []types.Report
	Total    int
	Loading  bool
	Source   Source
	Err      error
	Expanded map[string]bool

	// DetailErrs holds the failed paper lookups of expanded reports. An
	// expanded report without papers is still expanded.
	DetailErrs map[string]error
}

// ReportView drives the reports page. Generation is single-flight per
// user: while an attempt is Generating, Generate refuses without touching
// the network.
type ReportView struct {
	reports Reporter
	session Session
	samples *Samples
	logger  *slog.Logger

	mu       sync.Mutex
	attempts map[string]report.Attempt
	listSeq  sequence
	list     ReportListState
	details  map[string]types.Report
}

// NewReportView returns a view over r acting for the user in session.
func NewReportView(r Reporter, session Session, samples *Samples, logger *slog.Logger) *ReportView {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ReportView{
		reports:  r,
		session:  session,
		samples:  samples,
		logger:   logger,
		attempts: make(map[string]report.Attempt),
		details:  make(map[string]types.Report),
		list:     ReportListState{Expanded: map[string]bool{}, DetailErrs: map[string]error{}},
	}
}

// Generate asks the server for a new report for the current user. It
// issues exactly one request and never retries. A call made while the
// user's previous attempt is still Generating returns report.ErrGenerating.
// Failures are never replaced by sample data. After a success the list is
// re-fetched; a failed re-fetch is recorded in the list state only.
func (v *ReportView) Generate(ctx context.Context) (report.Attempt, error) {
	userID := v.session.UserID()
	if userID == "" {
		return report.Attempt{}, ErrNotAuthenticated
	}

	v.mu.Lock()
	a, err := v.attempts[userID].Begin()
	if err != nil {
		v.mu.Unlock()
		return a, err
	}
	v.attempts[userID] = a
	v.mu.Unlock()

	v.logger.Info("generating report", "user", userID)
	r, genErr := v.reports.Generate(ctx, userID)

	v.mu.Lock()
	a = v.attempts[userID].Settle(r, genErr)
	v.attempts[userID] = a
	v.mu.Unlock()
	if genErr != nil {
		return a, genErr
	}

	if _, err := v.List(ctx); err != nil {
		v.logger.Warn("refreshing reports after generation", "error", err)
	}
	return a, nil
}

// Attempt returns the current generation attempt of userID.
func (v *ReportView) Attempt(userID string) report.Attempt {
	v.mu.Lock()
	defer v.mu.Unlock()
	a := v.attempts[userID]
	if a.State == "" {
		a.State = report.Idle
	}
	return a
}

// List re-fetches the report list of the current user. When fallback is
// allowed, a failed listing shows the sample reports marked Sample.
func (v *ReportView) List(ctx context.Context) (ReportListState, error) {
	userID := v.session.UserID()
	if userID == "" {
		return v.State(), ErrNotAuthenticated
	}

	v.mu.Lock()
	token := v.listSeq.issue()
	v.list.Loading = true
	v.mu.Unlock()

	page, err := v.reports.List(ctx, userID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.listSeq.isLatest(token) {
		return v.list.snapshot(), ErrSuperseded
	}
	v.list.Loading = false

	switch {
	case err == nil:
		v.list.Reports = page.Items
		v.list.Total = page.TotalCount
		v.list.Source = Live
		v.list.Err = nil
	case v.samples != nil && degradable(err):
		v.logger.Warn("report listing failed, showing sample reports", "error", err)
		v.list.Reports = v.samples.Reports(userID)
		v.list.Total = len(v.list.Reports)
		v.list.Source = Sample
		v.list.Err = err
	default:
		v.list.Err = err
		return v.list.snapshot(), err
	}
	return v.list.snapshot(), nil
}

// Toggle flips the expansion of a report. Expansion is local state and
// never depends on the network. The first expansion of a live report also
// loads its papers; a failed load is recorded in DetailErrs and returned,
// but the report stays expanded with what the list already showed. Sample
// reports have nothing upstream and are expanded without a request.
//
// When the loaded papers disagree with the count shown in the list, the
// listed count is corrected to the number of papers.
func (v *ReportView) Toggle(ctx context.Context, reportID string) (bool, types.Report, error) {
	v.mu.Lock()
	listed, isListed := v.listed(reportID)
	if v.list.Expanded[reportID] {
		delete(v.list.Expanded, reportID)
		r, ok := v.details[reportID]
		if !ok {
			r = listed
		}
		v.mu.Unlock()
		return false, r, nil
	}
	v.list.Expanded[reportID] = true
	if r, ok := v.details[reportID]; ok {
		v.mu.Unlock()
		return true, r, nil
	}
	if isListed && v.list.Source == Sample {
		v.mu.Unlock()
		return true, listed, nil
	}
	delete(v.list.DetailErrs, reportID)
	v.mu.Unlock()

	r, err := v.reports.Get(ctx, reportID)
	if err == nil && r.PapersCount != len(r.Papers) {
		err = gateway.Invalid("GET /reports/"+reportID, "papers_count %d, got %d papers", r.PapersCount, len(r.Papers))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	open := v.list.Expanded[reportID]
	listed, isListed = v.listed(reportID)
	if err != nil {
		v.list.DetailErrs[reportID] = err
		return open, listed, err
	}

	v.details[reportID] = r
	if isListed && listed.PapersCount != len(r.Papers) {
		v.logger.Warn("report papers disagree with listed count, correcting list",
			"report", reportID, "listed", listed.PapersCount, "papers", len(r.Papers))
		for i := range v.list.Reports {
			if v.list.Reports[i].ID == reportID {
				v.list.Reports[i].PapersCount = len(r.Papers)
			}
		}
	}
	return open, r, nil
}

// listed finds a report in the current list. Callers hold v.mu.
func (v *ReportView) listed(reportID string) (types.Report, bool) {
	for _, r := range v.list.Reports {
		if r.ID == reportID {
			return r, true
		}
	}
	return types.Report{}, false
}

// State returns the current list state.
func (v *ReportView) State() ReportListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list.snapshot()
}

func (s ReportListState) snapshot() ReportListState {
	s.Reports = append([]types.Report(nil), s.Reports...)
	exp := make(map[string]bool, len(s.Expanded))
	for k, b := range s.Expanded {
		exp[k] = b
	}
	s.Expanded = exp
	errs := make(map[string]error, len(s.DetailErrs))
	for k, e := range s.DetailErrs {
		errs[k] = e
	}
	s.DetailErrs = errs
	return s
}
