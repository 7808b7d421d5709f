// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report triggers digest report generation and reads reports back.
//
// Generation is not idempotent: every successful POST creates a report, so
// Generate issues exactly one request and never retries. The client is
// stateless per call; preventing a second Generate for the same user while
// one is in flight is the caller's job, and Attempt gives it the states to
// do so.
package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/univ-insight/internal/catalog"
	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// Caller is the slice of the gateway the client needs.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, body, out any) error
}

// Client talks to the report endpoints.
type Client struct {
	gw Caller
}

// New returns a Client that issues its calls through gw.
func New(gw Caller) *Client {
	return &Client{gw: gw}
}

// Generate asks the server to compose a report for userID. It performs one
// POST and no retry.
func (c *Client) Generate(ctx context.Context, userID string) (types.GeneratedReport, error) {
	if strings.TrimSpace(userID) == "" {
		return types.GeneratedReport{}, fmt.Errorf("user id is required to generate a report")
	}
	const op = "POST /reports/generate"

	var w generateWire
	if err := c.gw.Post(ctx, "/reports/generate", url.Values{"user_id": {userID}}, nil, &w); err != nil {
		return types.GeneratedReport{}, err
	}
	if w.ReportID == "" {
		return types.GeneratedReport{}, gateway.Invalid(op, "response has no report_id")
	}

	out := types.GeneratedReport{
		Status:   w.Status,
		ReportID: w.ReportID,
		Papers:   make([]types.ReportPaper, 0, len(w.Papers)),
	}
	for _, p := range w.Papers {
		out.Papers = append(out.Papers, p.toPaper())
	}
	return out, nil
}

// List returns the reports generated for userID. There is no local cache;
// callers re-fetch when they want fresh data.
func (c *Client) List(ctx context.Context, userID string) (types.Page[types.Report], error) {
	if strings.TrimSpace(userID) == "" {
		return types.Page[types.Report]{}, fmt.Errorf("user id is required to list reports")
	}
	const op = "GET /reports"

	var w struct {
		TotalCount *int         `json:"total_count"`
		Items      []reportWire `json:"items"`
	}
	if err := c.gw.Get(ctx, "/reports", url.Values{"user_id": {userID}}, &w); err != nil {
		return types.Page[types.Report]{}, err
	}
	if w.Items == nil {
		return types.Page[types.Report]{}, gateway.Invalid(op, "response has no items")
	}

	reports := make([]types.Report, 0, len(w.Items))
	for _, rw := range w.Items {
		r, err := rw.toReport(op)
		if err != nil {
			return types.Page[types.Report]{}, err
		}
		reports = append(reports, r)
	}
	total := len(reports)
	if w.TotalCount != nil && *w.TotalCount >= total {
		total = *w.TotalCount
	}
	return types.Page[types.Report]{TotalCount: total, Items: reports}, nil
}

// Get fetches one report with its papers. PapersCount is checked against
// the papers actually returned.
func (c *Client) Get(ctx context.Context, reportID string) (types.Report, error) {
	if strings.TrimSpace(reportID) == "" {
		return types.Report{}, &gateway.Error{Kind: gateway.NotFound, Op: "GET /reports/{id}", Detail: "empty id"}
	}
	op := "GET /reports/" + reportID

	var w reportWire
	if err := c.gw.Get(ctx, "/reports/"+url.PathEscape(reportID), nil, &w); err != nil {
		return types.Report{}, err
	}
	if w.Papers == nil {
		w.Papers = []reportPaperWire{}
	}
	r, err := w.toReport(op)
	if err != nil {
		return types.Report{}, err
	}
	if r.ID != reportID {
		return types.Report{}, gateway.Invalid(op, "response is for report %q", r.ID)
	}
	return r, nil
}

// API JSON structures.

type generateWire struct {
	Status   string            `json:"status"`
	ReportID string            `json:"report_id"`
	Papers   []reportPaperWire `json:"papers"`
}

type reportPaperWire struct {
	PaperID string `json:"paper_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func (p reportPaperWire) toPaper() types.ReportPaper {
	return types.ReportPaper{PaperID: p.PaperID, Title: p.Title, Summary: p.Summary}
}

type reportWire struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	CreatedAt     string            `json:"created_at"`
	SentAt        string            `json:"sent_at"`
	PapersCount   *int              `json:"papers_count"`
	Status        string            `json:"status"`
	NotionPageURL string            `json:"notion_page_url"`
	Papers        []reportPaperWire `json:"papers"`
}

// toReport validates and maps a report. When papers are present the count
// must agree with them; when absent the count stands alone.
func (w reportWire) toReport(op string) (types.Report, error) {
	if w.ID == "" {
		return types.Report{}, gateway.Invalid(op, "report has no id")
	}
	status := types.ReportStatus(w.Status)
	if !status.Valid() {
		return types.Report{}, gateway.Invalid(op, "report %s has unknown status %q", w.ID, w.Status)
	}

	count := 0
	switch {
	case w.PapersCount != nil && *w.PapersCount < 0:
		return types.Report{}, gateway.Invalid(op, "report %s has negative papers_count", w.ID)
	case w.PapersCount != nil && w.Papers != nil && *w.PapersCount != len(w.Papers):
		return types.Report{}, gateway.Invalid(op, "report %s has papers_count %d but %d papers", w.ID, *w.PapersCount, len(w.Papers))
	case w.PapersCount != nil:
		count = *w.PapersCount
	default:
		count = len(w.Papers)
	}

	created := w.CreatedAt
	if created == "" {
		created = w.SentAt
	}

	r := types.Report{
		ID:            w.ID,
		UserID:        w.UserID,
		CreatedAt:     catalog.ParseTime(created),
		PapersCount:   count,
		Status:        status,
		NotionPageURL: w.NotionPageURL,
	}
	if w.Papers != nil {
		r.Papers = make([]types.ReportPaper, 0, len(w.Papers))
		for _, p := range w.Papers {
			r.Papers = append(r.Papers, p.toPaper())
		}
	}
	return r, nil
}
