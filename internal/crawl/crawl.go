// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl triggers ingestion jobs for a university. A trigger is fire
// and forget: the server enqueues work and acknowledges at once, with no
// job id to poll. The acknowledgment means "accepted for processing", never
// "done"; callers refresh the paper list by hand.
package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// Poster is the slice of the gateway the client needs.
type Poster interface {
	Post(ctx context.Context, path string, query url.Values, body, out any) error
}

// PaperLister reads a university's crawled papers. catalog.Client
// implements it.
type PaperLister interface {
	GetPapers(ctx context.Context, universityID string) (types.Page[types.CrawledPaper], error)
}

// Client triggers crawl jobs and refreshes the resulting paper set.
type Client struct {
	gw     Poster
	papers PaperLister
}

// New returns a Client posting through gw and reading papers from papers.
func New(gw Poster, papers PaperLister) *Client {
	return &Client{gw: gw, papers: papers}
}

// Trigger enqueues a crawl of targetURL for universityID. An empty
// targetURL lets the server fall back to the university's own URL. The
// request is sent once and never retried.
func (c *Client) Trigger(ctx context.Context, universityID, targetURL string) (types.CrawlAck, error) {
	const op = "POST /admin/crawl"
	if strings.TrimSpace(universityID) == "" {
		return types.CrawlAck{}, &gateway.Error{Kind: gateway.NotFound, Op: op, Detail: "empty university id"}
	}

	req := crawlRequest{UniversityID: universityID, TargetURL: strings.TrimSpace(targetURL)}
	var w crawlResponse
	if err := c.gw.Post(ctx, "/admin/crawl", nil, req, &w); err != nil {
		return types.CrawlAck{}, err
	}
	if w.Status == "" {
		return types.CrawlAck{}, gateway.Invalid(op, "acknowledgment has no status")
	}

	ack := types.CrawlAck{
		Status:       w.Status,
		UniversityID: w.UniversityID,
		TargetURL:    w.TargetURL,
		Message:      w.Message,
	}
	if ack.UniversityID == "" {
		ack.UniversityID = universityID
	}
	if ack.TargetURL == "" {
		ack.TargetURL = req.TargetURL
	}
	return ack, nil
}

// RefreshPapers re-reads the paper set of a university. It is the manual
// counterpart of Trigger.
func (c *Client) RefreshPapers(ctx context.Context, universityID string) (types.Page[types.CrawledPaper], error) {
	return c.papers.GetPapers(ctx, universityID)
}

// API JSON structures.

type crawlRequest struct {
	UniversityID string `json:"university_id"`
	TargetURL    string `json:"target_url,omitempty"`
}

type crawlResponse struct {
	Status       string `json:"status"`
	UniversityID string `json:"university_id"`
	TargetURL    string `json:"target_url"`
	Message      string `json:"message"`
}
