// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog searches research papers and looks up universities and
// their crawled papers through the gateway.
package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

// DefaultLimit is the search page size used when Filters.Limit is unset.
const DefaultLimit = 20

// Getter is the slice of the gateway the catalog needs.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Client performs catalog reads. It keeps no state between calls.
type Client struct {
	gw Getter
}

// New returns a Client that issues its calls through gw.
func New(gw Getter) *Client {
	return &Client{gw: gw}
}

// Filters narrows a paper search. Blank Topic or University means no
// filter on that field, never a match on the empty string.
type Filters struct {
	Topic      string
	University string
	Limit      int
	Offset     int
}

// Query renders the filters as request parameters. Unset filters and a
// zero offset are omitted; Limit falls back to DefaultLimit.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if t := strings.TrimSpace(f.Topic); t != "" {
		q.Set("topic", t)
	}
	if u := strings.TrimSpace(f.University); u != "" {
		q.Set("university", u)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// Search returns one page of papers in server order. A transport failure
// comes back as gateway.UpstreamUnavailable; falling back to other content
// is the caller's decision.
func (c *Client) Search(ctx context.Context, f Filters) (types.Page[types.ResearchPaper], error) {
	const op = "GET /research"

	var resp listResponse[paperWire]
	if err := c.gw.Get(ctx, "/research", f.Query(), &resp); err != nil {
		return types.Page[types.ResearchPaper]{}, err
	}
	total, err := resp.validate(op)
	if err != nil {
		return types.Page[types.ResearchPaper]{}, err
	}

	papers := make([]types.ResearchPaper, 0, len(resp.Items))
	for i, w := range resp.Items {
		if w.ID == "" {
			return types.Page[types.ResearchPaper]{}, gateway.Invalid(op, "item %d has no id", i)
		}
		papers = append(papers, w.toPaper())
	}
	return types.Page[types.ResearchPaper]{TotalCount: total, Items: papers}, nil
}

// GetUniversity fetches one university by id.
func (c *Client) GetUniversity(ctx context.Context, id string) (types.University, error) {
	if strings.TrimSpace(id) == "" {
		return types.University{}, emptyID("GET /universities/{id}")
	}
	op := "GET /universities/" + id

	var w universityWire
	if err := c.gw.Get(ctx, "/universities/"+url.PathEscape(id), nil, &w); err != nil {
		return types.University{}, err
	}
	if w.ID == "" {
		return types.University{}, gateway.Invalid(op, "university has no id")
	}
	return w.toUniversity(), nil
}

// ListUniversities returns every university, ordered by the server.
func (c *Client) ListUniversities(ctx context.Context) (types.Page[types.University], error) {
	const op = "GET /universities"

	var resp listResponse[universityWire]
	if err := c.gw.Get(ctx, "/universities", nil, &resp); err != nil {
		return types.Page[types.University]{}, err
	}
	total, err := resp.validate(op)
	if err != nil {
		return types.Page[types.University]{}, err
	}

	unis := make([]types.University, 0, len(resp.Items))
	for i, w := range resp.Items {
		if w.ID == "" {
			return types.Page[types.University]{}, gateway.Invalid(op, "item %d has no id", i)
		}
		unis = append(unis, w.toUniversity())
	}
	return types.Page[types.University]{TotalCount: total, Items: unis}, nil
}

// GetPapers returns the papers crawled for a university.
func (c *Client) GetPapers(ctx context.Context, universityID string) (types.Page[types.CrawledPaper], error) {
	if strings.TrimSpace(universityID) == "" {
		return types.Page[types.CrawledPaper]{}, emptyID("GET /universities/{id}/papers")
	}
	op := "GET /universities/" + universityID + "/papers"

	var resp listResponse[crawledPaperWire]
	if err := c.gw.Get(ctx, "/universities/"+url.PathEscape(universityID)+"/papers", nil, &resp); err != nil {
		return types.Page[types.CrawledPaper]{}, err
	}
	total, err := resp.validate(op)
	if err != nil {
		return types.Page[types.CrawledPaper]{}, err
	}

	papers := make([]types.CrawledPaper, 0, len(resp.Items))
	for _, w := range resp.Items {
		papers = append(papers, w.toCrawledPaper())
	}
	return types.Page[types.CrawledPaper]{TotalCount: total, Items: papers}, nil
}

// emptyID reports a blank id as unresolvable instead of letting it collapse
// the path onto the listing endpoint.
func emptyID(op string) error {
	return &gateway.Error{Kind: gateway.NotFound, Op: op, Detail: "empty id"}
}

// ParseTime accepts the timestamp layouts the API emits: RFC 3339, Python
// isoformat without a zone, and plain dates. Unparseable input yields the
// zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// API JSON structures.

type listResponse[T any] struct {
	TotalCount *int `json:"total_count"`
	Items      []T  `json:"items"`
}

// validate checks the envelope shape and returns the total to report.
func (r listResponse[T]) validate(op string) (int, error) {
	if r.Items == nil {
		return 0, gateway.Invalid(op, "response has no items")
	}
	if r.TotalCount == nil {
		return len(r.Items), nil
	}
	if *r.TotalCount < 0 {
		return 0, gateway.Invalid(op, "negative total_count %d", *r.TotalCount)
	}
	return *r.TotalCount, nil
}

type paperWire struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	University     string `json:"university"`
	Date           string `json:"date"`
	PubDate        string `json:"pub_date"`
	SummaryPreview string `json:"summary_preview"`
	UniversityTier int    `json:"university_tier"`
}

func (w paperWire) toPaper() types.ResearchPaper {
	date := w.PubDate
	if date == "" {
		date = w.Date
	}
	return types.ResearchPaper{
		ID:              w.ID,
		Title:           w.Title,
		University:      w.University,
		PublicationDate: ParseTime(date),
		SummaryPreview:  w.SummaryPreview,
		UniversityTier:  w.UniversityTier,
	}
}

type universityWire struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NameKo          string `json:"name_ko"`
	Location        string `json:"location"`
	Tier            string `json:"tier"`
	URL             string `json:"url"`
	EstablishedYear int    `json:"established_year"`
	Ranking         int    `json:"ranking"`
	Description     string `json:"description"`
	CollegeCount    int    `json:"college_count"`
}

func (w universityWire) toUniversity() types.University {
	return types.University{
		ID:              w.ID,
		Name:            w.Name,
		NameLocal:       w.NameKo,
		Location:        w.Location,
		Tier:            w.Tier,
		URL:             w.URL,
		EstablishedYear: w.EstablishedYear,
		Ranking:         w.Ranking,
		Description:     w.Description,
		CollegeCount:    w.CollegeCount,
	}
}

type crawledPaperWire struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Abstract  string   `json:"abstract"`
	CrawledAt string   `json:"crawled_at"`
	Keywords  []string `json:"keywords"`
}

func (w crawledPaperWire) toCrawledPaper() types.CrawledPaper {
	return types.CrawledPaper{
		ID:        w.ID,
		Title:     w.Title,
		URL:       w.URL,
		Abstract:  w.Abstract,
		CrawledAt: ParseTime(w.CrawledAt),
		Keywords:  w.Keywords,
	}
}
