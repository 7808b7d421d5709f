// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/univ-insight/pkg/types"
)

func TestFilterUniversities(t *testing.T) {
	us := []types.University{
		{ID: "1", Name: "Seoul National University", NameLocal: "서울대학교"},
		{ID: "2", Name: "KAIST", NameLocal: "한국과학기술원"},
		{ID: "3", Name: "Yonsei University", NameLocal: "연세대학교"},
	}
	tests := []struct {
		q    string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"university", []string{"1", "3"}},
		{"kaist", []string{"2"}},
		{"서울", []string{"1"}},
		{"대학교", []string{"1", "3"}},
		{"MIT", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got := []string{}
			for _, u := range FilterUniversities(us, tt.q) {
				got = append(got, u.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniversityListFilterUsesLoadedList(t *testing.T) {
	c := &stubUniversities{list: types.Page[types.University]{TotalCount: 2, Items: []types.University{
		{ID: "1", Name: "KAIST"}, {ID: "2", Name: "POSTECH"},
	}}}
	v := NewUniversityListView(c)

	assert.Empty(t, v.Filter(""))
	_, err := v.Load(context.Background())
	require.NoError(t, err)
	got := v.Filter("post")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestUniversityLoadPrefillsCrawlURL(t *testing.T) {
	c := &stubUniversities{univ: types.University{Name: "Example", URL: "https://example.edu"}}
	v := NewUniversityView(c, &gatedCrawler{}, nil)

	got, err := v.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.edu", got.CrawlURL)
	require.NotNil(t, got.University)
	assert.Equal(t, "u1", got.University.ID)
}

func TestCrawlShowsQueuedWithoutRefreshing(t *testing.T) {
	c := &stubUniversities{univ: types.University{URL: "https://example.edu"}}
	cr := &gatedCrawler{ack: types.CrawlAck{Status: "queued", UniversityID: "u1", TargetURL: "https://example.edu", Message: "Crawling job has been queued"}}
	v := NewUniversityView(c, cr, nil)
	ctx := context.Background()

	_, err := v.Load(ctx, "u1")
	require.NoError(t, err)
	got, err := v.Crawl(ctx, "")
	require.NoError(t, err)

	assert.Contains(t, got.Info, "queued")
	assert.Equal(t, []string{"u1 https://example.edu"}, cr.calls)
	assert.Equal(t, 0, c.paperCalls, "crawl must not refresh papers")
	assert.False(t, got.Crawling)

	_, err = v.RefreshPapers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.paperCalls)
}

func TestCrawlExplicitTargetWins(t *testing.T) {
	c := &stubUniversities{univ: types.University{URL: "https://example.edu"}}
	cr := &gatedCrawler{ack: types.CrawlAck{Status: "queued"}}
	v := NewUniversityView(c, cr, nil)
	ctx := context.Background()

	_, err := v.Load(ctx, "u1")
	require.NoError(t, err)
	_, err = v.Crawl(ctx, "https://example.edu/research")
	require.NoError(t, err)

	v.SetCrawlURL(" https://example.edu/labs ")
	assert.Equal(t, "https://example.edu/labs", v.State().CrawlURL)
	_, err = v.Crawl(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"u1 https://example.edu/research", "u1 https://example.edu/labs"}, cr.calls)
}

func TestCrawlIsSingleFlight(t *testing.T) {
	c := &stubUniversities{univ: types.University{URL: "https://example.edu"}}
	cr := &gatedCrawler{
		ack:     types.CrawlAck{Status: "queued"},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	v := NewUniversityView(c, cr, nil)
	ctx := context.Background()
	_, err := v.Load(ctx, "u1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := v.Crawl(ctx, "")
		done <- err
	}()
	<-cr.started
	assert.True(t, v.State().Crawling)

	_, err = v.Crawl(ctx, "")
	assert.ErrorIs(t, err, ErrInFlight)

	close(cr.release)
	require.NoError(t, <-done)
	assert.Len(t, cr.calls, 1)
}

func TestCrawlAckForPreviousUniversityIsDropped(t *testing.T) {
	c := &stubUniversities{univ: types.University{URL: "https://example.edu"}}
	cr := &gatedCrawler{
		ack:     types.CrawlAck{Status: "queued"},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	v := NewUniversityView(c, cr, nil)
	ctx := context.Background()

	_, err := v.Load(ctx, "u1")
	require.NoError(t, err)
	first := make(chan error, 1)
	go func() {
		_, err := v.Crawl(ctx, "")
		first <- err
	}()
	<-cr.started

	st, err := v.Load(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, st.Crawling)

	second := make(chan error, 1)
	go func() {
		_, err := v.Crawl(ctx, "")
		second <- err
	}()
	<-cr.started

	close(cr.release)
	assert.ErrorIs(t, <-first, ErrSuperseded)
	require.NoError(t, <-second)

	got := v.State()
	assert.Equal(t, "u2", got.University.ID)
	assert.False(t, got.Crawling)
	assert.Contains(t, got.Info, "queued u2")
	assert.NotContains(t, got.Info, "u1")
	assert.Len(t, cr.calls, 2)
}

func TestCrawlFailureIsShown(t *testing.T) {
	c := &stubUniversities{univ: types.University{URL: "https://example.edu"}}
	cr := &gatedCrawler{err: errUnavailable}
	v := NewUniversityView(c, cr, nil)
	ctx := context.Background()
	_, err := v.Load(ctx, "u1")
	require.NoError(t, err)

	got, err := v.Crawl(ctx, "")
	assert.ErrorIs(t, err, errUnavailable)
	assert.ErrorIs(t, got.CrawlErr, errUnavailable)
	assert.Empty(t, got.Info)
}

func TestCrawlNeedsLoadedUniversity(t *testing.T) {
	cr := &gatedCrawler{}
	v := NewUniversityView(&stubUniversities{}, cr, nil)
	_, err := v.Crawl(context.Background(), "https://example.edu")
	assert.Error(t, err)
	assert.Empty(t, cr.calls)
}
