// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/univ-insight/internal/gateway"
	"github.com/pdiddy/univ-insight/pkg/types"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	gw, err := gateway.New(types.GatewayConfig{BaseURL: ts.URL + "/api/v1"}, gateway.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return New(gw)
}

func TestGenerate(t *testing.T) {
	var method, userID string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		userID = r.URL.Query().Get("user_id")
		assert.Equal(t, "/api/v1/reports/generate", r.URL.Path)
		w.Write([]byte(`{"status":"success","report_id":"r-1","papers":[{"paper_id":"p1","title":"T1","summary":"S1"},{"paper_id":"p2","title":"T2","summary":"S2"}]}`))
	})

	got, err := c.Generate(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "r-1", got.ReportID)
	assert.Equal(t, "success", got.Status)
	require.Len(t, got.Papers, 2)
	assert.Equal(t, "p2", got.Papers[1].PaperID)
}

func TestGenerateIsNeverRetried(t *testing.T) {
	var calls int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Generate(context.Background(), "u1")
	assert.ErrorIs(t, err, gateway.UpstreamUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateRequiresUser(t *testing.T) {
	var calls int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	_, err := c.Generate(context.Background(), "")
	assert.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerateWithoutReportIDIsInvalid(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"success","papers":[]}`))
	})
	_, err := c.Generate(context.Background(), "u1")
	assert.ErrorIs(t, err, gateway.InvalidResponse)
}

func TestList(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		w.Write([]byte(`{"total_count":2,"items":[
			{"id":"r-2","created_at":"2026-10-12T09:00:00Z","papers_count":8,"status":"completed"},
			{"id":"r-1","sent_at":"2026-10-05T09:00:00","papers_count":5,"status":"sent","notion_page_url":"https://notion.so/r1"}
		]}`))
	})

	page, err := c.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, "r-2", page.Items[0].ID)
	assert.Equal(t, 8, page.Items[0].PapersCount)
	assert.Equal(t, types.ReportCompleted, page.Items[0].Status)
	assert.Nil(t, page.Items[0].Papers)
	assert.Equal(t, time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC), page.Items[1].CreatedAt)
	assert.Equal(t, "https://notion.so/r1", page.Items[1].NotionPageURL)
}

func TestListShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing items", `{"total_count":0}`},
		{"unknown status", `{"items":[{"id":"r","status":"archived","papers_count":1}]}`},
		{"negative count", `{"items":[{"id":"r","status":"sent","papers_count":-2}]}`},
		{"count disagrees with papers", `{"items":[{"id":"r","status":"sent","papers_count":3,"papers":[{"paper_id":"p"}]}]}`},
		{"missing id", `{"items":[{"status":"sent"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.List(context.Background(), "u1")
			assert.ErrorIs(t, err, gateway.InvalidResponse)
		})
	}
}

func TestGetExpandsPapers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports/r-1", r.URL.Path)
		w.Write([]byte(`{"id":"r-1","user_id":"u1","status":"sent","sent_at":"2026-10-05T09:00:00","papers":[{"paper_id":"p1","title":"T1"},{"paper_id":"p2","title":"T2"}]}`))
	})

	r, err := c.Get(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.PapersCount)
	assert.Len(t, r.Papers, r.PapersCount)
}

func TestGetCountMismatchIsInvalid(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"id":"r-1","status":"sent","papers_count":5,"papers":[]}`))
	})
	_, err := c.Get(context.Background(), "r-1")
	assert.ErrorIs(t, err, gateway.InvalidResponse)
}

func TestGetUnknownReport(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Report not found"}`))
	})
	_, err := c.Get(context.Background(), "r-404")
	assert.ErrorIs(t, err, gateway.NotFound)
}

func TestAttemptTransitions(t *testing.T) {
	var a Attempt
	assert.False(t, a.InFlight())

	a, err := a.Begin()
	require.NoError(t, err)
	assert.Equal(t, Generating, a.State)
	assert.True(t, a.InFlight())

	_, err = a.Begin()
	assert.ErrorIs(t, err, ErrGenerating)

	done := a.Settle(types.GeneratedReport{ReportID: "r-1"}, nil)
	assert.Equal(t, Succeeded, done.State)
	assert.Equal(t, "r-1", done.Report.ReportID)

	failed := a.Settle(types.GeneratedReport{}, errors.New("boom"))
	assert.Equal(t, Failed, failed.State)
	assert.EqualError(t, failed.Err, "boom")

	again, err := failed.Begin()
	require.NoError(t, err)
	assert.Equal(t, Generating, again.State)
	assert.NoError(t, again.Err)
}
