// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReportStatus is the delivery state of a digest report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportSent      ReportStatus = "sent"
	ReportFailed    ReportStatus = "failed"
	ReportCompleted ReportStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportSent, ReportFailed, ReportCompleted:
		return true
	}
	return false
}

// ReportPaper is one paper included in a report.
type ReportPaper struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Report is a generated digest. Papers is only populated once the report
// has been expanded; PapersCount always matches its length in that case.
type Report struct {
	ID            string        `json:"id" yaml:"id"`
	UserID        string        `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
	PapersCount   int           `json:"papers_count" yaml:"papers_count"`
	Status        ReportStatus  `json:"status" yaml:"status"`
	NotionPageURL string        `json:"notion_page_url,omitempty" yaml:"notion_page_url,omitempty"`
	Papers        []ReportPaper `json:"papers,omitempty" yaml:"papers,omitempty"`
}

// GeneratedReport is the server's answer to a generation request.
type GeneratedReport struct {
	Status   string        `json:"status" yaml:"status"`
	ReportID string        `json:"report_id" yaml:"report_id"`
	Papers   []ReportPaper `json:"papers" yaml:"papers"`
}
