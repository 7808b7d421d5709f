// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// University is a catalog entry.
type University struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	NameLocal       string `json:"name_local" yaml:"name_local"`
	Location        string `json:"location,omitempty" yaml:"location,omitempty"`
	Tier            string `json:"tier,omitempty" yaml:"tier,omitempty"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	EstablishedYear int    `json:"established_year,omitempty" yaml:"established_year,omitempty"`
	Ranking         int    `json:"ranking,omitempty" yaml:"ranking,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
	CollegeCount    int    `json:"college_count,omitempty" yaml:"college_count,omitempty"`
}

// CrawledPaper is a paper ingested by a crawl job.
type CrawledPaper struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	URL       string    `json:"url,omitempty" yaml:"url,omitempty"`
	Abstract  string    `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	CrawledAt time.Time `json:"crawled_at,omitempty" yaml:"crawled_at,omitempty"`
	Keywords  []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CrawlAck acknowledges that a crawl job was accepted for processing. It
// carries no job identity and says nothing about completion.
type CrawlAck struct {
	Status       string `json:"status" yaml:"status"`
	UniversityID string `json:"university_id" yaml:"university_id"`
	TargetURL    string `json:"target_url" yaml:"target_url"`
	Message      string `json:"message" yaml:"message"`
}

// Page is one page of a listing plus the server's total.
type Page[T any] struct {
	TotalCount int `json:"total_count" yaml:"total_count"`
	Items      []T `json:"items" yaml:"items"`
}
