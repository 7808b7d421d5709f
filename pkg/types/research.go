// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"time"
)

// ResearchPaper is a search hit. It is a snapshot of the server's view at
// query time and is never mutated locally.
type ResearchPaper struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`

	// University is the display name of the publishing university.
	University string `json:"university" yaml:"university"`

	// PublicationDate is zero when the server sent no parseable date.
	PublicationDate time.Time `json:"publication_date" yaml:"publication_date"`

	SummaryPreview string `json:"summary_preview" yaml:"summary_preview"`

	// UniversityTier is 0 when unknown.
	UniversityTier int `json:"university_tier,omitempty" yaml:"university_tier,omitempty"`
}

// CareerPath describes where the research of a paper can lead.
type CareerPath struct {
	JobTitle         string   `json:"job_title,omitempty" yaml:"job_title,omitempty"`
	SalaryHint       string   `json:"salary_hint,omitempty" yaml:"salary_hint,omitempty"`
	RelatedCompanies []string `json:"related_companies" yaml:"related_companies"`
}

// ActionItems are concrete next steps suggested to a student.
type ActionItems struct {
	Subjects      []string `json:"subjects" yaml:"subjects"`
	ResearchTopic string   `json:"research_topic,omitempty" yaml:"research_topic,omitempty"`
}

// Analysis is the AI-generated explanation of a paper.
type Analysis struct {
	PaperID     string       `json:"paper_id" yaml:"paper_id"`
	Narrative   string       `json:"narrative" yaml:"narrative"`
	CareerPath  *CareerPath  `json:"career_path,omitempty" yaml:"career_path,omitempty"`
	ActionItems *ActionItems `json:"action_items,omitempty" yaml:"action_items,omitempty"`
}

// OriginalPaper summarizes the paper a Plan B lookup started from.
type OriginalPaper struct {
	Title          string `json:"title" yaml:"title"`
	University     string `json:"university" yaml:"university"`
	UniversityTier int    `json:"university_tier" yaml:"university_tier"`
}

// PlanBSuggestion is an alternative university whose research resembles the
// original paper's.
type PlanBSuggestion struct {
	PaperID        string `json:"paper_id" yaml:"paper_id"`
	Title          string `json:"title" yaml:"title"`
	University     string `json:"university" yaml:"university"`
	UniversityTier int    `json:"university_tier" yaml:"university_tier"`
	Summary        string `json:"summary" yaml:"summary"`

	// SimilarityScore is in [0, 1].
	SimilarityScore float64 `json:"similarity_score" yaml:"similarity_score"`

	Reason string `json:"reason" yaml:"reason"`
}

// SimilarityPercent renders the score as a whole percentage. It is
// non-decreasing in the score, so a lower score never displays above a
// higher one.
func (s PlanBSuggestion) SimilarityPercent() int {
	return int(math.Round(s.SimilarityScore * 100))
}

// PlanB is the result of a Plan B lookup. Suggestions keep the server's rank
// order; an empty, non-nil slice means the server found no alternatives.
type PlanB struct {
	Original    OriginalPaper     `json:"original_paper" yaml:"original_paper"`
	Suggestions []PlanBSuggestion `json:"plan_b_suggestions" yaml:"plan_b_suggestions"`
}
