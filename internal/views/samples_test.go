// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSamples(t *testing.T) {
	s, err := LoadSamples()
	require.NoError(t, err)

	ps := s.Papers()
	require.Len(t, ps, 2)
	assert.Equal(t, "KAIST", ps[0].University)
	assert.Equal(t, 2024, ps[0].PublicationDate.Year())

	a := s.Analysis("p9")
	assert.Equal(t, "p9", a.PaperID)
	require.NotNil(t, a.ActionItems)
	assert.Equal(t, []string{"Mathematics", "Computer Science", "Physics"}, a.ActionItems.Subjects)

	a.CareerPath.RelatedCompanies[0] = "changed"
	assert.Equal(t, "Google", s.Analysis("p9").CareerPath.RelatedCompanies[0])
}

func TestParseSamplesRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "papers: [unclosed"},
		{"no papers", "analysis:\n  narrative: x\n"},
		{"bad report status", "papers: [{id: p}]\nanalysis: {narrative: x}\nreports: [{id: r, status: lost}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSamples([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
