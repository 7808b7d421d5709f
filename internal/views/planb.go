// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package views

import (
	"context"
	"sync"

	"github.com/pdiddy/univ-insight/pkg/types"
)

// PlanBState is a snapshot of the Plan B page.
type PlanBState struct {
	PaperID string
	Loading bool

	// Loaded is true once a lookup succeeded. Loaded with no suggestions
	// means the server found no alternatives, which is not a failure.
	Loaded      bool
	Original    types.OriginalPaper
	Suggestions []types.PlanBSuggestion
	Err         error
}

// Empty reports a successful lookup that returned no suggestions.
func (s PlanBState) Empty() bool {
	return s.Loaded && len(s.Suggestions) == 0
}

// PlanBView drives the Plan B page. Suggestions are kept in server order.
type PlanBView struct {
	finder PlanBFinder

	mu    sync.Mutex
	seq   sequence
	state PlanBState
}

// NewPlanBView returns a view over finder.
func NewPlanBView(f PlanBFinder) *PlanBView {
	return &PlanBView{finder: f}
}

// Load fetches the suggestions for paperID. On failure the previous
// suggestions are discarded, since they belong to another paper, and the
// error is recorded and returned.
func (v *PlanBView) Load(ctx context.Context, paperID string) (PlanBState, error) {
	v.mu.Lock()
	token := v.seq.issue()
	v.state = PlanBState{PaperID: paperID, Loading: true}
	v.mu.Unlock()

	pb, err := v.finder.GetPlanB(ctx, paperID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.seq.isLatest(token) {
		return v.state.snapshot(), ErrSuperseded
	}
	v.state.Loading = false
	if err != nil {
		v.state.Err = err
		return v.state.snapshot(), err
	}
	v.state.Loaded = true
	v.state.Original = pb.Original
	v.state.Suggestions = pb.Suggestions
	return v.state.snapshot(), nil
}

// State returns the current state.
func (v *PlanBView) State() PlanBState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.snapshot()
}

func (s PlanBState) snapshot() PlanBState {
	if s.Suggestions != nil {
		s.Suggestions = append([]types.PlanBSuggestion{}, s.Suggestions...)
	}
	return s
}
