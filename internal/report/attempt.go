// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"

	"github.com/pdiddy/univ-insight/pkg/types"
)

// State is the phase of one generation attempt.
type State string

const (
	Idle       State = "idle"
	Generating State = "generating"
	Succeeded  State = "succeeded"
	Failed     State = "failed"
)

// ErrGenerating is returned by Begin while an attempt is still in flight.
var ErrGenerating = errors.New("report generation already in progress")

// Attempt tracks a generation attempt: Idle → Generating → Succeeded or
// Failed. A settled attempt may begin again; a generating one may not.
type Attempt struct {
	State  State
	Report types.GeneratedReport
	Err    error
}

// Begin moves to Generating. It refuses while already Generating.
func (a Attempt) Begin() (Attempt, error) {
	if a.State == Generating {
		return a, ErrGenerating
	}
	return Attempt{State: Generating}, nil
}

// Settle records the outcome of the single request issued after Begin.
func (a Attempt) Settle(r types.GeneratedReport, err error) Attempt {
	if err != nil {
		return Attempt{State: Failed, Err: err}
	}
	return Attempt{State: Succeeded, Report: r}
}

// InFlight reports whether the attempt is Generating.
func (a Attempt) InFlight() bool {
	return a.State == Generating
}
