// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mip

import (
	"context"
	"time"
)

// Parameters control a single solve.
type Parameters struct {
	// TimeLimit bounds the wall-clock time of the solve. Zero means no limit
	// beyond the context deadline.
	TimeLimit time.Duration
	// RelativeGap is the relative MIP gap at which the solver may stop. Zero
	// keeps the solver default.
	RelativeGap float64
	// EnableOutput turns on the solver's own logging.
	EnableOutput bool
}

// EffectiveTimeLimit returns the time limit to pass to the solver: the
// smaller of p.TimeLimit and the time left before the deadline of ctx. The
// second return value is false when neither applies.
func (p Parameters) EffectiveTimeLimit(ctx context.Context) (time.Duration, bool) {
	limit, ok := p.TimeLimit, p.TimeLimit > 0
	if deadline, has := ctx.Deadline(); has {
		left := time.Until(deadline)
		if left < 0 {
			left = 0
		}
		if !ok || left < limit {
			limit, ok = left, true
		}
	}
	return limit, ok
}

// Response is the outcome of a solve.
type Response struct {
	Status Status
	// StatusDetail is free-form text from the solver explaining the status.
	StatusDetail   string
	ObjectiveValue float64
	// VariableValues holds one value per model variable when the status has a
	// solution. It may be shorter than the number of variables, or empty.
	VariableValues []float64
}

// HasSolution returns true if the response carries a usable solution.
func (r *Response) HasSolution() bool {
	return r != nil && r.Status.HasSolution()
}

// Value returns the value assigned to the variable with index `ind`. The
// second return value is false, and the value 0, when the solver did not
// assign one.
func (r *Response) Value(ind VarIndex) (float64, bool) {
	if r == nil || ind < 0 || int(ind) >= len(r.VariableValues) {
		return 0, false
	}
	return r.VariableValues[ind], true
}

// SolutionValue returns the value of LinearArgument `la` in the response.
// Variables without a value count as 0.
func SolutionValue(r *Response, la LinearArgument) float64 {
	return la.evaluateSolutionValue(r)
}

// Solver solves a model. Implementations translate the model into the
// representation of a concrete solver and translate its answer back.
//
// An infeasible or unbounded model is not an error: it is reported through
// Response.Status. Errors are reserved for failures to run the solver at all.
type Solver interface {
	Solve(ctx context.Context, m *Model, p Parameters) (*Response, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m *Model, p Parameters) (*Response, error)

// Solve calls f(ctx, m, p).
func (f SolverFunc) Solve(ctx context.Context, m *Model, p Parameters) (*Response, error) {
	return f(ctx, m, p)
}
