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

// Status is the verdict of a solver on a model.
type Status int

const (
	// StatusUnknown indicates the solver did not report a status.
	StatusUnknown Status = iota
	// StatusOptimal indicates a proven optimal solution was found.
	StatusOptimal
	// StatusFeasible indicates a solution was found but optimality was not
	// proven, e.g. because the time limit was reached.
	StatusFeasible
	// StatusInfeasible indicates no assignment satisfies all constraints.
	StatusInfeasible
	// StatusUnbounded indicates the objective can be improved without limit.
	StatusUnbounded
	// StatusInfeasibleOrUnbounded indicates the solver proved the model has no
	// optimal solution without deciding which of the two cases holds.
	StatusInfeasibleOrUnbounded
	// StatusNotSolved indicates the solve stopped before finding any solution.
	StatusNotSolved
	// StatusModelInvalid indicates the solver rejected the model.
	StatusModelInvalid
	// StatusError indicates the solver failed.
	StatusError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusInfeasibleOrUnbounded:
		return "INFEASIBLE_OR_UNBOUNDED"
	case StatusNotSolved:
		return "NOT_SOLVED"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// HasSolution returns true if a response with this status carries variable
// values satisfying all constraints.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}
