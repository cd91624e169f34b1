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
	"fmt"
	"math"
)

// ViolationKind tells which part of the model a Violation refers to.
type ViolationKind int

const (
	// RowViolation is a constraint whose activity lies outside its bounds.
	RowViolation ViolationKind = iota
	// BoundViolation is a variable outside its bounds.
	BoundViolation
	// IntegralityViolation is an integer variable with a fractional value.
	IntegralityViolation
)

// Violation describes one unsatisfied part of a model for a given assignment.
type Violation struct {
	Kind ViolationKind
	// Index is the constraint index for RowViolation and the variable index
	// otherwise.
	Index int
	Name  string
	Value float64
	Lower float64
	Upper float64
}

func (v Violation) String() string {
	switch v.Kind {
	case RowViolation:
		return fmt.Sprintf("constraint %d (%s): activity %g not in [%g, %g]", v.Index, v.Name, v.Value, v.Lower, v.Upper)
	case BoundViolation:
		return fmt.Sprintf("variable %d (%s): value %g not in [%g, %g]", v.Index, v.Name, v.Value, v.Lower, v.Upper)
	default:
		return fmt.Sprintf("variable %d (%s): value %g is not integral", v.Index, v.Name, v.Value)
	}
}

func valueAt(values []float64, i int32) float64 {
	if int(i) < len(values) {
		return values[i]
	}
	return 0
}

// ConstraintActivities returns the activity Σ Coefficient·x of every
// constraint for the assignment `values`. Missing values count as 0.
func (m *Model) ConstraintActivities(values []float64) []float64 {
	activities := make([]float64, len(m.Constraints))
	for i, c := range m.Constraints {
		for j, ind := range c.VarIndex {
			activities[i] += c.Coefficient[j] * valueAt(values, ind)
		}
	}
	return activities
}

// ObjectiveValue returns the objective evaluated at `values`.
func (m *Model) ObjectiveValue(values []float64) float64 {
	obj := m.ObjectiveOffset
	for i, v := range m.Variables {
		obj += v.ObjectiveCoefficient * valueAt(values, int32(i))
	}
	return obj
}

// Violations returns every constraint, bound and integrality requirement that
// the assignment `values` misses by more than `tol`.
func (m *Model) Violations(values []float64, tol float64) []Violation {
	var out []Violation
	for i, v := range m.Variables {
		x := valueAt(values, int32(i))
		if x < v.LowerBound-tol || x > v.UpperBound+tol {
			out = append(out, Violation{Kind: BoundViolation, Index: i, Name: v.Name, Value: x, Lower: v.LowerBound, Upper: v.UpperBound})
		}
		if v.IsInteger && math.Abs(x-math.Round(x)) > tol {
			out = append(out, Violation{Kind: IntegralityViolation, Index: i, Name: v.Name, Value: x})
		}
	}
	for i, a := range m.ConstraintActivities(values) {
		c := m.Constraints[i]
		if a < c.LowerBound-tol || a > c.UpperBound+tol {
			out = append(out, Violation{Kind: RowViolation, Index: i, Name: c.Name, Value: a, Lower: c.LowerBound, Upper: c.UpperBound})
		}
	}
	return out
}
