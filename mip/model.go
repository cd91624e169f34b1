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

// Package mip offers a user-friendly API to build mixed-integer linear models.
//
// The `Builder` struct wraps a `Model` and provides helper methods for adding
// variables, constraints and the objective to it.
// The `Var` and `Constraint` structs are references to specific entries in the
// model and provide helpful methods for interacting with them.
// The `LinearExpr` struct provides helper methods for creating constraints and
// the objective from expressions with many variables and coefficients.
//
// The package never solves anything itself. A built `Model` is handed to a
// `Solver` implementation, which returns a `Response`.
package mip

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrInvalidBounds holds the error when a variable or constraint has NaN or
	// inverted bounds.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrInvalidCoefficient holds the error when a term has a NaN or infinite
	// coefficient.
	ErrInvalidCoefficient = errors.New("invalid coefficient")
	// ErrDuplicateName holds the error when two variables or two constraints
	// share a non-empty name.
	ErrDuplicateName = errors.New("duplicate name")
)

type (
	// VarIndex is the index of a variable in the model.
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

// Model is the solver-independent description of a mixed-integer linear
// program:
//
//	Maximize (or Minimize): Σ ObjectiveCoefficient·x + ObjectiveOffset
//	Subject to:             LowerBound ≤ Σ Coefficient·x ≤ UpperBound
//	And:                    LowerBound ≤ x ≤ UpperBound, x integral if IsInteger
//
// The layout mirrors OR-tools' MPModelProto so that it can be serialized
// without translation.
type Model struct {
	Name            string
	Maximize        bool
	ObjectiveOffset float64
	Variables       []*Variable
	Constraints     []*LinearConstraint
}

// Variable is a column of the model.
type Variable struct {
	Name                 string
	LowerBound           float64
	UpperBound           float64
	ObjectiveCoefficient float64
	IsInteger            bool
}

// LinearConstraint is a row of the model. VarIndex and Coefficient have the
// same length, are sorted by variable index and hold no duplicate index.
type LinearConstraint struct {
	Name        string
	LowerBound  float64
	UpperBound  float64
	VarIndex    []int32
	Coefficient []float64
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int {
	return len(m.Variables)
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int {
	return len(m.Constraints)
}

// NumIntegerVars returns the number of integer variables in the model.
func (m *Model) NumIntegerVars() int {
	n := 0
	for _, v := range m.Variables {
		if v.IsInteger {
			n++
		}
	}
	return n
}

// LinearArgument provides an interface for Var and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c float64)
	evaluateSolutionValue(r *Response) float64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    float64
}

type varCoeff struct {
	ind   VarIndex
	coeff float64
	mb    *Builder
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff float64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []float64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c float64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c, mb: vc.mb})
	}
	e.offset += l.offset * c
}

func (l *LinearExpr) evaluateSolutionValue(r *Response) float64 {
	result := l.offset

	for _, vc := range l.varCoeffs {
		v, _ := r.Value(vc.ind)
		result += v * vc.coeff
	}

	return result
}

// merged returns the terms of the expression sorted by variable index, with
// duplicate indices summed and zero coefficients dropped.
func (l *LinearExpr) merged() ([]int32, []float64) {
	sums := make(map[VarIndex]float64, len(l.varCoeffs))
	for _, vc := range l.varCoeffs {
		sums[vc.ind] += vc.coeff
	}
	indices := make([]int32, 0, len(sums))
	for ind, c := range sums {
		if c != 0 {
			indices = append(indices, int32(ind))
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	coeffs := make([]float64, len(indices))
	for i, ind := range indices {
		coeffs[i] = sums[VarIndex(ind)]
	}
	return indices, coeffs
}

// Var is a reference to a continuous or integer variable in the model.
type Var struct {
	ind VarIndex
	mb  *Builder
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.mb.model.Variables[v.ind].Name
}

// Index returns the index of the variable.
func (v Var) Index() VarIndex {
	return v.ind
}

// Bounds returns the lower and upper bounds of the variable.
func (v Var) Bounds() (float64, float64) {
	pv := v.mb.model.Variables[v.ind]
	return pv.LowerBound, pv.UpperBound
}

// IsInteger returns true if the variable is restricted to integral values.
func (v Var) IsInteger() bool {
	return v.mb.model.Variables[v.ind].IsInteger
}

// WithName sets the name of the variable.
func (v Var) WithName(s string) Var {
	v.mb.model.Variables[v.ind].Name = s
	return v
}

func (v Var) addToLinearExpr(e *LinearExpr, c float64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: v.ind, coeff: c, mb: v.mb})
}

func (v Var) evaluateSolutionValue(r *Response) float64 {
	val, _ := r.Value(v.ind)
	return val
}

// Constraint is a reference to a linear constraint in the model.
type Constraint struct {
	ind ConstrIndex
	mb  *Builder
}

// WithName sets the name of the constraint.
func (c Constraint) WithName(s string) Constraint {
	c.mb.model.Constraints[c.ind].Name = s
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.mb.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// Bounds returns the lower and upper bounds of the constraint, after the
// constant offset of the expression has been moved to the right-hand side.
func (c Constraint) Bounds() (float64, float64) {
	pc := c.mb.model.Constraints[c.ind]
	return pc.LowerBound, pc.UpperBound
}

// Builder provides a wrapper for the Model under construction.
type Builder struct {
	model *Model
	// The first and only the first error is reported in Model.
	err error
}

// NewModelBuilder creates and returns a new Builder.
func NewModelBuilder() *Builder {
	return &Builder{model: &Model{}}
}

// WithName sets the name of the model.
func (mb *Builder) WithName(s string) *Builder {
	mb.model.Name = s
	return mb
}

// setErrorf records the error if no error has been recorded yet.
func (mb *Builder) setErrorf(format string, a ...any) {
	err := fmt.Errorf(format, a...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if mb.err == nil {
		mb.err = err
	}
}

// checkSameModelAndSetErrorf returns true if `mb` and `mb2` point to the same Builder.
// If false, an error with the error message `errString` is set on `mb` if `mb.err`
// is nil.
func (mb *Builder) checkSameModelAndSetErrorf(mb2 *Builder, format string, a ...any) bool {
	if mb == mb2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	mb.setErrorf(format+": %w", args...)
	return false
}

func (mb *Builder) checkBounds(what string, lb, ub float64) {
	if math.IsNaN(lb) || math.IsNaN(ub) || lb > ub {
		mb.setErrorf("%s has bounds [%v, %v]: %w", what, lb, ub, ErrInvalidBounds)
	}
}

func (mb *Builder) newVar(lb, ub float64, integer bool) Var {
	v := Var{mb: mb, ind: VarIndex(len(mb.model.Variables))}
	mb.checkBounds(fmt.Sprintf("variable %d", v.ind), lb, ub)
	mb.model.Variables = append(mb.model.Variables, &Variable{
		LowerBound: lb,
		UpperBound: ub,
		IsInteger:  integer,
	})
	return v
}

// NewContinuousVar creates a new continuous variable with domain [lb, ub].
// Use math.Inf for an unbounded side.
func (mb *Builder) NewContinuousVar(lb, ub float64) Var {
	return mb.newVar(lb, ub, false)
}

// NewIntVar creates a new integer variable with domain [lb, ub]. Use math.Inf
// for an unbounded side.
func (mb *Builder) NewIntVar(lb, ub float64) Var {
	return mb.newVar(lb, ub, true)
}

// collect validates the terms of `le` against the builder and returns its
// merged representation.
func (mb *Builder) collect(le *LinearExpr, context string) ([]int32, []float64) {
	for _, vc := range le.varCoeffs {
		if !mb.checkSameModelAndSetErrorf(vc.mb, "variable %v added to %s", vc.ind, context) {
			return nil, nil
		}
		if math.IsNaN(vc.coeff) || math.IsInf(vc.coeff, 0) {
			mb.setErrorf("variable %v in %s has coefficient %v: %w", vc.ind, context, vc.coeff, ErrInvalidCoefficient)
			return nil, nil
		}
	}
	return le.merged()
}

// addLinearConstraint adds a linear constraint that enforces `lb <= le <= ub`. The constant
// offset of `le` is subtracted from both bounds.
func (mb *Builder) addLinearConstraint(le *LinearExpr, lb, ub float64) Constraint {
	c := Constraint{mb: mb, ind: ConstrIndex(len(mb.model.Constraints))}
	context := fmt.Sprintf("constraint %d", c.ind)
	indices, coeffs := mb.collect(le, context)
	lb, ub = lb-le.offset, ub-le.offset
	mb.checkBounds(context, lb, ub)
	mb.model.Constraints = append(mb.model.Constraints, &LinearConstraint{
		LowerBound:  lb,
		UpperBound:  ub,
		VarIndex:    indices,
		Coefficient: coeffs,
	})
	return c
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`.
func (mb *Builder) AddLinearConstraint(expr LinearArgument, lb, ub float64) Constraint {
	linExpr := NewLinearExpr().Add(expr)
	return mb.addLinearConstraint(linExpr, lb, ub)
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (mb *Builder) AddEquality(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return mb.addLinearConstraint(diff, 0, 0)
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (mb *Builder) AddLessOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return mb.addLinearConstraint(diff, math.Inf(-1), 0)
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (mb *Builder) AddGreaterOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return mb.addLinearConstraint(diff, 0, math.Inf(1))
}

func (mb *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := NewLinearExpr().Add(obj)
	indices, coeffs := mb.collect(o, "objective")

	for _, v := range mb.model.Variables {
		v.ObjectiveCoefficient = 0
	}
	for i, ind := range indices {
		mb.model.Variables[ind].ObjectiveCoefficient = coeffs[i]
	}
	mb.model.ObjectiveOffset = o.offset
	mb.model.Maximize = maximize
}

// Minimize sets a linear minimization objective, replacing any previous one.
func (mb *Builder) Minimize(obj LinearArgument) {
	mb.setObjective(obj, false)
}

// Maximize sets a linear maximization objective, replacing any previous one.
func (mb *Builder) Maximize(obj LinearArgument) {
	mb.setObjective(obj, true)
}

// Model returns the built model. The model returned is a pointer to the model in Builder,
// and if modified, future calls to the Builder API can fail or result in an invalid model.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders) or when two variables or two constraints share a
// non-empty name.
func (mb *Builder) Model() (*Model, error) {
	if mb.err != nil {
		return nil, mb.err
	}
	seen := make(map[string]bool, len(mb.model.Variables))
	for i, v := range mb.model.Variables {
		if v.Name == "" {
			continue
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("variable %d named %q: %w", i, v.Name, ErrDuplicateName)
		}
		seen[v.Name] = true
	}
	seen = make(map[string]bool, len(mb.model.Constraints))
	for i, c := range mb.model.Constraints {
		if c.Name == "" {
			continue
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("constraint %d named %q: %w", i, c.Name, ErrDuplicateName)
		}
		seen[c.Name] = true
	}
	return mb.model, nil
}
