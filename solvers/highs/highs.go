//go:build cgo && (linux || darwin) && (amd64 || arm64)

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

package highs

import (
	"context"
	"fmt"

	"github.com/bartolsthoorn/gohighs/highs"
	log "github.com/golang/glog"

	"github.com/proteinplan/groceryopt/mip"
)

// feasibilityTolerance is used to decide whether values returned with a
// limit status form a usable solution.
const feasibilityTolerance = 1e-6

// Solver solves models with HiGHS. The zero value is ready to use.
type Solver struct{}

// New returns a Solver.
func New() *Solver {
	return &Solver{}
}

// toHighsModel translates `m` into the column/row layout expected by HiGHS.
func toHighsModel(m *mip.Model) *highs.Model {
	n := m.NumVars()
	hm := &highs.Model{
		Maximize: m.Maximize,
		Offset:   m.ObjectiveOffset,
		ColCosts: make([]float64, n),
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
		VarTypes: make([]highs.VariableType, n),
	}
	for i, v := range m.Variables {
		hm.ColCosts[i] = v.ObjectiveCoefficient
		hm.ColLower[i] = v.LowerBound
		hm.ColUpper[i] = v.UpperBound
		if v.IsInteger {
			hm.VarTypes[i] = highs.Integer
		}
	}
	for _, c := range m.Constraints {
		cols := make([]int, len(c.VarIndex))
		for j, ind := range c.VarIndex {
			cols[j] = int(ind)
		}
		hm.AddSparseRow(c.LowerBound, cols, c.Coefficient, c.UpperBound)
	}
	return hm
}

func solveOptions(ctx context.Context, p mip.Parameters) []highs.SolveOption {
	opts := []highs.SolveOption{highs.WithOutput(p.EnableOutput)}
	if limit, ok := p.EffectiveTimeLimit(ctx); ok {
		opts = append(opts, highs.WithTimeLimit(limit.Seconds()))
	}
	if p.RelativeGap > 0 {
		opts = append(opts, highs.WithMIPRelGap(p.RelativeGap))
	}
	return opts
}

// fromHighsStatus maps a HiGHS model status to a mip status. Limit statuses
// count as feasible only when the returned values satisfy the model.
func fromHighsStatus(m *mip.Model, sol *highs.Solution) mip.Status {
	switch sol.Status {
	case highs.ModelStatusOptimal, highs.ModelStatusModelEmpty:
		return mip.StatusOptimal
	case highs.ModelStatusInfeasible:
		return mip.StatusInfeasible
	case highs.ModelStatusUnbounded:
		return mip.StatusUnbounded
	case highs.ModelStatusUnboundedOrInfeasible:
		return mip.StatusInfeasibleOrUnbounded
	case highs.ModelStatusTimeLimit, highs.ModelStatusIterationLimit,
		highs.ModelStatusObjectiveBound, highs.ModelStatusObjectiveTarget:
		if len(sol.ColValues) == m.NumVars() && len(m.Violations(sol.ColValues, feasibilityTolerance)) == 0 {
			return mip.StatusFeasible
		}
		return mip.StatusNotSolved
	case highs.ModelStatusLoadError, highs.ModelStatusModelError:
		return mip.StatusModelInvalid
	case highs.ModelStatusPresolveError, highs.ModelStatusSolveError, highs.ModelStatusPostsolveError:
		return mip.StatusError
	default:
		return mip.StatusUnknown
	}
}

// Solve solves `m` with HiGHS. The solve itself cannot be interrupted; the
// context deadline only shortens the time limit handed to HiGHS.
func (s *Solver) Solve(ctx context.Context, m *mip.Model, p mip.Parameters) (*mip.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.V(1).Infof("highs: solving %d variables (%d integer), %d constraints", m.NumVars(), m.NumIntegerVars(), m.NumConstraints())

	sol, err := toHighsModel(m).Solve(solveOptions(ctx, p)...)
	if err != nil {
		return nil, fmt.Errorf("highs: solve failed: %w", err)
	}

	res := &mip.Response{
		Status:       fromHighsStatus(m, sol),
		StatusDetail: sol.Status.String(),
	}
	if res.Status.HasSolution() {
		res.ObjectiveValue = sol.Objective
		res.VariableValues = sol.ColValues
	}
	log.V(1).Infof("highs: status %v (%v), objective %v", res.Status, sol.Status, res.ObjectiveValue)
	return res, nil
}
