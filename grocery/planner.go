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

package grocery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/proteinplan/groceryopt/mip"
)

// Planner runs the build, solve and extract steps once per call.
type Planner struct {
	Solver     mip.Solver
	Parameters mip.Parameters
}

// Plan builds the model for the inputs, solves it once and returns the report.
//
// An infeasible or unbounded model is not an error: the report carries the
// status and is not authoritative. Errors come from invalid inputs or from a
// solver that could not run.
func (p *Planner) Plan(ctx context.Context, c *Catalog, t Targets, f Formulation) (*Report, error) {
	if p.Solver == nil {
		return nil, errors.New("planner has no solver")
	}
	runID := uuid.NewString()

	built, err := BuildModel(c, t, f)
	if err != nil {
		return nil, err
	}
	log.Infof("run %s: %d products, %d variables, %d constraints, link %v, macros %v",
		runID, c.Len(), built.Model.NumVars(), built.Model.NumConstraints(), f.Link, f.Macros)

	unreachable := f.OutOfReach(c)
	if len(unreachable) > 0 {
		log.Warningf("run %s: max servings %v allows no unit of %d products under the exact link", runID, f.MaxServings, len(unreachable))
	}

	res, err := p.Solver.Solve(ctx, built.Model, p.Parameters)
	if err != nil {
		return nil, fmt.Errorf("run %s: solve: %w", runID, err)
	}

	report := Extract(c, built, res)
	report.RunID = runID
	if len(unreachable) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("max servings %v allows no unit of %s under the exact link", f.MaxServings, strings.Join(unreachable, ", ")))
	}
	if report.Authoritative {
		log.Infof("run %s: %v, protein %.2f g, spend %s%s, %.2f kcal",
			runID, report.Status, report.Totals.Protein, report.Currency, report.Totals.Price.StringFixed(2), report.Totals.Calories)
	} else {
		log.Warningf("run %s: no solution, status %v", runID, report.Status)
	}
	return report, nil
}
