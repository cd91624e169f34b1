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
	"fmt"
	"math"

	"github.com/proteinplan/groceryopt/mip"
)

// Row names of the model, in the order they are added.
const (
	RowProteinFloor = "protein_floor"
	RowFatTarget    = "fat_target"
	RowCarbTarget   = "carb_target"
	RowBudgetCap    = "budget_cap"
	RowCalorieCap   = "calorie_cap"
)

// LinkRowName returns the name of the linking row of the i-th product.
func LinkRowName(i int) string {
	return fmt.Sprintf("link_%d", i)
}

// Formulated is a built model together with the handles needed to read a
// solution back.
type Formulated struct {
	Model       *mip.Model
	Formulation Formulation
	Macros      MacroTargets
	// Servings[i] and Units[i] belong to the i-th catalog product.
	Servings []mip.Var
	Units    []mip.Var
}

// BuildModel builds the protein maximization model for `c`.
//
// Infeasible targets are not an error; the solver reports them. Errors are
// limited to invalid inputs and the divisional link form.
func BuildModel(c *Catalog, t Targets, f Formulation) (*Formulated, error) {
	if c == nil || c.Len() == 0 {
		return nil, fmt.Errorf("no products: %w", ErrInvalidCatalog)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	model := mip.NewModelBuilder().WithName("grocery")
	out := &Formulated{
		Formulation: f,
		Macros:      t.Macros(f),
		Servings:    make([]mip.Var, c.Len()),
		Units:       make([]mip.Var, c.Len()),
	}
	for i := range c.products {
		out.Servings[i] = model.NewContinuousVar(0, f.MaxServings).WithName(fmt.Sprintf("servings_%d", i))
		out.Units[i] = model.NewIntVar(0, math.Inf(1)).WithName(fmt.Sprintf("units_%d", i))
	}

	protein := mip.NewLinearExpr()
	fat := mip.NewLinearExpr()
	carbs := mip.NewLinearExpr()
	spend := mip.NewLinearExpr()
	calories := mip.NewLinearExpr()
	for i, p := range c.products {
		z, x := out.Servings[i], out.Units[i]
		protein.AddTerm(z, p.Protein)
		fat.AddTerm(z, p.Fat*f.FatCalorieFactor)
		carbs.AddTerm(z, p.Carbs*f.CarbCalorieFactor)
		spend.AddTerm(x, p.Price.InexactFloat64())
		calories.AddTerm(z, p.Calories*f.CalorieScale)
	}

	model.AddGreaterOrEqual(protein, mip.NewConstant(t.ProteinTarget)).WithName(RowProteinFloor)
	if f.Macros == MacroEquality {
		model.AddEquality(fat, mip.NewConstant(out.Macros.Fat*f.FatCalorieFactor)).WithName(RowFatTarget)
		model.AddEquality(carbs, mip.NewConstant(out.Macros.Carbs*f.CarbCalorieFactor)).WithName(RowCarbTarget)
	}
	model.AddLessOrEqual(spend, mip.NewConstant(t.BudgetCap.InexactFloat64())).WithName(RowBudgetCap)
	model.AddLessOrEqual(calories, mip.NewConstant(t.CalorieCap)).WithName(RowCalorieCap)

	for i, p := range c.products {
		z, x := out.Servings[i], out.Units[i]
		switch f.Link {
		case LinkAtMost:
			model.AddLessOrEqual(mip.NewLinearExpr().AddTerm(z, p.NetWeight), mip.NewLinearExpr().AddTerm(x, 100)).WithName(LinkRowName(i))
		case LinkExact:
			model.AddEquality(mip.NewLinearExpr().AddTerm(x, p.NetWeight), mip.NewLinearExpr().AddTerm(z, 100)).WithName(LinkRowName(i))
		}
	}

	model.Maximize(protein)

	m, err := model.Model()
	if err != nil {
		return nil, fmt.Errorf("building grocery model: %w", err)
	}
	out.Model = m
	return out, nil
}
