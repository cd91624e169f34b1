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
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidTargets is returned when targets cannot produce a meaningful model.
var ErrInvalidTargets = errors.New("invalid targets")

// ratioSumTolerance bounds how far the three macro ratios may sum away from 100.
const ratioSumTolerance = 1e-9

// Calories per gram of protein, used to derive the total calorie target.
const proteinCaloriesPerGram = 4

// Targets holds the user's nutritional goals and limits.
type Targets struct {
	// ProteinTarget is the minimum protein in grams.
	ProteinTarget float64
	// BudgetCap is the maximum spend.
	BudgetCap decimal.Decimal
	// CalorieCap is the maximum energy in kcal.
	CalorieCap float64
	// Macro ratios are percentages of total calories and sum to 100.
	ProteinRatio float64
	FatRatio     float64
	CarbRatio    float64
}

// DefaultTargets returns the reference targets: 100 g protein, a budget of
// 3000, 15000 kcal and a 30/25/45 macro split.
func DefaultTargets() Targets {
	return Targets{
		ProteinTarget: 100,
		BudgetCap:     decimal.NewFromInt(3000),
		CalorieCap:    15000,
		ProteinRatio:  30,
		FatRatio:      25,
		CarbRatio:     45,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports whether the targets are usable.
func (t Targets) Validate() error {
	switch {
	case !finite(t.ProteinTarget) || t.ProteinTarget < 0:
		return fmt.Errorf("protein target %v must be a non-negative number: %w", t.ProteinTarget, ErrInvalidTargets)
	case !t.BudgetCap.IsPositive():
		return fmt.Errorf("budget cap %v must be positive: %w", t.BudgetCap, ErrInvalidTargets)
	case !finite(t.CalorieCap) || t.CalorieCap <= 0:
		return fmt.Errorf("calorie cap %v must be positive: %w", t.CalorieCap, ErrInvalidTargets)
	case !finite(t.ProteinRatio) || t.ProteinRatio <= 0 || t.ProteinRatio > 100:
		return fmt.Errorf("protein ratio %v must be in (0, 100]: %w", t.ProteinRatio, ErrInvalidTargets)
	case !finite(t.FatRatio) || t.FatRatio < 0 || t.FatRatio > 100:
		return fmt.Errorf("fat ratio %v must be in [0, 100]: %w", t.FatRatio, ErrInvalidTargets)
	case !finite(t.CarbRatio) || t.CarbRatio < 0 || t.CarbRatio > 100:
		return fmt.Errorf("carb ratio %v must be in [0, 100]: %w", t.CarbRatio, ErrInvalidTargets)
	}
	if sum := t.ProteinRatio + t.FatRatio + t.CarbRatio; math.Abs(sum-100) > ratioSumTolerance {
		return fmt.Errorf("macro ratios sum to %v, want 100: %w", sum, ErrInvalidTargets)
	}
	return nil
}

// MacroTargets are the targets derived from the protein goal and the ratios.
type MacroTargets struct {
	// TotalCalories is the energy implied by the protein target and ratio.
	TotalCalories float64
	// Fat and Carbs are in grams.
	Fat   float64
	Carbs float64
}

// Macros derives the fat and carbohydrate targets. `f` supplies the calories
// per gram of fat and carbohydrate.
func (t Targets) Macros(f Formulation) MacroTargets {
	total := t.ProteinTarget * proteinCaloriesPerGram / (t.ProteinRatio / 100)
	return MacroTargets{
		TotalCalories: total,
		Fat:           total * (t.FatRatio / 100) / f.FatCalorieFactor,
		Carbs:         total * (t.CarbRatio / 100) / f.CarbCalorieFactor,
	}
}
