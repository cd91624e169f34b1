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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

func TestTargets_Macros(t *testing.T) {
	got := DefaultTargets().Macros(DefaultFormulation())

	want := MacroTargets{TotalCalories: 4000.0 / 3, Fat: 1000.0 / 27, Carbs: 150}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Macros() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestTargets_Validate(t *testing.T) {
	with := func(edit func(t *Targets)) Targets {
		tg := DefaultTargets()
		edit(&tg)
		return tg
	}

	testCases := []struct {
		name    string
		targets Targets
		wantErr error
	}{
		{name: "Default", targets: DefaultTargets()},
		{name: "ZeroProtein", targets: with(func(t *Targets) { t.ProteinTarget = 0 })},
		{name: "NoFat", targets: with(func(t *Targets) { t.FatRatio, t.CarbRatio = 0, 70 })},
		{name: "NegativeProtein", targets: with(func(t *Targets) { t.ProteinTarget = -1 }), wantErr: ErrInvalidTargets},
		{name: "NaNProtein", targets: with(func(t *Targets) { t.ProteinTarget = math.NaN() }), wantErr: ErrInvalidTargets},
		{name: "ZeroBudget", targets: with(func(t *Targets) { t.BudgetCap = decimal.Zero }), wantErr: ErrInvalidTargets},
		{name: "ZeroCalories", targets: with(func(t *Targets) { t.CalorieCap = 0 }), wantErr: ErrInvalidTargets},
		{name: "InfiniteCalories", targets: with(func(t *Targets) { t.CalorieCap = math.Inf(1) }), wantErr: ErrInvalidTargets},
		{name: "ZeroProteinRatio", targets: with(func(t *Targets) { t.ProteinRatio, t.CarbRatio = 0, 75 }), wantErr: ErrInvalidTargets},
		{name: "NegativeFatRatio", targets: with(func(t *Targets) { t.FatRatio, t.CarbRatio = -5, 75 }), wantErr: ErrInvalidTargets},
		{name: "RatiosBelow100", targets: with(func(t *Targets) { t.CarbRatio = 40 }), wantErr: ErrInvalidTargets},
		{name: "RatiosAbove100", targets: with(func(t *Targets) { t.CarbRatio = 45.001 }), wantErr: ErrInvalidTargets},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if err := test.targets.Validate(); !errors.Is(err, test.wantErr) {
				t.Errorf("Validate() returned error %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestFormulation_Validate(t *testing.T) {
	with := func(edit func(f *Formulation)) Formulation {
		f := DefaultFormulation()
		edit(&f)
		return f
	}

	testCases := []struct {
		name        string
		formulation Formulation
		wantErr     error
	}{
		{name: "Default", formulation: DefaultFormulation()},
		{name: "Exact", formulation: with(func(f *Formulation) { f.Link = LinkExact })},
		{name: "UnboundedServings", formulation: with(func(f *Formulation) { f.MaxServings = math.Inf(1) })},
		{name: "ScaledCalories", formulation: with(func(f *Formulation) { f.CalorieScale = 10 })},
		{name: "Ratio", formulation: with(func(f *Formulation) { f.Link = LinkRatio }), wantErr: ErrUndefinedLink},
		{name: "UnknownLink", formulation: with(func(f *Formulation) { f.Link = LinkMode(7) }), wantErr: ErrInvalidFormulation},
		{name: "UnknownMacros", formulation: with(func(f *Formulation) { f.Macros = MacroMode(7) }), wantErr: ErrInvalidFormulation},
		{name: "ZeroCalorieScale", formulation: with(func(f *Formulation) { f.CalorieScale = 0 }), wantErr: ErrInvalidFormulation},
		{name: "ZeroFatFactor", formulation: with(func(f *Formulation) { f.FatCalorieFactor = 0 }), wantErr: ErrInvalidFormulation},
		{name: "NaNCarbFactor", formulation: with(func(f *Formulation) { f.CarbCalorieFactor = math.NaN() }), wantErr: ErrInvalidFormulation},
		{name: "ZeroServings", formulation: with(func(f *Formulation) { f.MaxServings = 0 }), wantErr: ErrInvalidFormulation},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if err := test.formulation.Validate(); !errors.Is(err, test.wantErr) {
				t.Errorf("Validate() returned error %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestFormulation_OutOfReach(t *testing.T) {
	with := func(link LinkMode, maxServings float64) Formulation {
		f := DefaultFormulation()
		f.Link = link
		f.MaxServings = maxServings
		return f
	}

	testCases := []struct {
		name        string
		formulation Formulation
		want        []string
	}{
		{name: "AtMost", formulation: with(LinkAtMost, 1)},
		{name: "ExactDefaultServings", formulation: with(LinkExact, 1), want: []string{"A", "B"}},
		{name: "ExactTwoServings", formulation: with(LinkExact, 2), want: []string{"B"}},
		{name: "ExactFiveServings", formulation: with(LinkExact, 5)},
		{name: "ExactUnbounded", formulation: with(LinkExact, math.Inf(1))},
	}

	catalog := smallCatalog(t)
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, test.formulation.OutOfReach(catalog)); diff != "" {
				t.Errorf("OutOfReach() returned unexpected diff (-want+got): %v", diff)
			}
		})
	}

	if got := with(LinkExact, 1).OutOfReach(DefaultCatalog()); len(got) != DefaultCatalog().Len() {
		t.Errorf("OutOfReach(DefaultCatalog()) = %q, want every product", got)
	}
}

func TestParseModes(t *testing.T) {
	for _, m := range []LinkMode{LinkAtMost, LinkExact, LinkRatio} {
		got, err := ParseLinkMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseLinkMode(%q) = %v, %v, want %v, nil", m.String(), got, err, m)
		}
	}
	for _, m := range []MacroMode{MacroEquality, MacroOmit} {
		got, err := ParseMacroMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMacroMode(%q) = %v, %v, want %v, nil", m.String(), got, err, m)
		}
	}
	if _, err := ParseLinkMode("division"); !errors.Is(err, ErrInvalidFormulation) {
		t.Errorf("ParseLinkMode(%q) returned error %v, want %v", "division", err, ErrInvalidFormulation)
	}
	if _, err := ParseMacroMode("ratio"); !errors.Is(err, ErrInvalidFormulation) {
		t.Errorf("ParseMacroMode(%q) returned error %v, want %v", "ratio", err, ErrInvalidFormulation)
	}
}
