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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"

	"github.com/proteinplan/groceryopt/mip"
)

func buildSmall(t *testing.T, f Formulation) (*Catalog, *Formulated) {
	t.Helper()
	c := smallCatalog(t)
	built, err := BuildModel(c, smallTargets(), f)
	if err != nil {
		t.Fatalf("BuildModel() returned with unexpected error %v", err)
	}
	return c, built
}

func TestExtract(t *testing.T) {
	c, built := buildSmall(t, DefaultFormulation())
	res := &mip.Response{
		Status:         mip.StatusOptimal,
		ObjectiveValue: 10,
		// Units carry solver noise on both sides of the integers.
		VariableValues: []float64{0.5, 0.9999999, 1e-12, -1e-9},
	}

	got := Extract(c, built, res)

	want := &Report{
		Status:        mip.StatusOptimal,
		Authoritative: true,
		Currency:      "€",
		Lines: []Line{
			{Name: "A", UnitPrice: decimal.NewFromInt(2), Servings: 0.5, Units: 1, Total: decimal.NewFromInt(2)},
			{Name: "B", UnitPrice: decimal.RequireFromString("1.5"), Servings: 1e-12, Units: 0, Total: decimal.Zero},
		},
		Totals: Totals{Protein: 10, Fat: 2.5, Carbs: 5, Calories: 50, Price: decimal.NewFromInt(2)},
	}
	if diff := cmp.Diff(want, got, equateDecimals, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Extract() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestExtract_TotalPriceIsExact(t *testing.T) {
	c, err := NewCatalog("€", []Product{
		{Name: "Dime", Price: decimal.RequireFromString("0.1"), NetWeight: 100, Protein: 1, Calories: 1},
		{Name: "Fifth", Price: decimal.RequireFromString("0.2"), NetWeight: 100, Protein: 1, Calories: 1},
	})
	if err != nil {
		t.Fatalf("NewCatalog() returned with unexpected error %v", err)
	}
	built, err := BuildModel(c, smallTargets(), DefaultFormulation())
	if err != nil {
		t.Fatalf("BuildModel() returned with unexpected error %v", err)
	}

	got := Extract(c, built, &mip.Response{Status: mip.StatusFeasible, VariableValues: []float64{1, 1, 1, 1}})

	if want := decimal.RequireFromString("0.3"); !got.Totals.Price.Equal(want) {
		t.Errorf("Totals.Price = %v, want %v", got.Totals.Price, want)
	}
}

func TestExtract_NoSolution(t *testing.T) {
	c, built := buildSmall(t, DefaultFormulation())

	for _, res := range []*mip.Response{
		nil,
		{Status: mip.StatusInfeasible},
		{Status: mip.StatusUnbounded, VariableValues: []float64{1, 1, 1, 1}},
		{Status: mip.StatusNotSolved, StatusDetail: "kTimeLimit"},
	} {
		got := Extract(c, built, res)
		if got.Authoritative {
			t.Errorf("Extract(%v).Authoritative = true, want false", res)
		}
		for _, l := range got.Lines {
			if l.Units != 0 || l.Servings != 0 || !l.Total.IsZero() {
				t.Errorf("Extract(%v) line %+v, want zero quantities", res, l)
			}
		}
		if !got.Totals.Price.IsZero() || got.Totals.Protein != 0 {
			t.Errorf("Extract(%v).Totals = %+v, want zero", res, got.Totals)
		}
	}
}

func TestExtract_LinkAudit(t *testing.T) {
	testCases := []struct {
		name         string
		link         LinkMode
		values       []float64
		wantWarnings int
	}{
		{name: "AtMostHolds", link: LinkAtMost, values: []float64{0.5, 1, 1, 5}},
		{name: "AtMostWithinTolerance", link: LinkAtMost, values: []float64{0.5 + 1e-9, 1, 0, 0}},
		{name: "AtMostBroken", link: LinkAtMost, values: []float64{1, 1, 0, 0}, wantWarnings: 1},
		{name: "ExactHolds", link: LinkExact, values: []float64{2, 1, 5, 1}},
		{name: "ExactBroken", link: LinkExact, values: []float64{1, 1, 5, 2}, wantWarnings: 2},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			f := DefaultFormulation()
			f.Link = test.link
			c, built := buildSmall(t, f)

			got := Extract(c, built, &mip.Response{Status: mip.StatusOptimal, VariableValues: test.values})

			if len(got.Warnings) != test.wantWarnings {
				t.Errorf("Extract().Warnings = %q, want %d warnings", got.Warnings, test.wantWarnings)
			}
		})
	}
}

func TestReport_WriteTo(t *testing.T) {
	c, built := buildSmall(t, DefaultFormulation())
	r := Extract(c, built, &mip.Response{Status: mip.StatusOptimal, StatusDetail: "Optimal", VariableValues: []float64{0.5, 1, 0, 0}})
	r.RunID = "run-1"

	var sb strings.Builder
	n, err := r.WriteTo(&sb)
	if err != nil {
		t.Fatalf("WriteTo() returned with unexpected error %v", err)
	}
	out := sb.String()
	if int(n) != len(out) {
		t.Errorf("WriteTo() = %v, want %v", n, len(out))
	}

	for _, want := range []string{
		"Run: run-1\n",
		"Status: OPTIMAL (Optimal)\n",
		"Product  Price per Unit  Recommended Quantity  Total Price",
		"A        €2.00           1                     €2.00",
		"B        €1.50           0                     €0.00",
		"Total Protein: 10.00 g\n",
		"Total Fats: 2.50 g\n",
		"Total Carbs: 5.00 g\n",
		"Total Price: €2.00\n",
		"Total Calories: 50.00 kcal\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTo() output is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "No solution") {
		t.Errorf("WriteTo() output flags an optimal report as unsolved:\n%s", out)
	}
}

func TestReport_WriteToNoSolution(t *testing.T) {
	c, built := buildSmall(t, DefaultFormulation())
	r := Extract(c, built, &mip.Response{Status: mip.StatusInfeasible})

	var sb strings.Builder
	if _, err := r.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo() returned with unexpected error %v", err)
	}
	out := sb.String()
	for _, want := range []string{"Status: INFEASIBLE\n", "No solution found", "Total Price: €0.00\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTo() output is missing %q:\n%s", want, out)
		}
	}
}
