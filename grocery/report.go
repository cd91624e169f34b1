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
	"bytes"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	log "github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/proteinplan/groceryopt/mip"
)

const (
	// integralityTolerance absorbs solver noise such as 2.9999999 units.
	integralityTolerance = 1e-6
	// LinkTolerance is the slack allowed when auditing linking rows.
	LinkTolerance = 1e-6
)

// Line is the purchase recommendation for one product.
type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	// Servings is the amount eaten in units of 100 g.
	Servings float64
	// Units is the number of whole retail units to buy.
	Units int64
	Total decimal.Decimal
}

// Totals sums a report over all products. Nutrients are in grams and kcal.
type Totals struct {
	Protein  float64
	Fat      float64
	Carbs    float64
	Calories float64
	Price    decimal.Decimal
}

// Report is the readable outcome of one plan.
type Report struct {
	RunID        string
	Status       mip.Status
	StatusDetail string
	// Authoritative is false when the solver returned no solution. Every
	// quantity is then zero and must not be read as a recommendation.
	Authoritative bool
	Currency      string
	Lines         []Line
	Totals        Totals
	// Warnings lists linking rows the solution violates beyond LinkTolerance
	// and products the formulation leaves out of reach.
	Warnings []string
}

func wholeUnits(v float64) int64 {
	if !(v > 0) || math.IsInf(v, 1) {
		return 0
	}
	return int64(math.Floor(v + integralityTolerance))
}

// linkViolation returns a description of how servings `z` and units `x` of
// `p` break the linking row, or "" when they satisfy it.
func linkViolation(mode LinkMode, p Product, z float64, x int64) string {
	eaten := z * p.NetWeight
	bought := float64(x) * 100
	switch mode {
	case LinkExact:
		lhs, rhs := float64(x)*p.NetWeight, z*100
		if math.Abs(lhs-rhs) > LinkTolerance {
			return fmt.Sprintf("%s: %d units of %v g do not match %.6g servings", p.Name, x, p.NetWeight, z)
		}
	default:
		if eaten > bought+LinkTolerance {
			return fmt.Sprintf("%s: %.6g servings exceed %d units of %v g", p.Name, z, x, p.NetWeight)
		}
	}
	return ""
}

// Extract reads the solver response for a model built from `c`. A response
// without a solution yields a non-authoritative report with zero quantities.
func Extract(c *Catalog, f *Formulated, res *mip.Response) *Report {
	r := &Report{
		Status:   mip.StatusUnknown,
		Currency: c.Currency(),
		Lines:    make([]Line, c.Len()),
		Totals:   Totals{Price: decimal.Zero},
	}
	if res != nil {
		r.Status = res.Status
		r.StatusDetail = res.StatusDetail
		r.Authoritative = res.HasSolution()
	}

	for i, p := range c.products {
		line := Line{Name: p.Name, UnitPrice: p.Price, Total: decimal.Zero}
		if r.Authoritative {
			line.Servings = mip.SolutionValue(res, f.Servings[i])
			line.Units = wholeUnits(mip.SolutionValue(res, f.Units[i]))
			line.Total = p.Price.Mul(decimal.NewFromInt(line.Units))

			r.Totals.Protein += p.Protein * line.Servings
			r.Totals.Fat += p.Fat * line.Servings
			r.Totals.Carbs += p.Carbs * line.Servings
			r.Totals.Calories += p.Calories * line.Servings
			r.Totals.Price = r.Totals.Price.Add(line.Total)

			if w := linkViolation(f.Formulation.Link, p, line.Servings, line.Units); w != "" {
				log.Warningf("linking row %s violated: %s", LinkRowName(i), w)
				r.Warnings = append(r.Warnings, w)
			}
		}
		r.Lines[i] = line
	}
	return r
}

// WriteTo renders the report as a table followed by the totals.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	if r.RunID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", r.RunID)
	}
	if r.StatusDetail != "" {
		fmt.Fprintf(&buf, "Status: %v (%s)\n", r.Status, r.StatusDetail)
	} else {
		fmt.Fprintf(&buf, "Status: %v\n", r.Status)
	}
	if !r.Authoritative {
		fmt.Fprintln(&buf, "No solution found: quantities below are not a recommendation.")
	}
	fmt.Fprintln(&buf)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Product\tPrice per Unit\tRecommended Quantity\tTotal Price\t")
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s\t%s%s\t%d\t%s%s\t\n", l.Name, r.Currency, l.UnitPrice.StringFixed(2), l.Units, r.Currency, l.Total.StringFixed(2))
	}
	tw.Flush()

	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Total Protein: %.2f g\n", r.Totals.Protein)
	fmt.Fprintf(&buf, "Total Fats: %.2f g\n", r.Totals.Fat)
	fmt.Fprintf(&buf, "Total Carbs: %.2f g\n", r.Totals.Carbs)
	fmt.Fprintf(&buf, "Total Price: %s%s\n", r.Currency, r.Totals.Price.StringFixed(2))
	fmt.Fprintf(&buf, "Total Calories: %.2f kcal\n", r.Totals.Calories)
	for _, warning := range r.Warnings {
		fmt.Fprintf(&buf, "Warning: %s\n", warning)
	}
	return buf.WriteTo(w)
}
