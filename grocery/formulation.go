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
)

var (
	// ErrUndefinedLink is returned for the divisional linking form
	// net_weight * units / servings == 100, which is undefined at servings == 0.
	ErrUndefinedLink = errors.New("linking constraint divides a decision variable and is not linear")
	// ErrInvalidFormulation is returned for unusable formulation options.
	ErrInvalidFormulation = errors.New("invalid formulation")
)

// LinkMode selects how servings and units of a product are tied together.
type LinkMode int

const (
	// LinkAtMost allows buying more than is eaten:
	// servings * net_weight <= units * 100.
	LinkAtMost LinkMode = iota
	// LinkExact requires eating exactly what is bought:
	// net_weight * units == 100 * servings. It needs MaxServings of at least
	// net_weight/100 for a product to be bought at all; see OutOfReach.
	LinkExact
	// LinkRatio is the divisional form
	// net_weight * units / servings == 100. It is always rejected.
	LinkRatio
)

var linkModeNames = map[LinkMode]string{
	LinkAtMost: "at_most",
	LinkExact:  "exact",
	LinkRatio:  "ratio",
}

func (m LinkMode) String() string {
	if s, ok := linkModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("LinkMode(%d)", int(m))
}

// ParseLinkMode parses "at_most", "exact" or "ratio".
func ParseLinkMode(s string) (LinkMode, error) {
	for m, name := range linkModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown link mode %q: %w", s, ErrInvalidFormulation)
}

// MacroMode selects whether fat and carbohydrate targets become constraints.
type MacroMode int

const (
	// MacroEquality requires fat and carbohydrate calories to match their targets.
	MacroEquality MacroMode = iota
	// MacroOmit leaves fat and carbohydrates unconstrained.
	MacroOmit
)

func (m MacroMode) String() string {
	switch m {
	case MacroEquality:
		return "equality"
	case MacroOmit:
		return "omit"
	default:
		return fmt.Sprintf("MacroMode(%d)", int(m))
	}
}

// ParseMacroMode parses "equality" or "omit".
func ParseMacroMode(s string) (MacroMode, error) {
	switch s {
	case "equality":
		return MacroEquality, nil
	case "omit":
		return MacroOmit, nil
	default:
		return 0, fmt.Errorf("unknown macro mode %q: %w", s, ErrInvalidFormulation)
	}
}

// Formulation holds the modelling choices that are independent of the data.
type Formulation struct {
	Link   LinkMode
	Macros MacroMode
	// CalorieScale multiplies the calorie row of the model.
	CalorieScale float64
	// FatCalorieFactor and CarbCalorieFactor are kcal per gram.
	FatCalorieFactor  float64
	CarbCalorieFactor float64
	// MaxServings is the upper bound of each servings variable, in units of
	// 100 g. It may be +Inf.
	MaxServings float64
}

// DefaultFormulation returns the at-most link, macro equalities, calorie
// scale 1, 9 and 4 kcal/g for fat and carbohydrates and servings in [0, 1].
func DefaultFormulation() Formulation {
	return Formulation{
		Link:              LinkAtMost,
		Macros:            MacroEquality,
		CalorieScale:      1,
		FatCalorieFactor:  9,
		CarbCalorieFactor: 4,
		MaxServings:       1,
	}
}

// OutOfReach returns the names of the products of `c` of which not even one
// unit can be bought under f. With LinkExact one unit fixes servings at
// net_weight/100, so products heavier than 100*MaxServings grams drop out.
func (f Formulation) OutOfReach(c *Catalog) []string {
	if f.Link != LinkExact || c == nil {
		return nil
	}
	var names []string
	for _, p := range c.products {
		if p.NetWeight/100 > f.MaxServings {
			names = append(names, p.Name)
		}
	}
	return names
}

// Validate reports whether the formulation can be built.
func (f Formulation) Validate() error {
	switch f.Link {
	case LinkAtMost, LinkExact:
	case LinkRatio:
		return ErrUndefinedLink
	default:
		return fmt.Errorf("link mode %v: %w", f.Link, ErrInvalidFormulation)
	}
	switch f.Macros {
	case MacroEquality, MacroOmit:
	default:
		return fmt.Errorf("macro mode %v: %w", f.Macros, ErrInvalidFormulation)
	}
	if !finite(f.CalorieScale) || f.CalorieScale <= 0 {
		return fmt.Errorf("calorie scale %v must be positive: %w", f.CalorieScale, ErrInvalidFormulation)
	}
	if !finite(f.FatCalorieFactor) || f.FatCalorieFactor <= 0 {
		return fmt.Errorf("fat calorie factor %v must be positive: %w", f.FatCalorieFactor, ErrInvalidFormulation)
	}
	if !finite(f.CarbCalorieFactor) || f.CarbCalorieFactor <= 0 {
		return fmt.Errorf("carb calorie factor %v must be positive: %w", f.CarbCalorieFactor, ErrInvalidFormulation)
	}
	if math.IsNaN(f.MaxServings) || f.MaxServings <= 0 {
		return fmt.Errorf("max servings %v must be positive: %w", f.MaxServings, ErrInvalidFormulation)
	}
	return nil
}
