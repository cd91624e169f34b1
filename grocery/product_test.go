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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var equateDecimals = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if got, want := c.Len(), 10; got != want {
		t.Errorf("Len() = %v, want %v", got, want)
	}
	if got, want := c.Currency(), "€"; got != want {
		t.Errorf("Currency() = %q, want %q", got, want)
	}
	tuna, ok := c.Lookup("Tuna Cans (185g)")
	if !ok {
		t.Fatalf("Lookup(%q) found nothing", "Tuna Cans (185g)")
	}
	want := Product{Name: "Tuna Cans (185g)", Price: decimal.RequireFromString("1.5"), NetWeight: 185, Protein: 24, Calories: 128, Fat: 0.5, Carbs: 0}
	if diff := cmp.Diff(want, tuna, equateDecimals); diff != "" {
		t.Errorf("Lookup() returned unexpected diff (-want+got): %v", diff)
	}
	if got, want := c.CheapestUnitPrice(), decimal.RequireFromString("1.5"); !got.Equal(want) {
		t.Errorf("CheapestUnitPrice() = %v, want %v", got, want)
	}
	if _, ok := c.Lookup("Caviar"); ok {
		t.Errorf("Lookup(%q) = _, true, want false", "Caviar")
	}
}

func TestCatalog_ProductsIsACopy(t *testing.T) {
	c := DefaultCatalog()

	ps := c.Products()
	ps[0].Name = "changed"

	if got := c.Product(0).Name; got != "Chicken Breast" {
		t.Errorf("Product(0).Name = %q after editing Products(), want %q", got, "Chicken Breast")
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	valid := Product{Name: "Rice", Price: decimal.NewFromInt(2), NetWeight: 1000, Protein: 7, Calories: 360, Fat: 1, Carbs: 80}
	with := func(edit func(p *Product)) Product {
		p := valid
		edit(&p)
		return p
	}

	testCases := []struct {
		name     string
		products []Product
	}{
		{name: "Empty"},
		{name: "NoName", products: []Product{with(func(p *Product) { p.Name = "" })}},
		{name: "Duplicate", products: []Product{valid, valid}},
		{name: "ZeroPrice", products: []Product{with(func(p *Product) { p.Price = decimal.Zero })}},
		{name: "NegativePrice", products: []Product{with(func(p *Product) { p.Price = decimal.NewFromInt(-1) })}},
		{name: "ZeroWeight", products: []Product{with(func(p *Product) { p.NetWeight = 0 })}},
		{name: "NegativeProtein", products: []Product{with(func(p *Product) { p.Protein = -1 })}},
		{name: "NaNFat", products: []Product{with(func(p *Product) { p.Fat = math.NaN() })}},
		{name: "InfiniteCarbs", products: []Product{with(func(p *Product) { p.Carbs = math.Inf(1) })}},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewCatalog(DefaultCurrency, test.products); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("NewCatalog() returned error %v, want %v", err, ErrInvalidCatalog)
			}
		})
	}
}

func TestReadCatalog(t *testing.T) {
	const input = `{
  "currency": "$",
  "products": [
    {"name": "Lentils", "price_per_unit": "1.20", "net_weight": 500,
     "protein_per_100g": 24, "calories_per_100g": 352, "fats_per_100g": 1.1, "carbs_per_100g": 60},
    {"name": "Cottage Cheese", "price_per_unit": 1.75, "net_weight": 250,
     "protein_per_100g": 11, "calories_per_100g": 98, "fats_per_100g": 4.3, "carbs_per_100g": 0}
  ]
}`

	c, err := ReadCatalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCatalog() returned with unexpected error %v", err)
	}

	if got, want := c.Currency(), "$"; got != want {
		t.Errorf("Currency() = %q, want %q", got, want)
	}
	want := []Product{
		{Name: "Lentils", Price: decimal.RequireFromString("1.2"), NetWeight: 500, Protein: 24, Calories: 352, Fat: 1.1, Carbs: 60},
		{Name: "Cottage Cheese", Price: decimal.RequireFromString("1.75"), NetWeight: 250, Protein: 11, Calories: 98, Fat: 4.3, Carbs: 0},
	}
	if diff := cmp.Diff(want, c.Products(), equateDecimals); diff != "" {
		t.Errorf("Products() returned unexpected diff (-want+got): %v", diff)
	}
}

func TestReadCatalog_DefaultCurrency(t *testing.T) {
	const input = `{"products": [{"name": "Oats", "price_per_unit": 3, "net_weight": 1000,
  "protein_per_100g": 13, "calories_per_100g": 389, "fats_per_100g": 6.9, "carbs_per_100g": 66}]}`

	c, err := ReadCatalog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCatalog() returned with unexpected error %v", err)
	}
	if got, want := c.Currency(), DefaultCurrency; got != want {
		t.Errorf("Currency() = %q, want %q", got, want)
	}
}

func TestReadCatalog_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "NotJSON",
			input: `products: []`,
		},
		{
			name:  "NoProducts",
			input: `{"products": []}`,
		},
		{
			name: "MissingCarbs",
			input: `{"products": [{"name": "Oats", "price_per_unit": 3, "net_weight": 1000,
  "protein_per_100g": 13, "calories_per_100g": 389, "fats_per_100g": 6.9}]}`,
		},
		{
			name: "MissingPrice",
			input: `{"products": [{"name": "Oats", "net_weight": 1000,
  "protein_per_100g": 13, "calories_per_100g": 389, "fats_per_100g": 6.9, "carbs_per_100g": 66}]}`,
		},
		{
			name: "UnknownField",
			input: `{"products": [{"name": "Oats", "price_per_unit": 3, "net_weight": 1000, "fiber_per_100g": 10,
  "protein_per_100g": 13, "calories_per_100g": 389, "fats_per_100g": 6.9, "carbs_per_100g": 66}]}`,
		},
		{
			name: "NegativeCalories",
			input: `{"products": [{"name": "Oats", "price_per_unit": 3, "net_weight": 1000,
  "protein_per_100g": 13, "calories_per_100g": -389, "fats_per_100g": 6.9, "carbs_per_100g": 66}]}`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ReadCatalog(strings.NewReader(test.input)); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("ReadCatalog() returned error %v, want %v", err, ErrInvalidCatalog)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	const input = `{"products": [{"name": "Oats", "price_per_unit": 3, "net_weight": 1000,
  "protein_per_100g": 13, "calories_per_100g": 389, "fats_per_100g": 6.9, "carbs_per_100g": 66}]}`
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() returned with unexpected error %v", err)
	}
	if got, want := c.Len(), 1; got != want {
		t.Errorf("Len() = %v, want %v", got, want)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadCatalog(missing) returned error %v, want %v", err, os.ErrNotExist)
	}
}
