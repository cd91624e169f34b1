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

// Package grocery plans grocery purchases that maximize protein under budget,
// calorie and macronutrient constraints.
//
// BuildModel turns a Catalog, Targets and a Formulation into a mixed-integer
// model with two linked variables per product: the hundreds of grams eaten
// (continuous) and the whole retail units bought (integer). A mip.Solver
// solves it and Extract turns the answer into a Report.
package grocery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog is returned when a catalog or one of its products is unusable.
var ErrInvalidCatalog = errors.New("invalid catalog")

// DefaultCurrency is the currency symbol of the built-in catalog.
const DefaultCurrency = "€"

// Product is a purchasable item. Nutrient values are per 100 g.
type Product struct {
	Name string
	// Price is the price of one retail unit.
	Price decimal.Decimal
	// NetWeight is the weight of one retail unit in grams.
	NetWeight float64
	Protein   float64
	Calories  float64
	Fat       float64
	Carbs     float64
}

// Validate reports whether the product can take part in a model.
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("product without a name: %w", ErrInvalidCatalog)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("product %q: price %v must be positive: %w", p.Name, p.Price, ErrInvalidCatalog)
	}
	if !(p.NetWeight > 0) || math.IsInf(p.NetWeight, 0) {
		return fmt.Errorf("product %q: net weight %v must be positive: %w", p.Name, p.NetWeight, ErrInvalidCatalog)
	}
	for _, n := range []struct {
		name  string
		value float64
	}{
		{"protein", p.Protein},
		{"calories", p.Calories},
		{"fat", p.Fat},
		{"carbs", p.Carbs},
	} {
		if !(n.value >= 0) || math.IsInf(n.value, 0) {
			return fmt.Errorf("product %q: %s %v must be a non-negative number: %w", p.Name, n.name, n.value, ErrInvalidCatalog)
		}
	}
	return nil
}

// Catalog is an ordered, immutable set of products with unique names.
type Catalog struct {
	currency string
	products []Product
	byName   map[string]int
}

// NewCatalog validates the products and returns a catalog holding a copy of them.
func NewCatalog(currency string, products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("no products: %w", ErrInvalidCatalog)
	}
	c := &Catalog{
		currency: currency,
		products: make([]Product, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("product %q listed twice: %w", p.Name, ErrInvalidCatalog)
		}
		c.byName[p.Name] = i
	}
	return c, nil
}

// Currency returns the currency symbol prices are expressed in.
func (c *Catalog) Currency() string {
	return c.currency
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Product returns the i-th product.
func (c *Catalog) Product(i int) Product {
	return c.products[i]
}

// Products returns a copy of the products in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup returns the product with the given name.
func (c *Catalog) Lookup(name string) (Product, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// CheapestUnitPrice returns the lowest price of a single unit in the catalog.
func (c *Catalog) CheapestUnitPrice() decimal.Decimal {
	cheapest := c.products[0].Price
	for _, p := range c.products[1:] {
		if p.Price.LessThan(cheapest) {
			cheapest = p.Price
		}
	}
	return cheapest
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultCatalog returns the built-in reference catalog of ten products.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCurrency, []Product{
		{Name: "Chicken Breast", Price: price("5.0"), NetWeight: 1000, Protein: 31, Calories: 165, Fat: 3.6, Carbs: 0},
		{Name: "Eggs (12 pack)", Price: price("3.0"), NetWeight: 720, Protein: 12.6, Calories: 143, Fat: 10, Carbs: 1},
		{Name: "Milk (1L)", Price: price("1.5"), NetWeight: 1000, Protein: 3.4, Calories: 42, Fat: 1, Carbs: 5},
		{Name: "Greek Yogurt (500g)", Price: price("2.5"), NetWeight: 500, Protein: 10, Calories: 59, Fat: 0.4, Carbs: 3.6},
		{Name: "Oats (1kg)", Price: price("3.0"), NetWeight: 1000, Protein: 13, Calories: 389, Fat: 6.9, Carbs: 66},
		{Name: "Tuna Cans (185g)", Price: price("1.5"), NetWeight: 185, Protein: 24, Calories: 128, Fat: 0.5, Carbs: 0},
		{Name: "Tofu (400g)", Price: price("2.0"), NetWeight: 400, Protein: 8, Calories: 76, Fat: 4.8, Carbs: 1.9},
		{Name: "Broccoli (500g)", Price: price("2.0"), NetWeight: 500, Protein: 2.8, Calories: 35, Fat: 0.4, Carbs: 7},
		{Name: "Peanut Butter (500g)", Price: price("3.0"), NetWeight: 500, Protein: 25, Calories: 588, Fat: 50, Carbs: 20},
		{Name: "Brown Rice (1kg)", Price: price("4.0"), NetWeight: 1000, Protein: 7.5, Calories: 370, Fat: 2.7, Carbs: 77},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// catalogFile is the JSON layout of a catalog file. Pointer fields tell a
// missing value apart from a zero one.
type catalogFile struct {
	Currency *string       `json:"currency"`
	Products []productFile `json:"products"`
}

type productFile struct {
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price_per_unit"`
	NetWeight *float64         `json:"net_weight"`
	Protein   *float64         `json:"protein_per_100g"`
	Calories  *float64         `json:"calories_per_100g"`
	Fat       *float64         `json:"fats_per_100g"`
	Carbs     *float64         `json:"carbs_per_100g"`
}

func (pf productFile) product(i int) (Product, error) {
	missing := func(field string) error {
		return fmt.Errorf("product %d (%q): missing %q: %w", i, pf.Name, field, ErrInvalidCatalog)
	}
	switch {
	case pf.Price == nil:
		return Product{}, missing("price_per_unit")
	case pf.NetWeight == nil:
		return Product{}, missing("net_weight")
	case pf.Protein == nil:
		return Product{}, missing("protein_per_100g")
	case pf.Calories == nil:
		return Product{}, missing("calories_per_100g")
	case pf.Fat == nil:
		return Product{}, missing("fats_per_100g")
	case pf.Carbs == nil:
		return Product{}, missing("carbs_per_100g")
	}
	return Product{
		Name:      pf.Name,
		Price:     *pf.Price,
		NetWeight: *pf.NetWeight,
		Protein:   *pf.Protein,
		Calories:  *pf.Calories,
		Fat:       *pf.Fat,
		Carbs:     *pf.Carbs,
	}, nil
}

// ReadCatalog decodes a JSON catalog:
//
//	{
//	  "currency": "€",
//	  "products": [
//	    {"name": "Tuna Cans (185g)", "price_per_unit": 1.5, "net_weight": 185,
//	     "protein_per_100g": 24, "calories_per_100g": 128,
//	     "fats_per_100g": 0.5, "carbs_per_100g": 0}
//	  ]
//	}
//
// Every product field is required. The currency defaults to DefaultCurrency.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var cf catalogFile
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("decoding catalog: %v: %w", err, ErrInvalidCatalog)
	}
	currency := DefaultCurrency
	if cf.Currency != nil {
		currency = *cf.Currency
	}
	products := make([]Product, 0, len(cf.Products))
	for i, pf := range cf.Products {
		p, err := pf.product(i)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return NewCatalog(currency, products)
}

// LoadCatalog reads a JSON catalog from the file at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	c, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
