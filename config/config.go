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

// Package config collects the settings of a planning run from command-line
// flags, GROCERYOPT_* environment variables and .env files.
//
// Every setting has a flag and an environment variable named after it: the
// flag -fat_ratio reads GROCERYOPT_FAT_RATIO. Flags take precedence over the
// environment, which takes precedence over the built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/proteinplan/groceryopt/grocery"
	"github.com/proteinplan/groceryopt/mip"
	"github.com/proteinplan/groceryopt/mip/mpwire"
)

// ErrInvalid is returned for settings that cannot be parsed or used together.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes the environment variable of every setting.
const EnvPrefix = "GROCERYOPT_"

// Solver backends.
const (
	SolverHiGHS      = "highs"
	SolverSubprocess = "subprocess"
)

// Config is the complete configuration of a planning run.
type Config struct {
	// CatalogPath is a JSON catalog file. Empty selects the built-in catalog.
	CatalogPath string
	Targets     grocery.Targets
	Formulation grocery.Formulation

	// Solver is SolverHiGHS or SolverSubprocess.
	Solver string
	// SolverCommand runs the subprocess solver.
	SolverCommand []string
	// SolverType is requested from the subprocess solver.
	SolverType mpwire.SolverType
	Parameters mip.Parameters
}

// Default returns the reference configuration solved with HiGHS.
func Default() *Config {
	return &Config{
		Targets:     grocery.DefaultTargets(),
		Formulation: grocery.DefaultFormulation(),
		Solver:      SolverHiGHS,
		SolverType:  mpwire.SolverTypeSCIP,
		Parameters:  mip.Parameters{TimeLimit: time.Minute},
	}
}

const maxServings = "max_servings"

// setting is one named option shared by the flag set and the environment.
type setting struct {
	name  string
	usage string
	get   func(c *Config) string
	set   func(c *Config, s string) error
	// isBool lets the flag be given without a value.
	isBool bool
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func floatSetting(name, usage string, field func(c *Config) *float64) setting {
	return setting{
		name:  name,
		usage: usage,
		get:   func(c *Config) string { return formatFloat(*field(c)) },
		set: func(c *Config, s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return err
			}
			*field(c) = v
			return nil
		},
	}
}

var settings = []setting{
	{
		name:  "catalog",
		usage: "JSON product catalog; empty uses the built-in catalog",
		get:   func(c *Config) string { return c.CatalogPath },
		set:   func(c *Config, s string) error { c.CatalogPath = s; return nil },
	},
	floatSetting("protein", "minimum protein in grams", func(c *Config) *float64 { return &c.Targets.ProteinTarget }),
	{
		name:  "budget",
		usage: "maximum spend",
		get:   func(c *Config) string { return c.Targets.BudgetCap.String() },
		set: func(c *Config, s string) error {
			v, err := decimal.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.Targets.BudgetCap = v
			return nil
		},
	},
	floatSetting("calories", "maximum energy in kcal", func(c *Config) *float64 { return &c.Targets.CalorieCap }),
	floatSetting("protein_ratio", "percentage of calories from protein", func(c *Config) *float64 { return &c.Targets.ProteinRatio }),
	floatSetting("fat_ratio", "percentage of calories from fat", func(c *Config) *float64 { return &c.Targets.FatRatio }),
	floatSetting("carb_ratio", "percentage of calories from carbohydrates", func(c *Config) *float64 { return &c.Targets.CarbRatio }),
	{
		name:  "link",
		usage: "linking of servings and units: at_most, exact or ratio",
		get:   func(c *Config) string { return c.Formulation.Link.String() },
		set: func(c *Config, s string) error {
			m, err := grocery.ParseLinkMode(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.Formulation.Link = m
			return nil
		},
	},
	{
		name:  "macros",
		usage: "fat and carbohydrate rows: equality or omit",
		get:   func(c *Config) string { return c.Formulation.Macros.String() },
		set: func(c *Config, s string) error {
			m, err := grocery.ParseMacroMode(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.Formulation.Macros = m
			return nil
		},
	},
	floatSetting("calorie_scale", "multiplier of the calorie row", func(c *Config) *float64 { return &c.Formulation.CalorieScale }),
	floatSetting("max_servings", "upper bound of servings per product in 100 g, or inf", func(c *Config) *float64 { return &c.Formulation.MaxServings }),
	{
		name:  "solver",
		usage: "solver backend: highs or subprocess",
		get:   func(c *Config) string { return c.Solver },
		set:   func(c *Config, s string) error { c.Solver = strings.TrimSpace(s); return nil },
	},
	{
		name:  "solver_cmd",
		usage: "command line of the subprocess solver",
		get:   func(c *Config) string { return strings.Join(c.SolverCommand, " ") },
		set:   func(c *Config, s string) error { c.SolverCommand = strings.Fields(s); return nil },
	},
	{
		name:  "solver_type",
		usage: "backend requested from the subprocess solver: scip, cbc, glpk, highs, sat, glop or clp",
		get:   func(c *Config) string { return shortSolverType(c.SolverType) },
		set: func(c *Config, s string) error {
			t, err := mpwire.ParseSolverType(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.SolverType = t
			return nil
		},
	},
	{
		name:  "time_limit",
		usage: "solve time limit, for example 30s; 0 for none",
		get:   func(c *Config) string { return c.Parameters.TimeLimit.String() },
		set: func(c *Config, s string) error {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.Parameters.TimeLimit = d
			return nil
		},
	},
	floatSetting("relative_gap", "relative MIP gap at which to stop; 0 keeps the solver default", func(c *Config) *float64 { return &c.Parameters.RelativeGap }),
	{
		name:   "solver_output",
		usage:  "print the solver's own log",
		get:    func(c *Config) string { return strconv.FormatBool(c.Parameters.EnableOutput) },
		isBool: true,
		set: func(c *Config, s string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			c.Parameters.EnableOutput = b
			return nil
		},
	},
}

func shortSolverType(t mpwire.SolverType) string {
	for _, name := range []string{"clp", "glpk", "glop", "scip", "cbc", "sat", "highs"} {
		if parsed, _ := mpwire.ParseSolverType(name); parsed == t {
			return name
		}
	}
	return t.String()
}

// EnvName returns the environment variable of the setting behind `flagName`.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(flagName)
}

// value binds a setting of one Config to the flag package.
type value struct {
	c *Config
	s *setting
}

func (v value) String() string {
	if v.c == nil {
		return ""
	}
	return v.s.get(v.c)
}

func (v value) Set(s string) error { return v.s.set(v.c, s) }

func (v value) IsBoolFlag() bool { return v.s.isBool }

// LoadDotEnv adds the variables of the given .env files to the environment.
// Variables already set are kept. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %v: %w", p, err, ErrInvalid)
		}
	}
	return nil
}

// Load builds a configuration from the defaults, then the environment read
// through `lookup`, then the flags in `args`. The settings are registered on
// `flags`, which may already hold other flags.
//
// Unless max_servings is set, the exact link lifts the servings bound to +Inf.
func Load(flags *flag.FlagSet, args []string, lookup func(string) (string, bool)) (*Config, error) {
	c := Default()
	explicit := make(map[string]bool)
	for i := range settings {
		s := &settings[i]
		env := EnvName(s.name)
		if raw, ok := lookup(env); ok {
			if err := s.set(c, raw); err != nil {
				return nil, fmt.Errorf("%s=%q: %v: %w", env, raw, err, ErrInvalid)
			}
			explicit[s.name] = true
		}
		flags.Var(value{c: c, s: s}, s.name, fmt.Sprintf("%s (env %s)", s.usage, env))
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %q: %w", flags.Args(), ErrInvalid)
	}
	flags.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	// One unit under the exact link eats net_weight/100 servings, which the
	// default bound of 1 rules out for every product over 100 g.
	if c.Formulation.Link == grocery.LinkExact && !explicit[maxServings] {
		c.Formulation.MaxServings = math.Inf(1)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings that do not belong to the model. Targets and
// formulation are checked when the model is built.
func (c *Config) Validate() error {
	switch c.Solver {
	case SolverHiGHS:
	case SolverSubprocess:
		if len(c.SolverCommand) == 0 {
			return fmt.Errorf("solver %q needs -solver_cmd: %w", c.Solver, ErrInvalid)
		}
	default:
		return fmt.Errorf("unknown solver %q: %w", c.Solver, ErrInvalid)
	}
	if c.Parameters.TimeLimit < 0 {
		return fmt.Errorf("time limit %v is negative: %w", c.Parameters.TimeLimit, ErrInvalid)
	}
	if c.Parameters.RelativeGap < 0 {
		return fmt.Errorf("relative gap %v is negative: %w", c.Parameters.RelativeGap, ErrInvalid)
	}
	return nil
}

// Catalog loads the configured catalog.
func (c *Config) Catalog() (*grocery.Catalog, error) {
	if c.CatalogPath == "" {
		return grocery.DefaultCatalog(), nil
	}
	return grocery.LoadCatalog(c.CatalogPath)
}
