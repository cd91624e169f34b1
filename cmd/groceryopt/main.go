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

// The groceryopt command chooses what to buy from a grocery catalog to get the
// most protein within a budget, a calorie cap and a macronutrient split.
//
// It exits with status 0 when it prints a solution, 1 on configuration or
// solver errors and 2 when the solver found no solution.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"

	"github.com/proteinplan/groceryopt/config"
	"github.com/proteinplan/groceryopt/grocery"
	"github.com/proteinplan/groceryopt/mip"
	"github.com/proteinplan/groceryopt/solvers/highs"
	"github.com/proteinplan/groceryopt/solvers/subprocess"
)

const exitNoSolution = 2

func newSolver(cfg *config.Config) (mip.Solver, error) {
	switch cfg.Solver {
	case config.SolverHiGHS:
		return highs.New(), nil
	case config.SolverSubprocess:
		s := subprocess.New(cfg.SolverCommand...)
		s.SolverType = cfg.SolverType
		return s, nil
	}
	return nil, fmt.Errorf("unknown solver %q: %w", cfg.Solver, config.ErrInvalid)
}

// groceryOpt plans one run and prints the report. It returns whether the
// report holds a solution.
func groceryOpt(ctx context.Context, cfg *config.Config) (bool, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return false, fmt.Errorf("failed to load the catalog: %w", err)
	}
	solver, err := newSolver(cfg)
	if err != nil {
		return false, err
	}

	planner := &grocery.Planner{Solver: solver, Parameters: cfg.Parameters}
	report, err := planner.Plan(ctx, catalog, cfg.Targets, cfg.Formulation)
	if err != nil {
		return false, fmt.Errorf("failed to plan: %w", err)
	}
	if _, err := report.WriteTo(os.Stdout); err != nil {
		return false, fmt.Errorf("failed to print the report: %w", err)
	}
	return report.Authoritative, nil
}

func main() {
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := config.LoadDotEnv(".env"); err != nil {
		glog.Exitf("groceryopt: %v", err)
	}
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		glog.Exitf("groceryopt: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	solved, err := groceryOpt(ctx, cfg)
	if err != nil {
		glog.Exitf("groceryOpt returned with error: %v", err)
	}
	glog.Flush()
	if !solved {
		stop()
		os.Exit(exitNoSolution)
	}
}
