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

// The mpsolve command reads a binary MPModelRequest on stdin, solves it with
// HiGHS and writes a binary MPSolutionResponse on stdout. It serves as the
// program of the subprocess solver:
//
//	groceryopt -solver subprocess -solver_cmd mpsolve
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/proteinplan/groceryopt/mip"
	"github.com/proteinplan/groceryopt/mip/mpwire"
	"github.com/proteinplan/groceryopt/solvers/highs"
)

func mpSolve(ctx context.Context, r io.Reader, w io.Writer) error {
	in, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read the request: %w", err)
	}
	req, err := mpwire.UnmarshalRequest(in)
	if err != nil {
		return fmt.Errorf("failed to decode the request: %w", err)
	}
	if req.SolverType != mpwire.SolverTypeHiGHS {
		glog.Infof("requested %v, solving with HiGHS", req.SolverType)
	}
	if req.SolverSpecificParameters != "" {
		glog.Warningf("ignoring solver specific parameters %q", req.SolverSpecificParameters)
	}

	// Stdout carries the response, so the solver log stays off.
	if req.EnableOutput {
		glog.Warning("solver output requested; it is not available from mpsolve")
	}
	params := mip.Parameters{TimeLimit: time.Duration(req.TimeLimitSeconds * float64(time.Second))}
	res, err := highs.New().Solve(ctx, req.Model, params)
	if err != nil {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	if _, err := w.Write(mpwire.MarshalResponse(res)); err != nil {
		return fmt.Errorf("failed to write the response: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()
	if err := mpSolve(context.Background(), os.Stdin, os.Stdout); err != nil {
		glog.Exitf("mpSolve returned with error: %v", err)
	}
	glog.Flush()
}
