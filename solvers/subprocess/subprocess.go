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

// Package subprocess solves models with an external solver program.
//
// The program receives a binary MPModelRequest on stdin and must write a
// binary MPSolutionResponse on stdout, the protocol of OR-tools'
// linear_solver.proto. Anything it writes to stderr is included in the error
// when it exits with a non-zero status.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	log "github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/proteinplan/groceryopt/mip"
	"github.com/proteinplan/groceryopt/mip/mpwire"
)

var (
	// ErrNoCommand is returned when the solver has no command to run.
	ErrNoCommand = errors.New("subprocess: no solver command configured")
	// ErrContinuousSolver is returned when a linear programming solver type is
	// asked to solve a model with integer variables.
	ErrContinuousSolver = errors.New("subprocess: solver type ignores integer variables")
)

// maxStderr bounds how much of the solver's stderr is kept for errors.
const maxStderr = 4 << 10

// Solver runs an external program for every solve.
type Solver struct {
	// Command is the program followed by its arguments.
	Command []string
	// Env is the environment of the program. Nil means the current environment.
	Env []string
	// SolverType is the backend requested from the program.
	SolverType mpwire.SolverType
	// SolverSpecificParameters is passed verbatim in the request.
	SolverSpecificParameters string
	// WaitDelay bounds how long to wait for the program's pipes to close after
	// it is killed. Zero waits indefinitely.
	WaitDelay time.Duration
}

// New returns a Solver running `command` and asking for SCIP.
func New(command ...string) *Solver {
	return &Solver{
		Command:    command,
		SolverType: mpwire.SolverTypeSCIP,
		WaitDelay:  5 * time.Second,
	}
}

func (s *Solver) request(ctx context.Context, m *mip.Model, p mip.Parameters) ([]byte, error) {
	req := &mpwire.Request{
		Model:                    m,
		SolverType:               s.SolverType,
		EnableOutput:             p.EnableOutput,
		SolverSpecificParameters: s.SolverSpecificParameters,
	}
	if limit, ok := p.EffectiveTimeLimit(ctx); ok {
		req.TimeLimitSeconds = limit.Seconds()
	}
	if p.RelativeGap > 0 {
		log.V(1).Infof("subprocess: relative gap %v is not part of the request; use solver specific parameters", p.RelativeGap)
	}
	return mpwire.MarshalRequest(req)
}

// Solve writes `m` to the program and reads its answer. The program is killed
// when `ctx` is done.
func (s *Solver) Solve(ctx context.Context, m *mip.Model, p mip.Parameters) (*mip.Response, error) {
	if len(s.Command) == 0 {
		return nil, ErrNoCommand
	}
	if n := m.NumIntegerVars(); n > 0 && !s.SolverType.Integer() {
		return nil, fmt.Errorf("%v with %d integer variables: %w", s.SolverType, n, ErrContinuousSolver)
	}
	in, err := s.request(ctx, m, p)
	if err != nil {
		return nil, fmt.Errorf("subprocess: encoding request: %w", err)
	}

	name := s.Command[0]
	cmd := exec.CommandContext(ctx, name, s.Command[1:]...)
	cmd.Env = s.Env
	cmd.WaitDelay = s.WaitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("subprocess: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("subprocess: %w", err)
	}

	log.V(1).Infof("subprocess: running %q with %v, %d request bytes", strings.Join(s.Command, " "), s.SolverType, len(in))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("subprocess: starting %s: %w", name, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := stdin.Write(in)
		if cerr := stdin.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing request: %w", err)
		}
		return nil
	})
	var out []byte
	g.Go(func() error {
		var err error
		if out, err = io.ReadAll(stdout); err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	})
	pumpErr := g.Wait()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("subprocess: %s: %w", name, ctx.Err())
	case waitErr != nil:
		return nil, fmt.Errorf("subprocess: %s: %w%s", name, waitErr, stderrSuffix(&stderr))
	case pumpErr != nil:
		return nil, fmt.Errorf("subprocess: %s: %w", name, pumpErr)
	}

	res, err := mpwire.UnmarshalResponse(out)
	if err != nil {
		return nil, fmt.Errorf("subprocess: %s: %w", name, err)
	}
	if res.HasSolution() && len(res.VariableValues) != m.NumVars() {
		log.Warningf("subprocess: %s returned %d values for %d variables", name, len(res.VariableValues), m.NumVars())
	}
	log.V(1).Infof("subprocess: status %v, objective %v", res.Status, res.ObjectiveValue)
	return res, nil
}

func stderrSuffix(b *bytes.Buffer) string {
	msg := strings.TrimSpace(b.String())
	if msg == "" {
		return ""
	}
	if len(msg) > maxStderr {
		msg = msg[len(msg)-maxStderr:]
	}
	return ": " + msg
}
