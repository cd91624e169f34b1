//go:build !cgo || !(linux || darwin) || !(amd64 || arm64)

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

package highs

import (
	"context"

	"github.com/proteinplan/groceryopt/mip"
)

// Solver is a placeholder that reports ErrUnavailable.
type Solver struct{}

// New returns a Solver.
func New() *Solver {
	return &Solver{}
}

// Solve always fails with ErrUnavailable.
func (s *Solver) Solve(context.Context, *mip.Model, mip.Parameters) (*mip.Response, error) {
	return nil, ErrUnavailable
}
