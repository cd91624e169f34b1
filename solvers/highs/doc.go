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

// Package highs solves mip models with the HiGHS solver through
// github.com/bartolsthoorn/gohighs.
//
// HiGHS is linked statically through cgo and is only available on
// linux and darwin for amd64 and arm64. On other platforms, or with cgo
// disabled, New returns a solver that fails with ErrUnavailable.
package highs

import "errors"

// ErrUnavailable is returned by Solve when HiGHS is not linked into the binary.
var ErrUnavailable = errors.New("highs: solver not available on this platform")
