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

// Package mpwire encodes models and decodes solutions in the binary protocol
// buffer format of OR-tools' linear_solver.proto (MPModelProto,
// MPModelRequest and MPSolutionResponse).
//
// Only the fields needed for mixed-integer linear programs are handled.
// Unknown fields are skipped on decode.
package mpwire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/proteinplan/groceryopt/mip"
)

// ErrMalformed is returned when a message cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// SolverType mirrors MPModelRequest.SolverType.
type SolverType int32

// Solver types understood by OR-tools.
const (
	SolverTypeCLP    SolverType = 0
	SolverTypeGLPKLP SolverType = 1
	SolverTypeGLOP   SolverType = 2
	SolverTypeSCIP   SolverType = 3
	SolverTypeGLPK   SolverType = 4
	SolverTypeCBC    SolverType = 5
	SolverTypeSAT    SolverType = 14
	SolverTypeHiGHS  SolverType = 16
)

// String returns the OR-tools enum name of the solver type.
func (s SolverType) String() string {
	switch s {
	case SolverTypeCLP:
		return "CLP_LINEAR_PROGRAMMING"
	case SolverTypeGLPKLP:
		return "GLPK_LINEAR_PROGRAMMING"
	case SolverTypeGLOP:
		return "GLOP_LINEAR_PROGRAMMING"
	case SolverTypeSCIP:
		return "SCIP_MIXED_INTEGER_PROGRAMMING"
	case SolverTypeGLPK:
		return "GLPK_MIXED_INTEGER_PROGRAMMING"
	case SolverTypeCBC:
		return "CBC_MIXED_INTEGER_PROGRAMMING"
	case SolverTypeSAT:
		return "SAT_INTEGER_PROGRAMMING"
	case SolverTypeHiGHS:
		return "HIGHS_MIXED_INTEGER_PROGRAMMING"
	default:
		return fmt.Sprintf("SolverType(%d)", int32(s))
	}
}

// Integer reports whether the solver type honors integer variables. The linear
// programming types solve the continuous relaxation.
func (s SolverType) Integer() bool {
	switch s {
	case SolverTypeCLP, SolverTypeGLPKLP, SolverTypeGLOP:
		return false
	}
	return true
}

// ParseSolverType returns the solver type for a short name such as "scip".
func ParseSolverType(name string) (SolverType, error) {
	switch name {
	case "clp":
		return SolverTypeCLP, nil
	case "glpk":
		return SolverTypeGLPK, nil
	case "glop":
		return SolverTypeGLOP, nil
	case "scip":
		return SolverTypeSCIP, nil
	case "cbc":
		return SolverTypeCBC, nil
	case "sat":
		return SolverTypeSAT, nil
	case "highs":
		return SolverTypeHiGHS, nil
	}
	return 0, fmt.Errorf("unknown solver type %q", name)
}

// MPSolverResponseStatus values.
const (
	statusOptimal                  = 0
	statusFeasible                 = 1
	statusInfeasible               = 2
	statusUnbounded                = 3
	statusAbnormal                 = 4
	statusModelInvalid             = 5
	statusNotSolved                = 6
	statusSolverTypeUnavailable    = 7
	statusModelInvalidSolutionHint = 84
	statusModelInvalidSolverParams = 85
	statusCancelledByUser          = 98
	statusUnknown                  = 99
	statusIncompatibleOptions      = 113
)

// Proto defaults applied when a field is absent.
const (
	defaultRequestSolverType        = SolverTypeGLOP
	defaultConstraintLowerBound     = -1 // -inf
	defaultConstraintUpperBound     = 1  // +inf
	defaultVariableUpperBoundSignum = 1  // +inf
)

// Field numbers from linear_solver.proto.
const (
	// MPVariableProto.
	varLowerBound           protowire.Number = 1
	varUpperBound           protowire.Number = 2
	varObjectiveCoefficient protowire.Number = 3
	varIsInteger            protowire.Number = 4
	varName                 protowire.Number = 5

	// MPConstraintProto.
	ctLowerBound  protowire.Number = 2
	ctUpperBound  protowire.Number = 3
	ctName        protowire.Number = 4
	ctVarIndex    protowire.Number = 6
	ctCoefficient protowire.Number = 7

	// MPModelProto.
	modelMaximize        protowire.Number = 1
	modelObjectiveOffset protowire.Number = 2
	modelVariable        protowire.Number = 3
	modelConstraint      protowire.Number = 4
	modelName            protowire.Number = 5

	// MPModelRequest.
	reqModel                    protowire.Number = 1
	reqSolverType               protowire.Number = 2
	reqSolverTimeLimitSeconds   protowire.Number = 3
	reqEnableOutput             protowire.Number = 4
	reqSolverSpecificParameters protowire.Number = 5

	// MPSolutionResponse.
	respStatus         protowire.Number = 1
	respObjectiveValue protowire.Number = 2
	respVariableValue  protowire.Number = 3
	respStatusStr      protowire.Number = 7
)

// Request is the subset of MPModelRequest sent to a solver.
type Request struct {
	Model      *mip.Model
	SolverType SolverType
	// TimeLimitSeconds is omitted from the message when zero.
	TimeLimitSeconds         float64
	EnableOutput             bool
	SolverSpecificParameters string
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendPackedInt32s(b []byte, num protowire.Number, vs []int32) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func marshalVariable(v *mip.Variable) []byte {
	var b []byte
	b = appendDouble(b, varLowerBound, v.LowerBound)
	b = appendDouble(b, varUpperBound, v.UpperBound)
	if v.ObjectiveCoefficient != 0 {
		b = appendDouble(b, varObjectiveCoefficient, v.ObjectiveCoefficient)
	}
	if v.IsInteger {
		b = appendBool(b, varIsInteger, true)
	}
	if v.Name != "" {
		b = appendString(b, varName, v.Name)
	}
	return b
}

func marshalConstraint(c *mip.LinearConstraint) []byte {
	var b []byte
	b = appendDouble(b, ctLowerBound, c.LowerBound)
	b = appendDouble(b, ctUpperBound, c.UpperBound)
	if c.Name != "" {
		b = appendString(b, ctName, c.Name)
	}
	b = appendPackedInt32s(b, ctVarIndex, c.VarIndex)
	b = appendPackedDoubles(b, ctCoefficient, c.Coefficient)
	return b
}

// MarshalModel encodes the model as an MPModelProto.
func MarshalModel(m *mip.Model) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model: %w", ErrMalformed)
	}
	var b []byte
	if m.Maximize {
		b = appendBool(b, modelMaximize, true)
	}
	if m.ObjectiveOffset != 0 {
		b = appendDouble(b, modelObjectiveOffset, m.ObjectiveOffset)
	}
	for _, v := range m.Variables {
		b = protowire.AppendTag(b, modelVariable, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalVariable(v))
	}
	for i, c := range m.Constraints {
		if len(c.VarIndex) != len(c.Coefficient) {
			return nil, fmt.Errorf("constraint %d has %d indices and %d coefficients: %w", i, len(c.VarIndex), len(c.Coefficient), ErrMalformed)
		}
		b = protowire.AppendTag(b, modelConstraint, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalConstraint(c))
	}
	if m.Name != "" {
		b = appendString(b, modelName, m.Name)
	}
	return b, nil
}

// MarshalRequest encodes the request as an MPModelRequest.
func MarshalRequest(r *Request) ([]byte, error) {
	model, err := MarshalModel(r.Model)
	if err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, reqModel, protowire.BytesType)
	b = protowire.AppendBytes(b, model)
	b = protowire.AppendTag(b, reqSolverType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(r.SolverType)))
	if r.TimeLimitSeconds > 0 {
		b = appendDouble(b, reqSolverTimeLimitSeconds, r.TimeLimitSeconds)
	}
	if r.EnableOutput {
		b = appendBool(b, reqEnableOutput, true)
	}
	if r.SolverSpecificParameters != "" {
		b = appendString(b, reqSolverSpecificParameters, r.SolverSpecificParameters)
	}
	return b, nil
}

func toWireStatus(s mip.Status) int32 {
	switch s {
	case mip.StatusOptimal:
		return statusOptimal
	case mip.StatusFeasible:
		return statusFeasible
	case mip.StatusInfeasible, mip.StatusInfeasibleOrUnbounded:
		return statusInfeasible
	case mip.StatusUnbounded:
		return statusUnbounded
	case mip.StatusNotSolved:
		return statusNotSolved
	case mip.StatusModelInvalid:
		return statusModelInvalid
	case mip.StatusError:
		return statusAbnormal
	default:
		return statusUnknown
	}
}

func fromWireStatus(s int32) mip.Status {
	switch s {
	case statusOptimal:
		return mip.StatusOptimal
	case statusFeasible:
		return mip.StatusFeasible
	case statusInfeasible:
		return mip.StatusInfeasible
	case statusUnbounded:
		return mip.StatusUnbounded
	case statusNotSolved, statusCancelledByUser:
		return mip.StatusNotSolved
	case statusModelInvalid, statusModelInvalidSolutionHint, statusModelInvalidSolverParams:
		return mip.StatusModelInvalid
	case statusAbnormal, statusSolverTypeUnavailable, statusIncompatibleOptions:
		return mip.StatusError
	default:
		return mip.StatusUnknown
	}
}

// MarshalResponse encodes the response as an MPSolutionResponse.
// StatusInfeasibleOrUnbounded has no wire equivalent and is sent as
// MPSOLVER_INFEASIBLE.
func MarshalResponse(r *mip.Response) []byte {
	var b []byte
	b = protowire.AppendTag(b, respStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(toWireStatus(r.Status))))
	if r.Status.HasSolution() {
		b = appendDouble(b, respObjectiveValue, r.ObjectiveValue)
	}
	b = appendPackedDoubles(b, respVariableValue, r.VariableValues)
	if r.StatusDetail != "" {
		b = appendString(b, respStatusStr, r.StatusDetail)
	}
	return b
}

// decoder walks the fields of one message.
type decoder struct {
	b   []byte
	msg string
}

func (d *decoder) errorf(format string, a ...any) error {
	return fmt.Errorf("%s: %s: %w", d.msg, fmt.Sprintf(format, a...), ErrMalformed)
}

// next returns the next field and the bytes holding its value. done is true
// at the end of the message.
func (d *decoder) next() (num protowire.Number, typ protowire.Type, val []byte, done bool, err error) {
	if len(d.b) == 0 {
		return 0, 0, nil, true, nil
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		return 0, 0, nil, false, d.errorf("tag: %v", protowire.ParseError(n))
	}
	d.b = d.b[n:]
	m := protowire.ConsumeFieldValue(num, typ, d.b)
	if m < 0 {
		return 0, 0, nil, false, d.errorf("field %d: %v", num, protowire.ParseError(m))
	}
	val, d.b = d.b[:m], d.b[m:]
	return num, typ, val, false, nil
}

func (d *decoder) double(num protowire.Number, typ protowire.Type, val []byte) (float64, error) {
	if typ != protowire.Fixed64Type {
		return 0, d.errorf("field %d has wire type %v, want fixed64", num, typ)
	}
	v, _ := protowire.ConsumeFixed64(val)
	return math.Float64frombits(v), nil
}

func (d *decoder) varint(num protowire.Number, typ protowire.Type, val []byte) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, d.errorf("field %d has wire type %v, want varint", num, typ)
	}
	v, _ := protowire.ConsumeVarint(val)
	return v, nil
}

func (d *decoder) bytes(num protowire.Number, typ protowire.Type, val []byte) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, d.errorf("field %d has wire type %v, want bytes", num, typ)
	}
	v, _ := protowire.ConsumeBytes(val)
	return v, nil
}

// doubles decodes a packed or unpacked repeated double and appends it to dst.
func (d *decoder) doubles(dst []float64, num protowire.Number, typ protowire.Type, val []byte) ([]float64, error) {
	if typ == protowire.Fixed64Type {
		v, err := d.double(num, typ, val)
		return append(dst, v), err
	}
	packed, err := d.bytes(num, typ, val)
	if err != nil {
		return dst, err
	}
	if len(packed)%8 != 0 {
		return dst, d.errorf("packed doubles in field %d have length %d", num, len(packed))
	}
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed64(packed)
		dst = append(dst, math.Float64frombits(v))
		packed = packed[n:]
	}
	return dst, nil
}

// int32s decodes a packed or unpacked repeated int32 and appends it to dst.
func (d *decoder) int32s(dst []int32, num protowire.Number, typ protowire.Type, val []byte) ([]int32, error) {
	if typ == protowire.VarintType {
		v, err := d.varint(num, typ, val)
		return append(dst, int32(v)), err
	}
	packed, err := d.bytes(num, typ, val)
	if err != nil {
		return dst, err
	}
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return dst, d.errorf("packed int32 in field %d: %v", num, protowire.ParseError(n))
		}
		dst = append(dst, int32(v))
		packed = packed[n:]
	}
	return dst, nil
}

func unmarshalVariable(b []byte) (*mip.Variable, error) {
	v := &mip.Variable{UpperBound: math.Inf(defaultVariableUpperBoundSignum)}
	d := &decoder{b: b, msg: "MPVariableProto"}
	for {
		num, typ, val, done, err := d.next()
		if err != nil || done {
			return v, err
		}
		switch num {
		case varLowerBound:
			v.LowerBound, err = d.double(num, typ, val)
		case varUpperBound:
			v.UpperBound, err = d.double(num, typ, val)
		case varObjectiveCoefficient:
			v.ObjectiveCoefficient, err = d.double(num, typ, val)
		case varIsInteger:
			var x uint64
			x, err = d.varint(num, typ, val)
			v.IsInteger = protowire.DecodeBool(x)
		case varName:
			var s []byte
			s, err = d.bytes(num, typ, val)
			v.Name = string(s)
		}
		if err != nil {
			return nil, err
		}
	}
}

func unmarshalConstraint(b []byte) (*mip.LinearConstraint, error) {
	c := &mip.LinearConstraint{
		LowerBound: math.Inf(defaultConstraintLowerBound),
		UpperBound: math.Inf(defaultConstraintUpperBound),
	}
	d := &decoder{b: b, msg: "MPConstraintProto"}
	for {
		num, typ, val, done, err := d.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		switch num {
		case ctLowerBound:
			c.LowerBound, err = d.double(num, typ, val)
		case ctUpperBound:
			c.UpperBound, err = d.double(num, typ, val)
		case ctName:
			var s []byte
			s, err = d.bytes(num, typ, val)
			c.Name = string(s)
		case ctVarIndex:
			c.VarIndex, err = d.int32s(c.VarIndex, num, typ, val)
		case ctCoefficient:
			c.Coefficient, err = d.doubles(c.Coefficient, num, typ, val)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(c.VarIndex) != len(c.Coefficient) {
		return nil, d.errorf("%d indices and %d coefficients", len(c.VarIndex), len(c.Coefficient))
	}
	return c, nil
}

// UnmarshalModel decodes an MPModelProto.
func UnmarshalModel(b []byte) (*mip.Model, error) {
	m := &mip.Model{}
	d := &decoder{b: b, msg: "MPModelProto"}
	for {
		num, typ, val, done, err := d.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		switch num {
		case modelMaximize:
			var x uint64
			x, err = d.varint(num, typ, val)
			m.Maximize = protowire.DecodeBool(x)
		case modelObjectiveOffset:
			m.ObjectiveOffset, err = d.double(num, typ, val)
		case modelName:
			var s []byte
			s, err = d.bytes(num, typ, val)
			m.Name = string(s)
		case modelVariable:
			var sub []byte
			if sub, err = d.bytes(num, typ, val); err == nil {
				var v *mip.Variable
				if v, err = unmarshalVariable(sub); err == nil {
					m.Variables = append(m.Variables, v)
				}
			}
		case modelConstraint:
			var sub []byte
			if sub, err = d.bytes(num, typ, val); err == nil {
				var c *mip.LinearConstraint
				if c, err = unmarshalConstraint(sub); err == nil {
					m.Constraints = append(m.Constraints, c)
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	for i, c := range m.Constraints {
		for _, ind := range c.VarIndex {
			if ind < 0 || int(ind) >= len(m.Variables) {
				return nil, d.errorf("constraint %d references variable %d of %d", i, ind, len(m.Variables))
			}
		}
	}
	return m, nil
}

// UnmarshalRequest decodes an MPModelRequest.
func UnmarshalRequest(b []byte) (*Request, error) {
	r := &Request{SolverType: defaultRequestSolverType}
	d := &decoder{b: b, msg: "MPModelRequest"}
	for {
		num, typ, val, done, err := d.next()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		switch num {
		case reqModel:
			var sub []byte
			if sub, err = d.bytes(num, typ, val); err == nil {
				r.Model, err = UnmarshalModel(sub)
			}
		case reqSolverType:
			var x uint64
			x, err = d.varint(num, typ, val)
			r.SolverType = SolverType(int32(x))
		case reqSolverTimeLimitSeconds:
			r.TimeLimitSeconds, err = d.double(num, typ, val)
		case reqEnableOutput:
			var x uint64
			x, err = d.varint(num, typ, val)
			r.EnableOutput = protowire.DecodeBool(x)
		case reqSolverSpecificParameters:
			var s []byte
			s, err = d.bytes(num, typ, val)
			r.SolverSpecificParameters = string(s)
		}
		if err != nil {
			return nil, err
		}
	}
	if r.Model == nil {
		r.Model = &mip.Model{}
	}
	return r, nil
}

// UnmarshalResponse decodes an MPSolutionResponse. A message without a status
// field decodes to StatusUnknown.
func UnmarshalResponse(b []byte) (*mip.Response, error) {
	r := &mip.Response{Status: mip.StatusUnknown}
	d := &decoder{b: b, msg: "MPSolutionResponse"}
	for {
		num, typ, val, done, err := d.next()
		if err != nil {
			return nil, err
		}
		if done {
			return r, nil
		}
		switch num {
		case respStatus:
			var x uint64
			x, err = d.varint(num, typ, val)
			r.Status = fromWireStatus(int32(x))
		case respObjectiveValue:
			r.ObjectiveValue, err = d.double(num, typ, val)
		case respVariableValue:
			r.VariableValues, err = d.doubles(r.VariableValues, num, typ, val)
		case respStatusStr:
			var s []byte
			s, err = d.bytes(num, typ, val)
			r.StatusDetail = string(s)
		}
		if err != nil {
			return nil, err
		}
	}
}
