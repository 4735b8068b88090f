// This file is part of decomp2dbg.
//
// decomp2dbg is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// decomp2dbg is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with decomp2dbg.  If not, see <https://www.gnu.org/licenses/>.

package variables_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/test"
	"github.com/Mr-Pine/decomp2dbg/variables"
)

type mockClient struct {
	data decompiler.FunctionData
	err  error
}

func (m *mockClient) Connect(host string, port int) error { return nil }
func (m *mockClient) Disconnect() error                   { return nil }

func (m *mockClient) FunctionHeaders() (map[string]decompiler.FunctionHeader, error) {
	return nil, nil
}

func (m *mockClient) GlobalVars() (map[string]decompiler.GlobalVar, error) {
	return nil, nil
}

func (m *mockClient) FunctionData(addr uint64) (decompiler.FunctionData, error) {
	return m.data, m.err
}

func (m *mockClient) Decompile(addr uint64) (decompiler.Decompilation, error) {
	return decompiler.Decompilation{}, nil
}

// mockDebugger rejects evaluation of any expression containing a string in
// the rejected list. bindings records every successful SetConvenience.
type mockDebugger struct {
	rejected []string
	bindings map[string]string
}

func newMockDebugger(rejected ...string) *mockDebugger {
	return &mockDebugger{
		rejected: rejected,
		bindings: make(map[string]string),
	}
}

func (m *mockDebugger) Evaluate(expr string) (string, error) {
	for _, r := range m.rejected {
		if strings.Contains(expr, r) {
			return "", errors.New("no symbol in current context")
		}
	}
	return "0", nil
}

func (m *mockDebugger) SetConvenience(name string, expr string) error {
	m.bindings[name] = expr
	return nil
}

func (m *mockDebugger) FramePointerName() string { return "fp" }

func TestTypedTier(t *testing.T) {
	cl := &mockClient{
		data: decompiler.FunctionData{
			RegVars: map[string]decompiler.RegVar{
				"count": {Type: "__int64", RegName: "rbx"},
			},
			StackVars: map[string]decompiler.StackVar{
				"0x10": {Type: "unsigned int", Name: "flags"},
			},
		},
	}
	dbg := newMockDebugger()

	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)

	test.DemandEquality(t, len(results), 2)
	for _, r := range results {
		test.ExpectEquality(t, r.Tier, variables.Typed)
		test.ExpectSuccess(t, r.TypedErr == nil)
	}

	// type strings are normalised before reaching the debugger
	test.ExpectEquality(t, dbg.bindings["count"], "((int64_t) ($rbx))")
	test.ExpectEquality(t, dbg.bindings["flags"], "((uint*) ($fp - 16))")
}

func TestUntypedFallback(t *testing.T) {
	cl := &mockClient{
		data: decompiler.FunctionData{
			RegVars: map[string]decompiler.RegVar{
				"p": {Type: "struct widget *", RegName: "rdi"},
			},
			StackVars: map[string]decompiler.StackVar{
				"8": {Type: "struct widget", Name: "w"},
			},
		},
	}

	// the debugger does not know the struct type so the cast fails but the
	// raw location is still available
	dbg := newMockDebugger("widget")

	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)

	test.DemandEquality(t, len(results), 2)
	for _, r := range results {
		test.ExpectEquality(t, r.Tier, variables.Untyped)
		test.ExpectFailure(t, r.TypedErr)
		test.ExpectSuccess(t, r.UntypedErr == nil)
	}

	test.ExpectEquality(t, dbg.bindings["p"], "($rdi)")
	test.ExpectEquality(t, dbg.bindings["w"], "($fp - 8)")
}

func TestSkippedTier(t *testing.T) {
	cl := &mockClient{
		data: decompiler.FunctionData{
			RegVars: map[string]decompiler.RegVar{
				"x": {Type: "int", RegName: "ymm12"},
			},
		},
	}

	// the register itself is unknown to the debugger. both tiers fail
	dbg := newMockDebugger("ymm12")

	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)

	test.DemandEquality(t, len(results), 1)
	test.ExpectEquality(t, results[0].Tier, variables.Skipped)
	test.ExpectFailure(t, results[0].TypedErr)
	test.ExpectFailure(t, results[0].UntypedErr)
	test.ExpectEquality(t, len(dbg.bindings), 0)
}

func TestBadStackOffsetSkipped(t *testing.T) {
	cl := &mockClient{
		data: decompiler.FunctionData{
			StackVars: map[string]decompiler.StackVar{
				"not-a-number": {Type: "int", Name: "v"},
			},
		},
	}
	dbg := newMockDebugger()

	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)

	test.DemandEquality(t, len(results), 1)
	test.ExpectEquality(t, results[0].Tier, variables.Skipped)
	test.ExpectFailure(t, results[0].TypedErr)
	test.ExpectEquality(t, len(dbg.bindings), 0)
}

func TestFunctionDataFailure(t *testing.T) {
	cl := &mockClient{err: errors.New("transport failure")}
	dbg := newMockDebugger()

	// a failed retrieval produces no results and no error
	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)
	test.ExpectEquality(t, len(results), 0)
}

func TestDeterministicOrder(t *testing.T) {
	cl := &mockClient{
		data: decompiler.FunctionData{
			RegVars: map[string]decompiler.RegVar{
				"zeta":  {Type: "int", RegName: "rax"},
				"alpha": {Type: "int", RegName: "rbx"},
			},
			StackVars: map[string]decompiler.StackVar{
				"16": {Type: "int", Name: "deep"},
				"8":  {Type: "int", Name: "shallow"},
			},
		},
	}
	dbg := newMockDebugger()

	mat := variables.NewMaterializer(cl, dbg)
	results := mat.Materialize(0x1000)

	test.DemandEquality(t, len(results), 4)
	test.ExpectEquality(t, results[0].Name, "alpha")
	test.ExpectEquality(t, results[1].Name, "zeta")
	test.ExpectEquality(t, results[2].Name, "deep")
	test.ExpectEquality(t, results[3].Name, "shallow")
}
