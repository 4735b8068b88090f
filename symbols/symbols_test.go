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

package symbols_test

import (
	"fmt"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/symbols"
	"github.com/Mr-Pine/decomp2dbg/test"
)

// mockRegistrar implements the debugger.SymbolRegistrar interface.
type mockRegistrar struct {
	available bool
	failWith  error
	batches   [][]debugger.Symbol
}

func (r *mockRegistrar) Available() bool {
	return r.available
}

func (r *mockRegistrar) SetBase(base uint64) {
}

func (r *mockRegistrar) RegisterBatch(syms []debugger.Symbol) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.batches = append(r.batches, syms)
	return nil
}

func TestDedupPrecedence(t *testing.T) {
	reg := &mockRegistrar{available: true}
	imp := symbols.NewImporter(reg)

	functions := map[string]decompiler.FunctionHeader{
		"0x1000": {Name: "foo", Size: 0x20},
	}
	globals := map[string]decompiler.GlobalVar{
		"0x2000": {Name: "foo"},
	}

	err := imp.Import(functions, globals)
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(reg.batches), 1)
	batch := reg.batches[0]
	test.DemandEquality(t, len(batch), 1)
	test.ExpectEquality(t, batch[0].Name, "foo")
	test.ExpectEquality(t, batch[0].Addr, 0x1000)
	test.ExpectEquality(t, batch[0].Kind, debugger.FunctionSymbol)
}

func TestGlobalVarDefaultSize(t *testing.T) {
	reg := &mockRegistrar{available: true}
	imp := symbols.NewImporter(reg)

	globals := map[string]decompiler.GlobalVar{
		"0x2000": {Name: "counter"},
	}

	err := imp.Import(nil, globals)
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(reg.batches), 1)
	batch := reg.batches[0]
	test.DemandEquality(t, len(batch), 1)
	test.ExpectEquality(t, batch[0].Kind, debugger.ObjectSymbol)
	test.ExpectEquality(t, batch[0].Size, 8)
}

func TestNoNativeSupport(t *testing.T) {
	reg := &mockRegistrar{available: false}
	imp := symbols.NewImporter(reg)

	functions := map[string]decompiler.FunctionHeader{
		"0x1000": {Name: "foo", Size: 0x20},
	}

	err := imp.Import(functions, nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, symbols.NoNativeSupport))

	// all-or-nothing. no batch reached the registrar
	test.ExpectEquality(t, len(reg.batches), 0)
	test.ExpectEquality(t, len(imp.Imported()), 0)
}

func TestRegistrationFailureDowngrades(t *testing.T) {
	reg := &mockRegistrar{available: true, failWith: fmt.Errorf("registration refused")}
	imp := symbols.NewImporter(reg)

	functions := map[string]decompiler.FunctionHeader{
		"0x1000": {Name: "foo", Size: 0x20},
	}

	err := imp.Import(functions, nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, symbols.RegistrationFailed))
	test.ExpectEquality(t, imp.NativeSupport(), false)

	// the downgrade is permanent. the next import fails before reaching
	// the registrar
	reg.failWith = nil
	err = imp.Import(functions, nil)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, symbols.NoNativeSupport))
	test.ExpectEquality(t, len(reg.batches), 0)
}

func TestBadAddressDropped(t *testing.T) {
	reg := &mockRegistrar{available: true}
	imp := symbols.NewImporter(reg)

	functions := map[string]decompiler.FunctionHeader{
		"0x1000":    {Name: "good", Size: 0x20},
		"not-a-num": {Name: "bad", Size: 0x20},
	}

	err := imp.Import(functions, nil)
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(reg.batches), 1)
	batch := reg.batches[0]
	test.DemandEquality(t, len(batch), 1)
	test.ExpectEquality(t, batch[0].Name, "good")
}

func TestBatchOrdering(t *testing.T) {
	reg := &mockRegistrar{available: true}
	imp := symbols.NewImporter(reg)

	functions := map[string]decompiler.FunctionHeader{
		"0x2000": {Name: "second", Size: 1},
		"0x1000": {Name: "first", Size: 1},
		"0x3000": {Name: "third", Size: 1},
	}

	err := imp.Import(functions, nil)
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(reg.batches), 1)
	batch := reg.batches[0]
	test.DemandEquality(t, len(batch), 3)
	test.ExpectEquality(t, batch[0].Name, "first")
	test.ExpectEquality(t, batch[1].Name, "second")
	test.ExpectEquality(t, batch[2].Name, "third")
}
