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

package symfile_test

import (
	"bytes"
	"debug/elf"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/symfile"
	"github.com/Mr-Pine/decomp2dbg/test"
)

func TestWrite(t *testing.T) {
	batch := []debugger.Symbol{
		{Name: "main", Addr: 0x1149, Kind: debugger.FunctionSymbol, Size: 0x30},
		{Name: "helper", Addr: 0x1180, Kind: debugger.FunctionSymbol, Size: 0x10},
		{Name: "counter", Addr: 0x4010, Kind: debugger.ObjectSymbol, Size: 8},
	}

	buf := &bytes.Buffer{}
	err := symfile.Write(buf, elf.EM_X86_64, 0, batch)
	test.DemandSuccess(t, err)

	// the written object must be readable by the same library the debugger
	// family uses
	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	test.DemandSuccess(t, err)
	defer f.Close()

	test.ExpectEquality(t, f.Type, elf.ET_REL)

	syms, err := f.Symbols()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(syms), len(batch))

	for i, s := range syms {
		test.ExpectEquality(t, s.Name, batch[i].Name)
		test.ExpectEquality(t, s.Value, batch[i].Addr)
		test.ExpectEquality(t, s.Size, batch[i].Size)

		typ := elf.ST_TYPE(s.Info)
		if batch[i].Kind == debugger.FunctionSymbol {
			test.ExpectEquality(t, typ, elf.STT_FUNC)
		} else {
			test.ExpectEquality(t, typ, elf.STT_OBJECT)
		}
	}
}

func TestWriteBaseCorrection(t *testing.T) {
	batch := []debugger.Symbol{
		{Name: "main", Addr: 0x1149, Kind: debugger.FunctionSymbol, Size: 0x30},
	}

	buf := &bytes.Buffer{}
	err := symfile.Write(buf, elf.EM_X86_64, 0x555555554000, batch)
	test.DemandSuccess(t, err)

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	test.DemandSuccess(t, err)
	defer f.Close()

	syms, err := f.Symbols()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(syms), 1)
	test.ExpectEquality(t, syms[0].Value, uint64(0x555555554000+0x1149))
}

func TestWriteEmptyBatch(t *testing.T) {
	buf := &bytes.Buffer{}
	err := symfile.Write(buf, elf.EM_X86_64, 0, nil)
	test.DemandSuccess(t, err)

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	test.DemandSuccess(t, err)
	defer f.Close()

	syms, err := f.Symbols()
	// debug/elf reports an empty symbol section as an error
	if err == nil {
		test.ExpectEquality(t, len(syms), 0)
	}
}
