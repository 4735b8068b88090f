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

package elffile

import (
	"debug/elf"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/test"
)

// the tests work on synthetic elf.File values. building real fixture
// binaries would tie the tests to a toolchain

func synthFile(typ elf.Type, textAddr uint64, progs []*elf.Prog) *elf.File {
	f := &elf.File{}
	f.Type = typ
	if textAddr != 0 {
		f.Sections = []*elf.Section{
			{SectionHeader: elf.SectionHeader{Name: ".text", Addr: textAddr}},
		}
	}
	f.Progs = progs
	return f
}

func loadSegment(vaddr uint64, memsz uint64, flags elf.ProgFlag) *elf.Prog {
	return &elf.Prog{
		ProgHeader: elf.ProgHeader{
			Type:  elf.PT_LOAD,
			Flags: flags,
			Vaddr: vaddr,
			Memsz: memsz,
		},
	}
}

func TestIsPIE(t *testing.T) {
	pie, err := isPIE(synthFile(elf.ET_EXEC, 0, nil), "fixed")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pie, false)

	pie, err = isPIE(synthFile(elf.ET_DYN, 0, nil), "pie")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pie, true)

	_, err = isPIE(synthFile(elf.ET_REL, 0, nil), "object")
	test.ExpectFailure(t, err)
}

func TestStaticTextBase(t *testing.T) {
	// the segment containing .text wins, not the first load segment
	f := synthFile(elf.ET_EXEC, 0x401100, []*elf.Prog{
		loadSegment(0x400000, 0x1000, elf.PF_R),
		loadSegment(0x401000, 0x1000, elf.PF_R|elf.PF_X),
	})

	base, err := staticTextBase(f, "fixed")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, base, 0x401000)
}

func TestStaticTextBaseStripped(t *testing.T) {
	// no section headers. the first executable load segment is used
	f := synthFile(elf.ET_DYN, 0, []*elf.Prog{
		loadSegment(0x0, 0x1000, elf.PF_R),
		loadSegment(0x1000, 0x1000, elf.PF_R|elf.PF_X),
	})

	base, err := staticTextBase(f, "stripped")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, base, 0x1000)
}

func TestStaticTextBaseNoSegments(t *testing.T) {
	f := synthFile(elf.ET_EXEC, 0x401100, nil)
	_, err := staticTextBase(f, "empty")
	test.ExpectFailure(t, err)
}
