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

// Package symfile writes a minimal ELF64 object containing nothing but a
// symbol table. The object is what gets handed to the debugger's native
// symbol loading mechanism (GDB's add-symbol-file); the debugger then
// resolves the decompiler's names exactly as it would resolve names from a
// real debug file.
//
// All symbols are emitted as absolute (SHN_ABS) so the object needs no text
// section and no relocation records. The base correction for position
// independent processes is applied to the symbol values at write time.
package symfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
)

// sentinel error patterns for the symfile package.
const (
	WriteFailed = "symfile: %v"
)

const (
	ehsize    = 64 // size of an ELF64 file header
	shentsize = 64 // size of an ELF64 section header
	symsize   = 24 // size of an ELF64 symbol table entry
)

// section header string table. the section name offsets below index into
// this blob
var shstrtab = []byte("\x00.symtab\x00.strtab\x00.shstrtab\x00")

const (
	shnameSymtab   = 1
	shnameStrtab   = 9
	shnameShstrtab = 17
)

// Write the symbol batch as an ELF64 object. base is added to every symbol
// value; pass zero for a fixed (non-PIE) process.
//
// Output is deterministic for a given input ordering. Callers that require
// stable output should sort the batch first.
func Write(w io.Writer, machine elf.Machine, base uint64, symbols []debugger.Symbol) error {
	// build the string table and symbol entries together. the first entry
	// of both tables is the mandatory null entry
	strtab := bytes.NewBuffer([]byte{0})

	syms := make([]elf.Sym64, 1, len(symbols)+1)
	for _, s := range symbols {
		var typ elf.SymType
		switch s.Kind {
		case debugger.FunctionSymbol:
			typ = elf.STT_FUNC
		case debugger.ObjectSymbol:
			typ = elf.STT_OBJECT
		default:
			return curated.Errorf(WriteFailed, curated.Errorf("unknown symbol kind for %s", s.Name))
		}

		name := uint32(strtab.Len())
		strtab.WriteString(s.Name)
		strtab.WriteByte(0)

		syms = append(syms, elf.Sym64{
			Name:  name,
			Info:  elf.ST_INFO(elf.STB_GLOBAL, typ),
			Shndx: uint16(elf.SHN_ABS),
			Value: s.Addr + base,
			Size:  s.Size,
		})
	}

	// section data layout, in file order
	symtabOff := uint64(ehsize)
	symtabSize := uint64(len(syms) * symsize)
	strtabOff := symtabOff + symtabSize
	strtabSize := uint64(strtab.Len())
	shstrtabOff := strtabOff + strtabSize
	shstrtabSize := uint64(len(shstrtab))

	// section header table is aligned to 8 bytes
	shoff := (shstrtabOff + shstrtabSize + 7) &^ 7
	padding := shoff - (shstrtabOff + shstrtabSize)

	ehdr := elf.Header64{
		Ident: [elf.EI_NIDENT]byte{
			0x7f, 'E', 'L', 'F',
			byte(elf.ELFCLASS64),
			byte(elf.ELFDATA2LSB),
			byte(elf.EV_CURRENT),
		},
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shoff,
		Ehsize:    ehsize,
		Shentsize: shentsize,
		Shnum:     4,
		Shstrndx:  3,
	}

	shdrs := [4]elf.Section64{
		{}, // mandatory null section
		{
			Name:      shnameSymtab,
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       symtabOff,
			Size:      symtabSize,
			Link:      2, // the associated string table, below
			Info:      1, // number of local symbols (the null entry)
			Addralign: 8,
			Entsize:   symsize,
		},
		{
			Name:      shnameStrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       strtabOff,
			Size:      strtabSize,
			Addralign: 1,
		},
		{
			Name:      shnameShstrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       shstrtabOff,
			Size:      shstrtabSize,
			Addralign: 1,
		},
	}

	// assemble in memory before writing. a partial symbol file is worse
	// than no symbol file
	out := &bytes.Buffer{}
	for _, v := range []any{ehdr, syms, strtab.Bytes(), shstrtab, make([]byte, padding), shdrs} {
		err := binary.Write(out, binary.LittleEndian, v)
		if err != nil {
			return curated.Errorf(WriteFailed, err)
		}
	}

	_, err := w.Write(out.Bytes())
	if err != nil {
		return curated.Errorf(WriteFailed, err)
	}

	return nil
}
