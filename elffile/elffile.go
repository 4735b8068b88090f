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

// Package elffile answers the three questions the session controller has
// about the binary being debugged: whether it is position independent,
// where its text segment sits in the file's own address space, and where
// the text segment of a live process has actually been mapped.
//
// Results are deliberately not cached here. The session controller owns
// the "resolve once per session" contract.
package elffile

import (
	"debug/elf"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/prometheus/procfs"
)

// sentinel error patterns for the elffile package.
const (
	OpenFailed    = "elffile: %v"
	NotExecutable = "elffile: %s: not an executable image"
	NoTextSegment = "elffile: %s: no executable load segment"
	NoLiveMapping = "elffile: pid %d: no executable mapping for %s"
)

// IsPIE returns true if the binary at path is a position independent
// executable. Its static addresses are then offsets that require a resolved
// base before they mean anything at runtime.
func IsPIE(path string) (bool, error) {
	f, err := elf.Open(path)
	if err != nil {
		return false, curated.Errorf(OpenFailed, err)
	}
	defer f.Close()

	return isPIE(f, path)
}

func isPIE(f *elf.File, path string) (bool, error) {
	switch f.Type {
	case elf.ET_EXEC:
		return false, nil
	case elf.ET_DYN:
		// shared objects and PIEs share the ET_DYN type. for the purposes of
		// rebasing the distinction doesn't matter: both are loaded at an
		// arbitrary base
		return true, nil
	}

	return false, curated.Errorf(NotExecutable, path)
}

// Machine returns the architecture of the binary at path.
func Machine(path string) (elf.Machine, error) {
	f, err := elf.Open(path)
	if err != nil {
		return elf.EM_NONE, curated.Errorf(OpenFailed, err)
	}
	defer f.Close()

	return f.Machine, nil
}

// StaticTextBase returns the load address of the text segment as recorded
// in the binary itself. For a fixed executable this is the address the
// segment will occupy at runtime. For a PIE it is the file-relative offset.
func StaticTextBase(path string) (uint64, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, curated.Errorf(OpenFailed, err)
	}
	defer f.Close()

	return staticTextBase(f, path)
}

func staticTextBase(f *elf.File, path string) (uint64, error) {
	// prefer the load segment containing the .text section. when the
	// section headers have been stripped, fall back to the first executable
	// load segment
	var textAddr uint64
	var haveText bool

	if text := f.Section(".text"); text != nil {
		textAddr = text.Addr
		haveText = true
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Flags&elf.PF_X == 0 {
			continue
		}
		if !haveText {
			return prog.Vaddr, nil
		}
		if textAddr >= prog.Vaddr && textAddr < prog.Vaddr+prog.Memsz {
			return prog.Vaddr, nil
		}
	}

	return 0, curated.Errorf(NoTextSegment, path)
}

// LiveTextBase returns the address at which the executable segment of path
// has been mapped in the live process pid, read from the proc filesystem.
//
// An empty path matches the first executable file-backed mapping, which for
// a freshly launched process is the main binary.
func LiveTextBase(pid int, path string) (uint64, error) {
	proc, err := procfs.NewProc(pid)
	if err != nil {
		return 0, curated.Errorf(OpenFailed, err)
	}

	maps, err := proc.ProcMaps()
	if err != nil {
		return 0, curated.Errorf(OpenFailed, err)
	}

	for _, m := range maps {
		if m.Perms == nil || !m.Perms.Execute {
			continue
		}
		if path != "" && m.Pathname != path {
			continue
		}
		if path == "" && m.Pathname == "" {
			continue
		}
		return uint64(m.StartAddr), nil
	}

	return 0, curated.Errorf(NoLiveMapping, pid, path)
}
