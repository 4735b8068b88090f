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

package gdbmi

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/symfile"
)

// Sentinal error messages returned by the registrar.
const (
	RegistrationFailed = "gdbmi: symbol registration: %v"
)

// registrar implements the debugger.SymbolRegistrar interface by writing
// the batch to a scratch ELF and loading it with add-symbol-file. A new
// batch supersedes the old one; the previous scratch file is unloaded and
// removed.
type registrar struct {
	g       *GDB
	machine elf.Machine
	base    uint64

	// path of the currently loaded scratch file. empty when none
	loaded string
}

func newRegistrar(g *GDB, machine elf.Machine) *registrar {
	return &registrar{
		g:       g,
		machine: machine,
	}
}

// Available implements the debugger.SymbolRegistrar interface.
func (r *registrar) Available() bool {
	select {
	case <-r.g.dead:
		return false
	default:
		return true
	}
}

// SetBase implements the debugger.SymbolRegistrar interface.
func (r *registrar) SetBase(base uint64) {
	r.base = base
}

// RegisterBatch implements the debugger.SymbolRegistrar interface.
func (r *registrar) RegisterBatch(symbols []debugger.Symbol) error {
	f, err := os.CreateTemp("", "decomp2dbg-*.sym")
	if err != nil {
		return curated.Errorf(RegistrationFailed, err)
	}
	path := f.Name()

	err = symfile.Write(f, r.machine, r.base, symbols)
	if err != nil {
		f.Close()
		os.Remove(path)
		return curated.Errorf(RegistrationFailed, err)
	}

	err = f.Close()
	if err != nil {
		os.Remove(path)
		return curated.Errorf(RegistrationFailed, err)
	}

	// unload the superseded batch before loading the new one
	if r.loaded != "" {
		err = r.g.console(fmt.Sprintf("remove-symbol-file %s", r.loaded))
		if err != nil {
			os.Remove(path)
			return curated.Errorf(RegistrationFailed, err)
		}
		os.Remove(r.loaded)
		r.loaded = ""
	}

	err = r.g.console(fmt.Sprintf("add-symbol-file %s", path))
	if err != nil {
		os.Remove(path)
		return curated.Errorf(RegistrationFailed, err)
	}
	r.loaded = path

	return nil
}
