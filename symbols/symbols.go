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

// Package symbols turns the decompiler's view of functions and globals
// into the debugger's native symbol table.
package symbols

import (
	"sort"
	"strconv"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/logger"
)

// sentinel error patterns for the symbols package.
const (
	NoNativeSupport    = "symbols: native symbol support is not available"
	RegistrationFailed = "symbols: native registration: %v"
	BadAddress         = "symbols: %s: bad address '%s': %v"
)

// the decompiler does not report sizes for global variables. registration
// requires one so a fixed width is assumed.
const globalVarSize = 8

// Importer collates decompiler symbols and registers them natively with the
// debugger.
type Importer struct {
	registrar debugger.SymbolRegistrar

	// native support can be lost but never regained during a session
	nativeSupport bool

	// the batch submitted by the most recent successful Import(). kept for
	// the benefit of the SYMBOLS command
	imported []debugger.Symbol
}

// NewImporter is the preferred method of initialisation for the Importer
// type.
func NewImporter(registrar debugger.SymbolRegistrar) *Importer {
	return &Importer{
		registrar:     registrar,
		nativeSupport: registrar.Available(),
	}
}

// Import builds a symbol batch from the decompiler's function headers and
// global variables and registers it natively.
//
// Functions take priority over global variables with the same name; the
// colliding global is dropped from the batch. The batch replaces any batch
// imported previously.
//
// Addresses in the batch are static. The registrar has been told what base
// correction to apply by the session controller.
func (imp *Importer) Import(functions map[string]decompiler.FunctionHeader, globals map[string]decompiler.GlobalVar) error {
	if !imp.nativeSupport {
		return curated.Errorf(NoNativeSupport)
	}

	batch := make([]debugger.Symbol, 0, len(functions)+len(globals))
	names := make(map[string]bool, len(functions))

	for addr, fn := range functions {
		a, err := strconv.ParseUint(addr, 0, 64)
		if err != nil {
			// a malformed address is a decompiler bug. drop the entry rather
			// than failing the whole batch
			logger.Logf("symbols", curated.Errorf(BadAddress, fn.Name, addr, err).Error())
			continue
		}

		batch = append(batch, debugger.Symbol{
			Name: fn.Name,
			Addr: a,
			Kind: debugger.FunctionSymbol,
			Size: uint64(fn.Size),
		})
		names[fn.Name] = true
	}

	for addr, gv := range globals {
		// never re-add a global with the same name as a function
		if names[gv.Name] {
			continue
		}

		a, err := strconv.ParseUint(addr, 0, 64)
		if err != nil {
			logger.Logf("symbols", curated.Errorf(BadAddress, gv.Name, addr, err).Error())
			continue
		}

		batch = append(batch, debugger.Symbol{
			Name: gv.Name,
			Addr: a,
			Kind: debugger.ObjectSymbol,
			Size: globalVarSize,
		})
	}

	// map iteration order is not stable. sorting keeps registration
	// deterministic between synchronisation passes
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].Addr != batch[j].Addr {
			return batch[i].Addr < batch[j].Addr
		}
		return batch[i].Name < batch[j].Name
	})

	err := imp.registrar.RegisterBatch(batch)
	if err != nil {
		// no retry. the capability is considered lost for the remainder of
		// the session
		imp.nativeSupport = false
		return curated.Errorf(RegistrationFailed, err)
	}

	imp.imported = batch
	logger.Logf("symbols", "registered %d symbols natively", len(batch))

	return nil
}

// NativeSupport returns true while native symbol registration remains
// available.
func (imp *Importer) NativeSupport() bool {
	return imp.nativeSupport
}

// Imported returns the batch submitted by the most recent successful
// Import(). The returned slice must not be modified.
func (imp *Importer) Imported() []debugger.Symbol {
	return imp.imported
}
