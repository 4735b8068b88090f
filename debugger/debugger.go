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

// Package debugger defines the operations required of the debugger that
// hosts the synchronisation engine. The gdbmi sub-package implements these
// interfaces for GDB; the engine itself never assumes a particular
// debugger.
package debugger

// SymbolKind distinguishes function symbols from data object symbols.
type SymbolKind int

// List of valid SymbolKind values.
const (
	FunctionSymbol SymbolKind = iota
	ObjectSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case FunctionSymbol:
		return "function"
	case ObjectSymbol:
		return "object"
	}
	return "unknown"
}

// Symbol is a single entry for native symbol registration. The address is
// in the static address space; the registrar applies its own base
// understanding (see SymbolRegistrar.SetBase).
type Symbol struct {
	Name string
	Addr uint64
	Kind SymbolKind
	Size uint64
}

// Evaluator parses and evaluates a typed expression over the current frame
// and registers. An error indicates invalid syntax or an unknown type.
type Evaluator interface {
	Evaluate(expr string) (string, error)
}

// ConvenienceVars sets a named debugger-scoped variable to the result of
// evaluating an expression.
type ConvenienceVars interface {
	SetConvenience(name string, expr string) error
}

// SymbolRegistrar is the debugger's native bulk symbol registration
// mechanism.
type SymbolRegistrar interface {
	// Available returns false when the debugger environment cannot register
	// symbols natively. A registrar that becomes unavailable never becomes
	// available again
	Available() bool

	// SetBase tells the registrar what base correction to apply to the
	// static addresses of subsequently registered symbols
	SetBase(base uint64)

	// RegisterBatch registers the whole batch in one step, superseding any
	// batch registered previously through this registrar
	RegisterBatch(symbols []Symbol) error
}

// StopHandle identifies a single stop event subscription.
type StopHandle int

// StopEvents is the debugger's "execution stopped" event source. The
// callback receives the runtime program counter of the stopped thread.
type StopEvents interface {
	Subscribe(f func(pc uint64)) (StopHandle, error)
	Unsubscribe(handle StopHandle) error
}

// Frame describes the debugger's view of the current (innermost) frame.
type Frame interface {
	ProgramCounter() (uint64, error)

	// FramePointerName returns the debugger's name for the frame base
	// register, without any dereferencing sigil. eg. "fp"
	FramePointerName() string
}

// Host is the complete set of debugger operations required by the engine.
type Host interface {
	Evaluator
	ConvenienceVars
	StopEvents
	Frame

	Symbols() SymbolRegistrar

	// AttachedPID returns the pid of the live target and true when the
	// debugger is attached to a running process. The second return value is
	// false when the target has not been launched or is not attachable
	AttachedPID() (int, bool)
}
