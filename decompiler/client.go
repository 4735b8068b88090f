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

// Package decompiler defines the interface to a decompiler that is serving
// its analysis of a binary. The concrete implementation speaks the
// decomp2dbg XML-RPC protocol but nothing outside of this package depends
// on the wire format.
//
// All addresses reported by the decompiler are numeric string literals in
// the static address space of the analysed image. They remain strings at
// this interface because that is how the decompiler reports them; parsing
// and rebasing is the concern of the caller.
package decompiler

// FunctionHeader is a decompiler-reported function. The address the header
// was reported under is the key of the map returned by FunctionHeaders().
type FunctionHeader struct {
	Name string
	Size int
}

// GlobalVar is a decompiler-reported global variable. The decompiler does
// not report a size for globals.
type GlobalVar struct {
	Name string
}

// RegVar is a variable that the decompiler believes lives in a register for
// the current function.
type RegVar struct {
	Type    string
	RegName string
}

// StackVar is a variable that the decompiler believes lives on the stack,
// at a fixed offset from the frame base.
type StackVar struct {
	Type string
	Name string
}

// FunctionData is the set of variable bindings for a single function. The
// RegVars map is indexed by variable name. The StackVars map is indexed by
// the frame base offset, a numeric string literal.
type FunctionData struct {
	RegVars   map[string]RegVar
	StackVars map[string]StackVar
}

// Decompilation is the decompiled source for the function containing a
// requested address.
type Decompilation struct {
	FuncName string
	Lines    []string

	// index into Lines corresponding to the requested address
	CurrentLine int
}

// Client is the connection to a decompiler. Implementations are not safe
// for concurrent use; the engine is single threaded and does not require
// them to be.
//
// Connect() and the data retrieval functions block until the decompiler
// responds or the transport fails. Timeouts, if any, are the transport's
// business.
type Client interface {
	Connect(host string, port int) error
	Disconnect() error

	// FunctionHeaders and GlobalVars return maps indexed by static address
	// string
	FunctionHeaders() (map[string]FunctionHeader, error)
	GlobalVars() (map[string]GlobalVar, error)

	// FunctionData returns the variable bindings for the function containing
	// addr. Results are specific to the inspected function and are not
	// cached by the implementation
	FunctionData(addr uint64) (FunctionData, error)

	// Decompile returns the decompiled source for the function containing
	// addr
	Decompile(addr uint64) (Decompilation, error)
}
