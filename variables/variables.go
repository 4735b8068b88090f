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

// Package variables binds the decompiler's reconstructed local variables to
// debugger convenience variables whenever execution stops.
//
// Decompiler type strings are not guaranteed to be valid in the debugger's
// type grammar so every binding runs through a two tier fallback: first a
// typed reinterpretation of the live register or stack slot, then the raw
// untyped location, and finally the variable is skipped. A materialisation
// pass never fails as a whole; partial failure is normal and silent beyond
// the aggregate log entry.
package variables

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/Mr-Pine/decomp2dbg/typenorm"
)

// Tier records how far through the fallback chain a variable got.
type Tier int

// List of valid Tier values.
const (
	// bound with the decompiler's type intact
	Typed Tier = iota

	// bound to the raw register or address, no type information
	Untyped

	// both tiers failed. the variable was left unbound
	Skipped
)

func (t Tier) String() string {
	switch t {
	case Typed:
		return "typed"
	case Untyped:
		return "untyped"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Result describes the outcome for a single variable. A variable is bound
// at exactly one tier or not at all; it is never partially bound.
type Result struct {
	Name string
	Tier Tier

	// why the typed tier was not used. nil when Tier is Typed
	TypedErr error

	// why the untyped tier was not used. nil unless Tier is Skipped
	UntypedErr error
}

// Debugger is the subset of debugger operations used during
// materialisation.
type Debugger interface {
	debugger.Evaluator
	debugger.ConvenienceVars
	FramePointerName() string
}

// Materializer drives variable binding for the current stop location.
type Materializer struct {
	dec  decompiler.Client
	host Debugger
}

// NewMaterializer is the preferred method of initialisation for the
// Materializer type.
func NewMaterializer(dec decompiler.Client, host Debugger) *Materializer {
	return &Materializer{
		dec:  dec,
		host: host,
	}
}

// Materialize the decompiler's variable bindings for the function
// containing addr (a static address, typically the rebased program counter
// of the innermost frame).
//
// The returned results describe the tier reached for every reported
// variable. Materialize never returns an error: a failed data retrieval
// produces no bindings and is logged, and per-variable failures are
// absorbed by the fallback chain.
func (mat *Materializer) Materialize(addr uint64) []Result {
	data, err := mat.dec.FunctionData(addr)
	if err != nil {
		logger.Logf("variables", "no function data for %#x: %v", addr, err)
		return nil
	}

	results := make([]Result, 0, len(data.RegVars)+len(data.StackVars))

	// map iteration order is not stable. sort for a deterministic pass
	regNames := make([]string, 0, len(data.RegVars))
	for name := range data.RegVars {
		regNames = append(regNames, name)
	}
	sort.Strings(regNames)

	for _, name := range regNames {
		results = append(results, mat.bindRegister(name, data.RegVars[name]))
	}

	offsets := make([]string, 0, len(data.StackVars))
	for offset := range data.StackVars {
		offsets = append(offsets, offset)
	}
	sort.Strings(offsets)

	for _, offset := range offsets {
		results = append(results, mat.bindStack(offset, data.StackVars[offset]))
	}

	var typed, untyped, skipped int
	for _, r := range results {
		switch r.Tier {
		case Typed:
			typed++
		case Untyped:
			untyped++
		case Skipped:
			skipped++
		}
	}
	logger.Logf("variables", "%#x: %d typed, %d untyped, %d skipped", addr, typed, untyped, skipped)

	return results
}

// bind evaluates expr and, if the debugger accepts it, binds it to the
// convenience variable name.
func (mat *Materializer) bind(name string, expr string) error {
	_, err := mat.host.Evaluate(expr)
	if err != nil {
		return err
	}
	return mat.host.SetConvenience(name, expr)
}

func (mat *Materializer) bindRegister(name string, v decompiler.RegVar) Result {
	res := Result{Name: name}

	typ := typenorm.Normalise(v.Type)

	// reinterpret the register's bits as the decompiler's type
	res.TypedErr = mat.bind(name, fmt.Sprintf("((%s) ($%s))", typ, v.RegName))
	if res.TypedErr == nil {
		return res
	}

	// degraded tier. the raw register without a cast
	res.Tier = Untyped
	res.UntypedErr = mat.bind(name, fmt.Sprintf("($%s)", v.RegName))
	if res.UntypedErr == nil {
		return res
	}

	res.Tier = Skipped
	return res
}

func (mat *Materializer) bindStack(offset string, v decompiler.StackVar) Result {
	res := Result{Name: v.Name}

	off, err := strconv.ParseInt(offset, 0, 64)
	if err != nil {
		// an unparseable offset fails both tiers by definition
		res.Tier = Skipped
		res.TypedErr = err
		res.UntypedErr = err
		return res
	}

	typ := typenorm.Normalise(v.Type)
	fp := mat.host.FramePointerName()

	// a typed pointer into the frame
	res.TypedErr = mat.bind(v.Name, fmt.Sprintf("((%s*) ($%s - %d))", typ, fp, off))
	if res.TypedErr == nil {
		return res
	}

	res.Tier = Untyped
	res.UntypedErr = mat.bind(v.Name, fmt.Sprintf("($%s - %d)", fp, off))
	if res.UntypedErr == nil {
		return res
	}

	res.Tier = Skipped
	return res
}
