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

// Package typenorm converts type strings reported by a decompiler into type
// expressions that a debugger has a chance of understanding.
//
// Decompilers name their internal integer aliases with a double-underscore
// prefix. The debugger knows the same types by their C stdint names. For
// example, "__int64" is known to the debugger as "int64_t" and "__int64[4]"
// as "int64_t[4]". Similarly, the decompiler spells unsigned types longhand
// whereas the stdint convention is a single letter: "unsigned int" becomes
// "uint".
//
// The conversion is a heuristic and not a full translation between the two
// type grammars. The output of Normalise() is only probably valid and
// consumers must be prepared for the debugger to reject it.
package typenorm

import (
	"strings"
)

// Normalise a decompiler type string into a debugger type expression.
//
// The function is total. It never fails, although it may return a string
// that is meaningless to the debugger.
//
// The underscore-stripping (and the accompanying _t suffixing) happens
// before the unsigned rewrite. The ordering is observable: "__uint32[4]"
// becomes "uint32_t[4]" and at no point does the string contain "unsigned".
func Normalise(typ string) string {
	if strings.Contains(typ, "__") {
		typ = strings.ReplaceAll(typ, "__", "")

		// the _t suffix belongs to the element type, not to the array
		// brackets
		if i := strings.Index(typ, "["); i != -1 {
			typ = typ[:i] + "_t" + typ[i:]
		} else {
			typ += "_t"
		}
	}

	typ = strings.ReplaceAll(typ, "unsigned ", "u")

	return typ
}
