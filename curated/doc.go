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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The Errorf() pattern is used to differentiate curated
// errors. For example:
//
//	e := curated.Errorf("connect: %v", err)
//
//	if curated.Is(e, "connect: %v") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain.
//
// When curated errors are chained, the Error() function will de-duplicate
// adjacent message parts. Parts are sub-strings separated by the sequence
// ': ' as suggested on p239 of "The Go Programming Language" (Donovan,
// Kernighan).
//
// There is no special provision for sentinel errors in the curated package
// but they are achievable in practice through the use of the Is() and Has()
// functions. Sentinel patterns should be stored as a const string, suitably
// named and commented.
package curated
