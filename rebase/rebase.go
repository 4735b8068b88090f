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

// Package rebase translates between the static address space of a
// decompiler's analysis and the runtime address space of the process being
// debugged.
//
// For a position independent executable the two spaces differ by the base
// address the image happened to be loaded at. For a fixed executable they
// are the same space and translation is the identity.
package rebase

// Direction of a Rebase() translation.
type Direction int

// List of valid Direction values.
const (
	// the address at hand is static and the runtime equivalent is wanted
	ToRuntime Direction = iota

	// the address at hand is runtime and the static equivalent is wanted
	ToStatic
)

// Mapping describes how static addresses relate to runtime addresses for a
// single connected session. The zero value is unusable; use Fixed() or
// PositionIndependent().
type Mapping struct {
	pie      bool
	base     uint64
	resolved bool
}

// Fixed returns a Mapping for a non-PIE process. Rebase() is the identity
// function in both directions.
func Fixed() Mapping {
	return Mapping{resolved: true}
}

// PositionIndependent returns a Mapping with the resolved base address of
// the text segment.
func PositionIndependent(base uint64) Mapping {
	return Mapping{pie: true, base: base, resolved: true}
}

// PIE returns true if the mapping describes a position independent process.
func (m Mapping) PIE() bool {
	return m.pie
}

// Base returns the resolved base address. Zero for a fixed mapping.
func (m Mapping) Base() uint64 {
	return m.base
}

// Rebase translates addr in the stated Direction.
//
// Calling Rebase() on an unresolved Mapping is a contract violation by the
// caller, not a runtime condition, and the function panics. Base resolution
// happens exactly once, at connect time, before any rebasing is possible.
func (m Mapping) Rebase(addr uint64, direction Direction) uint64 {
	if !m.resolved {
		panic("rebase: mapping used before base resolution")
	}

	if !m.pie {
		return addr
	}

	switch direction {
	case ToRuntime:
		return addr + m.base
	case ToStatic:
		return addr - m.base
	}

	panic("rebase: unknown direction")
}
