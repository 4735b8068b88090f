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

package rebase_test

import (
	"testing"

	"github.com/Mr-Pine/decomp2dbg/rebase"
	"github.com/Mr-Pine/decomp2dbg/test"
)

func TestRoundTrip(t *testing.T) {
	m := rebase.PositionIndependent(0x555555554000)

	for _, a := range []uint64{0x0, 0x1149, 0x4010, 0xffffffff} {
		r := m.Rebase(a, rebase.ToRuntime)
		test.ExpectEquality(t, r, a+0x555555554000)
		test.ExpectEquality(t, m.Rebase(r, rebase.ToStatic), a)
	}
}

func TestFixedIdentity(t *testing.T) {
	m := rebase.Fixed()

	for _, a := range []uint64{0x0, 0x401000, 0xdeadbeef} {
		test.ExpectEquality(t, m.Rebase(a, rebase.ToRuntime), a)
		test.ExpectEquality(t, m.Rebase(a, rebase.ToStatic), a)
	}
}

func TestUnresolvedPanics(t *testing.T) {
	defer func() {
		test.ExpectSuccess(t, recover() != nil)
	}()

	var m rebase.Mapping
	_ = m.Rebase(0x1000, rebase.ToRuntime)
}
