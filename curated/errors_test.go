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

package curated_test

import (
	"errors"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/test"
)

const (
	testError  = "test error: %v"
	otherError = "other error: %v"
)

func TestIs(t *testing.T) {
	err := curated.Errorf(testError, "failure")

	test.ExpectSuccess(t, curated.IsAny(err))
	test.ExpectSuccess(t, curated.Is(err, testError))
	test.ExpectEquality(t, curated.Is(err, otherError), false)

	// plain errors are not curated
	plain := errors.New("plain")
	test.ExpectEquality(t, curated.IsAny(plain), false)
	test.ExpectEquality(t, curated.Is(plain, testError), false)

	test.ExpectEquality(t, curated.IsAny(nil), false)
}

func TestHas(t *testing.T) {
	inner := curated.Errorf(testError, "failure")
	outer := curated.Errorf(otherError, inner)

	test.ExpectSuccess(t, curated.Has(outer, otherError))
	test.ExpectSuccess(t, curated.Has(outer, testError))

	// Is() only matches the outermost pattern
	test.ExpectEquality(t, curated.Is(outer, testError), false)
}

func TestDeduplication(t *testing.T) {
	// adjacent duplicate message parts collapse
	inner := curated.Errorf("connect: %v", "network failure")
	outer := curated.Errorf("connect: %v", inner)
	test.ExpectEquality(t, outer.Error(), "connect: network failure")

	// non-adjacent parts are preserved
	wrapped := curated.Errorf("session: %v", inner)
	test.ExpectEquality(t, wrapped.Error(), "session: connect: network failure")
}
