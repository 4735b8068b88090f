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

package test

import (
	"testing"
)

// expect tests argument v for a success condition suitable for its type.
// Types bool, error and nil are supported.
func expect(t *testing.T, v any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v

	case error:
		return v == nil

	case nil:
		return true

	default:
		t.Fatalf("unsupported type (%T) for expectation testing", v)
	}

	return false
}

// ExpectSuccess tests argument v for a success condition suitable for its
// type. Supported types:
//
//	bool -> bool == true
//	error -> error == nil
//
// If the type is nil then the test succeeds.
func ExpectSuccess(t *testing.T, v any) bool {
	t.Helper()

	if !expect(t, v) {
		t.Errorf("expected success (%T)", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure condition suitable for its
// type. Supported types:
//
//	bool -> bool == false
//	error -> error != nil
//
// If the type is nil then the test fails.
func ExpectFailure(t *testing.T, v any) bool {
	t.Helper()

	if expect(t, v) {
		t.Errorf("expected failure (%T)", v)
		return false
	}

	return true
}

// ExpectEquality is used to test equality between one value and another.
//
// The reason for the expectedValue parameter being last is so that the test
// reads well. For example:
//
//	test.ExpectEquality(t, r, 10)
//
// reads as "expect r to equal 10".
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()

	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
		return false
	}

	return true
}

// ExpectInequality is the inverse of ExpectEquality.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()

	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v'", value, value, expectedValue)
		return false
	}

	return true
}
