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

package logger

import (
	"strings"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/test"
)

func TestLogger(t *testing.T) {
	l := newLogger(100)

	s := &strings.Builder{}
	l.write(s)
	test.ExpectEquality(t, s.String(), "")

	l.log("test", "this is a test")
	s.Reset()
	l.write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test\n")

	// the tag and detail are the same so the repeat counter increases instead
	// of a new entry being added
	l.log("test", "this is a test")
	s.Reset()
	l.write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test (repeat x2)\n")

	l.log("test2", "this is another test")
	s.Reset()
	l.write(s)
	test.ExpectEquality(t, s.String(), "test: this is a test (repeat x2)\ntest2: this is another test\n")

	// tail of one entry only shows the most recent entry
	s.Reset()
	l.tail(s, 1)
	test.ExpectEquality(t, s.String(), "test2: this is another test\n")

	l.clear()
	s.Reset()
	l.write(s)
	test.ExpectEquality(t, s.String(), "")
}

func TestLoggerMaxEntries(t *testing.T) {
	l := newLogger(2)

	l.log("a", "1")
	l.log("b", "2")
	l.log("c", "3")

	s := &strings.Builder{}
	l.write(s)
	test.ExpectEquality(t, s.String(), "b: 2\nc: 3\n")
}

func TestLoggerNewlineStripping(t *testing.T) {
	l := newLogger(10)
	l.log("tag\n", "multi\nline\ndetail")

	s := &strings.Builder{}
	l.write(s)
	test.ExpectEquality(t, s.String(), "tag: multilinedetail\n")
}
