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

// Package easyterm is a wrapper for "github.com/pkg/term/termios". it
// provides some features not present in the third-party package, such as
// terminal geometry, and wraps termios methods in functions with friendlier
// names.
package easyterm

import (
	"bufio"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// EasyTerm is the main container for posix terminals. Use Initialise()
// before first use.
type EasyTerm struct {
	input  *os.File
	output *bufio.Writer

	// the attributes the terminal had when Initialise() was called and the
	// attributes to use for raw mode
	canAttr unix.Termios
	rawAttr unix.Termios

	// geometry of the terminal as of the last UpdateGeometry()
	Rows int
	Cols int
}

// Initialise the fields in the EasyTerm struct.
func (et *EasyTerm) Initialise(in *os.File, out *os.File) error {
	et.input = in
	et.output = bufio.NewWriter(out)

	err := termios.Tcgetattr(in.Fd(), &et.canAttr)
	if err != nil {
		return err
	}

	// raw mode attributes are derived from the canonical attributes. output
	// processing is kept as it was so newlines still translate
	et.rawAttr = et.canAttr
	termios.Cfmakeraw(&et.rawAttr)
	et.rawAttr.Oflag = et.canAttr.Oflag

	return et.UpdateGeometry()
}

// CleanUp restores the terminal to its original state.
func (et *EasyTerm) CleanUp() {
	_ = et.output.Flush()
	_ = termios.Tcsetattr(et.input.Fd(), termios.TCSAFLUSH, &et.canAttr)
}

// RawMode puts terminal into raw mode.
func (et *EasyTerm) RawMode() error {
	return termios.Tcsetattr(et.input.Fd(), termios.TCSAFLUSH, &et.rawAttr)
}

// CanonicalMode puts terminal into canonical mode.
func (et *EasyTerm) CanonicalMode() error {
	return termios.Tcsetattr(et.input.Fd(), termios.TCSAFLUSH, &et.canAttr)
}

// UpdateGeometry gets the current dimensions (in characters) of the output
// terminal.
func (et *EasyTerm) UpdateGeometry() error {
	ws, err := unix.IoctlGetWinsize(int(et.input.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return err
	}
	et.Rows = int(ws.Row)
	et.Cols = int(ws.Col)
	return nil
}

// TermPrint writes string to the output buffer. Use Flush() to push the
// buffer to the terminal.
func (et *EasyTerm) TermPrint(s string) {
	_, _ = et.output.WriteString(s)
}

// Flush the output buffer to the terminal.
func (et *EasyTerm) Flush() error {
	return et.output.Flush()
}
