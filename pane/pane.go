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

// Package pane renders the decompiled source context for the current stop
// location. It is display only; nothing in the engine depends on it.
package pane

import (
	"fmt"

	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/Mr-Pine/decomp2dbg/terminal"
)

// number of decompiled lines shown either side of the current line
const contextLines = 5

// Pane writes a window of decompiled source to the terminal whenever the
// debugged process stops.
type Pane struct {
	dec decompiler.Client
	out terminal.Output
}

// NewPane is the preferred method of initialisation for the Pane type.
func NewPane(dec decompiler.Client, out terminal.Output) *Pane {
	return &Pane{
		dec: dec,
		out: out,
	}
}

// OnStop renders the decompilation context for the static program counter.
// Suitable for use as a session stop hook.
func (p *Pane) OnStop(staticPC uint64) {
	d, err := p.dec.Decompile(staticPC)
	if err != nil {
		logger.Logf("pane", "no decompilation for %#x: %v", staticPC, err)
		return
	}

	if len(d.Lines) == 0 {
		return
	}

	current := d.CurrentLine
	if current < 0 || current >= len(d.Lines) {
		logger.Logf("pane", "current line %d out of range for %s", current, d.FuncName)
		return
	}

	start := current - contextLines
	if start < 0 {
		start = 0
	}
	end := current + contextLines + 1
	if end > len(d.Lines) {
		end = len(d.Lines)
	}

	p.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("%s:", d.FuncName))

	for i := start; i < end; i++ {
		if i == current {
			p.out.TermPrintLine(terminal.StyleDecompilationCurrent, fmt.Sprintf("-> %4d  %s", i+1, d.Lines[i]))
		} else {
			p.out.TermPrintLine(terminal.StyleDecompilation, fmt.Sprintf("   %4d  %s", i+1, d.Lines[i]))
		}
	}
}
