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

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/bradleyjkemp/memviz"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/Mr-Pine/decomp2dbg/pane"
	"github.com/Mr-Pine/decomp2dbg/session"
	"github.com/Mr-Pine/decomp2dbg/terminal"
)

// Sentinal error messages returned by the dispatcher.
const (
	NoSession     = "commands: no connected session"
	NoSuchSession = "commands: no session named %v"
	DumpFailed    = "commands: dump: %v"
)

// Debugger is the dispatcher's direct line to the hosting debugger. The
// GDB command passes raw command lines through it; execution control
// (breakpoints, run, continue) reaches the debugged process this way.
type Debugger interface {
	Execute(command string) error
}

// Dispatcher routes parsed commands to the current session. It enforces the
// one-session-at-a-time rule.
type Dispatcher struct {
	out terminal.Output
	dbg Debugger

	// creates a fresh session bound to the decompiler client and debugger
	// host. called on every CONNECT
	newSession func(name string) *session.Session

	scr *session.Session
}

// NewDispatcher is the preferred method of initialisation for the
// Dispatcher type.
func NewDispatcher(out terminal.Output, dbg Debugger, newSession func(name string) *session.Session) *Dispatcher {
	return &Dispatcher{
		out:        out,
		dbg:        dbg,
		newSession: newSession,
	}
}

// Session returns the current session, or nil when there has never been a
// connect.
func (d *Dispatcher) Session() *session.Session {
	return d.scr
}

// Run parses and dispatches a line of input. A parse failure prints the
// usage for the offending command and changes nothing.
//
// A QUIT command returns an error matching terminal.UserQuit; all other
// errors are reportable.
func (d *Dispatcher) Run(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	p, err := Parse(input)
	if err != nil {
		if command, ok := lookup(strings.Fields(input)[0]); ok {
			d.out.TermPrintLine(terminal.StyleHelp, fmt.Sprintf("usage: %s", usage[command]))
		}
		return err
	}

	// echo the normalised input. terminals that echo as the user types will
	// ignore this
	d.out.TermPrintLine(terminal.StyleEcho, p.Normalised)

	switch p.Command {
	case Connect:
		return d.connect(p)
	case Disconnect:
		return d.disconnect(p)
	case Info:
		d.info()
	case Help:
		d.help(p)
	case Symbols:
		return d.symbols(p)
	case Log:
		d.log(p)
	case Dump:
		return d.dump(p)
	case Gdb:
		return d.dbg.Execute(p.Passthrough)
	case Quit:
		return curated.Errorf(terminal.UserQuit)
	}

	return nil
}

func (d *Dispatcher) connect(p Parsed) error {
	if d.scr != nil && d.scr.State() != session.Disconnected {
		return curated.Errorf(session.AlreadyConnected, d.scr.Name())
	}

	s := d.newSession(p.Name)
	s.SetStopHook(pane.NewPane(s.Decompiler(), d.out).OnStop)

	err := s.Connect(p.Options)
	if err != nil {
		return err
	}
	d.scr = s

	d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("%s: connected", s.Name()))
	d.printBase(s)

	return nil
}

func (d *Dispatcher) disconnect(p Parsed) error {
	if d.scr == nil || d.scr.Name() != p.Name {
		return curated.Errorf(NoSuchSession, p.Name)
	}

	err := d.scr.Disconnect()
	if err != nil {
		return err
	}

	d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("%s: disconnected", p.Name))

	return nil
}

func (d *Dispatcher) info() {
	if d.scr == nil {
		d.out.TermPrintLine(terminal.StyleFeedback, "no session")
		return
	}

	d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("session: %s (%s)", d.scr.Name(), d.scr.State()))
	d.printBase(d.scr)
}

func (d *Dispatcher) printBase(s *session.Session) {
	m, resolved := s.Mapping()
	switch {
	case !resolved:
		d.out.TermPrintLine(terminal.StyleFeedback, "base address: unresolved")
	case m.PIE():
		d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("base address: %#x", m.Base()))
	default:
		d.out.TermPrintLine(terminal.StyleFeedback, "base address: fixed image")
	}
}

func (d *Dispatcher) help(p Parsed) {
	if p.TopicSet {
		command, _ := lookup(p.Topic)
		d.out.TermPrintLine(terminal.StyleHelp, fmt.Sprintf("usage: %s", usage[command]))
		d.out.TermPrintLine(terminal.StyleHelp, summary[command])
		return
	}

	for _, k := range Keywords() {
		command, _ := lookup(k)
		d.out.TermPrintLine(terminal.StyleHelp, fmt.Sprintf("%-12s %s", k, summary[command]))
	}
}

func (d *Dispatcher) symbols(p Parsed) error {
	if d.scr == nil || d.scr.State() != session.Connected {
		return curated.Errorf(NoSession)
	}

	pattern := strings.ToLower(p.Pattern)

	count := 0
	for _, sym := range d.scr.ImportedSymbols() {
		if pattern != "" && !strings.Contains(strings.ToLower(sym.Name), pattern) {
			continue
		}
		count++
		d.out.TermPrintLine(terminal.StyleFeedback,
			fmt.Sprintf("%-8s %#010x %6d %s", sym.Kind, sym.Addr, sym.Size, sym.Name))
	}

	d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("%d symbols", count))

	return nil
}

func (d *Dispatcher) log(p Parsed) {
	s := &strings.Builder{}
	if p.LastN > 0 {
		logger.Tail(s, p.LastN)
	} else {
		logger.Write(s)
	}

	for _, line := range strings.Split(strings.TrimRight(s.String(), "\n"), "\n") {
		if line != "" {
			d.out.TermPrintLine(terminal.StyleLog, line)
		}
	}
}

func (d *Dispatcher) dump(p Parsed) error {
	if d.scr == nil {
		return curated.Errorf(NoSession)
	}

	f, err := os.Create(p.Path)
	if err != nil {
		return curated.Errorf(DumpFailed, err)
	}
	defer f.Close()

	memviz.Map(f, d.scr)

	d.out.TermPrintLine(terminal.StyleFeedback, fmt.Sprintf("session graph written to %s", p.Path))

	return nil
}
