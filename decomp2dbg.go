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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Mr-Pine/decomp2dbg/commands"
	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger/gdbmi"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/elffile"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/Mr-Pine/decomp2dbg/modalflag"
	"github.com/Mr-Pine/decomp2dbg/session"
	"github.com/Mr-Pine/decomp2dbg/statsview"
	"github.com/Mr-Pine/decomp2dbg/terminal"
	"github.com/Mr-Pine/decomp2dbg/terminal/colorterm"
	"github.com/Mr-Pine/decomp2dbg/terminal/plainterm"
	"github.com/Mr-Pine/decomp2dbg/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "CHECK", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "CHECK":
		err = check(md)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	gdbPath := md.AddString("gdb", "gdb", "path to the gdb binary")
	termType := md.AddString("term", "COLOR", "terminal type to use: COLOR, PLAIN")
	log := md.AddBool("log", false, "echo the application log to stderr")
	stats := md.AddBool("stats", false, "run the stats server")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("* stats server not available in this build (rebuild with the statsview tag)")
		}
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("one target binary required")
	}
	binary := md.GetArg(0)

	var term terminal.Terminal

	switch strings.ToUpper(*termType) {
	case "PLAIN":
		term = &plainterm.PlainTerminal{}
	case "COLOR":
		term = &colorterm.ColorTerminal{}
	default:
		return fmt.Errorf("unknown terminal type (%s)", *termType)
	}

	err = term.Initialise()
	if err != nil {
		return err
	}
	defer term.CleanUp()

	term.RegisterTabCompletion(commands.NewTabCompletion())

	// stop events are delivered from the gdb reader goroutine as closures on
	// this channel. the input loop drains it
	rawEvents := make(chan func(), 32)

	gdb, err := gdbmi.NewGDB(*gdbPath, binary, rawEvents)
	if err != nil {
		return err
	}
	defer func() {
		_ = gdb.Quit()
	}()

	// gdb console output, the replies to the GDB passthrough command in
	// particular, is printed by the input loop as it drains
	gdb.OnStream(func(text string) {
		term.TermPrintLine(terminal.StyleFeedback, text)
	})

	dispatcher := commands.NewDispatcher(term, gdb, func(name string) *session.Session {
		return session.NewSession(name, binary, decompiler.NewXMLRPCClient(), gdb)
	})

	events := &terminal.ReadEvents{
		IntEvents: make(chan os.Signal, 1),
		IntEventsHandler: func(sig os.Signal) error {
			return curated.Errorf(terminal.UserInterrupt)
		},
		RawEvents: rawEvents,
	}
	signal.Notify(events.IntEvents, os.Interrupt)
	defer signal.Stop(events.IntEvents)

	return inputLoop(term, events, dispatcher)
}

func inputLoop(term terminal.Terminal, events *terminal.ReadEvents, dispatcher *commands.Dispatcher) error {
	buffer := make([]byte, 255)

	for {
		prompt := terminal.Prompt{Type: terminal.PromptTypeCommand}
		if s := dispatcher.Session(); s != nil && s.State() == session.Connected {
			prompt.Content = s.Name()
		}

		n, err := term.TermRead(buffer, prompt, events)
		if err != nil {
			if curated.Is(err, terminal.UserInterrupt) {
				term.TermPrintLine(terminal.StyleFeedback, "use QUIT to quit")
				continue
			}
			if curated.Is(err, terminal.UserQuit) {
				break
			}
			return err
		}

		// run anything the debugger pushed at us while we were reading
		events.Drain()

		err = dispatcher.Run(string(buffer[:n]))
		if err != nil {
			if curated.Is(err, terminal.UserQuit) {
				break
			}
			term.TermPrintLine(terminal.StyleError, err.Error())
		}
	}

	// take down whatever session is still live
	if s := dispatcher.Session(); s != nil {
		_ = s.Disconnect()
	}

	return nil
}

func check(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("one target binary required")
	}
	binary := md.GetArg(0)

	machine, err := elffile.Machine(binary)
	if err != nil {
		return err
	}
	fmt.Printf("machine: %s\n", machine)

	pie, err := elffile.IsPIE(binary)
	if err != nil {
		return err
	}

	if !pie {
		fmt.Println("fixed executable, decompiler addresses will be used as reported")
		return nil
	}

	base, err := elffile.StaticTextBase(binary)
	if err != nil {
		return err
	}
	fmt.Printf("position independent executable, static text base %#x\n", base)

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Println(version.ApplicationName, ver)
	if *revision {
		fmt.Println(rev)
	}

	return nil
}
