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

// Package gdbmi implements the debugger host interfaces over a GDB
// subprocess speaking the MI protocol on its stdin/stdout pipes.
//
// Commands are issued synchronously from the main input loop. Asynchronous
// records arrive on a reader goroutine; stop events are never acted on
// there but are wrapped in a closure and pushed onto the RawEvents channel
// for the input loop to run.
package gdbmi

import (
	"bufio"
	"debug/elf"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/elffile"
	"github.com/Mr-Pine/decomp2dbg/logger"
)

// Sentinal error messages returned by the gdbmi package.
const (
	LaunchFailed  = "gdbmi: launch: %v"
	CommandFailed = "gdbmi: %v"
	Timeout       = "gdbmi: timeout waiting for reply to %v"
	Exited        = "gdbmi: gdb has exited"
)

// how long to wait for GDB to answer a synchronous command
const replyTimeout = 10 * time.Second

// GDB drives a gdb subprocess through the MI protocol. It implements the
// debugger.Host interface.
type GDB struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	// result class records from the reader goroutine, in reply to a
	// synchronous command
	replies chan record

	// closed by the reader goroutine when the pipe closes
	dead chan struct{}

	// fields below are shared with the reader goroutine
	crit        sync.Mutex
	subscribers map[debugger.StopHandle]func(pc uint64)
	nextHandle  debugger.StopHandle
	pid         int
	attached    bool

	// closures are pushed here for the input loop to run
	rawEvents chan<- func()

	// called with the payload of console and target stream records. shares
	// the rawEvents delivery path with stop events
	streamHandler func(text string)

	registrar *registrar
}

// NewGDB launches gdb with the given target binary and prepares it for MI
// interaction. Stop event closures are delivered through the rawEvents
// channel; the caller's input loop must drain it.
func NewGDB(gdbPath string, binary string, rawEvents chan<- func()) (*GDB, error) {
	g := &GDB{
		replies:     make(chan record),
		dead:        make(chan struct{}),
		subscribers: make(map[debugger.StopHandle]func(pc uint64)),
		rawEvents:   rawEvents,
	}

	g.cmd = exec.Command(gdbPath, "--interpreter=mi3", "--quiet", binary)

	var err error
	g.stdin, err = g.cmd.StdinPipe()
	if err != nil {
		return nil, curated.Errorf(LaunchFailed, err)
	}

	stdout, err := g.cmd.StdoutPipe()
	if err != nil {
		return nil, curated.Errorf(LaunchFailed, err)
	}

	err = g.cmd.Start()
	if err != nil {
		return nil, curated.Errorf(LaunchFailed, err)
	}

	go g.reader(stdout)

	// symbol registration needs to know the target architecture
	machine, err := elffile.Machine(binary)
	if err != nil {
		logger.Logf("gdbmi", "cannot establish target architecture: %v", err)
		machine = elf.EM_X86_64
	}
	g.registrar = newRegistrar(g, machine)

	// add-symbol-file must not stop to ask for confirmation
	err = g.console("set confirm off")
	if err != nil {
		_ = g.Quit()
		return nil, err
	}

	return g, nil
}

// reader drains MI output records from the gdb process. Runs in its own
// goroutine until the pipe closes.
func (g *GDB) reader(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)

	for scanner.Scan() {
		rec, err := parseRecord(scanner.Text())
		if err != nil {
			logger.Logf("gdbmi", "%v", err)
			continue
		}

		switch rec.class {
		case classResult, classError, classExit:
			select {
			case g.replies <- rec:
			case <-time.After(replyTimeout):
				logger.Log("gdbmi", "unclaimed reply dropped")
			}

		case classExecAsync:
			if rec.kind == "stopped" {
				g.onStopped(rec)
			}

		case classNotifyAsync:
			g.onNotify(rec)

		case classStream:
			g.onStream(rec)
		}
	}

	close(g.dead)
}

// onStopped wraps the runtime program counter of a stop record in a closure
// that calls every subscriber, and pushes the closure to the input loop.
func (g *GDB) onStopped(rec record) {
	addr, ok := resultString(rec.results, "frame", "addr")
	if !ok {
		return
	}

	pc, err := strconv.ParseUint(addr, 0, 64)
	if err != nil {
		logger.Logf("gdbmi", "bad stop address (%s)", addr)
		return
	}

	g.crit.Lock()
	subs := make([]func(uint64), 0, len(g.subscribers))
	for _, f := range g.subscribers {
		subs = append(subs, f)
	}
	g.crit.Unlock()

	if len(subs) == 0 {
		return
	}

	select {
	case g.rawEvents <- func() {
		for _, f := range subs {
			f(pc)
		}
	}:
	default:
		logger.Log("gdbmi", "stop event dropped, input loop not draining")
	}
}

// onStream forwards console and target output to the stream handler, on
// the input loop. The MI log stream, which only echoes commands back, is
// not forwarded.
func (g *GDB) onStream(rec record) {
	if rec.kind == "log" {
		return
	}

	g.crit.Lock()
	f := g.streamHandler
	g.crit.Unlock()

	if f == nil {
		return
	}

	text := strings.TrimRight(rec.stream, "\n")
	if text == "" {
		return
	}

	select {
	case g.rawEvents <- func() { f(text) }:
	default:
	}
}

// onNotify tracks the lifetime of the debugged process.
func (g *GDB) onNotify(rec record) {
	switch rec.kind {
	case "thread-group-started":
		pid, ok := resultString(rec.results, "pid")
		if !ok {
			return
		}
		n, err := strconv.Atoi(pid)
		if err != nil {
			return
		}
		g.crit.Lock()
		g.pid = n
		g.attached = true
		g.crit.Unlock()

	case "thread-group-exited":
		g.crit.Lock()
		g.attached = false
		g.crit.Unlock()
	}
}

// command sends a single MI command and blocks until the reply record
// arrives.
func (g *GDB) command(cmd string) (record, error) {
	select {
	case <-g.dead:
		return record{}, curated.Errorf(Exited)
	default:
	}

	_, err := io.WriteString(g.stdin, cmd+"\n")
	if err != nil {
		return record{}, curated.Errorf(CommandFailed, err)
	}

	select {
	case rec := <-g.replies:
		if rec.class == classError {
			msg, _ := resultString(rec.results, "msg")
			return rec, curated.Errorf(CommandFailed, msg)
		}
		return rec, nil

	case <-g.dead:
		return record{}, curated.Errorf(Exited)

	case <-time.After(replyTimeout):
		return record{}, curated.Errorf(Timeout, cmd)
	}
}

// console runs a CLI command through the MI interpreter-exec bridge.
func (g *GDB) console(cmd string) error {
	_, err := g.command(fmt.Sprintf("-interpreter-exec console %q", cmd))
	return err
}

// Execute runs a command written in GDB's own command language, exactly as
// if it had been typed at a gdb prompt. Execution control (break, run,
// continue, attach) reaches the debugged process this way; the resulting
// stop events arrive through the usual subscription channel.
func (g *GDB) Execute(command string) error {
	return g.console(command)
}

// OnStream registers a handler for gdb's console output, the results of
// Execute() in particular. The handler runs on the input loop, not on the
// reader goroutine. A nil handler discards the output.
func (g *GDB) OnStream(f func(text string)) {
	g.crit.Lock()
	defer g.crit.Unlock()

	g.streamHandler = f
}

// Evaluate implements the debugger.Evaluator interface.
func (g *GDB) Evaluate(expr string) (string, error) {
	rec, err := g.command(fmt.Sprintf("-data-evaluate-expression %q", expr))
	if err != nil {
		return "", err
	}

	value, ok := resultString(rec.results, "value")
	if !ok {
		return "", curated.Errorf(CommandFailed, "reply without a value")
	}

	return value, nil
}

// SetConvenience implements the debugger.ConvenienceVars interface.
func (g *GDB) SetConvenience(name string, expr string) error {
	return g.console(fmt.Sprintf("set $%s = %s", name, expr))
}

// Subscribe implements the debugger.StopEvents interface.
func (g *GDB) Subscribe(f func(pc uint64)) (debugger.StopHandle, error) {
	g.crit.Lock()
	defer g.crit.Unlock()

	g.nextHandle++
	g.subscribers[g.nextHandle] = f

	return g.nextHandle, nil
}

// Unsubscribe implements the debugger.StopEvents interface.
func (g *GDB) Unsubscribe(handle debugger.StopHandle) error {
	g.crit.Lock()
	defer g.crit.Unlock()

	delete(g.subscribers, handle)

	return nil
}

// ProgramCounter implements the debugger.Frame interface.
func (g *GDB) ProgramCounter() (uint64, error) {
	value, err := g.Evaluate("$pc")
	if err != nil {
		return 0, err
	}

	// the value arrives in the form "0x1234 <main+8>"
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, curated.Errorf(CommandFailed, "empty program counter")
	}

	pc, err := strconv.ParseUint(fields[0], 0, 64)
	if err != nil {
		return 0, curated.Errorf(CommandFailed, err)
	}

	return pc, nil
}

// FramePointerName implements the debugger.Frame interface. GDB maintains
// the architecture independent $fp convenience register.
func (g *GDB) FramePointerName() string {
	return "fp"
}

// Symbols implements the debugger.Host interface.
func (g *GDB) Symbols() debugger.SymbolRegistrar {
	return g.registrar
}

// AttachedPID implements the debugger.Host interface.
func (g *GDB) AttachedPID() (int, bool) {
	g.crit.Lock()
	defer g.crit.Unlock()

	return g.pid, g.attached
}

// Quit ends the gdb process. The GDB value is unusable afterwards.
func (g *GDB) Quit() error {
	_, _ = g.command("-gdb-exit")

	done := make(chan error)
	go func() {
		done <- g.cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(replyTimeout):
		_ = g.cmd.Process.Kill()
		return <-done
	}
}
