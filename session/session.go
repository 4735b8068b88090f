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

// Package session drives the lifecycle of a single decompiler connection.
// It owns the addressing mode for the connection, runs the one-off symbol
// import and keeps the stop event hook that refreshes variable bindings
// whenever the debugged process stops.
//
// There is no internal threading. Everything in this package runs inside
// the host's command and event handlers; the only blocking calls are the
// transport connect/disconnect and the bulk symbol retrieval.
package session

import (
	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/elffile"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/Mr-Pine/decomp2dbg/rebase"
	"github.com/Mr-Pine/decomp2dbg/symbols"
	"github.com/Mr-Pine/decomp2dbg/variables"
)

// Sentinal error messages returned by the session package.
const (
	AlreadyConnected = "session: %v: already connected"
	NotConnected     = "session: %v: not connected"
	ConnectFailed    = "session: connect: %v"
	BaseResolution   = "session: base resolution: %v"
)

// State of the session. Transitions are Disconnected to Connecting to
// Connected and back to Disconnected; the cycle is re-entrant.
type State int

// List of valid State values.
const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// ConnectOptions qualify a Connect(). The zero value asks for the default
// host and port and automatic base resolution.
type ConnectOptions struct {
	Host string
	Port int

	// explicit base address. overrides resolution from the binary or the
	// live process
	BaseAddr    uint64
	BaseAddrSet bool
}

// Default connection endpoint for a decompiler serving its analysis.
const (
	DefaultHost = "localhost"
	DefaultPort = 3662
)

// Session is a single named connection to a decompiler, synchronised into
// the hosting debugger. One Session is live at a time; the commands package
// enforces that.
type Session struct {
	name   string
	binary string

	dec  decompiler.Client
	host debugger.Host

	state    State
	mapping  rebase.Mapping
	resolved bool

	importer     *symbols.Importer
	materializer *variables.Materializer

	stopHandle debugger.StopHandle
	stopHooked bool

	// called after each stop event with the static program counter, once
	// variable bindings have been refreshed. used by the context pane
	onStop func(staticPC uint64)

	// image inspection functions. set to the elffile implementations by
	// NewSession()
	isPIE          func(path string) (bool, error)
	staticTextBase func(path string) (uint64, error)
	liveTextBase   func(pid int, path string) (uint64, error)
}

// NewSession is the preferred method of initialisation for the Session
// type. The binary argument is the path of the image under analysis, used
// for base resolution when no explicit base is given.
func NewSession(name string, binary string, dec decompiler.Client, host debugger.Host) *Session {
	return &Session{
		name:           name,
		binary:         binary,
		dec:            dec,
		host:           host,
		isPIE:          elffile.IsPIE,
		staticTextBase: elffile.StaticTextBase,
		liveTextBase:   elffile.LiveTextBase,
	}
}

// Name of the session, as given at connect time.
func (s *Session) Name() string {
	return s.name
}

// State the session is currently in.
func (s *Session) State() State {
	return s.state
}

// Mapping returns the session's address mapping and whether it has been
// resolved. The mapping is only resolved while the session is connected.
func (s *Session) Mapping() (rebase.Mapping, bool) {
	return s.mapping, s.resolved
}

// Decompiler returns the client the session was created with. Used by
// read-only consumers, the context pane in particular.
func (s *Session) Decompiler() decompiler.Client {
	return s.dec
}

// ImportedSymbols returns the batch registered during connect. Empty when
// no import has succeeded.
func (s *Session) ImportedSymbols() []debugger.Symbol {
	if s.importer == nil {
		return nil
	}
	return s.importer.Imported()
}

// SetStopHook registers a function to be called with the static program
// counter after each stop event has been processed. Replaces any previous
// hook. A nil function removes the hook.
func (s *Session) SetStopHook(f func(staticPC uint64)) {
	s.onStop = f
}

// Connect brings the session up: transport link, base resolution, symbol
// import and the stop event hook, in that order. The stop hook is not
// registered until the import has run to completion so a stop event can
// never observe a half imported symbol set.
//
// A symbol import failure does not fail the connect. The session stays up
// for variable materialisation; the failure is logged.
func (s *Session) Connect(opts ConnectOptions) error {
	if s.state != Disconnected {
		return curated.Errorf(AlreadyConnected, s.name)
	}

	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	s.state = Connecting

	err := s.dec.Connect(opts.Host, opts.Port)
	if err != nil {
		s.state = Disconnected
		return curated.Errorf(ConnectFailed, err)
	}

	err = s.resolveMapping(opts)
	if err != nil {
		_ = s.dec.Disconnect()
		s.state = Disconnected
		return curated.Errorf(BaseResolution, err)
	}

	s.host.Symbols().SetBase(s.mapping.Base())

	s.importSymbols()

	s.materializer = variables.NewMaterializer(s.dec, s.host)

	handle, err := s.host.Subscribe(s.onStopEvent)
	if err != nil {
		logger.Logf("session", "stop events unavailable: %v", err)
	} else {
		s.stopHandle = handle
		s.stopHooked = true
	}

	s.state = Connected
	logger.Logf("session", "%s: connected to %s:%d", s.name, opts.Host, opts.Port)

	return nil
}

// Disconnect tears the session down. Disconnecting a session that is not
// connected is not an error; an informational message is logged and nothing
// changes.
func (s *Session) Disconnect() error {
	if s.state == Disconnected {
		logger.Logf("session", "%s: already disconnected", s.name)
		return nil
	}

	if s.stopHooked {
		err := s.host.Unsubscribe(s.stopHandle)
		if err != nil {
			logger.Logf("session", "unsubscribe: %v", err)
		}
		s.stopHooked = false
	}

	err := s.dec.Disconnect()
	if err != nil {
		logger.Logf("session", "transport disconnect: %v", err)
	}

	// the addressing cache is only valid for the process instance we were
	// connected alongside. discard it
	s.mapping = rebase.Mapping{}
	s.resolved = false
	s.materializer = nil

	s.state = Disconnected
	logger.Logf("session", "%s: disconnected", s.name)

	return nil
}

// resolveMapping decides the addressing mode for this session. It runs
// exactly once per connect.
//
// PIE-ness of the image gates everything. A fixed image always gets the
// identity mapping; correction only ever applies to a position independent
// image, with an explicit base address from the user winning over the live
// text mapping and the static load address.
func (s *Session) resolveMapping(opts ConnectOptions) error {
	pie, err := s.isPIE(s.binary)
	if err != nil {
		return err
	}

	if !pie {
		// there is nothing to correct in a fixed image. an explicit base
		// address is ignored, not applied
		if opts.BaseAddrSet {
			logger.Logf("session", "fixed image, ignoring explicit base %#x", opts.BaseAddr)
		}
		s.mapping = rebase.Fixed()
		s.resolved = true
		logger.Log("session", "fixed image, addresses used as reported")
		return nil
	}

	var base uint64

	if opts.BaseAddrSet {
		base = opts.BaseAddr
		logger.Logf("session", "explicit text base %#x", base)
	} else if pid, ok := s.host.AttachedPID(); ok {
		base, err = s.liveTextBase(pid, s.binary)
	} else {
		base, err = s.staticTextBase(s.binary)
	}
	if err != nil {
		return err
	}

	s.mapping = rebase.PositionIndependent(base)
	s.resolved = true
	logger.Logf("session", "position independent image, text base %#x", base)

	return nil
}

// importSymbols runs the bulk symbol import. Failure is logged but never
// fails the connect; the session is still useful for variable binding.
func (s *Session) importSymbols() {
	s.importer = symbols.NewImporter(s.host.Symbols())

	functions, err := s.dec.FunctionHeaders()
	if err != nil {
		logger.Logf("session", "function headers: %v", err)
		return
	}

	globals, err := s.dec.GlobalVars()
	if err != nil {
		logger.Logf("session", "global vars: %v", err)
		return
	}

	err = s.importer.Import(functions, globals)
	if err != nil {
		logger.Logf("session", "symbol import: %v", err)
	}
}

// onStopEvent is the stop event handler registered with the debugger. The
// pc argument is the runtime program counter of the stopped thread.
func (s *Session) onStopEvent(pc uint64) {
	if s.state != Connected || !s.resolved {
		return
	}

	staticPC := s.mapping.Rebase(pc, rebase.ToStatic)
	s.materializer.Materialize(staticPC)

	if s.onStop != nil {
		s.onStop(staticPC)
	}
}
