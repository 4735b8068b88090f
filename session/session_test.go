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

package session

import (
	"errors"
	"testing"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/debugger"
	"github.com/Mr-Pine/decomp2dbg/decompiler"
	"github.com/Mr-Pine/decomp2dbg/test"
)

type mockClient struct {
	connectErr error
	headersErr error

	connected   bool
	disconnects int
}

func (m *mockClient) Connect(host string, port int) error {
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

func (m *mockClient) Disconnect() error {
	m.connected = false
	m.disconnects++
	return nil
}

func (m *mockClient) FunctionHeaders() (map[string]decompiler.FunctionHeader, error) {
	if m.headersErr != nil {
		return nil, m.headersErr
	}
	return map[string]decompiler.FunctionHeader{
		"0x100": {Name: "main", Size: 64},
	}, nil
}

func (m *mockClient) GlobalVars() (map[string]decompiler.GlobalVar, error) {
	return map[string]decompiler.GlobalVar{
		"0x200": {Name: "counter"},
	}, nil
}

func (m *mockClient) FunctionData(addr uint64) (decompiler.FunctionData, error) {
	return decompiler.FunctionData{}, nil
}

func (m *mockClient) Decompile(addr uint64) (decompiler.Decompilation, error) {
	return decompiler.Decompilation{}, nil
}

// mockHost records the order of registration and subscription calls in the
// calls slice.
type mockHost struct {
	calls []string

	base       uint64
	registered []debugger.Symbol

	stopFunc     func(pc uint64)
	subscribed   int
	unsubscribed int

	pid      int
	attached bool
}

func (m *mockHost) Evaluate(expr string) (string, error)   { return "0", nil }
func (m *mockHost) SetConvenience(name, expr string) error { return nil }
func (m *mockHost) ProgramCounter() (uint64, error)        { return 0, nil }
func (m *mockHost) FramePointerName() string               { return "fp" }
func (m *mockHost) Available() bool                        { return true }
func (m *mockHost) Symbols() debugger.SymbolRegistrar      { return m }
func (m *mockHost) AttachedPID() (int, bool)               { return m.pid, m.attached }

func (m *mockHost) SetBase(base uint64) {
	m.base = base
}

func (m *mockHost) RegisterBatch(symbols []debugger.Symbol) error {
	m.calls = append(m.calls, "register")
	m.registered = symbols
	return nil
}

func (m *mockHost) Subscribe(f func(pc uint64)) (debugger.StopHandle, error) {
	m.calls = append(m.calls, "subscribe")
	m.stopFunc = f
	m.subscribed++
	return debugger.StopHandle(1), nil
}

func (m *mockHost) Unsubscribe(handle debugger.StopHandle) error {
	m.unsubscribed++
	return nil
}

func newTestSession(cl *mockClient, host *mockHost, pie bool, staticBase uint64, liveBase uint64) *Session {
	s := NewSession("test", "/bin/target", cl, host)
	s.isPIE = func(path string) (bool, error) { return pie, nil }
	s.staticTextBase = func(path string) (uint64, error) { return staticBase, nil }
	s.liveTextBase = func(pid int, path string) (uint64, error) { return liveBase, nil }
	return s
}

func TestConnectLifecycle(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, true, 0x400000, 0)

	test.ExpectEquality(t, s.State(), Disconnected)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)
	test.ExpectEquality(t, s.State(), Connected)
	test.ExpectSuccess(t, cl.connected)

	m, resolved := s.Mapping()
	test.ExpectSuccess(t, resolved)
	test.ExpectEquality(t, m.Base(), 0x400000)
	test.ExpectEquality(t, host.base, 0x400000)

	// functions and globals both made it into the batch
	test.ExpectEquality(t, len(s.ImportedSymbols()), 2)

	err = s.Disconnect()
	test.ExpectSuccess(t, err == nil)
	test.ExpectEquality(t, s.State(), Disconnected)
	test.ExpectEquality(t, cl.disconnects, 1)

	_, resolved = s.Mapping()
	test.ExpectEquality(t, resolved, false)
}

func TestStopHookAfterImport(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)

	// a stop event must never observe a half imported symbol set so the
	// subscription happens strictly after registration
	test.DemandEquality(t, len(host.calls), 2)
	test.ExpectEquality(t, host.calls[0], "register")
	test.ExpectEquality(t, host.calls[1], "subscribe")
}

func TestAlreadyConnected(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)

	err = s.Connect(ConnectOptions{})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, AlreadyConnected))
}

func TestConnectFailure(t *testing.T) {
	cl := &mockClient{connectErr: errors.New("connection refused")}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	err := s.Connect(ConnectOptions{})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, ConnectFailed))
	test.ExpectEquality(t, s.State(), Disconnected)
}

func TestIdempotentDisconnect(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)

	err = s.Disconnect()
	test.ExpectSuccess(t, err == nil)
	err = s.Disconnect()
	test.ExpectSuccess(t, err == nil)

	test.ExpectEquality(t, cl.disconnects, 1)
	test.ExpectEquality(t, host.unsubscribed, 1)
}

func TestStopEventRebasing(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, true, 0, 0)

	var hooked []uint64
	s.SetStopHook(func(staticPC uint64) {
		hooked = append(hooked, staticPC)
	})

	err := s.Connect(ConnectOptions{BaseAddr: 0x1000, BaseAddrSet: true})
	test.ExpectSuccess(t, err == nil)

	// the debugger reports runtime addresses. the hook sees static ones
	host.stopFunc(0x1234)
	test.DemandEquality(t, len(hooked), 1)
	test.ExpectEquality(t, hooked[0], 0x234)
}

func TestFixedImageIdentity(t *testing.T) {
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	var hooked []uint64
	s.SetStopHook(func(staticPC uint64) {
		hooked = append(hooked, staticPC)
	})

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)

	m, _ := s.Mapping()
	test.ExpectEquality(t, m.PIE(), false)

	host.stopFunc(0x1234)
	test.DemandEquality(t, len(hooked), 1)
	test.ExpectEquality(t, hooked[0], 0x1234)
}

func TestExplicitBaseIgnoredForFixedImage(t *testing.T) {
	// rebasing is gated on PIE-ness alone. an explicit base address must
	// not turn a fixed image into a shifted one
	cl := &mockClient{}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	var hooked []uint64
	s.SetStopHook(func(staticPC uint64) {
		hooked = append(hooked, staticPC)
	})

	err := s.Connect(ConnectOptions{BaseAddr: 0x5000, BaseAddrSet: true})
	test.ExpectSuccess(t, err == nil)

	m, resolved := s.Mapping()
	test.ExpectSuccess(t, resolved)
	test.ExpectEquality(t, m.PIE(), false)
	test.ExpectEquality(t, m.Base(), 0)

	host.stopFunc(0x401000)
	test.DemandEquality(t, len(hooked), 1)
	test.ExpectEquality(t, hooked[0], 0x401000)
}

func TestBasePrecedence(t *testing.T) {
	// attached to a live process. the live mapping wins over the static one
	cl := &mockClient{}
	host := &mockHost{pid: 100, attached: true}
	s := newTestSession(cl, host, true, 0x400000, 0x7f0000000000)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)

	m, _ := s.Mapping()
	test.ExpectEquality(t, m.Base(), 0x7f0000000000)

	// an explicit base overrides everything
	cl = &mockClient{}
	host = &mockHost{pid: 100, attached: true}
	s = newTestSession(cl, host, true, 0x400000, 0x7f0000000000)

	err = s.Connect(ConnectOptions{BaseAddr: 0x5000, BaseAddrSet: true})
	test.ExpectSuccess(t, err == nil)

	m, _ = s.Mapping()
	test.ExpectEquality(t, m.Base(), 0x5000)
}

func TestImportFailureKeepsSessionUp(t *testing.T) {
	cl := &mockClient{headersErr: errors.New("retrieval failed")}
	host := &mockHost{}
	s := newTestSession(cl, host, false, 0, 0)

	err := s.Connect(ConnectOptions{})
	test.ExpectSuccess(t, err == nil)
	test.ExpectEquality(t, s.State(), Connected)
	test.ExpectEquality(t, len(s.ImportedSymbols()), 0)

	// variable binding still works. a stop event must not panic
	host.stopFunc(0x100)
}
