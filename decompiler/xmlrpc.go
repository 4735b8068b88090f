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

package decompiler

import (
	"fmt"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/logger"
	"github.com/kolo/xmlrpc"
)

// sentinel error patterns for the XML-RPC client.
const (
	NotConnected  = "decompiler: not connected"
	ConnectFailed = "decompiler: connect: %v"
	CallFailed    = "decompiler: %s: %v"
)

// XMLRPCClient implements the Client interface over the decomp2dbg XML-RPC
// protocol. Every decompiler plugin in the decomp2dbg family (IDA, Ghidra,
// Binja, angr) serves this protocol.
type XMLRPCClient struct {
	conn *xmlrpc.Client
}

// NewXMLRPCClient is the preferred method of initialisation for the
// XMLRPCClient type.
func NewXMLRPCClient() *XMLRPCClient {
	return &XMLRPCClient{}
}

// Connect implements the Client interface. The connection is verified with
// a ping before it is considered established.
func (c *XMLRPCClient) Connect(host string, port int) error {
	conn, err := xmlrpc.NewClient(fmt.Sprintf("http://%s:%d/RPC2", host, port), nil)
	if err != nil {
		return curated.Errorf(ConnectFailed, err)
	}

	// the decompiler server answers a ping with true. anything else is a
	// failed connection
	var pong bool
	err = conn.Call("d2d.ping", nil, &pong)
	if err != nil {
		return curated.Errorf(ConnectFailed, err)
	}
	if !pong {
		return curated.Errorf(ConnectFailed, fmt.Errorf("decompiler did not answer ping"))
	}

	c.conn = conn
	logger.Logf("decompiler", "connected to %s:%d", host, port)

	return nil
}

// Disconnect implements the Client interface.
func (c *XMLRPCClient) Disconnect() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return curated.Errorf(CallFailed, "disconnect", err)
	}

	return nil
}

// FunctionHeaders implements the Client interface.
func (c *XMLRPCClient) FunctionHeaders() (map[string]FunctionHeader, error) {
	if c.conn == nil {
		return nil, curated.Errorf(NotConnected)
	}

	var raw map[string]map[string]any
	err := c.conn.Call("d2d.function_headers", nil, &raw)
	if err != nil {
		return nil, curated.Errorf(CallFailed, "function_headers", err)
	}

	headers := make(map[string]FunctionHeader, len(raw))
	for addr, h := range raw {
		headers[addr] = FunctionHeader{
			Name: asString(h["name"]),
			Size: asInt(h["size"]),
		}
	}

	return headers, nil
}

// GlobalVars implements the Client interface.
func (c *XMLRPCClient) GlobalVars() (map[string]GlobalVar, error) {
	if c.conn == nil {
		return nil, curated.Errorf(NotConnected)
	}

	var raw map[string]map[string]any
	err := c.conn.Call("d2d.global_vars", nil, &raw)
	if err != nil {
		return nil, curated.Errorf(CallFailed, "global_vars", err)
	}

	globals := make(map[string]GlobalVar, len(raw))
	for addr, g := range raw {
		globals[addr] = GlobalVar{
			Name: asString(g["name"]),
		}
	}

	return globals, nil
}

// FunctionData implements the Client interface.
func (c *XMLRPCClient) FunctionData(addr uint64) (FunctionData, error) {
	data := FunctionData{
		RegVars:   make(map[string]RegVar),
		StackVars: make(map[string]StackVar),
	}

	if c.conn == nil {
		return data, curated.Errorf(NotConnected)
	}

	var raw map[string]map[string]map[string]any
	err := c.conn.Call("d2d.function_data", fmt.Sprintf("%#x", addr), &raw)
	if err != nil {
		return data, curated.Errorf(CallFailed, "function_data", err)
	}

	for name, v := range raw["reg_vars"] {
		data.RegVars[name] = RegVar{
			Type:    asString(v["type"]),
			RegName: asString(v["reg_name"]),
		}
	}

	for offset, v := range raw["stack_vars"] {
		data.StackVars[offset] = StackVar{
			Type: asString(v["type"]),
			Name: asString(v["name"]),
		}
	}

	return data, nil
}

// Decompile implements the Client interface.
func (c *XMLRPCClient) Decompile(addr uint64) (Decompilation, error) {
	var dec Decompilation

	if c.conn == nil {
		return dec, curated.Errorf(NotConnected)
	}

	var raw map[string]any
	err := c.conn.Call("d2d.decompile", fmt.Sprintf("%#x", addr), &raw)
	if err != nil {
		return dec, curated.Errorf(CallFailed, "decompile", err)
	}

	dec.FuncName = asString(raw["func_name"])
	dec.CurrentLine = asInt(raw["curr_line"])

	if lines, ok := raw["decompilation"].([]any); ok {
		dec.Lines = make([]string, 0, len(lines))
		for _, l := range lines {
			dec.Lines = append(dec.Lines, asString(l))
		}
	}

	return dec, nil
}

// the XML-RPC layer is loosely typed. values reported by the different
// decompiler plugins vary between strings and integers so conversion is
// best-effort.

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func asInt(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
