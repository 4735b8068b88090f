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

// Package commands parses and dispatches the tool's command vocabulary. The
// vocabulary is a closed set; unknown keywords are rejected at parse time
// and a parse failure never mutates anything.
package commands

import (
	"sort"
	"strings"
)

// Command identifies one of the commands in the vocabulary.
type Command int

// The command vocabulary.
const (
	Connect Command = iota
	Disconnect
	Info
	Help
	Symbols
	Log
	Dump
	Gdb
	Quit
)

// keyword returns the keyword that the parser recognises for the command.
func (c Command) keyword() string {
	switch c {
	case Connect:
		return "CONNECT"
	case Disconnect:
		return "DISCONNECT"
	case Info:
		return "INFO"
	case Help:
		return "HELP"
	case Symbols:
		return "SYMBOLS"
	case Log:
		return "LOG"
	case Dump:
		return "DUMP"
	case Gdb:
		return "GDB"
	case Quit:
		return "QUIT"
	}
	return ""
}

func (c Command) String() string {
	return c.keyword()
}

// the closed set of commands, in presentation order
var commandList = []Command{Connect, Disconnect, Info, Help, Symbols, Log, Dump, Gdb, Quit}

// usage strings, indexed by keyword
var usage = map[Command]string{
	Connect:    "CONNECT <name> [--host HOST] [--port PORT] [--base-addr ADDR]",
	Disconnect: "DISCONNECT <name>",
	Info:       "INFO",
	Help:       "HELP [command]",
	Symbols:    "SYMBOLS [pattern]",
	Log:        "LOG [LAST <n>]",
	Dump:       "DUMP <file>",
	Gdb:        "GDB <command>",
	Quit:       "QUIT",
}

// short descriptions for the help listing
var summary = map[Command]string{
	Connect:    "connect a named decompiler session",
	Disconnect: "disconnect the named decompiler session",
	Info:       "show the state of the current session",
	Help:       "show help for a command, or list all commands",
	Symbols:    "list symbols imported from the decompiler",
	Log:        "show the application log",
	Dump:       "write a graph of the session state to a file",
	Gdb:        "pass a command line through to the hosting debugger",
	Quit:       "quit the tool",
}

// lookup a keyword, case insensitively. the bool return is false when the
// keyword is not part of the vocabulary.
func lookup(keyword string) (Command, bool) {
	keyword = strings.ToUpper(keyword)
	for _, c := range commandList {
		if c.keyword() == keyword {
			return c, true
		}
	}
	return Command(-1), false
}

// Keywords returns the command vocabulary, sorted. Used for tab completion
// and for the help listing.
func Keywords() []string {
	k := make([]string, 0, len(commandList))
	for _, c := range commandList {
		k = append(k, c.keyword())
	}
	sort.Strings(k)
	return k
}
