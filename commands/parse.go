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
	"strconv"
	"strings"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/session"
)

// Sentinal error messages returned by the parser.
const (
	UnknownCommand = "commands: unrecognised command (%v)"
	ParseFailed    = "commands: %v: %v"
)

// Parsed is the result of a successful Parse(). Only the fields relevant to
// the parsed Command are populated.
type Parsed struct {
	Command Command

	// connect and disconnect
	Name    string
	Options session.ConnectOptions

	// help
	Topic    string
	TopicSet bool

	// symbols
	Pattern string

	// log. zero means the whole log
	LastN int

	// dump
	Path string

	// gdb. the line to pass through, exactly as typed
	Passthrough string

	// the input as the parser understood it: recognised keyword plus
	// normalised arguments. the dispatcher echoes this
	Normalised string
}

// Parse tokenises and parses a line of input. An empty line parses to an
// error; callers should discard empty input before calling.
func Parse(input string) (Parsed, error) {
	tokens := TokeniseInput(input)

	keyword, ok := tokens.Get()
	if !ok {
		return Parsed{}, curated.Errorf(UnknownCommand, "")
	}

	command, ok := lookup(keyword)
	if !ok {
		return Parsed{}, curated.Errorf(UnknownCommand, keyword)
	}

	p := Parsed{Command: command}

	var err error

	switch command {
	case Connect:
		err = p.parseConnect(tokens)
	case Disconnect:
		err = p.parseDisconnect(tokens)
	case Help:
		err = p.parseHelp(tokens)
	case Symbols:
		err = p.parseSymbols(tokens)
	case Log:
		err = p.parseLog(tokens)
	case Dump:
		err = p.parseDump(tokens)
	case Gdb:
		err = p.parseGdb(tokens)
	default:
		// info and quit take no arguments
		err = expectEnd(command, tokens)
	}

	if err != nil {
		return Parsed{}, err
	}

	if command == Gdb {
		// the passthrough line is not tokenised. echo it as typed
		p.Normalised = command.keyword() + " " + p.Passthrough
	} else {
		p.Normalised = command.keyword()
		if len(tokens.tokens) > 1 {
			p.Normalised += " " + strings.Join(tokens.tokens[1:], " ")
		}
	}

	return p, nil
}

func parseError(command Command, reason string) error {
	return curated.Errorf(ParseFailed, command, reason)
}

func expectEnd(command Command, tokens *Tokens) error {
	if arg, ok := tokens.Get(); ok {
		return parseError(command, "unrecognised argument ("+arg+")")
	}
	return nil
}

func (p *Parsed) parseConnect(tokens *Tokens) error {
	for {
		tok, ok := tokens.Get()
		if !ok {
			break
		}

		switch strings.ToLower(tok) {
		case "--host":
			v, ok := tokens.Get()
			if !ok {
				return parseError(Connect, "--host requires a value")
			}
			p.Options.Host = v

		case "--port":
			v, ok := tokens.Get()
			if !ok {
				return parseError(Connect, "--port requires a value")
			}
			port, err := strconv.Atoi(v)
			if err != nil || port < 1 || port > 65535 {
				return parseError(Connect, "invalid port ("+v+")")
			}
			p.Options.Port = port

		case "--base-addr":
			v, ok := tokens.Get()
			if !ok {
				return parseError(Connect, "--base-addr requires a value")
			}
			addr, err := strconv.ParseUint(v, 0, 64)
			if err != nil {
				return parseError(Connect, "invalid base address ("+v+")")
			}
			p.Options.BaseAddr = addr
			p.Options.BaseAddrSet = true

		default:
			if strings.HasPrefix(tok, "-") {
				return parseError(Connect, "unrecognised option ("+tok+")")
			}
			if p.Name != "" {
				return parseError(Connect, "unrecognised argument ("+tok+")")
			}
			p.Name = tok
		}
	}

	if p.Name == "" {
		return parseError(Connect, "session name required")
	}

	return nil
}

func (p *Parsed) parseDisconnect(tokens *Tokens) error {
	name, ok := tokens.Get()
	if !ok {
		return parseError(Disconnect, "session name required")
	}
	p.Name = name

	return expectEnd(Disconnect, tokens)
}

func (p *Parsed) parseHelp(tokens *Tokens) error {
	topic, ok := tokens.Get()
	if !ok {
		return nil
	}

	command, ok := lookup(topic)
	if !ok {
		return parseError(Help, "no help for "+topic)
	}
	p.Topic = command.keyword()
	p.TopicSet = true

	return expectEnd(Help, tokens)
}

func (p *Parsed) parseSymbols(tokens *Tokens) error {
	pattern, ok := tokens.Get()
	if !ok {
		return nil
	}
	p.Pattern = pattern

	return expectEnd(Symbols, tokens)
}

func (p *Parsed) parseLog(tokens *Tokens) error {
	tok, ok := tokens.Get()
	if !ok {
		return nil
	}

	if !strings.EqualFold(tok, "last") {
		return parseError(Log, "unrecognised argument ("+tok+")")
	}

	v, ok := tokens.Get()
	if !ok {
		return parseError(Log, "LAST requires a count")
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return parseError(Log, "invalid count ("+v+")")
	}
	p.LastN = n

	return expectEnd(Log, tokens)
}

func (p *Parsed) parseGdb(tokens *Tokens) error {
	// everything after the keyword is handed to the debugger untouched.
	// the tokenised form is not used, $ is gdb's own sigil
	line := tokens.Tail()
	if line == "" {
		return parseError(Gdb, "debugger command required")
	}
	p.Passthrough = line

	return nil
}

func (p *Parsed) parseDump(tokens *Tokens) error {
	path, ok := tokens.Get()
	if !ok {
		return parseError(Dump, "file name required")
	}
	p.Path = path

	return expectEnd(Dump, tokens)
}
