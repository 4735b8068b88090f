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

package gdbmi

import (
	"strings"

	"github.com/Mr-Pine/decomp2dbg/curated"
)

// Sentinal error messages for record parsing.
const (
	BadRecord = "gdbmi: bad record: %v"
)

// recordClass identifies the broad category of an MI output record.
type recordClass int

// List of valid recordClass values.
const (
	// ^done, ^running, ^connected
	classResult recordClass = iota

	// ^error
	classError

	// ^exit
	classExit

	// *stopped and friends
	classExecAsync

	// =thread-group-started and friends
	classNotifyAsync

	// +download and friends
	classStatusAsync

	// ~, & and @ output
	classStream

	// the "(gdb)" terminator
	classPrompt
)

// record is a single parsed MI output record.
type record struct {
	class recordClass

	// the record class string: "done", "stopped", "thread-group-started"
	// etc. for a stream record it is "console", "log" or "target". empty
	// for prompt records
	kind string

	// parsed results following the class. string values are unquoted;
	// nested tuples are values of type map[string]any; lists are []any
	results map[string]any

	// the payload of a stream record
	stream string
}

// parseRecord parses a single line of MI output. The trailing newline must
// already be removed.
func parseRecord(line string) (record, error) {
	line = strings.TrimSpace(line)

	if line == "(gdb)" {
		return record{class: classPrompt}, nil
	}

	if line == "" {
		return record{}, curated.Errorf(BadRecord, "empty line")
	}

	// a numeric token prefix is allowed by the grammar. we never send one
	// so strip and ignore
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	line = line[i:]

	if line == "" {
		return record{}, curated.Errorf(BadRecord, "token without record")
	}

	switch line[0] {
	case '~', '&', '@':
		s, _, err := parseCString(line[1:])
		if err != nil {
			return record{}, err
		}

		var kind string
		switch line[0] {
		case '~':
			kind = "console"
		case '&':
			kind = "log"
		case '@':
			kind = "target"
		}

		return record{class: classStream, kind: kind, stream: s}, nil

	case '^', '*', '=', '+':
		var class recordClass
		switch line[0] {
		case '^':
			class = classResult
		case '*':
			class = classExecAsync
		case '=':
			class = classNotifyAsync
		case '+':
			class = classStatusAsync
		}

		rest := line[1:]
		kind := rest
		if idx := strings.Index(rest, ","); idx != -1 {
			kind = rest[:idx]
			rest = rest[idx+1:]
		} else {
			rest = ""
		}

		if class == classResult {
			switch kind {
			case "error":
				class = classError
			case "exit":
				class = classExit
			}
		}

		results, err := parseResults(rest)
		if err != nil {
			return record{}, err
		}

		return record{class: class, kind: kind, results: results}, nil
	}

	return record{}, curated.Errorf(BadRecord, line)
}

// parseResults parses a comma separated list of key=value results.
func parseResults(s string) (map[string]any, error) {
	results := make(map[string]any)

	for s != "" {
		key, rest, err := parseKey(s)
		if err != nil {
			return nil, err
		}

		value, rest, err := parseValue(rest)
		if err != nil {
			return nil, err
		}
		results[key] = value

		s = rest
		if strings.HasPrefix(s, ",") {
			s = s[1:]
		}
	}

	return results, nil
}

func parseKey(s string) (string, string, error) {
	idx := strings.Index(s, "=")
	if idx == -1 {
		return "", "", curated.Errorf(BadRecord, "expected key ("+s+")")
	}
	return s[:idx], s[idx+1:], nil
}

// parseValue parses a single MI value: a c-string, a {} tuple or a [] list.
// It returns the value and the unconsumed remainder of the input.
func parseValue(s string) (any, string, error) {
	if s == "" {
		return nil, "", curated.Errorf(BadRecord, "expected value")
	}

	switch s[0] {
	case '"':
		return parseCString(s)

	case '{':
		tuple := make(map[string]any)
		s = s[1:]
		for !strings.HasPrefix(s, "}") {
			key, rest, err := parseKey(s)
			if err != nil {
				return nil, "", err
			}
			value, rest, err := parseValue(rest)
			if err != nil {
				return nil, "", err
			}
			tuple[key] = value
			s = rest
			if strings.HasPrefix(s, ",") {
				s = s[1:]
			} else if !strings.HasPrefix(s, "}") {
				return nil, "", curated.Errorf(BadRecord, "unterminated tuple")
			}
		}
		return tuple, s[1:], nil

	case '[':
		list := make([]any, 0)
		s = s[1:]
		for !strings.HasPrefix(s, "]") {
			// list elements may be plain values or key=value results. the
			// key carries no information in the lists we care about
			if idx := strings.Index(s, "="); idx != -1 && idx < strings.IndexAny(s, "\"{[,]") {
				s = s[idx+1:]
			}
			value, rest, err := parseValue(s)
			if err != nil {
				return nil, "", err
			}
			list = append(list, value)
			s = rest
			if strings.HasPrefix(s, ",") {
				s = s[1:]
			} else if !strings.HasPrefix(s, "]") {
				return nil, "", curated.Errorf(BadRecord, "unterminated list")
			}
		}
		return list, s[1:], nil
	}

	return nil, "", curated.Errorf(BadRecord, "unexpected value ("+s+")")
}

// parseCString parses a quoted, escaped MI string. It returns the unquoted
// string and the unconsumed remainder of the input.
func parseCString(s string) (string, string, error) {
	if !strings.HasPrefix(s, "\"") {
		return "", "", curated.Errorf(BadRecord, "expected string ("+s+")")
	}

	b := strings.Builder{}
	escaped := false

	for i := 1; i < len(s); i++ {
		c := s[i]

		if escaped {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(c)
			}
			escaped = false
			continue
		}

		switch c {
		case '\\':
			escaped = true
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(c)
		}
	}

	return "", "", curated.Errorf(BadRecord, "unterminated string")
}

// resultString digs a string out of a result map. The path walks nested
// tuples: resultString(r, "frame", "addr") reads r["frame"]["addr"].
func resultString(results map[string]any, path ...string) (string, bool) {
	var v any = results

	for _, p := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		v, ok = m[p]
		if !ok {
			return "", false
		}
	}

	s, ok := v.(string)
	return s, ok
}
