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
	"strconv"
	"strings"
)

// Tokens represents tokenised input. This can be used to walk through the
// input string for processing.
type Tokens struct {
	input  string
	tokens []string
	curr   int
}

// TokeniseInput creates and returns a new Tokens instance.
func TokeniseInput(input string) *Tokens {
	tok := &Tokens{
		input: strings.TrimSpace(input),
	}

	tok.tokens = strings.Fields(tok.input)
	for i := range tok.tokens {
		tok.tokens[i] = tokeniseNumber(tok.tokens[i])
	}

	return tok
}

// tokeniseNumber normalises alternative hex notation. A token of the form
// $ff is turned into 0xff so that strconv functions can parse it.
func tokeniseNumber(token string) string {
	if !strings.HasPrefix(token, "$") {
		return token
	}

	_, err := strconv.ParseUint(token[1:], 16, 64)
	if err != nil {
		return token
	}

	return fmt.Sprintf("0x%s", token[1:])
}

// String representation of the token stream, with normalised numbers.
func (tk *Tokens) String() string {
	return strings.Join(tk.tokens, " ")
}

// Tail returns the portion of the original input after the first token,
// untokenised. Number normalisation does not apply; a $ sigil in the tail
// is preserved as typed.
func (tk *Tokens) Tail() string {
	if len(tk.tokens) < 2 {
		return ""
	}
	return strings.TrimSpace(tk.input[len(strings.Fields(tk.input)[0]):])
}

// Reset the token queue to the beginning.
func (tk *Tokens) Reset() {
	tk.curr = 0
}

// Remaining returns the count of tokens that have not yet been retrieved.
func (tk *Tokens) Remaining() int {
	return len(tk.tokens) - tk.curr
}

// Get returns the next token in the queue and advances.
func (tk *Tokens) Get() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	tk.curr++
	return tk.tokens[tk.curr-1], true
}

// Peek returns the next token in the queue without advancing.
func (tk *Tokens) Peek() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	return tk.tokens[tk.curr], true
}

// Unget steps one token back in the queue.
func (tk *Tokens) Unget() {
	if tk.curr > 0 {
		tk.curr--
	}
}
