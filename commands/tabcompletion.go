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
	"strings"
)

// TabCompletion implements the terminal.TabCompletion interface over the
// command vocabulary. Repeated calls with the same partial keyword cycle
// through the matches.
type TabCompletion struct {
	matches   []string
	match     int
	active    bool
	lastGuess string
}

// NewTabCompletion is the preferred method of initialisation for the
// TabCompletion type.
func NewTabCompletion() *TabCompletion {
	return &TabCompletion{}
}

// Complete the keyword at the start of the input. Input beyond the keyword
// is left alone.
func (tc *TabCompletion) Complete(input string) string {
	// a repeated tab on an unchanged line continues the cycle
	if !tc.active || input != tc.lastGuess {
		// only the keyword itself is completed
		if strings.Contains(strings.TrimSpace(input), " ") {
			tc.Reset()
			return input
		}

		prefix := strings.ToUpper(strings.TrimSpace(input))
		tc.matches = tc.matches[:0]
		for _, k := range Keywords() {
			if strings.HasPrefix(k, prefix) {
				tc.matches = append(tc.matches, k)
			}
		}
		tc.match = 0
		tc.active = true
	}

	if len(tc.matches) == 0 {
		return input
	}

	tc.lastGuess = tc.matches[tc.match] + " "
	tc.match = (tc.match + 1) % len(tc.matches)

	return tc.lastGuess
}

// Reset the completion cycle. Call whenever the input line changes by means
// other than Complete().
func (tc *TabCompletion) Reset() {
	tc.active = false
}
