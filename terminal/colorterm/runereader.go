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

package colorterm

import (
	"bufio"
	"io"
)

// runeReader pumps runes from the terminal into a channel so that TermRead()
// can select over input and asynchronous events at the same time.
type runeReader struct {
	runes chan rune
	err   error
}

func initRuneReader(input io.Reader) runeReader {
	rr := runeReader{
		runes: make(chan rune),
	}

	br := bufio.NewReader(input)

	go func() {
		for {
			r, _, err := br.ReadRune()
			if err != nil {
				rr.err = err
				close(rr.runes)
				return
			}
			rr.runes <- r
		}
	}()

	return rr
}
