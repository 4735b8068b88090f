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
	"unicode"

	"github.com/Mr-Pine/decomp2dbg/curated"
	"github.com/Mr-Pine/decomp2dbg/terminal"
	"github.com/Mr-Pine/decomp2dbg/terminal/colorterm/easyterm"
	"github.com/Mr-Pine/decomp2dbg/terminal/colorterm/easyterm/ansi"
)

// TermRead implements the terminal.Input interface.
func (ct *ColorTerminal) TermRead(input []byte, prompt terminal.Prompt, events *terminal.ReadEvents) (int, error) {
	if ct.silenced {
		return 0, nil
	}

	err := ct.RawMode()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = ct.CanonicalMode()
	}()

	line := make([]rune, 0, 255)
	cursor := 0
	history := len(ct.commandHistory)

	draw := func() {
		ct.EasyTerm.TermPrint("\r")
		ct.EasyTerm.TermPrint(ansi.ClearLine)
		ct.EasyTerm.TermPrint(ansi.PenStyles["bold"])
		ct.EasyTerm.TermPrint(prompt.String())
		ct.EasyTerm.TermPrint(ansi.NormalPen)
		ct.EasyTerm.TermPrint(string(line))
		ct.EasyTerm.TermPrint(ansi.CursorMove(cursor - len(line)))
		_ = ct.Flush()
	}

	draw()

	for {
		select {
		case f := <-events.RawEvents:
			f()

			// the event handler has probably printed over the input line.
			// draw it again
			draw()

		case sig := <-events.IntEvents:
			ct.EasyTerm.TermPrint("\n")
			_ = ct.Flush()
			return 0, events.IntEventsHandler(sig)

		case r, ok := <-ct.reader.runes:
			if !ok {
				return 0, ct.reader.err
			}

			switch r {
			case easyterm.KeyInterrupt:
				ct.EasyTerm.TermPrint("\n")
				_ = ct.Flush()
				return 0, curated.Errorf(terminal.UserInterrupt)

			case easyterm.KeyEndOfFile:
				// only quit when the line is empty, like a shell
				if len(line) == 0 {
					ct.EasyTerm.TermPrint("\n")
					_ = ct.Flush()
					return 0, curated.Errorf(terminal.UserQuit)
				}

			case easyterm.KeySuspend:
				_ = ct.CanonicalMode()
				easyterm.SuspendProcess()
				_ = ct.RawMode()
				draw()

			case easyterm.KeyTab:
				if ct.tabCompletion != nil {
					line = []rune(ct.tabCompletion.Complete(string(line)))
					cursor = len(line)
					draw()
				}

			case easyterm.KeyCarriageReturn:
				ct.EasyTerm.TermPrint("\n")
				_ = ct.Flush()

				if ct.tabCompletion != nil {
					ct.tabCompletion.Reset()
				}

				if len(line) > 0 {
					stored := append([]rune(nil), line...)
					ct.commandHistory = append(ct.commandHistory, command{input: stored})
				}

				return copy(input, []byte(string(line))), nil

			case easyterm.KeyEsc:
				esc, ok := <-ct.reader.runes
				if !ok {
					return 0, ct.reader.err
				}

				if esc != easyterm.EscCursor {
					break
				}

				cur, ok := <-ct.reader.runes
				if !ok {
					return 0, ct.reader.err
				}

				switch cur {
				case easyterm.CursorUp:
					if history > 0 {
						history--
						line = append(line[:0], ct.commandHistory[history].input...)
						cursor = len(line)
					}

				case easyterm.CursorDown:
					if history < len(ct.commandHistory)-1 {
						history++
						line = append(line[:0], ct.commandHistory[history].input...)
						cursor = len(line)
					} else {
						history = len(ct.commandHistory)
						line = line[:0]
						cursor = 0
					}

				case easyterm.CursorForward:
					if cursor < len(line) {
						cursor++
					}

				case easyterm.CursorBackward:
					if cursor > 0 {
						cursor--
					}

				case easyterm.EscHome:
					cursor = 0

				case easyterm.EscEnd:
					cursor = len(line)

				case easyterm.EscDelete:
					// expect a trailing tilde
					if _, ok := <-ct.reader.runes; !ok {
						return 0, ct.reader.err
					}
					if cursor < len(line) {
						line = append(line[:cursor], line[cursor+1:]...)
					}
				}

				draw()

			case easyterm.KeyBackspace, easyterm.KeyDelete:
				if cursor > 0 {
					line = append(line[:cursor-1], line[cursor:]...)
					cursor--
					if ct.tabCompletion != nil {
						ct.tabCompletion.Reset()
					}
					draw()
				}

			default:
				if unicode.IsPrint(r) {
					line = append(line, 0)
					copy(line[cursor+1:], line[cursor:])
					line[cursor] = r
					cursor++
					draw()
				}
			}
		}
	}
}
