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

package terminal

// Style is used to hint at what the terminal should do with a line of
// output. A terminal implementation can ignore any style it has no use for.
type Style int

// List of terminal styles.
const (
	// input that has been normalised by the command parser. terminals that
	// echo what the user typed have no use for this
	StyleEcho Style = iota

	// help and usage text
	StyleHelp

	// the outcome of a command
	StyleFeedback

	// an entry from the application log
	StyleLog

	// a line of decompiled source from the context pane
	StyleDecompilation

	// the decompiled line corresponding to the current program counter
	StyleDecompilationCurrent

	StyleError
)
