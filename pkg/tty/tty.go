// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.


package tty

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
	"golang.org/x/term"
)

// Two display rows share one text row, plus a status line
const (
	COLUMNS = machine.DISPLAY_WIDTH
	ROWS    = machine.DISPLAY_HEIGHT/2 + 1
)

type Command uint

const (
	COMMAND_QUIT Command = iota + 1
	COMMAND_RELOAD
	COMMAND_PAUSE
)

var (
	seqF5 = []byte("[15~")
	seqF6 = []byte("[17~")
)

var ErrNotTerminal = errors.New("not a terminal")

// Check verifies both descriptors are terminals and that the output is large
// enough for the display.
func Check(in, out int) error {
	if !term.IsTerminal(in) || !term.IsTerminal(out) {
		return ErrNotTerminal
	}

	cols, rows, err := term.GetSize(out)

	if err != nil {
		return err
	}

	if cols < COLUMNS || rows < ROWS {
		return fmt.Errorf(
			"terminal is %dx%d, the display needs %dx%d",
			cols, rows, COLUMNS, ROWS,
		)
	}

	return nil
}

// ParseInput splits bytes read from a raw terminal into keypad presses and
// frontend commands. Escape on its own quits, F5 reloads and F6 pauses;
// other escape sequences are dropped.
func ParseInput(data []byte) (keys []uint8, cmds []Command) {
	for i := 0; i < len(data); i++ {
		if data[i] != 0x1B {
			if key, ok := keypad.KeyForRune(rune(data[i])); ok {
				keys = append(keys, key)
			}
			continue
		}

		rest := data[i+1:]

		switch {
		case len(rest) == 0:
			cmds = append(cmds, COMMAND_QUIT)

		case bytes.HasPrefix(rest, seqF5):
			cmds = append(cmds, COMMAND_RELOAD)
			i += len(seqF5)

		case bytes.HasPrefix(rest, seqF6):
			cmds = append(cmds, COMMAND_PAUSE)
			i += len(seqF6)

		case rest[0] == '[' || rest[0] == 'O':
			// Runs up to the final byte of the sequence
			j := 1
			for j < len(rest) && (rest[j] < 0x40 || rest[j] > 0x7E) {
				j++
			}
			i += j + 1

		default:
			// Alt+key
			i++
		}
	}

	return keys, cmds
}

// Render draws a full frame from the top left corner of the terminal, each
// character cell holding two vertically stacked pixels.
func Render(w io.Writer, pixels iter.Seq2[int, int], status string) error {
	var lit [machine.DISPLAY_HEIGHT][machine.DISPLAY_WIDTH]bool

	for x, y := range pixels {
		lit[y][x] = true
	}

	var frame bytes.Buffer
	frame.Grow(ROWS * COLUMNS * 3)
	frame.WriteString("\033[H")

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			top, bottom := lit[y][x], lit[y+1][x]

			switch {
			case top && bottom:
				frame.WriteRune('█')
			case top:
				frame.WriteRune('▀')
			case bottom:
				frame.WriteRune('▄')
			default:
				frame.WriteByte(' ')
			}
		}

		frame.WriteString("\r\n")
	}

	frame.WriteString(status)
	frame.WriteString("\033[K")

	_, err := w.Write(frame.Bytes())
	return err
}
