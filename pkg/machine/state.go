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

package machine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"iter"

	"github.com/lassandro/gochip8/pkg/bitplane"
	"github.com/lassandro/gochip8/pkg/encoding"
)

func NewState() State {
	var st State
	st.Reset()
	return st
}

func (st *State) Reset() {
	*st = State{}

	copy(st.Memory[MEMSPACE_FONT:], FONT[:])

	// Entry point of every program
	st.Program = MEMSPACE_PROGRAM
	st.Stack = make([]uint16, 0, STACK_LIMIT)
}

// Load resets the state and copies the program into memory at
// MEMSPACE_PROGRAM. Input past PROGRAM_CAPACITY is an error unless truncate
// is set. Returns the number of program bytes copied.
func (st *State) Load(reader io.Reader, truncate bool) (int, error) {
	st.Reset()

	n, err := io.ReadFull(reader, st.Memory[MEMSPACE_PROGRAM:])

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	} else if err != nil {
		return n, fmt.Errorf("reading program: %w", err)
	}

	if truncate {
		return n, nil
	}

	var scratch [1]byte

	for {
		count, err := reader.Read(scratch[:])

		if count > 0 {
			return n, &ProgramSizeError{PROGRAM_CAPACITY}
		} else if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, fmt.Errorf("reading program: %w", err)
		}
	}
}

// Clone returns a deep copy that shares nothing with st.
func (st *State) Clone() State {
	clone := *st
	clone.Stack = append(make([]uint16, 0, STACK_LIMIT), st.Stack...)
	return clone
}

// Opcode is the instruction word at the program counter.
func (st *State) Opcode() uint16 {
	return encoding.Word(
		st.Memory[st.Program&MEMORY_MASK],
		st.Memory[(st.Program+1)&MEMORY_MASK],
	)
}

// Pixels yields the (x, y) coordinate of every lit pixel, row by row. The
// sequence reads the display lazily and may be iterated any number of
// times.
func (st *State) Pixels() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for y := range st.Display {
			reader := bitplane.NewReader(st.Display[y][:])

			for x := 0; reader.Len() > 0; x++ {
				if lit, _ := reader.Next(); lit && !yield(x, y) {
					return
				}
			}
		}
	}
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates wrap.
func (st *State) Pixel(x, y int) bool {
	cursor := bitplane.NewCursor(st.Display[y&(DISPLAY_HEIGHT-1)][:])
	cursor.Skip(x & (DISPLAY_WIDTH - 1))
	return cursor.Get()
}

// Snapshot layout, big-endian:
//
//	registers  [16]u8
//	address    u16
//	memory     [4096]u8
//	program    u16
//	stack      u16 count, count*u16
//	delay      u8
//	sound      u8
//	display    [32][8]u8
func (st *State) MarshalBinary() ([]byte, error) {
	if len(st.Stack) > STACK_LIMIT {
		return nil, fmt.Errorf("%w: stack depth %d", ErrBadSnapshot, len(st.Stack))
	}

	buffer := new(bytes.Buffer)
	buffer.Grow(SNAPSHOT_SIZE + 2*len(st.Stack))

	fields := []any{
		st.Registers,
		st.Address,
		st.Memory,
		st.Program,
		uint16(len(st.Stack)),
		st.Stack,
		st.Delay,
		st.Sound,
		st.Display,
	}

	for _, field := range fields {
		if err := binary.Write(buffer, binary.BigEndian, field); err != nil {
			return nil, err
		}
	}

	return buffer.Bytes(), nil
}

// Size of a snapshot with an empty stack
const SNAPSHOT_SIZE = REGISTER_COUNT + 2 + MEMORY_SIZE + 2 + 2 + 1 + 1 +
	DISPLAY_HEIGHT*DISPLAY_ROW_BYTES

func (st *State) UnmarshalBinary(data []byte) error {
	var decoded State
	var depth uint16

	reader := bytes.NewReader(data)

	head := []any{
		&decoded.Registers,
		&decoded.Address,
		&decoded.Memory,
		&decoded.Program,
		&depth,
	}

	for _, field := range head {
		if err := binary.Read(reader, binary.BigEndian, field); err != nil {
			return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
	}

	if depth > STACK_LIMIT {
		return fmt.Errorf("%w: stack depth %d", ErrBadSnapshot, depth)
	}

	decoded.Stack = make([]uint16, depth, STACK_LIMIT)

	tail := []any{
		decoded.Stack,
		&decoded.Delay,
		&decoded.Sound,
		&decoded.Display,
	}

	for _, field := range tail {
		if err := binary.Read(reader, binary.BigEndian, field); err != nil {
			return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
	}

	if reader.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrBadSnapshot, reader.Len())
	}

	*st = decoded
	return nil
}
