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
	"github.com/lassandro/gochip8/pkg/bitplane"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/random"
)

type cpu struct {
	st     *State
	keypad Keypad
	audio  Audio
	random Random
	dbg    MachineDebugger
}

func newCPU(st *State, dh *DeviceHandler, dbg MachineDebugger) cpu {
	c := cpu{st: st, dbg: dbg}

	if dh != nil {
		c.keypad = dh.Keypad
		c.audio = dh.Audio
		c.random = dh.Random
	}

	if c.keypad == nil {
		c.keypad = NullKeypad{}
	}

	if c.audio == nil {
		c.audio = NullAudio{}
	}

	return c
}

// Execute runs the single instruction at st.Program. On error the state is
// untouched and the program counter still points at the failing
// instruction.
func Execute(st *State, dh *DeviceHandler) error {
	c := newCPU(st, dh, nil)
	return c.step()
}

func (c *cpu) read(addr uint16) uint8 {
	addr &= MEMORY_MASK

	if c.dbg != nil {
		c.dbg.Read(addr, c.st)
	}

	return c.st.Memory[addr]
}

func (c *cpu) write(addr uint16, value uint8) {
	addr &= MEMORY_MASK

	c.st.Memory[addr] = value

	if c.dbg != nil {
		c.dbg.Write(addr, c.st)
	}
}

func (c *cpu) pressed(key uint8) bool {
	if key >= KEY_COUNT {
		return false
	}

	return c.keypad.IsPressed(key)
}

func (c *cpu) fault(kind error, opcode uint16) error {
	return &Fault{Kind: kind, Program: c.st.Program, Opcode: opcode}
}

func (c *cpu) step() error {
	st := c.st
	opcode := st.Opcode()
	op, x, y, n := encoding.Nibbles(opcode)
	kk := uint8(opcode & 0xFF)
	addr := encoding.Address(x, kk)

	v := &st.Registers

	switch op {
	// CLS  |0000|0000|1110|0000| Clear display
	// RET  |0000|0000|1110|1110| Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SYS:
		switch opcode {
		case 0x00E0:
			st.Display = [DISPLAY_HEIGHT][DISPLAY_ROW_BYTES]uint8{}

		case 0x00EE:
			if len(st.Stack) == 0 {
				return c.fault(ErrStackUnderflow, opcode)
			}

			st.Program = st.Stack[len(st.Stack)-1]
			st.Stack = st.Stack[:len(st.Stack)-1]
			return nil

		default:
			return c.fault(ErrUnknownOpcode, opcode)
		}

	// JP   |0001|addr          | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP:
		st.Program = addr
		return nil

	// CALL |0010|addr          | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CALL:
		if len(st.Stack) >= STACK_LIMIT {
			return c.fault(ErrStackOverflow, opcode)
		}

		st.Stack = append(st.Stack, st.Program+2)
		st.Program = addr
		return nil

	// SE   |0011|Vx  |byte     | Skip if Vx == byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SE_BYTE:
		if v[x] == kk {
			st.Program += 2
		}

	// SNE  |0100|Vx  |byte     | Skip if Vx != byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNE_BYTE:
		if v[x] != kk {
			st.Program += 2
		}

	// SE   |0101|Vx  |Vy  |0000| Skip if Vx == Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SE_REG:
		if n != 0 {
			return c.fault(ErrUnknownOpcode, opcode)
		}

		if v[x] == v[y] {
			st.Program += 2
		}

	// LD   |0110|Vx  |byte     | Vx = byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD_BYTE:
		v[x] = kk

	// ADD  |0111|Vx  |byte     | Vx += byte, VF untouched
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD_BYTE:
		v[x] += kk

	// ALU  |1000|Vx  |Vy  |func| Register arithmetic
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ALU:
		if err := c.alu(opcode, x, y, n); err != nil {
			return err
		}

	// SNE  |1001|Vx  |Vy  |0000| Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNE_REG:
		if n != 0 {
			return c.fault(ErrUnknownOpcode, opcode)
		}

		if v[x] != v[y] {
			st.Program += 2
		}

	// LD   |1010|addr          | I = addr
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD_I:
		st.Address = addr

	// JP   |1011|addr          | Jump to addr + V0
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP_V0:
		st.Program = addr + uint16(v[0])
		return nil

	// RND  |1100|Vx  |byte     | Vx = random & byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RND:
		if c.random == nil {
			c.random = random.New()
		}

		v[x] = c.random.Uint8() & kk

	// DRW  |1101|Vx  |Vy  |n   | Draw n sprite rows from I at (Vx, Vy)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_DRW:
		c.draw(v[x], v[y], n)

	// SKP  |1110|Vx  |1001|1110| Skip if key Vx pressed
	// SKNP |1110|Vx  |1010|0001| Skip if key Vx not pressed
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SKP:
		switch kk {
		case 0x9E:
			if c.pressed(v[x]) {
				st.Program += 2
			}

		case 0xA1:
			if !c.pressed(v[x]) {
				st.Program += 2
			}

		default:
			return c.fault(ErrUnknownOpcode, opcode)
		}

	// MISC |1111|Vx  |func     | Timers, keypad, I and memory transfer
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_MISC:
		switch kk {
		case 0x07:
			v[x] = st.Delay

		case 0x0A:
			key, ok := c.keypad.PressedKey()

			if !ok {
				// Retried on the next instruction slot until a key is down
				return nil
			}

			v[x] = key

		case 0x15:
			st.Delay = v[x]

		case 0x18:
			st.Sound = v[x]

			if st.Sound > 0 {
				c.audio.Start()
			}

		case 0x1E:
			st.Address += uint16(v[x])

		case 0x29:
			st.Address = MEMSPACE_FONT + uint16(v[x])*GLYPH_SIZE

		case 0x33:
			value := v[x]
			c.write(st.Address, value/100)
			c.write(st.Address+1, value%100/10)
			c.write(st.Address+2, value%100%10)

		case 0x55:
			for i := uint16(0); i <= uint16(x); i++ {
				c.write(st.Address+i, v[i])
			}

		case 0x65:
			for i := uint16(0); i <= uint16(x); i++ {
				v[i] = c.read(st.Address + i)
			}

		default:
			return c.fault(ErrUnknownOpcode, opcode)
		}
	}

	st.Program += 2
	return nil
}

func (c *cpu) alu(opcode uint16, x, y, fn uint8) error {
	v := &c.st.Registers

	switch fn {
	case 0x0:
		v[x] = v[y]

	case 0x1:
		v[x] |= v[y]

	case 0x2:
		v[x] &= v[y]

	case 0x3:
		v[x] ^= v[y]

	case 0x4:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REG_FLAG] = uint8(sum >> 8)

	// VF is the inverted borrow: 1 when no borrow occurred
	case 0x5:
		borrow := v[x] < v[y]
		v[x] -= v[y]
		v[REG_FLAG] = flag(!borrow)

	case 0x6:
		lsb := v[x] & 0x1
		v[x] >>= 1
		v[REG_FLAG] = lsb

	case 0x7:
		borrow := v[y] < v[x]
		v[x] = v[y] - v[x]
		v[REG_FLAG] = flag(!borrow)

	case 0xE:
		msb := v[x] >> 7
		v[x] <<= 1
		v[REG_FLAG] = msb

	default:
		return c.fault(ErrUnknownOpcode, opcode)
	}

	return nil
}

// draw XORs a sprite onto the display. Rows below the display are clipped,
// columns wrap around within the row. VF reports whether any lit pixel was
// erased.
func (c *cpu) draw(x, y, rows uint8) {
	st := c.st

	st.Registers[REG_FLAG] = 0

	for i := uint16(0); i < uint16(rows); i++ {
		row := uint16(y) + i

		if row >= DISPLAY_HEIGHT {
			break
		}

		sprite := []uint8{c.read(st.Address + i)}
		bits := bitplane.NewReader(sprite)

		cursor := bitplane.NewCursor(st.Display[row][:])
		cursor.Skip(int(x))

		for {
			lit, ok := bits.Next()

			if !ok {
				break
			}

			if lit && cursor.Toggle() {
				st.Registers[REG_FLAG] = 1
			}

			cursor.Advance()
		}
	}
}

func flag(set bool) uint8 {
	if set {
		return 1
	}

	return 0
}
