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

package assembler

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Disassemble renders one opcode as a line the assembler accepts. Opcodes the
// interpreter rejects come out as a .word directive.
func Disassemble(opcode uint16) string {
	op, x, y, n := encoding.Nibbles(opcode)
	kk := opcode & 0xFF
	addr := opcode & 0xFFF

	switch op {
	case machine.OP_SYS:
		switch opcode {
		case 0x00E0:
			return "cls"
		case 0x00EE:
			return "ret"
		}

	case machine.OP_JP:
		return fmt.Sprintf("jp $%03X", addr)

	case machine.OP_CALL:
		return fmt.Sprintf("call $%03X", addr)

	case machine.OP_SE_BYTE:
		return fmt.Sprintf("se V%X, $%02X", x, kk)

	case machine.OP_SNE_BYTE:
		return fmt.Sprintf("sne V%X, $%02X", x, kk)

	case machine.OP_SE_REG:
		if n == 0 {
			return fmt.Sprintf("se V%X, V%X", x, y)
		}

	case machine.OP_LD_BYTE:
		return fmt.Sprintf("ld V%X, $%02X", x, kk)

	case machine.OP_ADD_BYTE:
		return fmt.Sprintf("add V%X, $%02X", x, kk)

	case machine.OP_ALU:
		var name string

		switch n {
		case 0x0:
			name = "ld"
		case 0x1:
			name = "or"
		case 0x2:
			name = "and"
		case 0x3:
			name = "xor"
		case 0x4:
			name = "add"
		case 0x5:
			name = "sub"
		case 0x7:
			name = "subn"
		case 0x6, 0xE:
			name = "shr"
			if n == 0xE {
				name = "shl"
			}

			if y == 0 {
				return fmt.Sprintf("%s V%X", name, x)
			}
		}

		if name != "" {
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}

	case machine.OP_SNE_REG:
		if n == 0 {
			return fmt.Sprintf("sne V%X, V%X", x, y)
		}

	case machine.OP_LD_I:
		return fmt.Sprintf("ld I, $%03X", addr)

	case machine.OP_JP_V0:
		return fmt.Sprintf("jp V0, $%03X", addr)

	case machine.OP_RND:
		return fmt.Sprintf("rnd V%X, $%02X", x, kk)

	case machine.OP_DRW:
		return fmt.Sprintf("drw V%X, V%X, $%X", x, y, n)

	case machine.OP_SKP:
		switch kk {
		case 0x9E:
			return fmt.Sprintf("skp V%X", x)
		case 0xA1:
			return fmt.Sprintf("sknp V%X", x)
		}

	case machine.OP_MISC:
		switch kk {
		case 0x07:
			return fmt.Sprintf("ld V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("ld V%X, K", x)
		case 0x15:
			return fmt.Sprintf("ld DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("ld ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("add I, V%X", x)
		case 0x29:
			return fmt.Sprintf("ld F, V%X", x)
		case 0x33:
			return fmt.Sprintf("ld B, V%X", x)
		case 0x55:
			return fmt.Sprintf("ld [I], V%X", x)
		case 0x65:
			return fmt.Sprintf("ld V%X, [I]", x)
		}
	}

	return fmt.Sprintf(".word $%04X", opcode)
}
