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

const (
	MEMORY_SIZE      = 0x1000
	MEMORY_MASK      = MEMORY_SIZE - 1
	MEMSPACE_FONT    = 0x000
	MEMSPACE_PROGRAM = 0x200
	PROGRAM_CAPACITY = MEMORY_SIZE - MEMSPACE_PROGRAM
)

const (
	REGISTER_COUNT = 16
	REG_FLAG       = 0xF
	STACK_LIMIT    = 16
)

const (
	DISPLAY_WIDTH     = 64
	DISPLAY_HEIGHT    = 32
	DISPLAY_ROW_BYTES = DISPLAY_WIDTH / 8
	SPRITE_WIDTH      = 8
)

const (
	// Instructions executed per timer tick (one 60Hz frame)
	TICK_INSTRUCTIONS = 11
	TICK_RATE         = 60
)

const (
	KEY_COUNT  = 16
	GLYPH_SIZE = 5
)

const (
	OP_SYS      uint8 = 0x0
	OP_JP       uint8 = 0x1
	OP_CALL     uint8 = 0x2
	OP_SE_BYTE  uint8 = 0x3
	OP_SNE_BYTE uint8 = 0x4
	OP_SE_REG   uint8 = 0x5
	OP_LD_BYTE  uint8 = 0x6
	OP_ADD_BYTE uint8 = 0x7
	OP_ALU      uint8 = 0x8
	OP_SNE_REG  uint8 = 0x9
	OP_LD_I     uint8 = 0xA
	OP_JP_V0    uint8 = 0xB
	OP_RND      uint8 = 0xC
	OP_DRW      uint8 = 0xD
	OP_SKP      uint8 = 0xE
	OP_MISC     uint8 = 0xF
)

// Hex digit glyphs 0-F, 5 rows of 4 pixels each
var FONT = [GLYPH_SIZE * 16]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
