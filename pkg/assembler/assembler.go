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
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func parseDirective(ident string) DirectiveType {
	switch strings.ToUpper(ident) {
	case ".BYTE":
		return DIRECTIVE_BYTE
	case ".WORD":
		return DIRECTIVE_WORD
	case ".BLKB":
		return DIRECTIVE_BLKB
	case ".END":
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func parseInstruction(ident string) InstructionType {
	switch strings.ToUpper(ident) {
	case "CLS":
		return INSTRUCTION_CLS
	case "RET":
		return INSTRUCTION_RET
	case "JP":
		return INSTRUCTION_JP
	case "CALL":
		return INSTRUCTION_CALL
	case "SE":
		return INSTRUCTION_SE
	case "SNE":
		return INSTRUCTION_SNE
	case "LD":
		return INSTRUCTION_LD
	case "ADD":
		return INSTRUCTION_ADD
	case "OR":
		return INSTRUCTION_OR
	case "AND":
		return INSTRUCTION_AND
	case "XOR":
		return INSTRUCTION_XOR
	case "SUB":
		return INSTRUCTION_SUB
	case "SHR":
		return INSTRUCTION_SHR
	case "SUBN":
		return INSTRUCTION_SUBN
	case "SHL":
		return INSTRUCTION_SHL
	case "RND":
		return INSTRUCTION_RND
	case "DRW":
		return INSTRUCTION_DRW
	case "SKP":
		return INSTRUCTION_SKP
	case "SKNP":
		return INSTRUCTION_SKNP
	}

	return INSTRUCTION_INVALID
}

// Hex literals ($2A, 0x2A) are unsigned. Decimal literals (42, #42, #-1) may
// be negative and are stored as two's complement in the field width.
func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	mask := uint16((uint32(1) << bits) - 1)

	if strings.HasPrefix(token.Value, "$") ||
		strings.ContainsAny(token.Value, "xX") {
		result, err := encoding.DecodeHex(token.Value)

		if err != nil {
			return 0, &InvalidLiteralError{token.Position}
		}

		if result > mask {
			return 0, &OversizedLiteralError{token.Position, mask, result}
		}

		return result, nil
	}

	result, err := encoding.DecodeInt(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	low := -(int32(1) << (bits - 1))

	if int32(result) < low || int32(result) > int32(mask) {
		return 0, &OversizedLiteralError{token.Position, mask, result}
	}

	return uint16(result) & mask, nil
}

func parseRegister(token *Token) (uint16, bool) {
	ident := token.Value

	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	reg, err := strconv.ParseUint(ident[1:], 16, 8)

	if err != nil {
		return 0, false
	}

	return uint16(reg), true
}

func parseOperand(token *Token) OperandType {
	switch token.Type {
	case TOKEN_LITERAL:
		return OPERAND_LITERAL
	case TOKEN_IDENT:
	default:
		return OPERAND_NONE
	}

	if _, ok := parseRegister(token); ok {
		return OPERAND_REGISTER
	}

	switch strings.ToUpper(token.Value) {
	case "I":
		return OPERAND_I
	case "[I]":
		return OPERAND_INDIRECT
	case "DT":
		return OPERAND_DT
	case "ST":
		return OPERAND_ST
	case "K":
		return OPERAND_K
	case "F":
		return OPERAND_F
	case "B":
		return OPERAND_B
	}

	return OPERAND_LABEL
}

type labelRef struct {
	Label    string
	Addr     uint16
	Size     LiteralType
	Position Cursor
}

type assembly struct {
	memory  [machine.MEMORY_SIZE]byte
	program uint32
	end     uint32
	labels  map[string]uint16
	refs    []labelRef
	errs    []error
}

func (asm *assembly) fail(err error) {
	asm.errs = append(asm.errs, err)
}

// Writes bytes at the program counter. Returns false once program memory is
// exhausted.
func (asm *assembly) emit(position Cursor, values ...byte) bool {
	for _, value := range values {
		if asm.program >= machine.MEMORY_SIZE {
			asm.fail(&OversizedBinaryError{position})
			return false
		}

		asm.memory[asm.program] = value
		asm.program++
	}

	asm.end = max(asm.end, asm.program)
	return true
}

func (asm *assembly) arguments(keyword *Token, operands []Token, counts ...int) bool {
	for _, count := range counts {
		if len(operands) == count {
			return true
		}
	}

	asm.fail(&InvalidNumArgumentsError{keyword.Position, counts[0], len(operands)})
	return false
}

func (asm *assembly) operand(token *Token, allowed ...OperandType) OperandType {
	kind := parseOperand(token)

	for _, want := range allowed {
		if kind == want {
			return kind
		}
	}

	asm.fail(&InvalidOperandError{token.Position, allowed, kind})
	return OPERAND_NONE
}

func (asm *assembly) register(token *Token) uint16 {
	if asm.operand(token, OPERAND_REGISTER) == OPERAND_NONE {
		return 0
	}

	reg, _ := parseRegister(token)
	return reg
}

func (asm *assembly) literal(token *Token, bits LiteralType) uint16 {
	if asm.operand(token, OPERAND_LITERAL) == OPERAND_NONE {
		return 0
	}

	literal, err := parseLiteral(token, bits)

	if err != nil {
		asm.fail(err)
	}

	return literal
}

// Address operands are either literals or labels patched in once every label
// is known
func (asm *assembly) address(token *Token, size LiteralType) uint16 {
	switch asm.operand(token, OPERAND_LITERAL, OPERAND_LABEL) {
	case OPERAND_LITERAL:
		return asm.literal(token, size)

	case OPERAND_LABEL:
		asm.refs = append(
			asm.refs,
			labelRef{token.Value, uint16(asm.program), size, token.Position},
		)
	}

	return 0
}

// AssembleChip8Source assembles source text into a program image meant to be
// loaded at machine.MEMSPACE_PROGRAM. The image is only usable when errs is
// empty.
func AssembleChip8Source(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	asm := assembly{
		program: machine.MEMSPACE_PROGRAM,
		end:     machine.MEMSPACE_PROGRAM,
		labels:  make(map[string]uint16),
	}

	var builder strings.Builder
	var scanner = bufio.NewScanner(input)

	var cursor = Cursor{Line: 1}

	defer func() {
		result = append([]byte(nil), asm.memory[machine.MEMSPACE_PROGRAM:asm.end]...)
		errs = asm.errs
	}()

	for scanner.Scan() {
		var tokens = make([]Token, 0, 5)
		var tokenStart int
		var tokenType TokenType = TOKEN_NONE
		var escaped bool

		var lineErrs = len(asm.errs)

		line := scanner.Text()
		cursor.Size = int64(len(line))

		flush := func() {
			if builder.Len() > 0 {
				tokens = append(tokens, Token{
					Type: tokenType,
					Position: Cursor{
						Line:     cursor.Line,
						Column:   tokenStart,
						Byte:     cursor.Byte + int64(tokenStart-1),
						Size:     int64(builder.Len()),
						LineByte: cursor.LineByte,
					},
					Value: builder.String(),
				})
				builder.Reset()
			}

			tokenType = TOKEN_NONE
		}

		// Parse Line:
		// - Gather tokens and their types
		// - Check for syntax errors
	scan:
		for column, char := range line {
			cursor.Column = column + 1

			if tokenType == TOKEN_NONE {
				tokenStart = cursor.Column
			}

			if char > unicode.MaxASCII {
				asm.fail(&OversizedCharacterError{cursor})
				continue
			}

			if tokenType == TOKEN_STRING {
				builder.WriteRune(char)

				if char == '"' && !escaped {
					flush()
				}

				escaped = char == '\\' && !escaped
				continue
			}

			switch {
			// Whitespace
			case unicode.IsSpace(char):
				flush()

			// Comments
			case char == ';':
				flush()
				break scan

			// Operand Separator
			case char == ',':
				flush()

			// Label Terminator
			case char == ':':
				if tokenType != TOKEN_IDENT || len(tokens) > 0 {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				} else {
					tokenType = TOKEN_LABEL
				}

				flush()

			// Assembler Directives
			case char == '.':
				if tokenType != TOKEN_NONE {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				}

				tokenType = TOKEN_DIRECTIVE
				builder.WriteRune(char)

			// Literal Prefixes (i.e. $2A, #42)
			case char == '$' || char == '#':
				if tokenType != TOKEN_NONE {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				}

				tokenType = TOKEN_LITERAL
				builder.WriteRune(char)

			// String Literal
			case char == '"':
				if tokenType != TOKEN_NONE {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				}

				tokenType = TOKEN_STRING
				escaped = false
				builder.WriteRune(char)

			// Indirect Operand (i.e. [I])
			case char == '[' || char == ']':
				if tokenType == TOKEN_NONE && char == '[' {
					tokenType = TOKEN_IDENT
				} else if tokenType != TOKEN_IDENT {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				}

				builder.WriteRune(char)

			// Numeric Literal
			case unicode.IsDigit(char):
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

				builder.WriteRune(char)

			// Numeric Sign
			case char == '-':
				if tokenType != TOKEN_LITERAL {
					asm.fail(&UnexpectedCharacterError{cursor, char})
				}

				builder.WriteRune(char)

			// Identifier
			case unicode.IsLetter(char) || char == '_':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				}

				builder.WriteRune(char)

			default:
				asm.fail(&UnexpectedCharacterError{cursor, char})
			}
		}

		if tokenType == TOKEN_STRING {
			asm.fail(&InvalidStringError{cursor})
			builder.Reset()
			tokenType = TOKEN_NONE
		}

		flush()

		next := func() {
			cursor.Line++
			cursor.Byte += int64(len(line) + 1)
			cursor.LineByte += int64(len(line) + 1)
		}

		// Pass any potential assembler errors if we already had parser errors
		if len(tokens) == 0 || len(asm.errs) > lineErrs {
			next()
			continue
		}

		// Assemble line
		// - Write instruction bytes to memory
		// - Save label refs for unknown labels
		// - Type check instruction arguments
		var label *Token
		var directive DirectiveType
		var instruction InstructionType
		var keyword *Token
		var operands []Token

		classify := func(index int) {
			if index >= len(tokens) {
				return
			}

			if instruction = parseInstruction(tokens[index].Value); instruction != INSTRUCTION_INVALID {
				keyword = &tokens[index]
			} else if directive = parseDirective(tokens[index].Value); directive != DIRECTIVE_INVALID {
				keyword = &tokens[index]
			} else {
				return
			}

			operands = tokens[index+1:]
		}

		// A terminated label may share its name with a mnemonic
		if tokens[0].Type != TOKEN_LABEL {
			classify(0)
		}

		if keyword == nil && (tokens[0].Type == TOKEN_IDENT || tokens[0].Type == TOKEN_LABEL) {
			label = &tokens[0]

			if _, exists := asm.labels[label.Value]; !exists {
				asm.labels[label.Value] = uint16(asm.program)
			} else {
				asm.fail(&RedeclaredLabelError{label.Position, label.Value})
			}

			// No need to assemble label-only statements
			if len(tokens) == 1 {
				next()
				continue
			}

			classify(1)
		}

		if keyword == nil {
			asm.fail(&UnknownIdentifierError{tokens[0].Position, tokens[0].Value})
			next()
			continue
		}

		if directive == DIRECTIVE_END {
			asm.arguments(keyword, operands, 0)
			break
		}

		if symtable != nil {
			symtable.Symbols[uint16(asm.program)] = cursor.LineByte
		}

		var ok bool

		if instruction != INSTRUCTION_INVALID {
			opcode := asm.instruction(instruction, keyword, operands)
			ok = asm.emit(keyword.Position, uint8(opcode>>8), uint8(opcode))
		} else {
			ok = asm.directive(directive, keyword, operands)
		}

		if !ok {
			return
		}

		next()
	}

	if err := scanner.Err(); err != nil {
		asm.fail(err)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range asm.refs {
		addr, exists := asm.labels[ref.Label]

		if !exists {
			asm.fail(&UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if ref.Size == LITERAL_WORD {
			asm.memory[ref.Addr] = uint8(addr >> 8)
			asm.memory[ref.Addr+1] = uint8(addr)
			continue
		}

		if addr > machine.MEMORY_MASK {
			asm.fail(&OversizedLabelError{ref.Position, machine.MEMORY_MASK, int64(addr)})
			continue
		}

		asm.memory[ref.Addr] |= uint8(addr >> 8)
		asm.memory[ref.Addr+1] = uint8(addr)
	}

	if symtable != nil {
		for label, addr := range asm.labels {
			symtable.Labels[addr] = label
		}
	}

	return
}

func (asm *assembly) directive(directive DirectiveType, keyword *Token, operands []Token) bool {
	switch directive {
	// .BYTE #, "...", ...
	case DIRECTIVE_BYTE:
		if len(operands) == 0 {
			asm.fail(&InvalidNumArgumentsError{keyword.Position, 1, 0})
			return true
		}

		for i := range operands {
			if operands[i].Type != TOKEN_STRING {
				if !asm.emit(keyword.Position, uint8(asm.literal(&operands[i], LITERAL_BYTE))) {
					return false
				}

				continue
			}

			s, err := strconv.Unquote(operands[i].Value)

			if err != nil {
				asm.fail(&InvalidStringError{operands[i].Position})
			}

			if !asm.emit(keyword.Position, []byte(s)...) {
				return false
			}
		}

	// .WORD #, label, ...
	case DIRECTIVE_WORD:
		if len(operands) == 0 {
			asm.fail(&InvalidNumArgumentsError{keyword.Position, 1, 0})
			return true
		}

		for i := range operands {
			word := asm.address(&operands[i], LITERAL_WORD)

			if !asm.emit(keyword.Position, uint8(word>>8), uint8(word)) {
				return false
			}
		}

	// .BLKB #
	case DIRECTIVE_BLKB:
		if !asm.arguments(keyword, operands, 1) {
			return true
		}

		count := asm.literal(&operands[0], LITERAL_WORD)

		if asm.program+uint32(count) > machine.MEMORY_SIZE {
			asm.fail(&OversizedBinaryError{keyword.Position})
			return false
		}

		asm.program += uint32(count)
		asm.end = max(asm.end, asm.program)
	}

	return true
}

func (asm *assembly) instruction(instruction InstructionType, keyword *Token, operands []Token) uint16 {
	switch instruction {
	// CLS  |0000|0000|1110|0000| Clear display
	// RET  |0000|0000|1110|1110| Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CLS, INSTRUCTION_RET:
		asm.arguments(keyword, operands, 0)

		if instruction == INSTRUCTION_CLS {
			return 0x00E0
		}

		return 0x00EE

	// JP   |0001|addr          | Jump
	// JP   |1011|addr          | Jump to addr + V0
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_JP:
		if !asm.arguments(keyword, operands, 1, 2) {
			return 0
		}

		if len(operands) == 1 {
			return 0x1000 | asm.address(&operands[0], LITERAL_ADDR)
		}

		if asm.register(&operands[0]) != 0 {
			asm.fail(&InvalidRegisterError{operands[0].Position})
		}

		return 0xB000 | asm.address(&operands[1], LITERAL_ADDR)

	// CALL |0010|addr          | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_CALL:
		if !asm.arguments(keyword, operands, 1) {
			return 0
		}

		return 0x2000 | asm.address(&operands[0], LITERAL_ADDR)

	// SE   |0011|Vx  |byte     | Skip if Vx == byte
	// SE   |0101|Vx  |Vy  |0000| Skip if Vx == Vy
	// SNE  |0100|Vx  |byte     | Skip if Vx != byte
	// SNE  |1001|Vx  |Vy  |0000| Skip if Vx != Vy
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SE, INSTRUCTION_SNE:
		if !asm.arguments(keyword, operands, 2) {
			return 0
		}

		x := asm.register(&operands[0])

		switch asm.operand(&operands[1], OPERAND_REGISTER, OPERAND_LITERAL) {
		case OPERAND_REGISTER:
			y := asm.register(&operands[1])

			if instruction == INSTRUCTION_SE {
				return 0x5000 | x<<8 | y<<4
			}

			return 0x9000 | x<<8 | y<<4

		case OPERAND_LITERAL:
			kk := asm.literal(&operands[1], LITERAL_BYTE)

			if instruction == INSTRUCTION_SE {
				return 0x3000 | x<<8 | kk
			}

			return 0x4000 | x<<8 | kk
		}

	// LD   |0110|Vx  |byte     | Vx = byte
	// LD   |1000|Vx  |Vy  |0000| Vx = Vy
	// LD   |1010|addr          | I = addr
	// LD   |1111|Vx  |func     | Timers, keypad, I and memory transfer
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_LD:
		if !asm.arguments(keyword, operands, 2) {
			return 0
		}

		target := asm.operand(
			&operands[0],
			OPERAND_REGISTER,
			OPERAND_I,
			OPERAND_INDIRECT,
			OPERAND_DT,
			OPERAND_ST,
			OPERAND_F,
			OPERAND_B,
		)

		switch target {
		case OPERAND_I:
			return 0xA000 | asm.address(&operands[1], LITERAL_ADDR)
		case OPERAND_INDIRECT:
			return 0xF055 | asm.register(&operands[1])<<8
		case OPERAND_DT:
			return 0xF015 | asm.register(&operands[1])<<8
		case OPERAND_ST:
			return 0xF018 | asm.register(&operands[1])<<8
		case OPERAND_F:
			return 0xF029 | asm.register(&operands[1])<<8
		case OPERAND_B:
			return 0xF033 | asm.register(&operands[1])<<8
		case OPERAND_NONE:
			return 0
		}

		x := asm.register(&operands[0])

		source := asm.operand(
			&operands[1],
			OPERAND_REGISTER,
			OPERAND_LITERAL,
			OPERAND_DT,
			OPERAND_K,
			OPERAND_INDIRECT,
		)

		switch source {
		case OPERAND_REGISTER:
			return 0x8000 | x<<8 | asm.register(&operands[1])<<4
		case OPERAND_LITERAL:
			return 0x6000 | x<<8 | asm.literal(&operands[1], LITERAL_BYTE)
		case OPERAND_DT:
			return 0xF007 | x<<8
		case OPERAND_K:
			return 0xF00A | x<<8
		case OPERAND_INDIRECT:
			return 0xF065 | x<<8
		}

	// ADD  |0111|Vx  |byte     | Vx += byte
	// ADD  |1000|Vx  |Vy  |0100| Vx += Vy, VF = carry
	// ADD  |1111|Vx  |0001|1110| I += Vx
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_ADD:
		if !asm.arguments(keyword, operands, 2) {
			return 0
		}

		switch asm.operand(&operands[0], OPERAND_REGISTER, OPERAND_I) {
		case OPERAND_I:
			return 0xF01E | asm.register(&operands[1])<<8
		case OPERAND_NONE:
			return 0
		}

		x := asm.register(&operands[0])

		switch asm.operand(&operands[1], OPERAND_REGISTER, OPERAND_LITERAL) {
		case OPERAND_REGISTER:
			return 0x8004 | x<<8 | asm.register(&operands[1])<<4
		case OPERAND_LITERAL:
			return 0x7000 | x<<8 | asm.literal(&operands[1], LITERAL_BYTE)
		}

	// OR   |1000|Vx  |Vy  |0001| Vx |= Vy
	// AND  |1000|Vx  |Vy  |0010| Vx &= Vy
	// XOR  |1000|Vx  |Vy  |0011| Vx ^= Vy
	// SUB  |1000|Vx  |Vy  |0101| Vx -= Vy, VF = !borrow
	// SUBN |1000|Vx  |Vy  |0111| Vx = Vy - Vx, VF = !borrow
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_OR,
		INSTRUCTION_AND,
		INSTRUCTION_XOR,
		INSTRUCTION_SUB,
		INSTRUCTION_SUBN:
		if !asm.arguments(keyword, operands, 2) {
			return 0
		}

		var fn uint16

		switch instruction {
		case INSTRUCTION_OR:
			fn = 0x1
		case INSTRUCTION_AND:
			fn = 0x2
		case INSTRUCTION_XOR:
			fn = 0x3
		case INSTRUCTION_SUB:
			fn = 0x5
		case INSTRUCTION_SUBN:
			fn = 0x7
		}

		x := asm.register(&operands[0])
		y := asm.register(&operands[1])

		return 0x8000 | x<<8 | y<<4 | fn

	// SHR  |1000|Vx  |Vy  |0110| Vx >>= 1, VF = lsb
	// SHL  |1000|Vx  |Vy  |1110| Vx <<= 1, VF = msb
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SHR, INSTRUCTION_SHL:
		if !asm.arguments(keyword, operands, 1, 2) {
			return 0
		}

		scratch := uint16(0x8006)
		if instruction == INSTRUCTION_SHL {
			scratch = 0x800E
		}

		scratch |= asm.register(&operands[0]) << 8

		// Vy is ignored by the interpreter but kept in the encoding
		if len(operands) == 2 {
			scratch |= asm.register(&operands[1]) << 4
		}

		return scratch

	// RND  |1100|Vx  |byte     | Vx = random & byte
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_RND:
		if !asm.arguments(keyword, operands, 2) {
			return 0
		}

		x := asm.register(&operands[0])
		return 0xC000 | x<<8 | asm.literal(&operands[1], LITERAL_BYTE)

	// DRW  |1101|Vx  |Vy  |n   | Draw n sprite rows from I at (Vx, Vy)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_DRW:
		if !asm.arguments(keyword, operands, 3) {
			return 0
		}

		x := asm.register(&operands[0])
		y := asm.register(&operands[1])
		n := asm.literal(&operands[2], LITERAL_NIBBLE)

		return 0xD000 | x<<8 | y<<4 | n

	// SKP  |1110|Vx  |1001|1110| Skip if key Vx pressed
	// SKNP |1110|Vx  |1010|0001| Skip if key Vx not pressed
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case INSTRUCTION_SKP, INSTRUCTION_SKNP:
		if !asm.arguments(keyword, operands, 1) {
			return 0
		}

		x := asm.register(&operands[0])

		if instruction == INSTRUCTION_SKP {
			return 0xE09E | x<<8
		}

		return 0xE0A1 | x<<8
	}

	return 0
}
