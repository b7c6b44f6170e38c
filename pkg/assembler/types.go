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
	"strings"
)

type LiteralType uint
type TokenType uint
type InstructionType uint
type DirectiveType uint
type OperandType uint

type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

type Token struct {
	Type     TokenType
	Position Cursor
	Value    string
}

// SymTable maps assembled addresses back to their source. Symbols holds the
// byte offset of the line that produced each address.
type SymTable struct {
	Source  string
	Symbols map[uint16]int64
	Labels  map[uint16]string
}

func NewSymTable(source string) *SymTable {
	return &SymTable{
		Source:  source,
		Symbols: make(map[uint16]int64),
		Labels:  make(map[uint16]string),
	}
}

// TokenError is implemented by every error the assembler reports against a
// position in the source.
type TokenError interface {
	error
	GetPosition() Cursor
}

func (c Cursor) GetPosition() Cursor {
	return c
}

func (c Cursor) String() string {
	return fmt.Sprintf("%02d:%02d", c.Line, c.Column)
}

func (t OperandType) String() string {
	switch t {
	case OPERAND_REGISTER:
		return "Register"
	case OPERAND_I:
		return "I"
	case OPERAND_INDIRECT:
		return "[I]"
	case OPERAND_DT:
		return "DT"
	case OPERAND_ST:
		return "ST"
	case OPERAND_K:
		return "K"
	case OPERAND_F:
		return "F"
	case OPERAND_B:
		return "B"
	case OPERAND_LITERAL:
		return "Literal"
	case OPERAND_LABEL:
		return "Label"
	default:
		return "<invalid>"
	}
}

// oneOf joins names as "a", "a or b" or "a, b, or c".
func oneOf(names []string) string {
	switch count := len(names); {
	case count == 0:
		return ""
	case count == 1:
		return names[0]
	case count == 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:count-1], ", ") + ", or " + names[count-1]
	}
}

type InvalidOperandError struct {
	Cursor
	Required []OperandType
	Received OperandType
}

func (err *InvalidOperandError) Error() string {
	names := make([]string, 0, len(err.Required))

	for _, operandType := range err.Required {
		names = append(names, operandType.String())
	}

	return fmt.Sprintf(
		"%s: Invalid operand\n\twant:%s\n\thave:%s",
		err.Cursor, oneOf(names), err.Received,
	)
}

type InvalidNumArgumentsError struct {
	Cursor
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) Error() string {
	return fmt.Sprintf(
		"%s: Invalid number of operands\n\twant:%d\n\thave:%d",
		err.Cursor, err.Required, err.Received,
	)
}

// OversizedLabelError is a label that resolved past the 12-bit address
// space.
type OversizedLabelError struct {
	Cursor
	Required int64
	Received int64
}

func (err *OversizedLabelError) Error() string {
	return fmt.Sprintf(
		"%s: Label address out of range\n\twant:<=%#03x\n\thave:%#03x",
		err.Cursor, err.Required, err.Received,
	)
}

type OversizedLiteralError struct {
	Cursor
	Required any
	Received any
}

func (err *OversizedLiteralError) Error() string {
	return fmt.Sprintf(
		"%s: Literal does not fit the operand\n\twant:<=%#x\n\thave:%#x",
		err.Cursor, err.Required, err.Received,
	)
}

type InvalidLiteralError struct{ Cursor }

func (err *InvalidLiteralError) Error() string {
	return err.String() + ": Invalid numeric literal"
}

type InvalidStringError struct{ Cursor }

func (err *InvalidStringError) Error() string {
	return err.String() + ": Invalid string literal"
}

type InvalidRegisterError struct{ Cursor }

func (err *InvalidRegisterError) Error() string {
	return err.String() + ": Expected a register V0-VF"
}

// OversizedCharacterError is a string character that is not one byte wide.
type OversizedCharacterError struct{ Cursor }

func (err *OversizedCharacterError) Error() string {
	return err.String() + ": Character exceeds ASCII limit"
}

type OversizedBinaryError struct{ Cursor }

func (err *OversizedBinaryError) Error() string {
	return err.String() + ": Program does not fit between 0x200 and 0xFFF"
}

type UnexpectedCharacterError struct {
	Cursor
	Received rune
}

func (err *UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("%s: Unexpected character %q", err.Cursor, err.Received)
}

type RedeclaredLabelError struct {
	Cursor
	Received string
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf("%s: Redeclaration of label '%s'", err.Cursor, err.Received)
}

type UnknownLabelError struct {
	Cursor
	Received string
}

func (err *UnknownLabelError) Error() string {
	return fmt.Sprintf("%s: Unknown label '%s'", err.Cursor, err.Received)
}

type UnknownIdentifierError struct {
	Cursor
	Received string
}

func (err *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%s: Unknown identifier '%s'", err.Cursor, err.Received)
}
