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
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")

	ErrBadState        = errors.New("machine has no running program")
	ErrProgramTooLarge = errors.New("program exceeds memory")
	ErrBadSnapshot     = errors.New("invalid snapshot")
)

// Fault is an engine error raised while executing the instruction at
// Program. Kind is one of the engine sentinel errors.
type Fault struct {
	Kind    error
	Program uint16
	Opcode  uint16
}

func (err *Fault) Error() string {
	return fmt.Sprintf("%s %#04x at %#03x", err.Kind, err.Opcode, err.Program)
}

func (err *Fault) Unwrap() error {
	return err.Kind
}

type ProgramSizeError struct {
	Capacity int
}

func (err *ProgramSizeError) Error() string {
	return fmt.Sprintf("%s: more than %d bytes", ErrProgramTooLarge, err.Capacity)
}

func (err *ProgramSizeError) Unwrap() error {
	return ErrProgramTooLarge
}
