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

package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) Step(st *machine.State) {
	if dbg.HandleBreak == nil {
		return
	}

	if dbg.Break.Load() {
		dbg.HandleBreak(dbg, st)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if st.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, st)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, st *machine.State) {
	if dbg.HandleRead == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, st)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, st *machine.State) {
	if dbg.HandleWrite == nil {
		return
	}

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, st)
			break
		}
	}
}

// AddBreakpoint reports whether addr was not already a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	addr &= machine.MEMORY_MASK

	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{Addr: addr})
	return true
}

// AddWatchpoint reports whether the watchpoint was not already set.
func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	addr &= machine.MEMORY_MASK

	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})
	return true
}

// Resolve turns a hex literal or a label from the symbol table into an
// address.
func (dbg *Debugger) Resolve(arg string) (uint16, error) {
	if addr, err := encoding.DecodeHex(arg); err == nil {
		return addr & machine.MEMORY_MASK, nil
	}

	if dbg.SymTable == nil {
		return 0, fmt.Errorf("'%s' is not an address and no symbol table is loaded", arg)
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == arg {
			return addr, nil
		}
	}

	return 0, fmt.Errorf("unable to find '%s'", arg)
}

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	w := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(w, "No instruction found at %#03x\n", addr)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			if lineaddr == addr {
				fmt.Fprintf(w, "\033[1m[%#03x]\033[0m ", lineaddr)
			} else {
				fmt.Fprintf(w, "[%#03x] ", lineaddr)
			}
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(w, err)
	}
}

func (dbg *Debugger) PrintMem(st *machine.State, addr, count uint16) {
	w := dbg.out()

	for i := uint16(0); i < count; i++ {
		at := (addr + i) & machine.MEMORY_MASK

		if i == 0 {
			fmt.Fprintf(w, "\033[1m[%#03x]\033[0m ", at)
		} else if i%8 == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "\033[1m[%#03x]\033[0m ", at)
		}

		result := st.Memory[at]

		if result == 0 {
			fmt.Fprintf(w, "\033[1;30m%02X\033[0m ", result)
		} else {
			fmt.Fprintf(w, "%02X ", result)
		}
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) PrintRegisters(st *machine.State) {
	w := dbg.out()

	for i, register := range st.Registers {
		fmt.Fprintf(w, "\033[1mV%X:\033[0m %#02x\t", i, register)
		if i%8 == 7 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(
		w,
		"\033[1mPC:\033[0m %#03x\t\033[1mI:\033[0m %#03x\t"+
			"\033[1mDT:\033[0m %#02x\t\033[1mST:\033[0m %#02x\t"+
			"\033[1mSP:\033[0m %d\n",
		st.Program,
		st.Address,
		st.Delay,
		st.Sound,
		len(st.Stack),
	)
}

func (dbg *Debugger) PrintStack(st *machine.State) {
	w := dbg.out()

	if len(st.Stack) == 0 {
		fmt.Fprintln(w, "Stack is empty")
		return
	}

	for i := len(st.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "#%02d: %#03x", i, st.Stack[i])

		// Return addresses point past the CALL
		if dbg.SymTable != nil && st.Stack[i] >= 2 {
			if label, ok := dbg.SymTable.Labels[st.Stack[i]-2]; ok {
				fmt.Fprintf(w, " \033[1;30m(%s)\033[0m", label)
			}
		}

		fmt.Fprintln(w)
	}
}

// PrintDisassembly lists count instructions starting at addr, marking the
// one the program counter points at.
func (dbg *Debugger) PrintDisassembly(st *machine.State, addr, count uint16) {
	w := dbg.out()

	for i := uint16(0); i < count; i++ {
		at := (addr + 2*i) & machine.MEMORY_MASK
		opcode := encoding.Word(
			st.Memory[at], st.Memory[(at+1)&machine.MEMORY_MASK],
		)

		marker := " "
		if at == st.Program {
			marker = ">"
		}

		if dbg.SymTable != nil {
			if label, ok := dbg.SymTable.Labels[at]; ok {
				fmt.Fprintf(w, "  \033[1;30m%s:\033[0m\n", label)
			}
		}

		fmt.Fprintf(
			w, "%s \033[1m[%#03x]\033[0m %04X  %s\n",
			marker, at, opcode, assembler.Disassemble(opcode),
		)
	}
}

// PrintDisplay draws the framebuffer with one character per pixel.
func (dbg *Debugger) PrintDisplay(st *machine.State) {
	w := dbg.out()

	border := "+" + strings.Repeat("-", machine.DISPLAY_WIDTH) + "+"
	fmt.Fprintln(w, border)

	var row strings.Builder

	for y := 0; y < machine.DISPLAY_HEIGHT; y++ {
		row.Reset()
		row.WriteByte('|')

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			if st.Pixel(x, y) {
				row.WriteByte('#')
			} else {
				row.WriteByte(' ')
			}
		}

		row.WriteByte('|')
		fmt.Fprintln(w, row.String())
	}

	fmt.Fprintln(w, border)
}

// PrintFault describes why the machine stopped. st is the state frozen at
// the failing instruction.
func (dbg *Debugger) PrintFault(err error, st *machine.State) {
	w := dbg.out()

	fmt.Fprintf(w, "\033[1;31mMachine faulted:\033[0m %s\n", err)

	var fault *machine.Fault
	if errors.As(err, &fault) {
		switch {
		case errors.Is(fault, machine.ErrUnknownOpcode):
			fmt.Fprintf(w, "Opcode %04X is not an instruction\n", fault.Opcode)
		case errors.Is(fault, machine.ErrStackUnderflow):
			fmt.Fprintln(w, "Returned with an empty stack")
		case errors.Is(fault, machine.ErrStackOverflow):
			fmt.Fprintf(w, "Called past %d nested subroutines\n", machine.STACK_LIMIT)
		}
	}

	if st == nil {
		return
	}

	dbg.PrintDisassembly(st, st.Program, 1)
	dbg.PrintRegisters(st)
	dbg.PrintStack(st)
}
