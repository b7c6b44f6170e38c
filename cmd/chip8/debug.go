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


package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

const debugHelp = `break    [add|list|remove|clear]   Program counter breakpoints
watch    [add|list|remove|clear]   Memory watchpoints
register [V#|I|PC|DT|ST] [0x##]    Show or set registers
memory   [0x###|label] [#]         Dump memory
set      [0x###] [0x##]            Write a memory byte
disasm   [0x###|label] [#]         Disassemble memory
source   [0x###|label] [#]         Show assembly source
labels                             List symbol table labels
stack                              Show return addresses
display                            Draw the framebuffer
jump     [0x###|label]             Move the program counter
save     [file]                    Write a snapshot
restore  [file]                    Resume from a snapshot
next | continue | reset | clear | quit`

func debugError(err any) {
	fmt.Printf("\033[31merror:\033[0m %v\n", err)
}

// countArg parses a decimal count, falling back to def when absent.
func countArg(args []string, i int, def uint16) (uint16, bool) {
	if len(args) <= i {
		return def, true
	}

	value, err := strconv.ParseUint(args[i], 10, 16)

	if err != nil {
		debugError(err)
		return 0, false
	}

	return uint16(value), true
}

func listFormat(count int) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: %%#03x%%s\n", int64(digits)+1)
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		addr, err := dbg.Resolve(args[0])

		if err != nil {
			debugError(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#03x]\n", addr)
		}

	case "l", "ls", "list":
		fmtstring := listFormat(len(dbg.Breakpoints))

		for i, breakpoint := range dbg.Breakpoints {
			label := ""
			if dbg.SymTable != nil {
				if name, ok := dbg.SymTable.Labels[breakpoint.Addr]; ok {
					label = " (" + name + ")"
				}
			}

			fmt.Printf(fmtstring, i, breakpoint.Addr, label)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			debugError(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			debugError("invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		debugError(fmt.Sprintf("break: '%s' is not a valid command", cmd))
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|remove|clear]"

	if len(args) == 0 {
		fmt.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			fmt.Println(usage)
			return
		}

		addr, err := dbg.Resolve(args[0])

		if err != nil {
			debugError(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			fmt.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#03x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		fmtstring := listFormat(len(dbg.Watchpoints))

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, " "+watchpoint.Type.String())
		}

	case "r", "rm", "remove":
		const usage = "watch remove [#]"

		if len(args) != 1 {
			fmt.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			debugError(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			debugError("invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		debugError(fmt.Sprintf("watch: '%s' is not a valid command", cmd))
	}
}

func debugReg(dbg *debugger.Debugger, st *machine.State, args []string) {
	const usage = "register [V#|I|PC|DT|ST] [0x##]"

	if len(args) == 0 {
		dbg.PrintRegisters(st)
		return
	}

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		debugError(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch name {
	case "I":
		st.Address = value & machine.MEMORY_MASK
	case "PC":
		st.Program = value & machine.MEMORY_MASK
	case "DT":
		st.Delay = uint8(value)
	case "ST":
		st.Sound = uint8(value)
	default:
		reg, err := strconv.ParseUint(strings.TrimPrefix(name, "V"), 16, 8)

		if !strings.HasPrefix(name, "V") || err != nil || reg >= machine.REGISTER_COUNT {
			debugError("invalid register")
			return
		}

		st.Registers[reg] = uint8(value)
	}

	dbg.PrintRegisters(st)
}

// debugRange reads the [0x###|label|#] [#] arguments shared by the memory
// listing commands.
func debugRange(dbg *debugger.Debugger, st *machine.State, args []string, size uint16) (uint16, uint16, bool) {
	addr := st.Program

	if len(args) > 2 {
		return 0, 0, false
	}

	if len(args) > 0 {
		if resolved, err := dbg.Resolve(args[0]); err == nil {
			addr = resolved
		} else if value, err := strconv.ParseUint(args[0], 10, 16); err == nil {
			size = uint16(value)
		} else {
			debugError(err)
			return 0, 0, false
		}
	}

	size, ok := countArg(args, 1, size)
	return addr, size, ok
}

func debugMemory(dbg *debugger.Debugger, st *machine.State, args []string) {
	if addr, size, ok := debugRange(dbg, st, args, 8); ok {
		dbg.PrintMem(st, addr, size)
	} else {
		fmt.Println("memory [0x###|label|#] [#]")
	}
}

func debugDisasm(dbg *debugger.Debugger, st *machine.State, args []string) {
	if addr, size, ok := debugRange(dbg, st, args, 8); ok {
		dbg.PrintDisassembly(st, addr, size)
	} else {
		fmt.Println("disasm [0x###|label|#] [#]")
	}
}

func debugSource(dbg *debugger.Debugger, st *machine.State, args []string) {
	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	if addr, size, ok := debugRange(dbg, st, args, 3); ok {
		dbg.PrintSource(addr, size)
	} else {
		fmt.Println("source [0x###|label|#] [#]")
	}
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	const usage = "labels"

	if len(args) > 0 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%#03x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, st *machine.State, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := dbg.Resolve(args[0])

	if err != nil {
		debugError(err)
		return
	}

	st.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %#03x\n", addr)
}

func debugSet(dbg *debugger.Debugger, st *machine.State, args []string) {
	const usage = "set [0x###|label] [0x##]"

	if len(args) != 2 {
		fmt.Println(usage)
		return
	}

	addr, err := dbg.Resolve(args[0])

	if err != nil {
		debugError(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		debugError(err)
		return
	}

	if value > 0xFF {
		debugError("value does not fit in a byte")
		return
	}

	st.Memory[addr] = uint8(value)
	dbg.PrintMem(st, addr, 1)
}

// reloaded refreshes the state the prompt is editing after the machine was
// handed a new program.
func (h *host) reloaded(st *machine.State, err error) {
	if err != nil {
		debugError(err)
		return
	}

	if fresh, err := h.mc.Snapshot(); err == nil {
		*st = fresh
	}

	h.dbg.PrintDisassembly(st, st.Program, 1)
}

// debugSession hands the terminal back to the line editor while fn runs.
func (h *host) debugSession(fn func()) {
	if h.raw {
		if err := exitRawTerm(); err != nil {
			h.logger.Error("Unable to restore terminal")
		}

		fmt.Print("\033[0m\033[?25h\033[H\033[2J")

		defer func() {
			if err := enterRawTerm(); err != nil {
				h.logger.Error("Unable to enter raw terminal mode")
			}

			fmt.Print("\033[?25l\033[2J")
		}()
	}

	fn()
}

// debugStart opens the prompt before the first instruction runs.
func (h *host) debugStart() {
	st, err := h.mc.Snapshot()

	if err != nil {
		return
	}

	h.debugSession(func() {
		h.dbg.PrintDisassembly(&st, st.Program, 1)
		h.debugREPL(&st)
	})

	if shouldexit.Load() {
		return
	}

	if err := h.mc.Restore(st); err != nil {
		debugError(err)
	}
}

func (h *host) debugREPL(st *machine.State) {
	dbg := h.dbg
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit.Store(true)
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(h.lastcmd) == 0 {
				continue
			}
			args = h.lastcmd
		} else {
			h.lastcmd = make([]string, len(args))
			copy(h.lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, st, args)

		case "s", "src", "source":
			debugSource(dbg, st, args)

		case "d", "dis", "disasm":
			debugDisasm(dbg, st, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, st, args)

		case "m", "mem", "memory":
			debugMemory(dbg, st, args)

		case "set":
			debugSet(dbg, st, args)

		case "stack", "bt":
			dbg.PrintStack(st)

		case "display", "frame":
			dbg.PrintDisplay(st)

		case "save":
			if len(args) != 1 {
				fmt.Println("save [file]")
				continue
			}

			// The machine may be mid frame, save what the prompt sees
			if data, err := st.MarshalBinary(); err != nil {
				debugError(err)
			} else if err := os.WriteFile(args[0], data, 0666); err != nil {
				debugError(err)
			} else {
				fmt.Printf("Snapshot written to %s\n", args[0])
			}

		case "restore":
			if len(args) != 1 {
				fmt.Println("restore [file]")
				continue
			}

			h.reloaded(st, h.restore(args[0]))

		case "c", "continue":
			dbg.Break.Store(false)
			return

		case "n", "next":
			dbg.Break.Store(true)
			return

		case "q", "quit", "exit":
			shouldexit.Store(true)
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			h.reloaded(st, h.reload())

		case "h", "help":
			fmt.Println(debugHelp)

		default:
			debugError(fmt.Sprintf("'%s' is not a valid command", cmd))
		}
	}
}

func (h *host) handleBreak(dbg *debugger.Debugger, st *machine.State) {
	h.debugSession(func() {
		if !dbg.Break.Load() {
			fmt.Println()
			fmt.Println("Program stopped")

			if dbg.Source != nil {
				dbg.PrintSource(st.Program, 8)
			} else {
				dbg.PrintDisassembly(st, st.Program, 8)
			}
		} else {
			dbg.PrintDisassembly(st, st.Program, 1)
		}

		h.debugREPL(st)
	})
}

func (h *host) handleRead(addr uint16, dbg *debugger.Debugger, st *machine.State) {
	h.handleWatch("read", addr, dbg, st)
}

func (h *host) handleWrite(addr uint16, dbg *debugger.Debugger, st *machine.State) {
	h.handleWatch("write", addr, dbg, st)
}

func (h *host) handleWatch(access string, addr uint16, dbg *debugger.Debugger, st *machine.State) {
	h.debugSession(func() {
		fmt.Println()
		fmt.Printf("Program stopped on %s\n", access)
		dbg.PrintMem(st, addr, 1)
		dbg.PrintDisassembly(st, st.Program, 1)
		h.debugREPL(st)
	})
}
