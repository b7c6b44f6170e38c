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
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/beeper"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/random"
	"github.com/retroenv/retrogolib/log"
)

var helpvar bool
var debugvar bool
var termvar bool
var mutevar bool
var truncatevar bool
var verbosevar bool
var quietvar bool
var scalevar int
var seedvar int64
var statevar string

var shouldexit atomic.Bool

const usage = "chip8 [-debug] [-term] [-state snapshot] filename"

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(
		&termvar, "term", false,
		"Renders to the terminal instead of opening a window",
	)
	flag.BoolVar(&mutevar, "mute", false, "Disables the sound timer tone")
	flag.BoolVar(
		&truncatevar, "truncate", false,
		"Drops program bytes that do not fit in memory instead of failing",
	)
	flag.BoolVar(&verbosevar, "verbose", false, "Logs debug messages")
	flag.BoolVar(&quietvar, "quiet", false, "Only logs errors")
	flag.IntVar(&scalevar, "scale", 10, "Window pixels per display pixel")
	flag.Int64Var(
		&seedvar, "seed", 0,
		"Seeds the RND instruction for reproducible runs, 0 uses the clock",
	)
	flag.StringVar(
		&statevar, "state", "",
		"Resumes from a snapshot written by the debugger 'save' command",
	)
}

func createLogger(verbose, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()

	if verbose {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}

	return log.NewWithConfig(cfg)
}

// host ties a machine to the program it was started with and to whichever
// frontend drives it.
type host struct {
	mc     machine.Machine
	keys   keypad.Keypad
	dbg    *debugger.Debugger
	logger *log.Logger

	rom   string
	state string

	// The terminal frontend owns the tty
	raw    bool
	paused bool

	lastcmd []string
}

// reload starts the program over, from the snapshot when one was given.
func (h *host) reload() error {
	if h.state != "" {
		return h.restore(h.state)
	}

	file, err := os.Open(h.rom)

	if err != nil {
		return err
	}

	defer file.Close()

	return h.mc.LoadBin(file)
}

func (h *host) restore(filename string) error {
	data, err := os.ReadFile(filename)

	if err != nil {
		return err
	}

	var st machine.State

	if err := st.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	return h.mc.Restore(st)
}

// fault reports the machine stopping. A debug session gets a prompt on a
// copy of the frozen state.
func (h *host) fault(err error) {
	st, snapErr := h.mc.Snapshot()

	if snapErr != nil {
		h.logger.Error("Machine stopped", log.Err(err))
		return
	}

	if h.dbg == nil {
		// The terminal frontend shows it on the status line
		if !h.raw {
			h.logger.Error("Machine faulted, reload to continue", log.Err(err))
		}
		return
	}

	h.debugSession(func() {
		h.dbg.PrintFault(err, &st)
		h.debugREPL(&st)
	})
}

// frame advances the machine by one tick unless paused or stopped.
func (h *host) frame() {
	if h.paused || h.mc.Status() != machine.STATUS_RUNNING {
		return
	}

	if err := h.mc.Tick(); err != nil {
		h.fault(err)
	}
}

func (h *host) restart() {
	if err := h.reload(); err != nil {
		h.logger.Error("Reload failed", log.Err(err))
		return
	}

	h.paused = false
	h.keys.Clear()
}

func (h *host) status() string {
	switch {
	case h.mc.Status() == machine.STATUS_FAULTED:
		return fmt.Sprintf("FAULTED: %s (F5 reloads)", h.mc.Fault())
	case h.paused:
		return "PAUSED (F6 resumes)"
	default:
		return ""
	}
}

func symbolFile(rom string) string {
	return filepath.Join(
		filepath.Dir(rom),
		strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))+".c8db",
	)
}

func (h *host) loadSymbols() {
	if h.rom == "" {
		return
	}

	filename := symbolFile(h.rom)
	file, err := os.Open(filename)

	if err != nil {
		h.logger.Debug("No symbol table", log.String("file", filename))
		return
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		h.logger.Error("Error loading symbol file",
			log.String("file", filename), log.Err(err))
		return
	}

	h.dbg.SymTable = &symtable

	if symtable.Source == "" {
		return
	}

	source, err := os.Open(symtable.Source)

	if err != nil {
		h.logger.Error("Error loading source file", log.Err(err))
		return
	}

	h.dbg.Source = source
}

func chip8() int {
	flag.Parse()

	logger := createLogger(verbosevar, quietvar)

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) > 1 || (len(args) == 0 && statevar == "") {
		logger.Error(usage)
		return 1
	}

	h := &host{logger: logger, state: statevar}

	if len(args) == 1 {
		h.rom = args[0]
	}

	devices := machine.DeviceHandler{
		Keypad: &h.keys,
		Audio:  machine.NullAudio{},
	}

	if seedvar != 0 {
		devices.Random = random.NewSeeded(seedvar)
	}

	if !mutevar {
		if bp, err := beeper.New(); err == nil {
			defer bp.Close()
			devices.Audio = bp
		} else {
			logger.Warn("Audio unavailable", log.Err(err))
		}
	}

	h.mc.Devices = &devices
	h.mc.Logger = logger
	h.mc.Truncate = truncatevar

	if debugvar {
		h.dbg = &debugger.Debugger{
			HandleBreak: h.handleBreak,
			HandleRead:  h.handleRead,
			HandleWrite: h.handleWrite,
		}
		h.mc.Debugger = h.dbg

		h.loadSymbols()

		if closer, ok := h.dbg.Source.(*os.File); ok {
			defer closer.Close()
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)

	go func() {
		for range c {
			if h.dbg != nil {
				fmt.Println()
				h.dbg.Break.Store(true)
			} else {
				shouldexit.Store(true)
			}
		}
	}()

	if err := h.reload(); err != nil {
		logger.Error("Unable to load program", log.Err(err))
		return 1
	}

	var err error

	if termvar {
		err = runTerminal(h)
	} else {
		err = runWindow(h, scalevar)
	}

	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	return 0
}

func main() {
	os.Exit(chip8())
}
