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
	"os"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/tty"
)

func runTerminal(h *host) error {
	if err := tty.Check(int(os.Stdin.Fd()), int(os.Stdout.Fd())); err != nil {
		return err
	}

	if err := enterRawTerm(); err != nil {
		return err
	}

	h.raw = true
	os.Stdout.WriteString("\033[?25l\033[2J")

	defer func() {
		h.raw = false
		exitRawTerm()
		os.Stdout.WriteString("\033[0m\033[?25h\r\n")
	}()

	if h.dbg != nil {
		h.debugStart()
	}

	ticker := time.NewTicker(time.Second / machine.TICK_RATE)
	defer ticker.Stop()

	input := make([]byte, 256)

	for !shouldexit.Load() {
		<-ticker.C

		h.keys.Decay()

		// Nothing buffered reads as EOF in raw mode
		n, _ := os.Stdin.Read(input)
		keys, cmds := tty.ParseInput(input[:n])

		for _, key := range keys {
			h.keys.Press(key)
		}

		for _, cmd := range cmds {
			switch cmd {
			case tty.COMMAND_QUIT:
				shouldexit.Store(true)
			case tty.COMMAND_RELOAD:
				h.restart()
			case tty.COMMAND_PAUSE:
				h.paused = !h.paused
			}
		}

		h.frame()

		if err := tty.Render(os.Stdout, h.mc.Pixels(), h.status()); err != nil {
			return err
		}
	}

	return nil
}
