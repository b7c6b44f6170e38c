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
	"github.com/retroenv/retrogolib/log"
)

// Keypad reports the state of the hex keypad. Both queries must answer
// immediately; "no key" is a valid result.
type Keypad interface {
	IsPressed(key uint8) bool
	PressedKey() (uint8, bool)
}

// Audio drives the single tone output. Start and Stop are idempotent.
type Audio interface {
	Start()
	Stop()
}

type Random interface {
	Uint8() uint8
}

type DeviceHandler struct {
	Keypad Keypad
	Audio  Audio
	Random Random
}

type State struct {
	Registers [REGISTER_COUNT]uint8
	Address   uint16
	Memory    [MEMORY_SIZE]uint8
	Program   uint16
	Stack     []uint16
	Delay     uint8
	Sound     uint8
	Display   [DISPLAY_HEIGHT][DISPLAY_ROW_BYTES]uint8
}

type MachineDebugger interface {
	Step(st *State)
	Read(addr uint16, st *State)
	Write(addr uint16, st *State)
}

type Status uint

const (
	STATUS_UNLOADED Status = iota
	STATUS_RUNNING
	STATUS_FAULTED
)

func (s Status) String() string {
	switch s {
	case STATUS_UNLOADED:
		return "unloaded"
	case STATUS_RUNNING:
		return "running"
	case STATUS_FAULTED:
		return "faulted"
	default:
		return "invalid"
	}
}

type Machine struct {
	Devices  *DeviceHandler
	Debugger MachineDebugger
	Logger   *log.Logger

	// Silently drop program bytes past PROGRAM_CAPACITY instead of failing
	// the load
	Truncate bool

	status Status
	state  State
	fault  error
	random Random
}

type NullKeypad struct{}

func (NullKeypad) IsPressed(uint8) bool { return false }
func (NullKeypad) PressedKey() (uint8, bool) { return 0, false }

type NullAudio struct{}

func (NullAudio) Start() {}
func (NullAudio) Stop() {}
