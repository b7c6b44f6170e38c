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
	"fmt"
	"io"
	"iter"

	"github.com/lassandro/gochip8/pkg/random"
	"github.com/retroenv/retrogolib/log"
)

func (mc *Machine) Status() Status {
	return mc.status
}

// Fault is the error that stopped the machine, or nil unless the machine is
// faulted.
func (mc *Machine) Fault() error {
	return mc.fault
}

// LoadBin replaces whatever the machine was doing with a fresh state
// holding the program read from reader. On error the machine is left as it
// was.
func (mc *Machine) LoadBin(reader io.Reader) error {
	var st State

	size, err := st.Load(reader, mc.Truncate)

	if err != nil {
		return err
	}

	mc.commit(st)

	if mc.Logger != nil {
		mc.Logger.Debug("Program loaded", log.Hex("size", size))
	}

	return nil
}

// Restore resumes execution from a snapshot.
func (mc *Machine) Restore(st State) error {
	if len(st.Stack) > STACK_LIMIT {
		return fmt.Errorf("%w: stack depth %d", ErrBadSnapshot, len(st.Stack))
	}

	mc.commit(st.Clone())

	if mc.Logger != nil {
		mc.Logger.Debug("Snapshot restored", log.Hex("program", st.Program))
	}

	return nil
}

func (mc *Machine) commit(st State) {
	mc.devices().audio.Stop()

	mc.state = st
	mc.status = STATUS_RUNNING
	mc.fault = nil
}

// Snapshot copies the live state, or the state frozen at the moment the
// machine faulted.
func (mc *Machine) Snapshot() (State, error) {
	if mc.status == STATUS_UNLOADED {
		return State{}, mc.badState()
	}

	return mc.state.Clone(), nil
}

// Tick runs one frame: TICK_INSTRUCTIONS instructions followed by one timer
// decrement. The first failing instruction faults the machine and ends the
// frame without touching the timers.
func (mc *Machine) Tick() error {
	if mc.status != STATUS_RUNNING {
		return mc.badState()
	}

	c := mc.devices()

	for i := 0; i < TICK_INSTRUCTIONS; i++ {
		if err := mc.execute(&c); err != nil {
			return err
		}
	}

	st := &mc.state

	if st.Delay > 0 {
		st.Delay--
	}

	if st.Sound > 0 {
		st.Sound--

		if st.Sound == 0 {
			c.audio.Stop()
		}
	}

	return nil
}

// Step runs a single instruction without advancing the timers.
func (mc *Machine) Step() error {
	if mc.status != STATUS_RUNNING {
		return mc.badState()
	}

	c := mc.devices()
	return mc.execute(&c)
}

func (mc *Machine) execute(c *cpu) error {
	if err := c.step(); err != nil {
		mc.trip(err, c.audio)
		return err
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(&mc.state)
	}

	return nil
}

func (mc *Machine) trip(err error, audio Audio) {
	mc.status = STATUS_FAULTED
	mc.fault = err

	audio.Stop()

	if mc.Logger != nil {
		mc.Logger.Error("Machine faulted",
			log.Err(err),
			log.Hex("program", mc.state.Program),
			log.Hex("opcode", mc.state.Opcode()))
	}
}

func (mc *Machine) badState() error {
	return fmt.Errorf("%w: machine is %s", ErrBadState, mc.status)
}

func (mc *Machine) devices() cpu {
	var dh DeviceHandler

	if mc.Devices != nil {
		dh = *mc.Devices
	}

	if dh.Random == nil {
		if mc.random == nil {
			mc.random = random.New()
		}
		dh.Random = mc.random
	}

	return newCPU(&mc.state, &dh, mc.Debugger)
}

// Display is the packed framebuffer as of the last instruction executed.
func (mc *Machine) Display() [DISPLAY_HEIGHT][DISPLAY_ROW_BYTES]uint8 {
	return mc.state.Display
}

func (mc *Machine) Pixels() iter.Seq2[int, int] {
	return mc.state.Pixels()
}
