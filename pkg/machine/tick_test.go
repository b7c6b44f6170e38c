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

package machine_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type testDebugger struct {
	Steps  int
	Reads  []uint16
	Writes []uint16
}

func (dbg *testDebugger) Step(st *machine.State) { dbg.Steps++ }

func (dbg *testDebugger) Read(addr uint16, st *machine.State) {
	dbg.Reads = append(dbg.Reads, addr)
}

func (dbg *testDebugger) Write(addr uint16, st *machine.State) {
	dbg.Writes = append(dbg.Writes, addr)
}

func load(t *testing.T, mc *machine.Machine, code ...byte) {
	t.Helper()
	assert.NoError(t, mc.LoadBin(bytes.NewReader(code)))
}

func TestTickRunsFrame(t *testing.T) {
	var mc machine.Machine

	// LD V0, 0x2A followed by a jump to itself
	load(t, &mc, 0x60, 0x2A, 0x12, 0x02)

	assert.NoError(t, mc.Tick())

	st, err := mc.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x2A), st.Registers[0])
	assert.Equal(t, uint16(0x202), st.Program)
	assert.Equal(t, machine.STATUS_RUNNING, mc.Status())
}

func TestTickInstructionCount(t *testing.T) {
	var mc machine.Machine
	dbg := &testDebugger{}
	mc.Debugger = dbg

	// ADD V0, 1 repeated through memory
	code := bytes.Repeat([]byte{0x70, 0x01}, 32)
	load(t, &mc, code...)

	assert.NoError(t, mc.Tick())
	assert.NoError(t, mc.Tick())

	st, err := mc.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, uint8(2*machine.TICK_INSTRUCTIONS), st.Registers[0])
	assert.Equal(t, 2*machine.TICK_INSTRUCTIONS, dbg.Steps)
}

func TestTickTimers(t *testing.T) {
	var mc machine.Machine
	audio := &testAudio{}
	mc.Devices = &machine.DeviceHandler{Audio: audio}

	// V0 = 3, DT = V0, V1 = 1, ST = V1, then spin
	load(t, &mc,
		0x60, 0x03,
		0xF0, 0x15,
		0x61, 0x01,
		0xF1, 0x18,
		0x12, 0x08,
	)

	// LoadBin silences whatever was playing before
	assert.Equal(t, 1, audio.Stops)

	assert.NoError(t, mc.Tick())

	st, _ := mc.Snapshot()
	assert.Equal(t, uint8(2), st.Delay)
	assert.Equal(t, uint8(0), st.Sound)
	assert.Equal(t, 1, audio.Starts)
	assert.Equal(t, 2, audio.Stops)

	assert.NoError(t, mc.Tick())
	assert.NoError(t, mc.Tick())
	assert.NoError(t, mc.Tick())

	st, _ = mc.Snapshot()
	assert.Equal(t, uint8(0), st.Delay)
	assert.Equal(t, 1, audio.Starts)
	assert.Equal(t, 2, audio.Stops)
}

func TestTickSilentTimer(t *testing.T) {
	var mc machine.Machine
	audio := &testAudio{}
	mc.Devices = &machine.DeviceHandler{Audio: audio}

	load(t, &mc, 0x12, 0x00)
	audio.Stops = 0

	for i := 0; i < 10; i++ {
		assert.NoError(t, mc.Tick())
	}

	assert.Equal(t, 0, audio.Starts)
	assert.Equal(t, 0, audio.Stops)
}

func TestFaultTransition(t *testing.T) {
	var mc machine.Machine
	audio := &testAudio{}
	mc.Devices = &machine.DeviceHandler{Audio: audio}

	// RET with an empty stack
	load(t, &mc, 0x00, 0xEE)
	audio.Stops = 0

	err := mc.Tick()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
	assert.Equal(t, machine.STATUS_FAULTED, mc.Status())
	assert.True(t, errors.Is(mc.Fault(), machine.ErrStackUnderflow))
	assert.Equal(t, 1, audio.Stops)

	var fault *machine.Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.Program)
	assert.Equal(t, uint16(0x00EE), fault.Opcode)

	// The state stays frozen at the failing instruction
	st, err := mc.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200), st.Program)

	err = mc.Tick()
	assert.True(t, errors.Is(err, machine.ErrBadState))

	err = mc.Step()
	assert.True(t, errors.Is(err, machine.ErrBadState))

	// Reloading clears the fault
	load(t, &mc, 0x12, 0x00)
	assert.Equal(t, machine.STATUS_RUNNING, mc.Status())
	assert.Nil(t, mc.Fault())
	assert.NoError(t, mc.Tick())
}

func TestFaultSkipsTimers(t *testing.T) {
	var mc machine.Machine

	load(t, &mc, 0x60, 0x05, 0xF0, 0x15, 0xFF, 0xFF)

	assert.NoError(t, mc.Step())
	assert.NoError(t, mc.Step())

	err := mc.Tick()
	assert.True(t, errors.Is(err, machine.ErrUnknownOpcode))

	st, _ := mc.Snapshot()
	assert.Equal(t, uint8(5), st.Delay)
	assert.Equal(t, uint16(0x204), st.Program)
}

func TestUnloaded(t *testing.T) {
	var mc machine.Machine

	assert.Equal(t, machine.STATUS_UNLOADED, mc.Status())
	assert.True(t, errors.Is(mc.Tick(), machine.ErrBadState))
	assert.True(t, errors.Is(mc.Step(), machine.ErrBadState))

	_, err := mc.Snapshot()
	assert.True(t, errors.Is(err, machine.ErrBadState))
}

func TestLoadBinFailureKeepsMachine(t *testing.T) {
	var mc machine.Machine

	load(t, &mc, 0x60, 0x11, 0x12, 0x02)
	assert.NoError(t, mc.Tick())

	err := mc.LoadBin(bytes.NewReader(make([]byte, machine.PROGRAM_CAPACITY+1)))
	assert.True(t, errors.Is(err, machine.ErrProgramTooLarge))

	st, _ := mc.Snapshot()
	assert.Equal(t, uint8(0x11), st.Registers[0])
	assert.Equal(t, machine.STATUS_RUNNING, mc.Status())

	mc.Truncate = true
	assert.NoError(t, mc.LoadBin(bytes.NewReader(make([]byte, machine.PROGRAM_CAPACITY+1))))

	st, _ = mc.Snapshot()
	assert.Equal(t, uint8(0), st.Registers[0])
}

func TestStepDebuggerHooks(t *testing.T) {
	var mc machine.Machine
	dbg := &testDebugger{}
	mc.Debugger = dbg

	// I = 0x300, V0 = 0x7B, BCD V0, then read V0..V2 back
	load(t, &mc,
		0xA3, 0x00,
		0x60, 0x7B,
		0xF0, 0x33,
		0xF2, 0x65,
	)

	for i := 0; i < 4; i++ {
		assert.NoError(t, mc.Step())
	}

	assert.Equal(t, 4, dbg.Steps)
	assert.Equal(t, []uint16{0x300, 0x301, 0x302}, dbg.Writes)
	assert.Equal(t, []uint16{0x300, 0x301, 0x302}, dbg.Reads)

	st, _ := mc.Snapshot()
	assert.Equal(t, [16]uint8{1, 2, 3}, st.Registers)
}

func TestSnapshotIsolated(t *testing.T) {
	var mc machine.Machine

	load(t, &mc, 0x22, 0x04, 0x00, 0x00, 0x12, 0x04)
	assert.NoError(t, mc.Step())

	st, err := mc.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x202}, st.Stack)

	st.Stack[0] = 0xBAD
	st.Registers[0] = 0xFF

	again, _ := mc.Snapshot()
	assert.Equal(t, []uint16{0x202}, again.Stack)
	assert.Equal(t, uint8(0), again.Registers[0])
}

func TestRestore(t *testing.T) {
	var mc machine.Machine

	st := machine.NewState()
	st.Registers[4] = 0x44
	st.Program = 0x300
	st.Stack = append(st.Stack, 0x208)
	st.Memory[0x300] = 0x00
	st.Memory[0x301] = 0xEE

	assert.NoError(t, mc.Restore(st))
	assert.Equal(t, machine.STATUS_RUNNING, mc.Status())
	assert.NoError(t, mc.Step())

	restored, _ := mc.Snapshot()
	assert.Equal(t, uint16(0x208), restored.Program)
	assert.Equal(t, uint8(0x44), restored.Registers[4])

	// The caller's copy is not shared with the machine
	assert.Equal(t, 1, len(st.Stack))

	st.Stack = make([]uint16, machine.STACK_LIMIT+1)
	err := mc.Restore(st)
	assert.True(t, errors.Is(err, machine.ErrBadSnapshot))
}

func TestMachineDisplay(t *testing.T) {
	var mc machine.Machine

	// Draw glyph "0" at the origin
	load(t, &mc, 0xA0, 0x00, 0xD0, 0x05)
	assert.NoError(t, mc.Step())
	assert.NoError(t, mc.Step())

	display := mc.Display()
	assert.Equal(t, uint8(0xF0), display[0][0])
	assert.Equal(t, uint8(0x90), display[1][0])
	assert.Equal(t, uint8(0xF0), display[4][0])

	count := 0
	for x, y := range mc.Pixels() {
		assert.True(t, x < 4 && y < 5)
		count++
	}

	assert.Equal(t, 14, count)
}

func TestLogger(t *testing.T) {
	var mc machine.Machine
	mc.Logger = log.NewTestLogger(t)

	load(t, &mc, 0x60, 0x01, 0xFF, 0xFF)
	assert.NoError(t, mc.Step())
	assert.NoError(t, mc.Restore(machine.NewState()))

	// The test logger fails on error records, faults are captured instead
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	cfg.TimeFormat = "-"
	mc.Logger = log.NewWithConfig(cfg)

	load(t, &mc, 0xFF, 0xFF)
	assert.True(t, errors.Is(mc.Tick(), machine.ErrUnknownOpcode))

	text := buf.String()
	assert.Contains(t, text, "Machine faulted")
	assert.Contains(t, text, `"program":"0x0200"`)
	assert.Contains(t, text, `"opcode":"0xFFFF"`)
	assert.NotContains(t, text, "Program loaded")
}
