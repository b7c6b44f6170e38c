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
	"errors"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

type testKeypad struct {
	Pressed []uint8
}

func (kp *testKeypad) IsPressed(key uint8) bool {
	for _, pressed := range kp.Pressed {
		if pressed == key {
			return true
		}
	}

	return false
}

func (kp *testKeypad) PressedKey() (uint8, bool) {
	if len(kp.Pressed) == 0 {
		return 0, false
	}

	return kp.Pressed[0], true
}

type testAudio struct {
	Starts int
	Stops  int
}

func (a *testAudio) Start() { a.Starts++ }
func (a *testAudio) Stop()  { a.Stops++ }

type testRandom uint8

func (r testRandom) Uint8() uint8 { return uint8(r) }

type testMachineState struct {
	Registers [16]uint8
	Address   uint16
	Program   uint16
	Stack     []uint16
	Delay     uint8
	Sound     uint8
	Memory    map[uint16]uint8
	Display   map[int][8]uint8
}

type testCase struct {
	Name   string
	Steps  uint
	Keys   []uint8
	Random uint8
	Fault  error
	Starts int
	Input  testMachineState
	Output testMachineState
}

// Places big-endian opcodes in memory starting at addr
func program(addr uint16, opcodes ...uint16) map[uint16]uint8 {
	memory := make(map[uint16]uint8)

	for i, opcode := range opcodes {
		memory[addr+uint16(i*2)] = uint8(opcode >> 8)
		memory[addr+uint16(i*2)+1] = uint8(opcode)
	}

	return memory
}

func with(memory map[uint16]uint8, addr uint16, values ...uint8) map[uint16]uint8 {
	merged := make(map[uint16]uint8, len(memory)+len(values))

	for k, v := range memory {
		merged[k] = v
	}

	for i, value := range values {
		merged[addr+uint16(i)] = value
	}

	return merged
}

func testMachineSuccess(t *testing.T, test *testCase) {
	t.Helper()

	if test.Input.Memory == nil {
		panic("No memory map provided")
	}

	baseline := machine.NewState()

	st := machine.NewState()
	st.Registers = test.Input.Registers
	st.Address = test.Input.Address
	st.Program = test.Input.Program
	st.Stack = append(st.Stack, test.Input.Stack...)
	st.Delay = test.Input.Delay
	st.Sound = test.Input.Sound

	for addr, value := range test.Input.Memory {
		st.Memory[addr] = value
	}

	for row, value := range test.Input.Display {
		st.Display[row] = value
	}

	keypad := &testKeypad{Pressed: test.Keys}
	audio := &testAudio{}
	devices := machine.DeviceHandler{
		Keypad: keypad,
		Audio:  audio,
		Random: testRandom(test.Random),
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	var err error
	for i := uint(0); i < test.Steps && err == nil; i++ {
		err = machine.Execute(&st, &devices)
	}

	if test.Fault == nil && err != nil {
		t.Fatalf("Unexpected fault\nwant:<nil>\nhave:%v", err)
	} else if test.Fault != nil && !errors.Is(err, test.Fault) {
		t.Fatalf("Fault mismatch\nwant:%v (test.Fault)\nhave:%v", test.Fault, err)
	}

	for i := 0; i < 16; i++ {
		want := test.Output.Registers[i]
		have := st.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#02x (test.Output.Registers[%d])\nhave:%#02x",
				want,
				i,
				have,
			)
		}
	}

	if st.Program != test.Output.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			st.Program,
		)
	}

	if st.Address != test.Output.Address {
		t.Errorf(
			"Address register mismatch"+
				"\nwant:%#04x (test.Output.Address)\nhave:%#04x",
			test.Output.Address,
			st.Address,
		)
	}

	if len(st.Stack) != len(test.Output.Stack) {
		t.Errorf(
			"Stack depth mismatch\nwant:%d (test.Output.Stack)\nhave:%d",
			len(test.Output.Stack),
			len(st.Stack),
		)
	} else {
		for i, want := range test.Output.Stack {
			if have := st.Stack[i]; have != want {
				t.Errorf(
					"Stack mismatch"+
						"\nwant:%#04x (test.Output.Stack[%d])\nhave:%#04x",
					want,
					i,
					have,
				)
			}
		}
	}

	if st.Delay != test.Output.Delay {
		t.Errorf(
			"Delay timer mismatch\nwant:%d (test.Output.Delay)\nhave:%d",
			test.Output.Delay,
			st.Delay,
		)
	}

	if st.Sound != test.Output.Sound {
		t.Errorf(
			"Sound timer mismatch\nwant:%d (test.Output.Sound)\nhave:%d",
			test.Output.Sound,
			st.Sound,
		)
	}

	if audio.Starts != test.Starts {
		t.Errorf(
			"Audio start mismatch\nwant:%d (test.Starts)\nhave:%d",
			test.Starts,
			audio.Starts,
		)
	}

	for i, value := range st.Memory {
		addr := uint16(i)
		input, expectingInput := test.Input.Memory[addr]
		output, expectingOutput := test.Output.Memory[addr]

		if expectingOutput {
			// Value was supposed to change
			if value != output {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Output.Memory[%#04x])\nhave:%#02x",
					output,
					addr,
					value,
				)
			}
		} else if expectingInput {
			// Value was supposed to remain
			if value != input {
				t.Fatalf(
					"Memory value mismatch"+
						"\nwant:%#02x (test.Input.Memory[%#04x])\nhave:%#02x",
					input,
					addr,
					value,
				)
			}
		} else if value != baseline.Memory[addr] {
			t.Fatalf(
				"Memory unexpectedly changed"+
					"\nwant:%#02x (baseline[%#04x])\nhave:%#02x",
				baseline.Memory[addr],
				addr,
				value,
			)
		}
	}

	for row := range st.Display {
		want, expectingOutput := test.Output.Display[row]

		if !expectingOutput {
			want = test.Input.Display[row]
		}

		if have := st.Display[row]; have != want {
			t.Errorf(
				"Display row mismatch"+
					"\nwant:%08b (row %d)\nhave:%08b",
				want,
				row,
				have,
			)
		}
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, &test)
		})
	}
}

func TestSystem(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "CLS",
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x00E0),
				Display: map[int][8]uint8{
					0:  {0xFF, 0, 0, 0, 0, 0, 0, 0x01},
					31: {0, 0, 0, 0x18, 0, 0, 0, 0},
				},
			},
			Output: testMachineState{
				Program: 0x202,
				Display: map[int][8]uint8{
					0:  {},
					31: {},
				},
			},
		},
		{
			Name: "RET",
			Input: testMachineState{
				Program: 0x300,
				Stack:   []uint16{0x204, 0x252},
				Memory:  program(0x300, 0x00EE),
			},
			Output: testMachineState{
				Program: 0x252,
				Stack:   []uint16{0x204},
			},
		},
		{
			Name:  "RET (Underflow)",
			Fault: machine.ErrStackUnderflow,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x00EE),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
		{
			Name:  "SYS (Unknown)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x0123),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
		{
			Name:  "00EF (Unknown)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x00EF),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
	})
}

func TestJump(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "JP",
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x1ABC),
			},
			Output: testMachineState{
				Program: 0xABC,
			},
		},
		{
			Name:  "JP (Self)",
			Steps: 5,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x1200),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
		{
			Name: "CALL",
			Input: testMachineState{
				Program: 0x204,
				Memory:  program(0x204, 0x2300),
			},
			Output: testMachineState{
				Program: 0x300,
				Stack:   []uint16{0x206},
			},
		},
		{
			Name:  "CALL then RET",
			Steps: 2,
			Input: testMachineState{
				Program: 0x200,
				Memory:  with(program(0x200, 0x2300), 0x300, 0x00, 0xEE),
			},
			Output: testMachineState{
				Program: 0x202,
			},
		},
		{
			Name:  "CALL (Overflow)",
			Fault: machine.ErrStackOverflow,
			Input: testMachineState{
				Program: 0x200,
				Stack: []uint16{
					1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
				},
				Memory: program(0x200, 0x2200),
			},
			Output: testMachineState{
				Program: 0x200,
				Stack: []uint16{
					1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
				},
			},
		},
		{
			Name: "JP V0",
			Input: testMachineState{
				Registers: [16]uint8{0x10},
				Program:   0x200,
				Memory:    program(0x200, 0xB300),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x10},
				Program:   0x310,
			},
		},
		{
			Name: "JP V0 (Past 12 bits)",
			Input: testMachineState{
				Registers: [16]uint8{0xFF},
				Program:   0x200,
				Memory:    program(0x200, 0xBFFF),
			},
			Output: testMachineState{
				Registers: [16]uint8{0xFF},
				Program:   0x10FE,
			},
		},
	})
}

func TestSkip(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "SE byte (Equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x42},
				Program:   0x200,
				Memory:    program(0x200, 0x3342),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x42},
				Program:   0x204,
			},
		},
		{
			Name: "SE byte (Not equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x41},
				Program:   0x200,
				Memory:    program(0x200, 0x3342),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x41},
				Program:   0x202,
			},
		},
		{
			Name: "SNE byte (Equal)",
			Input: testMachineState{
				Registers: [16]uint8{0x42},
				Program:   0x200,
				Memory:    program(0x200, 0x4042),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x42},
				Program:   0x202,
			},
		},
		{
			Name: "SNE byte (Not equal)",
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x4042),
			},
			Output: testMachineState{
				Program: 0x204,
			},
		},
		{
			Name: "SE reg (Equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x200,
				Memory:    program(0x200, 0x5120),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x204,
			},
		},
		{
			Name: "SE reg (Not equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 7, 8},
				Program:   0x200,
				Memory:    program(0x200, 0x5120),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 7, 8},
				Program:   0x202,
			},
		},
		{
			Name:  "SE reg (Nonzero low nibble)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x200,
				Memory:    program(0x200, 0x5121),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x200,
			},
		},
		{
			Name: "SNE reg (Not equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 7, 8},
				Program:   0x200,
				Memory:    program(0x200, 0x9120),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 7, 8},
				Program:   0x204,
			},
		},
		{
			Name: "SNE reg (Equal)",
			Input: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x200,
				Memory:    program(0x200, 0x9120),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 7, 7},
				Program:   0x202,
			},
		},
		{
			Name:  "SNE reg (Nonzero low nibble)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x912F),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
	})
}

func TestLoadImmediate(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD byte",
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0x6A2A),
			},
			Output: testMachineState{
				Registers: [16]uint8{10: 0x2A},
				Program:   0x202,
			},
		},
		{
			Name: "ADD byte",
			Input: testMachineState{
				Registers: [16]uint8{0x10},
				Program:   0x200,
				Memory:    program(0x200, 0x7005),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x15},
				Program:   0x202,
			},
		},
		{
			Name: "ADD byte (Wraps, VF untouched)",
			Input: testMachineState{
				Registers: [16]uint8{0xFF, 15: 0x07},
				Program:   0x200,
				Memory:    program(0x200, 0x7002),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x01, 15: 0x07},
				Program:   0x202,
			},
		},
	})
}

func TestALU(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD reg",
			Input: testMachineState{
				Registers: [16]uint8{0x00, 0x55},
				Program:   0x200,
				Memory:    program(0x200, 0x8010),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x55, 0x55},
				Program:   0x202,
			},
		},
		{
			Name: "OR",
			Input: testMachineState{
				Registers: [16]uint8{0xF0, 0x0F},
				Program:   0x200,
				Memory:    program(0x200, 0x8011),
			},
			Output: testMachineState{
				Registers: [16]uint8{0xFF, 0x0F},
				Program:   0x202,
			},
		},
		{
			Name: "AND",
			Input: testMachineState{
				Registers: [16]uint8{0xF3, 0x3F},
				Program:   0x200,
				Memory:    program(0x200, 0x8012),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x33, 0x3F},
				Program:   0x202,
			},
		},
		{
			Name: "XOR",
			Input: testMachineState{
				Registers: [16]uint8{0xFF, 0x0F},
				Program:   0x200,
				Memory:    program(0x200, 0x8013),
			},
			Output: testMachineState{
				Registers: [16]uint8{0xF0, 0x0F},
				Program:   0x202,
			},
		},
		{
			Name: "SHR",
			Input: testMachineState{
				Registers: [16]uint8{0x05},
				Program:   0x200,
				Memory:    program(0x200, 0x8006),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x02, 15: 1},
				Program:   0x202,
			},
		},
		{
			Name: "SHR (Even)",
			Input: testMachineState{
				Registers: [16]uint8{0x04, 15: 1},
				Program:   0x200,
				Memory:    program(0x200, 0x8006),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x02},
				Program:   0x202,
			},
		},
		{
			Name: "SHL",
			Input: testMachineState{
				Registers: [16]uint8{0x81},
				Program:   0x200,
				Memory:    program(0x200, 0x800E),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x02, 15: 1},
				Program:   0x202,
			},
		},
		{
			Name: "SHL (No carry)",
			Input: testMachineState{
				Registers: [16]uint8{0x41, 15: 1},
				Program:   0x200,
				Memory:    program(0x200, 0x800E),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x82},
				Program:   0x202,
			},
		},
		{
			Name: "SUBN",
			Input: testMachineState{
				Registers: [16]uint8{0x10, 0x30},
				Program:   0x200,
				Memory:    program(0x200, 0x8017),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x20, 0x30, 15: 1},
				Program:   0x202,
			},
		},
		{
			Name: "SUBN (Borrow)",
			Input: testMachineState{
				Registers: [16]uint8{0x30, 0x10, 15: 1},
				Program:   0x200,
				Memory:    program(0x200, 0x8017),
			},
			Output: testMachineState{
				Registers: [16]uint8{0xE0, 0x10},
				Program:   0x202,
			},
		},
		{
			Name:  "ALU (Unknown function)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Registers: [16]uint8{0x30, 0x10},
				Program:   0x200,
				Memory:    program(0x200, 0x8018),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x30, 0x10},
				Program:   0x200,
			},
		},
	})
}

func TestAddCarryExhaustive(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			st := machine.NewState()
			st.Registers[3] = uint8(a)
			st.Registers[7] = uint8(b)
			st.Memory[0x200] = 0x83
			st.Memory[0x201] = 0x74

			if err := machine.Execute(&st, nil); err != nil {
				t.Fatal(err)
			}

			wantFlag := uint8(0)
			if a+b >= 256 {
				wantFlag = 1
			}

			if st.Registers[3] != uint8((a+b)%256) || st.Registers[0xF] != wantFlag {
				t.Fatalf(
					"ADD %#02x + %#02x\nwant:%#02x VF=%d\nhave:%#02x VF=%d",
					a, b, uint8((a+b)%256), wantFlag,
					st.Registers[3], st.Registers[0xF],
				)
			}
		}
	}
}

func TestSubBorrowExhaustive(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			st := machine.NewState()
			st.Registers[1] = uint8(a)
			st.Registers[2] = uint8(b)
			st.Memory[0x200] = 0x81
			st.Memory[0x201] = 0x25

			if err := machine.Execute(&st, nil); err != nil {
				t.Fatal(err)
			}

			wantFlag := uint8(1)
			if a < b {
				wantFlag = 0
			}

			if st.Registers[1] != uint8(a-b) || st.Registers[0xF] != wantFlag {
				t.Fatalf(
					"SUB %#02x - %#02x\nwant:%#02x VF=%d\nhave:%#02x VF=%d",
					a, b, uint8(a-b), wantFlag,
					st.Registers[1], st.Registers[0xF],
				)
			}
		}
	}
}

func TestIndex(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD I",
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0xA123),
			},
			Output: testMachineState{
				Address: 0x123,
				Program: 0x202,
			},
		},
		{
			Name: "ADD I",
			Input: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x20},
				Address:   0x300,
				Program:   0x200,
				Memory:    program(0x200, 0xF31E),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0, 0, 0x20},
				Address:   0x320,
				Program:   0x202,
			},
		},
		{
			Name: "LD F",
			Input: testMachineState{
				Registers: [16]uint8{0, 0xA},
				Program:   0x200,
				Memory:    program(0x200, 0xF129),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0xA},
				Address:   50,
				Program:   0x202,
			},
		},
	})
}

func TestRandom(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "RND",
			Random: 0xAB,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0xC40F),
			},
			Output: testMachineState{
				Registers: [16]uint8{4: 0x0B},
				Program:   0x202,
			},
		},
	})
}

func TestDraw(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "DRW",
			Input: testMachineState{
				Registers: [16]uint8{8, 2},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD012), 0x300, 0xFF, 0x81),
			},
			Output: testMachineState{
				Registers: [16]uint8{8, 2},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					2: {0, 0xFF},
					3: {0, 0x81},
				},
			},
		},
		{
			Name: "DRW (Unaligned)",
			Input: testMachineState{
				Registers: [16]uint8{4, 0},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD011), 0x300, 0xFF),
			},
			Output: testMachineState{
				Registers: [16]uint8{4, 0},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					0: {0x0F, 0xF0},
				},
			},
		},
		{
			Name: "DRW (Horizontal wrap)",
			Input: testMachineState{
				Registers: [16]uint8{60, 5},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD011), 0x300, 0xFF),
			},
			Output: testMachineState{
				Registers: [16]uint8{60, 5},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					5: {0xF0, 0, 0, 0, 0, 0, 0, 0x0F},
				},
			},
		},
		{
			Name: "DRW (X past width)",
			Input: testMachineState{
				Registers: [16]uint8{64 + 8, 0},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD011), 0x300, 0xFF),
			},
			Output: testMachineState{
				Registers: [16]uint8{64 + 8, 0},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					0: {0, 0xFF},
				},
			},
		},
		{
			Name: "DRW (Clipped at bottom)",
			Input: testMachineState{
				Registers: [16]uint8{0, 31},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD013), 0x300, 0x80, 0x40, 0x20),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 31},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					31: {0x80},
					0:  {},
					1:  {},
				},
			},
		},
		{
			Name: "DRW (Y past height)",
			Input: testMachineState{
				Registers: [16]uint8{0, 40},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD011), 0x300, 0xFF),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 40},
				Address:   0x300,
				Program:   0x202,
			},
		},
		{
			Name: "DRW (Collision)",
			Input: testMachineState{
				Registers: [16]uint8{0, 0},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD012), 0x300, 0xF0, 0x0F),
				Display: map[int][8]uint8{
					0: {0x10},
				},
			},
			Output: testMachineState{
				Registers: [16]uint8{15: 1},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					0: {0xE0},
					1: {0x0F},
				},
			},
		},
		{
			Name: "DRW (Collision not reset by later bits)",
			Input: testMachineState{
				Registers: [16]uint8{0, 0},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD011), 0x300, 0xC0),
				Display: map[int][8]uint8{
					0: {0x80},
				},
			},
			Output: testMachineState{
				Registers: [16]uint8{15: 1},
				Address:   0x300,
				Program:   0x202,
				Display: map[int][8]uint8{
					0: {0x40},
				},
			},
		},
		{
			Name: "DRW (VF cleared)",
			Input: testMachineState{
				Registers: [16]uint8{15: 1},
				Address:   0x300,
				Program:   0x200,
				Memory:    with(program(0x200, 0xD001), 0x300, 0x01),
			},
			Output: testMachineState{
				Address: 0x300,
				Program: 0x202,
				Display: map[int][8]uint8{
					0: {0x01},
				},
			},
		},
		{
			Name:  "DRW (Twice erases)",
			Steps: 2,
			Input: testMachineState{
				Address: 0x300,
				Program: 0x200,
				Memory:  with(program(0x200, 0xD002, 0xD002), 0x300, 0xFF, 0x81),
			},
			Output: testMachineState{
				Registers: [16]uint8{15: 1},
				Address:   0x300,
				Program:   0x204,
			},
		},
	})
}

func TestKeys(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "SKP (Pressed)",
			Keys: []uint8{0x5},
			Input: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x200,
				Memory:    program(0x200, 0xE19E),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x204,
			},
		},
		{
			Name: "SKP (Released)",
			Keys: []uint8{0x6},
			Input: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x200,
				Memory:    program(0x200, 0xE19E),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x202,
			},
		},
		{
			Name: "SKNP (Pressed)",
			Keys: []uint8{0x5},
			Input: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x200,
				Memory:    program(0x200, 0xE1A1),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x202,
			},
		},
		{
			Name: "SKNP (Released)",
			Input: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x200,
				Memory:    program(0x200, 0xE1A1),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0x5},
				Program:   0x204,
			},
		},
		{
			Name: "SKNP (Key out of range)",
			Keys: []uint8{0x10},
			Input: testMachineState{
				Registers: [16]uint8{0, 0x10},
				Program:   0x200,
				Memory:    program(0x200, 0xE1A1),
			},
			Output: testMachineState{
				Registers: [16]uint8{0, 0x10},
				Program:   0x204,
			},
		},
		{
			Name:  "SKP (Unknown)",
			Fault: machine.ErrUnknownOpcode,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0xE19F),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
		{
			Name:  "LD K (Waiting)",
			Steps: 3,
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0xF30A),
			},
			Output: testMachineState{
				Program: 0x200,
			},
		},
		{
			Name: "LD K (Pressed)",
			Keys: []uint8{0xC},
			Input: testMachineState{
				Program: 0x200,
				Memory:  program(0x200, 0xF30A),
			},
			Output: testMachineState{
				Registers: [16]uint8{3: 0xC},
				Program:   0x202,
			},
		},
	})
}

func TestTimers(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD Vx, DT",
			Input: testMachineState{
				Delay:   0x33,
				Program: 0x200,
				Memory:  program(0x200, 0xF207),
			},
			Output: testMachineState{
				Registers: [16]uint8{2: 0x33},
				Delay:     0x33,
				Program:   0x202,
			},
		},
		{
			Name: "LD DT, Vx",
			Input: testMachineState{
				Registers: [16]uint8{2: 0x44},
				Program:   0x200,
				Memory:    program(0x200, 0xF215),
			},
			Output: testMachineState{
				Registers: [16]uint8{2: 0x44},
				Delay:     0x44,
				Program:   0x202,
			},
		},
		{
			Name:   "LD ST, Vx",
			Starts: 1,
			Input: testMachineState{
				Registers: [16]uint8{2: 0x04},
				Program:   0x200,
				Memory:    program(0x200, 0xF218),
			},
			Output: testMachineState{
				Registers: [16]uint8{2: 0x04},
				Sound:     0x04,
				Program:   0x202,
			},
		},
		{
			Name: "LD ST, Vx (Zero)",
			Input: testMachineState{
				Sound:   0x09,
				Program: 0x200,
				Memory:  program(0x200, 0xF218),
			},
			Output: testMachineState{
				Program: 0x202,
			},
		},
	})
}

func TestTransfer(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LD B, Vx",
			Input: testMachineState{
				Registers: [16]uint8{5: 234},
				Address:   0x400,
				Program:   0x200,
				Memory:    program(0x200, 0xF533),
			},
			Output: testMachineState{
				Registers: [16]uint8{5: 234},
				Address:   0x400,
				Program:   0x202,
				Memory:    map[uint16]uint8{0x400: 2, 0x401: 3, 0x402: 4},
			},
		},
		{
			Name: "LD [I], Vx",
			Input: testMachineState{
				Registers: [16]uint8{0x11, 0x22, 0x33, 0x44},
				Address:   0x500,
				Program:   0x200,
				Memory:    program(0x200, 0xF255),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x11, 0x22, 0x33, 0x44},
				Address:   0x500,
				Program:   0x202,
				Memory:    map[uint16]uint8{0x500: 0x11, 0x501: 0x22, 0x502: 0x33},
			},
		},
		{
			Name: "LD Vx, [I]",
			Input: testMachineState{
				Registers: [16]uint8{3: 0x99},
				Address:   0x500,
				Program:   0x200,
				Memory:    with(program(0x200, 0xF265), 0x500, 0xAA, 0xBB, 0xCC, 0xDD),
			},
			Output: testMachineState{
				Registers: [16]uint8{0xAA, 0xBB, 0xCC, 0x99},
				Address:   0x500,
				Program:   0x202,
			},
		},
		{
			Name: "LD [I], Vx (Wraps at top of memory)",
			Input: testMachineState{
				Registers: [16]uint8{0x11, 0x22},
				Address:   0xFFF,
				Program:   0x200,
				Memory:    program(0x200, 0xF155),
			},
			Output: testMachineState{
				Registers: [16]uint8{0x11, 0x22},
				Address:   0xFFF,
				Program:   0x202,
				Memory:    map[uint16]uint8{0xFFF: 0x11, 0x000: 0x22},
			},
		},
	})
}

func TestBCDExhaustive(t *testing.T) {
	for value := 0; value < 256; value++ {
		st := machine.NewState()
		st.Registers[0xE] = uint8(value)
		st.Address = 0x600
		st.Memory[0x200] = 0xFE
		st.Memory[0x201] = 0x33

		if err := machine.Execute(&st, nil); err != nil {
			t.Fatal(err)
		}

		have := int(st.Memory[0x600])*100 + int(st.Memory[0x601])*10 +
			int(st.Memory[0x602])

		if have != value || st.Memory[0x601] > 9 || st.Memory[0x602] > 9 {
			t.Fatalf(
				"BCD mismatch\nwant:%d\nhave:%d %d %d",
				value,
				st.Memory[0x600],
				st.Memory[0x601],
				st.Memory[0x602],
			)
		}
	}
}

func TestFaultLeavesStateUntouched(t *testing.T) {
	opcodes := []uint16{
		0x0000, 0x0123, 0x00E1, 0x5121, 0x800F, 0x8008, 0x9121,
		0xE000, 0xE1A2, 0xF000, 0xF1FF, 0xF166,
	}

	for _, opcode := range opcodes {
		st := machine.NewState()
		st.Registers[1] = 0x12
		st.Memory[0x200] = uint8(opcode >> 8)
		st.Memory[0x201] = uint8(opcode)
		before := st.Clone()

		err := machine.Execute(&st, nil)

		var fault *machine.Fault
		if !errors.As(err, &fault) {
			t.Fatalf("%#04x: want *machine.Fault, have %v", opcode, err)
		}

		if !errors.Is(err, machine.ErrUnknownOpcode) {
			t.Errorf("%#04x: want ErrUnknownOpcode, have %v", opcode, err)
		}

		if fault.Program != 0x200 || fault.Opcode != opcode {
			t.Errorf(
				"Fault diagnostics mismatch\nwant:%#04x at 0x200\nhave:%#04x at %#04x",
				opcode,
				fault.Opcode,
				fault.Program,
			)
		}

		if st.Program != before.Program || st.Registers != before.Registers ||
			st.Memory != before.Memory {
			t.Errorf("%#04x: state changed by faulting instruction", opcode)
		}
	}
}
