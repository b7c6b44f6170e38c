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

package keypad

import (
	"bytes"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
)

var _ machine.Keypad = (*Keypad)(nil)

func TestKeyForRune(t *testing.T) {
	tests := []struct {
		Rune  rune
		Key   uint8
		Valid bool
	}{
		{Rune: '1', Key: 0x1, Valid: true},
		{Rune: '4', Key: 0xC, Valid: true},
		{Rune: 'r', Key: 0xD, Valid: true},
		{Rune: 'F', Key: 0xE, Valid: true},
		{Rune: 'x', Key: 0x0, Valid: true},
		{Rune: 'z', Key: 0xA, Valid: true},
		{Rune: 'V', Key: 0xF, Valid: true},
		{Rune: '5', Valid: false},
		{Rune: ' ', Valid: false},
	}

	for _, test := range tests {
		key, ok := KeyForRune(test.Rune)
		assert.Equal(t, test.Valid, ok)

		if test.Valid {
			assert.Equal(t, test.Key, key)
		}
	}
}

func TestLayoutCoversKeypad(t *testing.T) {
	var seen [machine.KEY_COUNT]bool

	for _, key := range KEYS {
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestSet(t *testing.T) {
	var kp Keypad

	_, ok := kp.PressedKey()
	assert.False(t, ok)

	kp.Set(0xB, true)
	kp.Set(0x7, true)

	assert.True(t, kp.IsPressed(0xB))
	assert.True(t, kp.IsPressed(0x7))
	assert.False(t, kp.IsPressed(0x0))

	key, ok := kp.PressedKey()
	assert.True(t, ok)
	assert.Equal(t, uint8(0x7), key)

	// Keys set down do not expire
	for i := 0; i < 2*HOLD_FRAMES; i++ {
		kp.Decay()
	}
	assert.True(t, kp.IsPressed(0xB))

	kp.Set(0x7, false)
	key, _ = kp.PressedKey()
	assert.Equal(t, uint8(0xB), key)

	kp.Clear()
	_, ok = kp.PressedKey()
	assert.False(t, ok)
}

func TestPressDecay(t *testing.T) {
	var kp Keypad

	kp.Press(0x3)

	for i := 0; i < HOLD_FRAMES-1; i++ {
		kp.Decay()
		assert.True(t, kp.IsPressed(0x3))
	}

	kp.Decay()
	assert.False(t, kp.IsPressed(0x3))

	// Autorepeat keeps the key down
	kp.Press(0x3)
	kp.Decay()
	kp.Press(0x3)
	for i := 0; i < HOLD_FRAMES-1; i++ {
		kp.Decay()
	}
	assert.True(t, kp.IsPressed(0x3))
}

func TestOutOfRange(t *testing.T) {
	var kp Keypad

	kp.Set(0x10, true)
	kp.Press(0xFF)

	assert.False(t, kp.IsPressed(0x10))
	assert.False(t, kp.IsPressed(0xFF))

	_, ok := kp.PressedKey()
	assert.False(t, ok)
}

func TestMachineKeypad(t *testing.T) {
	var kp Keypad
	var mc machine.Machine
	mc.Devices = &machine.DeviceHandler{Keypad: &kp}

	// LD V1, K then spin
	assert.NoError(t, mc.LoadBin(bytes.NewReader([]byte{0xF1, 0x0A, 0x12, 0x02})))

	assert.NoError(t, mc.Step())
	st, _ := mc.Snapshot()
	assert.Equal(t, uint16(0x200), st.Program)

	kp.Press(0xE)
	assert.NoError(t, mc.Step())

	st, _ = mc.Snapshot()
	assert.Equal(t, uint16(0x202), st.Program)
	assert.Equal(t, uint8(0xE), st.Registers[1])
}
