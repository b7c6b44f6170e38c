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
	"math"
	"unicode"

	"github.com/lassandro/gochip8/pkg/machine"
)

// Host keys in keyboard order, left to right then top to bottom:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var LAYOUT = [machine.KEY_COUNT]rune{
	'1', '2', '3', '4',
	'q', 'w', 'e', 'r',
	'a', 's', 'd', 'f',
	'z', 'x', 'c', 'v',
}

// Keypad key for each entry of LAYOUT
var KEYS = [machine.KEY_COUNT]uint8{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

const (
	// Frames a key pressed through Press stays down
	HOLD_FRAMES = 6

	// Held until released through Set
	HELD = math.MaxInt
)

// Keypad implements machine.Keypad. Frontends with key up events use Set;
// terminals only see presses (and autorepeat) so they use Press and let the
// key expire through Decay.
type Keypad struct {
	held [machine.KEY_COUNT]int
}

func KeyForRune(r rune) (uint8, bool) {
	r = unicode.ToLower(r)

	for i, key := range LAYOUT {
		if key == r {
			return KEYS[i], true
		}
	}

	return 0, false
}

func (kp *Keypad) IsPressed(key uint8) bool {
	if key >= machine.KEY_COUNT {
		return false
	}

	return kp.held[key] > 0
}

// PressedKey reports the lowest key held down.
func (kp *Keypad) PressedKey() (uint8, bool) {
	for key, frames := range kp.held {
		if frames > 0 {
			return uint8(key), true
		}
	}

	return 0, false
}

func (kp *Keypad) Set(key uint8, down bool) {
	if key >= machine.KEY_COUNT {
		return
	}

	if down {
		kp.held[key] = HELD
	} else {
		kp.held[key] = 0
	}
}

func (kp *Keypad) Press(key uint8) {
	if key >= machine.KEY_COUNT {
		return
	}

	kp.held[key] = HOLD_FRAMES
}

// Decay ages keys pressed through Press by one frame.
func (kp *Keypad) Decay() {
	for key, frames := range kp.held {
		if frames > 0 && frames <= HOLD_FRAMES {
			kp.held[key]--
		}
	}
}

func (kp *Keypad) Clear() {
	kp.held = [machine.KEY_COUNT]int{}
}
