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

package random

import (
	"math/rand"
	"time"
)

// Random is the byte source behind the RND instruction. A fixed seed makes
// a run reproducible, which the tests and the -seed flag rely on.
type Random struct {
	rng *rand.Rand
}

// New seeds from the wall clock.
func New() *Random {
	return NewSeeded(time.Now().UnixNano())
}

func NewSeeded(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (rnd *Random) Uint8() uint8 {
	return uint8(rnd.rng.Intn(256))
}
