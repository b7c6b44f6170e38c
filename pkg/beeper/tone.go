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

package beeper

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	SAMPLE_RATE = 44100
	SAMPLE_SIZE = 4
	FREQUENCY   = 440
	VOLUME      = 0.2
)

// Tone is an endless mono square wave in 32-bit float little endian
// samples. While the gate is closed it produces silence.
type Tone struct {
	SampleRate int
	Frequency  float64
	Volume     float32

	gate  atomic.Bool
	phase float64
}

func NewTone() *Tone {
	return &Tone{
		SampleRate: SAMPLE_RATE,
		Frequency:  FREQUENCY,
		Volume:     VOLUME,
	}
}

func (tone *Tone) Open()  { tone.gate.Store(true) }
func (tone *Tone) Close() { tone.gate.Store(false) }

func (tone *Tone) IsOpen() bool {
	return tone.gate.Load()
}

// Read only fills whole samples; a short buffer yields n == 0.
func (tone *Tone) Read(p []byte) (n int, err error) {
	step := tone.Frequency / float64(tone.SampleRate)
	open := tone.IsOpen()

	for ; n+SAMPLE_SIZE <= len(p); n += SAMPLE_SIZE {
		var sample float32

		if open {
			sample = tone.Volume
			if tone.phase >= 0.5 {
				sample = -tone.Volume
			}

			tone.phase += step
			tone.phase -= math.Floor(tone.phase)
		}

		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(sample))
	}

	return n, nil
}
