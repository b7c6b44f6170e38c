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
	"github.com/ebitengine/oto/v3"
)

// Beeper implements machine.Audio on the host's default output device. The
// player runs for the lifetime of the Beeper; Start and Stop only gate the
// tone.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone
}

// New opens the audio device. Only one Beeper may exist per process.
func New() (*Beeper, error) {
	tone := NewTone()

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   tone.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})

	if err != nil {
		return nil, err
	}

	<-ready

	player := ctx.NewPlayer(tone)
	player.Play()

	return &Beeper{ctx: ctx, player: player, tone: tone}, nil
}

func (bp *Beeper) Start() {
	bp.tone.Open()
}

func (bp *Beeper) Stop() {
	bp.tone.Close()
}

func (bp *Beeper) Close() error {
	bp.tone.Close()
	return bp.player.Close()
}
