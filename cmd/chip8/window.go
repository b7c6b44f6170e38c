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
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lassandro/gochip8/pkg/keypad"
	"github.com/lassandro/gochip8/pkg/machine"
)

const windowTitle = "CHIP-8"

// Physical keys for each entry of keypad.LAYOUT
var WINDOW_KEYS = [machine.KEY_COUNT]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

var (
	PIXEL_ON  = [4]byte{0xE8, 0xE8, 0xD0, 0xFF}
	PIXEL_OFF = [4]byte{0x18, 0x18, 0x20, 0xFF}
)

// window implements ebiten.Game. Update runs at machine.TICK_RATE so each
// call is one machine frame.
type window struct {
	h      *host
	image  *ebiten.Image
	pixels []byte
	title  string
}

func (w *window) Update() error {
	h := w.h

	if shouldexit.Load() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		h.restart()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF6) {
		h.paused = !h.paused
	}

	for i, key := range WINDOW_KEYS {
		h.keys.Set(keypad.KEYS[i], ebiten.IsKeyPressed(key))
	}

	h.frame()

	title := windowTitle
	if status := h.status(); status != "" {
		title = fmt.Sprintf("%s - %s", windowTitle, status)
	}

	if title != w.title {
		ebiten.SetWindowTitle(title)
		w.title = title
	}

	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT)
	}

	for i := 0; i < len(w.pixels); i += len(PIXEL_OFF) {
		copy(w.pixels[i:], PIXEL_OFF[:])
	}

	for x, y := range w.h.mc.Pixels() {
		copy(w.pixels[(y*machine.DISPLAY_WIDTH+x)*len(PIXEL_ON):], PIXEL_ON[:])
	}

	w.image.WritePixels(w.pixels)
	screen.DrawImage(w.image, nil)
}

func (w *window) Layout(_, _ int) (int, int) {
	return machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT
}

func runWindow(h *host, scale int) error {
	if scale < 1 {
		return fmt.Errorf("invalid window scale %d", scale)
	}

	if h.dbg != nil {
		h.debugStart()

		if shouldexit.Load() {
			return nil
		}
	}

	ebiten.SetWindowSize(machine.DISPLAY_WIDTH*scale, machine.DISPLAY_HEIGHT*scale)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(machine.TICK_RATE)

	return ebiten.RunGame(&window{
		h:      h,
		pixels: make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*4),
		title:  windowTitle,
	})
}
