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

// Package bitplane walks packed monochrome bitmaps one bit at a time. Bits
// are ordered MSB-first: bit 7 of byte 0 is the first bit of the span.
package bitplane

// Reader produces the bits of a byte span in order.
type Reader struct {
	data  []byte
	index int
	mask  uint8
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, mask: 1 << 7}
}

// Next returns the next bit, or ok == false once the span is exhausted.
func (r *Reader) Next() (bit bool, ok bool) {
	if r.index >= len(r.data) {
		return false, false
	}

	bit = r.data[r.index]&r.mask != 0

	r.mask >>= 1
	if r.mask == 0 {
		r.mask = 1 << 7
		r.index++
	}

	return bit, true
}

// Len is the number of bits not yet read.
func (r *Reader) Len() int {
	if r.index >= len(r.data) {
		return 0
	}

	remaining := (len(r.data) - r.index - 1) * 8

	for mask := r.mask; mask != 0; mask >>= 1 {
		remaining++
	}

	return remaining
}

// Cursor is a read/modify/write position over a byte span. Moving past the
// last bit continues at the first one.
type Cursor struct {
	data  []byte
	index int
	mask  uint8
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, mask: 1 << 7}
}

// Advance moves the cursor one bit forward, wrapping at the end of the span.
func (c *Cursor) Advance() {
	c.mask >>= 1
	if c.mask == 0 {
		c.mask = 1 << 7
		c.index++
		if c.index >= len(c.data) {
			c.index = 0
		}
	}
}

// Skip advances the cursor by count bits.
func (c *Cursor) Skip(count int) {
	if len(c.data) == 0 {
		return
	}

	count %= len(c.data) * 8

	for i := 0; i < count; i++ {
		c.Advance()
	}
}

// Get reports whether the bit under the cursor is set.
func (c *Cursor) Get() bool {
	return c.data[c.index]&c.mask != 0
}

// Toggle flips the bit under the cursor and returns its previous value.
func (c *Cursor) Toggle() bool {
	was := c.data[c.index]&c.mask != 0
	c.data[c.index] ^= c.mask
	return was
}
