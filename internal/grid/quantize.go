// Copyright (C) 2021 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package grid

import (
	"image"
	"math"
)

// Converts a real-valued sample to 8 bits for export.
// NaN becomes 0, everything else is clamped to [0,255] and truncated towards zero
func Uint8(d float64) uint8 {
	// replace NaNs with zeros for export, else image output breaks
	if math.IsNaN(d) || d<0 { return 0 }
	if d>255 { return 255 }
	return uint8(d)
}

// Returns the grid quantized to 8 bits, one byte per pixel, row-major
func (g *Grid) ToUint8() []uint8 {
	res:=make([]uint8, len(g.Data))
	for i, d:=range g.Data {
		res[i]=Uint8(d)
	}
	return res
}

// Returns the grid as a Golang grayscale image, quantized to 8 bits
func (g *Grid) Image() *image.Gray {
	img:=image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.ToUint8())   // stride equals width for a fresh image
	return img
}
