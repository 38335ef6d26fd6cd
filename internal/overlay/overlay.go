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


// Package overlay binarizes edge maps and highlights them on top of grayscale images.
package overlay

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mlnoga/edgelight/internal/grid"
)

// Value of set pixels in a binary map
const On=255.0

// Default highlight color, pure red
var Red=colorful.Color{R: 1, G: 0, B: 0}


// Returns a binary map which is On where the edge map is at least threshold, and 0 elsewhere
func Binarize(edgeMap *grid.Grid, threshold float64) (*grid.Grid, error) {
	if err:=grid.Check(edgeMap); err!=nil { return nil, err }
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: threshold %g", grid.ErrNonFiniteValue, threshold)
	}
	if err:=grid.CheckFinite(edgeMap); err!=nil { return nil, err }

	res, err:=grid.New(edgeMap.Height, edgeMap.Width)
	if err!=nil { return nil, err }
	for i, d:=range edgeMap.Data {
		if d>=threshold { res.Data[i]=On }
	}
	return res, nil
}


// An 8-bit RGB image with interleaved channels
type RGB struct {
	Height int
	Width  int
	Pix    []uint8  // R,G,B per pixel, row-major
}

// Returns the red, green and blue values at the given coordinates
func (r *RGB) At(y, x int) (uint8, uint8, uint8) {
	i:=3*(y*r.Width+x)
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// Converts to an opaque standard library image
func (r *RGB) Image() *image.RGBA {
	img:=image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, j:=0, 0; i<len(r.Pix); i, j=i+3, j+4 {
		img.Pix[j  ]=r.Pix[i  ]
		img.Pix[j+1]=r.Pix[i+1]
		img.Pix[j+2]=r.Pix[i+2]
		img.Pix[j+3]=255
	}
	return img
}


// Highlights the set pixels of the binary map in pure red on top of the grayscale image
func OverlayEdges(gray, binary *grid.Grid) (*RGB, error) {
	return OverlayEdgesColor(gray, binary, Red)
}

// Highlights the set pixels of the binary map in the given color on top of the grayscale image.
// A pixel is set if its binary value quantizes to a non-zero byte. All other pixels replicate the quantized grayscale value on all three channels
func OverlayEdgesColor(gray, binary *grid.Grid, c colorful.Color) (*RGB, error) {
	if err:=grid.Check(gray);   err!=nil { return nil, err }
	if err:=grid.Check(binary); err!=nil { return nil, err }
	if err:=grid.CheckSameShape(gray, binary); err!=nil { return nil, err }

	cr, cg, cb:=c.Clamped().RGB255()
	res:=&RGB{Height: gray.Height, Width: gray.Width, Pix: make([]uint8, 3*len(gray.Data))}
	for i, d:=range gray.Data {
		p:=res.Pix[3*i : 3*i+3]
		if grid.Uint8(binary.Data[i])>0 {
			p[0], p[1], p[2]=cr, cg, cb
		} else {
			v:=grid.Uint8(d)
			p[0], p[1], p[2]=v, v, v
		}
	}
	return res, nil
}
