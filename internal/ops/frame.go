// Copyright (C) 2020 Markus L. Noga
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


package ops

import (
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/overlay"
	"github.com/mlnoga/edgelight/internal/stats"
)

// A grayscale image moving through a pipeline, with the layers derived from it
type Frame struct {
	ID       int            // Sequence number, used in log lines and file name patterns
	FileName string         // Original file name, if loaded from file
	Source   *grid.Grid     // Grayscale image as loaded
	Data     *grid.Grid     // Current working grid: smoothed image or edge map
	Binary   *grid.Grid     // Binary map, after binarization
	Overlay  *overlay.RGB   // Edge overlay, after overlaying
	Stats    *stats.Stats   // Statistics of Data, nil if Data is not finite
}

// Creates a frame from a grid. Source and Data both refer to g
func NewFrame(id int, fileName string, g *grid.Grid) *Frame {
	f:=&Frame{ID: id, FileName: fileName, Source: g, Data: g}
	f.UpdateStats()
	return f
}

// Replaces the working grid and recalculates its statistics
func (f *Frame) SetData(g *grid.Grid) {
	f.Data=g
	f.UpdateStats()
}

// Recalculates statistics of the working grid
func (f *Frame) UpdateStats() {
	s, err:=stats.NewStats(f.Data)
	if err!=nil { s=nil }
	f.Stats=s
}

func (f *Frame) DimensionsToString() string {
	if f.Data==nil { return "0x0" }
	return f.Data.DimensionsToString()
}
