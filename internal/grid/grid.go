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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Error kinds. Operations wrap these with context, test with errors.Is()
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNonFiniteValue    = errors.New("non-finite value")
)

// A single-channel image of real-valued samples, stored row-major.
// Values are unbounded during computation, and only clamped to [0,255] on export.
type Grid struct {
	Height int        // Number of rows
	Width  int        // Number of columns
	Data   []float64  // Samples, len(Data)==Height*Width, pixel (y,x) at y*Width+x
}

// Creates a new zero-initialized grid of the given dimensions
func New(height, width int) (*Grid, error) {
	if height<=0 || width<=0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrInvalidArgument, height, width)
	}
	return &Grid{Height: height, Width: width, Data: make([]float64, height*width)}, nil
}

// Creates a grid wrapping the given data, which is not copied
func NewFromData(height, width int, data []float64) (*Grid, error) {
	if height<=0 || width<=0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrInvalidArgument, height, width)
	}
	if len(data)!=height*width {
		return nil, fmt.Errorf("%w: %d samples for a %dx%d grid", ErrDimensionMismatch, len(data), height, width)
	}
	return &Grid{Height: height, Width: width, Data: data}, nil
}

// Creates a grid from a slice of rows, which must all have the same length. Data is copied
func NewFromRows(rows [][]float64) (*Grid, error) {
	if len(rows)==0 || len(rows[0])==0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidArgument)
	}
	g, err:=New(len(rows), len(rows[0]))
	if err!=nil { return nil, err }
	for y, row:=range rows {
		if len(row)!=g.Width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, y, len(row), g.Width)
		}
		copy(g.Data[y*g.Width:(y+1)*g.Width], row)
	}
	return g, nil
}

// Returns the value at row y, column x
func (g *Grid) At(y, x int) float64 {
	return g.Data[y*g.Width+x]
}

// Sets the value at row y, column x
func (g *Grid) Set(y, x int, v float64) {
	g.Data[y*g.Width+x]=v
}

// Returns row y as a slice aliasing the grid data
func (g *Grid) Row(y int) []float64 {
	return g.Data[y*g.Width:(y+1)*g.Width]
}

// Returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	return &Grid{Height: g.Height, Width: g.Width, Data: append([]float64(nil), g.Data...)}
}

// Returns the grid as a slice of freshly allocated rows
func (g *Grid) Rows() [][]float64 {
	rows:=make([][]float64, g.Height)
	for y:=range rows {
		rows[y]=append([]float64(nil), g.Row(y)...)
	}
	return rows
}

// Returns true if both grids have identical dimensions
func (g *Grid) SameShape(o *Grid) bool {
	return g.Height==o.Height && g.Width==o.Width
}

// Returns an error wrapping ErrDimensionMismatch if the grids differ in shape
func CheckSameShape(a, b *Grid) error {
	if !a.SameShape(b) {
		return fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, a.DimensionsToString(), b.DimensionsToString())
	}
	return nil
}

// Returns an error wrapping ErrInvalidArgument for nil or malformed grids
func Check(g *Grid) error {
	if g==nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidArgument)
	}
	if g.Height<=0 || g.Width<=0 {
		return fmt.Errorf("%w: grid dimensions %s must be positive", ErrInvalidArgument, g.DimensionsToString())
	}
	if len(g.Data)!=g.Height*g.Width {
		return fmt.Errorf("%w: %d samples for a %s grid", ErrDimensionMismatch, len(g.Data), g.DimensionsToString())
	}
	return nil
}

// Returns an error wrapping ErrNonFiniteValue if the grid contains NaN or infinite values
func CheckFinite(g *Grid) error {
	for i, d:=range g.Data {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: %g at row %d column %d", ErrNonFiniteValue, d, i/g.Width, i%g.Width)
		}
	}
	return nil
}

// Returns minimum and maximum value of the grid
func (g *Grid) MinMax() (min, max float64) {
	return floats.Min(g.Data), floats.Max(g.Data)
}

// Returns true if both grids have the same shape, and all values differ by at most epsilon
func (g *Grid) EqualApprox(o *Grid, epsilon float64) bool {
	return g.SameShape(o) && floats.EqualApprox(g.Data, o.Data, epsilon)
}

func (g *Grid) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", g.Height, g.Width)
}
