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


// Package kernel generates the convolution kernels for smoothing and edge detection.
package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/mlnoga/edgelight/internal/convolve"
	"github.com/mlnoga/edgelight/internal/grid"
)

func checkSize(size int) error {
	if size<1 || size%2==0 {
		return fmt.Errorf("%w: kernel size %d must be odd and positive", grid.ErrInvalidArgument, size)
	}
	return nil
}

// Returns a size x size box kernel with uniform weights 1/size²
func Mean(size int) (*convolve.Kernel, error) {
	if err:=checkSize(size); err!=nil { return nil, err }
	data:=make([]float64, size*size)
	w:=1.0/float64(size*size)
	for i:=range data { data[i]=w }
	return &convolve.Kernel{Size: size, Data: data}, nil
}

// Returns a size x size Gaussian kernel with standard deviation sigma,
// normalized so the weights sum to one
func Gaussian(size int, sigma float64) (*convolve.Kernel, error) {
	if err:=checkSize(size); err!=nil { return nil, err }
	if !(sigma>0) || math.IsInf(sigma, 1) {
		return nil, fmt.Errorf("%w: gaussian sigma %g must be positive and finite", grid.ErrInvalidArgument, sigma)
	}

	r:=size/2
	data:=make([]float64, size*size)
	denom:=2*sigma*sigma
	for y:=-r; y<=r; y++ {
		for x:=-r; x<=r; x++ {
			data[(y+r)*size+x+r]=math.Exp(-float64(x*x+y*y)/denom)
		}
	}
	floats.Scale(1/floats.Sum(data), data)
	return &convolve.Kernel{Size: size, Data: data}, nil
}

func fixed(rows [3][3]float64) *convolve.Kernel {
	data:=make([]float64, 0, 9)
	for _, row:=range rows { data=append(data, row[:]...) }
	return &convolve.Kernel{Size: 3, Data: data}
}

// Returns the Sobel kernels for horizontal (gx) and vertical (gy) gradients
func Sobel() (gx, gy *convolve.Kernel) {
	gx=fixed([3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
	gy=fixed([3][3]float64{
		{-1, -2, -1},
		{ 0,  0,  0},
		{ 1,  2,  1},
	})
	return gx, gy
}

// Returns the Prewitt kernels for horizontal (gx) and vertical (gy) gradients
func Prewitt() (gx, gy *convolve.Kernel) {
	gx=fixed([3][3]float64{
		{-1, 0, 1},
		{-1, 0, 1},
		{-1, 0, 1},
	})
	gy=fixed([3][3]float64{
		{-1, -1, -1},
		{ 0,  0,  0},
		{ 1,  1,  1},
	})
	return gx, gy
}

// Returns the 4-neighborhood Laplacian kernel
func Laplacian() *convolve.Kernel {
	return fixed([3][3]float64{
		{0,  1, 0},
		{1, -4, 1},
		{0,  1, 0},
	})
}
