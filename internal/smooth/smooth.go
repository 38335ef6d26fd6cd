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


// Package smooth implements the mean, Gaussian and median smoothing filters.
package smooth

import (
	"fmt"

	nl "github.com/mlnoga/edgelight/internal"
	"github.com/mlnoga/edgelight/internal/convolve"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/kernel"
	"github.com/mlnoga/edgelight/internal/pad"
	"github.com/mlnoga/edgelight/internal/qsort"
)

// Applies a size x size box filter
func Mean(g *grid.Grid, size int, p pad.Policy) (*grid.Grid, error) {
	k, err:=kernel.Mean(size)
	if err!=nil { return nil, err }
	return convolve.Correlate(g, k, p)
}

// Applies a size x size Gaussian filter with standard deviation sigma
func Gaussian(g *grid.Grid, size int, sigma float64, p pad.Policy) (*grid.Grid, error) {
	k, err:=kernel.Gaussian(size, sigma)
	if err!=nil { return nil, err }
	return convolve.Correlate(g, k, p)
}

// Replaces each pixel with the median of its size x size neighborhood.
// Fails with ErrNonFiniteValue on NaN or infinite input
func Median(g *grid.Grid, size int, p pad.Policy) (*grid.Grid, error) {
	if err:=grid.Check(g);       err!=nil { return nil, err }
	if err:=grid.CheckFinite(g); err!=nil { return nil, err }
	if size<1 || size%2==0 {
		return nil, fmt.Errorf("%w: median size %d must be odd and positive", grid.ErrInvalidArgument, size)
	}

	padded, err:=pad.Pad(g, size/2, p)
	if err!=nil { return nil, err }
	defer nl.PutArrayOfFloat64IntoPool(padded.Data)

	res, err:=grid.New(g.Height, g.Width)
	if err!=nil { return nil, err }

	convolve.ForEachRowBand(g.Height, func(lower, upper int) {
		window:=nl.GetArrayOfFloat64FromPool(size*size)
		medianRows(res, padded, size, window, lower, upper)
		nl.PutArrayOfFloat64IntoPool(window)
	})
	return res, nil
}

// Computes output rows [lower, upper) of the median filter into res, using window as scratch
func medianRows(res, padded *grid.Grid, size int, window []float64, lower, upper int) {
	pw:=padded.Width
	for y:=lower; y<upper; y++ {
		out:=res.Row(y)
		for x:=range out {
			for wy:=0; wy<size; wy++ {
				copy(window[wy*size:(wy+1)*size], padded.Data[(y+wy)*pw+x : (y+wy)*pw+x+size])
			}
			out[x]=qsort.MedianFloat64(window)
		}
	}
}
