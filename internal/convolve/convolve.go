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


package convolve

import (
	"fmt"
	"runtime"

	nl "github.com/mlnoga/edgelight/internal"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/pad"
)

// A square convolution kernel with odd side length Size=2*Radius()+1, stored row-major
type Kernel struct {
	Size int        `json:"size"`
	Data []float64  `json:"data"`
}

// Creates a kernel from the given rows, which must form an odd-sized square. Data is copied
func NewKernel(rows [][]float64) (*Kernel, error) {
	size:=len(rows)
	k:=&Kernel{Size: size, Data: make([]float64, 0, size*size)}
	for y, row:=range rows {
		if len(row)!=size {
			return nil, fmt.Errorf("%w: kernel row %d has %d entries, want %d", grid.ErrInvalidArgument, y, len(row), size)
		}
		k.Data=append(k.Data, row...)
	}
	if err:=k.Check(); err!=nil { return nil, err }
	return k, nil
}

// Returns the kernel radius r, with Size=2r+1
func (k *Kernel) Radius() int {
	return k.Size/2
}

// Returns the weight at row y, column x
func (k *Kernel) At(y, x int) float64 {
	return k.Data[y*k.Size+x]
}

// Returns the sum of all weights
func (k *Kernel) Sum() (sum float64) {
	for _, d:=range k.Data { sum+=d }
	return sum
}

// Returns an error wrapping grid.ErrInvalidArgument if the kernel is not an odd-sized square
func (k *Kernel) Check() error {
	if k==nil {
		return fmt.Errorf("%w: nil kernel", grid.ErrInvalidArgument)
	}
	if k.Size<1 || k.Size%2==0 {
		return fmt.Errorf("%w: kernel size %d must be odd and positive", grid.ErrInvalidArgument, k.Size)
	}
	if len(k.Data)!=k.Size*k.Size {
		return fmt.Errorf("%w: kernel of size %d has %d weights", grid.ErrInvalidArgument, k.Size, len(k.Data))
	}
	return nil
}


// Correlates the grid with the kernel, using the given padding policy at the borders.
// For each output pixel (y,x), this is the product-sum of the kernel and the window of the
// padded grid with top-left corner (y,x). The kernel is applied as given, not flipped.
// Returns a newly allocated grid of the same shape as g.
func Correlate(g *grid.Grid, k *Kernel, p pad.Policy) (*grid.Grid, error) {
	if err:=grid.Check(g); err!=nil { return nil, err }
	if err:=k.Check();     err!=nil { return nil, err }

	padded, err:=pad.Pad(g, k.Radius(), p)
	if err!=nil { return nil, err }
	defer nl.PutArrayOfFloat64IntoPool(padded.Data)

	res, err:=grid.New(g.Height, g.Width)
	if err!=nil { return nil, err }

	ForEachRowBand(g.Height, func(lower, upper int) {
		correlateRows(res, padded, k, lower, upper)
	})
	return res, nil
}

// Computes output rows [lower, upper) of the correlation into res
func correlateRows(res, padded *grid.Grid, k *Kernel, lower, upper int) {
	size, pw:=k.Size, padded.Width
	for y:=lower; y<upper; y++ {
		out:=res.Row(y)
		for x:=range out {
			sum:=0.0
			for ky:=0; ky<size; ky++ {
				window:=padded.Data[(y+ky)*pw+x : (y+ky)*pw+x+size]
				weights:=k.Data[ky*size : (ky+1)*size]
				for kx, w:=range weights {
					sum+=window[kx]*w
				}
			}
			out[x]=sum
		}
	}
}


// Calls f on disjoint bands of rows [lower, upper) covering [0, height), in parallel.
// Splits into 8*GOMAXPROCS work packages, and limits parallelism to GOMAXPROCS.
// Returns once all bands are done
func ForEachRowBand(height int, f func(lower, upper int)) {
	threads   :=runtime.GOMAXPROCS(0)
	numBatches:=8*threads
	batchSize :=(height+numBatches-1)/numBatches
	if batchSize<1 { batchSize=1 }
	if threads==1 || height<=batchSize {
		f(0, height)
		return
	}

	sem:=make(chan bool, threads)
	for lower:=0; lower<height; lower+=batchSize {
		upper:=lower+batchSize
		if upper>height { upper=height }

		sem <- true
		go func(lower, upper int) {
			defer func() { <-sem }()
			f(lower, upper)
		}(lower, upper)
	}

	for i:=0; i<cap(sem); i++ {  // wait for goroutines to finish
		sem <- true
	}
}
