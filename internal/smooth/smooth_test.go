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

package smooth

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/pad"
)

var policies=[]pad.Policy{pad.Zero, pad.Replicate, pad.Reflect}

func TestMeanOfZerosIsZero(t *testing.T) {
	g, _:=grid.New(5, 5)
	res, err:=Mean(g, 3, pad.Zero)
	if err!=nil {
		t.Fatalf("mean: %s", err)
	}
	for i, d:=range res.Data {
		if d!=0 {
			t.Errorf("pixel %d=%g; want 0", i, d)
		}
	}
}

func TestGaussianImpulseIsSymmetric(t *testing.T) {
	g, _:=grid.NewFromRows([][]float64{{0, 0, 0}, {0, 255, 0}, {0, 0, 0}})
	res, err:=Gaussian(g, 3, 1.0, pad.Zero)
	if err!=nil {
		t.Fatalf("gaussian: %s", err)
	}
	epsilon:=1e-9
	center:=res.At(1, 1)
	corners:=[]float64{res.At(0, 0), res.At(0, 2), res.At(2, 0), res.At(2, 2)}
	edges:=[]float64{res.At(0, 1), res.At(1, 0), res.At(1, 2), res.At(2, 1)}
	for _, c:=range corners {
		if math.Abs(c-corners[0])>epsilon {
			t.Errorf("corners differ: %v", corners)
		}
		if !(c>0) || !(c<edges[0]) {
			t.Errorf("corner %g; want smallest nonzero value below edge %g", c, edges[0])
		}
	}
	for _, e:=range edges {
		if math.Abs(e-edges[0])>epsilon {
			t.Errorf("edges differ: %v", edges)
		}
		if !(e<center) {
			t.Errorf("edge %g not below center %g", e, center)
		}
	}
	if math.Abs(center-255*0.204180)>1e-3 {
		t.Errorf("center=%f; want %f", center, 255*0.204180)
	}
}

func TestMedianOfConstantIsConstant(t *testing.T) {
	g, _:=grid.New(7, 9)
	for i:=range g.Data {
		g.Data[i]=42
	}
	for _, size:=range []int{1, 3, 5, 7, 11} {
		for _, p:=range []pad.Policy{pad.Replicate, pad.Reflect} {
			res, err:=Median(g, size, p)
			if err!=nil {
				t.Fatalf("size=%d %v: %s", size, p, err)
			}
			for i, d:=range res.Data {
				if d!=42 {
					t.Fatalf("size=%d %v pixel %d=%g; want 42", size, p, i, d)
				}
			}
		}
	}
}

// Sorts each window of the padded grid to find the median
func referenceMedian(t *testing.T, g *grid.Grid, size int, p pad.Policy) *grid.Grid {
	padded, err:=pad.Pad(g, size/2, p)
	if err!=nil {
		t.Fatalf("pad: %s", err)
	}
	res, _:=grid.New(g.Height, g.Width)
	window:=make([]float64, 0, size*size)
	for y:=0; y<g.Height; y++ {
		for x:=0; x<g.Width; x++ {
			window=window[:0]
			for wy:=0; wy<size; wy++ {
				for wx:=0; wx<size; wx++ {
					window=append(window, padded.At(y+wy, x+wx))
				}
			}
			sort.Float64s(window)
			res.Set(y, x, window[len(window)/2])
		}
	}
	return res
}

func TestMedianMatchesReference(t *testing.T) {
	rng:=fastrand.RNG{}
	for _, size:=range []int{3, 5, 7} {
		for _, p:=range policies {
			g, _:=grid.New(23, 17)
			for i:=range g.Data {
				g.Data[i]=float64(rng.Uint32n(256))
			}
			got, err:=Median(g, size, p)
			if err!=nil {
				t.Fatalf("size=%d %v: %s", size, p, err)
			}
			if want:=referenceMedian(t, g, size, p); !got.EqualApprox(want, 0) {
				t.Errorf("size=%d %v: median differs from sorted reference", size, p)
			}
		}
	}
}

func TestMedianRemovesSaltNoise(t *testing.T) {
	g, _:=grid.New(5, 5)
	for i:=range g.Data {
		g.Data[i]=10
	}
	g.Set(2, 2, 255)
	res, err:=Median(g, 3, pad.Reflect)
	if err!=nil {
		t.Fatalf("median: %s", err)
	}
	if res.At(2, 2)!=10 {
		t.Errorf("center=%g; want 10", res.At(2, 2))
	}
	if g.At(2, 2)!=255 {
		t.Errorf("input modified")
	}
}

type smoothErrorTestCase struct {
	Name string
	Run  func(g *grid.Grid) error
}

func TestSmoothErrors(t *testing.T) {
	g, _:=grid.NewFromRows([][]float64{{1, 2}, {3, 4}})
	tcs:=[]smoothErrorTestCase{
		{"mean even", func(g *grid.Grid) error { _, err:=Mean(g, 4, pad.Zero); return err }},
		{"gauss sigma", func(g *grid.Grid) error { _, err:=Gaussian(g, 3, 0, pad.Zero); return err }},
		{"gauss even", func(g *grid.Grid) error { _, err:=Gaussian(g, 2, 1, pad.Zero); return err }},
		{"median even", func(g *grid.Grid) error { _, err:=Median(g, 2, pad.Zero); return err }},
		{"median zero", func(g *grid.Grid) error { _, err:=Median(g, 0, pad.Zero); return err }},
		{"median policy", func(g *grid.Grid) error { _, err:=Median(g, 3, pad.Policy(7)); return err }},
		{"median nil", func(*grid.Grid) error { _, err:=Median(nil, 3, pad.Zero); return err }},
	}
	for _, tc:=range tcs {
		if err:=tc.Run(g); !errors.Is(err, grid.ErrInvalidArgument) {
			t.Errorf("%s: got %v; want ErrInvalidArgument", tc.Name, err)
		}
	}
}

func TestMedianNonFinite(t *testing.T) {
	g, _:=grid.New(5, 5)
	for i:=range g.Data {
		g.Data[i]=float64(i)
	}
	g.Data[12]=math.NaN()
	for _, size:=range []int{3, 5} {
		if _, err:=Median(g, size, pad.Reflect); !errors.Is(err, grid.ErrNonFiniteValue) {
			t.Errorf("size %d NaN: got %v; want ErrNonFiniteValue", size, err)
		}
	}
	g.Data[12]=math.Inf(1)
	if _, err:=Median(g, 3, pad.Zero); !errors.Is(err, grid.ErrNonFiniteValue) {
		t.Errorf("infinity: got %v; want ErrNonFiniteValue", err)
	}
}
