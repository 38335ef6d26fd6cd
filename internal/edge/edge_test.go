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

package edge

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/edgelight/internal/convolve"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/kernel"
	"github.com/mlnoga/edgelight/internal/pad"
)

// 4x8 image, left half 0 and right half 255
func stepImage(t *testing.T) *grid.Grid {
	g, err:=grid.New(4, 8)
	if err!=nil {
		t.Fatalf("grid: %s", err)
	}
	for y:=0; y<g.Height; y++ {
		for x:=4; x<g.Width; x++ {
			g.Set(y, x, 255)
		}
	}
	return g
}

func TestSobelStepEdge(t *testing.T) {
	g:=stepImage(t)
	gx, gy:=kernel.Sobel()
	res, err:=GradientMagnitude(g, gx, gy, pad.Reflect, true)
	if err!=nil {
		t.Fatalf("gradient: %s", err)
	}
	for y:=0; y<res.Height; y++ {
		for x:=0; x<res.Width; x++ {
			want:=0.0
			if x==3 || x==4 {
				want=255
			}
			if math.Abs(res.At(y, x)-want)>1e-9 {
				t.Errorf("(%d,%d)=%g; want %g", y, x, res.At(y, x), want)
			}
		}
	}
}

func TestGradientWithoutRescale(t *testing.T) {
	g:=stepImage(t)
	gx, gy:=kernel.Prewitt()
	res, err:=GradientMagnitude(g, gx, gy, pad.Replicate, false)
	if err!=nil {
		t.Fatalf("gradient: %s", err)
	}
	// three rows of weight 1 across the step
	if res.At(1, 3)!=3*255 || res.At(1, 0)!=0 {
		t.Errorf("row 1 = %v", res.Row(1))
	}
	if g.At(0, 4)!=255 || g.At(0, 3)!=0 {
		t.Errorf("input modified")
	}
}

type constantTestCase struct {
	Detector Detector
	Rescale  bool
}

func TestConstantImageHasNoEdges(t *testing.T) {
	g, _:=grid.New(6, 6)
	for i:=range g.Data {
		g.Data[i]=100
	}
	tcs:=[]constantTestCase{
		{Sobel, true}, {Sobel, false}, {Prewitt, true}, {Laplacian, true}, {Laplacian, false},
	}
	for _, tc:=range tcs {
		p:=Params{Detector: tc.Detector, Padding: pad.Reflect, Rescale: tc.Rescale}
		res, err:=Detect(g, p)
		if err!=nil {
			t.Fatalf("%v: %s", tc.Detector, err)
		}
		for i, d:=range res.Data {
			if math.Abs(d)>1e-9 {
				t.Errorf("%v rescale=%v pixel %d=%g; want 0", tc.Detector, tc.Rescale, i, d)
			}
		}
	}
}

func TestLaplacianResponseIsNonNegative(t *testing.T) {
	g, _:=grid.NewFromRows([][]float64{{0, 0, 0}, {0, 10, 0}, {0, 0, 0}})
	res, err:=LaplacianResponse(g, pad.Zero, false)
	if err!=nil {
		t.Fatalf("laplacian: %s", err)
	}
	want:=[][]float64{{0, 10, 0}, {10, 40, 10}, {0, 10, 0}}
	for y, row:=range want {
		for x, w:=range row {
			if res.At(y, x)!=w {
				t.Errorf("(%d,%d)=%g; want %g", y, x, res.At(y, x), w)
			}
		}
	}
}

func TestRescale(t *testing.T) {
	g, _:=grid.NewFromRows([][]float64{{2, 4}, {6, 10}})
	res:=Rescale(g)
	want:=[]float64{0, 63.75, 127.5, 255}
	for i, w:=range want {
		if math.Abs(res.Data[i]-w)>1e-9 {
			t.Errorf("pixel %d=%g; want %g", i, res.Data[i], w)
		}
	}
	if g.Data[3]!=10 {
		t.Errorf("input modified")
	}

	flat, _:=grid.NewFromRows([][]float64{{7, 7}, {7, 7}})
	if res:=Rescale(flat); !res.EqualApprox(flat, 0) || &res.Data[0]==&flat.Data[0] {
		t.Errorf("uniform grid: got %v; want unchanged copy", res.Data)
	}
}

func TestDetectSmoothingReducesPeak(t *testing.T) {
	g:=stepImage(t)
	raw, err:=Detect(g, Params{Detector: Sobel, Padding: pad.Reflect})
	if err!=nil {
		t.Fatalf("raw: %s", err)
	}
	smoothed, err:=Detect(g, Params{Detector: Sobel, Smooth: true, Size: 5, Sigma: 1.5, Padding: pad.Reflect})
	if err!=nil {
		t.Fatalf("smoothed: %s", err)
	}
	_, rawMax:=raw.MinMax()
	_, smoothMax:=smoothed.MinMax()
	if !(smoothMax<rawMax) {
		t.Errorf("smoothed peak %g not below raw peak %g", smoothMax, rawMax)
	}
	// smoothing spreads the response beyond the two step columns
	if !(smoothed.At(1, 2)>0) || raw.At(1, 2)!=0 {
		t.Errorf("column 2: raw %g smoothed %g", raw.At(1, 2), smoothed.At(1, 2))
	}
}

type paramsTestCase struct {
	Params Params
	Valid  bool
}

func TestParamsValidate(t *testing.T) {
	tcs:=[]paramsTestCase{
		{DefaultParams(), true},
		{Params{Detector: Laplacian, Padding: pad.Zero}, true},
		{Params{Detector: Sobel, Smooth: true, Size: 1, Sigma: 1, Padding: pad.Zero}, false},
		{Params{Detector: Sobel, Smooth: true, Size: 4, Sigma: 1, Padding: pad.Zero}, false},
		{Params{Detector: Sobel, Smooth: true, Size: 3, Sigma: 0, Padding: pad.Zero}, false},
		{Params{Detector: Sobel, Smooth: true, Size: 3, Sigma: math.NaN(), Padding: pad.Zero}, false},
		{Params{Detector: Detector(9), Padding: pad.Zero}, false},
		{Params{Detector: Sobel, Padding: pad.Policy(9)}, false},
	}
	for i, tc:=range tcs {
		err:=tc.Params.Validate()
		if tc.Valid && err!=nil {
			t.Errorf("case %d: unexpected error %s", i, err)
		}
		if !tc.Valid && !errors.Is(err, grid.ErrInvalidArgument) {
			t.Errorf("case %d: got %v; want ErrInvalidArgument", i, err)
		}
	}
}

func TestGradientKernelMismatch(t *testing.T) {
	g:=stepImage(t)
	gx, _:=kernel.Sobel()
	big, _:=kernel.Mean(5)
	if _, err:=GradientMagnitude(g, gx, big, pad.Zero, false); !errors.Is(err, grid.ErrDimensionMismatch) {
		t.Errorf("got %v; want ErrDimensionMismatch", err)
	}
	if _, err:=GradientMagnitude(g, gx, (*convolve.Kernel)(nil), pad.Zero, false); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("nil kernel: got %v; want ErrInvalidArgument", err)
	}
}

func TestParamsJSON(t *testing.T) {
	in:=`{"detector":"Prewitt","smooth":true,"size":5,"sigma":2,"padding":"replicate","rescale":false}`
	var p Params
	if err:=json.Unmarshal([]byte(in), &p); err!=nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if p.Detector!=Prewitt || p.Padding!=pad.Replicate || p.Size!=5 || p.Sigma!=2 || !p.Smooth || p.Rescale {
		t.Errorf("got %+v", p)
	}
	if err:=json.Unmarshal([]byte(`{"detector":"canny"}`), &p); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("unknown detector: got %v; want ErrInvalidArgument", err)
	}
}
