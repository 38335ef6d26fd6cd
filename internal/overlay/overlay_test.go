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

package overlay_test

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mlnoga/edgelight/internal/edge"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/kernel"
	"github.com/mlnoga/edgelight/internal/overlay"
	"github.com/mlnoga/edgelight/internal/pad"
)

// 4x8 image, left half 0 and right half 255, and its rescaled Sobel edge map
func stepAndEdges(t *testing.T) (*grid.Grid, *grid.Grid) {
	g, _:=grid.New(4, 8)
	for y:=0; y<g.Height; y++ {
		for x:=4; x<g.Width; x++ {
			g.Set(y, x, 255)
		}
	}
	gx, gy:=kernel.Sobel()
	edges, err:=edge.GradientMagnitude(g, gx, gy, pad.Reflect, true)
	if err!=nil {
		t.Fatalf("edges: %s", err)
	}
	return g, edges
}

func TestBinarizeStepBand(t *testing.T) {
	_, edges:=stepAndEdges(t)
	bin, err:=overlay.Binarize(edges, 100)
	if err!=nil {
		t.Fatalf("binarize: %s", err)
	}
	for y:=0; y<bin.Height; y++ {
		for x:=0; x<bin.Width; x++ {
			want:=0.0
			if x==3 || x==4 {
				want=255
			}
			if bin.At(y, x)!=want {
				t.Errorf("(%d,%d)=%g; want %g", y, x, bin.At(y, x), want)
			}
		}
	}
}

type binarizeTestCase struct {
	Value     float64
	Threshold float64
	Expected  float64
}

func TestBinarizeThresholdIsInclusive(t *testing.T) {
	tcs:=[]binarizeTestCase{
		{99.9, 100, 0},
		{100, 100, 255},
		{100.1, 100, 255},
		{0, 0, 255},
		{-1, 0, 0},
		{255, 255, 255},
		{300, 255, 255},
	}
	for _, tc:=range tcs {
		g, _:=grid.NewFromRows([][]float64{{tc.Value}})
		res, err:=overlay.Binarize(g, tc.Threshold)
		if err!=nil {
			t.Fatalf("%g >= %g: %s", tc.Value, tc.Threshold, err)
		}
		if res.Data[0]!=tc.Expected {
			t.Errorf("binarize(%g, %g)=%g; want %g", tc.Value, tc.Threshold, res.Data[0], tc.Expected)
		}
	}
}

func TestBinarizeIsIdempotent(t *testing.T) {
	_, edges:=stepAndEdges(t)
	for _, th:=range []float64{1, 100, 255} {
		once, err:=overlay.Binarize(edges, th)
		if err!=nil {
			t.Fatalf("threshold %g: %s", th, err)
		}
		twice, err:=overlay.Binarize(once, th)
		if err!=nil {
			t.Fatalf("threshold %g: %s", th, err)
		}
		if !once.EqualApprox(twice, 0) {
			t.Errorf("threshold %g: re-binarizing changed the map", th)
		}
	}
}

func TestBinarizeRejectsNonFinite(t *testing.T) {
	g, _:=grid.NewFromRows([][]float64{{1, math.NaN()}})
	if _, err:=overlay.Binarize(g, 100); !errors.Is(err, grid.ErrNonFiniteValue) {
		t.Errorf("NaN input: got %v; want ErrNonFiniteValue", err)
	}
	g, _=grid.NewFromRows([][]float64{{1, math.Inf(-1)}})
	if _, err:=overlay.Binarize(g, 100); !errors.Is(err, grid.ErrNonFiniteValue) {
		t.Errorf("Inf input: got %v; want ErrNonFiniteValue", err)
	}
	g, _=grid.NewFromRows([][]float64{{1, 2}})
	if _, err:=overlay.Binarize(g, math.NaN()); !errors.Is(err, grid.ErrNonFiniteValue) {
		t.Errorf("NaN threshold: got %v; want ErrNonFiniteValue", err)
	}
}

func TestOverlayStepBandIsRed(t *testing.T) {
	g, edges:=stepAndEdges(t)
	bin, _:=overlay.Binarize(edges, 100)
	rgb, err:=overlay.OverlayEdges(g, bin)
	if err!=nil {
		t.Fatalf("overlay: %s", err)
	}
	if rgb.Height!=4 || rgb.Width!=8 || len(rgb.Pix)!=3*4*8 {
		t.Fatalf("got %dx%d with %d bytes", rgb.Height, rgb.Width, len(rgb.Pix))
	}
	for y:=0; y<rgb.Height; y++ {
		for x:=0; x<rgb.Width; x++ {
			r, gr, b:=rgb.At(y, x)
			if x==3 || x==4 {
				if r!=255 || gr!=0 || b!=0 {
					t.Errorf("(%d,%d)=(%d,%d,%d); want red", y, x, r, gr, b)
				}
				continue
			}
			v:=uint8(g.At(y, x))
			if r!=v || gr!=v || b!=v {
				t.Errorf("(%d,%d)=(%d,%d,%d); want gray %d", y, x, r, gr, b, v)
			}
		}
	}

	img:=rgb.Image()
	if c:=img.RGBAAt(3, 0); c.R!=255 || c.G!=0 || c.B!=0 || c.A!=255 {
		t.Errorf("image pixel (3,0)=%v; want opaque red", c)
	}
	if c:=img.RGBAAt(7, 2); c.R!=255 || c.G!=255 || c.B!=255 || c.A!=255 {
		t.Errorf("image pixel (7,2)=%v; want opaque white", c)
	}
}

func TestOverlayColorAndQuantization(t *testing.T) {
	gray, _:=grid.NewFromRows([][]float64{{-5, 300, math.NaN(), 12.7}})
	bin, _:=grid.NewFromRows([][]float64{{0, 0, 0, 255}})
	c, err:=colorful.Hex("#00ff00")
	if err!=nil {
		t.Fatalf("hex: %s", err)
	}
	rgb, err:=overlay.OverlayEdgesColor(gray, bin, c)
	if err!=nil {
		t.Fatalf("overlay: %s", err)
	}
	want:=[]uint8{0, 0, 0, 255, 255, 255, 0, 0, 0, 0, 255, 0}
	for i, w:=range want {
		if rgb.Pix[i]!=w {
			t.Errorf("byte %d=%d; want %d", i, rgb.Pix[i], w)
		}
	}
}

func TestOverlayDimensionMismatch(t *testing.T) {
	gray, _:=grid.New(3, 4)
	bin, _:=grid.New(4, 3)
	if _, err:=overlay.OverlayEdges(gray, bin); !errors.Is(err, grid.ErrDimensionMismatch) {
		t.Errorf("got %v; want ErrDimensionMismatch", err)
	}
}

func TestOverlayQuantizesBinaryMap(t *testing.T) {
	gray, _:=grid.NewFromRows([][]float64{{10, 20, 30, 40}})
	bin, _:=grid.NewFromRows([][]float64{{0.5, 1, -3, math.NaN()}})
	rgb, err:=overlay.OverlayEdges(gray, bin)
	if err!=nil {
		t.Fatalf("overlay: %s", err)
	}
	want:=[]uint8{10, 10, 10, 255, 0, 0, 30, 30, 30, 40, 40, 40}
	for i, w:=range want {
		if rgb.Pix[i]!=w {
			t.Errorf("Pix[%d]=%d; want %d", i, rgb.Pix[i], w)
		}
	}
}
