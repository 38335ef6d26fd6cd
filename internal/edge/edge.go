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


// Package edge combines directional or isotropic kernel responses into edge strength maps.
package edge

import (
	"fmt"
	"math"
	"strings"

	"github.com/mlnoga/edgelight/internal/convolve"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/kernel"
	"github.com/mlnoga/edgelight/internal/pad"
	"github.com/mlnoga/edgelight/internal/smooth"
)

// Upper bound of the display range used by Rescale
const DisplayMax=255.0


// Returns sqrt(fx²+fy²), where fx and fy are the correlations of g with gx and gy.
// Optionally rescales the result to [0,DisplayMax]
func GradientMagnitude(g *grid.Grid, gx, gy *convolve.Kernel, p pad.Policy, rescale bool) (*grid.Grid, error) {
	if gx==nil || gy==nil {
		return nil, fmt.Errorf("%w: nil gradient kernel", grid.ErrInvalidArgument)
	}
	if gx.Size!=gy.Size {
		return nil, fmt.Errorf("%w: gradient kernels %dx%d and %dx%d", grid.ErrDimensionMismatch, gx.Size, gx.Size, gy.Size, gy.Size)
	}
	fx, err:=convolve.Correlate(g, gx, p)
	if err!=nil { return nil, err }
	fy, err:=convolve.Correlate(g, gy, p)
	if err!=nil { return nil, err }

	// fx is freshly allocated, reuse it for the result
	for i, x:=range fx.Data {
		y:=fy.Data[i]
		fx.Data[i]=math.Sqrt(x*x+y*y)
	}
	if rescale { return Rescale(fx), nil }
	return fx, nil
}

// Returns the absolute response of g to the Laplacian kernel.
// Optionally rescales the result to [0,DisplayMax]
func LaplacianResponse(g *grid.Grid, p pad.Policy, rescale bool) (*grid.Grid, error) {
	res, err:=convolve.Correlate(g, kernel.Laplacian(), p)
	if err!=nil { return nil, err }
	for i, d:=range res.Data {
		res.Data[i]=math.Abs(d)
	}
	if rescale { return Rescale(res), nil }
	return res, nil
}

// Linearly remaps g so its minimum goes to 0 and its maximum to DisplayMax.
// Returns an unchanged copy if all values are equal
func Rescale(g *grid.Grid) *grid.Grid {
	res:=g.Clone()
	min, max:=g.MinMax()
	if !(max>min) { return res }
	scale:=DisplayMax/(max-min)
	for i, d:=range res.Data {
		res.Data[i]=(d-min)*scale
	}
	return res
}


// Edge detection operator
type Detector int

const (
	Sobel     Detector = iota
	Prewitt
	Laplacian
)

var detectorNames=[]string{"sobel", "prewitt", "laplacian"}

func (d Detector) String() string {
	if !d.Valid() { return fmt.Sprintf("Detector(%d)", int(d)) }
	return detectorNames[d]
}

func (d Detector) Valid() bool {
	return d>=Sobel && d<=Laplacian
}

// Parses a detector name, case-insensitive
func ParseDetector(s string) (Detector, error) {
	ls:=strings.ToLower(strings.TrimSpace(s))
	for i, name:=range detectorNames {
		if ls==name { return Detector(i), nil }
	}
	return Sobel, fmt.Errorf("%w: unknown edge detector '%s', want one of %v", grid.ErrInvalidArgument, s, detectorNames)
}

func (d Detector) MarshalText() ([]byte, error) {
	if !d.Valid() { return nil, fmt.Errorf("%w: edge detector %d", grid.ErrInvalidArgument, int(d)) }
	return []byte(d.String()), nil
}

func (d *Detector) UnmarshalText(b []byte) error {
	parsed, err:=ParseDetector(string(b))
	if err!=nil { return err }
	*d=parsed
	return nil
}


// Parameters for a complete edge detection run
type Params struct {
	Detector Detector    `json:"detector"`
	Smooth   bool        `json:"smooth"`   // Gaussian pre-smoothing
	Size     int         `json:"size"`     // Size of the pre-smoothing kernel
	Sigma    float64     `json:"sigma"`    // Standard deviation of the pre-smoothing kernel
	Padding  pad.Policy  `json:"padding"`
	Rescale  bool        `json:"rescale"`
}

// Default parameters: Sobel with 3x3 pre-smoothing, reflect padding and rescaling
func DefaultParams() Params {
	return Params{
		Detector: Sobel,
		Smooth:   true,
		Size:     3,
		Sigma:    1.0,
		Padding:  pad.Reflect,
		Rescale:  true,
	}
}

// Checks the parameters. Pre-smoothing requires an odd kernel size of at least 3 and a
// positive finite sigma
func (p *Params) Validate() error {
	if !p.Detector.Valid() {
		return fmt.Errorf("%w: edge detector %d", grid.ErrInvalidArgument, int(p.Detector))
	}
	if !p.Padding.Valid() {
		return fmt.Errorf("%w: padding policy %d", grid.ErrInvalidArgument, int(p.Padding))
	}
	if !p.Smooth { return nil }
	if p.Size<3 || p.Size%2==0 {
		return fmt.Errorf("%w: kernel size %d must be an odd integer of at least 3", grid.ErrInvalidArgument, p.Size)
	}
	if !(p.Sigma>0) || math.IsInf(p.Sigma, 1) {
		return fmt.Errorf("%w: sigma %g must be positive", grid.ErrInvalidArgument, p.Sigma)
	}
	return nil
}

// Optionally pre-smoothes g, then applies the selected detector
func Detect(g *grid.Grid, p Params) (*grid.Grid, error) {
	if err:=p.Validate(); err!=nil { return nil, err }
	if p.Smooth {
		var err error
		if g, err=smooth.Gaussian(g, p.Size, p.Sigma, p.Padding); err!=nil { return nil, err }
	}

	switch p.Detector {
	case Sobel:
		gx, gy:=kernel.Sobel()
		return GradientMagnitude(g, gx, gy, p.Padding, p.Rescale)
	case Prewitt:
		gx, gy:=kernel.Prewitt()
		return GradientMagnitude(g, gx, gy, p.Padding, p.Rescale)
	default:
		return LaplacianResponse(g, p.Padding, p.Rescale)
	}
}
