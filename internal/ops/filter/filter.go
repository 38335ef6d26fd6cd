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

package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/ops"
	"github.com/mlnoga/edgelight/internal/pad"
	"github.com/mlnoga/edgelight/internal/smooth"
)

// Names of the supported smoothing filters
const (
	Mean   = "mean"
	Gauss  = "gauss"
	Median = "median"
)

// Smoothes the working grid with a mean, Gaussian or median filter. Takes one input, produces one output
type OpSmooth struct {
	ops.OpUnaryBase
	Filter   string      `json:"filter"`
	Size     int         `json:"size"`
	Sigma    float64     `json:"sigma"`
	Padding  pad.Policy  `json:"padding"`
}

var _ ops.Operator = (*OpSmooth)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSmoothDefault() })} // register the operator for JSON decoding

func NewOpSmoothDefault() *OpSmooth { return NewOpSmooth(Gauss, 3, 1.0, pad.Reflect) }

func NewOpSmooth(filter string, size int, sigma float64, padding pad.Policy) *OpSmooth {
	op:=OpSmooth{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "smooth", Active: filter!=""}},
		Filter      : filter,
		Size        : size,
		Sigma       : sigma,
		Padding     : padding,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSmooth) UnmarshalJSON(data []byte) error {
	type defaults OpSmooth
	def:=defaults( *NewOpSmoothDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpSmooth(def)
	op.OpUnaryBase.Apply=op.Apply
	return nil
}

// Checks the filter name and parameters
func (op *OpSmooth) Validate() error {
	switch strings.ToLower(op.Filter) {
	case Mean, Gauss, Median:
	default:
		return fmt.Errorf("%w: unknown filter '%s', want %s, %s or %s", grid.ErrInvalidArgument, op.Filter, Mean, Gauss, Median)
	}
	if op.Size<3 || op.Size%2==0 {
		return fmt.Errorf("%w: kernel size %d must be an odd integer of at least 3", grid.ErrInvalidArgument, op.Size)
	}
	if strings.ToLower(op.Filter)==Gauss && (!(op.Sigma>0) || math.IsInf(op.Sigma, 1)) {
		return fmt.Errorf("%w: sigma %g must be positive", grid.ErrInvalidArgument, op.Sigma)
	}
	if !op.Padding.Valid() {
		return fmt.Errorf("%w: padding policy %d", grid.ErrInvalidArgument, int(op.Padding))
	}
	return nil
}

// Applies the filter to the given grid
func (op *OpSmooth) Filtered(g *grid.Grid) (*grid.Grid, error) {
	if err:=op.Validate(); err!=nil { return nil, err }
	switch strings.ToLower(op.Filter) {
	case Mean:
		return smooth.Mean(g, op.Size, op.Padding)
	case Gauss:
		return smooth.Gaussian(g, op.Size, op.Sigma, op.Padding)
	default:
		return smooth.Median(g, op.Size, op.Padding)
	}
}

func (op *OpSmooth) Apply(f *ops.Frame, c *ops.Context) (result *ops.Frame, err error) {
	if !op.Active { return f, nil }
	if strings.ToLower(op.Filter)==Gauss {
		fmt.Fprintf(c.Log, "%d: Applying %dx%d %s filter with sigma %.4g and %v padding\n", f.ID, op.Size, op.Size, op.Filter, op.Sigma, op.Padding)
	} else {
		fmt.Fprintf(c.Log, "%d: Applying %dx%d %s filter with %v padding\n", f.ID, op.Size, op.Size, op.Filter, op.Padding)
	}

	g, err:=op.Filtered(f.Data)
	if err!=nil { return nil, fmt.Errorf("%d: %w", f.ID, err) }
	f.SetData(g)
	fmt.Fprintf(c.Log, "%d: Result %v\n", f.ID, f.Stats)
	return f, nil
}
