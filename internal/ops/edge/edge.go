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

package edge

import (
	"encoding/json"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	nledge "github.com/mlnoga/edgelight/internal/edge"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/ops"
	"github.com/mlnoga/edgelight/internal/overlay"
	"github.com/mlnoga/edgelight/internal/pad"
	"github.com/mlnoga/edgelight/internal/stats"
)

// Threshold value selecting Otsu's automatic threshold
const ThresholdOtsu=-1

// Creates the full edge pipeline for a single frame: detection, binarization, overlay and saving
func NewOpEdges(opDetect *OpDetect, opSaveEdges *ops.OpSave, opBinarize *OpBinarize, opSaveBinary *ops.OpSave,
	            opOverlay *OpOverlay, opSave *ops.OpSave) *ops.OpSequence {
	return ops.NewOpSequence(opDetect, opSaveEdges, opBinarize, opSaveBinary, opOverlay, opSave)
}


// Detects edges, replacing the working grid with the edge map. Takes one input, produces one output
type OpDetect struct {
	ops.OpUnaryBase
	Detector nledge.Detector `json:"detector"`
	Smooth   bool            `json:"smooth"`
	Size     int             `json:"size"`
	Sigma    float64         `json:"sigma"`
	Padding  pad.Policy      `json:"padding"`
	Rescale  bool            `json:"rescale"`
}

var _ ops.Operator = (*OpDetect)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpDetectDefault() })} // register the operator for JSON decoding

func NewOpDetectDefault() *OpDetect { return NewOpDetect(nledge.DefaultParams()) }

func NewOpDetect(p nledge.Params) *OpDetect {
	op:=OpDetect{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "detect", Active: true}},
		Detector    : p.Detector,
		Smooth      : p.Smooth,
		Size        : p.Size,
		Sigma       : p.Sigma,
		Padding     : p.Padding,
		Rescale     : p.Rescale,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpDetect) UnmarshalJSON(data []byte) error {
	type defaults OpDetect
	def:=defaults( *NewOpDetectDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpDetect(def)
	op.OpUnaryBase.Apply=op.Apply
	return nil
}

// Returns the detection parameters of this operator
func (op *OpDetect) Params() nledge.Params {
	return nledge.Params{
		Detector: op.Detector,
		Smooth:   op.Smooth,
		Size:     op.Size,
		Sigma:    op.Sigma,
		Padding:  op.Padding,
		Rescale:  op.Rescale,
	}
}

func (op *OpDetect) Apply(f *ops.Frame, c *ops.Context) (result *ops.Frame, err error) {
	if !op.Active { return f, nil }
	if op.Smooth {
		fmt.Fprintf(c.Log, "%d: Pre-smoothing with %dx%d Gaussian, sigma %.4g\n", f.ID, op.Size, op.Size, op.Sigma)
	}
	fmt.Fprintf(c.Log, "%d: Detecting edges with %v, %v padding, rescale %v\n", f.ID, op.Detector, op.Padding, op.Rescale)

	g, err:=nledge.Detect(f.Data, op.Params())
	if err!=nil { return nil, fmt.Errorf("%d: %w", f.ID, err) }
	f.SetData(g)
	f.Binary, f.Overlay=nil, nil
	fmt.Fprintf(c.Log, "%d: Edge map %v\n", f.ID, f.Stats)
	return f, nil
}


// Binarizes the working grid into the frame's binary map. Takes one input, produces one output
type OpBinarize struct {
	ops.OpUnaryBase
	Threshold int  `json:"threshold"`  // 0..255, or ThresholdOtsu
}

var _ ops.Operator = (*OpBinarize)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpBinarizeDefault() })} // register the operator for JSON decoding

func NewOpBinarizeDefault() *OpBinarize { return NewOpBinarize(100) }

func NewOpBinarize(threshold int) *OpBinarize {
	op:=OpBinarize{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "binarize", Active: true}},
		Threshold   : threshold,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpBinarize) UnmarshalJSON(data []byte) error {
	type defaults OpBinarize
	def:=defaults( *NewOpBinarizeDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpBinarize(def)
	op.OpUnaryBase.Apply=op.Apply
	return nil
}

// Returns the effective threshold for the given edge map, resolving ThresholdOtsu
func (op *OpBinarize) ThresholdFor(g *grid.Grid) (float64, error) {
	if op.Threshold==ThresholdOtsu {
		bins, err:=stats.Histogram(g, 256)
		if err!=nil { return 0, err }
		return stats.OtsuThreshold(bins), nil
	}
	if op.Threshold<0 || op.Threshold>255 {
		return 0, fmt.Errorf("%w: threshold %d must be within 0..255, or %d for automatic", grid.ErrInvalidArgument, op.Threshold, ThresholdOtsu)
	}
	return float64(op.Threshold), nil
}

func (op *OpBinarize) Apply(f *ops.Frame, c *ops.Context) (result *ops.Frame, err error) {
	if !op.Active { return f, nil }
	th, err:=op.ThresholdFor(f.Data)
	if err!=nil { return nil, fmt.Errorf("%d: %w", f.ID, err) }
	if op.Threshold==ThresholdOtsu {
		fmt.Fprintf(c.Log, "%d: Binarizing at automatic threshold %.0f\n", f.ID, th)
	} else {
		fmt.Fprintf(c.Log, "%d: Binarizing at threshold %.0f\n", f.ID, th)
	}

	bin, err:=overlay.Binarize(f.Data, th)
	if err!=nil { return nil, fmt.Errorf("%d: %w", f.ID, err) }
	f.Binary, f.Overlay=bin, nil

	set:=0
	for _, d:=range bin.Data {
		if d>0 { set++ }
	}
	fmt.Fprintf(c.Log, "%d: %d of %d pixels are edges (%.2f%%)\n", f.ID, set, len(bin.Data), 100*float64(set)/float64(len(bin.Data)))
	return f, nil
}


// Overlays the binary map onto the source image in the given color. Takes one input, produces one output
type OpOverlay struct {
	ops.OpUnaryBase
	Color string  `json:"color"`  // hex color, e.g. #ff0000
}

var _ ops.Operator = (*OpOverlay)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpOverlayDefault() })} // register the operator for JSON decoding

func NewOpOverlayDefault() *OpOverlay { return NewOpOverlay(overlay.Red.Hex()) }

func NewOpOverlay(color string) *OpOverlay {
	op:=OpOverlay{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "overlay", Active: color!=""}},
		Color       : color,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpOverlay) UnmarshalJSON(data []byte) error {
	type defaults OpOverlay
	def:=defaults( *NewOpOverlayDefault() )
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*op=OpOverlay(def)
	op.OpUnaryBase.Apply=op.Apply
	return nil
}

func (op *OpOverlay) Apply(f *ops.Frame, c *ops.Context) (result *ops.Frame, err error) {
	if !op.Active { return f, nil }
	if f.Binary==nil { return nil, fmt.Errorf("%d: %w: overlay requires a binary map, binarize first", f.ID, grid.ErrInvalidArgument) }
	col, err:=colorful.Hex(op.Color)
	if err!=nil { return nil, fmt.Errorf("%d: %w: color '%s': %s", f.ID, grid.ErrInvalidArgument, op.Color, err) }

	fmt.Fprintf(c.Log, "%d: Overlaying edges in %s\n", f.ID, col.Hex())
	rgb, err:=overlay.OverlayEdgesColor(f.Source, f.Binary, col)
	if err!=nil { return nil, fmt.Errorf("%d: %w", f.ID, err) }
	f.Overlay=rgb
	return f, nil
}
