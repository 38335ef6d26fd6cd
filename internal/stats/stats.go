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

package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	nl "github.com/mlnoga/edgelight/internal"
	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/qsort"
)

// Basic statistics on a grid
type Stats struct {
	Min    float64  `json:"min"`    // Minimum
	Max    float64  `json:"max"`    // Maximum
	Mean   float64  `json:"mean"`   // Mean (average)
	StdDev float64  `json:"stdDev"` // Standard deviation (norm 2, sigma)
	Median float64  `json:"median"` // Median
}

// Pretty print stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g",
	                   s.Min, s.Max,   s.Mean,   s.StdDev,   s.Median)
}

// Pretty print stats to CSV header
func (s *Stats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Median"
}

// Pretty print stats to CSV line item
func (s *Stats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g", s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}


// Calculate statistics for a grid. Values must be finite
func NewStats(g *grid.Grid) (*Stats, error) {
	if err:=grid.Check(g);       err!=nil { return nil, err }
	if err:=grid.CheckFinite(g); err!=nil { return nil, err }

	s:=&Stats{}
	s.Min, s.Max=floats.Min(g.Data), floats.Max(g.Data)
	s.Mean, s.StdDev=stat.PopMeanStdDev(g.Data, nil)

	tmp:=nl.GetArrayOfFloat64FromPool(len(g.Data))
	copy(tmp, g.Data)
	s.Median=qsort.QSelectMedianFloat64(tmp)
	nl.PutArrayOfFloat64IntoPool(tmp)
	return s, nil
}


// Calculate histogram of grid values clamped to [0,255] into the given number of bins.
// NaNs are ignored
func Histogram(g *grid.Grid, numBins int) ([]int, error) {
	if err:=grid.Check(g); err!=nil { return nil, err }
	if numBins<1 || numBins>256 {
		return nil, fmt.Errorf("%w: %d histogram bins, want 1..256", grid.ErrInvalidArgument, numBins)
	}
	bins:=make([]int, numBins)
	scale:=float64(numBins)/256
	for _, d:=range g.Data {
		if math.IsNaN(d) { continue }
		if d<0   { d=0   }
		if d>255 { d=255 }
		bins[int(d*scale)]++
	}
	return bins, nil
}

// Returns the location of the histogram peak, as lower bound of the bin in [0,255]
func GetPeak(bins []int) float64 {
	maxIndex:=floats.MaxIdx(toFloat64(bins))
	return binLowerBound(maxIndex, len(bins))
}

// Returns Otsu's threshold for the histogram: the lower bound of the first bin of the upper
// class, when splitting the bins into two classes with maximum between-class variance.
// Values at or above the threshold form the upper class. Returns 0 for empty histograms
func OtsuThreshold(bins []int) float64 {
	weights:=toFloat64(bins)
	total:=floats.Sum(weights)
	if total==0 || len(bins)<2 { return 0 }

	// first moment over bin indices
	sumAll:=0.0
	for i, w:=range weights { sumAll+=float64(i)*w }

	bestIndex, bestVar:=0, -1.0
	w0, sum0:=0.0, 0.0
	for k:=0; k<len(weights)-1; k++ {
		w0  +=weights[k]
		sum0+=float64(k)*weights[k]
		w1:=total-w0
		if w0==0 || w1==0 { continue }
		mu0, mu1:=sum0/w0, (sumAll-sum0)/w1
		between:=w0*w1*(mu0-mu1)*(mu0-mu1)
		if between>bestVar {
			bestIndex, bestVar=k, between
		}
	}
	if bestVar<0 { return 0 }  // single populated bin
	return binLowerBound(bestIndex+1, len(bins))
}

func binLowerBound(index, numBins int) float64 {
	return math.Min(math.Ceil(float64(index)*256/float64(numBins)), 255)
}

func toFloat64(bins []int) []float64 {
	res:=make([]float64, len(bins))
	for i, b:=range bins { res[i]=float64(b) }
	return res
}
