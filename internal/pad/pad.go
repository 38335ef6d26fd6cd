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


package pad

import (
	"fmt"
	"strings"

	nl "github.com/mlnoga/edgelight/internal"
	"github.com/mlnoga/edgelight/internal/grid"
)

// Policy for synthesizing out-of-bounds pixels at the image borders
type Policy int

const (
	Zero      Policy = iota // Border pixels are zero
	Replicate               // Border pixels copy the nearest edge pixel
	Reflect                 // Border pixels mirror the interior, without repeating the edge pixel
)

var policyNames=[]string{"zero", "replicate", "reflect"}

func (p Policy) String() string {
	if !p.Valid() { return fmt.Sprintf("Policy(%d)", int(p)) }
	return policyNames[p]
}

// Returns true if p is one of the recognized policies
func (p Policy) Valid() bool {
	return p>=Zero && p<=Reflect
}

// Parses a policy name, case-insensitive
func ParsePolicy(s string) (Policy, error) {
	ls:=strings.ToLower(strings.TrimSpace(s))
	for i, name:=range policyNames {
		if ls==name { return Policy(i), nil }
	}
	return Zero, fmt.Errorf("%w: unknown padding policy '%s', want one of %v", grid.ErrInvalidArgument, s, policyNames)
}

func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() { return nil, fmt.Errorf("%w: padding policy %d", grid.ErrInvalidArgument, int(p)) }
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	parsed, err:=ParsePolicy(string(b))
	if err!=nil { return err }
	*p=parsed
	return nil
}


// Maps a coordinate into [0, size-1] by mirroring at the borders without repeating the edge sample.
// Coordinates further out than size keep mirroring back and forth with period 2*(size-1)
func reflect(size, x int) int {
	if size==1 { return 0 }
	period:=2*(size-1)
	x%=period
	if x<0 { x+=period }
	if x>=size { x=period-x }
	return x
}

// Clamps a coordinate into [0, size-1]
func clamp(size, x int) int {
	if x<0     { return 0 }
	if x>=size { return size-1 }
	return x
}

// Returns the index mapping function for the given policy, or nil for zero padding
func indexFunc(p Policy) func(size, x int) int {
	switch p {
	case Replicate: return clamp
	case Reflect:   return reflect
	default:        return nil
	}
}

// Extends the grid by r pixels on all sides using the given policy. Returns a new grid of
// shape (H+2r)x(W+2r) whose center equals g. The result is backed by a pooled array; callers
// which only use it as scratch space may hand res.Data back via nl.PutArrayOfFloat64IntoPool()
func Pad(g *grid.Grid, r int, p Policy) (res *grid.Grid, err error) {
	if err=grid.Check(g); err!=nil { return nil, err }
	if r<0 {
		return nil, fmt.Errorf("%w: negative padding radius %d", grid.ErrInvalidArgument, r)
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: unknown padding policy %d", grid.ErrInvalidArgument, int(p))
	}

	h, w:=g.Height, g.Width
	ph, pw:=h+2*r, w+2*r
	data:=nl.GetArrayOfFloat64FromPool(ph*pw)
	res, err=grid.NewFromData(ph, pw, data)
	if err!=nil { return nil, err }

	index:=indexFunc(p)
	for py:=0; py<ph; py++ {
		y:=py-r
		dst:=res.Row(py)
		if index==nil && (y<0 || y>=h) {
			for i:=range dst { dst[i]=0 }
			continue
		}
		if index!=nil { y=index(h, y) }
		src:=g.Row(y)

		// left border, interior, right border
		for px:=0; px<r; px++ {
			if index==nil { dst[px]=0 } else { dst[px]=src[index(w, px-r)] }
		}
		copy(dst[r:r+w], src)
		for px:=r+w; px<pw; px++ {
			if index==nil { dst[px]=0 } else { dst[px]=src[index(w, px-r)] }
		}
	}
	return res, nil
}
