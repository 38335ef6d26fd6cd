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
	"encoding/json"
	"errors"
	"testing"

	"github.com/mlnoga/edgelight/internal/grid"
)

var policies=[]Policy{Zero, Replicate, Reflect}

func mustGrid(t *testing.T, rows [][]float64) *grid.Grid {
	g, err:=grid.NewFromRows(rows)
	if err!=nil {
		t.Fatalf("grid: %s", err)
	}
	return g
}

func TestPadZeroRadiusIsIdentity(t *testing.T) {
	g:=mustGrid(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	for _, p:=range policies {
		res, err:=Pad(g, 0, p)
		if err!=nil {
			t.Fatalf("%v: %s", p, err)
		}
		if !res.EqualApprox(g, 0) {
			t.Errorf("%v: pad by 0 got %v; want %v", p, res.Rows(), g.Rows())
		}
	}
}

type padTestCase struct {
	Policy Policy
	Radius int
	Rows   [][]float64
	Want   [][]float64
}

func TestPad(t *testing.T) {
	in:=[][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	tcs:=[]padTestCase{
		{Zero, 1, in, [][]float64{
			{0, 0, 0, 0, 0},
			{0, 1, 2, 3, 0},
			{0, 4, 5, 6, 0},
			{0, 7, 8, 9, 0},
			{0, 0, 0, 0, 0},
		}},
		{Replicate, 1, in, [][]float64{
			{1, 1, 2, 3, 3},
			{1, 1, 2, 3, 3},
			{4, 4, 5, 6, 6},
			{7, 7, 8, 9, 9},
			{7, 7, 8, 9, 9},
		}},
		{Reflect, 1, in, [][]float64{
			{5, 4, 5, 6, 5},
			{2, 1, 2, 3, 2},
			{5, 4, 5, 6, 5},
			{8, 7, 8, 9, 8},
			{5, 4, 5, 6, 5},
		}},
		// radius larger than the image: reflection keeps bouncing between the borders
		{Reflect, 3, [][]float64{{1, 2}}, [][]float64{
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
			{2, 1, 2, 1, 2, 1, 2, 1},
		}},
		{Reflect, 4, [][]float64{{1, 2, 3}}, [][]float64{
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
			{1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3},
		}},
		{Replicate, 2, [][]float64{{7}}, [][]float64{
			{7, 7, 7, 7, 7},
			{7, 7, 7, 7, 7},
			{7, 7, 7, 7, 7},
			{7, 7, 7, 7, 7},
			{7, 7, 7, 7, 7},
		}},
	}

	for _, tc:=range tcs {
		res, err:=Pad(mustGrid(t, tc.Rows), tc.Radius, tc.Policy)
		if err!=nil {
			t.Fatalf("%v r=%d: %s", tc.Policy, tc.Radius, err)
		}
		want:=mustGrid(t, tc.Want)
		if !res.EqualApprox(want, 0) {
			t.Errorf("%v r=%d got %v; want %v", tc.Policy, tc.Radius, res.Rows(), tc.Want)
		}
	}
}

func TestPadKeepsCenter(t *testing.T) {
	g:=mustGrid(t, [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}})
	for _, p:=range policies {
		for r:=0; r<6; r++ {
			res, err:=Pad(g, r, p)
			if err!=nil {
				t.Fatalf("%v r=%d: %s", p, r, err)
			}
			if res.Height!=g.Height+2*r || res.Width!=g.Width+2*r {
				t.Fatalf("%v r=%d: got shape %s", p, r, res.DimensionsToString())
			}
			for y:=0; y<g.Height; y++ {
				for x:=0; x<g.Width; x++ {
					if res.At(y+r, x+r)!=g.At(y, x) {
						t.Errorf("%v r=%d: center (%d,%d)=%g; want %g", p, r, y, x, res.At(y+r, x+r), g.At(y, x))
					}
				}
			}
		}
	}
}

func TestPadErrors(t *testing.T) {
	g:=mustGrid(t, [][]float64{{1}})
	if _, err:=Pad(g, -1, Zero); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("negative radius: got %v; want ErrInvalidArgument", err)
	}
	if _, err:=Pad(g, 1, Policy(42)); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("bad policy: got %v; want ErrInvalidArgument", err)
	}
	if _, err:=Pad(nil, 1, Zero); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("nil grid: got %v; want ErrInvalidArgument", err)
	}
}

func TestPolicyText(t *testing.T) {
	for _, p:=range policies {
		parsed, err:=ParsePolicy(p.String())
		if err!=nil || parsed!=p {
			t.Errorf("ParsePolicy(%s)=%v, %v", p.String(), parsed, err)
		}
	}
	if _, err:=ParsePolicy("wrap"); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("ParsePolicy(wrap) got %v; want ErrInvalidArgument", err)
	}

	var s struct {
		Padding Policy `json:"padding"`
	}
	if err:=json.Unmarshal([]byte(`{"padding":"Reflect"}`), &s); err!=nil || s.Padding!=Reflect {
		t.Errorf("unmarshal got %v, %v; want reflect", s.Padding, err)
	}
	b, err:=json.Marshal(s)
	if err!=nil || string(b)!=`{"padding":"reflect"}` {
		t.Errorf("marshal got %s, %v", string(b), err)
	}
}
