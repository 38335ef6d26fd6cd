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
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mlnoga/edgelight/internal/grid"
	"github.com/mlnoga/edgelight/internal/ops"
	"github.com/mlnoga/edgelight/internal/pad"
)

func TestOpSmoothJSONDefaults(t *testing.T) {
	var op OpSmooth
	if err:=json.Unmarshal([]byte(`{"type":"smooth","filter":"median","size":5}`), &op); err!=nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !op.Active || op.Filter!=Median || op.Size!=5 || op.Sigma!=1 || op.Padding!=pad.Reflect {
		t.Errorf("got %+v", op)
	}

	out, err:=json.Marshal(&op)
	if err!=nil {
		t.Fatalf("marshal: %s", err)
	}
	if !strings.Contains(string(out), `"padding":"reflect"`) {
		t.Errorf("marshalled %s", out)
	}
}

func TestOpSmoothInSequence(t *testing.T) {
	var seq ops.OpSequence
	in:=`{"type":"seq","active":true,"steps":[{"type":"smooth","filter":"mean","padding":"zero"}]}`
	if err:=json.Unmarshal([]byte(in), &seq); err!=nil {
		t.Fatalf("unmarshal: %s", err)
	}
	g, _:=grid.NewFromRows([][]float64{{0, 0, 0}, {0, 9, 0}, {0, 0, 0}})
	f:=ops.NewFrame(7, "", g)
	c:=ops.NewContext(&bytes.Buffer{})

	promises, err:=seq.MakePromises([]ops.Promise{func() (*ops.Frame, error) { return f, nil }}, c)
	if err!=nil {
		t.Fatalf("promises: %s", err)
	}
	frames, err:=ops.MaterializeAll(promises, 1, false)
	if err!=nil {
		t.Fatalf("materialize: %s", err)
	}
	res:=frames[0]
	for i, d:=range res.Data.Data {
		if d!=1 {
			t.Errorf("pixel %d=%g; want 1", i, d)
		}
	}
	if res.Source.At(1, 1)!=9 {
		t.Errorf("source modified")
	}
	if res.Stats==nil || res.Stats.Mean!=1 {
		t.Errorf("stats %v", res.Stats)
	}
}

type validateTestCase struct {
	Op    *OpSmooth
	Valid bool
}

func TestOpSmoothValidate(t *testing.T) {
	tcs:=[]validateTestCase{
		{NewOpSmoothDefault(), true},
		{NewOpSmooth(Median, 3, 0, pad.Zero), true},
		{NewOpSmooth("MEAN", 7, 0, pad.Replicate), true},
		{NewOpSmooth("box", 3, 1, pad.Zero), false},
		{NewOpSmooth(Mean, 1, 1, pad.Zero), false},
		{NewOpSmooth(Mean, 4, 1, pad.Zero), false},
		{NewOpSmooth(Gauss, 3, 0, pad.Zero), false},
		{NewOpSmooth(Gauss, 3, 1, pad.Policy(5)), false},
	}
	for i, tc:=range tcs {
		err:=tc.Op.Validate()
		if tc.Valid && err!=nil {
			t.Errorf("case %d: %s", i, err)
		}
		if !tc.Valid && !errors.Is(err, grid.ErrInvalidArgument) {
			t.Errorf("case %d: got %v; want ErrInvalidArgument", i, err)
		}
	}

	g, _:=grid.New(3, 3)
	f:=ops.NewFrame(1, "", g)
	if _, err:=NewOpSmooth(Mean, 2, 1, pad.Zero).Apply(f, ops.NewContext(&bytes.Buffer{})); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("apply: got %v; want ErrInvalidArgument", err)
	}
}
