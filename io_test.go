/*
Copyright © 2026 the solidchem authors.
This file is part of solidchem.

solidchem is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

solidchem is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with solidchem.  If not, see <http://www.gnu.org/licenses/>.
*/

package solidchem

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Knetic/govaluate"
	"github.com/tealeg/xlsx"
)

func TestOutputter(t *testing.T) {
	vars := map[string][]float64{
		"dQ":  {1, 2},
		"V":   {2, 4},
		"Y_A": {0.25, 4},
	}
	o, err := NewOutputter(filepath.Join(t.TempDir(), "out.csv"), map[string]string{
		"Heat":    "dQ",
		"Density": "dQ / V",
		"Double":  "Density * 2",
		"Root":    "sqrt(Y_A)",
		"Twice":   "twice(V)",
	}, map[string]govaluate.ExpressionFunction{
		"twice": func(args ...interface{}) (interface{}, error) { return args[0].(float64) * 2, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := o.Results(vars)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]float64{
		"Heat":    {1, 2},
		"Density": {0.5, 0.5},
		"Double":  {1, 1},
		"Root":    {0.5, 2},
		"Twice":   {4, 8},
	}
	for name, w := range want {
		for c := range w {
			if different(r[name][c], w[c], 1.e-12) {
				t.Errorf("%s[%d]: have %g, want %g", name, c, r[name][c], w[c])
			}
		}
	}

	if err := o.Output(vars); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(o.fileName)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("have %d records, want 3", len(recs))
	}
	if h := strings.Join(recs[0], ","); h != "cell,Density,Double,Heat,Root,Twice" {
		t.Errorf("wrong header %s", h)
	}
	if recs[2][0] != "1" || recs[2][3] != "2" {
		t.Errorf("wrong row %v", recs[2])
	}
}

func TestOutputterXLSX(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.xlsx")
	o, err := NewOutputter(name, map[string]string{"Heat": "dQ * 2"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Output(map[string][]float64{"dQ": {1, 2, 3}}); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenFile(name)
	if err != nil {
		t.Fatal(err)
	}
	rows := f.Sheets[0].Rows
	if len(rows) != 4 {
		t.Fatalf("have %d rows, want 4", len(rows))
	}
	if rows[0].Cells[1].Value != "Heat" {
		t.Errorf("wrong header %s", rows[0].Cells[1].Value)
	}
	if v, err := rows[3].Cells[1].Float(); err != nil || v != 6 {
		t.Errorf("have %g, %v; want 6", v, err)
	}
}

func TestOutputterErrors(t *testing.T) {
	if _, err := NewOutputter("x.csv", nil, nil); err == nil {
		t.Error("no variables should be an error")
	}
	if _, err := NewOutputter("x.csv", map[string]string{"a b": "dQ"}, nil); err == nil {
		t.Error("bad name should be an error")
	}
	if _, err := NewOutputter("x.csv", map[string]string{"a": "dQ +"}, nil); err == nil {
		t.Error("bad expression should be an error")
	}
	vars := map[string][]float64{"dQ": {1}}

	o, err := NewOutputter("x.csv", map[string]string{"a": "b", "b": "a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Results(vars); err == nil || !strings.Contains(err.Error(), "itself") {
		t.Errorf("cycle: have %v", err)
	}

	o, err = NewOutputter("x.csv", map[string]string{"a": "missing * 2"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Results(vars); err == nil || !strings.Contains(err.Error(), "undefined") {
		t.Errorf("undefined: have %v", err)
	}

	if _, err := o.Results(map[string][]float64{"dQ": {1}, "V": {1, 2}}); err == nil {
		t.Error("mismatched sizes should be an error")
	}

	o, err = NewOutputter(filepath.Join(t.TempDir(), "x.shp"), map[string]string{"a": "dQ"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Output(vars); err == nil {
		t.Error("unsupported format should be an error")
	}
}
