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
	"errors"
	"sync/atomic"
	"testing"
)

func TestCalculations(t *testing.T) {
	const n = 1000
	visits := make([]int32, n)
	var total atomic.Int64
	cell, err := Calculations(n,
		func(c int) error {
			atomic.AddInt32(&visits[c], 1)
			return nil
		},
		func(c int) error {
			total.Add(int64(c))
			return nil
		},
	)
	if err != nil || cell != -1 {
		t.Fatalf("have %d, %v", cell, err)
	}
	for c, v := range visits {
		if v != 1 {
			t.Errorf("cell %d visited %d times", c, v)
		}
	}
	if total.Load() != n*(n-1)/2 {
		t.Errorf("wrong total %d", total.Load())
	}
}

func TestCalculationsError(t *testing.T) {
	e := errors.New("bad cell")
	var ran atomic.Int64
	cell, err := Calculations(50,
		func(c int) error {
			if c == 17 || c == 33 || c == 40 {
				return e
			}
			return nil
		},
		func(c int) error {
			ran.Add(1)
			return nil
		},
	)
	if cell != 17 || err != e {
		t.Errorf("have %d, %v; want 17, %v", cell, err, e)
	}
	if ran.Load() != 47 {
		t.Errorf("later calculators should be skipped only in failing cells; ran %d", ran.Load())
	}
	if cell, err := Calculations(0); cell != -1 || err != nil {
		t.Errorf("have %d, %v", cell, err)
	}
}
