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

package implicit

import (
	"errors"
	"math"
	"testing"

	"github.com/spatialmodel/solidchem"
)

// decay is A -> gas with a constant rate.
func decay(k float64) solidchem.ReactionSet {
	return solidchem.ReactionSet{{
		Name:      "decay",
		Reactants: []solidchem.SpecieCoeff{{Index: 0, Stoich: 1, Exponent: 1}},
		Rate:      solidchem.Constant(k),
	}}
}

func TestFirstOrderDecay(t *testing.T) {
	const (
		k   = 2.
		dt  = 0.5
		rho = 1000.
	)
	s := new(Solver)
	c := solidchem.CellState{T: 600, Rho: rho, Y: []float64{1}}
	rates, tc, err := s.Integrate(c, decay(k), dt)
	if err != nil {
		t.Fatal(err)
	}
	want := rho * (math.Exp(-k*dt) - 1) / dt
	if different(rates[0], want, 1.e-2) {
		t.Errorf("rate: have %g, want %g", rates[0], want)
	}
	if tc <= 0 {
		t.Errorf("timescale should be positive; got %g", tc)
	}
	if c.Y[0] != 1 {
		t.Errorf("the input state should not be modified")
	}
}

func TestStiff(t *testing.T) {
	const rho = 1.
	s := new(Solver)
	c := solidchem.CellState{T: 600, Rho: rho, Y: []float64{1}}
	rates, _, err := s.Integrate(c, decay(1.e6), 1)
	if err != nil {
		t.Fatal(err)
	}
	if different(rates[0], -rho, 1.e-6) {
		t.Errorf("rate: have %g, want %g", rates[0], -rho)
	}
}

func TestConservation(t *testing.T) {
	// A -> B -> C with no gas release.
	r := solidchem.ReactionSet{
		{
			Name:      "ab",
			Reactants: []solidchem.SpecieCoeff{{Index: 0, Stoich: 1, Exponent: 1}},
			Products:  []solidchem.SpecieCoeff{{Index: 1, Stoich: 1}},
			Rate:      solidchem.Constant(10),
		},
		{
			Name:      "bc",
			Reactants: []solidchem.SpecieCoeff{{Index: 1, Stoich: 1, Exponent: 2}},
			Products:  []solidchem.SpecieCoeff{{Index: 2, Stoich: 1}},
			Rate:      solidchem.Constant(3),
		},
	}
	s := &Solver{RelTol: 1.e-6}
	c := solidchem.CellState{T: 600, Rho: 500, Y: []float64{0.7, 0.3, 0}}
	rates, _, err := s.Integrate(c, r, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, rr := range rates {
		sum += rr
	}
	if math.Abs(sum) > 1.e-6 {
		t.Errorf("mass is not conserved: net rate %g", sum)
	}
	if rates[0] >= 0 || rates[2] <= 0 {
		t.Errorf("wrong reaction direction: %v", rates)
	}
}

func TestInactive(t *testing.T) {
	r := solidchem.ReactionSet{{
		Name:      "decay",
		Reactants: []solidchem.SpecieCoeff{{Index: 0, Stoich: 1, Exponent: 1}},
		Rate:      solidchem.Arrhenius{A: 1.e10, Ta: 1.e4, Tcrit: 500},
	}}
	s := new(Solver)
	c := solidchem.CellState{T: 400, Rho: 1000, Y: []float64{1}}
	rates, tc, err := s.Integrate(c, r, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rates[0] != 0 {
		t.Errorf("rate should be zero below the critical temperature; got %g", rates[0])
	}
	if tc <= 0 {
		t.Errorf("timescale should be positive; got %g", tc)
	}
	if ts := s.Timescale(c, r); ts != solidchem.NeutralTimescale {
		t.Errorf("timescale: have %g, want neutral", ts)
	}
}

func TestTimescale(t *testing.T) {
	s := new(Solver)
	c := solidchem.CellState{T: 600, Rho: 1000, Y: []float64{0.5}}
	if ts := s.Timescale(c, decay(4)); different(ts, 0.25, 1.e-12) {
		t.Errorf("timescale: have %g, want 0.25", ts)
	}
}

func TestMaxSteps(t *testing.T) {
	s := &Solver{MaxSteps: 1}
	c := solidchem.CellState{T: 600, Rho: 1000, Y: []float64{1}}
	if _, _, err := s.Integrate(c, decay(1.e6), 1); err == nil {
		t.Error("should be an error")
	} else if errors.Is(err, ErrStepSize) {
		t.Errorf("wrong error: %v", err)
	}
}

// The returned timescale should not depend on how the last sub-step
// lines up with the end of the time step.
func TestTimescaleLastStep(t *testing.T) {
	s := new(Solver)
	c := solidchem.CellState{T: 600, Rho: 1000, Y: []float64{1}}
	var lo, hi float64 = math.Inf(1), 0
	for _, dt := range []float64{0.9, 0.95, 1, 1.05, 1.1} {
		_, tc, err := s.Integrate(c, decay(2), dt)
		if err != nil {
			t.Fatal(err)
		}
		lo, hi = math.Min(lo, tc), math.Max(hi, tc)
	}
	if hi > 10*lo {
		t.Errorf("timescale varies from %g to %g s", lo, hi)
	}
}

func TestModelFirstOrder(t *testing.T) {
	const k = 2.
	g, err := solidchem.NewGrid(1, 1, 1, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	p, err := solidchem.NewSolidPhase(g, "A")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetUniform(1); err != nil {
		t.Fatal(err)
	}
	th, err := solidchem.NewSolidThermo(1, 600, 1, solidchem.SpeciesData{Name: "A"})
	if err != nil {
		t.Fatal(err)
	}
	m, err := solidchem.New(p, th, decay(k), new(Solver))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.SolveUniform(1.e-3); err != nil {
		t.Fatal(err)
	}
	if rr := m.RR(0).Values[0]; different(rr, -k, 1.e-2) {
		t.Errorf("rate: have %g, want %g", rr, -k)
	}
}

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
