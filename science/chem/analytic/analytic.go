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

// Package analytic contains an exact kinetics integrator for
// mechanisms in which every reaction is first order in a single
// reactant. For such mechanisms dY/dt = A·Y with a constant rate matrix
// A, so Y(t+Δt) = exp(A·Δt)·Y(t).
package analytic

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/solidchem"
	"gonum.org/v1/gonum/mat"
)

// ErrNotFirstOrder is returned for mechanisms the solver cannot handle.
var ErrNotFirstOrder = errors.New("analytic: mechanism is not first order")

// Solver fulfils the github.com/spatialmodel/solidchem.Integrator
// interface.
type Solver struct{}

// Check returns an error if r contains a reaction that does not have
// exactly one reactant with a rate exponent of one.
func Check(r solidchem.ReactionSet) error {
	for i, rxn := range r {
		if len(rxn.Reactants) != 1 || rxn.Reactants[0].Exponent != 1 {
			return fmt.Errorf("%w: reaction %d (%s)", ErrNotFirstOrder, i, rxn.Name)
		}
	}
	return nil
}

// Integrate fulfils the Integrator interface.
func (Solver) Integrate(c solidchem.CellState, r solidchem.ReactionSet, dt float64) ([]float64, float64, error) {
	if err := Check(r); err != nil {
		return nil, 0, err
	}
	n := len(c.Y)
	a := mat.NewDense(n, n, nil)
	// The Jacobian of a first order mechanism is its rate matrix.
	r.Jacobian(c.T, c.Y, a)
	a.Scale(dt, a)

	var e mat.Dense
	e.Exp(a)
	y0 := mat.NewVecDense(n, append([]float64(nil), c.Y...))
	var y mat.VecDense
	y.MulVec(&e, y0)

	rates := make([]float64, n)
	for i := range rates {
		v := math.Max(y.AtVec(i), 0)
		rates[i] = c.Rho * (v - y0.AtVec(i)) / dt
	}
	return rates, Timescale(c.T, r), nil
}

// Timescale fulfils the Integrator interface.
func (Solver) Timescale(c solidchem.CellState, r solidchem.ReactionSet) float64 {
	return Timescale(c.T, r)
}

// Timescale returns 1/k of the fastest reaction at temperature t, or
// solidchem.NeutralTimescale if no reaction is active.
func Timescale(t float64, r solidchem.ReactionSet) float64 {
	var kMax float64
	for _, rxn := range r {
		kMax = math.Max(kMax, rxn.Rate.K(t))
	}
	if kMax == 0 {
		return solidchem.NeutralTimescale
	}
	return 1 / kMax
}
