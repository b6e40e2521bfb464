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

import "math"

// NeutralTimescale is the chemical timescale reported when no cell
// constrains the time step.
const NeutralTimescale = math.MaxFloat64

// CellState is the state of a single cell handed to an Integrator.
// Y is a private copy and may be modified by the integrator.
type CellState struct {
	Cell int       // cell index
	T    float64   // temperature [K]
	Rho  float64   // density [kg/m³]
	Y    []float64 // mass fraction of each species
}

// Integrator is a kinetics strategy that advances the chemistry of a
// single cell. Implementations must be safe for concurrent use, as
// cells are integrated in parallel.
type Integrator interface {
	// Integrate advances the cell state by dt seconds using the
	// given reactions. It returns the mean net reaction rate of every
	// species over the step [kg/m³/s] and a suggested chemical
	// timescale [s] for the next step. A returned error means the
	// integration failed and the rates must not be used.
	Integrate(c CellState, r ReactionSet, dt float64) (rates []float64, tc float64, err error)

	// Timescale returns the characteristic chemical timescale [s]
	// of the cell in its current state.
	Timescale(c CellState, r ReactionSet) float64
}

// ConsumptionTimescale returns the shortest time it would take any
// species in c to be used up at its current net rate of consumption,
// min Y/|dY/dt| over species with dY/dt < 0. It returns
// NeutralTimescale if nothing is being consumed.
func ConsumptionTimescale(c CellState, r ReactionSet) float64 {
	dydt := make([]float64, len(c.Y))
	r.Derivatives(c.T, c.Y, dydt)
	tc := NeutralTimescale
	for i, d := range dydt {
		if d < 0 && c.Y[i] > 0 {
			tc = math.Min(tc, c.Y[i]/-d)
		}
	}
	return tc
}
