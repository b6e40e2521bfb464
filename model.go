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

// Package solidchem calculates chemical source terms for a reacting
// solid phase. For every cell of a mesh it integrates the reaction
// mechanism using a pluggable kinetics strategy, stores the net
// reaction rate of every species, and derives the heat release fields
// that couple the chemistry into an outer energy equation.
package solidchem

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Version gives the version number.
const Version = "0.1.0"

// Option configures a ChemistryModel.
type Option func(*options)

type options struct {
	chemistry bool
	log       logrus.FieldLogger
}

// WithChemistry switches the chemistry on or off. Chemistry is on
// by default.
func WithChemistry(on bool) Option {
	return func(o *options) { o.chemistry = on }
}

// WithLogger sets the logger used by the model.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// ChemistryModel holds the chemical state of a solid phase P with
// thermodynamic package T. It owns the reacting-cell mask and the
// net reaction rate field of every species.
//
// Configuration changes (SetCellReacting) must not overlap with a
// call to Solve.
type ChemistryModel[P Phase, T Thermo] struct {
	phase     P
	thermo    T
	reactions ReactionSet
	solver    Integrator

	chemistry bool
	reacting  []bool
	rrs       []*Field

	// Log receives diagnostic messages.
	Log logrus.FieldLogger
}

// New creates a chemistry model for phase p with thermodynamic package
// th, reaction mechanism r and kinetics strategy s. All cells start out
// reacting.
func New[P Phase, T Thermo](p P, th T, r ReactionSet, s Integrator, opts ...Option) (*ChemistryModel[P, T], error) {
	if s == nil {
		return nil, ErrNoIntegrator
	}
	o := options{chemistry: true, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	species := p.Species()
	if err := r.Validate(len(species)); err != nil {
		return nil, err
	}
	n := p.Mesh().NCells()
	if len(p.Y()) != len(species) {
		return nil, fmt.Errorf("solidchem: phase has %d mass fraction fields for %d species", len(p.Y()), len(species))
	}
	for i, y := range p.Y() {
		if len(y) != n {
			return nil, fmt.Errorf("%w: mass fraction of %s has %d values for %d cells", ErrFieldSize, species[i], len(y), n)
		}
	}
	if th.NSpecies() != len(species) {
		return nil, fmt.Errorf("%w: thermo has data for %d species, mechanism has %d", ErrFieldSize, th.NSpecies(), len(species))
	}
	if len(th.T()) != n || len(th.Rho()) != n {
		return nil, fmt.Errorf("%w: thermo has %d temperatures and %d densities for %d cells", ErrFieldSize, len(th.T()), len(th.Rho()), n)
	}

	m := &ChemistryModel[P, T]{
		phase:     p,
		thermo:    th,
		reactions: r,
		solver:    s,
		chemistry: o.chemistry,
		reacting:  make([]bool, n),
		rrs:       make([]*Field, len(species)),
		Log:       o.log,
	}
	for c := range m.reacting {
		m.reacting[c] = true
	}
	for i, name := range species {
		m.rrs[i] = NewField("RRs."+name, KilogramPerMeter3Second, n)
	}
	return m, nil
}

// Phase returns the solid phase the model was created with.
func (m *ChemistryModel[P, T]) Phase() P { return m.phase }

// Thermo returns the thermodynamic package the model was created with.
func (m *ChemistryModel[P, T]) Thermo() T { return m.thermo }

// Reactions returns the reaction mechanism.
func (m *ChemistryModel[P, T]) Reactions() ReactionSet { return m.reactions }

// Enabled returns whether chemistry is switched on.
func (m *ChemistryModel[P, T]) Enabled() bool { return m.chemistry }

// NSpecies returns the number of solid species.
func (m *ChemistryModel[P, T]) NSpecies() int { return len(m.rrs) }

// NReaction returns the number of reactions.
func (m *ChemistryModel[P, T]) NReaction() int { return m.reactions.Len() }

// Species returns the names of the solid species.
func (m *ChemistryModel[P, T]) Species() []string { return m.phase.Species() }

// NCells returns the number of cells.
func (m *ChemistryModel[P, T]) NCells() int { return len(m.reacting) }

// RR returns the net reaction rate field of species i [kg/m³/s].
// The field is owned by the model and is overwritten by Solve.
func (m *ChemistryModel[P, T]) RR(i int) *Field { return m.rrs[i] }

// SetCellReacting switches the chemistry in cell on or off from the
// next call to Solve onwards.
func (m *ChemistryModel[P, T]) SetCellReacting(cell int, active bool) error {
	if cell < 0 || cell >= len(m.reacting) {
		return &CellIndexError{Cell: cell, NCells: len(m.reacting)}
	}
	m.reacting[cell] = active
	return nil
}

// CellReacting returns whether chemistry is active in cell.
func (m *ChemistryModel[P, T]) CellReacting(cell int) (bool, error) {
	if cell < 0 || cell >= len(m.reacting) {
		return false, &CellIndexError{Cell: cell, NCells: len(m.reacting)}
	}
	return m.reacting[cell], nil
}

// ReactingCells returns the number of cells with active chemistry.
func (m *ChemistryModel[P, T]) ReactingCells() int {
	var n int
	for _, r := range m.reacting {
		if r {
			n++
		}
	}
	return n
}

// cellState copies the state of cell c.
func (m *ChemistryModel[P, T]) cellState(c int) CellState {
	y := m.phase.Y()
	s := CellState{
		Cell: c,
		T:    m.thermo.T()[c],
		Rho:  m.thermo.Rho()[c],
		Y:    make([]float64, len(y)),
	}
	for i := range y {
		s.Y[i] = y[i][c]
	}
	return s
}

// Solve advances the chemistry in every reacting cell by deltaT[cell]
// seconds and stores the resulting net reaction rates. Rates in
// non-reacting cells are set to zero; cells with a zero time step keep
// their previous rates.
//
// The returned chemical timescale is the minimum of the timescales
// suggested by the integrator over all cells that were integrated, or
// NeutralTimescale if no cell was integrated. If the integrator fails,
// an *IntegrationFailure for the lowest failing cell is returned; the
// rates of all other cells are still updated.
func (m *ChemistryModel[P, T]) Solve(deltaT []float64) (float64, error) {
	n := len(m.reacting)
	if len(deltaT) != n {
		return NeutralTimescale, fmt.Errorf("%w: deltaT has %d values for %d cells", ErrFieldSize, len(deltaT), n)
	}
	for c, dt := range deltaT {
		if dt < 0 || math.IsNaN(dt) {
			return NeutralTimescale, fmt.Errorf("%w: deltaT[%d] = %g", ErrInvalidTimeStep, c, dt)
		}
	}
	if !m.chemistry || n == 0 {
		return NeutralTimescale, nil
	}

	tcs := make([]float64, n)
	cell, err := Calculations(n, func(c int) error {
		tcs[c] = NeutralTimescale
		if !m.reacting[c] {
			for _, rr := range m.rrs {
				rr.Values[c] = 0
			}
			return nil
		}
		if deltaT[c] == 0 {
			return nil
		}
		cs := m.cellState(c)
		y0 := append([]float64(nil), cs.Y...)
		rates, tc, err := m.solver.Integrate(cs, m.reactions, deltaT[c])
		if err != nil {
			return err
		}
		if err := checkRates(rates, tc, y0, cs.Rho, deltaT[c]); err != nil {
			return err
		}
		for i, r := range rates {
			m.rrs[i].Values[c] = r
		}
		tcs[c] = tc
		return nil
	})
	if err != nil {
		return NeutralTimescale, &IntegrationFailure{Cell: cell, Err: err}
	}

	tc := floats.Min(tcs)
	m.Log.WithFields(logrus.Fields{
		"reacting":  m.ReactingCells(),
		"timescale": tc,
	}).Debug("solidchem: chemistry solved")
	return tc, nil
}

// SolveUniform is Solve with the same time step in every cell.
func (m *ChemistryModel[P, T]) SolveUniform(deltaT float64) (float64, error) {
	dt := make([]float64, len(m.reacting))
	for i := range dt {
		dt[i] = deltaT
	}
	return m.Solve(dt)
}

// negativeTol is how far below zero a mass fraction implied by the
// returned rates may fall before the rates are rejected.
const negativeTol = 1e-8

// checkRates makes sure an integrator returned usable output for a cell
// with initial mass fractions y0 and density rho over a step of dt.
func checkRates(rates []float64, tc float64, y0 []float64, rho, dt float64) error {
	if len(rates) != len(y0) {
		return fmt.Errorf("integrator returned %d rates for %d species", len(rates), len(y0))
	}
	for i, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("non-physical reaction rate %g for species %d", r, i)
		}
		if y := y0[i] + r*dt/rho; y < -negativeTol {
			return fmt.Errorf("reaction rate %g would leave species %d with mass fraction %g", r, i, y)
		}
	}
	if math.IsNaN(tc) || tc <= 0 {
		return fmt.Errorf("non-physical chemical timescale %g", tc)
	}
	return nil
}

// ChemicalTimescale returns the chemical timescale of every cell [s].
// Non-reacting cells are reported as NeutralTimescale. It returns
// ErrNotSupported if chemistry is switched off.
func (m *ChemistryModel[P, T]) ChemicalTimescale() (*Field, error) {
	if !m.chemistry {
		return nil, fmt.Errorf("%w: no chemical timescale without chemistry", ErrNotSupported)
	}
	tc := NewField("tc", unit.Second, len(m.reacting))
	Calculations(len(m.reacting), func(c int) error {
		if !m.reacting[c] {
			tc.Values[c] = NeutralTimescale
			return nil
		}
		tc.Values[c] = m.solver.Timescale(m.cellState(c), m.reactions)
		return nil
	})
	return tc, nil
}

// HeatReleaseRate returns the chemical heat release rate of every cell,
// Sh = -Σ Hc·RR [W/m³]. It is zero everywhere if chemistry is switched
// off. A new field is returned on every call.
func (m *ChemistryModel[P, T]) HeatReleaseRate() *Field {
	sh := NewField("Sh", WattPerMeter3, len(m.reacting))
	if !m.chemistry {
		return sh
	}
	for i, rr := range m.rrs {
		floats.AddScaled(sh.Values, -m.thermo.Hc(i), rr.Values)
	}
	return sh
}

// CumulativeHeatRelease returns the chemical heat release of every
// cell, dQ = V·Sh [W]. It is zero everywhere if chemistry is switched
// off. A new field is returned on every call.
func (m *ChemistryModel[P, T]) CumulativeHeatRelease() *Field {
	dq := NewField("dQ", unit.Watt, len(m.reacting))
	if !m.chemistry {
		return dq
	}
	floats.MulTo(dq.Values, m.phase.Mesh().V(), m.HeatReleaseRate().Values)
	return dq
}
