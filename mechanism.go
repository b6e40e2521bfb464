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
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/mat"
)

// RateLaw gives the rate constant of a reaction as a function of
// temperature.
type RateLaw interface {
	// K returns the rate constant [1/s] at temperature t [K].
	K(t float64) float64
}

// Arrhenius is the solid-phase Arrhenius rate law
// k = A exp(-Ta/T), which is switched off at or below the
// critical temperature Tcrit.
type Arrhenius struct {
	A     float64 // pre-exponential factor [1/s]
	Ta    float64 // activation temperature [K]
	Tcrit float64 // critical temperature [K]
}

// K fulfils the RateLaw interface.
func (a Arrhenius) K(t float64) float64 {
	if t <= a.Tcrit {
		return 0
	}
	return a.A * math.Exp(-a.Ta/t)
}

// Constant is a temperature-independent rate law.
type Constant float64

// K fulfils the RateLaw interface.
func (k Constant) K(float64) float64 { return float64(k) }

// SpecieCoeff is one participant of a reaction.
type SpecieCoeff struct {
	Index    int     // species index
	Stoich   float64 // mass stoichiometric coefficient
	Exponent float64 // rate exponent; only used for reactants
}

// Reaction is a single solid-phase reaction. Reactant mass that is
// not matched by solid products leaves the solid as gas.
type Reaction struct {
	Name      string
	Reactants []SpecieCoeff
	Products  []SpecieCoeff
	Rate      RateLaw
}

// GasYield returns the mass of gas released per unit mass of
// reactants consumed.
func (r *Reaction) GasYield() float64 {
	var in, out float64
	for _, s := range r.Reactants {
		in += s.Stoich
	}
	for _, s := range r.Products {
		out += s.Stoich
	}
	if in == 0 {
		return 0
	}
	return (in - out) / in
}

// omega returns the reaction rate [1/s] at temperature t for
// mass fractions y.
func (r *Reaction) omega(t float64, y []float64) float64 {
	w := r.Rate.K(t)
	if w == 0 {
		return 0
	}
	for _, s := range r.Reactants {
		w *= pow(y[s.Index], s.Exponent)
	}
	return w
}

// pow is y^e for non-negative y; negative round-off is treated as zero.
func pow(y, e float64) float64 {
	if y <= 0 {
		if e == 0 {
			return 1
		}
		return 0
	}
	if e == 1 {
		return y
	}
	return math.Pow(y, e)
}

// dpow is the derivative of pow with respect to y.
func dpow(y, e float64) float64 {
	switch {
	case e == 0:
		return 0
	case e == 1:
		return 1
	case y <= 0:
		return 0
	}
	return e * math.Pow(y, e-1)
}

// ReactionSet is an ordered list of reactions.
type ReactionSet []Reaction

// Len returns the number of reactions.
func (rs ReactionSet) Len() int { return len(rs) }

// Validate checks that every reaction refers to one of nSpecies species
// and has physically meaningful coefficients.
func (rs ReactionSet) Validate(nSpecies int) error {
	for i, r := range rs {
		if len(r.Reactants) == 0 {
			return fmt.Errorf("solidchem: reaction %d (%s) has no reactants", i, r.Name)
		}
		if r.Rate == nil {
			return fmt.Errorf("solidchem: reaction %d (%s) has no rate law", i, r.Name)
		}
		for _, list := range [][]SpecieCoeff{r.Reactants, r.Products} {
			for _, s := range list {
				if s.Index < 0 || s.Index >= nSpecies {
					return fmt.Errorf("solidchem: reaction %d (%s) refers to species index %d but there are %d species", i, r.Name, s.Index, nSpecies)
				}
				if s.Stoich < 0 || s.Exponent < 0 {
					return fmt.Errorf("solidchem: reaction %d (%s) has a negative coefficient", i, r.Name)
				}
			}
		}
	}
	return nil
}

// Derivatives calculates the rate of change of the mass fractions y
// at temperature t and stores it in dydt [1/s].
func (rs ReactionSet) Derivatives(t float64, y, dydt []float64) {
	for i := range dydt {
		dydt[i] = 0
	}
	for ri := range rs {
		r := &rs[ri]
		w := r.omega(t, y)
		if w == 0 {
			continue
		}
		for _, s := range r.Reactants {
			dydt[s.Index] -= s.Stoich * w
		}
		for _, s := range r.Products {
			dydt[s.Index] += s.Stoich * w
		}
	}
}

// Jacobian calculates ∂(dy/dt)/∂y at temperature t and mass fractions y
// and stores it in jac, which must be len(y) × len(y).
func (rs ReactionSet) Jacobian(t float64, y []float64, jac *mat.Dense) {
	jac.Zero()
	for ri := range rs {
		r := &rs[ri]
		k := r.Rate.K(t)
		if k == 0 {
			continue
		}
		// ∂ω/∂y_m for each reactant m.
		for m, sm := range r.Reactants {
			dw := k * dpow(y[sm.Index], sm.Exponent)
			for n, sn := range r.Reactants {
				if n != m {
					dw *= pow(y[sn.Index], sn.Exponent)
				}
			}
			if dw == 0 {
				continue
			}
			for _, s := range r.Reactants {
				jac.Set(s.Index, sm.Index, jac.At(s.Index, sm.Index)-s.Stoich*dw)
			}
			for _, s := range r.Products {
				jac.Set(s.Index, sm.Index, jac.At(s.Index, sm.Index)+s.Stoich*dw)
			}
		}
	}
}

// Mechanism is a reaction mechanism together with the data of the
// species it involves.
type Mechanism struct {
	Species   []SpeciesData
	Reactions ReactionSet
}

// SpeciesNames returns the names of the species in m, in index order.
func (m *Mechanism) SpeciesNames() []string {
	o := make([]string, len(m.Species))
	for i, s := range m.Species {
		o[i] = s.Name
	}
	return o
}

type mechanismFile struct {
	Species   []SpeciesData `toml:"species"`
	Reactions []struct {
		Name      string      `toml:"name"`
		A         float64     `toml:"A"`
		Ta        float64     `toml:"Ta"`
		Tcrit     float64     `toml:"Tcrit"`
		Reactants []coeffFile `toml:"reactants"`
		Products  []coeffFile `toml:"products"`
	} `toml:"reactions"`
}

type coeffFile struct {
	Species  string   `toml:"species"`
	Stoich   float64  `toml:"stoich"`
	Exponent *float64 `toml:"exponent"`
}

// ReadMechanism reads a reaction mechanism in TOML format from r.
// Reactant exponents default to 1 when they are not given.
func ReadMechanism(r io.Reader) (*Mechanism, error) {
	var f mechanismFile
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("solidchem: reading mechanism: %v", err)
	}
	if len(f.Species) == 0 {
		return nil, fmt.Errorf("solidchem: mechanism has no species")
	}
	index := make(map[string]int)
	for i, s := range f.Species {
		if _, ok := index[s.Name]; ok {
			return nil, fmt.Errorf("solidchem: mechanism species %q is defined more than once", s.Name)
		}
		index[s.Name] = i
	}
	convert := func(rxn string, in []coeffFile) ([]SpecieCoeff, error) {
		out := make([]SpecieCoeff, len(in))
		for i, c := range in {
			idx, ok := index[c.Species]
			if !ok {
				return nil, fmt.Errorf("solidchem: reaction %s refers to undefined species %q", rxn, c.Species)
			}
			out[i] = SpecieCoeff{Index: idx, Stoich: c.Stoich, Exponent: 1}
			if c.Exponent != nil {
				out[i].Exponent = *c.Exponent
			}
		}
		return out, nil
	}
	m := &Mechanism{Species: f.Species}
	for _, rf := range f.Reactions {
		reactants, err := convert(rf.Name, rf.Reactants)
		if err != nil {
			return nil, err
		}
		products, err := convert(rf.Name, rf.Products)
		if err != nil {
			return nil, err
		}
		m.Reactions = append(m.Reactions, Reaction{
			Name:      rf.Name,
			Reactants: reactants,
			Products:  products,
			Rate:      Arrhenius{A: rf.A, Ta: rf.Ta, Tcrit: rf.Tcrit},
		})
	}
	if err := m.Reactions.Validate(len(m.Species)); err != nil {
		return nil, err
	}
	return m, nil
}
