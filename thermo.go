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

import "fmt"

// Thermo is the thermodynamic package of the solid phase.
type Thermo interface {
	// Hc returns the heat of formation of species i [J/kg].
	Hc(i int) float64

	// NSpecies returns the number of species Hc is defined for.
	NSpecies() int

	// T returns the temperature of every cell [K].
	T() []float64

	// Rho returns the density of every cell [kg/m³].
	Rho() []float64
}

// SpeciesData holds the thermodynamic data of one solid species.
type SpeciesData struct {
	Name string  `toml:"name"`
	Hc   float64 `toml:"hc"` // heat of formation [J/kg]
}

// SolidThermo is an in-memory Thermo.
type SolidThermo struct {
	Data []SpeciesData

	t, rho []float64
}

// NewSolidThermo returns a SolidThermo for nCells cells at uniform
// temperature t [K] and density rho [kg/m³].
func NewSolidThermo(nCells int, t, rho float64, data ...SpeciesData) (*SolidThermo, error) {
	if t <= 0 {
		return nil, fmt.Errorf("solidchem: temperature must be positive; got %g K", t)
	}
	if rho <= 0 {
		return nil, fmt.Errorf("solidchem: density must be positive; got %g kg/m³", rho)
	}
	th := &SolidThermo{
		Data: data,
		t:    make([]float64, nCells),
		rho:  make([]float64, nCells),
	}
	for i := range th.t {
		th.t[i] = t
		th.rho[i] = rho
	}
	return th, nil
}

// Hc fulfils the Thermo interface.
func (th *SolidThermo) Hc(i int) float64 { return th.Data[i].Hc }

// NSpecies fulfils the Thermo interface.
func (th *SolidThermo) NSpecies() int { return len(th.Data) }

// T fulfils the Thermo interface. The returned slice can be modified
// to change the cell temperatures.
func (th *SolidThermo) T() []float64 { return th.t }

// Rho fulfils the Thermo interface. The returned slice can be modified
// to change the cell densities.
func (th *SolidThermo) Rho() []float64 { return th.rho }
