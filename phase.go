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

	"gonum.org/v1/gonum/floats"
)

// Phase is the composition of the solid phase: the mesh it lives on,
// the ordered list of solid species, and their mass fractions.
// The chemistry model only reads from a Phase.
type Phase interface {
	// Mesh returns the mesh the phase is discretized on.
	Mesh() Mesh

	// Species returns the species names. The order fixes the
	// species indices used everywhere else.
	Species() []string

	// Y returns the mass fractions as Y()[species][cell].
	Y() [][]float64
}

// SolidPhase is an in-memory Phase.
type SolidPhase struct {
	mesh    Mesh
	species []string
	y       [][]float64
}

// NewSolidPhase returns a SolidPhase on mesh m holding the given species,
// with all mass fractions initialized to zero.
func NewSolidPhase(m Mesh, species ...string) (*SolidPhase, error) {
	if len(species) == 0 {
		return nil, fmt.Errorf("solidchem: a solid phase needs at least one species")
	}
	seen := make(map[string]bool)
	for _, s := range species {
		if seen[s] {
			return nil, fmt.Errorf("solidchem: duplicate species %q", s)
		}
		seen[s] = true
	}
	p := &SolidPhase{
		mesh:    m,
		species: append([]string(nil), species...),
		y:       make([][]float64, len(species)),
	}
	for i := range p.y {
		p.y[i] = make([]float64, m.NCells())
	}
	return p, nil
}

// Mesh fulfils the Phase interface.
func (p *SolidPhase) Mesh() Mesh { return p.mesh }

// Species fulfils the Phase interface.
func (p *SolidPhase) Species() []string { return p.species }

// Y fulfils the Phase interface.
func (p *SolidPhase) Y() [][]float64 { return p.y }

// SpeciesIndex returns the index of the named species.
func (p *SolidPhase) SpeciesIndex(name string) (int, error) {
	for i, s := range p.species {
		if s == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("solidchem: invalid species name %s; valid names are %v", name, p.species)
}

// Set sets the mass fraction of species i in cell c.
func (p *SolidPhase) Set(i, c int, y float64) error {
	if i < 0 || i >= len(p.y) {
		return fmt.Errorf("solidchem: species index %d out of range [0, %d)", i, len(p.y))
	}
	if c < 0 || c >= len(p.y[i]) {
		return &CellIndexError{Cell: c, NCells: len(p.y[i])}
	}
	p.y[i][c] = y
	return nil
}

// SetUniform sets the same composition in every cell. y must have
// one value per species.
func (p *SolidPhase) SetUniform(y ...float64) error {
	if len(y) != len(p.species) {
		return fmt.Errorf("solidchem: got %d mass fractions for %d species", len(y), len(p.species))
	}
	for i, v := range y {
		for c := range p.y[i] {
			p.y[i][c] = v
		}
	}
	return nil
}

// Normalize rescales the mass fractions in every cell so that they sum
// to one. Cells with no mass are left unchanged.
func (p *SolidPhase) Normalize() {
	col := make([]float64, len(p.y))
	for c := 0; c < p.mesh.NCells(); c++ {
		for i := range p.y {
			col[i] = p.y[i][c]
		}
		sum := floats.Sum(col)
		if sum <= 0 {
			continue
		}
		for i := range p.y {
			p.y[i][c] /= sum
		}
	}
}
