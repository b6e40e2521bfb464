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

import "github.com/ctessum/unit"

// Dimensions of the fields produced by the chemistry model.
var (
	// KilogramPerMeter3Second is the unit of net reaction rates.
	KilogramPerMeter3Second = unit.Dimensions{
		unit.MassDim:   1,
		unit.LengthDim: -3,
		unit.TimeDim:   -1}
	// WattPerMeter3 is the unit of volumetric heat release.
	WattPerMeter3 = unit.Dimensions{
		unit.MassDim:   1,
		unit.LengthDim: -1,
		unit.TimeDim:   -3}
	// JoulePerKilogram is the unit of heats of formation.
	JoulePerKilogram = unit.Dimensions{
		unit.LengthDim: 2,
		unit.TimeDim:   -2}
)

// Field is a scalar value for every cell of a mesh.
type Field struct {
	Name   string
	Dims   unit.Dimensions
	Values []float64
}

// NewField returns a zero-valued field with n cells.
func NewField(name string, dims unit.Dimensions, n int) *Field {
	return &Field{
		Name:   name,
		Dims:   dims,
		Values: make([]float64, n),
	}
}

// Len returns the number of cells in f.
func (f *Field) Len() int { return len(f.Values) }

// At returns the dimensional value of cell i.
func (f *Field) At(i int) *unit.Unit {
	return unit.New(f.Values[i], f.Dims)
}

// Copy returns a deep copy of f.
func (f *Field) Copy() *Field {
	o := NewField(f.Name, f.Dims, len(f.Values))
	copy(o.Values, f.Values)
	return o
}
