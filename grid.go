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

// Mesh is the spatial discretization the chemistry is solved on.
// Cell indices run from 0 to NCells()-1 and never change.
type Mesh interface {
	// NCells returns the number of computational cells.
	NCells() int

	// V returns the volume of every cell [m³]. The returned slice
	// must not be modified.
	V() []float64
}

// Cell holds the geometry of a single grid cell.
type Cell struct {
	Dx, Dy, Dz float64 // cell size [m]
	Volume     float64 `desc:"Cell volume" units:"m³"`
	Row        int     // cell index
	Layer      int     // vertical layer index
}

func (c *Cell) prepare() {
	c.Volume = c.Dx * c.Dy * c.Dz
}

// Grid is a regular block of Nx × Ny × Nz cells. Cells are numbered
// layer by layer, and within a layer row by row, starting from
// the lower south-west corner.
type Grid struct {
	Nx, Ny, Nz int
	Cells      []*Cell

	v []float64
}

// NewGrid creates a regular grid with the given number of cells in each
// direction and the given cell edge lengths [m].
func NewGrid(nx, ny, nz int, dx, dy, dz float64) (*Grid, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("solidchem: grid must have at least one cell in each direction; got %d×%d×%d", nx, ny, nz)
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return nil, fmt.Errorf("solidchem: grid cell lengths must be positive; got %g, %g, %g", dx, dy, dz)
	}
	g := &Grid{Nx: nx, Ny: ny, Nz: nz}
	g.Cells = make([]*Cell, 0, nx*ny*nz)
	g.v = make([]float64, 0, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := &Cell{Dx: dx, Dy: dy, Dz: dz, Row: len(g.Cells), Layer: k}
				c.prepare()
				g.Cells = append(g.Cells, c)
				g.v = append(g.v, c.Volume)
			}
		}
	}
	return g, nil
}

// NCells fulfils the Mesh interface.
func (g *Grid) NCells() int { return len(g.Cells) }

// V fulfils the Mesh interface.
func (g *Grid) V() []float64 { return g.v }

// Index returns the cell index at column i, row j and layer k.
func (g *Grid) Index(i, j, k int) (int, error) {
	if i < 0 || i >= g.Nx || j < 0 || j >= g.Ny || k < 0 || k >= g.Nz {
		return -1, fmt.Errorf("solidchem: grid position (%d, %d, %d) is outside of the %d×%d×%d grid", i, j, k, g.Nx, g.Ny, g.Nz)
	}
	return k*g.Nx*g.Ny + j*g.Nx + i, nil
}
