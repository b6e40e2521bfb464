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
	"runtime"
	"sync"
)

// CellCalculator performs a calculation on a single cell.
type CellCalculator func(cell int) error

// cellError pairs an error with the cell it occurred in.
type cellError struct {
	cell int
	err  error
}

// Calculations concurrently runs all of the calculators on every cell
// index in [0, nCells). Each processor handles a strided subset of the
// cells, so a cell is only ever touched by one goroutine. All cells are
// processed even if some fail; the error from the lowest-numbered
// failing cell is returned together with that cell's index.
func Calculations(nCells int, calculators ...CellCalculator) (failedCell int, err error) {
	nprocs := runtime.GOMAXPROCS(0) // number of processors
	if nprocs > nCells {
		nprocs = nCells
	}
	firstErr := make([]*cellError, nprocs)

	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < nCells; ii += nprocs {
				for _, f := range calculators {
					if err := f(ii); err != nil {
						if firstErr[pp] == nil {
							firstErr[pp] = &cellError{cell: ii, err: err}
						}
						break
					}
				}
			}
		}(pp)
	}
	wg.Wait()

	var lowest *cellError
	for _, e := range firstErr {
		if e != nil && (lowest == nil || e.cell < lowest.cell) {
			lowest = e
		}
	}
	if lowest == nil {
		return -1, nil
	}
	return lowest.cell, lowest.err
}
