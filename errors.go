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
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned when an operation has no meaning in the
	// current model configuration, for example asking for a chemical
	// timescale when chemistry is switched off.
	ErrNotSupported = errors.New("solidchem: operation not supported")

	// ErrIntegrationFailure is wrapped by every *IntegrationFailure.
	ErrIntegrationFailure = errors.New("solidchem: kinetics integration failed")

	// ErrInvalidCellIndex is wrapped by every *CellIndexError.
	ErrInvalidCellIndex = errors.New("solidchem: invalid cell index")

	// ErrFieldSize is returned when a per-cell input does not have one
	// value per cell.
	ErrFieldSize = errors.New("solidchem: field size does not match the number of cells")

	// ErrInvalidTimeStep is returned for negative or NaN time steps.
	ErrInvalidTimeStep = errors.New("solidchem: invalid time step")

	// ErrNoIntegrator is returned by New when no kinetics strategy is given.
	ErrNoIntegrator = errors.New("solidchem: a kinetics integrator is required")
)

// IntegrationFailure reports that the kinetics integrator could not
// advance the chemistry in cell Cell.
type IntegrationFailure struct {
	Cell int
	Err  error
}

func (e *IntegrationFailure) Error() string {
	return fmt.Sprintf("solidchem: kinetics integration failed in cell %d: %v", e.Cell, e.Err)
}

// Unwrap allows errors.Is to match both ErrIntegrationFailure and the
// integrator's own error.
func (e *IntegrationFailure) Unwrap() []error {
	return []error{ErrIntegrationFailure, e.Err}
}

// CellIndexError reports an out-of-range cell index.
type CellIndexError struct {
	Cell, NCells int
}

func (e *CellIndexError) Error() string {
	return fmt.Sprintf("solidchem: cell index %d out of range [0, %d)", e.Cell, e.NCells)
}

func (e *CellIndexError) Unwrap() error { return ErrInvalidCellIndex }
