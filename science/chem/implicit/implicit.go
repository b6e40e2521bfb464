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

// Package implicit contains an adaptive, implicit kinetics integrator
// for stiff solid-phase reaction mechanisms.
//
// Each sub-step is a backward Euler step solved with Newton iterations
// on (I - h·J). The local error is estimated by step doubling: the
// result of one full step is compared with two half steps, and the
// step size is adapted so that the error stays within the requested
// tolerances.
package implicit

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/solidchem"
	"gonum.org/v1/gonum/mat"
)

// Default solver settings.
const (
	DefaultRelTol    = 1e-4
	DefaultAbsTol    = 1e-10
	DefaultMaxSteps  = 10000
	DefaultMaxNewton = 10
)

// Solver fulfils the github.com/spatialmodel/solidchem.Integrator
// interface. The zero value uses the default settings.
type Solver struct {
	RelTol, AbsTol float64 // error tolerances
	MaxSteps       int     // maximum number of accepted sub-steps per call
	MaxNewton      int     // maximum number of Newton iterations per sub-step
}

// ErrStepSize is returned when the sub-step size becomes too small to
// make progress.
var ErrStepSize = errors.New("implicit: step size underflow")

// ErrNegativeMassFraction is returned when the solution goes negative by
// more than the absolute tolerance.
var ErrNegativeMassFraction = errors.New("implicit: negative mass fraction")

func (s *Solver) settings() (rtol, atol float64, maxSteps, maxNewton int) {
	rtol, atol, maxSteps, maxNewton = s.RelTol, s.AbsTol, s.MaxSteps, s.MaxNewton
	if rtol <= 0 {
		rtol = DefaultRelTol
	}
	if atol <= 0 {
		atol = DefaultAbsTol
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if maxNewton <= 0 {
		maxNewton = DefaultMaxNewton
	}
	return
}

// Timescale fulfils the Integrator interface.
func (s *Solver) Timescale(c solidchem.CellState, r solidchem.ReactionSet) float64 {
	return solidchem.ConsumptionTimescale(c, r)
}

// Integrate fulfils the Integrator interface. The returned timescale
// is the size of the next sub-step the solver would have taken. If the
// last sub-step was shortened to end at dt, the step size proposed
// before shortening is returned instead when it is larger.
func (s *Solver) Integrate(c solidchem.CellState, r solidchem.ReactionSet, dt float64) ([]float64, float64, error) {
	rtol, atol, maxSteps, maxNewton := s.settings()
	n := len(c.Y)
	w := newWorkspace(n, rtol, atol, maxNewton)

	y0 := append([]float64(nil), c.Y...)
	y := append([]float64(nil), c.Y...)
	yFull := make([]float64, n)
	yMid := make([]float64, n)
	yHalf := make([]float64, n)

	h := dt
	if tc := s.Timescale(c, r); tc < h {
		h = 0.1 * tc
	}
	hMin := dt * 1e-14

	var t, proposed float64
	var clipped bool
	for steps := 0; dt-t > dt*1e-12; {
		if steps >= maxSteps {
			return nil, 0, fmt.Errorf("implicit: maximum number of steps (%d) reached at t = %g of %g s", maxSteps, t, dt)
		}
		proposed, clipped = h, false
		if t+h > dt {
			h = dt - t
			clipped = true
		}
		if h < hMin {
			return nil, 0, fmt.Errorf("%w at t = %g of %g s", ErrStepSize, t, dt)
		}

		err := w.backwardEuler(r, c.T, y, yFull, h)
		if err == nil {
			err = w.backwardEuler(r, c.T, y, yMid, h/2)
		}
		if err == nil {
			err = w.backwardEuler(r, c.T, yMid, yHalf, h/2)
		}
		if err != nil {
			// Newton did not converge: try again with a smaller step.
			h /= 4
			continue
		}

		var errNorm float64
		for i := range yHalf {
			sc := atol + rtol*math.Max(math.Abs(yHalf[i]), math.Abs(y[i]))
			errNorm = math.Max(errNorm, math.Abs(yHalf[i]-yFull[i])/sc)
		}
		if errNorm <= 1 {
			for i, v := range yHalf {
				if v < -atol {
					return nil, 0, fmt.Errorf("%w: species %d reached %g", ErrNegativeMassFraction, i, v)
				}
				y[i] = math.Max(v, 0)
			}
			t += h
			steps++
		}
		h *= math.Min(5, math.Max(0.2, 0.9/math.Sqrt(math.Max(errNorm, 1e-10))))
	}

	rates := make([]float64, n)
	for i := range rates {
		rates[i] = c.Rho * (y[i] - y0[i]) / dt
	}
	if clipped {
		h = math.Max(h, proposed)
	}
	return rates, h, nil
}

// workspace holds the scratch space for a single call to Integrate.
type workspace struct {
	rtol, atol float64
	maxNewton  int

	f      []float64
	jac, a *mat.Dense
	g, dy  *mat.VecDense
}

func newWorkspace(n int, rtol, atol float64, maxNewton int) *workspace {
	return &workspace{
		rtol:      rtol,
		atol:      atol,
		maxNewton: maxNewton,
		f:         make([]float64, n),
		jac:       mat.NewDense(n, n, nil),
		a:         mat.NewDense(n, n, nil),
		g:         mat.NewVecDense(n, nil),
		dy:        mat.NewVecDense(n, nil),
	}
}

// backwardEuler solves y1 = y0 + h·f(y1) for y1 at temperature t.
func (w *workspace) backwardEuler(r solidchem.ReactionSet, t float64, y0, y1 []float64, h float64) error {
	copy(y1, y0)
	n := len(y0)
	for iter := 0; iter < w.maxNewton; iter++ {
		r.Derivatives(t, y1, w.f)
		r.Jacobian(t, y1, w.jac)
		w.a.Scale(-h, w.jac)
		for i := 0; i < n; i++ {
			w.a.Set(i, i, w.a.At(i, i)+1)
			w.g.SetVec(i, -(y1[i] - y0[i] - h*w.f[i]))
		}
		if err := w.dy.SolveVec(w.a, w.g); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return fmt.Errorf("implicit: solving Newton system: %v", err)
			}
		}
		converged := true
		for i := 0; i < n; i++ {
			d := w.dy.AtVec(i)
			y1[i] += d
			if math.IsNaN(y1[i]) {
				return fmt.Errorf("implicit: Newton iteration produced NaN")
			}
			if math.Abs(d) > w.atol+w.rtol*math.Abs(y1[i]) {
				converged = false
			}
		}
		if converged {
			return nil
		}
	}
	return fmt.Errorf("implicit: Newton iteration did not converge in %d iterations", w.maxNewton)
}
