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

package solidchemutil

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/solidchem"
	"github.com/spatialmodel/solidchem/science/chem/analytic"
	"github.com/spatialmodel/solidchem/science/chem/implicit"
	"github.com/spf13/cobra"
)

// Run runs a simulation as configured by cfg. Log messages are
// written to the standard output of cmd and to cfg.LogFile.
func Run(cmd *cobra.Command, cfg *RunConfig) error {
	startTime := time.Now()

	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("solidchem: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := logrus.New()
	log.SetOutput(io.MultiWriter(cmd.OutOrStdout(), logfile))
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("solidchem: %v", err)
	}
	log.SetLevel(level)

	f, err := os.Open(cfg.MechanismFile)
	if err != nil {
		return fmt.Errorf("solidchem: opening mechanism file: %v", err)
	}
	mech, err := solidchem.ReadMechanism(f)
	f.Close()
	if err != nil {
		return err
	}

	m, err := newModel(cfg, mech, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"cells":     m.NCells(),
		"species":   m.NSpecies(),
		"reactions": m.NReaction(),
		"strategy":  cfg.Strategy,
		"chemistry": cfg.Chemistry,
	}).Info("solidchem: starting simulation")

	reactive := reactiveSpecies(mech)
	status := solidchem.Log(log)
	for step := 0; step < cfg.NumSteps; step++ {
		tc, err := m.SolveUniform(cfg.TimeStep)
		if err != nil {
			return err
		}
		advance(m, cfg.TimeStep, cfg.HeatCapacity)
		if err := burnout(m, reactive, cfg.BurnoutThreshold); err != nil {
			return err
		}
		status(cfg.TimeStep, tc, m.CumulativeHeatRelease(), m.ReactingCells())
	}

	o, err := solidchem.NewOutputter(cfg.OutputFile, cfg.OutputVariables, nil)
	if err != nil {
		return err
	}
	if err := o.Output(m.OutputOptions()); err != nil {
		return err
	}
	log.WithField("walltime", time.Since(startTime).Seconds()).Info("solidchem: simulation complete")
	return nil
}

// newModel sets up the grid, solid phase, thermodynamics and kinetics
// strategy described by cfg.
func newModel(cfg *RunConfig, mech *solidchem.Mechanism, log logrus.FieldLogger) (*model, error) {
	g, err := solidchem.NewGrid(cfg.Nx, cfg.Ny, cfg.Nz, cfg.Dx, cfg.Dy, cfg.Dz)
	if err != nil {
		return nil, err
	}
	names := mech.SpeciesNames()
	p, err := solidchem.NewSolidPhase(g, names...)
	if err != nil {
		return nil, err
	}
	y0, err := initialComposition(names, cfg.InitialComposition)
	if err != nil {
		return nil, err
	}
	if err := p.SetUniform(y0...); err != nil {
		return nil, err
	}
	p.Normalize()

	th, err := solidchem.NewSolidThermo(g.NCells(), cfg.Temperature, cfg.Density, mech.Species...)
	if err != nil {
		return nil, err
	}
	if cfg.HotCells > 0 {
		if cfg.HotTemperature <= 0 {
			return nil, fmt.Errorf("solidchem: HotTemperature must be positive; got %g K", cfg.HotTemperature)
		}
		for c := 0; c < cfg.HotCells && c < g.NCells(); c++ {
			th.T()[c] = cfg.HotTemperature
		}
	}

	s, err := strategy(cfg, mech.Reactions)
	if err != nil {
		return nil, err
	}
	return solidchem.New(p, th, mech.Reactions, s,
		solidchem.WithChemistry(cfg.Chemistry), solidchem.WithLogger(log))
}

// strategy returns the kinetics integrator named in cfg.
func strategy(cfg *RunConfig, r solidchem.ReactionSet) (solidchem.Integrator, error) {
	switch cfg.Strategy {
	case "implicit":
		return &implicit.Solver{
			RelTol:   cfg.RelTol,
			AbsTol:   cfg.AbsTol,
			MaxSteps: cfg.MaxSteps,
		}, nil
	case "analytic":
		if err := analytic.Check(r); err != nil {
			return nil, fmt.Errorf("solidchem: the analytic strategy cannot be used with this mechanism: %w", err)
		}
		return analytic.Solver{}, nil
	default:
		return nil, fmt.Errorf("solidchem: invalid Strategy '%s'; valid options are 'implicit' and 'analytic'", cfg.Strategy)
	}
}

// initialComposition returns the mass fraction of every species in
// names, matching the keys of comp without regard to case.
func initialComposition(names []string, comp map[string]float64) ([]float64, error) {
	y := make([]float64, len(names))
	if len(comp) == 0 {
		y[0] = 1
		return y, nil
	}
	for k, v := range comp {
		found := false
		for i, name := range names {
			if strings.EqualFold(k, name) {
				y[i] = v
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("solidchem: InitialComposition species '%s' is not in the mechanism; valid names are %v", k, names)
		}
	}
	var sum float64
	for _, v := range y {
		sum += v
	}
	if sum <= 0 {
		return nil, fmt.Errorf("solidchem: the InitialComposition has no mass")
	}
	return y, nil
}

// reactiveSpecies returns the indices of the species that are consumed
// by at least one reaction.
func reactiveSpecies(mech *solidchem.Mechanism) []int {
	seen := make(map[int]bool)
	var o []int
	for _, r := range mech.Reactions {
		for _, s := range r.Reactants {
			if !seen[s.Index] {
				seen[s.Index] = true
				o = append(o, s.Index)
			}
		}
	}
	return o
}

type model = solidchem.ChemistryModel[*solidchem.SolidPhase, *solidchem.SolidThermo]

// advance updates the composition of every cell from the reaction rates
// of the last time step, Y += RR/ρ·Δt, and renormalizes it to account
// for the mass that left the solid as gas. If cp is positive, the
// released heat also raises the cell temperatures.
func advance(m *model, dt, cp float64) {
	rho := m.Thermo().Rho()
	y := m.Phase().Y()
	for i := range y {
		rr := m.RR(i).Values
		for c := range y[i] {
			v := y[i][c] + rr[c]/rho[c]*dt
			if v < 0 {
				v = 0
			}
			y[i][c] = v
		}
	}
	if cp > 0 {
		t := m.Thermo().T()
		for c, sh := range m.HeatReleaseRate().Values {
			t[c] += sh * dt / (rho[c] * cp)
		}
	}
	m.Phase().Normalize()
}

// burnout switches off the chemistry in every reacting cell where the
// summed mass fraction of the reactive species has dropped below
// threshold.
func burnout(m *model, reactive []int, threshold float64) error {
	y := m.Phase().Y()
	for c := 0; c < m.NCells(); c++ {
		r, err := m.CellReacting(c)
		if err != nil {
			return err
		}
		if !r {
			continue
		}
		var sum float64
		for _, i := range reactive {
			sum += y[i][c]
		}
		if sum < threshold {
			if err := m.SetCellReacting(c, false); err != nil {
				return err
			}
			m.Log.WithField("cell", c).Debug("solidchem: cell burnt out")
		}
	}
	return nil
}
