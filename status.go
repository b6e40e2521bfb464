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
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// StepLogger reports the progress of a simulation after each time step.
type StepLogger func(dt, tc float64, dQ *Field, reacting int)

// Log returns a StepLogger that writes simulation status messages to l.
func Log(l logrus.FieldLogger) StepLogger {
	startTime := time.Now()
	timeStepTime := time.Now()

	iteration := 0
	simTime := 0.

	return func(dt, tc float64, dQ *Field, reacting int) {
		iteration++
		simTime += dt
		fields := logrus.Fields{
			"iteration": iteration,
			"walltime":  time.Since(startTime).Seconds(),
			"Δwalltime": time.Since(timeStepTime).Seconds(),
			"timestep":  dt,
			"time":      simTime,
			"reacting":  reacting,
		}
		if tc != NeutralTimescale {
			fields["timescale"] = tc
		}
		if dQ != nil && dQ.Len() > 0 {
			fields["heat"] = floats.Sum(dQ.Values)
		}
		l.WithFields(fields).Info("solidchem: time step complete")
		timeStepTime = time.Now()
	}
}
