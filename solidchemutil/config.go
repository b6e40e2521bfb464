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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// RunConfig holds the settings of a simulation.
type RunConfig struct {
	MechanismFile string
	Chemistry     bool
	Strategy      string

	RelTol, AbsTol float64 // implicit solver tolerances
	MaxSteps       int     // implicit solver sub-step limit

	Nx, Ny, Nz int
	Dx, Dy, Dz float64 // [m]

	// InitialComposition maps species names to mass fractions.
	InitialComposition map[string]float64

	Temperature    float64 // [K]
	HotCells       int
	HotTemperature float64 // [K]
	Density        float64 // [kg/m³]
	HeatCapacity   float64 // [J/kg/K]

	TimeStep         float64 // [s]
	NumSteps         int
	BurnoutThreshold float64

	OutputFile      string
	LogFile         string
	LogLevel        string
	OutputVariables map[string]string
}

// LoadRunConfig reads a simulation configuration from cfg.
func LoadRunConfig(cfg *viper.Viper) (*RunConfig, error) {
	mech := os.ExpandEnv(cfg.GetString("MechanismFile"))
	if mech == "" {
		return nil, fmt.Errorf("solidchem: you need to specify a reaction mechanism in the MechanismFile configuration variable")
	}
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	vars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	vars, err = checkOutputVars(vars)
	if err != nil {
		return nil, err
	}
	comp, err := GetStringMapString("InitialComposition", cfg)
	if err != nil {
		return nil, err
	}
	c := &RunConfig{
		MechanismFile: mech,
		Chemistry:     cfg.GetBool("Chemistry"),
		Strategy:      strings.ToLower(cfg.GetString("Strategy")),

		RelTol:   cfg.GetFloat64("Implicit.RelTol"),
		AbsTol:   cfg.GetFloat64("Implicit.AbsTol"),
		MaxSteps: cfg.GetInt("Implicit.MaxSteps"),

		Nx: cfg.GetInt("Grid.Nx"),
		Ny: cfg.GetInt("Grid.Ny"),
		Nz: cfg.GetInt("Grid.Nz"),
		Dx: cfg.GetFloat64("Grid.Dx"),
		Dy: cfg.GetFloat64("Grid.Dy"),
		Dz: cfg.GetFloat64("Grid.Dz"),

		InitialComposition: make(map[string]float64),

		Temperature:    cfg.GetFloat64("Temperature"),
		HotCells:       cfg.GetInt("HotCells"),
		HotTemperature: cfg.GetFloat64("HotTemperature"),
		Density:        cfg.GetFloat64("Density"),
		HeatCapacity:   cfg.GetFloat64("HeatCapacity"),

		TimeStep:         cfg.GetFloat64("TimeStep"),
		NumSteps:         cfg.GetInt("NumSteps"),
		BurnoutThreshold: cfg.GetFloat64("BurnoutThreshold"),

		OutputFile:      outputFile,
		LogFile:         checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), outputFile),
		LogLevel:        cfg.GetString("LogLevel"),
		OutputVariables: vars,
	}
	for name, v := range comp {
		y, err := cast.ToFloat64E(os.ExpandEnv(v))
		if err != nil {
			return nil, fmt.Errorf("solidchem: invalid initial mass fraction for %s: %v", name, err)
		}
		if y < 0 {
			return nil, fmt.Errorf("solidchem: negative initial mass fraction %g for %s", y, name)
		}
		c.InitialComposition[name] = y
	}
	if c.TimeStep <= 0 {
		return nil, fmt.Errorf("solidchem: TimeStep must be positive; got %g", c.TimeStep)
	}
	if c.NumSteps < 0 {
		return nil, fmt.Errorf("solidchem: NumSteps must not be negative; got %d", c.NumSteps)
	}
	return c, nil
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	switch strings.ToLower(filepath.Ext(f)) {
	case ".csv", ".xlsx":
	default:
		return f, fmt.Errorf("solidchem: the OutputFile must end in .csv or .xlsx; got %s", f)
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("solidchem: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return make(map[string]string), nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return make(map[string]string), nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("solidchem: reading %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("solidchem: invalid type for %s: %#v", varName, i)
	}
}
