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

// Package solidchemutil contains the command-line interface and
// configuration handling for solidchem.
package solidchemutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/solidchem"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to solidchem.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MechanismFile",
			usage: `
              MechanismFile is the path to the TOML file holding the
              solid species and the reactions between them.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Chemistry",
			usage: `
              Chemistry specifies whether the chemistry is switched on.
              If false, no reactions take place and no heat is released.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Strategy",
			usage: `
              Strategy is the kinetics integration strategy: 'implicit'
              for the adaptive implicit solver, which works for any
              mechanism, or 'analytic' for the exact solution of
              mechanisms made up of first order reactions only.`,
			defaultVal: "implicit",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Implicit.RelTol",
			usage: `
              Implicit.RelTol is the relative error tolerance of the
              implicit solver.`,
			defaultVal: 1.e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Implicit.AbsTol",
			usage: `
              Implicit.AbsTol is the absolute mass fraction error tolerance
              of the implicit solver.`,
			defaultVal: 1.e-10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Implicit.MaxSteps",
			usage: `
              Implicit.MaxSteps is the maximum number of sub-steps the
              implicit solver may take in a cell during one time step.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of grid cells in the x direction.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of grid cells in the y direction.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Nz",
			usage: `
              Grid.Nz is the number of grid cells in the z direction.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx is the grid cell length in the x direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Dy",
			usage: `
              Grid.Dy is the grid cell length in the y direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.Dz",
			usage: `
              Grid.Dz is the grid cell length in the z direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InitialComposition",
			usage: `
              InitialComposition maps species names to their initial mass
              fractions, which are the same in every cell. Species that
              are not listed start at zero. If it is empty, the solid is
              made up of the first species in the mechanism only.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Temperature",
			usage: `
              Temperature is the initial temperature of the solid [K].`,
			shorthand:  "T",
			defaultVal: 700.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HotCells",
			usage: `
              HotCells is the number of cells, counting from cell 0, that
              start at HotTemperature instead of Temperature.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HotTemperature",
			usage: `
              HotTemperature is the initial temperature of the hot cells [K].`,
			defaultVal: 900.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Density",
			usage: `
              Density is the density of the solid [kg/m³].`,
			defaultVal: 500.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HeatCapacity",
			usage: `
              HeatCapacity is the specific heat capacity of the solid
              [J/kg/K]. When it is greater than zero, the heat released by
              the reactions raises the temperature of each cell. Otherwise
              the temperature is held constant.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TimeStep",
			usage: `
              TimeStep is the length of each time step [s].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumSteps",
			usage: `
              NumSteps is the number of time steps to run.`,
			shorthand:  "n",
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BurnoutThreshold",
			usage: `
              BurnoutThreshold is the mass fraction of reactive species
              below which a cell is considered burnt out. Chemistry is
              switched off in burnt out cells.`,
			defaultVal: 1.e-3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the desired output file
              location, ending in '.csv' or '.xlsx'. It can include
              environment variables.`,
			shorthand:  "o",
			defaultVal: "solidchem_output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the desired logfile location. It
              can include environment variables. If LogFile is left blank,
              the logfile will be saved in the same location as the
              OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to write:
              one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              included in the output file. It maps output names to
              expressions of the model variables Sh, dQ, tc, V, T, Rho,
              Y_<species>, and RR_<species>. Expressions can use the
              functions exp, log, abs, and sqrt.`,
			defaultVal: map[string]string{
				"HeatRelease": "dQ",
				"Sh":          "Sh",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SOLIDCHEM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("solidchem: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "solidchem",
	Short: "A solid-phase reaction chemistry model.",
	Long: `solidchem calculates reaction rates and heat release in a reacting solid,
for example wood or another charring material that decomposes when heated.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SOLIDCHEM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of solidchem.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("solidchem v%s\n", solidchem.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run heats a block of solid and integrates its chemistry for NumSteps
time steps of length TimeStep. After each step the composition of every
cell is updated from the reaction rates, and cells whose reactive mass
fraction has dropped below BurnoutThreshold stop reacting. The variables
in OutputVariables are written to OutputFile at the end of the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadRunConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, cfg)
	},
	DisableAutoGenTag: true,
}
