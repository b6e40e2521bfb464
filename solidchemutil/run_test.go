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
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/solidchem"
	"github.com/spatialmodel/solidchem/science/chem/implicit"
)

// runTest runs the test configuration with the given overrides and
// returns the output columns.
func runTest(t *testing.T, overrides map[string]interface{}) map[string][]float64 {
	dir := t.TempDir()
	Cfg.Set("config", "testdata/run.toml")
	Cfg.Set("OutputFile", filepath.Join(dir, "out.csv"))
	Cfg.Set("LogFile", "")
	Cfg.Set("OutputVariables", map[string]string{
		"Char": "Y_char",
		"Heat": "dQ",
	})
	Cfg.Set("Strategy", "implicit")
	Cfg.Set("Chemistry", true)
	for k, v := range overrides {
		Cfg.Set(k, v)
	}
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.log")); err != nil {
		t.Errorf("missing log file: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	o := make(map[string][]float64)
	for _, rec := range recs[1:] {
		for j, name := range recs[0] {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				t.Fatal(err)
			}
			o[name] = append(o[name], v)
		}
	}
	return o
}

func TestRun(t *testing.T) {
	o := runTest(t, nil)
	if len(o["cell"]) != 8 {
		t.Fatalf("have %d cells, want 8", len(o["cell"]))
	}
	for c := 0; c < 8; c++ {
		if o["Char"][c] <= 0 {
			t.Errorf("cell %d: no char was formed", c)
		}
		if o["Heat"][c] < 0 {
			t.Errorf("cell %d: negative heat release %g", c, o["Heat"][c])
		}
	}
	if o["Char"][0] <= o["Char"][7] {
		t.Errorf("the hot cell should have charred more: %g <= %g", o["Char"][0], o["Char"][7])
	}
}

func TestRunAnalytic(t *testing.T) {
	implicit := runTest(t, nil)
	analytic := runTest(t, map[string]interface{}{"Strategy": "analytic"})
	for c := range analytic["Char"] {
		if different(analytic["Char"][c], implicit["Char"][c], 0.05) {
			t.Errorf("cell %d: analytic %g, implicit %g", c, analytic["Char"][c], implicit["Char"][c])
		}
	}
}

func TestRunNoChemistry(t *testing.T) {
	o := runTest(t, map[string]interface{}{"Chemistry": false})
	for c := range o["cell"] {
		if o["Char"][c] != 0 || o["Heat"][c] != 0 {
			t.Errorf("cell %d: char %g, heat %g; want 0", c, o["Char"][c], o["Heat"][c])
		}
	}
}

func TestRunBadStrategy(t *testing.T) {
	Cfg.Set("config", "testdata/run.toml")
	Cfg.Set("OutputFile", filepath.Join(t.TempDir(), "out.csv"))
	Cfg.Set("Strategy", "explicit")
	defer Cfg.Set("Strategy", "implicit")
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err == nil || !strings.Contains(err.Error(), "Strategy") {
		t.Errorf("have %v, want invalid strategy error", err)
	}
}

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "solidchem v") {
		t.Errorf("wrong version output %q", b.String())
	}
}

func TestLoadRunConfig(t *testing.T) {
	cfg := viper.New()
	if _, err := LoadRunConfig(cfg); err == nil {
		t.Error("missing mechanism should be an error")
	}
	cfg.Set("MechanismFile", "mechanism.toml")
	cfg.Set("OutputFile", "out.shp")
	if _, err := LoadRunConfig(cfg); err == nil {
		t.Error("bad output format should be an error")
	}
	cfg.Set("OutputFile", filepath.Join(t.TempDir(), "out.xlsx"))
	if _, err := LoadRunConfig(cfg); err == nil {
		t.Error("missing output variables should be an error")
	}
	cfg.Set("OutputVariables", `{"Heat": "dQ\n * 2"}`)
	cfg.Set("InitialComposition", map[string]interface{}{"wood": 0.8, "char": "0.2"})
	cfg.Set("TimeStep", 0.1)
	c, err := LoadRunConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.OutputVariables["Heat"] != "dQ  * 2" {
		t.Errorf("wrong output variable %q", c.OutputVariables["Heat"])
	}
	if c.InitialComposition["wood"] != 0.8 || c.InitialComposition["char"] != 0.2 {
		t.Errorf("wrong composition %v", c.InitialComposition)
	}
	if c.LogFile != strings.TrimSuffix(c.OutputFile, ".xlsx")+".log" {
		t.Errorf("wrong log file %s", c.LogFile)
	}
	cfg.Set("TimeStep", 0.)
	if _, err := LoadRunConfig(cfg); err == nil {
		t.Error("zero time step should be an error")
	}
}

func TestInitialComposition(t *testing.T) {
	names := []string{"Wood", "Char"}
	y, err := initialComposition(names, nil)
	if err != nil || y[0] != 1 || y[1] != 0 {
		t.Errorf("have %v, %v", y, err)
	}
	y, err = initialComposition(names, map[string]float64{"char": 0.5, "WOOD": 0.5})
	if err != nil || y[0] != 0.5 || y[1] != 0.5 {
		t.Errorf("have %v, %v", y, err)
	}
	if _, err := initialComposition(names, map[string]float64{"ash": 1}); err == nil {
		t.Error("unknown species should be an error")
	}
	if _, err := initialComposition(names, map[string]float64{"wood": 0}); err == nil {
		t.Error("no mass should be an error")
	}
}

func TestBurnout(t *testing.T) {
	g, err := solidchem.NewGrid(3, 1, 1, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	p, err := solidchem.NewSolidPhase(g, "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetUniform(1, 0); err != nil {
		t.Fatal(err)
	}
	for _, c := range []int{1, 2} {
		if err := p.Set(0, c, 1.e-6); err != nil {
			t.Fatal(err)
		}
		if err := p.Set(1, c, 1-1.e-6); err != nil {
			t.Fatal(err)
		}
	}
	th, err := solidchem.NewSolidThermo(3, 600, 1000, solidchem.SpeciesData{Name: "A"}, solidchem.SpeciesData{Name: "B"})
	if err != nil {
		t.Fatal(err)
	}
	rxn := solidchem.ReactionSet{{
		Name:      "AtoB",
		Reactants: []solidchem.SpecieCoeff{{Index: 0, Stoich: 1, Exponent: 1}},
		Products:  []solidchem.SpecieCoeff{{Index: 1, Stoich: 1}},
		Rate:      solidchem.Constant(1),
	}}
	m, err := solidchem.New(p, th, rxn, new(implicit.Solver))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetCellReacting(2, false); err != nil {
		t.Fatal(err)
	}
	if err := burnout(m, []int{0}, 1.e-4); err != nil {
		t.Fatal(err)
	}
	for c, want := range []bool{true, false, false} {
		if r, err := m.CellReacting(c); err != nil {
			t.Fatal(err)
		} else if r != want {
			t.Errorf("cell %d: reacting = %v, want %v", c, r, want)
		}
	}
}

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
