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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/tealeg/xlsx"
)

// OutputOptions returns the model variables that can be used in output
// expressions, keyed by name, with one value per cell:
// Sh, dQ, V, T, Rho, and Y_<species> and RR_<species> for every
// species. tc is included when chemistry is switched on.
func (m *ChemistryModel[P, T]) OutputOptions() map[string][]float64 {
	o := map[string][]float64{
		"Sh":  m.HeatReleaseRate().Values,
		"dQ":  m.CumulativeHeatRelease().Values,
		"V":   m.phase.Mesh().V(),
		"T":   m.thermo.T(),
		"Rho": m.thermo.Rho(),
	}
	y := m.phase.Y()
	for i, name := range m.phase.Species() {
		o["Y_"+name] = y[i]
		o["RR_"+name] = m.rrs[i].Values
	}
	if tc, err := m.ChemicalTimescale(); err == nil {
		o["tc"] = tc.Values
	}
	return o
}

// Outputter is a holder for output parameters.
//
// fileName contains the path where the output will be saved. The format
// is chosen from the extension: ".csv" or ".xlsx".
//
// outputVariables maps the names of the variables for which data
// should be returned to expressions that define how the
// requested data should be calculated. These expressions can utilize
// model variables (see OutputOptions), other output variables, and
// functions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

var outputName = regexp.MustCompile(`^[A-Za-z]\w*$`)

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("solidchem: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("solidchem: invalid argument %v for function '%s'", args[0], name)
		}
		return f(v), nil
	}
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions: 'exp(x)', 'log(x)', 'abs(x)', and 'sqrt(x)'.
// outputFunctions can add to or override the defaults.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("solidchem: there are no output variables specified")
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":  unaryFunc("exp", math.Exp),
		"log":  unaryFunc("log", math.Log),
		"abs":  unaryFunc("abs", math.Abs),
		"sqrt": unaryFunc("sqrt", math.Sqrt),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: funcs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}
	for name, expr := range outputVariables {
		if !outputName.MatchString(name) {
			return nil, fmt.Errorf("solidchem: output variable name '%s' includes unsupported characters", name)
		}
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("solidchem: output variable %s: %v", name, err)
		}
		o.expressions[name] = e
	}
	return o, nil
}

// Results calculates the output variables from the model variables
// vars (see OutputOptions). Output variables may refer to each other
// as long as there are no cycles.
func (o *Outputter) Results(vars map[string][]float64) (map[string][]float64, error) {
	var n = -1
	for k, v := range vars {
		if n == -1 {
			n = len(v)
		} else if len(v) != n {
			return nil, fmt.Errorf("%w: model variable %s has %d values; expected %d", ErrFieldSize, k, len(v), n)
		}
	}
	if n == -1 {
		n = 0
	}

	results := make(map[string][]float64)
	visiting := make(map[string]bool)
	var eval func(name string) error
	eval = func(name string) error {
		if _, ok := results[name]; ok {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("solidchem: output variable %s is defined in terms of itself", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		e := o.expressions[name]
		for _, v := range e.Vars() {
			if _, ok := o.expressions[v]; ok && v != name {
				if err := eval(v); err != nil {
					return err
				}
				continue
			}
			if _, ok := vars[v]; !ok {
				return fmt.Errorf("solidchem: undefined variable name '%s' in output variable %s", v, name)
			}
		}

		out := make([]float64, n)
		params := make(map[string]interface{})
		for c := 0; c < n; c++ {
			for _, v := range e.Vars() {
				if r, ok := results[v]; ok {
					params[v] = r[c]
				} else {
					params[v] = vars[v][c]
				}
			}
			val, err := e.Evaluate(params)
			if err != nil {
				return fmt.Errorf("solidchem: evaluating output variable %s: %v", name, err)
			}
			f, ok := val.(float64)
			if !ok {
				return fmt.Errorf("solidchem: output variable %s does not evaluate to a number", name)
			}
			out[c] = f
		}
		results[name] = out
		return nil
	}
	for _, name := range o.names() {
		if err := eval(name); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// names returns the output variable names in sorted order.
func (o *Outputter) names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Output calculates the output variables from vars and writes them to
// the output file, one row per cell.
func (o *Outputter) Output(vars map[string][]float64) error {
	results, err := o.Results(vars)
	if err != nil {
		return err
	}
	names := o.names()
	var n int
	if len(names) > 0 {
		n = len(results[names[0]])
	}
	switch strings.ToLower(filepath.Ext(o.fileName)) {
	case ".csv":
		return o.writeCSV(names, results, n)
	case ".xlsx":
		return o.writeXLSX(names, results, n)
	default:
		return fmt.Errorf("solidchem: unsupported output file type '%s'; use .csv or .xlsx", filepath.Ext(o.fileName))
	}
}

func (o *Outputter) writeCSV(names []string, results map[string][]float64, n int) error {
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("solidchem: creating output file: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"cell"}, names...)); err != nil {
		f.Close()
		return err
	}
	rec := make([]string, len(names)+1)
	for c := 0; c < n; c++ {
		rec[0] = strconv.Itoa(c)
		for j, name := range names {
			rec[j+1] = strconv.FormatFloat(results[name][c], 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("solidchem: writing output file: %v", err)
	}
	return f.Close()
}

func (o *Outputter) writeXLSX(names []string, results map[string][]float64, n int) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("solidchem")
	if err != nil {
		return fmt.Errorf("solidchem: creating output sheet: %v", err)
	}
	header := sheet.AddRow()
	header.AddCell().SetString("cell")
	for _, name := range names {
		header.AddCell().SetString(name)
	}
	for c := 0; c < n; c++ {
		row := sheet.AddRow()
		row.AddCell().SetInt(c)
		for _, name := range names {
			row.AddCell().SetFloat(results[name][c])
		}
	}
	if err := file.Save(o.fileName); err != nil {
		return fmt.Errorf("solidchem: writing output file: %v", err)
	}
	return nil
}
