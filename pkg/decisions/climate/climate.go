// Package climate defines a continuous-range HVAC decision table: ambient
// temperature and relative humidity resolve to a thermal and moisture
// setting.
//
// The table is strict: the twelve temperature-by-humidity bands are pairwise
// disjoint, so the verdict never depends on rule order. Interval bound
// semantics are load-bearing here, a reading of exactly 20 degrees heats to
// nothing and a reading of exactly 25 does not cool.
package climate

import (
	"fmt"
	"log/slog"

	"mercator-hq/tabula/pkg/table"
)

// ThermalAction is the heating/cooling component of a verdict.
type ThermalAction string

const (
	Heat ThermalAction = "heat"
	Cool ThermalAction = "cool"
	Hold ThermalAction = "hold"
)

// MoistureAction is the humidity component of a verdict.
type MoistureAction string

const (
	Humidify   MoistureAction = "humidify"
	Dehumidify MoistureAction = "dehumidify"
	NoChange   MoistureAction = "none"
)

// Setting is the combined output of the table.
type Setting struct {
	Thermal  ThermalAction
	Moisture MoistureAction
}

func (s Setting) String() string {
	return fmt.Sprintf("%s/%s", s.Thermal, s.Moisture)
}

// Temperature band boundaries in degrees Celsius. Comfort is [Comfortable,
// ComfortMax]; both endpoints are in band.
const (
	FreezingMax = 0.0
	Comfortable = 20.0
	ComfortMax  = 25.0
)

// Relative humidity band boundaries in percent. Comfort is [HumidityMin,
// HumidityMax].
const (
	HumidityMin = 40.0
	HumidityMax = 60.0
)

// New builds the HVAC table. Temperature splits into four bands
// ((-inf,0), [0,20), [20,25], (25,+inf)) and humidity into three
// ((-inf,40), [40,60], (60,+inf)); the twelve cells pair a thermal action
// keyed on the temperature band with a moisture action keyed on the humidity
// band.
func New() (*table.Table, error) {
	tempBands := []struct {
		label   string
		iv      table.Interval
		thermal ThermalAction
	}{
		{"freezing", table.LessThan(FreezingMax), Heat},
		{"cold", table.ClosedOpen(FreezingMax, Comfortable), Heat},
		{"comfortable", table.Closed(Comfortable, ComfortMax), Hold},
		{"hot", table.GreaterThan(ComfortMax), Cool},
	}
	humidityBands := []struct {
		label    string
		iv       table.Interval
		moisture MoistureAction
	}{
		{"dry", table.LessThan(HumidityMin), Humidify},
		{"normal", table.Closed(HumidityMin, HumidityMax), NoChange},
		{"humid", table.GreaterThan(HumidityMax), Dehumidify},
	}

	rules := make([]table.Rule, 0, len(tempBands)*len(humidityBands))
	for _, tb := range tempBands {
		for _, hb := range humidityBands {
			rules = append(rules, table.Rule{
				ID:     tb.label + "-" + hb.label,
				Cells:  []table.Cell{table.In(tb.iv), table.In(hb.iv)},
				Output: Setting{Thermal: tb.thermal, Moisture: hb.moisture},
			})
		}
	}

	return table.New(table.Spec{
		Name: "hvac",
		Mode: table.ModeStrict,
		Dimensions: []table.Dimension{
			table.ContinuousDimension("temperature"),
			table.ContinuousDimension("humidity"),
		},
		Rules: rules,
	})
}

// NewEvaluator builds the table and wraps it in an evaluator.
func NewEvaluator(config *table.EvaluatorConfig, logger *slog.Logger) (*table.Evaluator, error) {
	tbl, err := New()
	if err != nil {
		return nil, err
	}
	return table.NewEvaluator(tbl, config, logger)
}

// Decide evaluates one sensor reading and returns the setting.
func Decide(ev *table.Evaluator, temperature, humidity float64) (Setting, error) {
	decision, err := ev.Evaluate(table.Tuple(temperature, humidity))
	if err != nil {
		return Setting{}, err
	}
	setting, ok := decision.Output.(Setting)
	if !ok {
		return Setting{}, fmt.Errorf("unexpected output type %T from rule %s", decision.Output, decision.RuleID)
	}
	return setting, nil
}
