package source

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/tabula/pkg/table"
)

// document is the YAML shape of one table definition.
type document struct {
	Name       string              `yaml:"name"`
	Mode       string              `yaml:"mode"`
	Dimensions []dimensionDocument `yaml:"dimensions"`
	Rules      []ruleDocument      `yaml:"rules"`
}

type dimensionDocument struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Values []string `yaml:"values"`
}

type ruleDocument struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Cells       []cellDocument `yaml:"cells"`
	Output      string         `yaml:"output"`
}

// cellDocument accepts exactly one of its three forms.
type cellDocument struct {
	Any      bool   `yaml:"any"`
	Is       string `yaml:"is"`
	Interval string `yaml:"interval"`
}

// ParseBytes decodes one YAML table definition and constructs the table,
// running full construction-time validation.
func ParseBytes(data []byte) (*table.Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.build()
}

func (d *document) build() (*table.Table, error) {
	mode, err := parseMode(d.Mode)
	if err != nil {
		return nil, err
	}

	dims := make([]table.Dimension, 0, len(d.Dimensions))
	for _, dd := range d.Dimensions {
		dim, err := dd.build()
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}

	rules := make([]table.Rule, 0, len(d.Rules))
	for _, rd := range d.Rules {
		rule, err := rd.build()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return table.New(table.Spec{
		Name:       d.Name,
		Mode:       mode,
		Dimensions: dims,
		Rules:      rules,
	})
}

func parseMode(s string) (table.Mode, error) {
	switch s {
	case "", string(table.ModeStrict):
		return table.ModeStrict, nil
	case string(table.ModeFirstMatch):
		return table.ModeFirstMatch, nil
	default:
		return "", fmt.Errorf("unknown table mode %q", s)
	}
}

func (d dimensionDocument) build() (table.Dimension, error) {
	switch d.Kind {
	case "discrete":
		return table.DiscreteDimension(d.Name, d.Values...), nil
	case "continuous":
		if len(d.Values) != 0 {
			return table.Dimension{}, fmt.Errorf("continuous dimension %q must not declare values", d.Name)
		}
		return table.ContinuousDimension(d.Name), nil
	default:
		return table.Dimension{}, fmt.Errorf("dimension %q has unknown kind %q", d.Name, d.Kind)
	}
}

func (r ruleDocument) build() (table.Rule, error) {
	cells := make([]table.Cell, 0, len(r.Cells))
	for i, cd := range r.Cells {
		cell, err := cd.build()
		if err != nil {
			return table.Rule{}, fmt.Errorf("rule %q cell %d: %w", r.ID, i, err)
		}
		cells = append(cells, cell)
	}
	return table.Rule{
		ID:          r.ID,
		Description: r.Description,
		Cells:       cells,
		Output:      r.Output,
	}, nil
}

func (c cellDocument) build() (table.Cell, error) {
	forms := 0
	if c.Any {
		forms++
	}
	if c.Is != "" {
		forms++
	}
	if c.Interval != "" {
		forms++
	}
	if forms != 1 {
		return table.Cell{}, fmt.Errorf("cell must set exactly one of any, is, interval")
	}

	switch {
	case c.Any:
		return table.Any(), nil
	case c.Is != "":
		return table.Is(c.Is), nil
	default:
		iv, err := table.ParseInterval(c.Interval)
		if err != nil {
			return table.Cell{}, err
		}
		return table.In(iv), nil
	}
}
