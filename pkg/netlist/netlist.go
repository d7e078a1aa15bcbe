package netlist

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/rsolver/pkg/network"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid netlist")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Float64 && f.Kind() != reflect.Float32 {
			return false
		}
		v := f.Float()
		return !math.IsInf(v, 0) && !math.IsNaN(v)
	})
}

// Netlist is the file representation of a network.
type Netlist struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Terminals []int      `json:"terminals" yaml:"terminals" toml:"terminals" validate:"unique"`
	Resistors []Resistor `json:"resistors" yaml:"resistors" toml:"resistors" validate:"required,min=1,dive"`
}

// Resistor is one line of a netlist.
type Resistor struct {
	R float64 `json:"r" yaml:"r" toml:"r" validate:"finite,gt=0"`
	A int     `json:"a" yaml:"a" toml:"a"`
	B int     `json:"b" yaml:"b" toml:"b" validate:"nefield=A"`
}

// Validate checks the netlist against its struct rules.
func (nl *Netlist) Validate() error {
	if nl == nil {
		return fmt.Errorf("%w: nil netlist", ErrInvalid)
	}
	if err := validate.Struct(nl); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	e := errs[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "min":
		return fmt.Errorf("%s: must have at least %s entries", field, e.Param())
	case "gt":
		return fmt.Errorf("%s: must be greater than %s", field, e.Param())
	case "finite":
		return fmt.Errorf("%s: must be finite", field)
	case "nefield":
		return fmt.Errorf("%s: endpoints must differ", field)
	case "unique":
		return fmt.Errorf("%s: entries must be unique", field)
	}
	return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
}

// Network validates the netlist and builds the network it describes,
// adding resistors and terminals in file order.
func (nl *Netlist) Network() (*network.Network, error) {
	if err := nl.Validate(); err != nil {
		return nil, err
	}
	net := network.New()
	for _, r := range nl.Resistors {
		net.Add(network.NewResistor(r.R, network.Node(r.A), network.Node(r.B)))
	}
	for _, t := range nl.Terminals {
		net.AddTerminal(network.Node(t))
	}
	return net, nil
}

// FromNetwork captures the current state of net, typically after solving.
// Resistors keep their insertion order; terminals are sorted.
func FromNetwork(name string, net *network.Network) *Netlist {
	nl := &Netlist{Name: name}
	for _, t := range net.Terminals() {
		nl.Terminals = append(nl.Terminals, int(t))
	}
	for _, r := range net.Resistors() {
		nl.Resistors = append(nl.Resistors, Resistor{R: r.R, A: int(r.A), B: int(r.B)})
	}
	return nl
}

// Nodes returns every node mentioned by the netlist, sorted.
func (nl *Netlist) Nodes() []int {
	var out []int
	for _, r := range nl.Resistors {
		out = append(out, r.A, r.B)
	}
	out = append(out, nl.Terminals...)
	slices.Sort(out)
	return slices.Compact(out)
}
