package endpoints

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
)

// DefaultPrefix is the root of the address space when Options.Prefix is empty.
const DefaultPrefix = "/atem"

// Value limits for endpoints whose range does not depend on the device.
const (
	minTransitionRate = 1
	maxTransitionRate = 250
	minGainDB         = -60.0
	maxGainDB         = 6.0
)

// Options configures Register.
type Options struct {
	// Prefix is prepended to every template. Defaults to DefaultPrefix.
	Prefix string

	// Controller receives the switcher operations.
	Controller switcher.Controller

	// State supplies the topology for template expansion and the live
	// bounds used by validators.
	State *switcher.State
}

// Router is the subset of *osc.Router used for registration.
type Router interface {
	Register(routes ...osc.Route) error
}

// catalogue accumulates routes while the address tables are walked.
type catalogue struct {
	prefix string
	ctl    switcher.Controller
	state  *switcher.State
	topo   switcher.Topology
	routes []osc.Route
	errs   []error
}

// Register expands the catalogue and registers every address with r.
// It returns the number of routes registered.
func Register(r Router, opts Options) (int, error) {
	c, err := build(opts)
	if err != nil {
		return 0, err
	}
	if err := r.Register(c.routes...); err != nil {
		return 0, err
	}
	return len(c.routes), nil
}

// Routes expands the catalogue without registering it.
func Routes(opts Options) ([]osc.Route, error) {
	c, err := build(opts)
	if err != nil {
		return nil, err
	}
	return c.routes, nil
}

func build(opts Options) (*catalogue, error) {
	if opts.Controller == nil {
		return nil, errors.New("endpoints: controller is required")
	}
	if opts.State == nil {
		return nil, errors.New("endpoints: state is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	c := &catalogue{
		prefix: prefix,
		ctl:    opts.Controller,
		state:  opts.State,
		topo:   opts.State.Topology(),
	}
	c.mixEffects()
	c.downstreamKeyers()
	c.outputs()
	c.media()
	c.audio()
	c.system()

	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return c, nil
}

// placeholders maps each template placeholder to the topology count that
// bounds it.
var placeholders = []struct {
	name  string
	count func(switcher.Topology) int
}{
	{"me", func(t switcher.Topology) int { return t.MixEffects }},
	{"usk", func(t switcher.Topology) int { return t.UpstreamKeyers }},
	{"dsk", func(t switcher.Topology) int { return t.DownstreamKeyers }},
	{"aux", func(t switcher.Topology) int { return t.Aux }},
	{"macro", func(t switcher.Topology) int { return t.Macros }},
	{"player", func(t switcher.Topology) int { return t.MediaPlayers }},
	{"box", func(t switcher.Topology) int { return t.SuperSourceBoxes }},
	{"input", func(t switcher.Topology) int { return t.AudioInputs }},
}

// ranges returns template ranges for the topology at registration time.
func (c *catalogue) ranges() osc.Ranges {
	r := make(osc.Ranges, len(placeholders))
	for _, ph := range placeholders {
		r[ph.name] = osc.Span(ph.count(c.topo))
	}
	return r
}

// present rejects a message whose path indices p no longer exist in the
// live topology, e.g. an M/E that a smaller switcher model does not have.
func (c *catalogue) present(p osc.Params) osc.Validator {
	return osc.ValidatorFunc(func(osc.Arguments) error {
		t := c.state.Topology()
		for _, ph := range placeholders {
			index, ok := p[ph.name]
			if !ok {
				continue
			}
			if n := ph.count(t); index > n {
				return fmt.Errorf("%w: %s %d (switcher has %d)", osc.ErrOutOfRange, ph.name, index, n)
			}
		}
		return nil
	})
}

// add expands tmpl and registers one route per concrete address, sharing
// validator v. The endpoint constructor receives the placeholder values of
// that address. Addresses with placeholders are also checked against the
// live topology once v accepts the arguments.
func (c *catalogue) add(tmpl string, v osc.Validator, endpoint func(p osc.Params) osc.EndpointFunc) {
	t, err := osc.ParseTemplate(c.prefix + tmpl)
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	bindings, err := t.Expand(c.ranges())
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	for _, b := range bindings {
		rv := v
		if len(b.Params) > 0 {
			rv = osc.All(v, c.present(b.Params))
		}
		c.routes = append(c.routes, osc.Route{
			Address:   b.Address,
			Validator: rv,
			Endpoint:  endpoint(b.Params),
		})
	}
}

// input validates a single source id against the live input count.
// Special sources such as black and color bars are always accepted.
func (c *catalogue) input() osc.Validator {
	return osc.ValidatorFunc(func(args osc.Arguments) error {
		if err := osc.Arity(1).Validate(args); err != nil {
			return err
		}
		id, err := args.Int(0)
		if err != nil {
			return err
		}
		if c.state.Topology().Inputs == 0 {
			return osc.ErrStateUnavailable
		}
		if !c.state.ValidInput(id) {
			return fmt.Errorf("%w: input %d not available (switcher has %d)",
				osc.ErrOutOfRange, id, c.state.Topology().Inputs)
		}
		return nil
	})
}

// live returns an IntFunc validator bounded by a topology count.
func (c *catalogue) live(count func(switcher.Topology) int) osc.Validator {
	return osc.IntFunc(c.state.Bounds(count))
}

// slot is like live for zero-based media pool indices: [0, count-1].
func (c *catalogue) slot(count func(switcher.Topology) int) osc.Validator {
	return osc.IntFunc(func() (int, int, bool) {
		n := count(c.state.Topology())
		return 0, n - 1, n > 0
	})
}

// intArg adapts a controller call taking one integer argument.
func intArg(call func(n int) error) osc.EndpointFunc {
	return func(args osc.Arguments) error {
		n, err := args.Int(0)
		if err != nil {
			return err
		}
		return call(n)
	}
}

// floatArg adapts a controller call taking one float argument.
func floatArg(call func(f float64) error) osc.EndpointFunc {
	return func(args osc.Arguments) error {
		f, err := args.Float(0)
		if err != nil {
			return err
		}
		return call(f)
	}
}

// boolArg adapts a controller call taking one toggle argument.
func boolArg(call func(b bool) error) osc.EndpointFunc {
	return func(args osc.Arguments) error {
		b, err := args.Bool(0)
		if err != nil {
			return err
		}
		return call(b)
	}
}

// trigger adapts a controller call fired by a button press. Releases are
// accepted and ignored.
func trigger(call func() error) osc.EndpointFunc {
	return func(args osc.Arguments) error {
		if !osc.Pressed(args) {
			return nil
		}
		return call()
	}
}
