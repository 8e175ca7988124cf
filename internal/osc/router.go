package osc

import (
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Policy decides what happens to messages whose address has no validator.
type Policy string

// Unvalidated message policies.
const (
	// PolicyReject drops unvalidated messages (fail closed). This is the default.
	PolicyReject Policy = "reject"

	// PolicyForward passes unvalidated messages straight to their endpoint.
	PolicyForward Policy = "forward"
)

// ParsePolicy converts a configuration string to a Policy.
// The empty string yields PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyForward:
		return PolicyForward, nil
	default:
		return "", fmt.Errorf("osc: unknown policy %q", s)
	}
}

// Options configures a Router.
type Options struct {
	// Policy for addresses with no validator. Zero value is PolicyReject.
	Policy Policy

	// SkipValidation lists addresses dispatched without running their validator.
	SkipValidation []string

	// Reporter receives drop events. Nil discards them.
	Reporter Reporter

	// Logger for drop and panic logging. Nil discards output.
	Logger Logger
}

// Route binds a validator and an endpoint to one address.
// Either may be nil when registering in bulk; nil halves are left untouched.
type Route struct {
	Address   string
	Validator Validator
	Endpoint  Endpoint
}

// RouteInfo describes a registered address for listing.
type RouteInfo struct {
	Address        string `json:"address"`
	HasValidator   bool   `json:"has_validator"`
	HasEndpoint    bool   `json:"has_endpoint"`
	SkipValidation bool   `json:"skip_validation"`
}

// Result is the outcome of a single Dispatch.
type Result struct {
	Address string

	// Delivered is true when the endpoint was invoked.
	Delivered bool

	// Validated is true when a validator accepted the arguments. It is false
	// for delivered messages that were forwarded or skipped validation.
	Validated bool

	// Reason is empty for a clean delivery.
	Reason ReasonKind

	// Err carries the validator rejection or endpoint error, if any.
	Err error
}

// OK reports whether the message was delivered without error.
func (r Result) OK() bool {
	return r.Delivered && r.Reason == ""
}

// Stats holds Router counters.
type Stats struct {
	Received           uint64 `json:"received"`
	Delivered          uint64 `json:"delivered"`
	Forwarded          uint64 `json:"forwarded_unvalidated"`
	Skipped            uint64 `json:"skipped_validation"`
	NoValidator        uint64 `json:"dropped_no_validator"`
	ValidationRejected uint64 `json:"dropped_validation_rejected"`
	NoEndpoint         uint64 `json:"dropped_no_endpoint"`
	EndpointFailed     uint64 `json:"endpoint_failed"`
	Panics             uint64 `json:"panics"`
}

// Dropped returns the number of messages that never reached an endpoint.
func (s Stats) Dropped() uint64 {
	return s.NoValidator + s.ValidationRejected + s.NoEndpoint
}

type routerStats struct {
	received, delivered, forwarded, skipped atomic.Uint64
	noValidator, rejected, noEndpoint       atomic.Uint64
	endpointFailed, panics                  atomic.Uint64
}

// Router is the single dispatch point for decoded OSC messages.
//
// It exclusively owns the validator and endpoint registries. Dispatch takes
// bindMu only to look up the validator and endpoint of an address as one
// pair, so a message never sees a new validator with an old endpoint while
// routes are being replaced. Validation and invocation run unlocked.
type Router struct {
	bindMu     sync.RWMutex
	validators *ValidatorRegistry
	endpoints  *EndpointRegistry
	skip       table[struct{}]

	forward atomic.Bool

	reporter  Reporter
	deliverer DeliveryReporter
	logger    Logger

	stats routerStats
	now   func() time.Time
}

// NewRouter creates a Router with empty registries.
func NewRouter(opts Options) *Router {
	r := &Router{
		validators: NewValidatorRegistry(),
		endpoints:  NewEndpointRegistry(),
		reporter:   opts.Reporter,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if r.reporter == nil {
		r.reporter = noopReporter{}
	}
	if d, ok := r.reporter.(DeliveryReporter); ok {
		r.deliverer = d
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
	r.forward.Store(opts.Policy == PolicyForward)
	for _, addr := range opts.SkipValidation {
		r.skip.set(addr, struct{}{})
	}
	return r
}

// SetLogger sets the logger for the router.
func (r *Router) SetLogger(logger Logger) {
	r.logger = logger
}

// SetPolicy changes the unvalidated-message policy at runtime.
func (r *Router) SetPolicy(p Policy) {
	r.forward.Store(p == PolicyForward)
}

// Policy returns the current unvalidated-message policy.
func (r *Router) Policy() Policy {
	if r.forward.Load() {
		return PolicyForward
	}
	return PolicyReject
}

// SetSkipValidation marks or unmarks address as dispatched without validation.
func (r *Router) SetSkipValidation(address string, skip bool) {
	if skip {
		r.skip.set(address, struct{}{})
		return
	}
	r.skip.remove(address)
}

// RegisterValidator binds v to address, replacing any previous validator.
func (r *Router) RegisterValidator(address string, v Validator) error {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	return r.registerValidator(address, v)
}

// RegisterEndpoint binds e to address, replacing any previous endpoint.
func (r *Router) RegisterEndpoint(address string, e Endpoint) error {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	return r.registerEndpoint(address, e)
}

// Handle registers a validator and endpoint for address together. A
// concurrent Dispatch sees either both old bindings or both new ones.
func (r *Router) Handle(address string, v Validator, e Endpoint) error {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	if err := r.registerValidator(address, v); err != nil {
		return err
	}
	return r.registerEndpoint(address, e)
}

// Register adds routes in bulk under one write lock, so replacing a route
// is atomic with respect to Dispatch. Every route is attempted; the
// returned error joins all failures.
func (r *Router) Register(routes ...Route) error {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()

	var errs []error
	for _, rt := range routes {
		if rt.Validator != nil {
			if err := r.registerValidator(rt.Address, rt.Validator); err != nil {
				errs = append(errs, err)
			}
		}
		if rt.Endpoint != nil {
			if err := r.registerEndpoint(rt.Address, rt.Endpoint); err != nil {
				errs = append(errs, err)
			}
		}
		if rt.Validator == nil && rt.Endpoint == nil {
			errs = append(errs, fmt.Errorf("%w: route %s has neither validator nor endpoint", ErrNilHandler, rt.Address))
		}
	}
	return errors.Join(errs...)
}

// Unregister removes both bindings for address.
func (r *Router) Unregister(address string) {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	r.validators.Unregister(address)
	r.endpoints.Unregister(address)
}

func (r *Router) registerValidator(address string, v Validator) error {
	replaced, err := r.validators.Register(address, v)
	if err != nil {
		return err
	}
	if replaced {
		r.logger.Debug("validator replaced", "address", address)
	}
	return nil
}

func (r *Router) registerEndpoint(address string, e Endpoint) error {
	replaced, err := r.endpoints.Register(address, e)
	if err != nil {
		return err
	}
	if replaced {
		r.logger.Debug("endpoint replaced", "address", address)
	}
	return nil
}

// lookup returns the bindings of address as one consistent pair.
func (r *Router) lookup(address string) (v Validator, hasV bool, e Endpoint, hasE bool) {
	r.bindMu.RLock()
	defer r.bindMu.RUnlock()
	v, hasV = r.validators.Lookup(address)
	e, hasE = r.endpoints.Lookup(address)
	return v, hasV, e, hasE
}

// Routes lists every address known to either registry, sorted.
func (r *Router) Routes() []RouteInfo {
	seen := make(map[string]*RouteInfo)
	var order []string
	add := func(addr string) *RouteInfo {
		if ri, ok := seen[addr]; ok {
			return ri
		}
		ri := &RouteInfo{Address: addr}
		seen[addr] = ri
		order = append(order, addr)
		return ri
	}
	for _, a := range r.validators.Addresses() {
		add(a).HasValidator = true
	}
	for _, a := range r.endpoints.Addresses() {
		add(a).HasEndpoint = true
	}

	slices.Sort(order)
	out := make([]RouteInfo, 0, len(order))
	for _, a := range order {
		ri := *seen[a]
		_, ri.SkipValidation = r.skip.get(a)
		out = append(out, ri)
	}
	return out
}

// Stats returns a snapshot of the router counters.
func (r *Router) Stats() Stats {
	return Stats{
		Received:           r.stats.received.Load(),
		Delivered:          r.stats.delivered.Load(),
		Forwarded:          r.stats.forwarded.Load(),
		Skipped:            r.stats.skipped.Load(),
		NoValidator:        r.stats.noValidator.Load(),
		ValidationRejected: r.stats.rejected.Load(),
		NoEndpoint:         r.stats.noEndpoint.Load(),
		EndpointFailed:     r.stats.endpointFailed.Load(),
		Panics:             r.stats.panics.Load(),
	}
}

// Dispatch routes one message: validator lookup, validation, endpoint
// lookup, then endpoint invocation. It never panics. Every message that
// does not reach its endpoint produces exactly one Drop on the Reporter.
func (r *Router) Dispatch(msg Message) Result {
	r.stats.received.Add(1)
	res := Result{Address: msg.Address}

	v, hasValidator, e, hasEndpoint := r.lookup(msg.Address)

	_, skip := r.skip.get(msg.Address)
	switch {
	case skip:
		r.stats.skipped.Add(1)
	default:
		if !hasValidator {
			if !r.forward.Load() {
				r.stats.noValidator.Add(1)
				res.Reason = ReasonNoValidator
				r.drop(msg, res.Reason, "no validator registered")
				return res
			}
			r.stats.forwarded.Add(1)
			break
		}
		if err := r.validate(msg, v); err != nil {
			r.stats.rejected.Add(1)
			res.Reason = ReasonValidationRejected
			res.Err = err
			r.drop(msg, res.Reason, err.Error())
			return res
		}
		res.Validated = true
	}

	if !hasEndpoint {
		r.stats.noEndpoint.Add(1)
		res.Reason = ReasonNoEndpoint
		r.drop(msg, res.Reason, "no endpoint bound")
		return res
	}

	res.Delivered = true
	r.stats.delivered.Add(1)
	if err := r.invoke(msg, e); err != nil {
		r.stats.endpointFailed.Add(1)
		res.Reason = ReasonEndpointFailed
		res.Err = err
		r.drop(msg, res.Reason, err.Error())
		return res
	}

	if r.deliverer != nil {
		r.safely(msg.Address, "delivery reporter", func() {
			r.deliverer.ReportDelivery(Delivery{
				Address:   msg.Address,
				Arguments: msg.Arguments.Summary(),
				Validated: res.Validated,
				At:        r.now(),
			})
		})
	}
	return res
}

// validate runs v, converting a panic into an ErrPanic rejection.
func (r *Router) validate(msg Message, v Validator) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = r.recovered(msg.Address, "validator", p)
		}
	}()
	return v.Validate(msg.Arguments)
}

// invoke runs e, converting a panic into an ErrPanic failure.
func (r *Router) invoke(msg Message, e Endpoint) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = r.recovered(msg.Address, "endpoint", p)
		}
	}()
	return e.Invoke(msg.Arguments)
}

func (r *Router) recovered(address, stage string, p any) error {
	r.stats.panics.Add(1)
	r.logger.Error("recovered panic in "+stage,
		"address", address,
		"panic", fmt.Sprint(p),
		"stack", string(debug.Stack()),
	)
	return fmt.Errorf("%w: %s: %v", ErrPanic, stage, p)
}

// drop logs and reports an undelivered message exactly once.
func (r *Router) drop(msg Message, reason ReasonKind, detail string) {
	summary := msg.Arguments.Summary()
	r.logger.Warn("osc message dropped",
		"address", msg.Address,
		"reason", string(reason),
		"detail", detail,
		"args", summary,
	)
	r.safely(msg.Address, "drop reporter", func() {
		r.reporter.ReportDrop(Drop{
			Address:   msg.Address,
			Arguments: summary,
			Reason:    reason,
			Detail:    detail,
			At:        r.now(),
		})
	})
}

// safely runs fn and swallows a panic so a faulty reporter cannot take
// down the receive loop.
func (r *Router) safely(address, stage string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			_ = r.recovered(address, stage, p)
		}
	}()
	fn()
}
