package osc

// Endpoint performs the switcher operation bound to an address.
//
// Invoke receives arguments that have already passed the address's
// validator. It must not block on device I/O; implementations queue the
// command and return. A returned error is diagnostic only and never
// changes routing.
type Endpoint interface {
	Invoke(args Arguments) error
}

// EndpointFunc adapts a plain function to the Endpoint interface.
type EndpointFunc func(args Arguments) error

// Invoke calls f(args).
func (f EndpointFunc) Invoke(args Arguments) error {
	return f(args)
}
