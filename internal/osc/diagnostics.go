package osc

import "time"

// ReasonKind classifies why a message did not complete dispatch.
type ReasonKind string

// Drop reasons.
const (
	// ReasonNoValidator: no validator is registered for the address and the
	// router is failing closed.
	ReasonNoValidator ReasonKind = "no_validator"

	// ReasonValidationRejected: the validator refused the arguments, or panicked.
	ReasonValidationRejected ReasonKind = "validation_rejected"

	// ReasonNoEndpoint: validation passed or was skipped but no endpoint is bound.
	ReasonNoEndpoint ReasonKind = "no_endpoint"

	// ReasonEndpointFailed: the endpoint returned an error or panicked.
	ReasonEndpointFailed ReasonKind = "endpoint_failed"
)

// AllReasons returns every ReasonKind.
func AllReasons() []ReasonKind {
	return []ReasonKind{
		ReasonNoValidator,
		ReasonValidationRejected,
		ReasonNoEndpoint,
		ReasonEndpointFailed,
	}
}

// IsValid reports whether r is a known ReasonKind.
func (r ReasonKind) IsValid() bool {
	switch r {
	case ReasonNoValidator, ReasonValidationRejected, ReasonNoEndpoint, ReasonEndpointFailed:
		return true
	}
	return false
}

// Drop describes one message the Router did not deliver.
type Drop struct {
	Address   string
	Arguments string // Arguments.Summary()
	Reason    ReasonKind
	Detail    string
	At        time.Time
}

// Delivery describes one message the Router handed to its endpoint.
type Delivery struct {
	Address   string
	Arguments string
	Validated bool
	At        time.Time
}

// Reporter receives one Drop per undelivered message.
//
// ReportDrop runs on the dispatch goroutine and must not block. Reporters
// that do I/O hand the event to their own queue.
type Reporter interface {
	ReportDrop(d Drop)
}

// DeliveryReporter is implemented by Reporters that also want successful
// deliveries, e.g. to feed a live monitor.
type DeliveryReporter interface {
	ReportDelivery(d Delivery)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(d Drop)

// ReportDrop calls f(d).
func (f ReporterFunc) ReportDrop(d Drop) {
	f(d)
}

type noopReporter struct{}

func (noopReporter) ReportDrop(Drop) {}
