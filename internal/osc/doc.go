// Package osc is the dispatch and validation core of Gray Logic OSC.
//
// Every decoded OSC message passes through a single Router. The Router owns
// two registries keyed by exact address string: one mapping an address to
// the Validator that guards its arguments, the other mapping it to the
// Endpoint that performs the switcher command. A message only reaches its
// Endpoint after its Validator has accepted it.
//
// # Architecture
//
//	┌──────────────┐   Message    ┌──────────────────────────────────────────┐
//	│  transport   │─────────────▶│                  Router                  │
//	│ (UDP / API)  │              │                                          │
//	└──────────────┘              │  1. ValidatorRegistry.Lookup(address)    │
//	                              │  2. Validator.Validate(arguments)        │
//	                              │  3. EndpointRegistry.Lookup(address)     │
//	                              │  4. Endpoint.Invoke(arguments)           │
//	                              └───────┬──────────────────────┬───────────┘
//	                                      │ accepted             │ dropped
//	                                      ▼                      ▼
//	                              ┌──────────────┐       ┌──────────────┐
//	                              │  switcher    │       │  Reporter    │
//	                              │  Controller  │       │ (diagnostics)│
//	                              └──────────────┘       └──────────────┘
//
// # Drop Reasons
//
//   - ReasonNoValidator: no validator is registered and the policy is reject
//   - ReasonValidationRejected: the validator refused the arguments
//   - ReasonNoEndpoint: the message was accepted but nothing is bound to it
//   - ReasonEndpointFailed: the endpoint returned an error or panicked
//
// Every drop is reported exactly once. Nothing a validator or endpoint does,
// including panicking, escapes Dispatch.
//
// # Usage
//
//	router := osc.NewRouter(osc.Options{Policy: osc.PolicyReject})
//	router.Handle("/mix/input-select",
//	    osc.Int(1, 8),
//	    osc.EndpointFunc(func(args osc.Arguments) error {
//	        n, _ := args.Int(0)
//	        return facade.SelectInput(n)
//	    }))
//
//	result := router.Dispatch(osc.NewMessage("/mix/input-select", int32(3)))
//
// # Thread Safety
//
// Dispatch may be called from any goroutine. Registration is safe while
// dispatch is running; the transport normally calls Dispatch from a single
// goroutine so messages are handled in arrival order.
package osc
