package osc

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// table is an address-keyed map guarded by a reader-writer lock.
// Reads are the hot path; writes happen at startup and on reconfiguration.
type table[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func (t *table[T]) set(address string, v T) (replaced bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[string]T)
	}
	_, replaced = t.entries[address]
	t.entries[address] = v
	return replaced
}

func (t *table[T]) get(address string) (T, bool) {
	t.mu.RLock()
	v, ok := t.entries[address]
	t.mu.RUnlock()
	return v, ok
}

func (t *table[T]) remove(address string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[address]
	delete(t.entries, address)
	return ok
}

func (t *table[T]) keys() []string {
	t.mu.RLock()
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// ValidateAddress checks that address is usable as a registry key.
// Addresses are matched exactly, so OSC pattern characters are refused.
func ValidateAddress(address string) error {
	if address == "" || !strings.HasPrefix(address, "/") {
		return fmt.Errorf("%w: %q must start with '/'", ErrInvalidAddress, address)
	}
	if strings.ContainsAny(address, " #*,?[]{}") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidAddress, address)
	}
	return nil
}

// ValidatorRegistry maps addresses to validators.
// All methods are safe for concurrent use.
type ValidatorRegistry struct {
	t table[Validator]
}

// NewValidatorRegistry creates an empty ValidatorRegistry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{}
}

// Register binds v to address. An existing binding is replaced (last write wins).
// It reports whether a previous binding was replaced.
func (r *ValidatorRegistry) Register(address string, v Validator) (bool, error) {
	if err := ValidateAddress(address); err != nil {
		return false, err
	}
	if v == nil {
		return false, fmt.Errorf("%w: validator for %s", ErrNilHandler, address)
	}
	return r.t.set(address, v), nil
}

// Lookup returns the validator bound to address.
func (r *ValidatorRegistry) Lookup(address string) (Validator, bool) {
	return r.t.get(address)
}

// Unregister removes the binding for address, reporting whether one existed.
func (r *ValidatorRegistry) Unregister(address string) bool {
	return r.t.remove(address)
}

// Addresses returns the registered addresses in sorted order.
func (r *ValidatorRegistry) Addresses() []string {
	return r.t.keys()
}

// Len returns the number of registered addresses.
func (r *ValidatorRegistry) Len() int {
	return r.t.len()
}

// EndpointRegistry maps addresses to endpoints.
// All methods are safe for concurrent use.
type EndpointRegistry struct {
	t table[Endpoint]
}

// NewEndpointRegistry creates an empty EndpointRegistry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{}
}

// Register binds e to address. An existing binding is replaced (last write wins).
// It reports whether a previous binding was replaced.
func (r *EndpointRegistry) Register(address string, e Endpoint) (bool, error) {
	if err := ValidateAddress(address); err != nil {
		return false, err
	}
	if e == nil {
		return false, fmt.Errorf("%w: endpoint for %s", ErrNilHandler, address)
	}
	return r.t.set(address, e), nil
}

// Lookup returns the endpoint bound to address.
func (r *EndpointRegistry) Lookup(address string) (Endpoint, bool) {
	return r.t.get(address)
}

// Unregister removes the binding for address, reporting whether one existed.
func (r *EndpointRegistry) Unregister(address string) bool {
	return r.t.remove(address)
}

// Addresses returns the registered addresses in sorted order.
func (r *EndpointRegistry) Addresses() []string {
	return r.t.keys()
}

// Len returns the number of registered addresses.
func (r *EndpointRegistry) Len() int {
	return r.t.len()
}
