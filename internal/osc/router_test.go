package osc

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
)

// recordingReporter collects drop and delivery events.
type recordingReporter struct {
	mu         sync.Mutex
	drops      []Drop
	deliveries []Delivery
}

func (r *recordingReporter) ReportDrop(d Drop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drops = append(r.drops, d)
}

func (r *recordingReporter) ReportDelivery(d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
}

func (r *recordingReporter) dropCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drops)
}

// mockFacade records SelectInput calls.
type mockFacade struct {
	mu       sync.Mutex
	selected []int
}

func (f *mockFacade) SelectInput(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, n)
	return nil
}

func newInputSelectRouter(t *testing.T, policy Policy) (*Router, *mockFacade, *recordingReporter) {
	t.Helper()
	rep := &recordingReporter{}
	facade := &mockFacade{}
	r := NewRouter(Options{Policy: policy, Reporter: rep})

	err := r.Handle("/mix/input-select", Int(1, 8), EndpointFunc(func(args Arguments) error {
		n, err := args.Int(0)
		if err != nil {
			return err
		}
		return facade.SelectInput(n)
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	return r, facade, rep
}

func TestRouter_InputSelectScenario(t *testing.T) {
	r, facade, rep := newInputSelectRouter(t, PolicyReject)

	res := r.Dispatch(NewMessage("/mix/input-select", int32(3)))
	if !res.OK() || !res.Validated {
		t.Fatalf("Dispatch([3]) = %+v, want clean validated delivery", res)
	}
	if len(facade.selected) != 1 || facade.selected[0] != 3 {
		t.Fatalf("SelectInput calls = %v, want [3]", facade.selected)
	}

	res = r.Dispatch(NewMessage("/mix/input-select", int32(12)))
	if res.Delivered || res.Reason != ReasonValidationRejected {
		t.Errorf("Dispatch([12]) = %+v, want ValidationRejected", res)
	}
	if !errors.Is(res.Err, ErrOutOfRange) {
		t.Errorf("Dispatch([12]) err = %v, want ErrOutOfRange", res.Err)
	}

	res = r.Dispatch(NewMessage("/mix/input-select", "x"))
	if res.Reason != ReasonValidationRejected || !errors.Is(res.Err, ErrArgumentType) {
		t.Errorf("Dispatch([\"x\"]) = %+v, want ValidationRejected/ErrArgumentType", res)
	}

	res = r.Dispatch(NewMessage("/unregistered/path"))
	if res.Reason != ReasonNoValidator {
		t.Errorf("Dispatch(/unregistered/path) reason = %q, want %q", res.Reason, ReasonNoValidator)
	}

	if len(facade.selected) != 1 {
		t.Errorf("SelectInput calls = %v, want exactly one", facade.selected)
	}

	wantReasons := []ReasonKind{ReasonValidationRejected, ReasonValidationRejected, ReasonNoValidator}
	if len(rep.drops) != len(wantReasons) {
		t.Fatalf("drop events = %d, want %d", len(rep.drops), len(wantReasons))
	}
	for i, want := range wantReasons {
		if rep.drops[i].Reason != want {
			t.Errorf("drop[%d].Reason = %q, want %q", i, rep.drops[i].Reason, want)
		}
	}
	if rep.drops[0].Address != "/mix/input-select" || rep.drops[0].Arguments != "[int32:12]" {
		t.Errorf("drop[0] = %+v, want address and argument summary", rep.drops[0])
	}
}

func TestRouter_UnregisteredUnderForwardPolicy(t *testing.T) {
	r, facade, rep := newInputSelectRouter(t, PolicyForward)

	res := r.Dispatch(NewMessage("/unregistered/path"))
	if res.Reason != ReasonNoEndpoint {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonNoEndpoint)
	}
	if len(facade.selected) != 0 {
		t.Errorf("facade invoked %d times, want 0", len(facade.selected))
	}
	if rep.dropCount() != 1 {
		t.Errorf("drop events = %d, want 1", rep.dropCount())
	}
}

func TestRouter_ForwardPolicyDeliversUnvalidated(t *testing.T) {
	var calls int
	r := NewRouter(Options{Policy: PolicyForward})
	if err := r.RegisterEndpoint("/atem/send-status", EndpointFunc(func(Arguments) error {
		calls++
		return nil
	})); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(NewMessage("/atem/send-status"))
	if !res.OK() || res.Validated {
		t.Errorf("result = %+v, want unvalidated delivery", res)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	r.SetPolicy(PolicyReject)
	res = r.Dispatch(NewMessage("/atem/send-status"))
	if res.Reason != ReasonNoValidator || calls != 1 {
		t.Errorf("after SetPolicy(reject): result = %+v, calls = %d", res, calls)
	}
}

func TestRouter_UnregisteredNeverInvokes(t *testing.T) {
	argLists := []Arguments{
		nil,
		{int32(1)},
		{"a", float32(2.5), true},
		{[]byte{1, 2, 3}, nil},
	}
	addresses := []string{"/a", "/mix/input-select/extra", "/MIX/INPUT-SELECT", "", "no-slash"}

	for _, policy := range []Policy{PolicyReject, PolicyForward} {
		r, facade, rep := newInputSelectRouter(t, policy)
		for _, addr := range addresses {
			for _, args := range argLists {
				before := rep.dropCount()
				r.Dispatch(Message{Address: addr, Arguments: args})
				if got := rep.dropCount() - before; got != 1 {
					t.Errorf("policy %s, %q %v: drops = %d, want 1", policy, addr, args, got)
				}
			}
		}
		if len(facade.selected) != 0 {
			t.Errorf("policy %s: facade invoked %v", policy, facade.selected)
		}
	}
}

func TestRouter_ValidMessagesInvokeOnceWithExactArgs(t *testing.T) {
	rep := &recordingReporter{}
	r := NewRouter(Options{Reporter: rep})

	var got []Arguments
	err := r.Handle("/atem/audio/input/1/gain", Number(-60, 6), EndpointFunc(func(args Arguments) error {
		got = append(got, args)
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	inputs := []Arguments{{float32(-3.5)}, {int32(0)}, {float64(6)}, {int32(-60)}}
	for _, in := range inputs {
		r.Dispatch(Message{Address: "/atem/audio/input/1/gain", Arguments: in})
	}

	if len(got) != len(inputs) {
		t.Fatalf("invocations = %d, want %d", len(got), len(inputs))
	}
	for i := range inputs {
		if got[i][0] != inputs[i][0] {
			t.Errorf("invocation %d args = %v, want %v", i, got[i], inputs[i])
		}
	}
	if rep.dropCount() != 0 {
		t.Errorf("drops = %d, want 0", rep.dropCount())
	}
	if len(rep.deliveries) != len(inputs) {
		t.Errorf("deliveries = %d, want %d", len(rep.deliveries), len(inputs))
	}
}

func TestRouter_LastWriteWins(t *testing.T) {
	r := NewRouter(Options{})
	var oldCalls, newCalls int

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(r.Handle("/x", Int(0, 10), EndpointFunc(func(Arguments) error { oldCalls++; return nil })))
	must(r.Handle("/x", Int(0, 100), EndpointFunc(func(Arguments) error { newCalls++; return nil })))

	res := r.Dispatch(NewMessage("/x", int32(50)))
	if !res.OK() {
		t.Fatalf("Dispatch(50) = %+v, want delivery under replaced validator", res)
	}
	if oldCalls != 0 || newCalls != 1 {
		t.Errorf("old = %d, new = %d, want 0 and 1", oldCalls, newCalls)
	}

	// Registering the same binding again is idempotent.
	must(r.RegisterValidator("/x", Int(0, 100)))
	r.Dispatch(NewMessage("/x", int32(1)))
	if newCalls != 2 {
		t.Errorf("new = %d, want 2", newCalls)
	}
}

func TestRouter_NoEndpoint(t *testing.T) {
	rep := &recordingReporter{}
	r := NewRouter(Options{Reporter: rep})
	if err := r.RegisterValidator("/orphan", NoArgs()); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(NewMessage("/orphan"))
	if res.Reason != ReasonNoEndpoint || !res.Validated || res.Delivered {
		t.Errorf("result = %+v, want validated NoEndpoint", res)
	}
	if rep.dropCount() != 1 || rep.drops[0].Reason != ReasonNoEndpoint {
		t.Errorf("drops = %+v, want one NoEndpoint", rep.drops)
	}
}

func TestRouter_SkipValidation(t *testing.T) {
	var validatorCalls, endpointCalls int
	r := NewRouter(Options{SkipValidation: []string{"/raw"}})
	err := r.Handle("/raw",
		ValidatorFunc(func(Arguments) error { validatorCalls++; return errors.New("never") }),
		EndpointFunc(func(Arguments) error { endpointCalls++; return nil }),
	)
	if err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(NewMessage("/raw", "anything"))
	if !res.OK() || res.Validated {
		t.Errorf("result = %+v, want unvalidated delivery", res)
	}
	if validatorCalls != 0 || endpointCalls != 1 {
		t.Errorf("validator = %d, endpoint = %d, want 0 and 1", validatorCalls, endpointCalls)
	}

	r.SetSkipValidation("/raw", false)
	res = r.Dispatch(NewMessage("/raw", "anything"))
	if res.Reason != ReasonValidationRejected || endpointCalls != 1 {
		t.Errorf("after unskip: result = %+v, endpoint = %d", res, endpointCalls)
	}

	if s := r.Stats(); s.Skipped != 1 || s.ValidationRejected != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRouter_EndpointError(t *testing.T) {
	rep := &recordingReporter{}
	r := NewRouter(Options{Reporter: rep})
	boom := errors.New("queue full")
	if err := r.Handle("/atem/me/1/transition/cut", Trigger(), EndpointFunc(func(Arguments) error { return boom })); err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(NewMessage("/atem/me/1/transition/cut"))
	if !res.Delivered || res.Reason != ReasonEndpointFailed || !errors.Is(res.Err, boom) {
		t.Errorf("result = %+v, want EndpointFailed wrapping boom", res)
	}
	if rep.dropCount() != 1 {
		t.Errorf("events = %d, want 1", rep.dropCount())
	}
	if len(rep.deliveries) != 0 {
		t.Errorf("deliveries = %d, want 0 for failed endpoint", len(rep.deliveries))
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	tests := []struct {
		name       string
		validator  Validator
		endpoint   Endpoint
		wantReason ReasonKind
	}{
		{
			name:       "validator panics",
			validator:  ValidatorFunc(func(Arguments) error { panic("bad validator") }),
			endpoint:   EndpointFunc(func(Arguments) error { return nil }),
			wantReason: ReasonValidationRejected,
		},
		{
			name:      "validator indexes past end",
			validator: ValidatorFunc(func(a Arguments) error { _ = a[5]; return nil }),
			endpoint:  EndpointFunc(func(Arguments) error { return nil }),

			wantReason: ReasonValidationRejected,
		},
		{
			name:       "endpoint panics",
			validator:  NoArgs(),
			endpoint:   EndpointFunc(func(Arguments) error { panic(fmt.Errorf("device gone")) }),
			wantReason: ReasonEndpointFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &recordingReporter{}
			r := NewRouter(Options{Reporter: rep})
			if err := r.Handle("/p", tt.validator, tt.endpoint); err != nil {
				t.Fatal(err)
			}

			res := r.Dispatch(NewMessage("/p"))
			if res.Reason != tt.wantReason || !errors.Is(res.Err, ErrPanic) {
				t.Errorf("result = %+v, want %q wrapping ErrPanic", res, tt.wantReason)
			}
			if rep.dropCount() != 1 {
				t.Errorf("drops = %d, want 1", rep.dropCount())
			}
			if r.Stats().Panics != 1 {
				t.Errorf("panics = %d, want 1", r.Stats().Panics)
			}

			// The router keeps working after a panic.
			r.Dispatch(NewMessage("/other"))
			if rep.dropCount() != 2 {
				t.Errorf("drops after second message = %d, want 2", rep.dropCount())
			}
		})
	}
}

func TestRouter_PanickingReporter(t *testing.T) {
	r := NewRouter(Options{Reporter: ReporterFunc(func(Drop) { panic("sink down") })})

	res := r.Dispatch(NewMessage("/nothing"))
	if res.Reason != ReasonNoValidator {
		t.Errorf("reason = %q, want %q", res.Reason, ReasonNoValidator)
	}
	if r.Stats().Panics != 1 {
		t.Errorf("panics = %d, want 1", r.Stats().Panics)
	}
}

// TestRouter_MalformedArguments throws unusual argument lists at a router
// whose every route uses the validator kit. Dispatch must never panic and
// must account for every message exactly once.
func TestRouter_MalformedArguments(t *testing.T) {
	rep := &recordingReporter{}
	r := NewRouter(Options{Reporter: rep})

	validators := map[string]Validator{
		"/int":    Int(1, 8),
		"/num":    Number(0, 1),
		"/bool":   Bool(),
		"/toggle": Toggle(),
		"/str":    String("mix", "dip"),
		"/blob":   Blob(4),
		"/trig":   Trigger(),
		"/none":   NoArgs(),
		"/all":    All(Arity(2), ValidatorFunc(func(a Arguments) error { _, err := a.Int(1); return err })),
		"/any":    Any(Int(0, 1), String()),
		"/state":  IntFunc(func() (int, int, bool) { return 0, 0, false }),
	}
	for addr, v := range validators {
		if err := r.Handle(addr, v, EndpointFunc(func(a Arguments) error {
			// Endpoints read their arguments like production code does.
			_, _ = a.Int(0)
			_, _ = a.Float(0)
			_, _ = a.Bool(0)
			return nil
		})); err != nil {
			t.Fatal(err)
		}
	}

	values := []any{
		nil, int32(0), int32(-1), int32(math.MaxInt32), int64(math.MinInt64), 3,
		float32(0.5), float32(math.NaN()), math.Inf(1), math.Inf(-1), float64(1e300),
		"", "mix", "MIX", "x\x00y", true, false, []byte{}, []byte{1, 2, 3, 4, 5},
		struct{}{}, []int{1}, map[string]int{},
	}

	var argLists []Arguments
	argLists = append(argLists, nil, Arguments{})
	for _, a := range values {
		argLists = append(argLists, Arguments{a})
		for _, b := range values {
			argLists = append(argLists, Arguments{a, b})
		}
	}

	var total uint64
	for addr := range validators {
		for _, args := range argLists {
			func() {
				defer func() {
					if p := recover(); p != nil {
						t.Fatalf("Dispatch(%s, %v) panicked: %v", addr, args, p)
					}
				}()
				r.Dispatch(Message{Address: addr, Arguments: args})
				total++
			}()
		}
	}

	s := r.Stats()
	if s.Received != total {
		t.Errorf("received = %d, want %d", s.Received, total)
	}
	if s.Delivered+s.Dropped() != total {
		t.Errorf("delivered %d + dropped %d != received %d", s.Delivered, s.Dropped(), total)
	}
	if uint64(rep.dropCount()) != s.Dropped()+s.EndpointFailed {
		t.Errorf("drop events = %d, want %d", rep.dropCount(), s.Dropped()+s.EndpointFailed)
	}
}

func TestRouter_ConcurrentDispatchAndRegister(t *testing.T) {
	r := NewRouter(Options{})
	endpoint := EndpointFunc(func(Arguments) error { return nil })
	if err := r.Handle("/hot", Int(0, 10), endpoint); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				r.Dispatch(NewMessage("/hot", int32(j%12)))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			_ = r.Handle("/hot", Int(0, 10), endpoint)
			_ = r.RegisterEndpoint(fmt.Sprintf("/cold/%d", j), endpoint)
		}
	}()
	wg.Wait()

	if got := r.Stats().Received; got != 2000 {
		t.Errorf("received = %d, want 2000", got)
	}
}

func TestRouter_ReplacedRouteIsConsistent(t *testing.T) {
	// Each generation's endpoint only accepts what its own validator lets
	// through, so a mixed pair shows up as an endpoint failure.
	pair := func(want int) (Validator, Endpoint) {
		v := Int(want, want)
		e := EndpointFunc(func(args Arguments) error {
			n, err := args.Int(0)
			if err != nil {
				return err
			}
			if n != want {
				return fmt.Errorf("endpoint %d invoked with %d", want, n)
			}
			return nil
		})
		return v, e
	}

	r := NewRouter(Options{})
	v, e := pair(0)
	if err := r.Handle("/hot", v, e); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Dispatch(NewMessage("/hot", int32(j%2)))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 1000; j++ {
			v, e := pair(j % 2)
			if j%3 == 0 {
				_ = r.Register(Route{Address: "/hot", Validator: v, Endpoint: e})
				continue
			}
			_ = r.Handle("/hot", v, e)
		}
	}()
	wg.Wait()

	if got := r.Stats().EndpointFailed; got != 0 {
		t.Errorf("endpoint_failed = %d, want 0 (validator and endpoint from different routes)", got)
	}
}

func TestRouter_RegisterBulkAndRoutes(t *testing.T) {
	r := NewRouter(Options{SkipValidation: []string{"/b"}})
	ep := EndpointFunc(func(Arguments) error { return nil })

	err := r.Register(
		Route{Address: "/b", Endpoint: ep},
		Route{Address: "/a", Validator: NoArgs(), Endpoint: ep},
		Route{Address: "/c", Validator: NoArgs()},
		Route{Address: "bad", Validator: NoArgs()},
		Route{Address: "/empty"},
	)
	if !errors.Is(err, ErrInvalidAddress) || !errors.Is(err, ErrNilHandler) {
		t.Errorf("Register() error = %v, want ErrInvalidAddress and ErrNilHandler", err)
	}

	want := []RouteInfo{
		{Address: "/a", HasValidator: true, HasEndpoint: true},
		{Address: "/b", HasEndpoint: true, SkipValidation: true},
		{Address: "/c", HasValidator: true},
	}
	got := r.Routes()
	if len(got) != len(want) {
		t.Fatalf("Routes() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Routes()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	r.Unregister("/a")
	if len(r.Routes()) != 2 {
		t.Errorf("Routes() after Unregister = %+v", r.Routes())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyReject, false},
		{"reject", PolicyReject, false},
		{"forward", PolicyForward, false},
		{"open", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}
