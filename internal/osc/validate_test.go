package osc

import (
	"errors"
	"testing"
)

func TestValidators(t *testing.T) {
	liveInputs := 4
	inputs := IntFunc(func() (int, int, bool) { return 1, liveInputs, liveInputs > 0 })

	tests := []struct {
		name    string
		v       Validator
		args    Arguments
		wantErr error
	}{
		{"no args ok", NoArgs(), nil, nil},
		{"no args with arg", NoArgs(), Arguments{int32(1)}, ErrArity},
		{"arity ok", Arity(2), Arguments{"a", int32(1)}, nil},
		{"arity short", Arity(2), Arguments{"a"}, ErrArity},

		{"int in range", Int(1, 8), Arguments{int32(8)}, nil},
		{"int low", Int(1, 8), Arguments{int32(0)}, ErrOutOfRange},
		{"int high", Int(1, 8), Arguments{int64(9)}, ErrOutOfRange},
		{"int from whole float", Int(1, 8), Arguments{float32(3)}, nil},
		{"int from fractional float", Int(1, 8), Arguments{float32(3.5)}, ErrArgumentType},
		{"int from string", Int(1, 8), Arguments{"3"}, ErrArgumentType},
		{"int missing", Int(1, 8), nil, ErrArity},
		{"int extra", Int(1, 8), Arguments{int32(1), int32(2)}, ErrArity},

		{"live bounds ok", inputs, Arguments{int32(4)}, nil},
		{"live bounds high", inputs, Arguments{int32(5)}, ErrOutOfRange},

		{"number ok", Number(0, 1), Arguments{float32(0.25)}, nil},
		{"number from int", Number(0, 1), Arguments{int32(1)}, nil},
		{"number high", Number(0, 1), Arguments{float64(1.01)}, ErrOutOfRange},
		{"number bool", Number(0, 1), Arguments{true}, ErrArgumentType},

		{"bool true", Bool(), Arguments{true}, nil},
		{"bool int", Bool(), Arguments{int32(1)}, ErrArgumentType},

		{"toggle bool", Toggle(), Arguments{false}, nil},
		{"toggle one", Toggle(), Arguments{float32(1)}, nil},
		{"toggle two", Toggle(), Arguments{int32(2)}, ErrArgumentType},

		{"trigger bare", Trigger(), nil, nil},
		{"trigger press", Trigger(), Arguments{int32(1)}, nil},
		{"trigger string", Trigger(), Arguments{"go"}, ErrArgumentType},

		{"string any", String(), Arguments{"hello"}, nil},
		{"string allowed", String("mix", "dip"), Arguments{"DIP"}, nil},
		{"string not allowed", String("mix", "dip"), Arguments{"wipe"}, ErrNotAllowed},
		{"string int", String(), Arguments{int32(1)}, ErrArgumentType},

		{"blob ok", Blob(4), Arguments{[]byte{1, 2}}, nil},
		{"blob too big", Blob(1), Arguments{[]byte{1, 2}}, ErrOutOfRange},
		{"blob unbounded", Blob(0), Arguments{make([]byte, 1024)}, nil},
		{"blob string", Blob(0), Arguments{"x"}, ErrArgumentType},

		{"all ok", All(Arity(1), Int(0, 5)), Arguments{int32(5)}, nil},
		{"all first fails", All(NoArgs(), Int(0, 5)), Arguments{int32(5)}, ErrArity},
		{"any second ok", Any(Int(0, 1), String()), Arguments{"x"}, nil},
		{"any none", Any(Int(0, 1), String()), Arguments{true}, ErrArgumentType},
		{"any empty", Any(), nil, ErrArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate(tt.args)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate(%v) error = %v, want nil", tt.args, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestIntFunc_TracksLiveState(t *testing.T) {
	known := false
	macros := 0
	v := IntFunc(func() (int, int, bool) { return 1, macros, known })

	if err := v.Validate(Arguments{int32(1)}); !errors.Is(err, ErrStateUnavailable) {
		t.Errorf("before state: error = %v, want ErrStateUnavailable", err)
	}

	known, macros = true, 10
	if err := v.Validate(Arguments{int32(10)}); err != nil {
		t.Errorf("with 10 macros: error = %v", err)
	}

	macros = 5
	if err := v.Validate(Arguments{int32(10)}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("with 5 macros: error = %v, want ErrOutOfRange", err)
	}
}

func TestPressed(t *testing.T) {
	tests := []struct {
		args Arguments
		want bool
	}{
		{nil, true},
		{Arguments{true}, true},
		{Arguments{float32(1)}, true},
		{Arguments{int32(0)}, false},
		{Arguments{false}, false},
		{Arguments{"x"}, false},
	}
	for _, tt := range tests {
		if got := Pressed(tt.args); got != tt.want {
			t.Errorf("Pressed(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
