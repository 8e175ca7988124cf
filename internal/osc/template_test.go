package osc

import (
	"errors"
	"testing"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in         string
		wantParams []string
		wantErr    bool
	}{
		{"/atem/send-status", nil, false},
		{"/atem/me/<me>/program", []string{"me"}, false},
		{"/atem/me/<me>/usk/<key>/on-air", []string{"me", "key"}, false},
		{"atem/me", nil, true},
		{"/atem/", nil, true},
		{"/", nil, true},
		{"/atem//cut", nil, true},
		{"/atem/me<me>", nil, true},
		{"/atem/<Me>", nil, true},
		{"/atem/<me>/<me>", nil, true},
		{"/atem/<>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tpl, err := ParseTemplate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTemplate) {
					t.Errorf("ParseTemplate(%q) error = %v, want ErrInvalidTemplate", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTemplate(%q) error = %v", tt.in, err)
			}
			got := tpl.Params()
			if len(got) != len(tt.wantParams) {
				t.Fatalf("Params() = %v, want %v", got, tt.wantParams)
			}
			for i := range got {
				if got[i] != tt.wantParams[i] {
					t.Errorf("Params()[%d] = %q, want %q", i, got[i], tt.wantParams[i])
				}
			}
			if tpl.String() != tt.in {
				t.Errorf("String() = %q, want %q", tpl.String(), tt.in)
			}
		})
	}
}

func TestTemplate_Expand(t *testing.T) {
	tpl := MustParseTemplate("/atem/me/<me>/usk/<key>/on-air")

	bindings, err := tpl.Expand(Ranges{"me": Span(2), "key": Range{From: 1, To: 2}})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []struct {
		addr    string
		me, key int
	}{
		{"/atem/me/1/usk/1/on-air", 1, 1},
		{"/atem/me/1/usk/2/on-air", 1, 2},
		{"/atem/me/2/usk/1/on-air", 2, 1},
		{"/atem/me/2/usk/2/on-air", 2, 2},
	}
	if len(bindings) != len(want) {
		t.Fatalf("Expand() = %d bindings, want %d", len(bindings), len(want))
	}
	for i, w := range want {
		b := bindings[i]
		if b.Address != w.addr || b.Params.Get("me") != w.me || b.Params.Get("key") != w.key {
			t.Errorf("binding[%d] = %+v, want %s me=%d key=%d", i, b, w.addr, w.me, w.key)
		}
	}

	// Params are not shared between bindings.
	bindings[0].Params["me"] = 99
	if bindings[1].Params.Get("me") != 1 {
		t.Error("bindings share a Params map")
	}
}

func TestTemplate_ExpandEdgeCases(t *testing.T) {
	static := MustParseTemplate("/atem/recording/start")
	b, err := static.Expand(nil)
	if err != nil || len(b) != 1 || b[0].Address != "/atem/recording/start" {
		t.Errorf("static Expand() = %+v, %v", b, err)
	}

	aux := MustParseTemplate("/atem/aux/<aux>")
	b, err = aux.Expand(Ranges{"aux": Span(0)})
	if err != nil || len(b) != 0 {
		t.Errorf("empty range Expand() = %+v, %v, want none", b, err)
	}

	if _, err := aux.Expand(Ranges{"me": Span(1)}); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("missing range error = %v, want ErrInvalidTemplate", err)
	}
}

func TestMustParseTemplate_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseTemplate did not panic on a bad template")
		}
	}()
	MustParseTemplate("no-slash")
}
