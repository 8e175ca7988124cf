package switcher

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"
)

// Special ATEM source IDs accepted wherever an input is expected, in
// addition to the numbered physical inputs.
var specialSources = map[int]string{
	0:     "black",
	1000:  "color_bars",
	2001:  "color_1",
	2002:  "color_2",
	3010:  "media_player_1",
	3011:  "media_player_1_key",
	3020:  "media_player_2",
	3021:  "media_player_2_key",
	6000:  "supersource",
	10010: "me_1_program",
	10011: "me_1_preview",
}

// IsSpecialSource reports whether id is a non-physical ATEM source.
func IsSpecialSource(id int) bool {
	_, ok := specialSources[id]
	return ok
}

// State is a thread-safe cache of the switcher's topology and live state.
//
// It is seeded from configuration and refined by StateMessages from the
// ATEM bridge. Validators read it on the dispatch goroutine; the MQTT
// handler writes it.
type State struct {
	mu           sync.RWMutex
	topology     Topology
	connected    bool
	model        string
	mixEffects   map[int]MixEffectState
	recording    bool
	streaming    bool
	macroRunning int
	updated      time.Time
	updates      uint64
}

// Snapshot is a point-in-time copy of State for reporting.
type Snapshot struct {
	Connected    bool                   `json:"connected"`
	Model        string                 `json:"model,omitempty"`
	Topology     Topology               `json:"topology"`
	MixEffects   map[int]MixEffectState `json:"mix_effects"`
	Recording    bool                   `json:"recording"`
	Streaming    bool                   `json:"streaming"`
	MacroRunning int                    `json:"macro_running"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Updates      uint64                 `json:"updates"`
}

// NewState creates a State seeded with the configured topology.
func NewState(initial Topology) *State {
	return &State{
		topology:   initial,
		mixEffects: make(map[int]MixEffectState),
	}
}

// Topology returns the current topology.
func (s *State) Topology() Topology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topology
}

// Connected reports whether the ATEM bridge last reported a live connection.
func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// MixEffect returns the last known state of mix effect me.
func (s *State) MixEffect(me int) (MixEffectState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.mixEffects[me]
	return st, ok
}

// Apply merges a state update. Nil fields leave the cached value unchanged.
// A topology with zero counts is ignored so a partial bridge report cannot
// shrink the address space to nothing.
func (s *State) Apply(msg StateMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Connected != nil {
		s.connected = *msg.Connected
	}
	if msg.Model != "" {
		s.model = msg.Model
	}
	if msg.Topology != nil && msg.Topology.MixEffects > 0 && msg.Topology.Inputs > 0 {
		s.topology = *msg.Topology
	}
	for me, st := range msg.MixEffects {
		s.mixEffects[me] = st
	}
	if msg.Recording != nil {
		s.recording = *msg.Recording
	}
	if msg.Streaming != nil {
		s.streaming = *msg.Streaming
	}
	if msg.MacroRunning != nil {
		s.macroRunning = *msg.MacroRunning
	}

	s.updated = msg.Timestamp
	if s.updated.IsZero() {
		s.updated = time.Now().UTC()
	}
	s.updates++
}

// ApplyJSON decodes and applies a state payload.
func (s *State) ApplyJSON(payload []byte) error {
	var msg StateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	s.Apply(msg)
	return nil
}

// Snapshot returns a copy of the cached state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Connected:    s.connected,
		Model:        s.model,
		Topology:     s.topology,
		MixEffects:   maps.Clone(s.mixEffects),
		Recording:    s.recording,
		Streaming:    s.streaming,
		MacroRunning: s.macroRunning,
		UpdatedAt:    s.updated,
		Updates:      s.updates,
	}
}

// Bounds returns a function reporting the 1-based range [1, count(topology)]
// at call time. ok is false while the count is zero.
//
//	inputs := state.Bounds(func(t switcher.Topology) int { return t.Inputs })
func (s *State) Bounds(count func(Topology) int) func() (lo, hi int, ok bool) {
	return func() (int, int, bool) {
		n := count(s.Topology())
		return 1, n, n > 0
	}
}

// ValidInput reports whether id is a numbered input of the current topology
// or a special source.
func (s *State) ValidInput(id int) bool {
	if IsSpecialSource(id) {
		return true
	}
	return id >= 1 && id <= s.Topology().Inputs
}
