package switcher

// Controller is the set of switcher operations the OSC endpoints invoke.
//
// Implementations must not block on device I/O. Every method returns once
// the command is accepted for delivery; the error reports only whether it
// could be accepted.
type Controller interface {
	// Program and preview bus.
	SetProgram(me, input int) error
	SetPreview(me, input int) error

	// Transitions.
	Cut(me int) error
	Auto(me int) error
	FadeToBlack(me int) error
	SetTransitionPosition(me int, position float64) error
	SetTransitionStyle(me int, style string) error
	SetTransitionRate(me int, frames int) error

	// Upstream keyers.
	SetUpstreamKeyerOnAir(me, key int, onAir bool) error
	SetUpstreamKeyerTie(me, key int, tie bool) error
	SetUpstreamKeyerFill(me, key, input int) error
	SetUpstreamKeyerCut(me, key, input int) error

	// Downstream keyers.
	SetDownstreamKeyerOnAir(key int, onAir bool) error
	SetDownstreamKeyerTie(key int, tie bool) error
	AutoDownstreamKeyer(key int) error
	SetDownstreamKeyerFill(key, input int) error
	SetDownstreamKeyerCut(key, input int) error

	// Aux outputs.
	SetAuxSource(aux, input int) error

	// Macros.
	RunMacro(index int) error
	StopMacro() error

	// Media players.
	SetMediaPlayerClip(player, clip int) error
	SetMediaPlayerStill(player, still int) error

	// SuperSource.
	SetSuperSourceBoxEnabled(box int, enabled bool) error
	SetSuperSourceBoxSource(box, input int) error

	// Audio mixer.
	SetAudioInputGain(input int, db float64) error
	SetAudioInputBalance(input int, balance float64) error
	SetAudioOutputGain(db float64) error

	// Recording and streaming.
	StartRecording() error
	StopRecording() error
	StartStreaming() error
	StopStreaming() error

	// RequestStatus asks the switcher bridge to republish full state.
	RequestStatus() error
}
