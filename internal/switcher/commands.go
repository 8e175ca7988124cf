package switcher

// Controller methods. Each one queues a command for the ATEM bridge;
// indices are forwarded as received.

// SetProgram puts input on the program bus of an M/E.
func (b *Bridge) SetProgram(me, input int) error {
	return b.Send(CmdSetProgram, map[string]any{"me": me, "input": input})
}

// SetPreview puts input on the preview bus of an M/E.
func (b *Bridge) SetPreview(me, input int) error {
	return b.Send(CmdSetPreview, map[string]any{"me": me, "input": input})
}

// Cut performs a cut transition on an M/E.
func (b *Bridge) Cut(me int) error {
	return b.Send(CmdCut, map[string]any{"me": me})
}

// Auto performs the configured auto transition on an M/E.
func (b *Bridge) Auto(me int) error {
	return b.Send(CmdAuto, map[string]any{"me": me})
}

// FadeToBlack toggles fade to black on an M/E.
func (b *Bridge) FadeToBlack(me int) error {
	return b.Send(CmdFadeToBlack, map[string]any{"me": me})
}

// SetTransitionPosition sets the T-bar position, 0.0 to 1.0.
func (b *Bridge) SetTransitionPosition(me int, position float64) error {
	return b.Send(CmdSetTransitionPosition, map[string]any{"me": me, "position": position})
}

// SetTransitionStyle selects mix, dip, wipe, dve or sting.
func (b *Bridge) SetTransitionStyle(me int, style string) error {
	return b.Send(CmdSetTransitionStyle, map[string]any{"me": me, "style": style})
}

// SetTransitionRate sets the auto transition duration in frames.
func (b *Bridge) SetTransitionRate(me int, frames int) error {
	return b.Send(CmdSetTransitionRate, map[string]any{"me": me, "frames": frames})
}

// SetUpstreamKeyerOnAir switches an upstream keyer on or off air.
func (b *Bridge) SetUpstreamKeyerOnAir(me, key int, onAir bool) error {
	return b.Send(CmdSetUSKOnAir, map[string]any{"me": me, "key": key, "on_air": onAir})
}

// SetUpstreamKeyerTie ties an upstream keyer to the next transition.
func (b *Bridge) SetUpstreamKeyerTie(me, key int, tie bool) error {
	return b.Send(CmdSetUSKTie, map[string]any{"me": me, "key": key, "tie": tie})
}

// SetUpstreamKeyerFill sets an upstream keyer fill source.
func (b *Bridge) SetUpstreamKeyerFill(me, key, input int) error {
	return b.Send(CmdSetUSKFill, map[string]any{"me": me, "key": key, "input": input})
}

// SetUpstreamKeyerCut sets an upstream keyer key (cut) source.
func (b *Bridge) SetUpstreamKeyerCut(me, key, input int) error {
	return b.Send(CmdSetUSKCut, map[string]any{"me": me, "key": key, "input": input})
}

// SetDownstreamKeyerOnAir switches a downstream keyer on or off air.
func (b *Bridge) SetDownstreamKeyerOnAir(key int, onAir bool) error {
	return b.Send(CmdSetDSKOnAir, map[string]any{"key": key, "on_air": onAir})
}

// SetDownstreamKeyerTie ties a downstream keyer to the next transition.
func (b *Bridge) SetDownstreamKeyerTie(key int, tie bool) error {
	return b.Send(CmdSetDSKTie, map[string]any{"key": key, "tie": tie})
}

// AutoDownstreamKeyer runs a downstream keyer auto transition.
func (b *Bridge) AutoDownstreamKeyer(key int) error {
	return b.Send(CmdAutoDSK, map[string]any{"key": key})
}

// SetDownstreamKeyerFill sets a downstream keyer fill source.
func (b *Bridge) SetDownstreamKeyerFill(key, input int) error {
	return b.Send(CmdSetDSKFill, map[string]any{"key": key, "input": input})
}

// SetDownstreamKeyerCut sets a downstream keyer key (cut) source.
func (b *Bridge) SetDownstreamKeyerCut(key, input int) error {
	return b.Send(CmdSetDSKCut, map[string]any{"key": key, "input": input})
}

// SetAuxSource routes input to an aux output.
func (b *Bridge) SetAuxSource(aux, input int) error {
	return b.Send(CmdSetAuxSource, map[string]any{"aux": aux, "input": input})
}

// RunMacro runs the macro at index.
func (b *Bridge) RunMacro(index int) error {
	return b.Send(CmdRunMacro, map[string]any{"index": index})
}

// StopMacro stops the running macro.
func (b *Bridge) StopMacro() error {
	return b.Send(CmdStopMacro, nil)
}

// SetMediaPlayerClip loads a clip into a media player.
func (b *Bridge) SetMediaPlayerClip(player, clip int) error {
	return b.Send(CmdSetMediaPlayerClip, map[string]any{"player": player, "clip": clip})
}

// SetMediaPlayerStill loads a still into a media player.
func (b *Bridge) SetMediaPlayerStill(player, still int) error {
	return b.Send(CmdSetMediaPlayerStill, map[string]any{"player": player, "still": still})
}

// SetSuperSourceBoxEnabled shows or hides a SuperSource box.
func (b *Bridge) SetSuperSourceBoxEnabled(box int, enabled bool) error {
	return b.Send(CmdSetSuperSourceEnabled, map[string]any{"box": box, "enabled": enabled})
}

// SetSuperSourceBoxSource sets the input shown in a SuperSource box.
func (b *Bridge) SetSuperSourceBoxSource(box, input int) error {
	return b.Send(CmdSetSuperSourceSource, map[string]any{"box": box, "input": input})
}

// SetAudioInputGain sets an audio mixer input gain in dB.
func (b *Bridge) SetAudioInputGain(input int, db float64) error {
	return b.Send(CmdSetAudioInputGain, map[string]any{"input": input, "gain_db": db})
}

// SetAudioInputBalance sets balance from -1.0 (left) to 1.0 (right).
func (b *Bridge) SetAudioInputBalance(input int, balance float64) error {
	return b.Send(CmdSetAudioInputBalance, map[string]any{"input": input, "balance": balance})
}

// SetAudioOutputGain sets the master audio output gain in dB.
func (b *Bridge) SetAudioOutputGain(db float64) error {
	return b.Send(CmdSetAudioOutputGain, map[string]any{"gain_db": db})
}

// StartRecording starts recording.
func (b *Bridge) StartRecording() error {
	return b.Send(CmdStartRecording, nil)
}

// StopRecording stops recording.
func (b *Bridge) StopRecording() error {
	return b.Send(CmdStopRecording, nil)
}

// StartStreaming starts streaming.
func (b *Bridge) StartStreaming() error {
	return b.Send(CmdStartStreaming, nil)
}

// StopStreaming stops streaming.
func (b *Bridge) StopStreaming() error {
	return b.Send(CmdStopStreaming, nil)
}

// RequestStatus asks the ATEM bridge to publish its full state.
func (b *Bridge) RequestStatus() error {
	return b.Send(CmdRequestStatus, nil)
}
