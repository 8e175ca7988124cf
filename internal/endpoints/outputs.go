package endpoints

import (
	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
)

func (c *catalogue) downstreamKeyers() {
	ctl := c.ctl

	c.add("/dsk/<dsk>/on-air", osc.Toggle(), func(p osc.Params) osc.EndpointFunc {
		key := p.Get("dsk")
		return boolArg(func(on bool) error { return ctl.SetDownstreamKeyerOnAir(key, on) })
	})
	c.add("/dsk/<dsk>/tie", osc.Toggle(), func(p osc.Params) osc.EndpointFunc {
		key := p.Get("dsk")
		return boolArg(func(tie bool) error { return ctl.SetDownstreamKeyerTie(key, tie) })
	})
	c.add("/dsk/<dsk>/auto", osc.Trigger(), func(p osc.Params) osc.EndpointFunc {
		key := p.Get("dsk")
		return trigger(func() error { return ctl.AutoDownstreamKeyer(key) })
	})
	c.add("/dsk/<dsk>/source/fill", c.input(), func(p osc.Params) osc.EndpointFunc {
		key := p.Get("dsk")
		return intArg(func(in int) error { return ctl.SetDownstreamKeyerFill(key, in) })
	})
	c.add("/dsk/<dsk>/source/cut", c.input(), func(p osc.Params) osc.EndpointFunc {
		key := p.Get("dsk")
		return intArg(func(in int) error { return ctl.SetDownstreamKeyerCut(key, in) })
	})
}

// outputs registers aux routing and SuperSource boxes.
func (c *catalogue) outputs() {
	ctl := c.ctl

	c.add("/aux/<aux>", c.input(), func(p osc.Params) osc.EndpointFunc {
		aux := p.Get("aux")
		return intArg(func(in int) error { return ctl.SetAuxSource(aux, in) })
	})

	c.add("/supersource/box/<box>/enabled", osc.Toggle(), func(p osc.Params) osc.EndpointFunc {
		box := p.Get("box")
		return boolArg(func(on bool) error { return ctl.SetSuperSourceBoxEnabled(box, on) })
	})
	c.add("/supersource/box/<box>/source", c.input(), func(p osc.Params) osc.EndpointFunc {
		box := p.Get("box")
		return intArg(func(in int) error { return ctl.SetSuperSourceBoxSource(box, in) })
	})
}

// media registers macros and media players.
func (c *catalogue) media() {
	ctl := c.ctl
	macros := func(t switcher.Topology) int { return t.Macros }
	clips := func(t switcher.Topology) int { return t.MediaClips }
	stills := func(t switcher.Topology) int { return t.MediaStills }

	c.add("/macros/<macro>/run", osc.Trigger(), func(p osc.Params) osc.EndpointFunc {
		index := p.Get("macro")
		return trigger(func() error { return ctl.RunMacro(index) })
	})
	c.add("/macros/run", c.live(macros), func(osc.Params) osc.EndpointFunc {
		return intArg(ctl.RunMacro)
	})
	c.add("/macros/stop", osc.Trigger(), func(osc.Params) osc.EndpointFunc {
		return trigger(ctl.StopMacro)
	})

	c.add("/mplayer/<player>/clip", c.slot(clips), func(p osc.Params) osc.EndpointFunc {
		player := p.Get("player")
		return intArg(func(n int) error { return ctl.SetMediaPlayerClip(player, n) })
	})
	c.add("/mplayer/<player>/still", c.slot(stills), func(p osc.Params) osc.EndpointFunc {
		player := p.Get("player")
		return intArg(func(n int) error { return ctl.SetMediaPlayerStill(player, n) })
	})
}

// audio registers the audio mixer.
func (c *catalogue) audio() {
	ctl := c.ctl

	c.add("/audio/input/<input>/gain", osc.Number(minGainDB, maxGainDB), func(p osc.Params) osc.EndpointFunc {
		input := p.Get("input")
		return floatArg(func(db float64) error { return ctl.SetAudioInputGain(input, db) })
	})
	c.add("/audio/input/<input>/balance", osc.Number(-1, 1), func(p osc.Params) osc.EndpointFunc {
		input := p.Get("input")
		return floatArg(func(bal float64) error { return ctl.SetAudioInputBalance(input, bal) })
	})
	c.add("/audio/output/gain", osc.Number(minGainDB, maxGainDB), func(osc.Params) osc.EndpointFunc {
		return floatArg(ctl.SetAudioOutputGain)
	})
}

// system registers recording, streaming and status requests.
func (c *catalogue) system() {
	ctl := c.ctl
	triggers := []struct {
		path string
		call func() error
	}{
		{"/recording/start", ctl.StartRecording},
		{"/recording/stop", ctl.StopRecording},
		{"/stream/start", ctl.StartStreaming},
		{"/stream/stop", ctl.StopStreaming},
		{"/send-status", ctl.RequestStatus},
	}
	for _, t := range triggers {
		c.add(t.path, osc.Trigger(), func(osc.Params) osc.EndpointFunc {
			return trigger(t.call)
		})
	}
}
