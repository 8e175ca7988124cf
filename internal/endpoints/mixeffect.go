package endpoints

import (
	"strings"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
)

// mixEffects registers bus selection, transitions and upstream keyers for
// every M/E block.
func (c *catalogue) mixEffects() {
	ctl := c.ctl

	c.add("/me/<me>/program", c.input(), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return intArg(func(in int) error { return ctl.SetProgram(me, in) })
	})
	c.add("/me/<me>/preview", c.input(), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return intArg(func(in int) error { return ctl.SetPreview(me, in) })
	})

	c.add("/me/<me>/transition/cut", osc.Trigger(), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return trigger(func() error { return ctl.Cut(me) })
	})
	c.add("/me/<me>/transition/auto", osc.Trigger(), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return trigger(func() error { return ctl.Auto(me) })
	})
	c.add("/me/<me>/transition/ftb", osc.Trigger(), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return trigger(func() error { return ctl.FadeToBlack(me) })
	})
	c.add("/me/<me>/transition/bar", osc.Number(0, 1), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return floatArg(func(pos float64) error { return ctl.SetTransitionPosition(me, pos) })
	})
	c.add("/me/<me>/transition/type", osc.String(switcher.TransitionStyles...), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return func(args osc.Arguments) error {
			style, err := args.String(0)
			if err != nil {
				return err
			}
			return ctl.SetTransitionStyle(me, strings.ToLower(style))
		}
	})
	c.add("/me/<me>/transition/rate", osc.Int(minTransitionRate, maxTransitionRate), func(p osc.Params) osc.EndpointFunc {
		me := p.Get("me")
		return intArg(func(frames int) error { return ctl.SetTransitionRate(me, frames) })
	})

	c.add("/me/<me>/usk/<usk>/on-air", osc.Toggle(), func(p osc.Params) osc.EndpointFunc {
		me, key := p.Get("me"), p.Get("usk")
		return boolArg(func(on bool) error { return ctl.SetUpstreamKeyerOnAir(me, key, on) })
	})
	c.add("/me/<me>/usk/<usk>/tie", osc.Toggle(), func(p osc.Params) osc.EndpointFunc {
		me, key := p.Get("me"), p.Get("usk")
		return boolArg(func(tie bool) error { return ctl.SetUpstreamKeyerTie(me, key, tie) })
	})
	c.add("/me/<me>/usk/<usk>/source/fill", c.input(), func(p osc.Params) osc.EndpointFunc {
		me, key := p.Get("me"), p.Get("usk")
		return intArg(func(in int) error { return ctl.SetUpstreamKeyerFill(me, key, in) })
	})
	c.add("/me/<me>/usk/<usk>/source/cut", c.input(), func(p osc.Params) osc.EndpointFunc {
		me, key := p.Get("me"), p.Get("usk")
		return intArg(func(in int) error { return ctl.SetUpstreamKeyerCut(me, key, in) })
	})
}
