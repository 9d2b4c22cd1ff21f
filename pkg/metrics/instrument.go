package metrics

import (
	"time"

	"github.com/dbehnke/rsc-bcjr/pkg/bcjr"
	"github.com/dbehnke/rsc-bcjr/pkg/maxop"
)

// Instrument wraps dec so that every decode call is counted and timed by c.
// Clones of the returned decoder are instrumented as well.
func Instrument[R maxop.Real](dec bcjr.Decoder[R], c *Collector) bcjr.Decoder[R] {
	info := dec.Info()
	c.DecoderCreated(info)
	return &instrumented[R]{next: dec, c: c, info: info}
}

type instrumented[R maxop.Real] struct {
	next bcjr.Decoder[R]
	c    *Collector
	info bcjr.Info
}

func (d *instrumented[R]) observe(entry string, frames int, start time.Time, err error) {
	d.c.Decoded(d.info, entry, frames, time.Since(start), err)
}

func (d *instrumented[R]) DecodeSISO(frameID int, sys, par, ext []R) error {
	start := time.Now()
	err := d.next.DecodeSISO(frameID, sys, par, ext)
	d.observe(EntrySISO, 1, start, err)
	return err
}

func (d *instrumented[R]) DecodeCodeword(frameID int, y, ext []R) error {
	start := time.Now()
	err := d.next.DecodeCodeword(frameID, y, ext)
	d.observe(EntryCodeword, 1, start, err)
	return err
}

func (d *instrumented[R]) DecodeGroup(sys, par, ext [][]R) error {
	start := time.Now()
	err := d.next.DecodeGroup(sys, par, ext)
	d.observe(EntryGroup, d.info.Frames, start, err)
	return err
}

func (d *instrumented[R]) DecodeSIHO(frameID int, sys, par []R, bits []uint8) error {
	start := time.Now()
	err := d.next.DecodeSIHO(frameID, sys, par, bits)
	d.observe(EntrySIHO, 1, start, err)
	return err
}

func (d *instrumented[R]) Clone() bcjr.Decoder[R] {
	return Instrument(d.next.Clone(), d.c)
}

func (d *instrumented[R]) Info() bcjr.Info {
	return d.info
}
