package loader

import (
	"encoding/xml"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

type sqxFile struct {
	XMLName   xml.Name `xml:"sequences"`
	Sequences []struct {
		Name   string `xml:"name,attr"`
		Target int    `xml:"target,attr"`
		Delay  int    `xml:"delay,attr"`
		Raw    string `xml:",chardata"`
	} `xml:"sequence"`
	Cycles []struct {
		Name   string `xml:"name,attr"`
		Strips []struct {
			Delay int `xml:"delay,attr"`
			First int `xml:"first,attr"`
			Count int `xml:"count,attr"`
			Dir   int `xml:"dir,attr"`
		} `xml:"strip"`
	} `xml:"cycle"`
}

// LoadSequencePack reads an .sqx sequence file. Frame sequences carry
// their indexes as comma-separated chardata with a shared delay; color
// cycles carry one strip element per rotating range.
func (ld *Loader) LoadSequencePack(name string) (*gfx.SequencePack, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	var sqx sqxFile
	if err := xml.Unmarshal(data, &sqx); err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}

	pack := gfx.NewSequencePack()
	for _, s := range sqx.Sequences {
		frames, err := parseFrames(s.Raw, s.Delay)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s sequence %s: %v", name, s.Name, err)
		}
		seq, err := gfx.NewSequence(s.Name, s.Target, frames)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "%s sequence %s", name, s.Name)
		}
		pack.Add(seq)
	}
	for _, c := range sqx.Cycles {
		strips := make([]gfx.ColorStrip, len(c.Strips))
		for i, s := range c.Strips {
			strips[i] = gfx.ColorStrip{
				Delay: s.Delay,
				First: uint8(s.First),
				Count: uint8(s.Count),
				Dir:   uint8(s.Dir),
			}
		}
		seq, err := gfx.NewCycle(c.Name, strips)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "%s cycle %s", name, c.Name)
		}
		pack.Add(seq)
	}
	if pack.Count() == 0 {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: no sequences", name)
	}
	ld.log.Debugf("sequence pack %s loaded, %d sequences", name, pack.Count())
	return pack, nil
}

// parseFrames reads "1,2,3" or "1:4,2:6" frame lists; the per-frame delay
// after ':' overrides the sequence delay.
func parseFrames(raw string, delay int) ([]gfx.SequenceFrame, error) {
	if delay <= 0 {
		delay = 1
	}
	var frames []gfx.SequenceFrame
	for _, field := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	}) {
		f := gfx.SequenceFrame{Delay: delay}
		index, d, ok := strings.Cut(field, ":")
		if ok {
			v, err := strconv.Atoi(d)
			if err != nil {
				return nil, err
			}
			f.Delay = v
		}
		v, err := strconv.Atoi(index)
		if err != nil {
			return nil, err
		}
		f.Index = v
		frames = append(frames, f)
	}
	return frames, nil
}
