package gfx

import "strconv"

// SequenceKind tags the two flavours of animation data a Sequence can hold.
type SequenceKind int

const (
	// SequenceFrames is an ordered list of picture/tile frames with delays.
	SequenceFrames SequenceKind = iota
	// SequenceCycle is an ordered list of palette rotation strips.
	SequenceCycle
)

// SequenceFrame is one step of a frame sequence.
type SequenceFrame struct {
	Index int // picture or tile index to show
	Delay int // ticks to hold the frame
}

// ColorStrip is one palette rotation of a color cycle. Each strip runs its
// own countdown: every Delay ticks the Count entries starting at First
// rotate one position in Dir direction (non-zero rotates forward).
type ColorStrip struct {
	Delay int
	First uint8
	Count uint8
	Dir   uint8
}

// Sequence feeds the animation engine with either sprite/tile frames or a
// palette color cycle, tagged by kind.
type Sequence struct {
	name   string
	kind   SequenceKind
	target int // first tile index, for tileset animations
	frames []SequenceFrame
	strips []ColorStrip
}

// NewSequence creates a frame sequence for sprite and tileset animations.
// target is the tile index to animate for tileset sequences, unused for
// sprite sequences.
func NewSequence(name string, target int, frames []SequenceFrame) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, ErrWrongSize
	}
	s := &Sequence{name: name, kind: SequenceFrames, target: target}
	s.frames = make([]SequenceFrame, len(frames))
	copy(s.frames, frames)
	return s, nil
}

// NewCycle creates a color cycle sequence for palette animations.
func NewCycle(name string, strips []ColorStrip) (*Sequence, error) {
	if len(strips) == 0 {
		return nil, ErrWrongSize
	}
	s := &Sequence{name: name, kind: SequenceCycle}
	s.strips = make([]ColorStrip, len(strips))
	copy(s.strips, strips)
	return s, nil
}

// NewSpriteSequence builds a frame sequence from the numbered pictures of
// a spriteset: basename1, basename2... with a fixed delay per frame.
func NewSpriteSequence(name string, spriteset *Spriteset, basename string, delay int) (*Sequence, error) {
	if spriteset == nil {
		return nil, ErrInvalidReference
	}
	var frames []SequenceFrame
	for n := 1; ; n++ {
		index := spriteset.FindPicture(basename + strconv.Itoa(n))
		if index == -1 {
			break
		}
		frames = append(frames, SequenceFrame{Index: index, Delay: delay})
	}
	if len(frames) == 0 {
		return nil, ErrInvalidReference
	}
	return NewSequence(name, 0, frames)
}

func (s *Sequence) Name() string       { return s.name }
func (s *Sequence) Kind() SequenceKind { return s.kind }
func (s *Sequence) Target() int        { return s.target }

// NumFrames returns the number of steps regardless of kind.
func (s *Sequence) NumFrames() int {
	if s.kind == SequenceCycle {
		return len(s.strips)
	}
	return len(s.frames)
}

// Frames returns the frame list of a frame sequence.
func (s *Sequence) Frames() []SequenceFrame { return s.frames }

// Strips returns the strip list of a color cycle.
func (s *Sequence) Strips() []ColorStrip { return s.strips }

// Clone creates a copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	c := &Sequence{name: s.name, kind: s.kind, target: s.target}
	c.frames = make([]SequenceFrame, len(s.frames))
	copy(c.frames, s.frames)
	c.strips = make([]ColorStrip, len(s.strips))
	copy(c.strips, s.strips)
	return c
}

// SequencePack is a collection of sequences loadable as a unit and looked
// up by name.
type SequencePack struct {
	seqs   []*Sequence
	byName map[string]*Sequence
}

// NewSequencePack creates an empty pack.
func NewSequencePack() *SequencePack {
	return &SequencePack{byName: make(map[string]*Sequence)}
}

// Count returns the number of sequences in the pack.
func (p *SequencePack) Count() int { return len(p.seqs) }

// Add inserts a sequence. A sequence with the same name replaces the
// previous lookup entry but keeps both in index order.
func (p *SequencePack) Add(s *Sequence) error {
	if s == nil {
		return ErrInvalidReference
	}
	p.seqs = append(p.seqs, s)
	p.byName[s.name] = s
	return nil
}

// Get returns the nth sequence in insertion order.
func (p *SequencePack) Get(index int) (*Sequence, error) {
	if index < 0 || index >= len(p.seqs) {
		return nil, ErrIndexOutOfRange
	}
	return p.seqs[index], nil
}

// Find looks a sequence up by name, nil when missing.
func (p *SequencePack) Find(name string) *Sequence {
	return p.byName[name]
}
