package engine

// BlendMode selects how layer and sprite pixels combine with the pixels
// already in the back buffer.
type BlendMode int

const (
	// BlendNone overwrites the destination.
	BlendNone BlendMode = iota
	// BlendMix25 mixes 25% source with 75% destination.
	BlendMix25
	// BlendMix50 mixes both halves.
	BlendMix50
	// BlendMix75 mixes 75% source with 25% destination.
	BlendMix75
	// BlendAdd saturating-adds source to destination.
	BlendAdd
	// BlendSub saturating-subtracts source from destination.
	BlendSub
	// BlendMod modulates destination by source.
	BlendMod
	// BlendCustom uses the function set with SetCustomBlendFunction.
	BlendCustom

	numBlendModes
)

// BlendMix is the classic 50% mix.
const BlendMix = BlendMix50

// BlendFunc combines one source and one destination channel intensity.
type BlendFunc func(src, dst uint8) uint8

// blendTable is a precomputed src×dst lookup, indexed src<<8|dst.
type blendTable [65536]uint8

func buildBlendTable(mode BlendMode, custom BlendFunc) *blendTable {
	t := new(blendTable)
	for s := 0; s < 256; s++ {
		for d := 0; d < 256; d++ {
			var v int
			switch mode {
			case BlendMix25:
				v = (s + d*3) / 4
			case BlendMix50:
				v = (s + d) / 2
			case BlendMix75:
				v = (s*3 + d) / 4
			case BlendAdd:
				v = s + d
				if v > 255 {
					v = 255
				}
			case BlendSub:
				v = d - s
				if v < 0 {
					v = 0
				}
			case BlendMod:
				v = s * d / 255
			case BlendCustom:
				if custom != nil {
					v = int(custom(uint8(s), uint8(d)))
				} else {
					v = s
				}
			default:
				v = s
			}
			t[s<<8|d] = uint8(v)
		}
	}
	return t
}

// table returns the lookup for mode, building it on first use. BlendNone
// yields nil, meaning plain overwrite.
func (e *Engine) table(mode BlendMode) *blendTable {
	if mode <= BlendNone || mode >= numBlendModes {
		return nil
	}
	if e.blendTables[mode] == nil {
		e.blendTables[mode] = buildBlendTable(mode, e.customBlend)
	}
	return e.blendTables[mode]
}

// SetCustomBlendFunction installs the channel function used by the
// BlendCustom mode for layers and sprites.
func (e *Engine) SetCustomBlendFunction(fn BlendFunc) {
	e.customBlend = fn
	e.blendTables[BlendCustom] = nil
}
