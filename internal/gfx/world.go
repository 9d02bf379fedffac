package gfx

// WorldLayer is one stratum of a multi-layer world map: either a tilemap
// plane with its parallax factors or an object group. Exactly one of
// Tilemap and Objects is set.
type WorldLayer struct {
	Name      string
	Tilemap   *Tilemap
	Objects   *ObjectList
	ParallaxX float32
	ParallaxY float32
}

// World bundles every layer of a map file loaded as a unit.
type World struct {
	Layers []WorldLayer
}
