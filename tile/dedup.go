package tile

// Deduped is the result of canonicalizing a tile stream: the ordered list of
// unique 32-byte tile patterns (index 0 is always the all-zero pattern) and
// the mapping from source tile index back to its unique index.
type Deduped struct {
	Unique       [][PlaneBytes]byte
	TileToUnique []int
}

// Dedup canonicalizes tiles in row-major order. The all-zero pattern is
// pre-inserted at unique-index 0 before scanning, so every empty tile
// collapses onto it regardless of where it first appears (spec.md §4.6).
func Dedup(tiles []Tile) Deduped {
	seen := make(map[[PlaneBytes]byte]int, len(tiles)+1)

	var zero Tile
	zeroPattern := zero.EncodePlanar()

	d := Deduped{
		Unique:       [][PlaneBytes]byte{zeroPattern},
		TileToUnique: make([]int, len(tiles)),
	}
	seen[zeroPattern] = 0

	for i, t := range tiles {
		pattern := t.EncodePlanar()
		idx, ok := seen[pattern]
		if !ok {
			idx = len(d.Unique)
			d.Unique = append(d.Unique, pattern)
			seen[pattern] = idx
		}
		d.TileToUnique[i] = idx
	}

	return d
}
