package palette

import (
	"fmt"
	"sort"

	"github.com/beddy70/image2pce/color"
)

// Unconstrained marks a tile with no forced palette-group label.
const Unconstrained = -1

// refinementPasses bounds the local-move refinement loop so runtime stays
// predictable on the largest permitted image (spec.md §4.4 Step 2).
const refinementPasses = 4

// Result is the output of Build: the final tile→palette-group assignment
// and the constructed palette family.
type Result struct {
	// Assignment maps each tile, in row-major order, to a palette index
	// in [0, 16).
	Assignment []int
	// Palettes holds all 16 palette slots; only the first Used entries
	// were built from assigned tiles, the rest are bg-filled padding.
	Palettes [MaxPalettes]Palette
	// Used is the number of palette slots holding at least one
	// non-background color; a group whose tiles contain only the
	// background color counts as unused.
	Used int
}

type group struct {
	index  int // original build-order index, used as a compaction tiebreak
	tiles  int
	colors map[color.RGB333]struct{}
}

func newGroup(i int) *group {
	return &group{index: i, colors: make(map[color.RGB333]struct{})}
}

func (g *group) incrementalIncrease(cs ColorSet) int {
	n := 0
	for c := range cs {
		if _, ok := g.colors[c]; !ok {
			n++
		}
	}
	return n
}

func (g *group) fits(cs ColorSet) bool {
	return len(g.colors)+g.incrementalIncrease(cs) <= ColorsPerPalette-1
}

func (g *group) merge(cs ColorSet) {
	for c := range cs {
		g.colors[c] = struct{}{}
	}
}

// approxCost estimates the total squared-distance pixel error incurred if
// cs's colors are approximated against g's existing union rather than added
// to it, used to pick a home for tiles that cannot fit anywhere exactly.
func (g *group) approxCost(cs ColorSet) int {
	total := 0
	for c := range cs {
		if _, ok := g.colors[c]; ok {
			continue
		}
		total += nearestDist(g.colors, c)
	}
	return total
}

// worstDist is the maximum possible RGB333 squared distance (each channel
// off by the full 7 levels), used as the approximation cost of mapping a
// color into a group with no established colors of its own yet.
const worstDist = 3 * (color.Levels - 1) * (color.Levels - 1)

func nearestDist(colors map[color.RGB333]struct{}, c color.RGB333) int {
	if len(colors) == 0 {
		return worstDist
	}
	best := -1
	for oc := range colors {
		d := color.DistSq(c, oc)
		if best == -1 || d < best {
			best = d
		}
	}
	return best
}

// Build implements the greedy-with-refinement clustering contract of
// spec.md §4.4 Step 2, then the palette construction of Step 3 and the
// empty-palette compaction of Step 4.
func Build(sets []ColorSet, bg color.RGB333, k int, constraints []int) (Result, error) {
	if k < 1 || k > MaxPalettes {
		return Result{}, fmt.Errorf("palette: palette count %d out of range [1, %d]", k, MaxPalettes)
	}
	n := len(sets)
	if constraints != nil && len(constraints) != n {
		return Result{}, fmt.Errorf("palette: constraint vector length %d does not match tile count %d", len(constraints), n)
	}
	for _, c := range constraints {
		if c != Unconstrained && (c < 0 || c >= k) {
			return Result{}, fmt.Errorf("palette: constraint label %d out of range [0, %d)", c, k)
		}
	}

	groups := make([]*group, k)
	for i := range groups {
		groups[i] = newGroup(i)
	}

	assignment := make([]int, n)
	overflow := make([]bool, n)
	constrained := make([]bool, n)

	order := buildOrder(sets, constraints, n)

	for _, t := range order {
		label := Unconstrained
		if constraints != nil {
			label = constraints[t]
		}
		cs := sets[t]

		if label != Unconstrained {
			constrained[t] = true
			assignment[t] = label
			groups[label].merge(cs) // overflow resolved by approximation, never reassignment
			groups[label].tiles++
			continue
		}

		best, bestOverflow := placeTile(groups, cs)
		assignment[t] = best
		overflow[t] = bestOverflow
		if !bestOverflow {
			groups[best].merge(cs)
		}
		groups[best].tiles++
	}

	refine(groups, sets, assignment, overflow, constrained)

	return finalize(groups, assignment, bg), nil
}

// buildOrder sorts tiles hardest-first (most distinct colors), placing
// constrained tiles ahead of unconstrained ones as spec.md §4.4 requires.
func buildOrder(sets []ColorSet, constraints []int, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	isConstrained := func(t int) bool {
		return constraints != nil && constraints[t] != Unconstrained
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		ac, bc := isConstrained(a), isConstrained(b)
		if ac != bc {
			return ac // constrained first
		}
		if len(sets[a]) != len(sets[b]) {
			return len(sets[a]) > len(sets[b]) // hardest first
		}
		return a < b
	})
	return order
}

// placeTile runs the greedy pass for one unconstrained tile. It prefers,
// in order: an opened group that already contains every color in cs (a
// free reuse); an empty group, so a tile with colors unlike anything seen
// so far seeds its own cluster instead of diluting one that's already
// opened; an opened group with the smallest incremental color increase,
// once every group has been seeded; and, only when no group can hold cs
// without exceeding capacity, the group with the smallest approximate
// quantization error. Seeding empty groups first spreads genuinely
// distinct tiles across all K slots (mirrors the original implementation's
// per-cluster seeding) rather than merging everything into group 0 simply
// because group 0 has room left.
func placeTile(groups []*group, cs ColorSet) (idx int, overflowed bool) {
	for _, g := range groups {
		if g.tiles != 0 && g.fits(cs) && g.incrementalIncrease(cs) == 0 {
			return g.index, false
		}
	}

	for _, g := range groups {
		if g.tiles == 0 && g.fits(cs) {
			return g.index, false
		}
	}

	bestIdx, bestInc := -1, -1
	for _, g := range groups {
		if g.tiles == 0 || !g.fits(cs) {
			continue
		}
		inc := g.incrementalIncrease(cs)
		if bestIdx == -1 || inc < bestInc {
			bestIdx, bestInc = g.index, inc
		}
	}
	if bestIdx != -1 {
		return bestIdx, false
	}

	bestCost := -1
	for _, g := range groups {
		cost := g.approxCost(cs)
		if bestIdx == -1 || cost < bestCost {
			bestIdx, bestCost = g.index, cost
		}
	}
	return bestIdx, true
}

// refine performs bounded local-move improvement: an overflow tile may move
// to whichever group currently offers the smallest approximate error,
// provided that error strictly improves. Tiles that already fit exactly
// contribute zero error and can never improve by moving, so only overflow
// tiles are reconsidered, keeping each pass O(tiles × groups).
func refine(groups []*group, sets []ColorSet, assignment []int, overflow, constrained []bool) {
	for pass := 0; pass < refinementPasses; pass++ {
		improved := false
		for t, cs := range sets {
			if constrained[t] || !overflow[t] {
				continue
			}
			current := assignment[t]
			currentCost := groups[current].approxCost(cs)

			bestIdx, bestCost := current, currentCost
			for _, g := range groups {
				if g.index == current {
					continue
				}
				cost := g.approxCost(cs)
				if cost < bestCost {
					bestIdx, bestCost = g.index, cost
				}
			}
			if bestCost < currentCost {
				groups[current].tiles--
				groups[bestIdx].tiles++
				assignment[t] = bestIdx
				improved = true
			}
		}
		if !improved {
			break
		}
	}
}

// finalize builds the Step 3 palettes and applies the Step 4 empty-palette
// compaction, remapping assignment through the resulting permutation.
func finalize(groups []*group, assignment []int, bg color.RGB333) Result {
	type built struct {
		orig    int
		tiles   int
		palette Palette
		empty   bool
	}

	all := make([]built, len(groups))
	for i, g := range groups {
		all[i] = built{
			orig:    g.index,
			tiles:   g.tiles,
			palette: build(bg, g.colors),
			empty:   len(g.colors) == 0,
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].empty != all[j].empty {
			return !all[i].empty // real palettes first
		}
		if all[i].tiles != all[j].tiles {
			return all[i].tiles > all[j].tiles
		}
		return all[i].orig < all[j].orig
	})

	remap := make(map[int]int, len(groups))
	var res Result
	for newIdx, b := range all {
		remap[b.orig] = newIdx
		res.Palettes[newIdx] = b.palette
		if !b.empty {
			res.Used++
		}
	}

	res.Assignment = make([]int, len(assignment))
	for t, g := range assignment {
		res.Assignment[t] = remap[g]
	}

	return res
}
