package allocator2d

import "github.com/Vitaminas256/allocator2d/geom"

// markIdle implements spec.md §4.3: mark r idle, then merge upward as long
// as a region's entire split (itself plus all three children) is idle,
// finally re-indexing whatever leaf the walk settles on.
func (a *Allocator) markIdle(r *region) {
	r.idle = true
	p := r
	for a.checkMerge(p) {
		p = a.dir.parentOf(p)
	}

	if p.isLeaf() {
		a.pools.insert(p.botLft, p.extent())
	}
}

// checkMerge folds p's three split children back into p when p and all of
// them are idle, resetting p to a leaf and propagating idleness to p's
// parent. It reports whether the walk should continue upward: true after
// merging a non-root region, false when nothing merged or when the region
// just merged is the root.
func (a *Allocator) checkMerge(p *region) bool {
	if !p.idle || !p.isSplitIdle() {
		return false
	}

	// top-left
	tlSrc := geom.Point{X: p.botLft.X, Y: p.split.Y}
	tlDst := geom.Point{X: p.split.X, Y: p.topRit.Y}
	if tlDst.Sub(tlSrc).Area() > 0 {
		a.eraseSplit(tlSrc, tlDst)
	}

	// top-right
	trSrc := p.split
	trDst := p.topRit
	if trDst.Sub(trSrc).Area() > 0 {
		a.eraseSplit(trSrc, trDst)
	}

	// bottom-right
	brSrc := geom.Point{X: p.split.X, Y: p.botLft.Y}
	brDst := geom.Point{X: p.topRit.X, Y: p.split.Y}
	if brDst.Sub(brSrc).Area() > 0 {
		a.eraseSplit(brSrc, brDst)
	}

	// p's own captured slot [botLft, split] was never indexed (captured
	// regions are not idle leaves), so there is nothing to remove for p
	// itself here — only its three now-idle children, erased above.
	p.split = p.topRit

	if p.isRoot() {
		return false
	}
	parent := a.dir.parentOf(p)
	parent.setChildIdle(childQuadrant(parent.botLft, p.botLft), true)
	return true
}

// eraseSplit deletes a fully-idle split child from the directory and the
// free-region index.
func (a *Allocator) eraseSplit(src, dst geom.Point) {
	delete(a.dir, src)
	a.pools.remove(src, dst.Sub(src))
}
