package allocator2d

import "github.com/Vitaminas256/allocator2d/geom"

// acquireAndSplit implements spec.md §4.2: carve the requested extent out
// of r's bottom-left corner, registering up to three new idle leaf
// children for the remaining quadrants, then mark r captured.
func (a *Allocator) acquireAndSplit(r *region, extent geom.Point) {
	if r.isLeaf() {
		split := r.botLft.Add(extent)
		a.pools.remove(r.botLft, r.extent())

		// bottom-right
		brSrc := geom.Point{X: split.X, Y: r.botLft.Y}
		brDst := geom.Point{X: r.topRit.X, Y: split.Y}
		if brDst.Sub(brSrc).Area() > 0 {
			a.addSplit(r.botLft, brSrc, brDst)
		}

		// top-right
		trSrc := split
		trDst := r.topRit
		if trDst.Sub(trSrc).Area() > 0 {
			a.addSplit(r.botLft, trSrc, trDst)
		}

		// top-left
		tlSrc := geom.Point{X: r.botLft.X, Y: split.Y}
		tlDst := geom.Point{X: split.X, Y: r.topRit.Y}
		if tlDst.Sub(tlSrc).Area() > 0 {
			a.addSplit(r.botLft, tlSrc, tlDst)
		}

		r.split = split
		a.markCaptured(r)
	} else {
		// Defensive-only path: findFit only ever returns idle leaves (spec.md
		// §4.2), so a non-leaf candidate never reaches here in practice. If it
		// did, its captured slot was never indexed, so there is nothing to
		// remove — just mark it captured.
		a.markCaptured(r)
	}
}

// addSplit registers a freshly carved idle leaf child in the directory
// and indexes it.
func (a *Allocator) addSplit(parent, src, dst geom.Point) {
	a.dir[src] = newRegion(parent, src, dst)
	a.pools.insert(src, dst.Sub(src))
}

// markCaptured marks r captured and, unless r is root, flips the matching
// child-idleness flag on r's parent.
func (a *Allocator) markCaptured(r *region) {
	r.idle = false
	if r.isRoot() {
		return
	}
	p := a.dir.parentOf(r)
	p.setChildIdle(childQuadrant(p.botLft, r.botLft), false)
}
