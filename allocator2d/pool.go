package allocator2d

import "github.com/Vitaminas256/allocator2d/geom"

// pools holds the large and fragment free-region indices. Classification
// is always computed in 64-bit arithmetic (geom.Point.Area) so it cannot
// overflow for large canvases, and the threshold is fixed for the
// allocator's lifetime (spec.md §3 "Fragmentation threshold").
type pools struct {
	threshold uint64
	large     dualIndex
	fragment  dualIndex
}

func (p *pools) poolFor(extent geom.Point) *dualIndex {
	if extent.Area() < p.threshold {
		return &p.fragment
	}
	return &p.large
}

func (p *pools) insert(origin, extent geom.Point) {
	p.poolFor(extent).insert(origin, extent.X, extent.Y)
}

func (p *pools) remove(origin, extent geom.Point) {
	p.poolFor(extent).remove(origin, extent.X, extent.Y)
}

// findFit searches the fragment pool first (preferring to fill small
// gaps) and falls back to the large pool, per spec.md §4.1.
func (p *pools) findFit(w, h uint32) (geom.Point, bool) {
	if origin, ok := p.fragment.findFit(w, h); ok {
		return origin, true
	}
	return p.large.findFit(w, h)
}
