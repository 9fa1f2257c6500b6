// Package allocator2d implements a two-dimensional rectangular space
// allocator: a fixed W×H canvas that services allocate(w,h)/deallocate(origin)
// requests, splitting idle regions into quadrants on allocation and
// coalescing them back together on deallocation. See SPEC_FULL.md for the
// full requirements; this package is exactly the core those describe, and
// does no I/O of its own.
package allocator2d

import "github.com/Vitaminas256/allocator2d/geom"

// Allocator is a fixed-extent 2D space allocator. The zero value is not
// usable; construct with New. Allocator is not safe for concurrent use —
// callers needing concurrency must serialize calls under their own lock
// (spec.md §5).
type Allocator struct {
	extent     geom.Point
	remainArea uint64
	dir        directory
	pools      pools
}

// New creates an allocator over a canvas of the given extent, with a
// single idle root region covering the whole canvas. Both dimensions of
// extent must be non-zero for the allocator to ever satisfy a request.
func New(extent geom.Point) *Allocator {
	a := &Allocator{
		extent:     extent,
		remainArea: extent.Area(),
		dir:        make(directory),
	}
	a.pools.threshold = extent.Area() / 8
	root := newRegion(geom.Point{}, geom.Point{}, extent)
	a.dir[root.botLft] = root
	a.pools.insert(root.botLft, root.extent())
	return a
}

// Extent returns the canvas extent this allocator was constructed with.
func (a *Allocator) Extent() geom.Point {
	return a.extent
}

// RemainArea returns the current sum of idle-leaf area.
func (a *Allocator) RemainArea() uint64 {
	return a.remainArea
}

// Allocate finds an idle region of at least the requested extent, splits
// it into the captured sub-rectangle plus up to three idle children, and
// returns the captured rectangle's origin. It reports ok=false (with no
// side effect) if extent is zero-area, exceeds the canvas, exceeds the
// current remaining area, or no idle region is large enough.
func (a *Allocator) Allocate(extent geom.Point) (origin geom.Point, ok bool) {
	if extent.Area() == 0 {
		return geom.Point{}, false
	}
	if extent.Beyond(a.extent) {
		return geom.Point{}, false
	}
	if a.remainArea < extent.Area() {
		return geom.Point{}, false
	}

	candidate, found := a.pools.findFit(extent.X, extent.Y)
	if !found {
		return geom.Point{}, false
	}

	r := a.dir.get(candidate)
	a.acquireAndSplit(r, extent)
	a.remainArea -= extent.Area()
	return candidate, true
}

// Deallocate frees the region at origin and cascades merges upward as far
// as possible. It reports false (with no state change) if origin is not a
// region this allocator currently owns.
func (a *Allocator) Deallocate(origin geom.Point) bool {
	r, ok := a.dir[origin]
	if !ok || r.idle {
		return false
	}

	freed := r.split.Sub(r.botLft).Area()
	a.markIdle(r)
	a.remainArea += freed
	return true
}
