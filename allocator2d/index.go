package allocator2d

import (
	"sort"

	"github.com/Vitaminas256/allocator2d/geom"
)

// entry is one (inner key, origin) pair inside an outer bucket. Multiple
// entries may share the same key; insertion order among equal keys is
// preserved, mirroring the behaviour a std::multimap exhibits for stable
// insertion and giving this implementation a deterministic tie-break.
type entry struct {
	key    uint32
	origin geom.Point
}

type bucket struct {
	key   uint32
	inner []entry
}

// orderedIndex is an ordered outer map of ordered inner multimaps, the Go
// stand-in for the original's std::map<size_type, std::multimap<...>>.
// Every idle-leaf mutation funnels through insert/remove so the paired XY
// and YX indices of a pool never drift out of lock step.
type orderedIndex struct {
	buckets []bucket
}

func (idx *orderedIndex) bucketPos(key uint32) (int, bool) {
	i := sort.Search(len(idx.buckets), func(i int) bool { return idx.buckets[i].key >= key })
	if i < len(idx.buckets) && idx.buckets[i].key == key {
		return i, true
	}
	return i, false
}

func (idx *orderedIndex) insert(outerKey, innerKey uint32, origin geom.Point) {
	pos, found := idx.bucketPos(outerKey)
	if !found {
		idx.buckets = append(idx.buckets, bucket{})
		copy(idx.buckets[pos+1:], idx.buckets[pos:])
		idx.buckets[pos] = bucket{key: outerKey}
	}
	b := &idx.buckets[pos]
	ip := sort.Search(len(b.inner), func(i int) bool { return b.inner[i].key > innerKey })
	b.inner = append(b.inner, entry{})
	copy(b.inner[ip+1:], b.inner[ip:])
	b.inner[ip] = entry{key: innerKey, origin: origin}
}

// remove deletes the single entry matching (outerKey, innerKey, origin), if
// present. Absence is not an error: the merge walk (merge.go's checkMerge)
// can legitimately ask to erase a region that settled idle without ever
// being reindexed — the walk only reindexes whichever region it finally
// stops on, not every leaf it passes through on the way up. A silent no-op
// here is what lets that region's directory entry still get cleaned up
// later, when some ancestor's own erase happens to name the same rectangle.
func (idx *orderedIndex) remove(outerKey, innerKey uint32, origin geom.Point) {
	pos, found := idx.bucketPos(outerKey)
	if !found {
		return
	}
	b := &idx.buckets[pos]
	lo := sort.Search(len(b.inner), func(i int) bool { return b.inner[i].key >= innerKey })
	for i := lo; i < len(b.inner) && b.inner[i].key == innerKey; i++ {
		if b.inner[i].origin == origin {
			b.inner = append(b.inner[:i], b.inner[i+1:]...)
			return
		}
	}
}

// lowerBoundOuter returns the index of the first bucket with key >= key,
// or len(buckets) if none.
func (idx *orderedIndex) lowerBoundOuter(key uint32) int {
	return sort.Search(len(idx.buckets), func(i int) bool { return idx.buckets[i].key >= key })
}

// findInner returns the origin of the first entry in bucket b with
// key >= target, if any.
func (idx *orderedIndex) findInner(bucketPos int, target uint32) (geom.Point, bool) {
	b := idx.buckets[bucketPos]
	i := sort.Search(len(b.inner), func(i int) bool { return b.inner[i].key >= target })
	if i < len(b.inner) {
		return b.inner[i].origin, true
	}
	return geom.Point{}, false
}

// dualIndex is one pool's pair of indices: one keyed width-then-height,
// one keyed height-then-width. Insert and remove always touch both.
type dualIndex struct {
	xy orderedIndex // outer = width,  inner = height
	yx orderedIndex // outer = height, inner = width
}

func (d *dualIndex) insert(origin geom.Point, w, h uint32) {
	d.xy.insert(w, h, origin)
	d.yx.insert(h, w, origin)
}

func (d *dualIndex) remove(origin geom.Point, w, h uint32) {
	d.xy.remove(w, h, origin)
	d.yx.remove(h, w, origin)
}

// findFit races the width-primary and height-primary cursors, stepping
// whichever is still live one outer bucket at a time, and returns the
// first candidate either one turns up. See SPEC_FULL.md §6 for why this
// interleaving (not strict alternation, not smallest-bucket-first) is the
// one this implementation commits to.
func (d *dualIndex) findFit(w, h uint32) (geom.Point, bool) {
	xPos := d.xy.lowerBoundOuter(w)
	yPos := d.yx.lowerBoundOuter(h)
	possibleX := xPos < len(d.xy.buckets)
	possibleY := yPos < len(d.yx.buckets)

	for possibleX || possibleY {
		if possibleX {
			if origin, ok := d.xy.findInner(xPos, h); ok {
				return origin, true
			}
			xPos++
			possibleX = xPos < len(d.xy.buckets)
		}
		if possibleY {
			if origin, ok := d.yx.findInner(yPos, w); ok {
				return origin, true
			}
			yPos++
			possibleY = yPos < len(d.yx.buckets)
		}
	}
	return geom.Point{}, false
}
