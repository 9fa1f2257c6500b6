package allocator2d

import "github.com/Vitaminas256/allocator2d/geom"

// region is the split_point record for one axis-aligned rectangle in the
// canvas partition. It is always reached through the directory by its
// origin (bot_lft); there is no direct pointer between regions, so the
// merge/split walk never builds an owning cycle.
type region struct {
	parent geom.Point // origin of the region this was split out of; == botLft iff root
	botLft geom.Point
	topRit geom.Point
	split  geom.Point // == topRit iff this region is a leaf

	idle       bool
	idleTopLft bool
	idleTopRit bool
	idleBotRit bool
}

func newRegion(parent, botLft, topRit geom.Point) *region {
	return &region{
		parent:     parent,
		botLft:     botLft,
		topRit:     topRit,
		split:      topRit,
		idle:       true,
		idleTopLft: true,
		idleTopRit: true,
		idleBotRit: true,
	}
}

func (r *region) isLeaf() bool { return r.split == r.topRit }
func (r *region) isRoot() bool { return r.parent == r.botLft }
func (r *region) isSplitIdle() bool {
	return r.idleTopLft && r.idleTopRit && r.idleBotRit
}

// extent returns the region's full width/height (topRit - botLft), not to
// be confused with the captured sub-rectangle once the region is split.
func (r *region) extent() geom.Point {
	return r.topRit.Sub(r.botLft)
}

// directory maps a region's origin to its record. It owns every region;
// callers only ever hold a key (geom.Point), matching the original's
// unordered_map<point_type, split_point>.
type directory map[geom.Point]*region

func (d directory) get(origin geom.Point) *region {
	r, ok := d[origin]
	if !ok {
		panic("allocator2d: directory lookup of absent region")
	}
	return r
}

// parentOf resolves a region's parent record through the directory.
func (d directory) parentOf(r *region) *region {
	return d.get(r.parent)
}

// quadrant identifies which of its parent's three split-children a region
// occupies, by coordinate coincidence with the parent's origin (spec.md
// §4.3 "Child identification"). The bottom-left quadrant is the captured
// slot itself and never has a child region, so it is not a case here.
type quadrant int

const (
	quadTopLeft quadrant = iota
	quadBotRight
	quadTopRight
)

func childQuadrant(parentOrigin, childOrigin geom.Point) quadrant {
	switch {
	case parentOrigin.X == childOrigin.X:
		return quadTopLeft
	case parentOrigin.Y == childOrigin.Y:
		return quadBotRight
	default:
		return quadTopRight
	}
}

func (r *region) setChildIdle(q quadrant, idle bool) {
	switch q {
	case quadTopLeft:
		r.idleTopLft = idle
	case quadBotRight:
		r.idleBotRit = idle
	case quadTopRight:
		r.idleTopRit = idle
	}
}
