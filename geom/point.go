// Package geom provides the small 2D integer vector type the allocator
// measures regions and requests in.
package geom

// Point is a 2D vector of unsigned 32-bit units. It is used both as a
// coordinate (a region's origin or corner) and as an extent (a width,
// height pair), matching mo_yanxi::math::vector2<std::uint32_t> from the
// original implementation.
type Point struct {
	X, Y uint32
}

// Add returns the componentwise sum.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y}
}

// Sub returns the componentwise difference.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Area returns X*Y widened to 64 bits so it can be compared against
// accumulators (remaining area, canvas area) without overflowing.
func (p Point) Area() uint64 {
	return uint64(p.X) * uint64(p.Y)
}

// Beyond reports whether either component of p exceeds the matching
// component of other.
func (p Point) Beyond(other Point) bool {
	return p.X > other.X || p.Y > other.Y
}
