package allocator2d

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaminas256/allocator2d/geom"
)

func pt(x, y uint32) geom.Point { return geom.Point{X: x, Y: y} }

// S1: basic allocate/free/reallocate-whole-canvas.
func TestScenario_Basic(t *testing.T) {
	a := New(pt(256, 256))

	origin, ok := a.Allocate(pt(32, 64))
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), origin)
	assert.Equal(t, uint64(256*256-32*64), a.RemainArea())

	require.True(t, a.Deallocate(pt(0, 0)))
	assert.Equal(t, uint64(256*256), a.RemainArea())

	origin, ok = a.Allocate(pt(256, 256))
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), origin)
}

// S3: fragment then refill — every even-indexed block freed must be
// reusable by a subsequent same-size allocation.
func TestScenario_FragmentThenRefill(t *testing.T) {
	a := New(pt(256, 256))

	var origins []geom.Point
	for i := 0; i < 64; i++ {
		origin, ok := a.Allocate(pt(16, 16))
		require.True(t, ok)
		origins = append(origins, origin)
	}

	freed := map[geom.Point]bool{}
	for i := 0; i < len(origins); i += 2 {
		require.True(t, a.Deallocate(origins[i]))
		freed[origins[i]] = true
	}

	success := 0
	for i := 0; i < 32; i++ {
		origin, ok := a.Allocate(pt(16, 16))
		require.True(t, ok)
		assert.True(t, freed[origin], "expected reuse of a previously freed origin, got %v", origin)
		success++
	}
	assert.Equal(t, 32, success)
}

// S4: coalesce back to root after a chain of splits, freed in reverse.
func TestScenario_CoalesceToRoot(t *testing.T) {
	a := New(pt(64, 64))

	var origins []geom.Point
	sizes := []geom.Point{pt(64, 16), pt(64, 16), pt(32, 32), pt(32, 32)}
	for _, s := range sizes {
		origin, ok := a.Allocate(s)
		require.True(t, ok, "allocate %v", s)
		origins = append(origins, origin)
	}

	for i := len(origins) - 1; i >= 0; i-- {
		require.True(t, a.Deallocate(origins[i]))
	}

	assert.Equal(t, uint64(64*64), a.RemainArea())
	_, ok := a.Allocate(pt(64, 64))
	assert.True(t, ok)
}

// S2: threshold boundary. The first allocate(1,1) carves the canvas at
// split point (1,1); the remaining top-right quadrant is then exactly
// (31,31), so allocate(31,31) must land there — pinned so the test fails
// loudly if the search or split logic ever changes this outcome.
func TestScenario_ThresholdBoundary(t *testing.T) {
	a := New(pt(32, 32))

	first, ok := a.Allocate(pt(1, 1))
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), first)

	second, ok := a.Allocate(pt(31, 31))
	require.True(t, ok, "expected the carved top-right quadrant to satisfy the second allocation")
	assert.Equal(t, pt(1, 1), second)
}

// S5: exact-fit canvas leaves no room until freed.
func TestScenario_NoFitExact(t *testing.T) {
	a := New(pt(16, 16))

	origin, ok := a.Allocate(pt(16, 16))
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), origin)

	_, ok = a.Allocate(pt(1, 1))
	assert.False(t, ok)

	require.True(t, a.Deallocate(origin))
	_, ok = a.Allocate(pt(1, 1))
	assert.True(t, ok)
}

// S6: oversize requests are rejected without side effects.
func TestScenario_Oversize(t *testing.T) {
	a := New(pt(100, 100))

	_, ok := a.Allocate(pt(200, 1))
	assert.False(t, ok)
	_, ok = a.Allocate(pt(1, 200))
	assert.False(t, ok)
	assert.Equal(t, uint64(10000), a.RemainArea())
}

// Rejection symmetry: zero-area and oversize requests never mutate state;
// double-deallocate returns true then false.
func TestRejectionSymmetry(t *testing.T) {
	a := New(pt(32, 32))

	before := a.RemainArea()
	_, ok := a.Allocate(pt(0, 5))
	assert.False(t, ok)
	_, ok = a.Allocate(pt(33, 1))
	assert.False(t, ok)
	assert.Equal(t, before, a.RemainArea())

	origin, ok := a.Allocate(pt(4, 4))
	require.True(t, ok)
	assert.True(t, a.Deallocate(origin))
	assert.False(t, a.Deallocate(origin))
}

// Idempotent empty state: allocate-then-immediately-deallocate from an
// empty canvas returns remain area to the full canvas.
func TestIdempotentEmptyState(t *testing.T) {
	a := New(pt(50, 50))
	full := a.RemainArea()

	origin, ok := a.Allocate(pt(9, 7))
	require.True(t, ok)
	require.True(t, a.Deallocate(origin))

	assert.Equal(t, full, a.RemainArea())
	_, leaf := a.dir[geom.Point{}]
	assert.True(t, leaf)
	assert.Len(t, a.dir, 1)
}

// Conservation + non-overlap + containment, property-style over a random
// operation sequence.
func TestProperty_ConservationNonOverlapContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const W, H = 128, 128
	a := New(pt(W, H))

	type live struct {
		origin, size geom.Point
	}
	var blocks []live
	capturedArea := uint64(0)

	overlaps := func(a, b live) bool {
		aMaxX, aMaxY := a.origin.X+a.size.X, a.origin.Y+a.size.Y
		bMaxX, bMaxY := b.origin.X+b.size.X, b.origin.Y+b.size.Y
		if aMaxX <= b.origin.X || bMaxX <= a.origin.X {
			return false
		}
		if aMaxY <= b.origin.Y || bMaxY <= a.origin.Y {
			return false
		}
		return true
	}

	for i := 0; i < 2000; i++ {
		if len(blocks) > 0 && rng.Intn(2) == 0 {
			idx := rng.Intn(len(blocks))
			b := blocks[idx]
			require.True(t, a.Deallocate(b.origin))
			capturedArea -= b.size.Area()
			blocks = append(blocks[:idx], blocks[idx+1:]...)
			continue
		}

		w := uint32(1 + rng.Intn(20))
		h := uint32(1 + rng.Intn(20))
		origin, ok := a.Allocate(pt(w, h))
		require.Equal(t, uint64(W)*uint64(H)-capturedArea, a.RemainArea())
		if !ok {
			continue
		}
		cand := live{origin, pt(w, h)}

		require.LessOrEqual(t, cand.origin.X+w, uint32(W))
		require.LessOrEqual(t, cand.origin.Y+h, uint32(H))

		for _, b := range blocks {
			require.False(t, overlaps(cand, b), "new block %+v overlaps existing %+v", cand, b)
		}

		blocks = append(blocks, cand)
		capturedArea += cand.size.Area()
		require.Equal(t, uint64(W)*uint64(H)-capturedArea, a.RemainArea())
	}

	for _, b := range blocks {
		require.True(t, a.Deallocate(b.origin))
	}
	assert.Equal(t, uint64(W)*uint64(H), a.RemainArea())
	_, ok := a.Allocate(pt(W, H))
	assert.True(t, ok)
}

func TestChecked_LeakDetected(t *testing.T) {
	var leaked bool
	c := NewCheckedWithAction(pt(8, 8), func(a *Allocator) { leaked = true })
	_, ok := c.Allocate(pt(2, 2))
	require.True(t, ok)
	c.Close()
	assert.True(t, leaked)
}

func TestChecked_NoLeakWhenFullyFreed(t *testing.T) {
	var leaked bool
	c := NewCheckedWithAction(pt(8, 8), func(a *Allocator) { leaked = true })
	origin, ok := c.Allocate(pt(2, 2))
	require.True(t, ok)
	require.True(t, c.Deallocate(origin))
	c.Close()
	assert.False(t, leaked)
}

func TestChecked_TakeOutSkipsLeakCheck(t *testing.T) {
	var leaked bool
	c := NewCheckedWithAction(pt(8, 8), func(a *Allocator) { leaked = true })
	_, ok := c.Allocate(pt(2, 2))
	require.True(t, ok)
	inner := c.TakeOut()
	c.Close()
	assert.False(t, leaked)
	assert.Equal(t, pt(8, 8), inner.Extent())
}
