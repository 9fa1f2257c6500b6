package bloomcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vitaminas256/allocator2d/geom"
)

func TestCache_AddAndMaybeLive(t *testing.T) {
	c := New(100, 0.01)
	origin := geom.Point{X: 4, Y: 8}

	assert.False(t, c.MaybeLive(origin), "an origin never added must report definitely absent")

	c.Add(origin)
	assert.True(t, c.MaybeLive(origin))
}

func TestCache_ResetForgetsPriorEntries(t *testing.T) {
	c := New(10, 0.01)
	origin := geom.Point{X: 1, Y: 1}
	c.Add(origin)
	require := assert.New(t)
	require.True(c.MaybeLive(origin))

	c.Reset(10, 0.01)
	require.False(c.MaybeLive(origin))
}
