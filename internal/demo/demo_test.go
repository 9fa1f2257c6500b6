package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vitaminas256/allocator2d/geom"
	"github.com/Vitaminas256/allocator2d/internal/rlog"
	"github.com/Vitaminas256/allocator2d/internal/tracelog"
)

func TestScenario_RunFullyReclaimsCanvas(t *testing.T) {
	cfg := Config{
		TestName:        "test",
		MapSize:         64,
		MaxFillAttempts: 200,
		SizeMin:         4,
		SizeMax:         12,
		Seed:            42,
	}
	s, err := New(cfg, rlog.Default("test"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Run(context.Background()))

	total := geom.Point{X: cfg.MapSize, Y: cfg.MapSize}.Area()
	assert.Equal(t, total, s.alloc.RemainArea())

	origin, ok := s.alloc.Allocate(geom.Point{X: cfg.MapSize, Y: cfg.MapSize})
	require.True(t, ok)
	assert.Equal(t, geom.Point{}, origin)
}

func TestScenario_TraceRecordsAllOps(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		TestName:        "traced",
		MapSize:         32,
		MaxFillAttempts: 20,
		SizeMin:         4,
		SizeMax:         8,
		Seed:            7,
		TracePath:       dir + "/traced.trace.br",
	}
	s, err := New(cfg, rlog.Default("test"))
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Close())

	ops, err := tracelog.Replay(cfg.TracePath)
	require.NoError(t, err)
	var allocs, granted, frees int
	for _, op := range ops {
		switch op.Kind {
		case "allocate":
			allocs++
			if op.OK {
				granted++
			}
		case "deallocate":
			frees++
		}
	}
	// Every Allocate call is recorded, and every granted block is freed
	// exactly once across the fragment, partial-clear and full-clear phases.
	assert.Equal(t, s.allocCt, allocs)
	assert.Equal(t, granted, frees)
}
