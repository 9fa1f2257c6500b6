// Package demo runs the five-phase scenario original_source/main.cpp's
// AllocatorTester drives: fill, fragment, refill, partial clear, full
// clear and verify. It plays the role spec.md §1 waves at as "the demo
// driver (randomised fill/fragment/refill phases)" — an external
// collaborator the allocator core itself never imports.
package demo

import (
	"context"
	"math/rand"

	"github.com/Vitaminas256/allocator2d/allocator2d"
	"github.com/Vitaminas256/allocator2d/geom"
	"github.com/Vitaminas256/allocator2d/internal/bloomcache"
	"github.com/Vitaminas256/allocator2d/internal/forecast"
	"github.com/Vitaminas256/allocator2d/internal/pacer"
	"github.com/Vitaminas256/allocator2d/internal/rlog"
	"github.com/Vitaminas256/allocator2d/internal/snapshot"
	"github.com/Vitaminas256/allocator2d/internal/tracelog"
)

// Config mirrors AllocatorTester::Config from original_source/main.cpp:
// a plain value struct the caller builds up front, matching spec.md §6's
// "no environment variables" and the teacher's own request-struct
// configuration convention.
type Config struct {
	TestName         string
	MapSize          uint32
	MaxFillAttempts  int
	SizeMin, SizeMax uint32
	Seed             int64

	// SnapshotDir, if non-empty, enables PNG snapshotting after each
	// phase (main.cpp's Canvas::save). Empty disables it.
	SnapshotDir string
	// TracePath, if non-empty, records every Allocate/Deallocate call.
	TracePath string
	// PaceOpsPerSecond, if > 0, throttles phase 1's allocate loop so a
	// live viewer can follow along; 0 disables pacing.
	PaceOpsPerSecond int
	// Broadcast, if non-nil, receives a PNG-encoded snapshot after each
	// phase (wired to internal/snapshotsrv.Server.Broadcast by the caller).
	Broadcast func(frame []byte)
}

type block struct {
	origin, size geom.Point
	r, g, b      uint8
}

// Scenario runs the five phases against a fresh allocator.
type Scenario struct {
	cfg   Config
	log   *rlog.Logger
	alloc *allocator2d.Allocator
	live  *bloomcache.Cache
	model *forecast.FragmentationModel
	trace *tracelog.Writer
	rng   *rand.Rand

	canvas  *snapshot.Canvas
	blocks  []block
	allocCt int
}

// New constructs a Scenario. It opens cfg.TracePath for writing if set;
// callers must call Close when done to flush it.
func New(cfg Config, log *rlog.Logger) (*Scenario, error) {
	s := &Scenario{
		cfg:   cfg,
		log:   log.With(cfg.TestName),
		alloc: allocator2d.New(geom.Point{X: cfg.MapSize, Y: cfg.MapSize}),
		live:  bloomcache.New(uint(cfg.MaxFillAttempts), 0.01),
		model: forecast.New(),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	if cfg.SnapshotDir != "" {
		s.canvas = snapshot.New(int(cfg.MapSize), int(cfg.MapSize))
	}
	if cfg.TracePath != "" {
		tw, err := tracelog.Create(cfg.TracePath)
		if err != nil {
			return nil, err
		}
		s.trace = tw
	}
	return s, nil
}

// Close flushes the trace log, if one is open.
func (s *Scenario) Close() error {
	if s.trace == nil {
		return nil
	}
	return s.trace.Close()
}

// Run executes all five phases in order.
func (s *Scenario) Run(ctx context.Context) error {
	s.log.Info("test suite starting", rlog.Uint64("map_size", uint64(s.cfg.MapSize)))

	if err := s.phaseFill(ctx); err != nil {
		return err
	}
	s.phaseFragment()
	s.phaseRefill()
	s.phasePartialClear()
	s.phaseFullClearAndVerify()

	s.log.Info("test suite complete")
	return nil
}

func (s *Scenario) recordAllocate(extent geom.Point, origin geom.Point, ok bool) {
	s.allocCt++
	if s.trace != nil {
		s.trace.Record(tracelog.Op{Kind: "allocate", Extent: extent, Origin: origin, OK: ok})
	}
	if ok {
		s.live.Add(origin)
	}
}

func (s *Scenario) recordDeallocate(origin geom.Point, ok bool) {
	if s.trace != nil {
		s.trace.Record(tracelog.Op{Kind: "deallocate", Origin: origin, OK: ok})
	}
}

// deallocate consults the bloom cache fast path before the authoritative
// Deallocate call, matching internal/bloomcache's documented role: a
// negative MaybeLive answer is certain, so it can skip straight past a
// doomed Deallocate call; a positive answer still falls through to the
// real check.
func (s *Scenario) deallocate(origin geom.Point) bool {
	if !s.live.MaybeLive(origin) {
		s.recordDeallocate(origin, false)
		return false
	}
	ok := s.alloc.Deallocate(origin)
	s.recordDeallocate(origin, ok)
	return ok
}

func (s *Scenario) randomColor() (r, g, b uint8) {
	return uint8(50 + s.rng.Intn(206)), uint8(50 + s.rng.Intn(206)), uint8(50 + s.rng.Intn(206))
}

func (s *Scenario) phaseFill(ctx context.Context) error {
	s.log.Info("phase 1: random fill")

	var p *pacer.Pacer
	if s.cfg.PaceOpsPerSecond > 0 {
		var err error
		p, err = pacer.New(s.cfg.PaceOpsPerSecond, s.cfg.PaceOpsPerSecond)
		if err != nil {
			return err
		}
	}

	count := 0
	span := int(s.cfg.SizeMax-s.cfg.SizeMin) + 1
	for i := 0; i < s.cfg.MaxFillAttempts; i++ {
		if p != nil {
			if err := p.Wait(ctx); err != nil {
				return err
			}
		}
		w := s.cfg.SizeMin + uint32(s.rng.Intn(span))
		h := s.cfg.SizeMin + uint32(s.rng.Intn(span))
		size := geom.Point{X: w, Y: h}

		origin, ok := s.alloc.Allocate(size)
		s.recordAllocate(size, origin, ok)
		if !ok {
			continue
		}
		r, g, b := s.randomColor()
		s.blocks = append(s.blocks, block{origin, size, r, g, b})
		s.paint(origin, size, r, g, b)
		count++

		if count%64 == 0 {
			ratio := s.fragmentationRatio()
			if err := s.model.Observe(s.allocCt, ratio); err != nil {
				s.log.Debug("forecast observe failed", rlog.Err(err))
			}
		}
	}
	s.log.Info("phase 1 complete", rlog.Int("allocated", count))
	s.snapshot("01_allocated.png")
	return nil
}

func (s *Scenario) phaseFragment() {
	s.log.Info("phase 2: fragment — freeing ~50% of live blocks")
	s.rng.Shuffle(len(s.blocks), func(i, j int) { s.blocks[i], s.blocks[j] = s.blocks[j], s.blocks[i] })

	removeCount := len(s.blocks) / 2
	remaining := s.blocks[:0:0]
	for i, b := range s.blocks {
		if i < removeCount {
			if !s.deallocate(b.origin) {
				s.log.Warn("free failed", rlog.Uint64("x", uint64(b.origin.X)), rlog.Uint64("y", uint64(b.origin.Y)))
				continue
			}
			s.paint(b.origin, b.size, 0, 0, 0)
		} else {
			remaining = append(remaining, b)
		}
	}
	s.blocks = remaining
	s.snapshot("02_fragmented.png")
}

func (s *Scenario) phaseRefill() {
	s.log.Info("phase 3: refill gaps with a smaller size distribution")
	lo := uint32(5)
	hi := s.cfg.SizeMin + 5
	span := int(hi-lo) + 1

	success := 0
	attempts := s.cfg.MaxFillAttempts / 2
	for i := 0; i < attempts; i++ {
		w := lo + uint32(s.rng.Intn(span))
		h := lo + uint32(s.rng.Intn(span))
		size := geom.Point{X: w, Y: h}

		origin, ok := s.alloc.Allocate(size)
		s.recordAllocate(size, origin, ok)
		if !ok {
			continue
		}
		s.blocks = append(s.blocks, block{origin, size, 255, 255, 255})
		s.paint(origin, size, 255, 255, 255)
		success++
	}
	s.log.Info("phase 3 complete", rlog.Int("refilled", success))
	s.snapshot("03_refilled.png")
}

func (s *Scenario) phasePartialClear() {
	s.log.Info("phase 4: partial clear — freeing ~30% more")
	s.rng.Shuffle(len(s.blocks), func(i, j int) { s.blocks[i], s.blocks[j] = s.blocks[j], s.blocks[i] })

	removeCount := int(float64(len(s.blocks)) * 0.3)
	remaining := s.blocks[:0:0]
	for i, b := range s.blocks {
		if i < removeCount {
			s.deallocate(b.origin)
			s.paint(b.origin, b.size, 0, 0, 0)
		} else {
			remaining = append(remaining, b)
		}
	}
	s.blocks = remaining
	s.snapshot("04_partial_clear.png")
}

func (s *Scenario) phaseFullClearAndVerify() {
	s.log.Info("phase 5: full clear and verify")
	for _, b := range s.blocks {
		if !s.deallocate(b.origin) {
			s.log.Error("fatal: could not free block", rlog.Uint64("x", uint64(b.origin.X)), rlog.Uint64("y", uint64(b.origin.Y)))
		}
		s.paint(b.origin, b.size, 0, 0, 0)
	}
	s.blocks = nil

	total := geom.Point{X: s.cfg.MapSize, Y: s.cfg.MapSize}.Area()
	remain := s.alloc.RemainArea()
	s.log.Info("final check", rlog.Uint64("expected_remain", total), rlog.Uint64("actual_remain", remain))

	if remain == total {
		s.log.Info("no leak detected")
		origin, ok := s.alloc.Allocate(geom.Point{X: s.cfg.MapSize, Y: s.cfg.MapSize})
		if ok {
			s.log.Info("whole-canvas reallocation succeeded", rlog.Uint64("x", uint64(origin.X)), rlog.Uint64("y", uint64(origin.Y)))
			s.paint(geom.Point{}, geom.Point{X: s.cfg.MapSize, Y: s.cfg.MapSize}, 0, 255, 0)
			s.alloc.Deallocate(origin)
		} else {
			s.log.Error("whole-canvas reallocation failed — fragmentation left uncoalesced")
			s.paint(geom.Point{}, geom.Point{X: s.cfg.MapSize, Y: s.cfg.MapSize}, 255, 0, 0)
		}
	} else {
		s.log.Error("leak detected", rlog.Uint64("missing_area", total-remain))
	}

	s.snapshot("05_full_clear.png")
}

func (s *Scenario) fragmentationRatio() float64 {
	total := s.alloc.RemainArea()
	if total == 0 {
		return 0
	}
	// A cheap proxy for "how much of the remaining space is in small
	// fragments": live blocks below the allocator's own threshold vs all
	// live blocks, sampled from what phaseFill already tracked.
	var small, all int
	threshold := geom.Point{X: s.cfg.MapSize, Y: s.cfg.MapSize}.Area() / 8
	for _, b := range s.blocks {
		all++
		if b.size.Area() < threshold {
			small++
		}
	}
	if all == 0 {
		return 0
	}
	return float64(small) / float64(all)
}

func (s *Scenario) paint(origin, size geom.Point, r, g, b uint8) {
	if s.canvas == nil {
		return
	}
	s.canvas.DrawRect(int(origin.X), int(origin.Y), int(size.X), int(size.Y), r, g, b)
}

func (s *Scenario) snapshot(suffix string) {
	if s.canvas == nil {
		return
	}
	name := s.cfg.SnapshotDir + "/" + s.cfg.TestName + "_" + suffix
	if err := s.canvas.Save(name); err != nil {
		s.log.Warn("snapshot save failed", rlog.Err(err))
	} else {
		s.log.Debug("snapshot saved", rlog.String("path", name))
	}
	if s.cfg.Broadcast != nil {
		frame, err := s.canvas.PNGBytes()
		if err != nil {
			s.log.Warn("snapshot encode failed", rlog.Err(err))
			return
		}
		s.cfg.Broadcast(frame)
	}
}
