// Command allocator2d-demo plays the role of original_source/main.cpp's
// main(): it runs the "Standard" and "HighFragment" scenarios, then a
// final Checked leak-check smoke test, matching the original line for
// line in spirit.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/Vitaminas256/allocator2d/allocator2d"
	"github.com/Vitaminas256/allocator2d/geom"
	"github.com/Vitaminas256/allocator2d/internal/demo"
	"github.com/Vitaminas256/allocator2d/internal/rlog"
	"github.com/Vitaminas256/allocator2d/internal/snapshotsrv"
)

func main() {
	snapshotDir := flag.String("snapshot-dir", "", "directory to write PNG phase snapshots into (empty disables)")
	traceDir := flag.String("trace-dir", "", "directory to write brotli-compressed operation traces into (empty disables)")
	serveAddr := flag.String("serve", "", "address to serve live snapshot broadcasts on, e.g. :8080 (empty disables)")
	flag.Parse()

	log := rlog.Default("allocator2d-demo")

	var broadcast func([]byte)
	if *serveAddr != "" {
		srv := snapshotsrv.New(log.With("snapshotsrv"))
		mux := http.NewServeMux()
		mux.HandleFunc("/snapshots", srv.ServeHTTP)
		go func() {
			log.Info("serving snapshot broadcasts", rlog.String("addr", *serveAddr))
			if err := http.ListenAndServe(*serveAddr, mux); err != nil {
				log.Error("snapshot server stopped", rlog.Err(err))
			}
		}()
		broadcast = srv.Broadcast
	}

	if *snapshotDir != "" {
		if err := os.MkdirAll(*snapshotDir, 0o755); err != nil {
			log.Error("could not create snapshot dir", rlog.Err(err))
			os.Exit(1)
		}
	}

	configs := []demo.Config{
		{
			TestName:        "Standard",
			MapSize:         2048,
			MaxFillAttempts: 10000,
			SizeMin:         32,
			SizeMax:         256,
			Seed:            1,
			SnapshotDir:     *snapshotDir,
			Broadcast:       broadcast,
		},
		{
			TestName:        "HighFragment",
			MapSize:         1024,
			MaxFillAttempts: 5000,
			SizeMin:         4,
			SizeMax:         16,
			Seed:            2,
			SnapshotDir:     *snapshotDir,
			Broadcast:       broadcast,
		},
	}

	ctx := context.Background()
	for _, cfg := range configs {
		if *traceDir != "" {
			cfg.TracePath = *traceDir + "/" + cfg.TestName + ".trace.br"
		}

		s, err := demo.New(cfg, log)
		if err != nil {
			log.Error("could not start scenario", rlog.String("name", cfg.TestName), rlog.Err(err))
			os.Exit(1)
		}
		if err := s.Run(ctx); err != nil {
			log.Error("scenario failed", rlog.String("name", cfg.TestName), rlog.Err(err))
		}
		if err := s.Close(); err != nil {
			log.Error("could not close scenario", rlog.String("name", cfg.TestName), rlog.Err(err))
		}
	}

	runLeakSmokeTest(log)
}

// runLeakSmokeTest mirrors main.cpp's trailing allocator2d_checked block:
// allocate one region, free it, and let Checked's Close assert no leak.
func runLeakSmokeTest(log *rlog.Logger) {
	c := allocator2d.NewChecked(geom.Point{X: 256, Y: 256})
	defer c.Close()

	const width, height = 32, 64
	if origin, ok := c.Allocate(geom.Point{X: width, Y: height}); ok {
		c.Deallocate(origin)
	} else {
		log.Warn("leak smoke test allocation unexpectedly failed")
	}
}
