// Package tracelog records a scenario's sequence of allocate/deallocate
// calls so a run can be replayed deterministically, brotli-compressing
// the record on write the same way kernel/go.mod already pulls in
// andybalholm/brotli (never imported by the teacher's own code, but a
// real dependency given a home here rather than dropped).
package tracelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"

	"github.com/Vitaminas256/allocator2d/geom"
)

// Op is one recorded allocator call.
type Op struct {
	Kind   string     `json:"kind"` // "allocate" or "deallocate"
	Extent geom.Point `json:"extent,omitempty"`
	Origin geom.Point `json:"origin,omitempty"`
	OK     bool       `json:"ok"`
}

// Writer appends Ops to a brotli-compressed, newline-delimited JSON file.
type Writer struct {
	f  *os.File
	bw *brotli.Writer
	jw *bufio.Writer
}

// Create opens path for writing, truncating any existing trace.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tracelog: create %s: %w", path, err)
	}
	bw := brotli.NewWriter(f)
	return &Writer{f: f, bw: bw, jw: bufio.NewWriter(bw)}, nil
}

// Record appends one operation.
func (w *Writer) Record(op Op) error {
	b, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("tracelog: marshal op: %w", err)
	}
	if _, err := w.jw.Write(b); err != nil {
		return fmt.Errorf("tracelog: write op: %w", err)
	}
	return w.jw.WriteByte('\n')
}

// Close flushes the buffered writer and the brotli stream, then the
// underlying file.
func (w *Writer) Close() error {
	if err := w.jw.Flush(); err != nil {
		return fmt.Errorf("tracelog: flush: %w", err)
	}
	if err := w.bw.Close(); err != nil {
		return fmt.Errorf("tracelog: close brotli stream: %w", err)
	}
	return w.f.Close()
}

// Replay reads every recorded Op back in order, decompressing on the fly.
func Replay(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tracelog: open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(brotli.NewReader(f))
	var ops []Op
	for {
		var op Op
		if err := dec.Decode(&op); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("tracelog: decode op: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}
