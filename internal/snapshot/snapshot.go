// Package snapshot paints a canvas bitmap alongside the allocator and
// saves it as a PNG, the same collaborator role Canvas::save plays in
// original_source/main.cpp. The allocator itself emits no I/O (spec.md
// §6); this is the external bitmap the demo driver paints by hand.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Canvas is a plain RGB bitmap the demo driver paints rectangles onto to
// mirror the allocator's current partition, matching main.cpp's Canvas
// class pixel-for-pixel in behaviour (top-left origin flipped to the
// allocator's bottom-left convention is the caller's responsibility).
type Canvas struct {
	width, height int
	img           *image.RGBA
}

// New builds a black canvas of the given pixel dimensions.
func New(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// DrawRect fills the rectangle [x, x+w) x [y, y+h) with the given color,
// clipping to the canvas bounds exactly as main.cpp's draw_rect does.
func (c *Canvas) DrawRect(x, y, w, h int, r, g, b uint8) {
	col := color.RGBA{R: r, G: g, B: b, A: 255}
	for j := y; j < y+h; j++ {
		if j < 0 || j >= c.height {
			continue
		}
		for i := x; i < x+w; i++ {
			if i < 0 || i >= c.width {
				continue
			}
			c.img.SetRGBA(i, j, col)
		}
	}
}

// Clear resets every pixel to black.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// PNGBytes encodes the canvas as a PNG and returns the encoded bytes, for
// handing to a snapshot server to broadcast as a self-describing frame a
// real client can decode directly.
func (c *Canvas) PNGBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("snapshot: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save encodes the canvas as a PNG at filename.
func (c *Canvas) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, c.img)
}
