package display

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Default frame size of the 2.9" MagTag panel.
const (
	DefaultWidth  = 296
	DefaultHeight = 128
)

// PNG writes each frame to a file, replacing it atomically. Used for development and for
// panels driven by an external process watching the file.
type PNG struct {
	path        string
	bounds      image.Rectangle
	refreshWait time.Duration
}

func NewPNG(path string, width, height int, refreshWait time.Duration) *PNG {
	if path == "" {
		path = "forecast.png"
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PNG{path: path, bounds: image.Rect(0, 0, width, height), refreshWait: refreshWait}
}

func (p *PNG) Bounds() image.Rectangle { return p.bounds }

func (p *PNG) Path() string { return p.path }

func (p *PNG) Show(ctx context.Context, frame *image.Gray) error {
	if err := checkFrame(p.bounds, frame); err != nil {
		return err
	}
	if err := settle(ctx, p.refreshWait); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".frame-*.png")
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, frame); err != nil {
		tmp.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("replace frame file: %w", err)
	}
	return settle(ctx, p.refreshWait)
}

func (p *PNG) Close() error { return nil }
