// Package display pushes rendered frames to an output device.
package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown display driver")

const (
	DriverPNG       = "png"
	DriverWaveshare = "waveshare2in13v4"
)

// Display is an output surface with fixed dimensions.
type Display interface {
	// Bounds is the landscape frame size the display expects.
	Bounds() image.Rectangle
	// Show blocks until the frame is on the panel.
	Show(ctx context.Context, frame *image.Gray) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver      string
	OutputPath  string        // png only
	Width       int           // png only
	Height      int           // png only
	RefreshWait time.Duration // settle time before and after a panel refresh
}

// Open returns the display for opts.Driver.
func Open(opts Options) (Display, error) {
	switch opts.Driver {
	case DriverPNG, "":
		return NewPNG(opts.OutputPath, opts.Width, opts.Height, opts.RefreshWait), nil
	case DriverWaveshare:
		return OpenWaveshare(opts.RefreshWait)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// settle waits d, returning early with the context error if ctx ends first.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func checkFrame(want image.Rectangle, frame *image.Gray) error {
	if frame == nil {
		return errors.New("nil frame")
	}
	if frame.Bounds().Size() != want.Size() {
		return fmt.Errorf("frame %v does not match display %v", frame.Bounds().Size(), want.Size())
	}
	return nil
}
