package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// epaper is the subset of the periph e-paper driver used here.
type epaper interface {
	Init() error
	Clear(c color.Color) error
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Sleep() error
	Halt() error
	Bounds() image.Rectangle
}

// Waveshare drives a 2.13" v4 e-paper HAT over SPI. The panel is portrait; frames are
// landscape and rotated on the way out.
type Waveshare struct {
	dev         epaper
	closePort   func() error
	refreshWait time.Duration
}

// OpenWaveshare initializes the host, opens the default SPI port and clears the panel.
func OpenWaveshare(refreshWait time.Duration) (*Waveshare, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open spi: %w", err)
	}
	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("open e-paper hat: %w", err)
	}
	return newWaveshare(dev, port.Close, refreshWait)
}

func newWaveshare(dev epaper, closePort func() error, refreshWait time.Duration) (*Waveshare, error) {
	if err := dev.Init(); err != nil {
		closePort()
		return nil, fmt.Errorf("init e-paper: %w", err)
	}
	if err := dev.Clear(color.White); err != nil {
		closePort()
		return nil, fmt.Errorf("clear e-paper: %w", err)
	}
	return &Waveshare{dev: dev, closePort: closePort, refreshWait: refreshWait}, nil
}

// Bounds is the panel size in landscape orientation.
func (w *Waveshare) Bounds() image.Rectangle {
	b := w.dev.Bounds()
	return image.Rect(0, 0, b.Dy(), b.Dx())
}

// Show wakes the controller, draws the dithered frame and puts it back to sleep.
func (w *Waveshare) Show(ctx context.Context, frame *image.Gray) error {
	if err := checkFrame(w.Bounds(), frame); err != nil {
		return err
	}
	if err := settle(ctx, w.refreshWait); err != nil {
		return err
	}
	if err := w.dev.Init(); err != nil {
		return fmt.Errorf("init e-paper: %w", err)
	}

	bounds := w.dev.Bounds()
	img := image1bit.NewVerticalLSB(bounds)
	draw.FloydSteinberg.Draw(img, img.Bounds(), toPortrait(frame), image.Point{})

	if err := w.dev.Draw(bounds, img, image.Point{}); err != nil {
		return fmt.Errorf("draw e-paper: %w", err)
	}
	if err := settle(ctx, w.refreshWait); err != nil {
		return err
	}
	if err := w.dev.Sleep(); err != nil {
		return fmt.Errorf("sleep e-paper: %w", err)
	}
	return nil
}

func (w *Waveshare) Close() error {
	haltErr := w.dev.Halt()
	if err := w.closePort(); err != nil {
		return fmt.Errorf("close spi: %w", err)
	}
	return haltErr
}

// toPortrait rotates a landscape frame 90 degrees clockwise.
func toPortrait(src *image.Gray) *image.Gray {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.SetGray(x, y, src.GrayAt(sb.Min.X+y, sb.Min.Y+h-1-x))
		}
	}
	return dst
}
