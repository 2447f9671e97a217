// Package render rasterizes a composed layout onto a grayscale frame.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kjstillabower/forecast-display/internal/layout"
)

// Renderer draws layout primitives with a fixed bitmap font and a sprite sheet.
// A nil sheet is allowed; every sprite is then drawn as the fallback glyph.
type Renderer struct {
	sheet *SpriteSheet
	face  font.Face
}

// New returns a Renderer using the 7x13 bitmap face.
func New(sheet *SpriteSheet) *Renderer {
	return &Renderer{sheet: sheet, face: basicfont.Face7x13}
}

// Render draws screen onto a white frame sized to the screen.
func (r *Renderer) Render(screen layout.Screen) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, screen.Width, screen.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: layout.White}), image.Point{}, draw.Src)

	for _, g := range screen.Groups() {
		offset := image.Pt(g.X, g.Y)
		for _, rc := range g.Rects {
			fillRect(img, image.Rect(rc.X, rc.Y, rc.X+rc.W, rc.Y+rc.H).Add(offset), rc.Fill)
		}
		for _, sp := range g.Sprites {
			r.drawSprite(img, image.Pt(sp.X, sp.Y).Add(offset), sp.Index)
		}
		for _, l := range g.Labels {
			r.drawLabel(img, image.Pt(l.X, l.Y).Add(offset), l.Text, l.Color)
		}
	}
	return img
}

func (r *Renderer) drawSprite(img *image.Gray, at image.Point, index int) {
	src, ok := r.sheet.Tile(index)
	if !ok {
		drawFallbackGlyph(img, at)
		return
	}
	dst := image.Rectangle{Min: at, Max: at.Add(src.Size())}
	draw.Draw(img, dst, r.sheet.img, src.Min, draw.Src)
}

// drawLabel anchors text by its left edge and vertical middle.
func (r *Renderer) drawLabel(img *image.Gray, anchor image.Point, text string, c uint8) {
	m := r.face.Metrics()
	baseline := anchor.Y - m.Height.Ceil()/2 + m.Ascent.Ceil()
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: c}),
		Face: r.face,
		Dot:  fixed.P(anchor.X, baseline),
	}
	d.DrawString(text)
}

// drawFallbackGlyph is an outlined tile with a question mark, drawn for unmapped conditions.
func drawFallbackGlyph(img *image.Gray, at image.Point) {
	box := image.Rect(0, 0, layout.IconSize, layout.IconSize).Add(at)
	outline(img, box, layout.Black)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: layout.Black}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X+7, at.Y+15),
	}
	d.DrawString("?")
}

func fillRect(img *image.Gray, r image.Rectangle, c uint8) {
	draw.Draw(img, r, image.NewUniform(color.Gray{Y: c}), image.Point{}, draw.Src)
}

func outline(img *image.Gray, r image.Rectangle, c uint8) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
