package render

import (
	"fmt"
	"image"
	"os"

	_ "golang.org/x/image/bmp"
)

// SpriteSheet is a grid of square tiles addressed row-major by index.
type SpriteSheet struct {
	img  image.Image
	tile int
	cols int
	rows int
}

// NewSpriteSheet wraps an already decoded image.
func NewSpriteSheet(img image.Image, tile int) (*SpriteSheet, error) {
	b := img.Bounds()
	if tile <= 0 || b.Dx() < tile || b.Dy() < tile {
		return nil, fmt.Errorf("sprite sheet %dx%d cannot hold %dpx tiles", b.Dx(), b.Dy(), tile)
	}
	return &SpriteSheet{
		img:  img,
		tile: tile,
		cols: b.Dx() / tile,
		rows: b.Dy() / tile,
	}, nil
}

// LoadSpriteSheet decodes a BMP or PNG sheet from disk.
func LoadSpriteSheet(path string, tile int) (*SpriteSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sprite sheet: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode sprite sheet %s: %w", path, err)
	}
	sheet, err := NewSpriteSheet(img, tile)
	if err != nil {
		return nil, fmt.Errorf("%s sprite sheet %s: %w", format, path, err)
	}
	return sheet, nil
}

// Len is the number of whole tiles in the sheet.
func (s *SpriteSheet) Len() int {
	return s.cols * s.rows
}

// Tile returns the source rectangle of tile index within the sheet image.
func (s *SpriteSheet) Tile(index int) (image.Rectangle, bool) {
	if s == nil || index < 0 || index >= s.Len() {
		return image.Rectangle{}, false
	}
	origin := s.img.Bounds().Min
	x := (index % s.cols) * s.tile
	y := (index / s.cols) * s.tile
	return image.Rect(x, y, x+s.tile, y+s.tile).Add(origin), true
}
