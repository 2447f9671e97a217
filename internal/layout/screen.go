package layout

import (
	"fmt"

	"github.com/kjstillabower/forecast-display/internal/icons"
	"github.com/kjstillabower/forecast-display/internal/models"
)

// Params holds the screen-level knobs. Zero values are replaced by DefaultParams.
type Params struct {
	NumHours   int
	HourStep   int
	PopHeight  int
	HourHeight int
}

// DefaultParams shows every other hour across nine columns.
var DefaultParams = Params{
	NumHours:   9,
	HourStep:   2,
	PopHeight:  18,
	HourHeight: 16,
}

func (p Params) withDefaults() Params {
	if p.NumHours <= 0 {
		p.NumHours = DefaultParams.NumHours
	}
	if p.HourStep <= 0 {
		p.HourStep = DefaultParams.HourStep
	}
	if p.PopHeight <= 0 {
		p.PopHeight = DefaultParams.PopHeight
	}
	if p.HourHeight <= 0 {
		p.HourHeight = DefaultParams.HourHeight
	}
	return p
}

// Screen is the full set of bands for one frame, drawn in field order.
type Screen struct {
	Width, Height int
	Temperature   Group
	Precipitation Group
	Hours         Group
}

// Groups returns the bands in draw order.
func (s Screen) Groups() []Group {
	return []Group{s.Temperature, s.Precipitation, s.Hours}
}

// MissingIcons returns the codes of sprites that had no mapping.
func (s Screen) MissingIcons() []string {
	var codes []string
	for _, sp := range s.Temperature.Sprites {
		if sp.Index == icons.Missing {
			codes = append(codes, sp.Code)
		}
	}
	return codes
}

// Compose stacks the temperature, precipitation and hour bands over a width x height screen.
// The temperature band takes what the other two leave, plus two pixels of overlap.
func Compose(hours []models.FormattedHour, width, height int, p Params, iconMap icons.Map) (Screen, error) {
	p = p.withDefaults()
	if width <= 0 || height <= 0 {
		return Screen{}, fmt.Errorf("%w: screen %dx%d", ErrInvalidGeometry, width, height)
	}

	cols := Columns{Width: width, Count: p.NumHours, Stride: p.HourStep}
	tempHeight := height - p.PopHeight - p.HourHeight + 2

	temp, err := TemperatureBand(hours, cols, Band{X: 0, Y: 0, Height: tempHeight}, iconMap)
	if err != nil {
		return Screen{}, fmt.Errorf("temperature band: %w", err)
	}
	precip, err := PrecipitationBand(hours, cols, Band{X: 0, Y: tempHeight, Height: p.PopHeight})
	if err != nil {
		return Screen{}, fmt.Errorf("precipitation band: %w", err)
	}
	hourGroup, err := HourBand(hours, cols, Band{X: 0, Y: tempHeight + p.PopHeight + 4, Height: p.HourHeight})
	if err != nil {
		return Screen{}, fmt.Errorf("hour band: %w", err)
	}

	return Screen{
		Width:         width,
		Height:        height,
		Temperature:   temp,
		Precipitation: precip,
		Hours:         hourGroup,
	}, nil
}
