package layout

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kjstillabower/forecast-display/internal/icons"
	"github.com/kjstillabower/forecast-display/internal/models"
)

const (
	// IconSize is the edge length of a sprite tile.
	IconSize = 20
	// iconLabelReserve is the vertical space kept free below the curve for the icon and its label.
	iconLabelReserve = IconSize + 10
	// popLabelThreshold is the probability above which a percentage is printed.
	popLabelThreshold = 0.3
)

// TempRange returns the minimum temperature and max-min across all hours, not only sampled ones.
func TempRange(hours []models.FormattedHour) (low, span float64) {
	if len(hours) == 0 {
		return 0, 0
	}
	lo, hi := hours[0].Temp, hours[0].Temp
	for _, h := range hours[1:] {
		if h.Temp < lo {
			lo = h.Temp
		}
		if h.Temp > hi {
			hi = h.Temp
		}
	}
	return lo, hi - lo
}

// TempOffset is the height above the band baseline for temp. A flat forecast maps every
// hour to zero.
func TempOffset(temp, low, span float64, available int) int {
	if span <= 0 {
		return 0
	}
	return int(math.Floor((temp - low) / span * float64(available)))
}

// TemperatureBand places one icon and one rounded temperature per column, raised in
// proportion to the temperature.
func TemperatureBand(hours []models.FormattedHour, cols Columns, band Band, iconMap icons.Map) (Group, error) {
	available := band.Height - iconLabelReserve
	if available <= 0 {
		return Group{}, fmt.Errorf("%w: temperature band height %d", ErrInvalidGeometry, band.Height)
	}
	low, span := TempRange(hours)

	g := Group{X: band.X, Y: band.Y}
	err := sample(hours, cols, func(x int, h models.FormattedHour) {
		y := TempOffset(h.Temp, low, span, available)
		idx, _ := iconMap.Resolve(h.Icon)
		g.Sprites = append(g.Sprites, Sprite{X: x + 5, Y: available - y - 2, Index: idx, Code: h.Icon})
		g.Labels = append(g.Labels, Label{X: x + 10, Y: available - y + 23, Text: TempLabel(h.Temp), Color: Black})
	})
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

// PrecipitationBand draws a bottom-anchored bar per column, at least one pixel tall, and a
// percentage above it when the probability is high enough.
func PrecipitationBand(hours []models.FormattedHour, cols Columns, band Band) (Group, error) {
	if band.Height <= 0 {
		return Group{}, fmt.Errorf("%w: precipitation band height %d", ErrInvalidGeometry, band.Height)
	}
	colWidth := cols.Width / max(cols.Count, 1)

	g := Group{X: band.X, Y: band.Y}
	err := sample(hours, cols, func(x int, h models.FormattedHour) {
		barHeight := BarHeight(h.Pop, band.Height)
		g.Rects = append(g.Rects, Rect{X: x, Y: band.Height - barHeight, W: colWidth - 2, H: barHeight, Fill: MidGray})

		if h.Pop > popLabelThreshold {
			offset := 7
			if h.Pop == 1 {
				offset = 4
			}
			g.Labels = append(g.Labels, Label{X: x + offset, Y: band.Height - 10, Text: PopLabel(h.Pop), Color: DarkGray})
		}
	})
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

// BarHeight is floor(height * pop), raised to 1 so every column keeps a visible baseline.
func BarHeight(pop float64, height int) int {
	h := int(math.Floor(float64(height) * pop))
	if h < 1 {
		h = 1
	}
	return h
}

// HourBand prints the local hour of each column.
func HourBand(hours []models.FormattedHour, cols Columns, band Band) (Group, error) {
	g := Group{X: band.X, Y: band.Y}
	err := sample(hours, cols, func(x int, h models.FormattedHour) {
		g.Labels = append(g.Labels, Label{X: x + 10, Y: 0, Text: HourLabel(h.Hour), Color: Black})
	})
	if err != nil {
		return Group{}, err
	}
	return g, nil
}

// HourLabel renders hour modulo 12 with an A/P suffix: 0 -> "0A", 12 -> "0P", 13 -> "1P".
func HourLabel(hour int) string {
	if hour >= 12 {
		return strconv.Itoa(hour%12) + "P"
	}
	return strconv.Itoa(hour) + "A"
}

// TempLabel rounds half to even, matching the firmware the sprite layout was tuned for.
func TempLabel(temp float64) string {
	return strconv.Itoa(int(math.RoundToEven(temp)))
}

// PopLabel renders a probability as a whole percentage.
func PopLabel(pop float64) string {
	return strconv.Itoa(int(math.RoundToEven(pop*100))) + "%"
}
