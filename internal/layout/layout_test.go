package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/forecast-display/internal/icons"
	"github.com/kjstillabower/forecast-display/internal/models"
)

// series builds n hours; temp and pop come from the callbacks, icon is clear-day.
func series(n int, temp func(i int) float64, pop func(i int) float64) []models.FormattedHour {
	hours := make([]models.FormattedHour, n)
	for i := range hours {
		hours[i] = models.FormattedHour{
			Time: int64(i) * 3600,
			Hour: i % 24,
			Temp: temp(i),
			Icon: "01d",
			Pop:  pop(i),
		}
	}
	return hours
}

func constant(v float64) func(int) float64 { return func(int) float64 { return v } }

func TestColumns_Placement(t *testing.T) {
	cols := Columns{Width: 296, Count: 9, Stride: 2}
	assert.Equal(t, 32, cols.ColumnWidth())
	assert.Equal(t, 5, cols.X(0))
	assert.Equal(t, 101, cols.X(3))
	assert.Equal(t, 6, cols.SampleIndex(3))
}

func TestColumns_Check(t *testing.T) {
	cols := Columns{Width: 296, Count: 9, Stride: 2}
	assert.NoError(t, cols.check(17))
	assert.ErrorIs(t, cols.check(16), ErrNotEnoughHours)
	assert.ErrorIs(t, Columns{Width: 296, Count: 0, Stride: 2}.check(48), ErrInvalidGeometry)
	assert.ErrorIs(t, Columns{Width: 296, Count: 9, Stride: 0}.check(48), ErrInvalidGeometry)
	assert.ErrorIs(t, Columns{Width: 0, Count: 9, Stride: 1}.check(48), ErrInvalidGeometry)
}

func TestTempRange(t *testing.T) {
	hours := []models.FormattedHour{{Temp: 40}, {Temp: 60}, {Temp: 50}}
	low, span := TempRange(hours)
	assert.Equal(t, 40.0, low)
	assert.Equal(t, 20.0, span)
	assert.Equal(t, 33, TempOffset(50, low, span, 66))
	assert.Equal(t, 0, TempOffset(40, low, span, 66))
	assert.Equal(t, 66, TempOffset(60, low, span, 66))

	low, span = TempRange(nil)
	assert.Zero(t, low)
	assert.Zero(t, span)
}

func TestTempRange_BelowZero(t *testing.T) {
	hours := []models.FormattedHour{{Temp: -12.5}, {Temp: -3}, {Temp: -20}}
	low, span := TempRange(hours)
	assert.Equal(t, -20.0, low)
	assert.Equal(t, 17.0, span)
}

func TestTempOffset_FlatForecast(t *testing.T) {
	assert.Equal(t, 0, TempOffset(55, 55, 0, 66))
}

func TestTemperatureBand_Positions(t *testing.T) {
	hours := series(17, func(i int) float64 { return 40 + float64(i) }, constant(0))
	cols := Columns{Width: 296, Count: 9, Stride: 2}

	g, err := TemperatureBand(hours, cols, Band{X: 0, Y: 0, Height: 96}, icons.Default)
	require.NoError(t, err)
	require.Len(t, g.Sprites, 9)
	require.Len(t, g.Labels, 9)

	// available = 96 - 30 = 66; range = 16 across all 17 hours
	first := g.Sprites[0]
	assert.Equal(t, Sprite{X: 10, Y: 64, Index: 0, Code: "01d"}, first)
	assert.Equal(t, Label{X: 15, Y: 89, Text: "40", Color: Black}, g.Labels[0])

	last := g.Sprites[8]
	assert.Equal(t, 8*32+5+5, last.X)
	assert.Equal(t, -2, last.Y)
	assert.Equal(t, "56", g.Labels[8].Text)

	// column 3 samples hour 6: floor(6/16*66) = 24
	assert.Equal(t, 66-24-2, g.Sprites[3].Y)
	assert.Equal(t, 66-24+23, g.Labels[3].Y)
}

// TestTemperatureBand_NormalizesOverAllHours checks that an unsampled extreme still sets the scale.
func TestTemperatureBand_NormalizesOverAllHours(t *testing.T) {
	hours := series(3, constant(40), constant(0))
	hours[1].Temp = 80 // never drawn with stride 2
	hours[2].Temp = 60
	cols := Columns{Width: 100, Count: 2, Stride: 2}

	g, err := TemperatureBand(hours, cols, Band{Height: 70}, icons.Default)
	require.NoError(t, err)
	// available 40, range 40: 60 -> 20
	assert.Equal(t, 40-20-2, g.Sprites[1].Y)
}

func TestTemperatureBand_FlatForecast(t *testing.T) {
	hours := series(17, constant(55), constant(0))
	g, err := TemperatureBand(hours, Columns{Width: 296, Count: 9, Stride: 2}, Band{Height: 96}, icons.Default)
	require.NoError(t, err)
	for _, sp := range g.Sprites {
		assert.Equal(t, 64, sp.Y)
	}
}

func TestTemperatureBand_MissingIcon(t *testing.T) {
	hours := series(2, constant(50), constant(0))
	hours[1].Icon = "77d"
	g, err := TemperatureBand(hours, Columns{Width: 100, Count: 2, Stride: 1}, Band{Height: 60}, icons.Default)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Sprites[0].Index)
	assert.Equal(t, icons.Missing, g.Sprites[1].Index)
	assert.Equal(t, "77d", g.Sprites[1].Code)
}

func TestTemperatureBand_Errors(t *testing.T) {
	hours := series(16, constant(50), constant(0))
	_, err := TemperatureBand(hours, Columns{Width: 296, Count: 9, Stride: 2}, Band{Height: 96}, icons.Default)
	assert.ErrorIs(t, err, ErrNotEnoughHours)

	_, err = TemperatureBand(hours, Columns{Width: 296, Count: 2, Stride: 1}, Band{Height: 30}, icons.Default)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestBarHeight(t *testing.T) {
	tests := []struct {
		pop    float64
		height int
		want   int
	}{
		{0.01, 18, 1},
		{0, 18, 1},
		{0.5, 18, 9},
		{0.99, 18, 17},
		{1, 18, 18},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BarHeight(tt.pop, tt.height), "pop=%v height=%d", tt.pop, tt.height)
	}
}

func TestPrecipitationBand_Bars(t *testing.T) {
	pops := []float64{0.01, 0.5, 1}
	hours := series(3, constant(50), func(i int) float64 { return pops[i] })
	cols := Columns{Width: 90, Count: 3, Stride: 1}

	g, err := PrecipitationBand(hours, cols, Band{X: 0, Y: 96, Height: 18})
	require.NoError(t, err)
	assert.Equal(t, 96, g.Y)
	require.Len(t, g.Rects, 3)
	assert.Equal(t, Rect{X: 5, Y: 17, W: 28, H: 1, Fill: MidGray}, g.Rects[0])
	assert.Equal(t, Rect{X: 35, Y: 9, W: 28, H: 9, Fill: MidGray}, g.Rects[1])
	assert.Equal(t, Rect{X: 65, Y: 0, W: 28, H: 18, Fill: MidGray}, g.Rects[2])
}

func TestPrecipitationBand_Labels(t *testing.T) {
	pops := []float64{0.3, 0.31, 1}
	hours := series(3, constant(50), func(i int) float64 { return pops[i] })
	cols := Columns{Width: 90, Count: 3, Stride: 1}

	g, err := PrecipitationBand(hours, cols, Band{Height: 18})
	require.NoError(t, err)
	require.Len(t, g.Labels, 2, "0.3 must not be labeled")

	assert.Equal(t, Label{X: 35 + 7, Y: 8, Text: "31%", Color: DarkGray}, g.Labels[0])
	assert.Equal(t, Label{X: 65 + 4, Y: 8, Text: "100%", Color: DarkGray}, g.Labels[1])
}

func TestHourLabel(t *testing.T) {
	tests := map[int]string{
		0:  "0A",
		1:  "1A",
		11: "11A",
		12: "0P",
		13: "1P",
		23: "11P",
	}
	for hour, want := range tests {
		assert.Equal(t, want, HourLabel(hour), "hour=%d", hour)
	}
}

func TestHourBand(t *testing.T) {
	hours := series(5, constant(50), constant(0))
	for i := range hours {
		hours[i].Hour = 10 + i
	}
	g, err := HourBand(hours, Columns{Width: 60, Count: 3, Stride: 2}, Band{Y: 118, Height: 16})
	require.NoError(t, err)
	require.Len(t, g.Labels, 3)
	assert.Equal(t, Label{X: 15, Y: 0, Text: "10A", Color: Black}, g.Labels[0])
	assert.Equal(t, Label{X: 35, Y: 0, Text: "0P", Color: Black}, g.Labels[1])
	assert.Equal(t, Label{X: 55, Y: 0, Text: "2P", Color: Black}, g.Labels[2])
}

func TestTempAndPopLabels(t *testing.T) {
	assert.Equal(t, "56", TempLabel(55.5))
	assert.Equal(t, "54", TempLabel(54.5))
	assert.Equal(t, "0", TempLabel(-0.4))
	assert.Equal(t, "-3", TempLabel(-2.6))
	assert.Equal(t, "31%", PopLabel(0.31))
	assert.Equal(t, "100%", PopLabel(1))
}

func TestCompose_DefaultScreen(t *testing.T) {
	hours := series(48, func(i int) float64 { return float64(50 + i%7) }, func(i int) float64 { return float64(i%5) / 4 })

	s, err := Compose(hours, 296, 128, Params{}, icons.Default)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Temperature.Y)
	assert.Equal(t, 96, s.Precipitation.Y)
	assert.Equal(t, 118, s.Hours.Y)
	assert.Len(t, s.Temperature.Sprites, 9)
	assert.Len(t, s.Precipitation.Rects, 9)
	assert.Len(t, s.Hours.Labels, 9)
	assert.Len(t, s.Groups(), 3)
	assert.Empty(t, s.MissingIcons())
}

func TestCompose_Errors(t *testing.T) {
	hours := series(10, constant(50), constant(0))

	_, err := Compose(hours, 296, 128, Params{}, icons.Default)
	assert.ErrorIs(t, err, ErrNotEnoughHours)

	_, err = Compose(hours, 0, 128, Params{}, icons.Default)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = Compose(hours, 296, 60, Params{NumHours: 2, HourStep: 1}, icons.Default)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCompose_MissingIcons(t *testing.T) {
	hours := series(17, constant(50), constant(0))
	hours[4].Icon = "zzz"
	s, err := Compose(hours, 296, 128, Params{}, icons.Default)
	require.NoError(t, err)
	assert.Equal(t, []string{"zzz"}, s.MissingIcons())
}
