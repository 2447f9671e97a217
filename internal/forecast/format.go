// Package forecast normalizes raw hourly API records for layout.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/kjstillabower/forecast-display/internal/models"
)

// ErrMissingCondition is returned when an hourly record carries no weather condition.
var ErrMissingCondition = errors.New("hourly record has no weather condition")

// Format maps raw hourly records to FormattedHour values, preserving order and length.
// The local hour is derived by shifting the UTC timestamp by offset seconds; no timezone
// database is consulted.
func Format(hourly []models.HourlyForecast, offset int64) ([]models.FormattedHour, error) {
	hours := make([]models.FormattedHour, 0, len(hourly))
	for i, h := range hourly {
		if len(h.Weather) == 0 {
			return nil, fmt.Errorf("hour %d (dt=%d): %w", i, h.Dt, ErrMissingCondition)
		}
		hours = append(hours, models.FormattedHour{
			Time: h.Dt,
			Hour: LocalHour(h.Dt, offset),
			Temp: h.Temp,
			Icon: h.Weather[0].Icon,
			Pop:  h.Pop,
		})
	}
	return hours, nil
}

// LocalHour returns the 0..23 hour of dt+offset.
func LocalHour(dt, offset int64) int {
	return time.Unix(dt+offset, 0).UTC().Hour()
}

// LocalClock returns hour and minute of dt+offset.
func LocalClock(dt, offset int64) (hour, minute int) {
	t := time.Unix(dt+offset, 0).UTC()
	return t.Hour(), t.Minute()
}
