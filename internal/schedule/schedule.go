// Package schedule decides how long the display powers down between refreshes.
package schedule

import (
	"fmt"
	"time"

	"github.com/kjstillabower/forecast-display/internal/forecast"
)

const (
	// WakeHour is the first refresh of the day; nights are slept through.
	WakeHour = 6
	// LastHour is the last hour that still gets a daytime refresh.
	LastHour = 20
)

// SleepSeconds returns the number of seconds to sleep from the local clock time hour:minute.
//
// After LastHour and before WakeHour the display sleeps until WakeHour. During the day it
// sleeps (hour%2)*60 + (60-minute) minutes, which wakes it at the next hour boundary from an
// even hour and at the one after from an odd hour.
func SleepSeconds(hour, minute int) int {
	switch {
	case hour > LastHour:
		return (((24-hour)*60 - minute) + WakeHour*60) * 60
	case hour < WakeHour:
		return ((WakeHour-hour)*60 - minute) * 60
	default:
		return ((hour%2)*60 + (60 - minute)) * 60
	}
}

// SleepFor returns the sleep duration for a local epoch time (UTC epoch seconds already
// shifted by the location's offset).
func SleepFor(localEpoch int64) time.Duration {
	hour, minute := forecast.LocalClock(localEpoch, 0)
	return time.Duration(SleepSeconds(hour, minute)) * time.Second
}

// Describe renders a sleep duration as "H hours, M minutes".
func Describe(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d hours, %d minutes", secs/3600, (secs/60)%60)
}
