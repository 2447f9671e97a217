// Package power hands the computed sleep interval to whatever powers the device down.
//
// A refresh never resumes in place: after Sleep returns the caller either exits (the
// device is woken and the program restarted by the RTC alarm or a scheduler) or, in loop
// mode, starts a fresh render pass.
package power

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Sleeper powers down (or waits) for d.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Wait blocks in-process for the interval. Used in loop mode.
type Wait struct{}

func (Wait) Sleep(ctx context.Context, d time.Duration) error {
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

// Exit does nothing; an external scheduler re-runs the program.
type Exit struct{}

func (Exit) Sleep(context.Context, time.Duration) error { return nil }

// DefaultWakeAlarmPath is the sysfs wake alarm of the first RTC.
const DefaultWakeAlarmPath = "/sys/class/rtc/rtc0/wakealarm"

// WakeAlarm programs a Linux RTC to wake the machine after the interval. The caller
// exits afterwards and the system's power manager shuts the board down.
type WakeAlarm struct {
	path string
}

func NewWakeAlarm(path string) *WakeAlarm {
	if path == "" {
		path = DefaultWakeAlarmPath
	}
	return &WakeAlarm{path: path}
}

// Sleep clears any pending alarm, then arms a relative one. The kernel rejects a new
// alarm while one is set, hence the clear.
func (w *WakeAlarm) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	secs := int64(d / time.Second)
	if secs <= 0 {
		return fmt.Errorf("wake alarm: non-positive interval %v", d)
	}
	if err := os.WriteFile(w.path, []byte("0"), 0o644); err != nil {
		return fmt.Errorf("clear wake alarm: %w", err)
	}
	if err := os.WriteFile(w.path, []byte("+"+strconv.FormatInt(secs, 10)), 0o644); err != nil {
		return fmt.Errorf("set wake alarm: %w", err)
	}
	return nil
}
