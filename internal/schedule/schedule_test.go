package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepSeconds(t *testing.T) {
	tests := []struct {
		name         string
		hour, minute int
		want         int
	}{
		{"late evening sleeps to 6am", 21, 10, 530 * 60},
		{"just before midnight", 23, 59, 361 * 60},
		{"after midnight", 2, 0, 4 * 3600},
		{"midnight", 0, 0, 6 * 3600},
		{"just before wake", 5, 45, 15 * 60},
		{"odd daytime hour", 13, 15, 105 * 60},
		{"even daytime hour", 14, 15, 45 * 60},
		{"wake hour", 6, 0, 60 * 60},
		{"last daytime hour", 20, 30, 30 * 60},
		{"odd hour on the hour", 7, 0, 120 * 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SleepSeconds(tt.hour, tt.minute))
		})
	}
}

func TestSleepFor_UsesLocalClock(t *testing.T) {
	local := time.Date(2024, 6, 1, 21, 10, 30, 0, time.UTC).Unix()
	assert.Equal(t, 530*time.Minute, SleepFor(local))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "8 hours, 50 minutes", Describe(530*time.Minute))
	assert.Equal(t, "0 hours, 45 minutes", Describe(45*time.Minute))
	assert.Equal(t, "6 hours, 0 minutes", Describe(6*time.Hour))
}
