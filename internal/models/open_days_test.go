package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenDaysRoundTrip(t *testing.T) {
	for mask := 0; mask < 128; mask++ {
		var days [7]bool
		for i := range days {
			days[i] = mask&(1<<i) != 0
		}

		encoded := EncodeOpenDays(days)
		assert.Equal(t, uint8(mask), encoded)
		assert.Equal(t, days, DecodeOpenDays(encoded), "mask %07b", mask)
	}
}

func TestOpenDaysAll(t *testing.T) {
	days := DecodeOpenDays(OpenDaysAll)
	for i, open := range days {
		assert.True(t, open, "day %d should be open", i)
	}
}
