package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundToIncrement(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		offset    time.Duration
		increment int
		want      time.Duration
	}{
		{"down to quarter", 7 * time.Minute, 15, 0},
		{"up to quarter", 8 * time.Minute, 15, 15 * time.Minute},
		{"five minute", 12 * time.Minute, 5, 10 * time.Minute},
		{"minute keeps seconds away", 3*time.Minute + 29*time.Second, 1, 3 * time.Minute},
		{"exact multiple unchanged", 30 * time.Minute, 10, 30 * time.Minute},
		{"unknown increment falls back to five", 12 * time.Minute, 7, 10 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoundToIncrement(base.Add(tc.offset), tc.increment)
			assert.Equal(t, base.Add(tc.want), got)
		})
	}
}
