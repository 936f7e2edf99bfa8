package teamsnap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		offset string
		want   string
	}{
		{"zulu marker replaced by offset", "2024-01-10T10:00:00Z", "-05:00", "2024-01-10T10:00:00-05:00"},
		{"naive string gets offset", "2024-01-10T10:00:00", "+02:00", "2024-01-10T10:00:00+02:00"},
		{"zero offset", "2024-01-10T10:00:00Z", "+00:00", "2024-01-10T10:00:00Z"},
		{"offset without colon", "2024-01-10T10:00:00Z", "-0500", "2024-01-10T10:00:00-05:00"},
		{"hour-only offset", "2024-01-10T10:00:00Z", "+09", "2024-01-10T10:00:00+09:00"},
		{"fractional seconds", "2024-01-10T10:00:00.000Z", "+05:30", "2024-01-10T10:00:00+05:30"},
		{"explicit offset kept", "2024-01-10T10:00:00+01:00", "-05:00", "2024-01-10T10:00:00+01:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTimestamp(tt.raw, tt.offset)
			require.NoError(t, err)

			want, err := time.Parse(time.RFC3339, tt.want)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s, want %s", got, want)

			_, gotOff := got.Zone()
			_, wantOff := want.Zone()
			assert.Equal(t, wantOff, gotOff, "offset must be preserved")
		})
	}
}

func TestNormalizeTimestamp_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		offset string
	}{
		{"empty date", "", "-05:00"},
		{"garbage date", "next tuesday", "-05:00"},
		{"missing offset", "2024-01-10T10:00:00Z", ""},
		{"bad offset", "2024-01-10T10:00:00Z", "EST"},
		{"offset too long", "2024-01-10T10:00:00Z", "+05:300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeTimestamp(tt.raw, tt.offset)
			assert.Error(t, err)
		})
	}
}
