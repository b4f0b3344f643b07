package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"3w", 3 * 7 * 24 * time.Hour},
		{"4d", 4 * 24 * time.Hour},
		{"5h", 5 * time.Hour},
		{" 2d ", 2 * 24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "w", "3", "3m", "x3d", "-1h", "3.5h"} {
		_, err := parseDuration(in)
		require.ErrorIs(t, err, errBadDuration, in)
	}
}
