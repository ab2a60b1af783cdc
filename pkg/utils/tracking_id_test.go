package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var trackingIDPattern = regexp.MustCompile(`^PCL-\d{8}-[0-9A-Z]{5}$`)

func TestGenerateTrackingIDFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := GenerateTrackingID()
		require.Regexp(t, trackingIDPattern, id)
	}
}

func TestGenerateTrackingIDVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[GenerateTrackingID()] = true
	}
	// 36^5 suffixes; 200 draws colliding down to a single value would mean
	// the generator is broken.
	require.Greater(t, len(seen), 1)
}
