package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const trackingIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateTrackingID returns a customer-facing tracking code of the form
// PCL-20250829-7GH2K. The random suffix keeps codes from colliding within a
// day; the unique index on parcels.tracking_id backstops the rest.
func GenerateTrackingID() string {
	datePart := time.Now().UTC().Format("20060102")

	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = trackingIDCharset[rand.Intn(len(trackingIDCharset))]
	}

	return fmt.Sprintf("PCL-%s-%s", datePart, suffix)
}
