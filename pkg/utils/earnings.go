package utils

const (
	// Rider commission rates. Same-center deliveries pay the higher rate
	// since the rider covers both pickup and drop-off.
	SameCenterEarningRate  = 0.8
	CrossCenterEarningRate = 0.3
)

// RiderEarning returns the rider's cut of a delivered parcel's cost.
func RiderEarning(cost float64, sameCenter bool) float64 {
	if sameCenter {
		return cost * SameCenterEarningRate
	}
	return cost * CrossCenterEarningRate
}
