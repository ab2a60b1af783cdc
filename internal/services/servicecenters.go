package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/profast/profast-backend/pkg/utils"
)

// ServiceCenter is one district-level hub from the bundled directory. Riders
// are matched to parcels through the center covering the sender's location.
type ServiceCenter struct {
	Region      string   `json:"region"`
	District    string   `json:"district"`
	CoveredArea []string `json:"covered_area"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
}

var (
	centersMu sync.RWMutex
	centers   []ServiceCenter
)

// InitServiceCenters loads the service-center directory from the bundled
// JSON asset. Must be called before any lookup.
func InitServiceCenters(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read service center file: %v", err)
	}

	var loaded []ServiceCenter
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse service center file: %v", err)
	}
	if len(loaded) == 0 {
		return fmt.Errorf("service center file %s is empty", path)
	}

	SetServiceCenters(loaded)
	return nil
}

// SetServiceCenters replaces the in-memory directory.
func SetServiceCenters(loaded []ServiceCenter) {
	centersMu.Lock()
	defer centersMu.Unlock()
	centers = loaded
}

// ServiceCenters returns the loaded directory.
func ServiceCenters() []ServiceCenter {
	centersMu.RLock()
	defer centersMu.RUnlock()
	out := make([]ServiceCenter, len(centers))
	copy(out, centers)
	return out
}

// Regions returns the distinct regions in the directory, sorted.
func Regions() []string {
	centersMu.RLock()
	defer centersMu.RUnlock()

	seen := make(map[string]bool)
	var regions []string
	for _, c := range centers {
		if !seen[c.Region] {
			seen[c.Region] = true
			regions = append(regions, c.Region)
		}
	}
	sort.Strings(regions)
	return regions
}

// DistrictsByRegion returns the districts served within a region.
func DistrictsByRegion(region string) []string {
	centersMu.RLock()
	defer centersMu.RUnlock()

	var districts []string
	for _, c := range centers {
		if c.Region == region {
			districts = append(districts, c.District)
		}
	}
	return districts
}

// HasDistrict reports whether region/district names an entry in the directory.
func HasDistrict(region, district string) bool {
	centersMu.RLock()
	defer centersMu.RUnlock()

	for _, c := range centers {
		if c.Region == region && c.District == district {
			return true
		}
	}
	return false
}

// FindCoveringCenter resolves the service center covering a location name.
// A center covers the location when it is the center's own district or
// appears in the center's covered-area list.
func FindCoveringCenter(location string) (ServiceCenter, bool) {
	centersMu.RLock()
	defer centersMu.RUnlock()

	for _, c := range centers {
		if c.District == location {
			return c, true
		}
		for _, area := range c.CoveredArea {
			if area == location {
				return c, true
			}
		}
	}
	return ServiceCenter{}, false
}

// NearestCenter returns the service center closest to the given coordinates.
func NearestCenter(lat, lng float64) (ServiceCenter, bool) {
	centersMu.RLock()
	defer centersMu.RUnlock()

	if len(centers) == 0 {
		return ServiceCenter{}, false
	}

	best := centers[0]
	bestDist := utils.HaversineDistance(lat, lng, best.Latitude, best.Longitude)
	for _, c := range centers[1:] {
		if d := utils.HaversineDistance(lat, lng, c.Latitude, c.Longitude); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, true
}
