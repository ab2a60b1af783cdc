package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedCenters() {
	SetServiceCenters([]ServiceCenter{
		{Region: "Dhaka", District: "Dhaka", CoveredArea: []string{"Uttara", "Mirpur"}, Latitude: 23.8103, Longitude: 90.4125},
		{Region: "Dhaka", District: "Gazipur", CoveredArea: []string{"Tongi"}, Latitude: 23.9999, Longitude: 90.4203},
		{Region: "Chattogram", District: "Chattogram", CoveredArea: []string{"Agrabad"}, Latitude: 22.3569, Longitude: 91.7832},
	})
}

func TestInitServiceCenters(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "centers.json")
	require.NoError(t, os.WriteFile(p, []byte(`[
  {"region": "Sylhet", "district": "Sylhet", "covered_area": ["Beanibazar"], "latitude": 24.8949, "longitude": 91.8687}
]`), 0o600))

	require.NoError(t, InitServiceCenters(p))
	require.Len(t, ServiceCenters(), 1)
	require.True(t, HasDistrict("Sylhet", "Sylhet"))

	seedCenters()
}

func TestInitServiceCentersRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "centers.json")
	require.NoError(t, os.WriteFile(p, []byte(`[]`), 0o600))
	require.Error(t, InitServiceCenters(p))

	require.Error(t, InitServiceCenters(filepath.Join(dir, "missing.json")))
}

func TestRegionsAndDistricts(t *testing.T) {
	seedCenters()

	require.Equal(t, []string{"Chattogram", "Dhaka"}, Regions())
	require.Equal(t, []string{"Dhaka", "Gazipur"}, DistrictsByRegion("Dhaka"))
	require.Empty(t, DistrictsByRegion("Mars"))

	require.True(t, HasDistrict("Dhaka", "Gazipur"))
	require.False(t, HasDistrict("Dhaka", "Chattogram"))
}

func TestFindCoveringCenter(t *testing.T) {
	seedCenters()

	byDistrict, ok := FindCoveringCenter("Gazipur")
	require.True(t, ok)
	require.Equal(t, "Gazipur", byDistrict.District)

	byArea, ok := FindCoveringCenter("Uttara")
	require.True(t, ok)
	require.Equal(t, "Dhaka", byArea.District)

	_, ok = FindCoveringCenter("Atlantis")
	require.False(t, ok)
}

func TestNearestCenter(t *testing.T) {
	seedCenters()

	nearest, ok := NearestCenter(22.4, 91.8)
	require.True(t, ok)
	require.Equal(t, "Chattogram", nearest.District)

	SetServiceCenters(nil)
	_, ok = NearestCenter(22.4, 91.8)
	require.False(t, ok)

	seedCenters()
}
