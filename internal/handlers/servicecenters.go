package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/services"
)

// GetServiceCenters returns the full warehouse directory the booking and
// rider forms are built from.
func GetServiceCenters() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, services.ServiceCenters())
	}
}

// GetRegions returns the distinct regions, sorted.
func GetRegions() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"regions": services.Regions()})
	}
}

// GetDistricts returns the districts covered within a region.
func GetDistricts() gin.HandlerFunc {
	return func(c *gin.Context) {
		region := c.Query("region")
		if region == "" {
			c.JSON(400, gin.H{"error": "region query parameter is required"})
			return
		}
		c.JSON(200, gin.H{"region": region, "districts": services.DistrictsByRegion(region)})
	}
}
