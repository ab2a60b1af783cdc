package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/pkg/utils"
	"gorm.io/gorm"
)

// GetCompletedParcels lists a rider's delivered parcels with the computed
// earning per parcel. Same-center deliveries earn 80% of the cost,
// cross-center 30%.
func GetCompletedParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")
		email := strings.ToLower(c.Query("email"))

		if email == "" {
			email = caller
		}
		if email != caller {
			c.JSON(403, gin.H{"error": "Cannot list another rider's deliveries"})
			return
		}

		var parcels []models.Parcel
		if err := db.Where("assigned_rider_email = ? AND delivery_status = ?",
			email, models.DeliveryStatusDelivered).
			Order("delivered_at desc").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch completed deliveries"})
			return
		}

		results := make([]gin.H, 0, len(parcels))
		for _, p := range parcels {
			results = append(results, gin.H{
				"id":              p.ID,
				"tracking_id":     p.TrackingID,
				"title":           p.Title,
				"sender_center":   p.SenderCenter,
				"receiver_center": p.ReceiverCenter,
				"cost":            p.Cost,
				"earning":         utils.RiderEarning(p.Cost, p.SameDistrict()),
				"picked_at":       p.PickedAt,
				"delivered_at":    p.DeliveredAt,
				"cashout_status":  p.CashoutStatus,
				"cashout_at":      p.CashoutAt,
			})
		}

		c.JSON(200, results)
	}
}

// CashoutParcel settles a delivered parcel's earning. The transition is
// one-way: a parcel that is already cashed out stays cashed out and the
// second attempt is rejected.
func CashoutParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.AssignedRiderEmail != caller {
			c.JSON(403, gin.H{"error": "Only the assigned rider can cash out"})
			return
		}
		if parcel.DeliveryStatus != models.DeliveryStatusDelivered {
			c.JSON(409, gin.H{"error": "Parcel is not delivered yet"})
			return
		}
		if parcel.CashoutStatus == models.CashoutStatusCashedOut {
			c.JSON(409, gin.H{"error": "Parcel is already cashed out"})
			return
		}

		now := time.Now()
		parcel.CashoutStatus = models.CashoutStatusCashedOut
		parcel.CashoutAt = &now

		if err := db.Save(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cash out"})
			return
		}

		c.JSON(200, gin.H{
			"message": "Cashout completed",
			"parcel": gin.H{
				"id":             parcel.ID,
				"cashout_status": parcel.CashoutStatus,
				"cashout_at":     parcel.CashoutAt,
				"earning":        utils.RiderEarning(parcel.Cost, parcel.SameDistrict()),
			},
		})
	}
}
