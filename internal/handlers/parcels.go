package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"github.com/profast/profast-backend/pkg/utils"
	"gorm.io/gorm"
)

type CreateParcelInput struct {
	Title               string  `json:"title" binding:"required"`
	Type                string  `json:"type" binding:"required,oneof=document non-document"`
	Weight              float64 `json:"weight"`
	SenderName          string  `json:"sender_name" binding:"required"`
	SenderContact       string  `json:"sender_contact" binding:"required"`
	SenderRegion        string  `json:"sender_region" binding:"required"`
	SenderCenter        string  `json:"sender_center" binding:"required"`
	SenderAddress       string  `json:"sender_address" binding:"required"`
	PickupInstruction   string  `json:"pickup_instruction" binding:"required"`
	ReceiverName        string  `json:"receiver_name" binding:"required"`
	ReceiverContact     string  `json:"receiver_contact" binding:"required"`
	ReceiverRegion      string  `json:"receiver_region" binding:"required"`
	ReceiverCenter      string  `json:"receiver_center" binding:"required"`
	ReceiverAddress     string  `json:"receiver_address" binding:"required"`
	DeliveryInstruction string  `json:"delivery_instruction" binding:"required"`
}

// CreateParcel creates a parcel and its first tracking event in a single
// transaction. The delivery cost is computed server-side; a client-supplied
// cost is ignored.
func CreateParcel(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var input CreateParcelInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !services.HasDistrict(input.SenderRegion, input.SenderCenter) {
			c.JSON(400, gin.H{"error": "Unknown sender service center"})
			return
		}
		if !services.HasDistrict(input.ReceiverRegion, input.ReceiverCenter) {
			c.JSON(400, gin.H{"error": "Unknown receiver service center"})
			return
		}

		sameDistrict := input.SenderCenter == input.ReceiverCenter
		cost := utils.CalculateDeliveryCost(input.Type, input.Weight, sameDistrict)

		parcel := models.Parcel{
			Title:               input.Title,
			Type:                input.Type,
			Weight:              input.Weight,
			SenderName:          input.SenderName,
			SenderContact:       input.SenderContact,
			SenderRegion:        input.SenderRegion,
			SenderCenter:        input.SenderCenter,
			SenderAddress:       input.SenderAddress,
			PickupInstruction:   input.PickupInstruction,
			ReceiverName:        input.ReceiverName,
			ReceiverContact:     input.ReceiverContact,
			ReceiverRegion:      input.ReceiverRegion,
			ReceiverCenter:      input.ReceiverCenter,
			ReceiverAddress:     input.ReceiverAddress,
			DeliveryInstruction: input.DeliveryInstruction,
			Cost:                cost.TotalCost,
			CreatedBy:           email,
			PaymentStatus:       models.PaymentStatusUnpaid,
			DeliveryStatus:      models.DeliveryStatusNotCollected,
			TrackingID:          utils.GenerateTrackingID(),
		}

		event := models.TrackingEvent{
			Status:    models.TrackingStatusSubmitted,
			Location:  parcel.SenderCenter,
			UpdatedBy: email,
		}

		// Parcel and first tracking event commit together; a parcel can
		// never exist without its submitted event.
		tx := db.Begin()
		if err := tx.Create(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create parcel", "details": err.Error()})
			return
		}

		event.ParcelID = parcel.ID
		event.TrackingID = parcel.TrackingID
		if err := tx.Create(&event).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create tracking record", "details": err.Error()})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create parcel"})
			return
		}

		services.InvalidateStatusCounts(c.Request.Context())
		if hub != nil {
			hub.BroadcastTrackingUpdate(&event, parcel.CreatedBy, "")
		}

		c.JSON(201, gin.H{
			"insertedId":  parcel.ID,
			"tracking_id": parcel.TrackingID,
			"cost":        cost.TotalCost,
			"breakdown":   cost,
		})
	}
}

// ListParcels serves both dashboard listings: by creator email and, for
// admins, by delivery status.
func ListParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")
		email := strings.ToLower(c.Query("email"))
		status := c.Query("status")

		query := db.Model(&models.Parcel{}).Order("created_at desc")

		switch {
		case status != "":
			role, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Only admins can list parcels by status"})
				return
			}
			query = query.Where("delivery_status = ?", status)
		case email != "":
			if email != caller {
				role, err := services.ResolveRole(c.Request.Context(), db, caller)
				if err != nil {
					c.JSON(500, gin.H{"error": "Failed to resolve role"})
					return
				}
				if role != models.RoleAdmin {
					c.JSON(403, gin.H{"error": "Cannot list another user's parcels"})
					return
				}
			}
			query = query.Where("created_by = ?", email)
		default:
			query = query.Where("created_by = ?", caller)
		}

		var parcels []models.Parcel
		if err := query.Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// GetParcel returns a single parcel to its creator, its assigned rider, or
// an admin.
func GetParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.CreatedBy != caller && parcel.AssignedRiderEmail != caller {
			role, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Forbidden"})
				return
			}
		}

		c.JSON(200, parcel)
	}
}

// DeleteParcel removes a parcel. Tracking events are kept; the timeline is
// append-only even across deletion.
func DeleteParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.CreatedBy != caller {
			role, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Cannot delete another user's parcel"})
				return
			}
		}

		if err := db.Delete(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete parcel"})
			return
		}

		services.InvalidateStatusCounts(c.Request.Context())

		c.JSON(200, gin.H{"message": "Parcel deleted", "deletedId": parcel.ID})
	}
}

// GetParcelsByUser lists a user's parcels for the dashboard shell.
func GetParcelsByUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")
		email := strings.ToLower(c.Param("email"))

		if email != caller {
			role, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Forbidden"})
				return
			}
		}

		var parcels []models.Parcel
		if err := db.Where("created_by = ?", email).Order("created_at desc").Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// GetRiderParcels lists the parcels assigned to a rider.
func GetRiderParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")
		riderEmail := strings.ToLower(c.Query("riderEmail"))

		if riderEmail == "" {
			c.JSON(400, gin.H{"error": "riderEmail query parameter required"})
			return
		}
		if riderEmail != caller {
			c.JSON(403, gin.H{"error": "Cannot list another rider's parcels"})
			return
		}

		var parcels []models.Parcel
		if err := db.Where("assigned_rider_email = ?", riderEmail).
			Order("created_at desc").
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, gin.H{"parcels": parcels})
	}
}

// DeliveryStatusCount aggregates parcels by delivery status for the admin
// chart. The aggregation is cached and invalidated by parcel mutations.
func DeliveryStatusCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if counts, ok, err := services.GetCachedStatusCounts(ctx); err == nil && ok {
			c.JSON(200, counts)
			return
		}

		var counts []services.StatusCount
		if err := db.Model(&models.Parcel{}).
			Select("delivery_status as status, count(*) as count").
			Group("delivery_status").
			Scan(&counts).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to count parcels"})
			return
		}

		services.CacheStatusCounts(ctx, counts)

		c.JSON(200, counts)
	}
}

type AssignRiderInput struct {
	RiderID    uint     `json:"riderId" binding:"required"`
	RiderEmail string   `json:"riderEmail"`
	RiderName  string   `json:"riderName"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// AssignRider assigns an eligible rider to an unassigned parcel and appends
// the "Rider Assigned" tracking event in the same transaction. The event
// location uses the caller's coordinates when supplied and otherwise falls
// back to the sender's service center.
func AssignRider(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AssignRiderInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.DeliveryStatus != models.DeliveryStatusNotCollected || parcel.AssignedRiderID != nil {
			c.JSON(409, gin.H{"error": "Parcel already has a rider assigned"})
			return
		}

		var rider models.Rider
		if err := db.First(&rider, input.RiderID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Rider not found"})
			return
		}

		if rider.Status != string(models.RiderStatusAccepted) {
			c.JSON(400, gin.H{"error": "Rider application is not accepted"})
			return
		}

		center, ok := services.FindCoveringCenter(parcel.SenderCenter)
		if !ok {
			c.JSON(422, gin.H{"error": "No service center covers the sender location"})
			return
		}
		if rider.District != center.District || rider.Region != center.Region {
			c.JSON(400, gin.H{"error": "Rider does not cover the sender's service center"})
			return
		}

		event := models.TrackingEvent{
			TrackingID: parcel.TrackingID,
			Status:     models.TrackingStatusRiderAssigned,
			UpdatedBy:  input.RiderName,
		}
		if event.UpdatedBy == "" {
			event.UpdatedBy = "system"
		}

		if input.Latitude != nil && input.Longitude != nil {
			event.Latitude = input.Latitude
			event.Longitude = input.Longitude
			if nearest, found := services.NearestCenter(*input.Latitude, *input.Longitude); found {
				event.Location = nearest.District
			}
		} else {
			lat, lng := center.Latitude, center.Longitude
			event.Latitude = &lat
			event.Longitude = &lng
			event.Location = parcel.SenderCenter
		}

		riderID := rider.ID
		tx := db.Begin()

		parcel.AssignedRiderID = &riderID
		parcel.AssignedRiderEmail = strings.ToLower(rider.Email)
		parcel.AssignedRiderName = rider.Name
		parcel.DeliveryStatus = models.DeliveryStatusRiderAssigned
		if err := tx.Save(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to assign rider"})
			return
		}

		event.ParcelID = parcel.ID
		event.RiderID = &riderID
		if err := tx.Create(&event).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to record tracking event"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to assign rider"})
			return
		}

		// Listings re-fetch rather than patching local state; drop the
		// cached aggregation so they see the new status immediately.
		services.InvalidateStatusCounts(c.Request.Context())
		if hub != nil {
			hub.BroadcastTrackingUpdate(&event, parcel.CreatedBy, parcel.AssignedRiderEmail)
		}

		c.JSON(200, gin.H{"message": "Rider assigned", "parcel": parcel})
	}
}

// ToggleDelivery flips a parcel between delivered and in-transit. Only the
// assigned rider may toggle. Entering in-transit appends exactly one
// tracking event; no transition removes history.
func ToggleDelivery(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.AssignedRiderEmail != caller {
			c.JSON(403, gin.H{"error": "Only the assigned rider can update delivery status"})
			return
		}
		if parcel.DeliveryStatus == models.DeliveryStatusNotCollected {
			c.JSON(409, gin.H{"error": "Parcel has no rider assigned yet"})
			return
		}

		now := time.Now()

		if parcel.DeliveryStatus == models.DeliveryStatusDelivered {
			// Roll back an accidental delivery confirmation.
			parcel.DeliveryStatus = models.DeliveryStatusInTransit
			parcel.DeliveredAt = nil

			event := models.TrackingEvent{
				ParcelID:   parcel.ID,
				TrackingID: parcel.TrackingID,
				Status:     models.TrackingStatusInTransit,
				Location:   parcel.SenderCenter,
				UpdatedBy:  caller,
				RiderID:    parcel.AssignedRiderID,
			}

			tx := db.Begin()
			if err := tx.Save(&parcel).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to update delivery status"})
				return
			}
			if err := tx.Create(&event).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to record tracking event"})
				return
			}
			if err := tx.Commit().Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update delivery status"})
				return
			}

			services.InvalidateStatusCounts(c.Request.Context())
			if hub != nil {
				hub.BroadcastTrackingUpdate(&event, parcel.CreatedBy, parcel.AssignedRiderEmail)
			}

			c.JSON(200, gin.H{"newStatus": parcel.DeliveryStatus})
			return
		}

		parcel.DeliveryStatus = models.DeliveryStatusDelivered
		parcel.DeliveredAt = &now
		if parcel.PickedAt == nil {
			parcel.PickedAt = &now
		}

		if err := db.Save(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update delivery status"})
			return
		}

		services.InvalidateStatusCounts(c.Request.Context())

		c.JSON(200, gin.H{"newStatus": parcel.DeliveryStatus})
	}
}
