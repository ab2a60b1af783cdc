package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"gorm.io/gorm"
)

type CreateTrackingInput struct {
	ParcelID   uint     `json:"parcelId" binding:"required"`
	TrackingID string   `json:"tracking_id" binding:"required"`
	Status     string   `json:"status" binding:"required"`
	Location   string   `json:"location"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	UpdatedBy  string   `json:"updatedBy"`
	RiderID    *uint    `json:"riderId"`
}

// CreateTracking appends an event to a parcel's timeline. Events with
// coordinates but no location name get labelled with the nearest service
// center's district.
func CreateTracking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateTrackingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}
		if parcel.TrackingID != input.TrackingID {
			c.JSON(400, gin.H{"error": "Tracking ID does not match parcel"})
			return
		}

		updatedBy := input.UpdatedBy
		if updatedBy == "" {
			updatedBy = c.GetString("email")
		}

		event := models.TrackingEvent{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     input.Status,
			Location:   input.Location,
			Latitude:   input.Latitude,
			Longitude:  input.Longitude,
			UpdatedBy:  updatedBy,
			RiderID:    input.RiderID,
		}

		if event.Location == "" && event.Latitude != nil && event.Longitude != nil {
			if nearest, ok := services.NearestCenter(*event.Latitude, *event.Longitude); ok {
				event.Location = nearest.District
			}
		}

		if err := db.Create(&event).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record tracking event"})
			return
		}

		services.PublishTrackingUpdate(c.Request.Context(), event.TrackingID, event.Status, gin.H{
			"parcelId":  event.ParcelID,
			"location":  event.Location,
			"updatedBy": event.UpdatedBy,
		})
		if hub != nil {
			hub.BroadcastTrackingUpdate(&event, parcel.CreatedBy, parcel.AssignedRiderEmail)
		}

		c.JSON(201, gin.H{"insertedId": event.ID})
	}
}

// GetTrackingTimeline returns a parcel's timeline by tracking code, oldest
// event first.
func GetTrackingTimeline(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingID := c.Param("trackingId")

		var events []models.TrackingEvent
		if err := db.Where("tracking_id = ?", trackingID).
			Order("created_at asc, id asc").
			Find(&events).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch tracking history"})
			return
		}

		if len(events) == 0 {
			c.JSON(404, gin.H{"error": "No tracking updates for this ID"})
			return
		}

		timeline := make([]gin.H, 0, len(events))
		for _, e := range events {
			entry := gin.H{
				"status":    e.Status,
				"timestamp": e.CreatedAt,
				"updatedBy": e.UpdatedBy,
			}
			if e.Location != "" {
				entry["location"] = e.Location
			}
			timeline = append(timeline, entry)
		}

		c.JSON(200, gin.H{
			"parcelId":    events[0].ParcelID,
			"tracking_id": trackingID,
			"timeline":    timeline,
		})
	}
}
