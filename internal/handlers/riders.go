package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"gorm.io/gorm"
)

type RiderApplicationInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Age       int    `json:"age" binding:"required,min=18,max=55"`
	Region    string `json:"region" binding:"required"`
	District  string `json:"district" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Nid       string `json:"nid" binding:"required"`
	BikeBrand string `json:"bikeBrand" binding:"required"`
	BikeModel string `json:"bikeModel" binding:"required"`
	Warehouse string `json:"warehouse"`
}

// ApplyAsRider files a rider application. Applications start pending and
// stay that way until an admin decides.
func ApplyAsRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var input RiderApplicationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(input.Email)
		if email != caller {
			c.JSON(403, gin.H{"error": "Cannot apply on behalf of another user"})
			return
		}

		if !services.HasDistrict(input.Region, input.District) {
			c.JSON(400, gin.H{"error": "Unknown region or district"})
			return
		}

		var existing models.Rider
		err := db.Where("email = ? AND status IN ?", email,
			[]string{string(models.RiderStatusPending), string(models.RiderStatusAccepted)}).
			First(&existing).Error
		if err == nil {
			c.JSON(409, gin.H{"error": "An application already exists for this email"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(500, gin.H{"error": "Failed to check existing applications"})
			return
		}

		rider := models.Rider{
			Name:      input.Name,
			Email:     email,
			Age:       input.Age,
			Region:    input.Region,
			District:  input.District,
			Phone:     input.Phone,
			Nid:       input.Nid,
			BikeBrand: input.BikeBrand,
			BikeModel: input.BikeModel,
			Warehouse: input.Warehouse,
			Status:    string(models.RiderStatusPending),
		}

		if err := db.Create(&rider).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to submit application"})
			return
		}

		c.JSON(201, gin.H{"insertedId": rider.ID, "message": "Application submitted"})
	}
}

// ListRiders returns every rider application.
func ListRiders(db *gorm.DB) gin.HandlerFunc {
	return listRidersByStatus(db, "")
}

// GetPendingRiders returns applications awaiting a decision.
func GetPendingRiders(db *gorm.DB) gin.HandlerFunc {
	return listRidersByStatus(db, string(models.RiderStatusPending))
}

// GetApprovedRiders returns accepted riders.
func GetApprovedRiders(db *gorm.DB) gin.HandlerFunc {
	return listRidersByStatus(db, string(models.RiderStatusAccepted))
}

func listRidersByStatus(db *gorm.DB, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Rider{}).Order("created_at desc")
		if status != "" {
			query = query.Where("status = ?", status)
		}

		var riders []models.Rider
		if err := query.Find(&riders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch riders"})
			return
		}

		c.JSON(200, riders)
	}
}

// UpdateRiderStatus decides a rider application. Acceptance promotes the
// applicant's user account to the rider role; rejection demotes a previously
// promoted account back to user. Either way the cached role is dropped so
// guards pick up the change on the next request.
func UpdateRiderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Status string `json:"status" binding:"required,oneof=accepted rejected"`
			Email  string `json:"email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var rider models.Rider
		if err := db.First(&rider, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Rider not found"})
			return
		}

		newRole := models.RoleUser
		if input.Status == string(models.RiderStatusAccepted) {
			newRole = models.RoleRider
		}

		tx := db.Begin()

		rider.Status = input.Status
		if err := tx.Save(&rider).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update rider"})
			return
		}

		if err := tx.Model(&models.User{}).
			Where("lower(email) = ?", strings.ToLower(rider.Email)).
			Update("role", string(newRole)).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update user role"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update rider"})
			return
		}

		services.InvalidateUserRole(c.Request.Context(), rider.Email)

		c.JSON(200, gin.H{"message": "Rider " + input.Status, "rider": rider})
	}
}
