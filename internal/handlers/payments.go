package handlers

import (
	"math"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"gorm.io/gorm"
)

// CreatePaymentIntent creates a payment-processor intent for a parcel's cost
// and returns the client secret the dashboard needs to confirm the charge.
func CreatePaymentIntent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var input struct {
			ParcelID uint `json:"parcelId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}
		if parcel.CreatedBy != caller {
			c.JSON(403, gin.H{"error": "Cannot pay for another user's parcel"})
			return
		}
		if parcel.PaymentStatus == models.PaymentStatusPaid {
			c.JSON(409, gin.H{"error": "Parcel is already paid"})
			return
		}

		amount := int64(math.Round(parcel.Cost * 100))

		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(string(stripe.CurrencyUSD)),
		}
		params.AddMetadata("parcelId", parcel.TrackingID)

		intent, err := paymentintent.New(params)
		if err != nil {
			c.JSON(502, gin.H{"error": "Failed to create payment intent", "details": err.Error()})
			return
		}

		c.JSON(200, gin.H{
			"clientSecret": intent.ClientSecret,
			"amount":       amount,
		})
	}
}

// RecordPayment stores a confirmed payment and marks the parcel paid in the
// same transaction.
func RecordPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")

		var input struct {
			ParcelID        uint   `json:"parcelId" binding:"required"`
			PaymentIntentID string `json:"paymentIntentId" binding:"required"`
			Amount          int64  `json:"amount" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}
		if parcel.CreatedBy != caller {
			c.JSON(403, gin.H{"error": "Cannot record a payment for another user's parcel"})
			return
		}
		if parcel.PaymentStatus == models.PaymentStatusPaid {
			c.JSON(409, gin.H{"error": "Parcel is already paid"})
			return
		}

		payment := models.Payment{
			ParcelID:        parcel.ID,
			Email:           caller,
			Amount:          input.Amount,
			PaymentIntentID: input.PaymentIntentID,
			Status:          "success",
		}

		tx := db.Begin()
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		parcel.PaymentStatus = models.PaymentStatusPaid
		if err := tx.Save(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update parcel"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to record payment"})
			return
		}

		c.JSON(201, gin.H{"insertedId": payment.ID, "payment_status": parcel.PaymentStatus})
	}
}

// GetPaymentHistory lists a user's payments, newest first.
func GetPaymentHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("email")
		email := strings.ToLower(c.Query("email"))
		if email == "" {
			email = caller
		}

		if email != caller {
			role, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Cannot list another user's payments"})
				return
			}
		}

		var payments []models.Payment
		if err := db.Where("email = ?", email).Order("created_at desc").Find(&payments).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}

		c.JSON(200, payments)
	}
}
