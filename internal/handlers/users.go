package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"gorm.io/gorm"
)

// CreateUser upserts a user record by email. The dashboard posts this after
// every sign-in; an existing record is left untouched apart from the name.
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name  string `json:"name"`
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(input.Email)

		var user models.User
		err := db.Where("lower(email) = ?", email).First(&user).Error
		if err == nil {
			if input.Name != "" && input.Name != user.Name {
				user.Name = input.Name
				db.Save(&user)
			}
			c.JSON(200, gin.H{"message": "User already exists", "user": user})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(500, gin.H{"error": "Failed to look up user"})
			return
		}

		user = models.User{
			Name:  input.Name,
			Email: email,
			Role:  string(models.RoleUser),
		}
		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user"})
			return
		}

		c.JSON(201, gin.H{"insertedId": user.ID, "user": user})
	}
}

// GetUserRole resolves the role for an email or a numeric user ID. Unknown
// emails report the plain user role so the dashboard can always render
// something; admin views must still pass the role guard on their own routes.
func GetUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("email")
		caller := c.GetString("email")

		email := strings.ToLower(param)
		if !strings.Contains(param, "@") {
			if id, err := strconv.ParseUint(param, 10, 64); err == nil {
				var user models.User
				if err := db.First(&user, id).Error; err != nil {
					c.JSON(404, gin.H{"error": "User not found"})
					return
				}
				email = strings.ToLower(user.Email)
			}
		}

		if email != caller {
			// Only admins may read someone else's role.
			resolved, err := services.ResolveRole(c.Request.Context(), db, caller)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to resolve role"})
				return
			}
			if resolved != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Forbidden"})
				return
			}
		}

		role, err := services.ResolveRole(c.Request.Context(), db, email)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to resolve role"})
			return
		}

		c.JSON(200, gin.H{"email": email, "role": string(role)})
	}
}

// SearchUsers returns users whose email contains the query fragment.
func SearchUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.ToLower(strings.TrimSpace(c.Query("email")))
		if query == "" {
			c.JSON(400, gin.H{"error": "email query parameter required"})
			return
		}

		var users []models.User
		if err := db.Where("lower(email) LIKE ?", "%"+query+"%").
			Order("created_at desc").
			Limit(10).
			Find(&users).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to search users"})
			return
		}

		results := make([]gin.H, 0, len(users))
		for _, u := range users {
			results = append(results, gin.H{
				"id":         u.ID,
				"email":      u.Email,
				"name":       u.Name,
				"role":       u.Role,
				"created_at": u.CreatedAt,
			})
		}

		c.JSON(200, results)
	}
}

// UpdateUserRole promotes or demotes a user. Roles outside the known set
// are rejected rather than stored.
func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Role string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		role := models.Role(input.Role)
		if !role.Valid() {
			c.JSON(400, gin.H{"error": "Unknown role: " + input.Role})
			return
		}

		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		user.Role = string(role)
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update role"})
			return
		}

		// The guard middleware resolves roles through this cache.
		if err := services.InvalidateUserRole(c.Request.Context(), user.Email); err != nil {
			c.JSON(500, gin.H{"error": "Failed to invalidate role cache"})
			return
		}

		c.JSON(200, gin.H{"message": "Role updated", "email": user.Email, "role": user.Role})
	}
}

// UploadProfilePhoto stores the caller's profile photo via the storage
// service and saves the resulting URL on the user.
func UploadProfilePhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Photo file is required"})
			return
		}

		imageURL, err := services.UploadImage(file, "profiles")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload photo", "details": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("lower(email) = ?", email).First(&user).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		user.PhotoURL = imageURL
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save photo"})
			return
		}

		c.JSON(200, gin.H{"photo_url": services.GetImageURL(imageURL)})
	}
}
