package services

import (
	"context"
	"errors"
	"strings"

	"github.com/profast/profast-backend/internal/models"
	"gorm.io/gorm"
)

// ResolveRole returns the authorization role for an email, using the Redis
// cache when available. Unknown emails resolve to the plain user role; the
// guard middleware still requires a valid token, so this default only widens
// access to user-tier routes.
func ResolveRole(ctx context.Context, db *gorm.DB, email string) (models.Role, error) {
	email = strings.ToLower(email)

	if cached, ok, err := GetCachedUserRole(ctx, email); err == nil && ok {
		role := models.Role(cached)
		if role.Valid() {
			return role, nil
		}
	}

	var user models.User
	if err := db.Where("lower(email) = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoleUser, nil
		}
		return "", err
	}

	role := models.Role(user.Role)
	if !role.Valid() {
		role = models.RoleUser
	}

	// Best effort; a cache miss next time just re-reads the row.
	_ = CacheUserRole(ctx, email, string(role))

	return role, nil
}
