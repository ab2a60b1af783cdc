package services

import (
	"context"
	"testing"

	"github.com/profast/profast-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func rolesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:roles_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestResolveRoleFromDatabase(t *testing.T) {
	RedisClient = nil
	db := rolesTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Name: "Admin", Email: "admin@profast.com", PasswordHash: "x", Role: "admin"}).Error)

	role, err := ResolveRole(ctx, db, "Admin@ProFast.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, role)
}

func TestResolveRoleUnknownEmailDefaultsToUser(t *testing.T) {
	RedisClient = nil
	db := rolesTestDB(t)

	role, err := ResolveRole(context.Background(), db, "nobody@profast.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, role)
}

func TestResolveRolePrefersCache(t *testing.T) {
	startMiniredis(t)
	db := rolesTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Name: "R", Email: "rider@profast.com", PasswordHash: "x", Role: "rider"}).Error)

	role, err := ResolveRole(ctx, db, "rider@profast.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleRider, role)

	// A demotion in the database stays invisible until the cache entry is
	// dropped; that is what the invalidation hooks are for.
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "rider@profast.com").Update("role", "user").Error)

	role, err = ResolveRole(ctx, db, "rider@profast.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleRider, role)

	require.NoError(t, InvalidateUserRole(ctx, "rider@profast.com"))

	role, err = ResolveRole(ctx, db, "rider@profast.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, role)
}
