package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/middleware"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"github.com/profast/profast-backend/pkg/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:h_"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Rider{},
		&models.Parcel{},
		&models.TrackingEvent{},
		&models.Payment{},
	))
	return db
}

func seedTestCenters(t *testing.T) {
	t.Helper()
	services.SetServiceCenters([]services.ServiceCenter{
		{Region: "Dhaka", District: "Dhaka", CoveredArea: []string{"Uttara", "Mirpur"}, Latitude: 23.8103, Longitude: 90.4125},
		{Region: "Dhaka", District: "Gazipur", CoveredArea: []string{"Tongi"}, Latitude: 23.9999, Longitude: 90.4203},
		{Region: "Chattogram", District: "Chattogram", CoveredArea: []string{"Agrabad"}, Latitude: 22.3569, Longitude: 91.7832},
	})
}

// seedUser creates a user with the given role and returns a signed token.
func seedUser(t *testing.T, db *gorm.DB, name, email, role string) (*models.User, string) {
	t.Helper()

	user := models.User{Name: name, Email: strings.ToLower(email), PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return &user, token
}

func seedParcel(t *testing.T, db *gorm.DB, parcel *models.Parcel) *models.Parcel {
	t.Helper()

	if parcel.TrackingID == "" {
		parcel.TrackingID = utils.GenerateTrackingID()
	}
	if parcel.DeliveryStatus == "" {
		parcel.DeliveryStatus = models.DeliveryStatusNotCollected
	}
	if parcel.PaymentStatus == "" {
		parcel.PaymentStatus = models.PaymentStatusUnpaid
	}
	if parcel.CashoutStatus == "" {
		parcel.CashoutStatus = models.CashoutStatusPending
	}
	require.NoError(t, db.Create(parcel).Error)
	return parcel
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// newTestRouter wires the delivery routes the way the server does, minus
// redis and the websocket hub.
func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	services.RedisClient = nil

	r := gin.New()

	r.POST("/auth/register", Register(db))
	r.POST("/auth/login", Login(db))
	r.GET("/service-centers", GetServiceCenters())

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		users := protected.Group("/users")
		{
			users.POST("", CreateUser(db))
			users.GET("/search", middleware.RequireRole(db, models.RoleAdmin), SearchUsers(db))
			users.GET("/:email/role", GetUserRole(db))
			users.PATCH("/:id/role", middleware.RequireRole(db, models.RoleAdmin), UpdateUserRole(db))
		}

		parcels := protected.Group("/parcels")
		{
			parcels.POST("", CreateParcel(db, nil))
			parcels.GET("", ListParcels(db))
			parcels.GET("/delivery/status-count", middleware.RequireRole(db, models.RoleAdmin), DeliveryStatusCount(db))
			parcels.GET("/user/:email", GetParcelsByUser(db))
			parcels.GET("/rider", middleware.RequireRole(db, models.RoleRider), GetRiderParcels(db))
			parcels.GET("/:id", GetParcel(db))
			parcels.DELETE("/:id", DeleteParcel(db))
			parcels.PATCH("/:id/assign-rider", middleware.RequireRole(db, models.RoleAdmin), AssignRider(db, nil))
			parcels.PATCH("/:id/toggle-delivery", middleware.RequireRole(db, models.RoleRider), ToggleDelivery(db, nil))
		}

		riders := protected.Group("/riders")
		{
			riders.POST("", ApplyAsRider(db))
			riders.GET("", middleware.RequireRole(db, models.RoleAdmin), ListRiders(db))
			riders.GET("/pending", middleware.RequireRole(db, models.RoleAdmin), GetPendingRiders(db))
			riders.GET("/approved", middleware.RequireRole(db, models.RoleAdmin), GetApprovedRiders(db))
			riders.PATCH("/:id", middleware.RequireRole(db, models.RoleAdmin), UpdateRiderStatus(db))
		}

		trackings := protected.Group("/trackings")
		{
			trackings.POST("", CreateTracking(db, nil))
			trackings.GET("/:trackingId", GetTrackingTimeline(db))
		}

		protected.POST("/payments", RecordPayment(db))
		protected.GET("/payments", GetPaymentHistory(db))

		api := protected.Group("/api")
		{
			api.GET("/rider/completed-parcels", middleware.RequireRole(db, models.RoleRider), GetCompletedParcels(db))
			api.PATCH("/parcels/:id/cashout", middleware.RequireRole(db, models.RoleRider), CashoutParcel(db))
		}
	}

	return r
}
