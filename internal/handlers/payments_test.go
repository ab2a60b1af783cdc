package handlers

import (
	"net/http"
	"testing"

	"github.com/profast/profast-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment(t *testing.T) {
	db := setupTestDB(t)
	seedTestCenters(t)
	r := newTestRouter(t, db)
	_, ownerToken := seedUser(t, db, "O", "owner@profast.com", "user")
	_, otherToken := seedUser(t, db, "X", "other@profast.com", "user")

	parcel := seedParcel(t, db, &models.Parcel{Title: "P", Type: "document", SenderCenter: "Dhaka", ReceiverCenter: "Gazipur", Cost: 80, CreatedBy: "owner@profast.com"})

	payload := map[string]any{
		"parcelId":        parcel.ID,
		"paymentIntentId": "pi_test_123",
		"amount":          8000,
	}

	// Only the parcel's creator can record its payment.
	require.Equal(t, 403, doJSON(r, http.MethodPost, "/payments", otherToken, payload).Code)

	w := doJSON(r, http.MethodPost, "/payments", ownerToken, payload)
	require.Equal(t, 201, w.Code)

	var paid models.Parcel
	require.NoError(t, db.First(&paid, parcel.ID).Error)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)

	var payment models.Payment
	require.NoError(t, db.Where("parcel_id = ?", parcel.ID).First(&payment).Error)
	require.Equal(t, "pi_test_123", payment.PaymentIntentID)
	require.EqualValues(t, 8000, payment.Amount)

	// Paying twice is rejected and records nothing new.
	require.Equal(t, 409, doJSON(r, http.MethodPost, "/payments", ownerToken, payload).Code)

	var count int64
	db.Model(&models.Payment{}).Where("parcel_id = ?", parcel.ID).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestGetPaymentHistory(t *testing.T) {
	db := setupTestDB(t)
	seedTestCenters(t)
	r := newTestRouter(t, db)
	_, ownerToken := seedUser(t, db, "O", "owner@profast.com", "user")
	_, otherToken := seedUser(t, db, "X", "other@profast.com", "user")
	_, adminToken := seedUser(t, db, "A", "admin@profast.com", "admin")

	require.NoError(t, db.Create(&models.Payment{ParcelID: 1, Email: "owner@profast.com", Amount: 6000, PaymentIntentID: "pi_1", Status: "success"}).Error)
	require.NoError(t, db.Create(&models.Payment{ParcelID: 2, Email: "other@profast.com", Amount: 8000, PaymentIntentID: "pi_2", Status: "success"}).Error)

	w := doJSON(r, http.MethodGet, "/payments", ownerToken, nil)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "pi_1")
	require.NotContains(t, w.Body.String(), "pi_2")

	// Reading someone else's history requires admin.
	require.Equal(t, 403, doJSON(r, http.MethodGet, "/payments?email=owner@profast.com", otherToken, nil).Code)

	w = doJSON(r, http.MethodGet, "/payments?email=owner@profast.com", adminToken, nil)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "pi_1")
}
