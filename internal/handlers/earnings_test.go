package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/profast/profast-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestGetCompletedParcels(t *testing.T) {
	db := setupTestDB(t)
	seedTestCenters(t)
	r := newTestRouter(t, db)
	_, riderToken := seedUser(t, db, "R", "rider@profast.com", "rider")

	now := time.Now()
	earlier := now.Add(-time.Hour)

	// Same-center delivery: 80% of 110.
	seedParcel(t, db, &models.Parcel{
		Title: "Local", Type: "non-document", SenderCenter: "Dhaka", ReceiverCenter: "Dhaka", Cost: 110,
		CreatedBy: "u@profast.com", AssignedRiderEmail: "rider@profast.com",
		DeliveryStatus: models.DeliveryStatusDelivered, PickedAt: &earlier, DeliveredAt: &now,
	})
	// Cross-center delivery: 30% of 230.
	seedParcel(t, db, &models.Parcel{
		Title: "Far", Type: "non-document", SenderCenter: "Dhaka", ReceiverCenter: "Gazipur", Cost: 230,
		CreatedBy: "u@profast.com", AssignedRiderEmail: "rider@profast.com",
		DeliveryStatus: models.DeliveryStatusDelivered, PickedAt: &earlier, DeliveredAt: &earlier,
	})
	// Still out for delivery; must not appear.
	seedParcel(t, db, &models.Parcel{
		Title: "Pending", Type: "document", SenderCenter: "Dhaka", ReceiverCenter: "Dhaka", Cost: 60,
		CreatedBy: "u@profast.com", AssignedRiderEmail: "rider@profast.com",
		DeliveryStatus: models.DeliveryStatusInTransit,
	})

	w := doJSON(r, http.MethodGet, "/api/rider/completed-parcels?email=rider@profast.com", riderToken, nil)
	require.Equal(t, 200, w.Code)

	var results []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 2)

	earnings := make(map[string]float64)
	for _, p := range results {
		earnings[p["title"].(string)] = p["earning"].(float64)
	}
	require.InDelta(t, 88.0, earnings["Local"], 1e-9)
	require.InDelta(t, 69.0, earnings["Far"], 1e-9)

	// Another rider's queue stays private.
	require.Equal(t, 403, doJSON(r, http.MethodGet, "/api/rider/completed-parcels?email=other@profast.com", riderToken, nil).Code)
}

func TestCashoutParcel(t *testing.T) {
	db := setupTestDB(t)
	seedTestCenters(t)
	r := newTestRouter(t, db)
	_, riderToken := seedUser(t, db, "R", "rider@profast.com", "rider")
	_, intruderToken := seedUser(t, db, "I", "intruder@profast.com", "rider")

	now := time.Now()
	parcel := seedParcel(t, db, &models.Parcel{
		Title: "Done", Type: "document", SenderCenter: "Dhaka", ReceiverCenter: "Dhaka", Cost: 60,
		CreatedBy: "u@profast.com", AssignedRiderEmail: "rider@profast.com",
		DeliveryStatus: models.DeliveryStatusDelivered, DeliveredAt: &now,
	})

	// Only the assigned rider can settle.
	require.Equal(t, 403, doJSON(r, http.MethodPatch, fmt.Sprintf("/api/parcels/%d/cashout", parcel.ID), intruderToken, nil).Code)

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/api/parcels/%d/cashout", parcel.ID), riderToken, nil)
	require.Equal(t, 200, w.Code)

	var settled models.Parcel
	require.NoError(t, db.First(&settled, parcel.ID).Error)
	require.Equal(t, models.CashoutStatusCashedOut, settled.CashoutStatus)
	require.NotNil(t, settled.CashoutAt)

	// Cashing out is one-way; a second attempt changes nothing.
	firstCashoutAt := *settled.CashoutAt
	require.Equal(t, 409, doJSON(r, http.MethodPatch, fmt.Sprintf("/api/parcels/%d/cashout", parcel.ID), riderToken, nil).Code)

	require.NoError(t, db.First(&settled, parcel.ID).Error)
	require.Equal(t, models.CashoutStatusCashedOut, settled.CashoutStatus)
	require.WithinDuration(t, firstCashoutAt, *settled.CashoutAt, time.Second)
}

func TestCashoutRequiresDelivery(t *testing.T) {
	db := setupTestDB(t)
	seedTestCenters(t)
	r := newTestRouter(t, db)
	_, riderToken := seedUser(t, db, "R", "rider@profast.com", "rider")

	parcel := seedParcel(t, db, &models.Parcel{
		Title: "Moving", Type: "document", SenderCenter: "Dhaka", ReceiverCenter: "Dhaka", Cost: 60,
		CreatedBy: "u@profast.com", AssignedRiderEmail: "rider@profast.com",
		DeliveryStatus: models.DeliveryStatusInTransit,
	})

	require.Equal(t, 409, doJSON(r, http.MethodPatch, fmt.Sprintf("/api/parcels/%d/cashout", parcel.ID), riderToken, nil).Code)

	var unchanged models.Parcel
	require.NoError(t, db.First(&unchanged, parcel.ID).Error)
	require.Equal(t, models.CashoutStatusPending, unchanged.CashoutStatus)
	require.Nil(t, unchanged.CashoutAt)
}
