package models

import "gorm.io/gorm"

// Tracking event statuses written by the server-side flows. Callers may also
// append free-form statuses; the log is append-only either way.
const (
	TrackingStatusSubmitted     = "submitted"
	TrackingStatusRiderAssigned = "Rider Assigned"
	TrackingStatusInTransit     = "in-transit"
	TrackingStatusDelivered     = "delivered"
)

// TrackingEvent is one entry in a parcel's status timeline. Events are only
// ever appended; nothing in the delivery flow deletes or rewrites them.
type TrackingEvent struct {
	gorm.Model
	ParcelID   uint     `gorm:"column:parcel_id;not null;index" json:"parcelId"`
	TrackingID string   `gorm:"column:tracking_id;not null;index" json:"tracking_id"`
	Status     string   `gorm:"column:status;not null" json:"status"`
	Location   string   `gorm:"column:location" json:"location"`
	Latitude   *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude  *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	UpdatedBy  string   `gorm:"column:updated_by;not null" json:"updatedBy"`
	RiderID    *uint    `gorm:"column:rider_id" json:"riderId,omitempty"`
}

// TableName specifies the table name
func (TrackingEvent) TableName() string {
	return "tracking_events"
}
