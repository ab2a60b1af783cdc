package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ParcelTypeDocument    = "document"
	ParcelTypeNonDocument = "non-document"
)

// Delivery lifecycle: not_collected -> rider_assigned -> in-transit -> delivered.
// The rider-facing toggle flips between in-transit and delivered only.
const (
	DeliveryStatusNotCollected  = "not_collected"
	DeliveryStatusRiderAssigned = "rider_assigned"
	DeliveryStatusInTransit     = "in-transit"
	DeliveryStatusDelivered     = "delivered"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

const (
	CashoutStatusPending   = "pending"
	CashoutStatusCashedOut = "cashed_out"
)

type Parcel struct {
	gorm.Model
	Title               string     `gorm:"column:title;not null" json:"title"`
	Type                string     `gorm:"column:type;not null" json:"type"`
	Weight              float64    `gorm:"column:weight" json:"weight"`
	SenderName          string     `gorm:"column:sender_name;not null" json:"sender_name"`
	SenderContact       string     `gorm:"column:sender_contact;not null" json:"sender_contact"`
	SenderRegion        string     `gorm:"column:sender_region;not null" json:"sender_region"`
	SenderCenter        string     `gorm:"column:sender_center;not null" json:"sender_center"`
	SenderAddress       string     `gorm:"column:sender_address" json:"sender_address"`
	PickupInstruction   string     `gorm:"column:pickup_instruction" json:"pickup_instruction"`
	ReceiverName        string     `gorm:"column:receiver_name;not null" json:"receiver_name"`
	ReceiverContact     string     `gorm:"column:receiver_contact;not null" json:"receiver_contact"`
	ReceiverRegion      string     `gorm:"column:receiver_region;not null" json:"receiver_region"`
	ReceiverCenter      string     `gorm:"column:receiver_center;not null" json:"receiver_center"`
	ReceiverAddress     string     `gorm:"column:receiver_address" json:"receiver_address"`
	DeliveryInstruction string     `gorm:"column:delivery_instruction" json:"delivery_instruction"`
	Cost                float64    `gorm:"column:cost;not null" json:"cost"`
	CreatedBy           string     `gorm:"column:created_by;not null;index" json:"created_by"`
	PaymentStatus       string     `gorm:"column:payment_status;not null;default:'unpaid'" json:"payment_status"`
	DeliveryStatus      string     `gorm:"column:delivery_status;not null;default:'not_collected';index" json:"delivery_status"`
	TrackingID          string     `gorm:"column:tracking_id;unique;not null" json:"tracking_id"`
	AssignedRiderID     *uint      `gorm:"column:assigned_rider_id" json:"assigned_rider_id"`
	AssignedRiderEmail  string     `gorm:"column:assigned_rider_email;index" json:"assigned_rider_email"`
	AssignedRiderName   string     `gorm:"column:assigned_rider_name" json:"assigned_rider_name"`
	PickedAt            *time.Time `gorm:"column:picked_at" json:"picked_at"`
	DeliveredAt         *time.Time `gorm:"column:delivered_at" json:"delivered_at"`
	CashoutStatus       string     `gorm:"column:cashout_status;not null;default:'pending'" json:"cashout_status"`
	CashoutAt           *time.Time `gorm:"column:cashout_at" json:"cashout_at"`
}

// TableName specifies the table name
func (Parcel) TableName() string {
	return "parcels"
}

// SameDistrict reports whether sender and receiver use the same service center.
func (p *Parcel) SameDistrict() bool {
	return p.SenderCenter == p.ReceiverCenter
}
