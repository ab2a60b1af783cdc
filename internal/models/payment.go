package models

import "gorm.io/gorm"

// Payment records a settled charge for a parcel. Amount is kept in the
// smallest currency unit, matching what the payment processor reports.
type Payment struct {
	gorm.Model
	ParcelID        uint   `gorm:"column:parcel_id;not null;index" json:"parcelId"`
	Email           string `gorm:"column:email;not null;index" json:"email"`
	Amount          int64  `gorm:"column:amount;not null" json:"amount"`
	PaymentIntentID string `gorm:"column:payment_intent_id;not null" json:"paymentIntentId"`
	Status          string `gorm:"column:status;not null;default:'success'" json:"status"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}
