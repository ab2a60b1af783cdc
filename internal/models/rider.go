package models

import "gorm.io/gorm"

type RiderStatus string

const (
	RiderStatusPending  RiderStatus = "pending"
	RiderStatusAccepted RiderStatus = "accepted"
	RiderStatusRejected RiderStatus = "rejected"
)

// Rider is a rider application. Approval promotes the applicant's user
// account to the rider role; the application record itself keeps the
// contact, vehicle and coverage details used for assignment matching.
type Rider struct {
	gorm.Model
	Name      string `gorm:"column:name;not null" json:"name"`
	Email     string `gorm:"column:email;not null;index" json:"email"`
	Age       int    `gorm:"column:age;not null" json:"age"`
	Region    string `gorm:"column:region;not null" json:"region"`
	District  string `gorm:"column:district;not null" json:"district"`
	Phone     string `gorm:"column:phone;not null" json:"phone"`
	Nid       string `gorm:"column:nid;not null" json:"nid"`
	BikeBrand string `gorm:"column:bike_brand" json:"bikeBrand"`
	BikeModel string `gorm:"column:bike_model" json:"bikeModel"`
	Warehouse string `gorm:"column:warehouse" json:"warehouse"`
	Status    string `gorm:"column:status;not null;default:'pending'" json:"status"`
}

// TableName specifies the table name
func (Rider) TableName() string {
	return "riders"
}
