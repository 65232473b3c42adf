package models

import "gorm.io/gorm"

// BonafideReason is the catalog of purposes a certificate can be requested
// for (internship, visa application, education loan and so on).
type BonafideReason struct {
	gorm.Model
	Reason   string `json:"reason" gorm:"size:100;uniqueIndex;not null"`
	Category string `json:"category" gorm:"size:50;default:''"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}
