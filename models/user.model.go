package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName        string     `json:"full_name" gorm:"not null"`
	Email           string     `json:"email" gorm:"unique;not null"`
	Mobile          string     `json:"mobile" gorm:"default:''"`
	Password        string     `json:"-" gorm:"not null"`
	Role            string     `json:"role" gorm:"default:'STUDENT'"` // STUDENT, TUTOR, HOD, PRINCIPAL, OFFICE, ADMIN
	RegisterNumber  string     `json:"register_number" gorm:"default:''"`
	Department      string     `json:"department" gorm:"default:''"`
	Section         string     `json:"section" gorm:"default:''"`
	Year            string     `json:"year" gorm:"default:''"`
	IsEmailVerified bool       `json:"is_email_verified" gorm:"default:false"`
	LastLogin       *time.Time `json:"last_login"`
	IsDeleted       bool       `json:"is_deleted" gorm:"default:false"`
}
