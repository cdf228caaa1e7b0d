package models

import (
	"time"

	"gorm.io/gorm"
)

// User is created on first sight of a verified identity claim; the password
// column only holds an opaque placeholder because authentication is delegated
// to the external token issuer.
type User struct {
	gorm.Model
	FullName    string    `gorm:"not null" json:"fullName"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	Contact     string    `json:"contact,omitempty"`
	IsVerified  bool      `gorm:"default:false" json:"isVerified"`
	IsSuperuser bool      `gorm:"default:false" json:"-"`
	LastSeen    time.Time `json:"lastSeen"`
}
