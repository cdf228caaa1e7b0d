package models

import "gorm.io/gorm"

type ItemType string

const (
	TypeLost  ItemType = "lost"
	TypeFound ItemType = "found"
)

type ItemStatus string

const (
	StatusOpen      ItemStatus = "open"
	StatusMatched   ItemStatus = "matched"
	StatusDelivered ItemStatus = "delivered"
	StatusActive    ItemStatus = "active"
	// StatusReported is terminal: set when distinct reports reach the
	// moderation threshold. A reported item is excluded from all public
	// reads and rejects further edits and reports.
	StatusReported ItemStatus = "reported"
)

type Category struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:20" json:"color"`
}

// Item is a lost/found listing. It owns its comments and item reports.
type Item struct {
	gorm.Model
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Type        ItemType   `gorm:"size:20;not null" json:"type"`
	Status      ItemStatus `gorm:"size:20;not null;default:'active'" json:"status"`

	// Mirror of the distinct-reporter count, refreshed on every report so
	// the count is readable without touching the report table.
	ReportedCounts int `gorm:"not null;default:0" json:"reportedCounts"`

	Latitude  float64 `gorm:"type:decimal(9,6)" json:"latitude"`
	Longitude float64 `gorm:"type:decimal(9,6)" json:"longitude"`
	Image     []byte  `gorm:"type:bytea" json:"-"`

	CategoryID uint     `gorm:"not null;index" json:"categoryId"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	ReporterID uint     `gorm:"not null;index" json:"reporterId"`
	Reporter   User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"reporter"`
}
