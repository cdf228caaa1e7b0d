package models

import "gorm.io/gorm"

// CommentReport joins a comment with the user who reported it. The composite
// unique index is the authority on "one report per reporter": concurrent
// duplicate submissions race past the application pre-check and one of them
// must lose here.
type CommentReport struct {
	gorm.Model
	CommentID  uint    `gorm:"not null;uniqueIndex:uk_comment_report_comment_reporter" json:"commentId"`
	Comment    Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReporterID uint    `gorm:"not null;uniqueIndex:uk_comment_report_comment_reporter" json:"reporterId"`
	Reporter   User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Cause      string  `gorm:"type:text;not null" json:"cause"`
}

// ItemReport is the listing-level counterpart of CommentReport, with the same
// uniqueness rule.
type ItemReport struct {
	gorm.Model
	ItemID     uint   `gorm:"not null;uniqueIndex:uk_item_report_item_reporter" json:"itemId"`
	Item       Item   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReporterID uint   `gorm:"not null;uniqueIndex:uk_item_report_item_reporter" json:"reporterId"`
	Reporter   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Cause      string `gorm:"type:text;not null" json:"cause"`
}
