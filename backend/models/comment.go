package models

import "gorm.io/gorm"

// Comment belongs to exactly one item. A nil ParentID marks a top-level
// comment; a reply's parent must belong to the same item.
type Comment struct {
	gorm.Model
	ItemID   uint   `gorm:"not null;index" json:"itemId"`
	Item     Item   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
	ParentID *uint  `gorm:"index" json:"parentCommentId"`
	Text     string `gorm:"type:text;not null" json:"text"`
}
