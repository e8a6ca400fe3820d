package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Item is a catalog record. ID is the surrogate storage key assigned by the
// database; ItemID is the server-assigned business identifier clients see.
type Item struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement"`
	ItemID      int          `gorm:"column:item_id;not null;uniqueIndex:uk_items_item_id"`
	Category    string       `gorm:"size:8;not null"`
	UserID      string       `gorm:"column:user_id;size:120;not null"`
	ItemDesc    string       `gorm:"column:item_desc;type:text;not null"`
	Attachments []Attachment `gorm:"foreignKey:ItemRef;constraint:OnDelete:CASCADE"`
	Uploads     []Upload     `gorm:"-" json:"-"`
	CreatedAt   time.Time    `gorm:"autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

// ValidationError reports which submitted field is malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewItem builds an unpersisted Item from raw submission fields, rejecting
// malformed input. The category is kept as submitted here; normalization to
// the stored two-character code happens on the service path.
func NewItem(itemID int, category, userID, itemDesc string, uploads []Upload) (*Item, error) {
	if itemID <= 0 {
		return nil, &ValidationError{Field: "itemId", Reason: "must be greater than zero"}
	}
	if category == "" {
		return nil, &ValidationError{Field: "category", Reason: "is required"}
	}
	if first := []rune(category)[0]; !unicode.IsLetter(first) {
		return nil, &ValidationError{Field: "category", Reason: "must start with a letter"}
	}
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "is required"}
	}
	if itemDesc == "" {
		return nil, &ValidationError{Field: "itemDesc", Reason: "is required"}
	}

	return &Item{
		ItemID:   itemID,
		Category: category,
		UserID:   userID,
		ItemDesc: itemDesc,
		Uploads:  uploads,
	}, nil
}

// NormalizeCategory reduces a submitted category name to its stored form:
// the first two characters, upper-cased. Applied identically on create and
// update.
func NormalizeCategory(category string) string {
	runes := []rune(category)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}
