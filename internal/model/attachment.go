package model

import (
	"io"
	"time"
)

// Attachment is one stored image belonging to an item. Seq is the 1-based
// position within the item's attachment list.
type Attachment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ItemRef   uint64    `gorm:"column:item_ref;not null;index:idx_item_attachments_item_ref"`
	Seq       int       `gorm:"not null"`
	MimeType  string    `gorm:"column:mime_type;size:100;not null"`
	Data      []byte    `gorm:"type:mediumblob;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Attachment) TableName() string {
	return "item_attachments"
}

// Upload is one raw image submission: the declared MIME type and the byte
// stream, decoupled from any particular transport upload type.
type Upload struct {
	ContentType string
	Content     io.Reader
}
