package model

import (
	"time"

	"gorm.io/datatypes"
)

type Conversation struct {
	Id          string         `gorm:"type:varchar(64);primaryKey"`
	Title       string         `gorm:"type:text;not null"`
	FocusMode   string         `gorm:"type:varchar(50);not null"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
