package model

import (
	"time"

	"gorm.io/datatypes"
)

type Turn struct {
	Seq            uint64         `gorm:"primaryKey;autoIncrement"`
	TurnId         string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	ConversationId string         `gorm:"type:varchar(64);not null;index"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Content        string         `gorm:"type:text;not null"`
	Sources        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (Turn) TableName() string {
	return "turns"
}
