package entity

import (
	"time"
)

type FileDetails struct {
	FileId string `json:"fileId"`
	Name   string `json:"name"`
}

type Conversation struct {
	Id          string
	Title       string
	FocusMode   string
	Attachments []FileDetails
	CreatedAt   time.Time
}
