package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type UploadedFile struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

type FileChunk struct {
	Id         string          `gorm:"type:varchar(64);primaryKey"`
	FileId     string          `gorm:"type:varchar(64);not null;index"`
	ChunkIndex int             `gorm:"default:0"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (FileChunk) TableName() string {
	return "file_chunks"
}
