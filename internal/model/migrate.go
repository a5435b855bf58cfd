package model

import (
	"gorm.io/gorm"
)

// All lists every table the service owns, in creation order.
func All() []interface{} {
	return []interface{}{
		&Conversation{},
		&Turn{},
		&UploadedFile{},
		&FileChunk{},
	}
}

// Migrate creates or updates the schema. On postgres the vector extension is
// created first so file_chunks.embedding can use it.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
			return err
		}
	}
	return db.AutoMigrate(All()...)
}
