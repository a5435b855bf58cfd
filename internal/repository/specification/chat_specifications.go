package specification

import (
	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID string
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByTurnID struct {
	TurnID string
}

func (s ByTurnID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("turn_id = ?", s.TurnID)
}

// AfterSeq selects turns that come strictly after seq.
type AfterSeq struct {
	Seq uint64
}

func (s AfterSeq) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("seq > ?", s.Seq)
}

// ByFileIDs selects file chunks of the given files. The column is qualified
// because chunk queries join uploaded_files.
type ByFileIDs struct {
	FileIDs []string
}

func (s ByFileIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_chunks.file_id IN ?", s.FileIDs)
}
