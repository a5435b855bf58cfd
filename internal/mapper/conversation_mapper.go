package mapper

import (
	"encoding/json"

	"ai-search-be/internal/entity"
	"ai-search-be/internal/model"
	"ai-search-be/pkg/search"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	attachments := []entity.FileDetails{}
	if len(c.Attachments) > 0 {
		_ = json.Unmarshal(c.Attachments, &attachments)
	}

	return &entity.Conversation{
		Id:          c.Id,
		Title:       c.Title,
		FocusMode:   c.FocusMode,
		Attachments: attachments,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	attachments := c.Attachments
	if attachments == nil {
		attachments = []entity.FileDetails{}
	}
	raw, _ := json.Marshal(attachments)

	return &model.Conversation{
		Id:          c.Id,
		Title:       c.Title,
		FocusMode:   c.FocusMode,
		Attachments: datatypes.JSON(raw),
		CreatedAt:   c.CreatedAt,
	}
}

// Turn Mappers

func (m *ConversationMapper) TurnToEntity(t *model.Turn) *entity.Turn {
	if t == nil {
		return nil
	}

	sources := []search.Result{}
	if len(t.Sources) > 0 {
		_ = json.Unmarshal(t.Sources, &sources)
	}

	return &entity.Turn{
		Seq:            t.Seq,
		TurnId:         t.TurnId,
		ConversationId: t.ConversationId,
		Role:           t.Role,
		Content:        t.Content,
		Sources:        sources,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *ConversationMapper) TurnToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	sources := t.Sources
	if sources == nil {
		sources = []search.Result{}
	}
	raw, _ := json.Marshal(sources)

	return &model.Turn{
		Seq:            t.Seq,
		TurnId:         t.TurnId,
		ConversationId: t.ConversationId,
		Role:           t.Role,
		Content:        t.Content,
		Sources:        datatypes.JSON(raw),
		CreatedAt:      t.CreatedAt,
	}
}

func (m *ConversationMapper) TurnsToEntities(models []*model.Turn) []*entity.Turn {
	entities := make([]*entity.Turn, len(models))
	for i, t := range models {
		entities[i] = m.TurnToEntity(t)
	}
	return entities
}

// File Mappers

func (m *ConversationMapper) FileToEntity(f *model.UploadedFile) *entity.UploadedFile {
	if f == nil {
		return nil
	}
	return &entity.UploadedFile{Id: f.Id, Name: f.Name, CreatedAt: f.CreatedAt}
}

func (m *ConversationMapper) FileToModel(f *entity.UploadedFile) *model.UploadedFile {
	if f == nil {
		return nil
	}
	return &model.UploadedFile{Id: f.Id, Name: f.Name, CreatedAt: f.CreatedAt}
}

func (m *ConversationMapper) ChunkToModel(c *entity.FileChunk) *model.FileChunk {
	if c == nil {
		return nil
	}
	return &model.FileChunk{
		Id:         c.Id,
		FileId:     c.FileId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
	}
}

func (m *ConversationMapper) ChunkToEntity(c *model.FileChunk) *entity.FileChunk {
	if c == nil {
		return nil
	}
	return &entity.FileChunk{
		Id:         c.Id,
		FileId:     c.FileId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
	}
}
