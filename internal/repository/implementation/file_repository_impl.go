package implementation

import (
	"context"
	"sort"

	"ai-search-be/internal/entity"
	"ai-search-be/internal/mapper"
	"ai-search-be/internal/model"
	"ai-search-be/internal/repository/contract"
	"ai-search-be/internal/repository/specification"
	"ai-search-be/pkg/database"
	"ai-search-be/pkg/embedding"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *FileRepositoryImpl) CreateFile(ctx context.Context, file *entity.UploadedFile) error {
	m := r.mapper.FileToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.FileToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) CreateChunks(ctx context.Context, chunks []*entity.FileChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.FileChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

// FindDetails resolves names for the given IDs. Unknown IDs are skipped.
func (r *FileRepositoryImpl) FindDetails(ctx context.Context, ids []string) ([]entity.FileDetails, error) {
	if len(ids) == 0 {
		return []entity.FileDetails{}, nil
	}

	var models []*model.UploadedFile
	if err := (specification.ByIDs{IDs: ids}).Apply(r.db.WithContext(ctx)).Find(&models).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(models))
	for _, m := range models {
		byID[m.Id] = m.Name
	}

	// keep the caller's order
	details := make([]entity.FileDetails, 0, len(models))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			details = append(details, entity.FileDetails{FileId: id, Name: name})
		}
	}
	return details, nil
}

type scoredChunkRow struct {
	model.FileChunk
	FileName   string
	Similarity float64
}

// SimilarChunks returns the chunks of the given files closest to embedding.
// Postgres ranks with pgvector; other drivers rank in process.
func (r *FileRepositoryImpl) SimilarChunks(ctx context.Context, fileIds []string, embedding []float32, limit int) ([]*entity.ScoredFileChunk, error) {
	if len(fileIds) == 0 || len(embedding) == 0 {
		return []*entity.ScoredFileChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var (
		rows []scoredChunkRow
		err  error
	)
	if database.IsPostgres(r.db) {
		rows, err = r.similarPgvector(ctx, fileIds, embedding, limit)
	} else {
		rows, err = r.similarInProcess(ctx, fileIds, embedding, limit)
	}
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredFileChunk, len(rows))
	for i := range rows {
		scored[i] = &entity.ScoredFileChunk{
			Chunk:      r.mapper.ChunkToEntity(&rows[i].FileChunk),
			FileName:   rows[i].FileName,
			Similarity: rows[i].Similarity,
		}
	}
	return scored, nil
}

func (r *FileRepositoryImpl) similarPgvector(ctx context.Context, fileIds []string, embedding []float32, limit int) ([]scoredChunkRow, error) {
	// Cosine distance in pgvector is: 1 - cosine_similarity
	queryVector := pgvector.NewVector(embedding)

	var rows []scoredChunkRow
	query := r.db.WithContext(ctx).
		Table("file_chunks").
		Select("file_chunks.*, uploaded_files.name as file_name, 1 - (embedding <=> ?) as similarity", queryVector).
		Joins("JOIN uploaded_files ON uploaded_files.id = file_chunks.file_id")
	err := specification.ByFileIDs{FileIDs: fileIds}.Apply(query).
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *FileRepositoryImpl) similarInProcess(ctx context.Context, fileIds []string, query []float32, limit int) ([]scoredChunkRow, error) {
	var rows []scoredChunkRow
	tx := r.db.WithContext(ctx).
		Table("file_chunks").
		Select("file_chunks.*, uploaded_files.name as file_name").
		Joins("JOIN uploaded_files ON uploaded_files.id = file_chunks.file_id")
	err := specification.ByFileIDs{FileIDs: fileIds}.Apply(tx).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Similarity = embedding.CosineSimilarity(query, rows[i].Embedding.Slice())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Similarity > rows[j].Similarity
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
