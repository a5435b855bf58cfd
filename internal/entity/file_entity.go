package entity

import "time"

type UploadedFile struct {
	Id        string
	Name      string
	CreatedAt time.Time
}

type FileChunk struct {
	Id         string
	FileId     string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

type ScoredFileChunk struct {
	Chunk      *FileChunk
	FileName   string
	Similarity float64
}
