package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents a user-uploaded or crawled document.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	StorageURL  string    `db:"storage_url" json:"storage_url"` // S3 URL or original link
	SourceType  string    `db:"source_type" json:"source_type"` // "upload" or "url"
	Status      string    `db:"status" json:"status"`           // uploaded | processing | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk represents one text chunk from a document.
type DocumentChunk struct {
	ID          string    `db:"id" json:"id"`
	DocumentID  string    `db:"document_id" json:"document_id"`
	Text        string    `db:"text" json:"text"`
	Embedding   []float32 `db:"embedding" json:"embedding"` // pgvector column
	Position    int       `db:"position" json:"position"`
	TokenCount  int       `db:"token_count" json:"token_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Extraction records the outcome of text extraction for one document:
// the text itself plus which backend produced it and how hard the
// fallback chain had to work.
type Extraction struct {
	ID            string    `db:"id" json:"id"`
	DocumentID    string    `db:"document_id" json:"document_id"`
	Text          string    `db:"text" json:"text"`
	Backend       string    `db:"backend" json:"backend"`
	QualityTier   string    `db:"quality_tier" json:"quality_tier"` // high | medium | low
	AttemptCount  int       `db:"attempt_count" json:"attempt_count"`
	FallbackChain string    `db:"fallback_chain" json:"fallback_chain"` // stringified attempt log
	PageCount     int       `db:"page_count" json:"page_count"`
	Chunked       bool      `db:"chunked" json:"chunked"`
	FailedChunks  int       `db:"failed_chunks" json:"failed_chunks"`
	OCRChunks     int       `db:"ocr_chunks" json:"ocr_chunks"`
	TimeoutHit    bool      `db:"timeout_hit" json:"timeout_hit"`
	DurationMs    int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
