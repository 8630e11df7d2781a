package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/markdave123-py/Extracta/internal/models"
	"github.com/markdave123-py/Extracta/internal/services"
)

// stubDB serves a single document and records deletes.
type stubDB struct {
	doc       *models.Document
	chunks    []models.DocumentChunk
	deletedID string
}

func (s *stubDB) CreateUser(ctx context.Context, u *models.User) error { return nil }
func (s *stubDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (s *stubDB) CreateDocument(ctx context.Context, d *models.Document) error { return nil }
func (s *stubDB) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	if s.doc != nil && s.doc.ID == id {
		return s.doc, nil
	}
	return nil, nil
}
func (s *stubDB) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return nil, nil
}
func (s *stubDB) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	return nil
}
func (s *stubDB) DeleteDocument(ctx context.Context, id string) error {
	s.deletedID = id
	return nil
}
func (s *stubDB) CreateExtraction(ctx context.Context, e *models.Extraction) error { return nil }
func (s *stubDB) GetExtractionByDocument(ctx context.Context, docID string) (*models.Extraction, error) {
	return nil, nil
}
func (s *stubDB) InsertDocumentChunks(ctx context.Context, rows []models.DocumentChunk) error {
	return nil
}
func (s *stubDB) GetChunksByDocument(ctx context.Context, docID string) ([]models.DocumentChunk, error) {
	return s.chunks, nil
}
func (s *stubDB) SearchDocumentChunks(ctx context.Context, docID string, queryVec []float32, limit int) ([]models.DocumentChunk, error) {
	return nil, nil
}
func (s *stubDB) Close() error { return nil }

// stubStore records object deletes.
type stubStore struct {
	deletedBucket string
	deletedKey    string
}

func (s *stubStore) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}
func (s *stubStore) DeleteFile(ctx context.Context, bucket, key string) error {
	s.deletedBucket, s.deletedKey = bucket, key
	return nil
}
func (s *stubStore) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return nil, nil
}

func ownedDocument() *models.Document {
	return &models.Document{
		ID:       "doc-1",
		UserID:   "user-1",
		FileName: "report.pdf",
		Status:   "ready",
	}
}

// docRequest builds an authenticated request with the {id} route param set.
func docRequest(method, target, userID, docID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", docID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, "user_id", userID)
	return req.WithContext(ctx)
}

func TestGetDocumentChunks(t *testing.T) {
	db := &stubDB{
		doc: ownedDocument(),
		chunks: []models.DocumentChunk{
			{ID: "c1", DocumentID: "doc-1", Position: 0, Text: "first chunk", TokenCount: 3, Embedding: []float32{0.1, 0.2}},
			{ID: "c2", DocumentID: "doc-1", Position: 1, Text: "second chunk", TokenCount: 3, Embedding: []float32{0.3, 0.4}},
		},
	}
	store := &stubStore{}
	docs := services.NewDocumentService(db, store, "extracta-docs")
	h := NewDocumentHandler(docs, db, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.GetDocumentChunks(rec, docRequest(http.MethodGet, "/api/documents/doc-1/chunks", "user-1", "doc-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got []chunkView
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("chunks = %d, want 2", len(got))
	}
	if got[0].Position != 0 || got[0].Text != "first chunk" {
		t.Errorf("first chunk = %+v", got[0])
	}
	if got[1].ID != "c2" || got[1].TokenCount != 3 {
		t.Errorf("second chunk = %+v", got[1])
	}
}

func TestGetDocumentChunksOmitsEmbeddings(t *testing.T) {
	db := &stubDB{
		doc: ownedDocument(),
		chunks: []models.DocumentChunk{
			{ID: "c1", DocumentID: "doc-1", Position: 0, Text: "chunk", Embedding: []float32{0.1}},
		},
	}
	docs := services.NewDocumentService(db, &stubStore{}, "extracta-docs")
	h := NewDocumentHandler(docs, db, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.GetDocumentChunks(rec, docRequest(http.MethodGet, "/api/documents/doc-1/chunks", "user-1", "doc-1"))

	if strings.Contains(rec.Body.String(), "embedding") {
		t.Error("response contains embeddings")
	}
}

func TestGetDocumentChunksWrongOwner(t *testing.T) {
	db := &stubDB{doc: ownedDocument()}
	docs := services.NewDocumentService(db, &stubStore{}, "extracta-docs")
	h := NewDocumentHandler(docs, db, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.GetDocumentChunks(rec, docRequest(http.MethodGet, "/api/documents/doc-1/chunks", "intruder", "doc-1"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := &stubDB{doc: ownedDocument()}
	store := &stubStore{}
	docs := services.NewDocumentService(db, store, "extracta-docs")
	h := NewDocumentHandler(docs, db, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.DeleteDocument(rec, docRequest(http.MethodDelete, "/api/documents/doc-1", "user-1", "doc-1"))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if db.deletedID != "doc-1" {
		t.Errorf("deleted document = %q, want doc-1", db.deletedID)
	}
	if store.deletedBucket != "extracta-docs" || store.deletedKey != "users/user-1/documents/doc-1/report.pdf" {
		t.Errorf("deleted object = %s/%s, want the uploaded key", store.deletedBucket, store.deletedKey)
	}
}

func TestDeleteDocumentWrongOwner(t *testing.T) {
	db := &stubDB{doc: ownedDocument()}
	store := &stubStore{}
	docs := services.NewDocumentService(db, store, "extracta-docs")
	h := NewDocumentHandler(docs, db, nil, 1<<20)

	rec := httptest.NewRecorder()
	h.DeleteDocument(rec, docRequest(http.MethodDelete, "/api/documents/doc-1", "intruder", "doc-1"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if db.deletedID != "" || store.deletedKey != "" {
		t.Error("delete reached storage for a document the user does not own")
	}
}
