package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/markdave123-py/Extracta/internal/core"
	"github.com/markdave123-py/Extracta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Extracta/internal/services"
)

type DocumentHandler struct {
	docs     *services.DocumentService
	db       core.DbClient
	ingestor ingestion_engine.Ingestor
	maxBytes int64
}

func NewDocumentHandler(docs *services.DocumentService, db core.DbClient, ing ingestion_engine.Ingestor, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{docs: docs, db: db, ingestor: ing, maxBytes: maxBytes}
}

// UploadDocument handles file upload, DB insert, and background processing.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > h.maxBytes {
		http.Error(w, fmt.Sprintf("file exceeds %d bytes", h.maxBytes), http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Strip any path components from the client-supplied name.
	filename := filepath.Base(header.Filename)

	doc, err := h.docs.UploadAndCreate(r.Context(), userID, filename, contentType, data, "upload")
	if err != nil {
		log.Printf("upload failed for user %s: %v", userID, err)
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	h.ingestor.Enqueue(doc.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.docs.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

// GetDocumentText returns the extracted text of a document along with the
// extraction metadata (backend used, quality tier, fallback chain).
func (h *DocumentHandler) GetDocumentText(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	docID := chi.URLParam(r, "id")

	doc, err := h.docs.Get(r.Context(), docID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil || doc.UserID != userID {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	ext, err := h.db.GetExtractionByDocument(r.Context(), docID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ext == nil {
		http.Error(w, fmt.Sprintf("no extraction yet, document status is %q", doc.Status), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ext)
}

// chunkView is the chunk listing payload. Embeddings are large and of
// no use to API clients, so they stay out of the response.
type chunkView struct {
	ID         string `json:"id"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
}

// GetDocumentChunks lists the indexed chunks of a document in order.
func (h *DocumentHandler) GetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	docID := chi.URLParam(r, "id")

	doc, err := h.docs.Get(r.Context(), docID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil || doc.UserID != userID {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	chunks, err := h.db.GetChunksByDocument(r.Context(), docID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]chunkView, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, chunkView{
			ID:         ch.ID,
			Position:   ch.Position,
			Text:       ch.Text,
			TokenCount: ch.TokenCount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// DeleteDocument removes a document, its stored object, and everything
// derived from it.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	docID := chi.URLParam(r, "id")

	doc, err := h.docs.Get(r.Context(), docID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if doc == nil || doc.UserID != userID {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	if err := h.docs.Delete(r.Context(), doc); err != nil {
		log.Printf("delete failed for document %s: %v", docID, err)
		http.Error(w, "failed to delete document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
