package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/markdave123-py/Extracta/internal/core"
	"github.com/markdave123-py/Extracta/internal/models"
)

type SearchHandler struct {
	dbclient core.DbClient
	embedder core.EmbeddingProvider
	embedDim int
}

func NewSearchHandler(db core.DbClient, emb core.EmbeddingProvider, embedDim int) *SearchHandler {
	return &SearchHandler{dbclient: db, embedder: emb, embedDim: embedDim}
}

type SearchRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
}

type SearchResponse struct {
	DocumentID string                 `json:"document_id"`
	Query      string                 `json:"query"`
	Chunks     []models.DocumentChunk `json:"chunks"`
}

// SearchDocument embeds the query and returns the closest chunks of the document.
func (h *SearchHandler) SearchDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 5
	}

	// Confirm document belongs to user
	doc, err := h.dbclient.GetDocumentByID(ctx, req.DocumentID)
	if err != nil || doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if doc.UserID != userID {
		http.Error(w, "you are unauthorized to access this document", http.StatusUnauthorized)
		return
	}

	// Embed the query
	vecs, err := h.embedder.EmbedTexts(ctx, []string{req.Query}, h.embedDim)
	if err != nil || len(vecs) == 0 {
		http.Error(w, fmt.Sprintf("embedding failed: %v", err), 500)
		return
	}
	queryVec := vecs[0]

	// Retrieve top chunks
	chunks, err := h.dbclient.SearchDocumentChunks(ctx, req.DocumentID, queryVec, req.Limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("search failed: %v", err), 500)
		return
	}

	json.NewEncoder(w).Encode(SearchResponse{
		DocumentID: req.DocumentID,
		Query:      req.Query,
		Chunks:     chunks,
	})
}
