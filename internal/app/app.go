// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/markdave123-py/Extracta/internal/config"
	"github.com/markdave123-py/Extracta/internal/core"
	db "github.com/markdave123-py/Extracta/internal/core/database"
	engine "github.com/markdave123-py/Extracta/internal/core/extraction_engine"
	"github.com/markdave123-py/Extracta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Extracta/internal/core/llm"
	objectclient "github.com/markdave123-py/Extracta/internal/core/object-client"
	"github.com/markdave123-py/Extracta/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	DocProcessor ingestion_engine.Ingestor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	extractor, err := buildExtractor(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the extraction engine, %w", err)
	}

	ingCfg := &ingestion_engine.IngestConfig{
		TargetTokens:  100,
		OverlapTokens: 5,
		BatchSize:     16,
		EmbedDim:      cfg.EmbedDim,
	}

	docIngestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, geminiEmbedder, extractor, ingCfg)

	userSvc := services.NewUserService(dbClient)
	docSvc := services.NewDocumentService(dbClient, objClient, cfg.BucketName)

	server := NewServer(cfg, dbClient, userSvc, docSvc, docIngestor, geminiEmbedder)

	return &App{DBClient: dbClient, ObjectClient: objClient, DocProcessor: docIngestor, Server: server}, nil
}

// buildExtractor assembles the extraction backends in fallback order
// and wraps them together with the docconv path for non-PDF types.
func buildExtractor(ctx context.Context, cfg *config.Config) (core.DocumentExtractor, error) {
	var backends []engine.Backend

	gemini, err := engine.NewGeminiBackend(ctx, cfg.AIAPIKey, cfg.ExtractModel)
	if err != nil {
		return nil, err
	}
	backends = append(backends, gemini)
	backends = append(backends, engine.NewLocalParserBackend())
	backends = append(backends, engine.NewOCRBackend(cfg.OCRLang, float64(cfg.OCRDpi)))

	engCfg := engine.Config{
		MaxFileSizeBytes:  cfg.MaxFileSizeBytes,
		MaxPages:          cfg.MaxPages,
		HardTimeoutCapMs:  cfg.HardTimeoutCapMs,
		InterChunkDelayMs: cfg.InterChunkDelay,
		Backends: map[string]engine.BackendConfig{
			engine.BackendGemini: {
				Enabled:       cfg.GeminiEnabled,
				BaseTimeoutMs: cfg.GeminiTimeoutMs,
				MaxRetries:    cfg.GeminiRetries,
				RetryDelayMs:  cfg.GeminiRetryMs,
			},
			engine.BackendLocalParser: {
				Enabled:       cfg.LocalParserEnabled,
				BaseTimeoutMs: cfg.LocalParserTimeoutMs,
				MaxRetries:    1,
				RetryDelayMs:  1000,
			},
			engine.BackendOCR: {
				Enabled:       cfg.OCREnabled,
				BaseTimeoutMs: cfg.OCRTimeoutMs,
				MaxRetries:    1,
				RetryDelayMs:  2000,
			},
		},
		ChunkOCR: engine.ChunkOCRConfig{
			Enabled:              cfg.ChunkOCREnabled,
			MinTextLengthTrigger: cfg.OCRTextTrigger,
			MaxOCRChunks:         cfg.MaxOCRChunks,
			MaxOCRPages:          cfg.MaxOCRPages,
		},
		Quality: engine.QualityValidator{
			MinTextLength:       cfg.MinTextLength,
			MaxSpecialCharRatio: cfg.MaxSpecialCharRatio,
		},
	}

	orch := engine.NewOrchestrator(backends, engine.FitzPageCounter{}, engCfg)
	return engine.NewEngineExtractor(orch, engine.NewDocconvExtractor(false)), nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
