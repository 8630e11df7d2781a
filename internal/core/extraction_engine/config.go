package extraction_engine

// Backend name constants double as config keys.
const (
	BackendGemini      = "gemini"
	BackendLocalParser = "local-parser"
	BackendOCR         = "tesseract-ocr"
)

// BackendConfig is immutable per deployment.
type BackendConfig struct {
	Enabled       bool
	BaseTimeoutMs int
	MaxRetries    int // retries on top of the first attempt; effectively capped at 1
	RetryDelayMs  int
}

// ChunkOCRConfig tunes the per-chunk OCR escalation inside chunked
// extraction.
//
// MinTextLengthTrigger: a chunk shorter than this (trimmed) is suspect
//                       and eligible for OCR escalation.
// MaxOCRChunks:         at most this many chunks may escalate.
// MaxOCRPages:          total page budget shared by all escalations.
type ChunkOCRConfig struct {
	Enabled              bool
	MinTextLengthTrigger int
	MaxOCRChunks         int
	MaxOCRPages          int
}

// Config carries every knob of the extraction engine. Zero values are
// filled in by ApplyDefaults, so construction sites only set what they
// want to change.
type Config struct {
	MaxFileSizeBytes  int64
	MaxPages          int
	HardTimeoutCapMs  int
	InterChunkDelayMs int

	Backends map[string]BackendConfig

	ChunkOCR ChunkOCRConfig
	Quality  QualityValidator
}

// DefaultConfig returns the deployment defaults: Gemini first, the
// local text-layer parser second, OCR as last resort.
func DefaultConfig() Config {
	return Config{
		MaxFileSizeBytes:  50 * 1024 * 1024,
		MaxPages:          2000,
		HardTimeoutCapMs:  140_000,
		InterChunkDelayMs: 500,
		Backends: map[string]BackendConfig{
			BackendGemini:      {Enabled: true, BaseTimeoutMs: 30_000, MaxRetries: 1, RetryDelayMs: 2000},
			BackendLocalParser: {Enabled: true, BaseTimeoutMs: 20_000, MaxRetries: 1, RetryDelayMs: 1000},
			BackendOCR:         {Enabled: true, BaseTimeoutMs: 60_000, MaxRetries: 1, RetryDelayMs: 2000},
		},
		ChunkOCR: ChunkOCRConfig{
			Enabled:              true,
			MinTextLengthTrigger: 100,
			MaxOCRChunks:         5,
			MaxOCRPages:          25,
		},
		Quality: QualityValidator{
			MinTextLength:       10,
			MaxSpecialCharRatio: 0.5,
		},
	}
}

// ApplyDefaults fills unset fields from DefaultConfig. Per-backend
// entries missing from Backends are copied whole, and so is a fully
// zero ChunkOCR; Enabled is not defaulted for values the caller did
// provide.
func (c Config) ApplyDefaults() Config {
	d := DefaultConfig()
	if c.MaxFileSizeBytes == 0 {
		c.MaxFileSizeBytes = d.MaxFileSizeBytes
	}
	if c.MaxPages == 0 {
		c.MaxPages = d.MaxPages
	}
	if c.HardTimeoutCapMs == 0 {
		c.HardTimeoutCapMs = d.HardTimeoutCapMs
	}
	if c.InterChunkDelayMs == 0 {
		c.InterChunkDelayMs = d.InterChunkDelayMs
	}
	if c.Backends == nil {
		c.Backends = d.Backends
	} else {
		for name, bc := range d.Backends {
			if _, ok := c.Backends[name]; !ok {
				c.Backends[name] = bc
			}
		}
	}
	if c.ChunkOCR == (ChunkOCRConfig{}) {
		c.ChunkOCR = d.ChunkOCR
	} else {
		if c.ChunkOCR.MinTextLengthTrigger == 0 {
			c.ChunkOCR.MinTextLengthTrigger = d.ChunkOCR.MinTextLengthTrigger
		}
		if c.ChunkOCR.MaxOCRChunks == 0 {
			c.ChunkOCR.MaxOCRChunks = d.ChunkOCR.MaxOCRChunks
		}
		if c.ChunkOCR.MaxOCRPages == 0 {
			c.ChunkOCR.MaxOCRPages = d.ChunkOCR.MaxOCRPages
		}
	}
	if c.Quality.MinTextLength == 0 {
		c.Quality.MinTextLength = d.Quality.MinTextLength
	}
	if c.Quality.MaxSpecialCharRatio == 0 {
		c.Quality.MaxSpecialCharRatio = d.Quality.MaxSpecialCharRatio
	}
	return c
}

// backendConfig looks up a backend's config, falling back to defaults
// for backends added without explicit configuration.
func (c Config) backendConfig(name string) BackendConfig {
	if bc, ok := c.Backends[name]; ok {
		return bc
	}
	if bc, ok := DefaultConfig().Backends[name]; ok {
		return bc
	}
	return BackendConfig{Enabled: true, BaseTimeoutMs: 30_000, MaxRetries: 1, RetryDelayMs: 1000}
}
