package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	SslCertPath  string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	ExtractModel string
	Port         string
	Workers      int

	// Extraction engine knobs.
	MaxFileSizeBytes int64
	MaxPages         int
	HardTimeoutCapMs int
	InterChunkDelay  int

	GeminiEnabled   bool
	GeminiTimeoutMs int
	GeminiRetries   int
	GeminiRetryMs   int

	LocalParserEnabled   bool
	LocalParserTimeoutMs int

	OCREnabled   bool
	OCRTimeoutMs int
	OCRLang      string
	OCRDpi       int

	ChunkOCREnabled bool
	OCRTextTrigger  int
	MaxOCRChunks    int
	MaxOCRPages     int

	MinTextLength       int
	MaxSpecialCharRatio float64
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "extracta-docs"),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		ExtractModel: getEnv("EXTRACT_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "8080"),
		Workers:      getEnvInt("WORKERS", 4),

		MaxFileSizeBytes: int64(getEnvInt("MAX_FILE_SIZE_BYTES", 50*1024*1024)),
		MaxPages:         getEnvInt("MAX_PAGES", 2000),
		HardTimeoutCapMs: getEnvInt("HARD_TIMEOUT_CAP_MS", 140_000),
		InterChunkDelay:  getEnvInt("INTER_CHUNK_DELAY_MS", 500),

		GeminiEnabled:   getEnvBool("GEMINI_ENABLED", true),
		GeminiTimeoutMs: getEnvInt("GEMINI_TIMEOUT_MS", 30_000),
		GeminiRetries:   getEnvInt("GEMINI_MAX_RETRIES", 1),
		GeminiRetryMs:   getEnvInt("GEMINI_RETRY_DELAY_MS", 2000),

		LocalParserEnabled:   getEnvBool("LOCAL_PARSER_ENABLED", true),
		LocalParserTimeoutMs: getEnvInt("LOCAL_PARSER_TIMEOUT_MS", 20_000),

		OCREnabled:   getEnvBool("OCR_ENABLED", true),
		OCRTimeoutMs: getEnvInt("OCR_TIMEOUT_MS", 60_000),
		OCRLang:      getEnv("OCR_LANG", "eng"),
		OCRDpi:       getEnvInt("OCR_DPI", 150),

		ChunkOCREnabled: getEnvBool("CHUNK_OCR_ENABLED", true),
		OCRTextTrigger:  getEnvInt("OCR_TEXT_TRIGGER", 100),
		MaxOCRChunks:    getEnvInt("MAX_OCR_CHUNKS", 5),
		MaxOCRPages:     getEnvInt("MAX_OCR_PAGES", 25),

		MinTextLength:       getEnvInt("MIN_TEXT_LENGTH", 10),
		MaxSpecialCharRatio: getEnvFloat("MAX_SPECIAL_CHAR_RATIO", 0.5),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a number, using default %v", key, v, def)
		return def
	}
	return f
}
