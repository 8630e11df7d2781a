package extraction_engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiBackend reads documents with a multimodal Gemini model: the PDF
// goes up as an inline blob and the model returns the plain text. It is
// the highest-quality backend and supports ranged extraction and ranged
// OCR through page-scoped prompts.
type GeminiBackend struct {
	client    *genai.Client
	modelName string
}

const geminiExtractPrompt = "Extract the complete plain text content of this document. " +
	"Preserve the reading order. Output only the extracted text, no commentary."

// NewGeminiBackend builds the backend. An empty apiKey yields an
// unavailable backend rather than an error, so deployments without a
// key simply fall through to the local parser.
func NewGeminiBackend(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if apiKey == "" {
		return &GeminiBackend{modelName: modelName}, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiBackend{client: cl, modelName: modelName}, nil
}

func (g *GeminiBackend) Name() string { return BackendGemini }

func (g *GeminiBackend) IsAvailable() bool { return g.client != nil }

func (g *GeminiBackend) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiBackend) Extract(ctx context.Context, data []byte) (string, error) {
	return g.generate(ctx, data, geminiExtractPrompt)
}

// ExtractRange scopes the prompt to an inclusive page range so large
// documents can be processed chunk by chunk.
func (g *GeminiBackend) ExtractRange(ctx context.Context, data []byte, startPage, endPage int) (string, error) {
	prompt := fmt.Sprintf(
		"Extract the plain text content of pages %d through %d (inclusive) of this document. "+
			"Ignore all other pages. Output only the extracted text, no commentary.",
		startPage, endPage)
	return g.generate(ctx, data, prompt)
}

// OCRRange asks the model to transcribe the page images instead of the
// text layer, for scanned pages whose text layer is empty or garbage.
func (g *GeminiBackend) OCRRange(ctx context.Context, data []byte, startPage, endPage int) (string, error) {
	prompt := fmt.Sprintf(
		"Pages %d through %d of this document are scanned images. "+
			"Perform OCR on those pages and transcribe every word you can read, in order. "+
			"Output only the transcription.",
		startPage, endPage)
	return g.generate(ctx, data, prompt)
}

func (g *GeminiBackend) generate(ctx context.Context, data []byte, prompt string) (string, error) {
	if g.client == nil {
		return "", &BackendError{Backend: BackendGemini, Err: errors.New("api key not configured")}
	}

	m := g.client.GenerativeModel(g.modelName)
	resp, err := m.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: data},
		genai.Text(prompt),
	)
	if err != nil {
		return "", g.wrapErr(ctx, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &BackendError{Backend: BackendGemini, Err: errors.New("empty response from model")}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// wrapErr surfaces the transport status code when the API returned one,
// so the classifier can tell rate limits from bad requests.
func (g *GeminiBackend) wrapErr(ctx context.Context, err error) error {
	be := &BackendError{Backend: BackendGemini, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		be.StatusCode = gerr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		be.Timeout = true
	}
	return be
}
