package extraction_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// OCRBackend is the last resort for scanned documents: rasterize every
// page with MuPDF and run Tesseract over the images. Slow and lossy,
// but it works when no text layer exists at all.
type OCRBackend struct {
	language string
	dpi      float64
}

func NewOCRBackend(language string, dpi float64) *OCRBackend {
	if language == "" {
		language = "eng"
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &OCRBackend{language: language, dpi: dpi}
}

func (o *OCRBackend) Name() string { return BackendOCR }

// IsAvailable is always true; deployments without a Tesseract install
// disable the backend through config instead.
func (o *OCRBackend) IsAvailable() bool { return true }

func (o *OCRBackend) Extract(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", &BackendError{Backend: BackendOCR, Err: fmt.Errorf("open pdf: %w", err)}
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(o.language); err != nil {
		return "", &BackendError{Backend: BackendOCR, Err: fmt.Errorf("set language: %w", err)}
	}

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &BackendError{Backend: BackendOCR, Timeout: err == context.DeadlineExceeded, Err: err}
		}

		text, err := o.ocrPage(doc, client, i)
		if err != nil {
			// A single unreadable page shouldn't sink the document.
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func (o *OCRBackend) ocrPage(doc *fitz.Document, client *gosseract.Client, page int) (string, error) {
	img, err := doc.ImagePNG(page, o.dpi)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", page+1, err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr page %d: %w", page+1, err)
	}
	return strings.TrimSpace(text), nil
}
