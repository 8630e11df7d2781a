package extraction_engine

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzPageCounter implements PageCounter by actually opening the
// document with MuPDF.
type FitzPageCounter struct{}

func (FitzPageCounter) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("open pdf for page count: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
