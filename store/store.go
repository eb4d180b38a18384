package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/use-agent/newgoods/models"
)

// EncodeJSON encodes products as a JSON array with two-space indentation.
// Non-ASCII text and HTML-significant characters are written literally.
// A nil or empty slice encodes as [].
func EncodeJSON(products []models.Product) ([]byte, error) {
	if products == nil {
		products = []models.Product{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("store: encode json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SaveJSON writes products to path, truncating any existing file.
func SaveJSON(path string, products []models.Product) error {
	data, err := EncodeJSON(products)
	if err != nil {
		return models.NewPipelineError(models.ErrCodeWrite, "store: encode products", err)
	}
	return writeFile(path, data)
}

// SaveText writes text to path as UTF-8, truncating any existing file.
func SaveText(path, text string) error {
	return writeFile(path, []byte(text))
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return models.NewPipelineError(models.ErrCodeWrite, "store: create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = models.NewPipelineError(models.ErrCodeWrite, "store: close "+path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return models.NewPipelineError(models.ErrCodeWrite, "store: write "+path, err)
	}
	return nil
}
