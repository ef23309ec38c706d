// Package main - ocr.go
//
// This file wraps the Tesseract OCR engine (github.com/otiai10/gosseract/v2)
// behind the TextReader interface and provides the image preprocessing
// pipeline that runs before every recognition.
//
// Preprocessing:
// Game text is rendered small and anti-aliased over a busy background, which
// Tesseract handles poorly. Before recognition each region is:
//   1. Converted to grayscale and contrast-boosted (disintegration/gift)
//   2. Upscaled 2x with bilinear interpolation (nfnt/resize) when narrower
//      than minOCRWidth
//
// Thread Safety:
// A gosseract client is not safe for concurrent use. TesseractReader guards
// it with a mutex; the main loop and the whisper monitor share one reader and
// simply serialize on it. OCR calls block for their duration (100-400ms).
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	"github.com/otiai10/gosseract/v2"
)

// minOCRWidth is the region width below which the preprocessor upscales 2x.
const minOCRWidth = 600

// TextReader extracts plain text from an image.
type TextReader interface {
	ReadText(img image.Image) (string, error)
}

// TesseractReader implements TextReader on a shared gosseract client.
type TesseractReader struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseractReader creates a reader for the given language. An optional
// character whitelist narrows recognition to the game's glyph set, which
// cuts down on punctuation garbage in noisy regions.
func NewTesseractReader(language, whitelist string) (*TesseractReader, error) {
	client := gosseract.NewClient()

	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", language, err)
	}
	if whitelist != "" {
		if err := client.SetWhitelist(whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &TesseractReader{client: client}, nil
}

// ReadText preprocesses the image and runs Tesseract over it.
// Returns the trimmed recognized text, which may be empty.
func (tr *TesseractReader) ReadText(img image.Image) (string, error) {
	prepared := PreprocessForOCR(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return "", fmt.Errorf("failed to encode OCR input: %w", err)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	if err := tr.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set OCR image: %w", err)
	}
	text, err := tr.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the underlying Tesseract client.
func (tr *TesseractReader) Close() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.client.Close()
}

// PreprocessForOCR converts a captured region into the form Tesseract reads
// best: grayscale, contrast boosted, upscaled when small.
func PreprocessForOCR(img image.Image) image.Image {
	if img == nil {
		return nil
	}

	g := gift.New(
		gift.Grayscale(),
		gift.Contrast(30),
	)
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)

	if dst.Bounds().Dx() < minOCRWidth {
		scaled := resize.Resize(uint(dst.Bounds().Dx()*2), 0, dst, resize.Bilinear)
		return scaled
	}
	return dst
}
