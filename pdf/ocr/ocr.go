// Package ocr implements pdf.TextRecognizer over the Tesseract engine via
// gosseract.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"xdao.co/certverify/pdf"
)

// Engine recognizes page text with Tesseract. A fresh client is created per
// call; gosseract clients are not safe for concurrent reuse.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// New constructs a Tesseract-backed recognizer. Language hints ("eng",
// "deu", ...) select trained data; none means the engine default.
func New(languages ...string) *Engine {
	return &Engine{
		clientFactory: gosseract.NewClient,
		languages:     append([]string(nil), languages...),
	}
}

// RecognizeText runs OCR over img and returns the recognized plain text.
func (e *Engine) RecognizeText(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: encode page image: %v", pdf.ErrRecognition, err)
	}

	client := e.clientFactory()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("%w: set language: %v", pdf.ErrRecognition, err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: set image: %v", pdf.ErrRecognition, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", pdf.ErrRecognition, err)
	}
	return text, nil
}
