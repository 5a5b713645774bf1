// Package fitz renders and extracts PDF documents through the MuPDF
// bindings.
//
// This is the default engine for both pdf.TextExtractor and pdf.Rasterizer.
// It links MuPDF via cgo; pure-Go deployments can substitute any engine
// implementing the pdf interfaces.
package fitz

import (
	"fmt"
	"image"

	mupdf "github.com/gen2brain/go-fitz"

	"xdao.co/certverify/pdf"
)

// Engine is a stateless MuPDF-backed document engine. Each call opens the
// document fresh; no state is shared across requests.
type Engine struct{}

func New() Engine { return Engine{} }

// FirstPageText returns the embedded text of page 1.
func (Engine) FirstPageText(raw []byte) (string, error) {
	doc, err := mupdf.NewFromMemory(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pdf.ErrExtraction, err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return "", fmt.Errorf("%w: document has no pages", pdf.ErrExtraction)
	}
	text, err := doc.Text(0)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pdf.ErrExtraction, err)
	}
	return text, nil
}

// RasterizeFirstPage renders page 1 at the given DPI.
func (Engine) RasterizeFirstPage(raw []byte, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = pdf.DPI
	}
	doc, err := mupdf.NewFromMemory(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdf.ErrRaster, err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, fmt.Errorf("%w: document has no pages", pdf.ErrRaster)
	}
	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdf.ErrRaster, err)
	}
	return img, nil
}
