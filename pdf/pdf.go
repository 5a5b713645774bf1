// Package pdf defines the document collaborators the verification core
// depends on: first-page text extraction, fixed-DPI rasterization, and
// optical text recognition. Concrete engines live in subpackages; the core
// treats them as trusted external capabilities.
package pdf

import (
	"errors"
	"image"
)

// DPI is the raster resolution used for marker detection, chosen high
// enough that small-format codes on a certificate page stay decodable.
const DPI = 300

var (
	// ErrExtraction reports an unparsable document or a missing first page.
	// Terminal for the request; never retried.
	ErrExtraction = errors.New("pdf: extraction failed")

	// ErrRaster reports a failed first-page render.
	ErrRaster = errors.New("pdf: raster failed")

	// ErrRecognition reports a failed optical text recognition pass.
	ErrRecognition = errors.New("pdf: recognition failed")
)

// TextExtractor returns the embedded text of a document's first page.
// Certificates in this system are single-page; later pages are ignored.
type TextExtractor interface {
	FirstPageText(raw []byte) (string, error)
}

// Rasterizer renders a document's first page to a bitmap at the given DPI.
type Rasterizer interface {
	RasterizeFirstPage(raw []byte, dpi int) (image.Image, error)
}

// TextRecognizer recovers visible text from a rendered page image.
type TextRecognizer interface {
	RecognizeText(img image.Image) (string, error)
}
