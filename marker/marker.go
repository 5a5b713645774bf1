// Package marker locates and decodes the embedded visual marker (a QR code)
// on a rasterized certificate page.
package marker

import (
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Marker carries the payload decoded from a page's 2-D code.
type Marker struct {
	Payload string
}

// Extractor adapts Extract for callers that take the extraction step as an
// injected collaborator.
type Extractor struct{}

func (Extractor) Extract(img image.Image) (Marker, bool) { return Extract(img) }

// Extract decodes the payload of a 2-D code found on the page image as UTF-8
// text. Detection and decoding both run on the full page: the reader's
// detector resolves the code's extent and perspective from its finder
// patterns, which only works with the surrounding quiet zone intact.
//
// Absence is a value, not a fault: a page with no detectable code, an
// undecodable (corrupted or occluded) code, and an empty payload all report
// ok=false.
func Extract(img image.Image) (Marker, bool) {
	payload, err := decodePage(img)
	if err != nil || payload == "" {
		return Marker{}, false
	}
	return Marker{Payload: payload}, true
}

func decodePage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", err
	}
	return result.GetText(), nil
}
