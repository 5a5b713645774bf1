package marker

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// pageWithCode renders a white page carrying body "text" (dark rules) and a
// QR code for payload placed at (x, y).
func pageWithCode(t *testing.T, payload string, x, y int) image.Image {
	t.Helper()

	page := image.NewRGBA(image.Rect(0, 0, 900, 1200))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// Horizontal rules standing in for certificate text lines.
	for line := 0; line < 12; line++ {
		yy := 80 + line*24
		for xx := 60; xx < 620; xx++ {
			page.Set(xx, yy, color.Black)
			page.Set(xx, yy+1, color.Black)
		}
	}

	matrix, err := qrcode.NewQRCodeWriter().Encode(
		payload, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	if err != nil {
		t.Fatalf("encode QR: %v", err)
	}
	backing := image.Rect(x, y, x+matrix.GetWidth(), y+matrix.GetHeight())
	draw.Draw(page, backing, image.NewUniform(color.White), image.Point{}, draw.Src)
	for my := 0; my < matrix.GetHeight(); my++ {
		for mx := 0; mx < matrix.GetWidth(); mx++ {
			if matrix.Get(mx, my) {
				page.Set(x+mx, y+my, color.Black)
			}
		}
	}
	return page
}

func TestExtractDecodesEmbeddedCode(t *testing.T) {
	const payload = "https://gateway.example/ipfs/bafkreia6qkrcertificate"
	// Corner placements matter: the code's outer modules sit well outside
	// the finder-pattern centers, so any region handling that loses the
	// edges of the symbol fails exactly here.
	placements := []struct {
		name string
		x, y int
	}{
		{"bottom right", 620, 900},
		{"top left", 40, 40},
		{"centered", 350, 500},
	}
	for _, p := range placements {
		t.Run(p.name, func(t *testing.T) {
			page := pageWithCode(t, payload, p.x, p.y)

			m, ok := Extract(page)
			if !ok {
				t.Fatalf("Extract reported absent for a page with a marker at (%d,%d)", p.x, p.y)
			}
			if m.Payload != payload {
				t.Fatalf("Payload = %q, want %q", m.Payload, payload)
			}
		})
	}
}

func TestExtractAbsentOnBlankPage(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 640, 480))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if _, ok := Extract(page); ok {
		t.Fatalf("Extract reported a marker on a blank page")
	}
}

func TestExtractAbsentOnNoise(t *testing.T) {
	// Dense non-code texture: detection either fails or the decode fails.
	// Either way the result is absent, never a fault.
	page := image.NewRGBA(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			if (x*7+y*13)%3 == 0 {
				page.Set(x, y, color.Black)
			} else {
				page.Set(x, y, color.White)
			}
		}
	}
	if m, ok := Extract(page); ok {
		t.Fatalf("Extract decoded a payload from noise: %q", m.Payload)
	}
}
