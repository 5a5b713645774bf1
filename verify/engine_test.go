package verify

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"

	"xdao.co/certverify/compliance"
	"xdao.co/certverify/fingerprint"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/ledger/testkit"
	"xdao.co/certverify/locator"
	"xdao.co/certverify/marker"
	"xdao.co/certverify/pdf"
	"xdao.co/certverify/resolve"

	"xdao.co/certverify/cidutil"
)

// fakeText maps document bytes to extracted first-page text.
type fakeText map[string]string

func (f fakeText) FirstPageText(raw []byte) (string, error) {
	text, ok := f[string(raw)]
	if !ok {
		return "", pdf.ErrExtraction
	}
	return text, nil
}

type fakeRaster struct{ err error }

func (f fakeRaster) RasterizeFirstPage([]byte, int) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type fakeMarkers struct {
	payload string
	ok      bool
}

func (f fakeMarkers) Extract(image.Image) (marker.Marker, bool) {
	return marker.Marker{Payload: f.payload}, f.ok
}

// fakeResolver maps locator URIs to reference bytes.
type fakeResolver map[string][]byte

func (f fakeResolver) Resolve(_ context.Context, loc locator.Locator) ([]byte, error) {
	b, ok := f[loc.URI]
	if !ok {
		return nil, resolve.ErrNotFound
	}
	return b, nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) RecognizeText(image.Image) (string, error) { return f.text, f.err }

const (
	userDoc = "user-document-bytes"
	refDoc  = "reference-document-bytes"
	certTxt = "Certificate of Completion\nAwarded to Alice\n"
)

func genuineFixture() (fakeText, fakeResolver, string) {
	uri := "https://gateway.example/ipfs/bafkreicertref"
	texts := fakeText{userDoc: certTxt, refDoc: certTxt}
	refs := fakeResolver{uri: []byte(refDoc)}
	return texts, refs, uri
}

func TestVerifyGenuine(t *testing.T) {
	texts, refs, uri := genuineFixture()
	e := New(texts, fakeRaster{}, refs, Options{
		Markers: fakeMarkers{payload: uri, ok: true},
	})
	res := e.Verify(context.Background(), []byte(userDoc))
	if res.Verdict != Genuine {
		t.Fatalf("Verdict = %q, want Genuine", res.Verdict)
	}
	if res.LocatorID != "bafkreicertref" {
		t.Fatalf("LocatorID = %q", res.LocatorID)
	}
}

func TestVerifyFakeOnTamperedText(t *testing.T) {
	texts, refs, uri := genuineFixture()
	texts[userDoc] = certTxt + "B" // one character of tamper
	e := New(texts, fakeRaster{}, refs, Options{
		Markers: fakeMarkers{payload: uri, ok: true},
	})
	res := e.Verify(context.Background(), []byte(userDoc))
	if res.Verdict != Fake {
		t.Fatalf("Verdict = %q, want Fake", res.Verdict)
	}
	if res.LocatorID != locator.Null {
		t.Fatalf("LocatorID = %q, want %q", res.LocatorID, locator.Null)
	}
}

func TestVerifyInvalidCases(t *testing.T) {
	texts, refs, uri := genuineFixture()
	cases := []struct {
		name string
		e    *Engine
		raw  string
	}{
		{
			name: "unparsable document",
			e:    New(texts, fakeRaster{}, refs, Options{Markers: fakeMarkers{payload: uri, ok: true}}),
			raw:  "garbage-bytes",
		},
		{
			name: "raster failure",
			e:    New(texts, fakeRaster{err: pdf.ErrRaster}, refs, Options{Markers: fakeMarkers{payload: uri, ok: true}}),
			raw:  userDoc,
		},
		{
			name: "missing marker",
			e:    New(texts, fakeRaster{}, refs, Options{Markers: fakeMarkers{ok: false}}),
			raw:  userDoc,
		},
		{
			name: "marker payload not a uri",
			e:    New(texts, fakeRaster{}, refs, Options{Markers: fakeMarkers{payload: "no scheme here", ok: true}}),
			raw:  userDoc,
		},
		{
			name: "reference not retrievable",
			e:    New(texts, fakeRaster{}, refs, Options{Markers: fakeMarkers{payload: "https://gateway.example/ipfs/missing", ok: true}}),
			raw:  userDoc,
		},
		{
			name: "reference unparsable",
			e: New(texts, fakeRaster{}, fakeResolver{uri: []byte("unknown-ref")}, Options{
				Markers: fakeMarkers{payload: uri, ok: true},
			}),
			raw: userDoc,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.e.Verify(context.Background(), []byte(tc.raw))
			if res.Verdict != Invalid {
				t.Fatalf("Verdict = %q, want INVALID", res.Verdict)
			}
			if res.LocatorID != locator.Null {
				t.Fatalf("LocatorID = %q, want %q", res.LocatorID, locator.Null)
			}
		})
	}
}

func TestVerifyAnchoredInformational(t *testing.T) {
	texts, refs, uri := genuineFixture()
	gw := testkit.New()
	gw.Seed(ledger.Delta{Key: ledger.KeyPDFHash, Value: fingerprint.Digest(certTxt)})

	e := New(texts, fakeRaster{}, refs, Options{
		Markers: fakeMarkers{payload: uri, ok: true},
		Ledger:  gw,
	})
	res := e.Verify(context.Background(), []byte(userDoc))
	if res.Verdict != Genuine || !res.Anchored {
		t.Fatalf("got %+v, want Genuine and anchored", res)
	}
}

func TestVerifyUnanchoredStaysGenuineInPermissive(t *testing.T) {
	texts, refs, uri := genuineFixture()
	e := New(texts, fakeRaster{}, refs, Options{
		Markers: fakeMarkers{payload: uri, ok: true},
		Ledger:  testkit.New(),
	})
	res := e.Verify(context.Background(), []byte(userDoc))
	if res.Verdict != Genuine || res.Anchored {
		t.Fatalf("got %+v, want unanchored Genuine", res)
	}
}

func TestVerifyLedgerErrorPermissiveKeepsVerdict(t *testing.T) {
	texts, refs, uri := genuineFixture()
	gw := testkit.New()
	gw.FailScans = true
	e := New(texts, fakeRaster{}, refs, Options{
		Markers: fakeMarkers{payload: uri, ok: true},
		Ledger:  gw,
	})
	res := e.Verify(context.Background(), []byte(userDoc))
	if res.Verdict != Genuine {
		t.Fatalf("Verdict = %q, want Genuine despite ledger failure", res.Verdict)
	}
}

func TestVerifyStrict(t *testing.T) {
	refBytes := []byte(refDoc)
	id := cidutil.CIDv1RawSHA256(refBytes)
	uri := "https://gateway.example/ipfs/" + id
	texts := fakeText{userDoc: certTxt, refDoc: certTxt}
	refs := fakeResolver{uri: refBytes}
	fp := fingerprint.Digest(certTxt)

	t.Run("anchored match is genuine", func(t *testing.T) {
		gw := testkit.New()
		gw.Seed(ledger.Delta{Key: ledger.KeyPDFHash, Value: fp})
		e := New(texts, fakeRaster{}, refs, Options{
			Markers: fakeMarkers{payload: uri, ok: true},
			Ledger:  gw,
			Mode:    compliance.Strict,
		})
		res := e.Verify(context.Background(), []byte(userDoc))
		if res.Verdict != Genuine || !res.Anchored || res.LocatorID != id {
			t.Fatalf("got %+v", res)
		}
	})

	t.Run("unanchored match is not genuine", func(t *testing.T) {
		e := New(texts, fakeRaster{}, refs, Options{
			Markers: fakeMarkers{payload: uri, ok: true},
			Ledger:  testkit.New(),
			Mode:    compliance.Strict,
		})
		res := e.Verify(context.Background(), []byte(userDoc))
		if res.Verdict != Fake || res.LocatorID != locator.Null {
			t.Fatalf("got %+v, want Fake/NULL", res)
		}
	})

	t.Run("opaque locator is invalid", func(t *testing.T) {
		e := New(texts, fakeRaster{}, fakeResolver{"https://g.example/certs/c.pdf": refBytes}, Options{
			Markers: fakeMarkers{payload: "https://g.example/certs/c.pdf", ok: true},
			Ledger:  testkit.New(),
			Mode:    compliance.Strict,
		})
		if res := e.Verify(context.Background(), []byte(userDoc)); res.Verdict != Invalid {
			t.Fatalf("got %+v, want INVALID", res)
		}
	})

	t.Run("content mismatch is invalid", func(t *testing.T) {
		otherID := cidutil.CIDv1RawSHA256([]byte("different content"))
		badURI := "https://gateway.example/ipfs/" + otherID
		e := New(texts, fakeRaster{}, fakeResolver{badURI: refBytes}, Options{
			Markers: fakeMarkers{payload: badURI, ok: true},
			Ledger:  testkit.New(),
			Mode:    compliance.Strict,
		})
		if res := e.Verify(context.Background(), []byte(userDoc)); res.Verdict != Invalid {
			t.Fatalf("got %+v, want INVALID", res)
		}
	})

	t.Run("ledger failure is invalid", func(t *testing.T) {
		gw := testkit.New()
		gw.FailScans = true
		e := New(texts, fakeRaster{}, refs, Options{
			Markers: fakeMarkers{payload: uri, ok: true},
			Ledger:  gw,
			Mode:    compliance.Strict,
		})
		if res := e.Verify(context.Background(), []byte(userDoc)); res.Verdict != Invalid {
			t.Fatalf("got %+v, want INVALID", res)
		}
	})
}

func TestAnchorWritesBothFingerprints(t *testing.T) {
	gw := testkit.New()
	texts := fakeText{userDoc: certTxt}
	e := New(texts, fakeRaster{}, nil, Options{
		Ledger:     gw,
		Recognizer: fakeRecognizer{text: "OCR reading of the page"},
	})

	txid, err := e.Anchor(context.Background(), []byte(userDoc))
	if err != nil {
		t.Fatalf("Anchor: %v", err)
	}
	if txid == "" || txid == ledger.FailedTxID {
		t.Fatalf("txid = %q", txid)
	}

	ctx := context.Background()
	if ok, _ := gw.ExistsForKey(ctx, ledger.KeyPDFHash, fingerprint.Digest(certTxt)); !ok {
		t.Fatalf("pdf fingerprint not anchored")
	}
	if ok, _ := gw.ExistsForKey(ctx, ledger.KeyOCRHash, fingerprint.Digest("OCR reading of the page")); !ok {
		t.Fatalf("ocr fingerprint not anchored")
	}
}

func TestAnchorDegradesWhenRecognitionFails(t *testing.T) {
	gw := testkit.New()
	texts := fakeText{userDoc: certTxt}
	var logs bytes.Buffer
	e := New(texts, fakeRaster{}, nil, Options{
		Ledger:     gw,
		Recognizer: fakeRecognizer{err: pdf.ErrRecognition},
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if _, err := e.Anchor(context.Background(), []byte(userDoc)); err != nil {
		t.Fatalf("Anchor should degrade to text-only, got %v", err)
	}
	ok, _ := gw.ExistsForKey(context.Background(), ledger.KeyPDFHash, fingerprint.Digest(certTxt))
	if !ok {
		t.Fatalf("pdf fingerprint not anchored after degraded write")
	}
	// The failure is a recognition failure and must be diagnosed as one.
	if !strings.Contains(logs.String(), "stage="+string(StageRecognize)) {
		t.Fatalf("recognition failure not logged under %s:\n%s", StageRecognize, logs.String())
	}
}

func TestAnchorErrors(t *testing.T) {
	texts := fakeText{userDoc: certTxt}

	t.Run("no ledger", func(t *testing.T) {
		e := New(texts, fakeRaster{}, nil, Options{})
		if _, err := e.Anchor(context.Background(), []byte(userDoc)); !errors.Is(err, ErrNoLedger) {
			t.Fatalf("err = %v, want ErrNoLedger", err)
		}
	})

	t.Run("extraction failure", func(t *testing.T) {
		e := New(texts, fakeRaster{}, nil, Options{Ledger: testkit.New()})
		_, err := e.Anchor(context.Background(), []byte("garbage"))
		if StageOf(err) != StageExtractUser {
			t.Fatalf("stage = %q, err = %v", StageOf(err), err)
		}
		if !errors.Is(err, pdf.ErrExtraction) {
			t.Fatalf("err = %v, want wrapped pdf.ErrExtraction", err)
		}
	})

	t.Run("ledger write failure", func(t *testing.T) {
		gw := testkit.New()
		gw.FailWrites = true
		e := New(texts, fakeRaster{}, nil, Options{Ledger: gw})
		_, err := e.Anchor(context.Background(), []byte(userDoc))
		if StageOf(err) != StageLedgerWrite || !errors.Is(err, ledger.ErrLedger) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestAnchoredLookup(t *testing.T) {
	gw := testkit.New()
	gw.Seed(ledger.Delta{Key: ledger.KeyOCRHash, Value: "feedbeef"})
	e := New(fakeText{}, fakeRaster{}, nil, Options{Ledger: gw})

	ok, err := e.Anchored(context.Background(), ledger.KeyOCRHash, "feedbeef")
	if err != nil || !ok {
		t.Fatalf("Anchored = %v, %v", ok, err)
	}
	ok, err = e.Anchored(context.Background(), ledger.KeyOCRHash, "deadbeef")
	if err != nil || ok {
		t.Fatalf("Anchored unexpected match: %v, %v", ok, err)
	}
}

func TestFingerprint(t *testing.T) {
	texts := fakeText{userDoc: certTxt}
	e := New(texts, fakeRaster{}, nil, Options{})

	fp, err := e.Fingerprint([]byte(userDoc))
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp != fingerprint.Digest(certTxt) {
		t.Fatalf("Fingerprint = %q", fp)
	}

	_, err = e.Fingerprint([]byte("unknown"))
	if StageOf(err) != StageExtractUser || !errors.Is(err, pdf.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
}
