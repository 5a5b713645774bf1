package verify

import (
	"context"
	"io"
	"log/slog"

	"xdao.co/certverify/compliance"
	"xdao.co/certverify/fingerprint"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/locator"
	"xdao.co/certverify/marker"
	"xdao.co/certverify/pdf"
	"xdao.co/certverify/resolve"
)

// Engine runs the verification pipeline. Collaborators are injected at
// construction and read-only afterwards; every Verify call is independent,
// so one engine serves concurrent requests without locking.
type Engine struct {
	text       pdf.TextExtractor
	raster     pdf.Rasterizer
	resolver   resolve.Resolver
	markers    MarkerExtractor
	gateway    ledger.Gateway
	recognizer pdf.TextRecognizer
	mode       compliance.Mode
	log        *slog.Logger
	dpi        int
}

type Options struct {
	// Markers overrides the marker extractor. Nil means marker.Extractor.
	Markers MarkerExtractor

	// Ledger enables the anchoring check and the Anchor write path.
	// Nil disables both.
	Ledger ledger.Gateway

	// Recognizer enables the OCR fingerprint on the Anchor path.
	Recognizer pdf.TextRecognizer

	Mode compliance.Mode

	// Logger receives stage diagnostics. Nil means silent.
	Logger *slog.Logger

	// DPI overrides the raster resolution. Zero means pdf.DPI.
	DPI int
}

func New(text pdf.TextExtractor, raster pdf.Rasterizer, resolver resolve.Resolver, opts Options) *Engine {
	markers := opts.Markers
	if markers == nil {
		markers = marker.Extractor{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = pdf.DPI
	}
	return &Engine{
		text:       text,
		raster:     raster,
		resolver:   resolver,
		markers:    markers,
		gateway:    opts.Ledger,
		recognizer: opts.Recognizer,
		mode:       opts.Mode,
		log:        log,
		dpi:        dpi,
	}
}

// Verify runs the full pipeline over one submitted document. Failures never
// escape as errors: every upstream failure resolves to Invalid, and only a
// completed fingerprint comparison can produce Genuine or Fake.
func (e *Engine) Verify(ctx context.Context, raw []byte) Result {
	invalid := Result{Verdict: Invalid, LocatorID: locator.Null}

	userText, err := e.text.FirstPageText(raw)
	if err != nil {
		e.fail(StageExtractUser, err)
		return invalid
	}
	userFP := fingerprint.Digest(userText)

	page, err := e.raster.RasterizeFirstPage(raw, e.dpi)
	if err != nil {
		e.fail(StageRasterize, err)
		return invalid
	}

	m, ok := e.markers.Extract(page)
	if !ok {
		e.log.Info("verification terminal", "stage", StageLocateMarker, "reason", "no decodable marker")
		return invalid
	}
	loc, err := locator.Parse(m.Payload)
	if err != nil {
		e.fail(StageLocateMarker, err)
		return invalid
	}
	if e.mode == compliance.Strict {
		if _, err := loc.ContentID(); err != nil {
			e.fail(StageLocateMarker, err)
			return invalid
		}
	}

	refBytes, err := e.resolver.Resolve(ctx, loc)
	if err != nil {
		e.fail(StageRetrieve, err)
		return invalid
	}
	if e.mode == compliance.Strict {
		if err := resolve.VerifyContent(loc, refBytes); err != nil {
			e.fail(StageRetrieve, err)
			return invalid
		}
	}

	refText, err := e.text.FirstPageText(refBytes)
	if err != nil {
		e.fail(StageExtractReference, err)
		return invalid
	}
	refFP := fingerprint.Digest(refText)

	res := Result{Verdict: Fake, LocatorID: locator.Null}
	if userFP == refFP {
		res = Result{Verdict: Genuine, LocatorID: loc.ID}
	}
	e.log.Info("fingerprints compared",
		"stage", StageCompare, "verdict", res.Verdict, "locator", loc.ID)

	if e.gateway == nil {
		return res
	}

	anchored, err := e.gateway.ExistsForKey(ctx, ledger.KeyPDFHash, userFP)
	if err != nil {
		e.fail(StageLedgerCheck, err)
		if e.mode == compliance.Strict {
			// Strict compliance cannot certify without the ledger.
			return invalid
		}
		return res
	}
	res.Anchored = anchored
	if e.mode == compliance.Strict && res.Verdict == Genuine && !anchored {
		// A matching but never-anchored fingerprint is not certifiable.
		return Result{Verdict: Fake, LocatorID: locator.Null}
	}
	return res
}

// Anchor fingerprints the document and records the fingerprint pair on the
// ledger, returning the transaction id. The PDF-text fingerprint is always
// written; the OCR fingerprint is added when a recognizer is configured and
// recognition succeeds.
func (e *Engine) Anchor(ctx context.Context, raw []byte) (string, error) {
	if e.gateway == nil {
		return "", ErrNoLedger
	}

	text, err := e.text.FirstPageText(raw)
	if err != nil {
		return "", &Error{Stage: StageExtractUser, Cause: err}
	}
	pdfFP := fingerprint.Digest(text)

	var ocrFP string
	if e.recognizer != nil {
		// A failed OCR pass degrades the write to text-only rather than
		// blocking anchoring.
		if page, rerr := e.raster.RasterizeFirstPage(raw, e.dpi); rerr != nil {
			e.fail(StageRasterize, rerr)
		} else if recognized, rerr := e.recognizer.RecognizeText(page); rerr != nil {
			e.fail(StageRecognize, rerr)
		} else {
			ocrFP = fingerprint.Digest(recognized)
		}
	}

	txid, err := e.gateway.Write(ctx, pdfFP, ocrFP)
	if err != nil {
		return "", &Error{Stage: StageLedgerWrite, Cause: err}
	}
	e.log.Info("fingerprints anchored", "stage", StageLedgerWrite, "txid", txid)
	return txid, nil
}

// Fingerprint computes the document's text fingerprint without running the
// rest of the pipeline.
func (e *Engine) Fingerprint(raw []byte) (string, error) {
	text, err := e.text.FirstPageText(raw)
	if err != nil {
		return "", &Error{Stage: StageExtractUser, Cause: err}
	}
	return fingerprint.Digest(text), nil
}

// Anchored reports whether fingerprintValue was recorded under key.
func (e *Engine) Anchored(ctx context.Context, key, fingerprintValue string) (bool, error) {
	if e.gateway == nil {
		return false, ErrNoLedger
	}
	return e.gateway.ExistsForKey(ctx, key, fingerprintValue)
}

func (e *Engine) fail(stage Stage, err error) {
	e.log.Warn("verification stage failed", "stage", stage, "err", err)
}
