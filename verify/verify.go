// Package verify implements the certificate verification pipeline: it turns
// raw document bytes into a terminal Genuine, Fake, or Invalid verdict.
package verify

import (
	"errors"
	"image"

	"xdao.co/certverify/marker"
)

// Verdict classifies one verification request. The spellings are part of
// the service wire contract.
type Verdict string

const (
	Genuine Verdict = "Genuine"
	Fake    Verdict = "Fake"
	Invalid Verdict = "INVALID"
)

// Result is the terminal outcome of one verification request.
type Result struct {
	Verdict Verdict

	// LocatorID identifies the reference copy that was compared against,
	// or locator.Null when no comparison happened or the verdict is not
	// Genuine. Audit/display only; it carries no integrity.
	LocatorID string

	// Anchored reports whether the submitted document's fingerprint was
	// found in the ledger history. Informational under permissive
	// compliance; under strict compliance Genuine requires it.
	Anchored bool
}

// Stage names a pipeline phase for diagnostics. Every stage is a possible
// exit point to Invalid.
type Stage string

const (
	StageExtractUser      Stage = "ExtractUser"
	StageRasterize        Stage = "Rasterize"
	StageLocateMarker     Stage = "LocateMarker"
	StageRetrieve         Stage = "Retrieve"
	StageExtractReference Stage = "ExtractReference"
	StageRecognize        Stage = "Recognize"
	StageCompare          Stage = "Compare"
	StageLedgerCheck      Stage = "LedgerCheck"
	StageLedgerWrite      Stage = "LedgerWrite"
)

// Error tags a pipeline failure with the stage that produced it. Pipeline
// errors are handled inside the engine and logged; only the anchoring path
// returns them to callers.
type Error struct {
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return string(e.Stage) + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// StageOf returns the pipeline stage a returned error failed in, or "".
func StageOf(err error) Stage {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Stage
}

// ErrNoLedger reports an anchoring call on an engine with no gateway bound.
var ErrNoLedger = errors.New("verify: no ledger gateway configured")

// MarkerExtractor locates and decodes the page marker. The default is
// marker.Extractor; tests substitute deterministic fakes.
type MarkerExtractor interface {
	Extract(img image.Image) (marker.Marker, bool)
}
