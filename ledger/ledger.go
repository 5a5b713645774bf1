// Package ledger defines the append-and-lookup contract against the
// external certificate ledger.
//
// The ledger itself (consensus, contract execution) belongs to an external
// collaborator; this package only describes the narrow read/write surface
// the verification core uses. A gateway is bound to the single owner account
// whose state deltas it inspects; it is not a general ledger client.
package ledger

import (
	"context"
	"errors"
)

// State keys the certificate contract records. Each holds the most recently
// written fingerprint value for the owner account.
const (
	KeyPDFHash = "pdf_data_hash"
	KeyOCRHash = "ocr_data_hash"
)

// FailedTxID is the sentinel surfaced to service callers in place of a
// transaction id when a write fails. Wire-level callers compare against it
// instead of branching on transported errors.
const FailedTxID = "0"

var (
	// ErrEmptyWrite rejects a write carrying no usable fingerprint data.
	// Validation happens before any ledger mutation.
	ErrEmptyWrite = errors.New("ledger: both fingerprints empty")

	// ErrLedger reports a failed ledger-side call.
	ErrLedger = errors.New("ledger: call failed")
)

// Delta is one key/value state change recorded by a ledger transaction.
// Both fields are decoded exactly once (base64 transport form to UTF-8) at
// the gateway boundary and never re-decoded downstream.
type Delta struct {
	Key   string
	Value string
}

// Gateway is the read/write surface over the ledger.
type Gateway interface {
	// Write records a fingerprint pair against the owner account and
	// returns the transaction id. At least one fingerprint must be
	// non-empty or the write fails with ErrEmptyWrite.
	Write(ctx context.Context, pdfFingerprint, ocrFingerprint string) (string, error)

	// ExistsForKey scans the owner account's full transaction history and
	// reports whether any recorded state delta for key carries value.
	// The scan is linear with no cursor retained between calls;
	// certificate volumes are low enough that no index is kept.
	ExistsForKey(ctx context.Context, key, value string) (bool, error)
}

// IsEmptyWrite reports whether err is the empty-write validation failure.
func IsEmptyWrite(err error) bool { return errors.Is(err, ErrEmptyWrite) }
