// Package resolve retrieves reference documents addressed by a locator URI.
//
// Resolution is single-shot: one verification request performs at most one
// fetch attempt per marker. Reference documents are expected to be globally
// available through a content-addressed network, so a failed fetch usually
// means the document does not exist at that address, not that it is worth
// retrying.
package resolve

import (
	"context"
	"errors"
	"time"

	"xdao.co/certverify/cidutil"
	"xdao.co/certverify/locator"
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 5 * time.Second

// MaxDocumentBytes caps a fetched reference document.
const MaxDocumentBytes = 32 << 20

var (
	// ErrNotFound reports that no document exists at the locator address.
	ErrNotFound = errors.New("resolve: reference not found")

	// ErrRetrieval reports a network failure, timeout, or unexpected status.
	ErrRetrieval = errors.New("resolve: retrieval failed")

	// ErrIntegrity reports fetched bytes that do not re-derive the
	// locator's content identifier.
	ErrIntegrity = errors.New("resolve: content does not match locator")
)

// Resolver fetches the reference bytes behind a locator. Implementations
// honor ctx and their own bounded timeout; failures surface as errors
// wrapping the sentinels above and are never retried internally.
type Resolver interface {
	Resolve(ctx context.Context, loc locator.Locator) ([]byte, error)
}

// IsNotFound reports whether err means the reference does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// VerifyContent checks fetched bytes against the locator's content
// identifier. Callers that trust the address (permissive mode) skip this;
// strict verification refuses bytes that do not re-derive the identifier.
func VerifyContent(loc locator.Locator, data []byte) error {
	id, err := loc.ContentID()
	if err != nil {
		return err
	}
	if !cidutil.Matches(data, id) {
		return ErrIntegrity
	}
	return nil
}
