// Package locator interprets decoded marker payloads as reference-document
// locators.
package locator

import (
	"errors"
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
)

// Null is the sentinel identifier reported when no locator applies.
const Null = "NULL"

var (
	ErrEmpty      = errors.New("locator: empty payload")
	ErrInvalid    = errors.New("locator: payload is not an absolute URI")
	ErrNotContent = errors.New("locator: identifier is not a content identifier")
)

// Locator is a parsed marker payload: the network address of a reference
// document plus the identifier used for audit and display.
type Locator struct {
	URI string

	// ID is the trailing path segment of the URI. It identifies the
	// reference copy for audit output; integrity is carried by the
	// fingerprint comparison, never by this identifier.
	ID string
}

// Parse validates payload as an absolute URI and derives its identifier.
// The identifier is the trailing slash-separated segment of the payload,
// with no further structure imposed; strict callers tighten this with
// ContentID.
func Parse(payload string) (Locator, error) {
	if strings.TrimSpace(payload) == "" {
		return Locator{}, ErrEmpty
	}
	u, err := url.Parse(payload)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Locator{}, ErrInvalid
	}
	parts := strings.Split(payload, "/")
	return Locator{URI: payload, ID: parts[len(parts)-1]}, nil
}

// ContentID decodes the locator's identifier as a CID. Content-addressed
// locators carry the reference document's identity in this segment; strict
// verification refuses locators that do not.
func (l Locator) ContentID() (cid.Cid, error) {
	id, err := cid.Decode(l.ID)
	if err != nil || !id.Defined() {
		return cid.Undef, ErrNotContent
	}
	return id, nil
}
