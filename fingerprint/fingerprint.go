// Package fingerprint produces the deterministic content digest used to
// compare certificate documents.
//
// A fingerprint is a pure function of the document's extracted first-page
// text: the text is normalized, then digested. Both sides of a comparison
// (submitted document and reference copy) must use the same normalization
// and digest or legitimate matches fail.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// HexLen is the length of a rendered fingerprint in hex characters.
const HexLen = 2 * md5.Size

var stripper = strings.NewReplacer("\n", "", " ", "", "\t", "")

// Normalize removes every newline, space, and tab character from extracted
// text, then trims residual leading/trailing whitespace. Normalizing
// already-normalized text is a no-op.
func Normalize(text string) string {
	return strings.TrimSpace(stripper.Replace(text))
}

// Digest returns the lowercase hex fingerprint of text.
//
// The digest is an unkeyed 128-bit MD5 over the UTF-8 bytes of the
// normalized text. Fingerprints already anchored on the ledger use this
// rendering, so the algorithm is part of the recorded contract and cannot
// change without re-anchoring every certificate.
func Digest(text string) string {
	sum := md5.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
