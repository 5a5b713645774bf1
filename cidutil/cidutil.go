// Package cidutil derives content identifiers for reference documents.
//
// The identifier contract is CIDv1 with the "raw" multicodec and a sha2-256
// multihash, matching what IPFS gateways report for raw block uploads.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns the CIDv1 (raw + sha2-256) string for data.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns the CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid parameters; with SHA2_256
		// and default length this is unreachable.
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Matches reports whether data re-derives id under the identifier contract.
// Reachability is not validity; a fetched document only counts as the
// referenced document when its bytes match its identifier.
func Matches(data []byte, id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	got, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
