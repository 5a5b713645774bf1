// Package model defines stable boundary types for API layers.
//
// The JSON field spellings below are a published contract consumed by
// existing clients and must not change. These structs are the only types
// intended for direct JSON serialization by consumers.
package model

import (
	"xdao.co/certverify/locator"
	"xdao.co/certverify/verify"
)

// VerifyResponse is the wire form of one verification outcome.
type VerifyResponse struct {
	Result       string `json:"Result"`
	IPFSFileHash string `json:"IPFS_file_hash"`
}

// FromResult projects an engine result onto the wire contract. A missing
// locator id is reported with the null sentinel rather than an empty string.
func FromResult(res verify.Result) VerifyResponse {
	id := res.LocatorID
	if id == "" {
		id = locator.Null
	}
	return VerifyResponse{
		Result:       string(res.Verdict),
		IPFSFileHash: id,
	}
}

// WriteResponse is the wire form of one anchoring attempt. Exactly one of
// Success or Err is set.
type WriteResponse struct {
	Success string `json:"Success,omitempty"`
	Err     string `json:"ERR,omitempty"`
}

func WriteSucceeded(txID string) WriteResponse {
	return WriteResponse{Success: txID}
}

func WriteFailed(message string) WriteResponse {
	return WriteResponse{Err: message}
}
