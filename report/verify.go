package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"xdao.co/certverify/keys"
	"xdao.co/certverify/verify"
)

var (
	ErrNotCanonical = errors.New("report: not canonical receipt bytes")
	ErrUnsigned     = errors.New("report: receipt is unsigned")
)

// Receipt is a parsed canonical receipt.
type Receipt struct {
	Meta        map[string]string
	Fingerprint string
	LocatorID   string
	Verdict     verify.Verdict
	Anchored    bool

	SignatureAlg string
	HashAlg      string
	SignerKey    string
	Signature    string
}

// Parse decodes a receipt, enforcing canonical form byte for byte. Any
// CR, BOM, trailing whitespace, reordered section, or unsorted line is
// rejected so that a signature verified over these bytes is a signature
// over exactly one serialization.
func Parse(raw []byte) (*Receipt, error) {
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		return nil, ErrNotCanonical
	}
	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, fmt.Errorf("%w: byte order mark", ErrNotCanonical)
	}
	if bytes.ContainsRune(raw, '\r') {
		return nil, fmt.Errorf("%w: carriage return", ErrNotCanonical)
	}

	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	for _, l := range lines {
		if l != strings.TrimRight(l, " \t") {
			return nil, fmt.Errorf("%w: trailing whitespace", ErrNotCanonical)
		}
	}
	if len(lines) < 2 || lines[0] != Preamble || lines[len(lines)-1] != Postamble {
		return nil, fmt.Errorf("%w: missing framing", ErrNotCanonical)
	}

	sections, err := splitSections(lines[1 : len(lines)-1])
	if err != nil {
		return nil, err
	}

	r := &Receipt{Meta: map[string]string{}}
	for _, kv := range sections["META"] {
		r.Meta[kv[0]] = kv[1]
	}
	for _, kv := range sections["SUBJECT"] {
		switch kv[0] {
		case "Fingerprint":
			r.Fingerprint = kv[1]
		case "Locator-ID":
			r.LocatorID = kv[1]
		}
	}
	for _, kv := range sections["RESULT"] {
		switch kv[0] {
		case "Verdict":
			r.Verdict = verify.Verdict(kv[1])
		case "Anchored":
			b, err := strconv.ParseBool(kv[1])
			if err != nil {
				return nil, fmt.Errorf("%w: bad Anchored value %q", ErrNotCanonical, kv[1])
			}
			r.Anchored = b
		}
	}
	for _, kv := range sections["CRYPTO"] {
		switch kv[0] {
		case "Signature-Alg":
			r.SignatureAlg = kv[1]
		case "Hash-Alg":
			r.HashAlg = kv[1]
		case "Signer-Key":
			r.SignerKey = kv[1]
		case "Signature":
			r.Signature = kv[1]
		}
	}
	return r, nil
}

// splitSections walks the body lines between the framing markers. Each
// section is a header line, zero or more sorted "Key: value" lines, then
// exactly one blank line. Section order is fixed.
func splitSections(body []string) (map[string][][2]string, error) {
	out := make(map[string][][2]string, len(sectionOrder))
	i := 0
	for _, name := range sectionOrder {
		if i >= len(body) || body[i] != name {
			return nil, fmt.Errorf("%w: expected section %s", ErrNotCanonical, name)
		}
		i++
		var kvs [][2]string
		prev := ""
		for i < len(body) && body[i] != "" {
			line := body[i]
			k, v, ok := strings.Cut(line, ": ")
			if !ok || k == "" {
				return nil, fmt.Errorf("%w: malformed line %q", ErrNotCanonical, line)
			}
			if prev != "" && line <= prev {
				return nil, fmt.Errorf("%w: unsorted line %q", ErrNotCanonical, line)
			}
			prev = line
			kvs = append(kvs, [2]string{k, v})
			i++
		}
		if i >= len(body) || body[i] != "" {
			return nil, fmt.Errorf("%w: section %s not terminated", ErrNotCanonical, name)
		}
		i++
		out[name] = kvs
	}
	if i != len(body) {
		return nil, fmt.Errorf("%w: trailing content", ErrNotCanonical)
	}
	return out, nil
}

// VerifySignature checks the receipt's signature against its own bytes.
// The scope is the canonical receipt with the Signature line removed.
func VerifySignature(raw []byte) (bool, error) {
	r, err := Parse(raw)
	if err != nil {
		return false, err
	}
	if r.Signature == "" || r.SignerKey == "" || r.SignatureAlg == "" || r.HashAlg == "" {
		return false, ErrUnsigned
	}

	scope := withoutSignatureLine(raw)
	switch r.SignatureAlg {
	case "ed25519":
		if r.HashAlg != "sha256" {
			return false, fmt.Errorf("report: ed25519 receipts use sha256, not %q", r.HashAlg)
		}
		pub, err := keys.ParseEd25519SignerKey(r.SignerKey)
		if err != nil {
			return false, err
		}
		return keys.VerifyEd25519SHA256(scope, r.Signature, pub)
	case "dilithium3":
		pub, err := keys.ParseDilithium3SignerKey(r.SignerKey)
		if err != nil {
			return false, err
		}
		return keys.VerifyDilithium3(scope, r.HashAlg, r.Signature, pub)
	default:
		return false, fmt.Errorf("report: unsupported signature alg %q", r.SignatureAlg)
	}
}

func withoutSignatureLine(raw []byte) []byte {
	lines := strings.Split(string(raw), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, "Signature: ") {
			continue
		}
		kept = append(kept, l)
	}
	return []byte(strings.Join(kept, "\n"))
}
