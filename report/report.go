// Package report renders and verifies canonical verification receipts.
//
// A receipt binds a verdict to the submitted document's fingerprint and the
// locator of the reference copy it was compared against, in a line-based
// canonical form that can be signed and re-verified offline. Canonical form
// is LF-only, BOM-free, with no trailing whitespace and a fixed section
// order: META, SUBJECT, RESULT, CRYPTO.
package report

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/certverify/keys"
	"xdao.co/certverify/verify"
)

const (
	Preamble  = "-----BEGIN CERTVERIFY RECEIPT-----"
	Postamble = "-----END CERTVERIFY RECEIPT-----"
)

var sectionOrder = []string{"META", "SUBJECT", "RESULT", "CRYPTO"}

type RenderOptions struct {
	// ReporterID names the verifying party. Empty means the reference id.
	ReporterID string

	// VerifiedAt is informational; zero means omit.
	VerifiedAt time.Time

	// SignerKey is the rendered public half ("ed25519:..." or
	// "dilithium3:..."). Empty leaves the receipt unsigned.
	SignerKey string

	// HashAlg selects the digest under the signature. Empty means sha256.
	HashAlg string

	// Exactly one private key matching SignerKey's algorithm must be set
	// when SignerKey is non-empty.
	Ed25519Key    ed25519.PrivateKey
	Dilithium3Key *mode3.PrivateKey
}

// Render produces a canonical receipt for one verification outcome.
// fingerprintHex is the submitted document's fingerprint; it may be empty
// when the verdict is Invalid and no fingerprint was computed.
func Render(res verify.Result, fingerprintHex string, opts RenderOptions) ([]byte, error) {
	reporterID := opts.ReporterID
	if reporterID == "" {
		reporterID = "xdao-certverify-reference"
	}
	hashAlg := opts.HashAlg
	if hashAlg == "" {
		hashAlg = "sha256"
	}

	meta := []string{
		"Reporter-ID: " + reporterID,
		"Spec: certverify-receipt-1",
		"Version: 1",
	}
	if !opts.VerifiedAt.IsZero() {
		meta = append(meta, "Verified-At: "+opts.VerifiedAt.UTC().Format(time.RFC3339))
	}
	sort.Strings(meta)

	subject := []string{
		"Fingerprint: " + fingerprintHex,
		"Locator-ID: " + res.LocatorID,
	}
	result := []string{
		fmt.Sprintf("Anchored: %t", res.Anchored),
		"Verdict: " + string(res.Verdict),
	}

	var crypto []string
	if opts.SignerKey != "" {
		crypto = []string{
			"Hash-Alg: " + hashAlg,
			"Signature-Alg: " + algOf(opts.SignerKey),
			"Signer-Key: " + opts.SignerKey,
		}
	}

	render := func(signature string) []byte {
		var sb strings.Builder
		sb.WriteString(Preamble)
		sb.WriteString("\n")
		writeSection(&sb, "META", meta)
		writeSection(&sb, "SUBJECT", subject)
		writeSection(&sb, "RESULT", result)
		lines := crypto
		if signature != "" {
			lines = append(append([]string(nil), crypto...), "Signature: "+signature)
			sort.Strings(lines)
		}
		writeSection(&sb, "CRYPTO", lines)
		sb.WriteString(Postamble)
		sb.WriteString("\n")
		return []byte(sb.String())
	}

	if opts.SignerKey == "" {
		return render(""), nil
	}

	// The signature scope is the canonical receipt without its own line.
	scope := render("")
	signature, err := sign(scope, opts, hashAlg)
	if err != nil {
		return nil, err
	}
	return render(signature), nil
}

func writeSection(sb *strings.Builder, name string, lines []string) {
	sb.WriteString(name)
	sb.WriteString("\n")
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func algOf(signerKey string) string {
	if i := strings.Index(signerKey, ":"); i > 0 {
		return signerKey[:i]
	}
	return ""
}

func sign(scope []byte, opts RenderOptions, hashAlg string) (string, error) {
	switch algOf(opts.SignerKey) {
	case "ed25519":
		if opts.Ed25519Key == nil {
			return "", errors.New("report: missing ed25519 private key")
		}
		if hashAlg != "sha256" {
			return "", fmt.Errorf("report: ed25519 receipts use sha256, not %q", hashAlg)
		}
		return keys.SignEd25519SHA256(scope, opts.Ed25519Key), nil
	case "dilithium3":
		if opts.Dilithium3Key == nil {
			return "", errors.New("report: missing dilithium3 private key")
		}
		return keys.SignDilithium3(scope, hashAlg, opts.Dilithium3Key)
	default:
		return "", fmt.Errorf("report: unsupported signer key %q", opts.SignerKey)
	}
}
