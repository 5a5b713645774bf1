// Package keys provides the signing primitives and local key storage used
// by verification receipts.
//
// Signer keys are rendered as "<alg>:" + base64(public key); supported
// algorithms are ed25519 and dilithium3.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignEd25519SHA256 returns a base64 signature over sha256(message).
func SignEd25519SHA256(message []byte, privateKey ed25519.PrivateKey) string {
	digest := sha256.Sum256(message)
	sig := ed25519.Sign(privateKey, digest[:])
	return base64.StdEncoding.EncodeToString(sig)
}

// VerifyEd25519SHA256 checks a base64 signature over sha256(message).
func VerifyEd25519SHA256(message []byte, sigB64 string, publicKey ed25519.PublicKey) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, errors.New("invalid signature length")
	}
	digest := sha256.Sum256(message)
	return ed25519.Verify(publicKey, digest[:], sig), nil
}

// SignDilithium3 returns a base64 dilithium3 signature over hash(message).
// hashAlg must be one of: sha256, sha512, sha3-256.
func SignDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", errors.New("missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return "", err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyDilithium3 checks a base64 dilithium3 signature over hash(message).
func VerifyDilithium3(message []byte, hashAlg, sigB64 string, publicKey *mode3.PublicKey) (bool, error) {
	if publicKey == nil {
		return false, errors.New("missing public key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return false, err
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != mode3.SignatureSize {
		return false, errors.New("invalid signature length")
	}
	return mode3.Verify(publicKey, digest, sig), nil
}

// GenerateDilithium3Keypair returns a new dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// SignerKeyEd25519 renders an ed25519 public key as a signer key string.
func SignerKeyEd25519(publicKey ed25519.PublicKey) string {
	return "ed25519:" + base64.StdEncoding.EncodeToString(publicKey)
}

// SignerKeyDilithium3 renders a dilithium3 public key as a signer key string.
func SignerKeyDilithium3(publicKey *mode3.PublicKey) string {
	return "dilithium3:" + base64.StdEncoding.EncodeToString(publicKey.Bytes())
}

// SignerKeyFromSeed returns the ed25519 signer key string for a seed.
func SignerKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	return SignerKeyEd25519(priv.Public().(ed25519.PublicKey))
}

func parseSignerKey(s, wantAlg string) ([]byte, error) {
	prefix := wantAlg + ":"
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("unsupported signer key %q", s)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, prefix))
	if err != nil {
		return nil, fmt.Errorf("invalid signer key encoding: %w", err)
	}
	return raw, nil
}

// ParseEd25519SignerKey decodes an "ed25519:..." signer key string.
func ParseEd25519SignerKey(s string) (ed25519.PublicKey, error) {
	raw, err := parseSignerKey(s, "ed25519")
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 signer key length")
	}
	return ed25519.PublicKey(raw), nil
}

// ParseDilithium3SignerKey decodes a "dilithium3:..." signer key string.
func ParseDilithium3SignerKey(s string) (*mode3.PublicKey, error) {
	raw, err := parseSignerKey(s, "dilithium3")
	if err != nil {
		return nil, err
	}
	if len(raw) != mode3.PublicKeySize {
		return nil, errors.New("invalid dilithium3 signer key length")
	}
	var buf [mode3.PublicKeySize]byte
	copy(buf[:], raw)
	var pk mode3.PublicKey
	pk.Unpack(&buf)
	return &pk, nil
}
