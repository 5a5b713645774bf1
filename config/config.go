// Package config implements parsing for the daemon configuration document.
//
// The format is a framed, line-based text document. Canonical form is
// enforced on read so a deployed config has exactly one accepted
// serialization.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"xdao.co/certverify/compliance"
	"xdao.co/certverify/resolve"
)

const (
	preamble  = "-----BEGIN CERTVERIFY CONFIG-----"
	postamble = "-----END CERTVERIFY CONFIG-----"
)

type Config struct {
	Meta     map[string]string
	Ledger   Ledger
	Resolver Resolver
}

type Ledger struct {
	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string
	AppID        uint64

	// OwnerMnemonicFile points at the file holding the writing account's
	// mnemonic. The mnemonic itself never appears in the config document.
	OwnerMnemonicFile string
}

type Resolver struct {
	Timeout  time.Duration
	MaxBytes int64
	Mode     compliance.Mode

	// OCRLanguages enables the OCR fingerprint on the anchoring path.
	// Empty disables OCR.
	OCRLanguages []string
}

// Default returns the settings used when no config document is given:
// permissive compliance, default resolver limits, no ledger, no OCR.
func Default() *Config {
	return &Config{
		Meta: make(map[string]string),
		Resolver: Resolver{
			Timeout:  resolve.DefaultTimeout,
			MaxBytes: resolve.MaxDocumentBytes,
			Mode:     compliance.Permissive,
		},
	}
}

// Load reads and parses the config document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a config document from bytes.
func Parse(data []byte) (*Config, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}

	if !bytes.HasPrefix(data, []byte(preamble)) {
		return nil, errors.New("missing config preamble")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(data), []byte(postamble)) {
		return nil, errors.New("missing config postamble")
	}

	sections := map[string]bool{"META": true, "LEDGER": true, "RESOLVER": true}
	reader := bufio.NewReader(bytes.NewReader(data))
	var currSection string
	cfg := Default()
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err.Error() != "EOF" {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if sections[line] {
			currSection = line
			if err != nil {
				break
			}
			continue
		}
		if key, value, ok := strings.Cut(line, ": "); ok {
			switch currSection {
			case "META":
				cfg.Meta[key] = value
			case "LEDGER":
				if lErr := cfg.Ledger.set(key, value); lErr != nil {
					return nil, lErr
				}
			case "RESOLVER":
				if rErr := cfg.Resolver.set(key, value); rErr != nil {
					return nil, rErr
				}
			}
		}
		if err != nil {
			break
		}
	}
	return cfg, nil
}

func (l *Ledger) set(key, value string) error {
	switch key {
	case "Algod-URL":
		l.AlgodURL = value
	case "Algod-Token":
		l.AlgodToken = value
	case "Indexer-URL":
		l.IndexerURL = value
	case "Indexer-Token":
		l.IndexerToken = value
	case "App-ID":
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			return errors.New("invalid App-ID")
		}
		l.AppID = id
	case "Owner-Mnemonic-File":
		l.OwnerMnemonicFile = value
	default:
		return errors.New("unknown LEDGER key " + strconv.Quote(key))
	}
	return nil
}

func (r *Resolver) set(key, value string) error {
	switch key {
	case "Timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return errors.New("invalid Timeout")
		}
		r.Timeout = d
	case "Max-Bytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return errors.New("invalid Max-Bytes")
		}
		r.MaxBytes = n
	case "Mode":
		m, err := compliance.ParseMode(value)
		if err != nil {
			return err
		}
		r.Mode = m
	case "OCR-Languages":
		r.OCRLanguages = strings.Fields(value)
		if len(r.OCRLanguages) == 0 {
			return errors.New("invalid OCR-Languages")
		}
	default:
		return errors.New("unknown RESOLVER key " + strconv.Quote(key))
	}
	return nil
}

// Enabled reports whether the ledger is configured at all. A config with
// no LEDGER endpoints runs the verifier without anchoring.
func (l Ledger) Enabled() bool {
	return l.AlgodURL != "" || l.IndexerURL != ""
}
