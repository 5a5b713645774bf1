// Package setup assembles a verification engine from a parsed config.
// It is shared by the daemons and the CLI so every entry point wires the
// same collaborators the same way.
package setup

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"xdao.co/certverify/config"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/ledger/algorand"
	"xdao.co/certverify/pdf/fitz"
	"xdao.co/certverify/pdf/ocr"
	"xdao.co/certverify/resolve"
	"xdao.co/certverify/verify"
)

// Engine builds the verification engine described by cfg. The ledger
// gateway is optional; without one the engine verifies but cannot anchor.
func Engine(cfg *config.Config, logger *slog.Logger) (*verify.Engine, error) {
	gateway, err := Ledger(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	resolver := resolve.NewHTTP(resolve.HTTPOptions{Timeout: cfg.Resolver.Timeout})

	opts := verify.Options{
		Ledger: gateway,
		Mode:   cfg.Resolver.Mode,
		Logger: logger,
	}
	if len(cfg.Resolver.OCRLanguages) > 0 {
		opts.Recognizer = ocr.New(cfg.Resolver.OCRLanguages...)
	}

	engine := fitz.New()
	return verify.New(engine, engine, resolver, opts), nil
}

// Ledger builds the Algorand gateway from cfg, or returns nil when no
// ledger endpoints are configured.
func Ledger(cfg config.Ledger) (ledger.Gateway, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.OwnerMnemonicFile == "" {
		return nil, fmt.Errorf("setup: ledger configured without Owner-Mnemonic-File")
	}
	raw, err := os.ReadFile(cfg.OwnerMnemonicFile)
	if err != nil {
		return nil, fmt.Errorf("setup: owner mnemonic: %w", err)
	}
	gateway, err := algorand.New(algorand.Options{
		AlgodURL:      cfg.AlgodURL,
		AlgodToken:    cfg.AlgodToken,
		IndexerURL:    cfg.IndexerURL,
		IndexerToken:  cfg.IndexerToken,
		AppID:         cfg.AppID,
		OwnerMnemonic: strings.TrimSpace(string(raw)),
	})
	if err != nil {
		return nil, err
	}
	return gateway, nil
}
