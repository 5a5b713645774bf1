package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"xdao.co/certverify/config"
	"xdao.co/certverify/fingerprint"
	"xdao.co/certverify/internal/setup"
	"xdao.co/certverify/keys"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/model"
	"xdao.co/certverify/pdf/fitz"
	"xdao.co/certverify/report"
	"xdao.co/certverify/verify"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "fingerprint":
		return cmdFingerprint(args[1:], out, errOut)
	case "anchor":
		return cmdAnchor(args[1:], out, errOut)
	case "exists":
		return cmdExists(args[1:], out, errOut)
	case "report":
		return cmdReport(args[1:], out, errOut)
	case "report-verify":
		return cmdReportVerify(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-certverify: certificate verification CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-certverify verify [--config <file>] [--verbose] <document.pdf>")
	fmt.Fprintln(w, "  xdao-certverify fingerprint <document.pdf>")
	fmt.Fprintln(w, "  xdao-certverify anchor --config <file> <document.pdf>")
	fmt.Fprintln(w, "  xdao-certverify exists --config <file> [--key pdf_data_hash|ocr_data_hash] --value <hex>")
	fmt.Fprintln(w, "  xdao-certverify report [--config <file>] [--signer <name>] <document.pdf>")
	fmt.Fprintln(w, "  xdao-certverify report-verify <receipt>")
	fmt.Fprintln(w, "  xdao-certverify key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-certverify key list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - verify prints the service JSON (Result, IPFS_file_hash) to stdout")
	fmt.Fprintln(w, "  - anchoring needs a config with a LEDGER section")
	fmt.Fprintln(w, "  - report writes canonical receipt bytes to stdout; --signer signs them")
	fmt.Fprintln(w, "  - keys are stored under ~/.certverify/keys (0600 seed files)")
}

func loadConfig(path string, errOut io.Writer) (*config.Config, int) {
	if path == "" {
		return config.Default(), 0
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return nil, 1
	}
	return cfg, 0
}

func buildEngine(cfgPath string, verbose bool, errOut io.Writer) (*verify.Engine, int) {
	cfg, code := loadConfig(cfgPath, errOut)
	if code != 0 {
		return nil, code
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(errOut, nil))
	}
	engine, err := setup.Engine(cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "setup: %v\n", err)
		return nil, 1
	}
	return engine, 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Config document")
	verbose := fs.Bool("verbose", false, "Log pipeline stages to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-certverify verify [--config <file>] [--verbose] <document.pdf>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	engine, code := buildEngine(*cfgPath, *verbose, errOut)
	if code != 0 {
		return code
	}
	res := engine.Verify(context.Background(), raw)

	enc := json.NewEncoder(out)
	if err := enc.Encode(model.FromResult(res)); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	if res.Verdict != verify.Genuine {
		return 1
	}
	return 0
}

func cmdFingerprint(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-certverify fingerprint <document.pdf>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	text, err := fitz.New().FirstPageText(raw)
	if err != nil {
		fmt.Fprintf(errOut, "extract: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, fingerprint.Digest(text))
	return 0
}

func cmdAnchor(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("anchor", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Config document")
	verbose := fs.Bool("verbose", false, "Log pipeline stages to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *cfgPath == "" {
		fmt.Fprintln(errOut, "missing --config (anchoring needs a LEDGER section)")
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-certverify anchor --config <file> <document.pdf>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	engine, code := buildEngine(*cfgPath, *verbose, errOut)
	if code != 0 {
		return code
	}
	txID, err := engine.Anchor(context.Background(), raw)
	if err != nil {
		fmt.Fprintf(errOut, "anchor: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, txID)
	return 0
}

func cmdExists(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("exists", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Config document")
	key := fs.String("key", ledger.KeyPDFHash, "Ledger state key")
	value := fs.String("value", "", "Fingerprint hex to look up")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *cfgPath == "" {
		fmt.Fprintln(errOut, "missing --config")
		return 2
	}
	if *value == "" {
		fmt.Fprintln(errOut, "missing --value")
		return 2
	}
	if *key != ledger.KeyPDFHash && *key != ledger.KeyOCRHash {
		fmt.Fprintf(errOut, "invalid --key (expected %s or %s)\n", ledger.KeyPDFHash, ledger.KeyOCRHash)
		return 2
	}

	engine, code := buildEngine(*cfgPath, false, errOut)
	if code != 0 {
		return code
	}
	found, err := engine.Anchored(context.Background(), *key, *value)
	if err != nil {
		fmt.Fprintf(errOut, "exists: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, found)
	if !found {
		return 1
	}
	return 0
}

func cmdReport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Config document")
	signer := fs.String("signer", "", "Stored key name to sign with (from 'key init')")
	reporterID := fs.String("reporter-id", "", "Reporter-ID recorded in the receipt")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-certverify report [--config <file>] [--signer <name>] <document.pdf>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	engine, code := buildEngine(*cfgPath, false, errOut)
	if code != 0 {
		return code
	}
	res := engine.Verify(context.Background(), raw)

	var fp string
	if text, terr := fitz.New().FirstPageText(raw); terr == nil {
		fp = fingerprint.Digest(text)
	}

	opts := report.RenderOptions{
		ReporterID: *reporterID,
		VerifiedAt: time.Now().UTC(),
	}
	if *signer != "" {
		store, serr := keys.Open("")
		if serr != nil {
			fmt.Fprintf(errOut, "keys: %v\n", serr)
			return 1
		}
		seed, lerr := store.LoadSeed(*signer)
		if lerr != nil {
			fmt.Fprintf(errOut, "load key %s: %v\n", *signer, lerr)
			return 1
		}
		opts.Ed25519Key = ed25519.NewKeyFromSeed(seed)
		opts.SignerKey = keys.SignerKeyFromSeed(seed)
	}

	receipt, err := report.Render(res, fp, opts)
	if err != nil {
		fmt.Fprintf(errOut, "render: %v\n", err)
		return 1
	}
	_, _ = out.Write(receipt)
	if res.Verdict != verify.Genuine {
		return 1
	}
	return 0
}

func cmdReportVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("report-verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-certverify report-verify <receipt>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	ok, err := report.VerifySignature(raw)
	if err != nil {
		fmt.Fprintf(errOut, "invalid receipt: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(errOut, "signature mismatch")
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-certverify key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-certverify key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-certverify key list")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "Key name (file under ~/.certverify/keys)")
	seedHex := fs.String("seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible setups)")
	force := fs.Bool("force", false, "Overwrite an existing key file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(*name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}

	var seed []byte
	if *seedHex != "" {
		var err error
		seed, err = keys.ParseSeedHex(*seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	dir, err := keys.DefaultDirectory()
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	store, err := keys.Open(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	if err := store.SaveSeed(*name, seed, *force); err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created key: %s\n", keys.SignerKeyFromSeed(seed))
	fmt.Fprintf(out, "Stored at: %s\n", filepath.Join(dir, *name+".key"))
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	store, err := keys.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	names, err := store.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, n := range names {
		fmt.Fprintf(out, "%s\n", n)
	}
	return 0
}
