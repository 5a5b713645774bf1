package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"xdao.co/certverify/config"
	"xdao.co/certverify/internal/setup"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/locator"
	"xdao.co/certverify/model"
	"xdao.co/certverify/verify"
)

const uploadField = "pdf_file"

func main() {
	fs := flag.NewFlagSet("xdao-certverifyd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:8080", "listen address")
	cfgPath := fs.String("config", "", "config document")
	_ = fs.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	engine, err := setup.Engine(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	s := &server{
		engine:   engine,
		log:      logger,
		maxBytes: cfg.Resolver.MaxBytes,
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("xdao-certverifyd listening", "addr", *listen, "mode", cfg.Resolver.Mode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type server struct {
	engine   *verify.Engine
	log      *slog.Logger
	maxBytes int64
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/verify_pdf", s.handleVerify)
	mux.HandleFunc("/writeToBlockchain", s.handleWrite)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "certificate verification service\n")
}

// handleVerify accepts a multipart upload and replies with the verdict.
// Pipeline failures are not HTTP errors: they resolve to an INVALID verdict
// in a 200 response, matching what deployed clients expect.
func (s *server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw, err := s.uploadedDocument(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.VerifyResponse{
			Result:       string(verify.Invalid),
			IPFSFileHash: locator.Null,
		})
		return
	}

	res := s.engine.Verify(r.Context(), raw)
	s.log.Info("document verified", "verdict", res.Verdict, "locator", res.LocatorID)
	writeJSON(w, http.StatusOK, model.FromResult(res))
}

// handleWrite anchors the uploaded document's fingerprints. A fingerprint
// already present in the ledger history is refused rather than re-written.
// Failures respond 400 with a coded ERR payload.
func (s *server) handleWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw, err := s.uploadedDocument(w, r)
	if err != nil {
		ce := model.NewError(model.ErrInvalidRequest, err.Error())
		writeJSON(w, http.StatusBadRequest, model.WriteFailed(ce.Error()))
		return
	}
	ctx := r.Context()

	txID, err := s.anchorOnce(ctx, raw)
	if err != nil {
		ce := model.Coded(err)
		s.log.Warn("anchoring failed", "code", ce.Code, "err", err)
		writeJSON(w, http.StatusBadRequest, model.WriteFailed(ce.Error()))
		return
	}
	s.log.Info("document anchored", "txid", txID)
	writeJSON(w, http.StatusOK, model.WriteSucceeded(txID))
}

func (s *server) anchorOnce(ctx context.Context, raw []byte) (string, error) {
	fp, err := s.engine.Fingerprint(raw)
	if err != nil {
		return "", err
	}
	exists, err := s.engine.Anchored(ctx, ledger.KeyPDFHash, fp)
	if err != nil {
		return "", err
	}
	if exists {
		return "", model.NewError(model.ErrInvalidRequest, "certificate already anchored")
	}
	return s.engine.Anchor(ctx, raw)
}

func (s *server) uploadedDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	f, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.New("missing " + uploadField + " upload")
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil || len(raw) == 0 {
		return nil, errors.New("unreadable " + uploadField + " upload")
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
