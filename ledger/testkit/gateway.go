// Package testkit provides an in-memory ledger gateway and a conformance
// suite shared by gateway implementations.
package testkit

import (
	"context"
	"fmt"
	"sync"

	"xdao.co/certverify/ledger"
)

// Gateway is an in-memory ledger.Gateway. It records every accepted write
// as an ordered transaction of decoded state deltas, mirroring what the
// real ledger's history scan sees.
type Gateway struct {
	mu      sync.Mutex
	history [][]ledger.Delta

	// FailWrites forces Write to report a ledger-side failure after
	// validation. Used to exercise the failure-sentinel path.
	FailWrites bool

	// FailScans forces ExistsForKey to report a ledger-side failure.
	FailScans bool
}

func New() *Gateway { return &Gateway{} }

// Seed appends a synthetic transaction to the history without going through
// Write validation.
func (g *Gateway) Seed(deltas ...ledger.Delta) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, deltas)
}

// Writes reports how many ledger mutations were performed.
func (g *Gateway) Writes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

func (g *Gateway) Write(_ context.Context, pdfFingerprint, ocrFingerprint string) (string, error) {
	if pdfFingerprint == "" && ocrFingerprint == "" {
		return "", ledger.ErrEmptyWrite
	}
	if g.FailWrites {
		return "", ledger.ErrLedger
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, []ledger.Delta{
		{Key: ledger.KeyPDFHash, Value: pdfFingerprint},
		{Key: ledger.KeyOCRHash, Value: ocrFingerprint},
	})
	return fmt.Sprintf("TX%06d", len(g.history)), nil
}

func (g *Gateway) ExistsForKey(_ context.Context, key, value string) (bool, error) {
	if g.FailScans {
		return false, ledger.ErrLedger
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, txn := range g.history {
		for _, d := range txn {
			if d.Key == key && d.Value == value {
				return true, nil
			}
		}
	}
	return false, nil
}
