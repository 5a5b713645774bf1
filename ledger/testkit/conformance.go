package testkit

import (
	"context"
	"testing"

	"xdao.co/certverify/ledger"
)

// NewGateway constructs a fresh, isolated gateway for a test.
type NewGateway func(t *testing.T) ledger.Gateway

// RunGatewayConformance checks the behavior every ledger.Gateway must share.
func RunGatewayConformance(t *testing.T, newGateway NewGateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("WriteThenExists", func(t *testing.T) {
		gw := newGateway(t)
		txid, err := gw.Write(ctx, "aaaa1111", "bbbb2222")
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if txid == "" || txid == ledger.FailedTxID {
			t.Fatalf("Write returned no transaction id: %q", txid)
		}

		for _, tc := range []struct {
			key, value string
			want       bool
		}{
			{ledger.KeyPDFHash, "aaaa1111", true},
			{ledger.KeyOCRHash, "bbbb2222", true},
			{ledger.KeyPDFHash, "bbbb2222", false},
			{ledger.KeyPDFHash, "never-written", false},
			{"unknown_key", "aaaa1111", false},
		} {
			got, err := gw.ExistsForKey(ctx, tc.key, tc.value)
			if err != nil {
				t.Fatalf("ExistsForKey(%q, %q): %v", tc.key, tc.value, err)
			}
			if got != tc.want {
				t.Fatalf("ExistsForKey(%q, %q) = %v, want %v", tc.key, tc.value, got, tc.want)
			}
		}
	})

	t.Run("SingleFingerprintAccepted", func(t *testing.T) {
		gw := newGateway(t)
		if _, err := gw.Write(ctx, "", "cccc3333"); err != nil {
			t.Fatalf("Write with only OCR fingerprint failed: %v", err)
		}
		ok, err := gw.ExistsForKey(ctx, ledger.KeyOCRHash, "cccc3333")
		if err != nil || !ok {
			t.Fatalf("ExistsForKey after single-fingerprint write: ok=%v err=%v", ok, err)
		}
	})

	t.Run("EmptyWriteRejected", func(t *testing.T) {
		gw := newGateway(t)
		_, err := gw.Write(ctx, "", "")
		if !ledger.IsEmptyWrite(err) {
			t.Fatalf("Write(\"\", \"\") err = %v, want ErrEmptyWrite", err)
		}
	})

	t.Run("HistoryScanFindsEarlierWrites", func(t *testing.T) {
		gw := newGateway(t)
		if _, err := gw.Write(ctx, "first000", ""); err != nil {
			t.Fatalf("Write(1): %v", err)
		}
		if _, err := gw.Write(ctx, "second00", ""); err != nil {
			t.Fatalf("Write(2): %v", err)
		}
		// The scan covers the full history, not only the latest state.
		ok, err := gw.ExistsForKey(ctx, ledger.KeyPDFHash, "first000")
		if err != nil || !ok {
			t.Fatalf("earlier write not found: ok=%v err=%v", ok, err)
		}
	})
}
