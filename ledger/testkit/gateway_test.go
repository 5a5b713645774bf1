package testkit

import (
	"context"
	"errors"
	"testing"

	"xdao.co/certverify/ledger"
)

func TestMemoryGatewayConformance(t *testing.T) {
	RunGatewayConformance(t, func(t *testing.T) ledger.Gateway {
		return New()
	})
}

func TestEmptyWriteNeverMutates(t *testing.T) {
	gw := New()
	if _, err := gw.Write(context.Background(), "", ""); !ledger.IsEmptyWrite(err) {
		t.Fatalf("err = %v, want ErrEmptyWrite", err)
	}
	if n := gw.Writes(); n != 0 {
		t.Fatalf("empty write mutated the ledger: %d transactions", n)
	}
}

func TestFailWritesReportsLedgerError(t *testing.T) {
	gw := New()
	gw.FailWrites = true
	_, err := gw.Write(context.Background(), "aaaa1111", "")
	if !errors.Is(err, ledger.ErrLedger) {
		t.Fatalf("err = %v, want ErrLedger", err)
	}
	if n := gw.Writes(); n != 0 {
		t.Fatalf("failed write left history entries: %d", n)
	}
}

func TestSeededHistoryVisibleToScan(t *testing.T) {
	gw := New()
	gw.Seed(ledger.Delta{Key: ledger.KeyPDFHash, Value: "seeded0f"})
	ok, err := gw.ExistsForKey(context.Background(), ledger.KeyPDFHash, "seeded0f")
	if err != nil || !ok {
		t.Fatalf("seeded delta not found: ok=%v err=%v", ok, err)
	}
	ok, err = gw.ExistsForKey(context.Background(), ledger.KeyPDFHash, "other")
	if err != nil || ok {
		t.Fatalf("unexpected match: ok=%v err=%v", ok, err)
	}
}
