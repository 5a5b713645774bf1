// Package algorand implements ledger.Gateway against an Algorand
// application whose global state records the certificate fingerprint pair.
//
// Reads go through the indexer (full transaction history of the owner
// account); writes are ABI method calls against the certificate contract,
// signed by the owner account.
package algorand

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/common/models"
	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"xdao.co/certverify/ledger"
)

// writeMethod is the ABI signature of the contract call recording a
// fingerprint pair in global state.
const writeMethod = "write_certificate_data(string,string)void"

const defaultTimeout = 10 * time.Second

// waitRounds bounds confirmation waiting for a write.
const waitRounds = 4

// Gateway is a ledger.Gateway bound to one application and one owner
// account. Safe for concurrent use; all state is read-only after New.
type Gateway struct {
	algod   *algod.Client
	indexer *indexer.Client
	appID   uint64
	account crypto.Account
	method  abi.Method
	timeout time.Duration
}

type Options struct {
	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string

	// AppID is the deployed certificate contract.
	AppID uint64

	// OwnerMnemonic recovers the account that owns the contract state.
	OwnerMnemonic string

	// Timeout bounds each ledger call. Zero means a 10 second default.
	Timeout time.Duration
}

func New(opts Options) (*Gateway, error) {
	if opts.AppID == 0 {
		return nil, fmt.Errorf("algorand: app id is required")
	}
	algodClient, err := algod.MakeClient(opts.AlgodURL, opts.AlgodToken)
	if err != nil {
		return nil, fmt.Errorf("algorand: algod client: %w", err)
	}
	indexerClient, err := indexer.MakeClient(opts.IndexerURL, opts.IndexerToken)
	if err != nil {
		return nil, fmt.Errorf("algorand: indexer client: %w", err)
	}
	sk, err := mnemonic.ToPrivateKey(opts.OwnerMnemonic)
	if err != nil {
		return nil, fmt.Errorf("algorand: owner mnemonic: %w", err)
	}
	account, err := crypto.AccountFromPrivateKey(sk)
	if err != nil {
		return nil, fmt.Errorf("algorand: owner account: %w", err)
	}
	method, err := abi.MethodFromSignature(writeMethod)
	if err != nil {
		return nil, fmt.Errorf("algorand: method signature: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		algod:   algodClient,
		indexer: indexerClient,
		appID:   opts.AppID,
		account: account,
		method:  method,
		timeout: timeout,
	}, nil
}

// Owner returns the owner account address the gateway is bound to.
func (g *Gateway) Owner() string { return g.account.Address.String() }

// Write records the fingerprint pair as a contract call and returns the
// confirmed transaction id.
func (g *Gateway) Write(ctx context.Context, pdfFingerprint, ocrFingerprint string) (string, error) {
	if pdfFingerprint == "" && ocrFingerprint == "" {
		return "", ledger.ErrEmptyWrite
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sp, err := g.algod.SuggestedParams().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: suggested params: %v", ledger.ErrLedger, err)
	}

	var atc transaction.AtomicTransactionComposer
	err = atc.AddMethodCall(transaction.AddMethodCallParams{
		AppID:           g.appID,
		Method:          g.method,
		MethodArgs:      []interface{}{pdfFingerprint, ocrFingerprint},
		Sender:          g.account.Address,
		SuggestedParams: sp,
		OnComplete:      types.NoOpOC,
		Signer:          transaction.BasicAccountTransactionSigner{Account: g.account},
	})
	if err != nil {
		return "", fmt.Errorf("%w: compose call: %v", ledger.ErrLedger, err)
	}

	result, err := atc.Execute(g.algod, ctx, waitRounds)
	if err != nil {
		return "", fmt.Errorf("%w: execute: %v", ledger.ErrLedger, err)
	}
	if len(result.TxIDs) == 0 {
		return "", fmt.Errorf("%w: no transaction id returned", ledger.ErrLedger)
	}
	return result.TxIDs[0], nil
}

// ExistsForKey pages through the owner account's transaction history and
// reports whether any global-state delta for key carries value.
func (g *Gateway) ExistsForKey(ctx context.Context, key, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var next string
	for {
		query := g.indexer.SearchForTransactions().AddressString(g.Owner())
		if next != "" {
			query = query.NextToken(next)
		}
		resp, err := query.Do(ctx)
		if err != nil {
			return false, fmt.Errorf("%w: history scan: %v", ledger.ErrLedger, err)
		}
		for _, txn := range resp.Transactions {
			for _, kv := range txn.GlobalStateDelta {
				d := decodeDelta(kv)
				if d.Key == key && d.Value == value {
					return true, nil
				}
			}
		}
		if resp.NextToken == "" || len(resp.Transactions) == 0 {
			return false, nil
		}
		next = resp.NextToken
	}
}

// decodeDelta converts one transport-form delta into its UTF-8 form. The
// indexer base64-encodes both the key and the byte value; decoding happens
// here once, never downstream.
func decodeDelta(kv models.EvalDeltaKeyValue) ledger.Delta {
	return ledger.Delta{
		Key:   decodeBase64(kv.Key),
		Value: decodeBase64(kv.Value.Bytes),
	}
}

// decodeBase64 returns the decoded UTF-8 form of s, or s itself when it is
// not transport-encoded.
func decodeBase64(s string) string {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(b) {
		return s
	}
	return string(b)
}
