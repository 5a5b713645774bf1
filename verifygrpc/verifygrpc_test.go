package verifygrpc

import (
	"context"
	"errors"
	"image"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/certverify/fingerprint"
	"xdao.co/certverify/ledger"
	"xdao.co/certverify/ledger/testkit"
	"xdao.co/certverify/locator"
	"xdao.co/certverify/marker"
	"xdao.co/certverify/verify"
)

type stubText struct{}

func (stubText) FirstPageText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty document")
	}
	return string(raw), nil
}

type stubRaster struct{}

func (stubRaster) RasterizeFirstPage(raw []byte, dpi int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type stubMarkers struct{ payload string }

func (s stubMarkers) Extract(img image.Image) (marker.Marker, bool) {
	return marker.Marker{Payload: s.payload}, true
}

type stubResolver struct{ docs map[string][]byte }

func (s stubResolver) Resolve(_ context.Context, loc locator.Locator) ([]byte, error) {
	if data, ok := s.docs[loc.ID]; ok {
		return data, nil
	}
	return nil, errors.New("not stored")
}

func dialTestServer(t *testing.T, engine *verify.Engine) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterVerifierServer(srv, &Server{Engine: engine})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { cc.Close() })

	return &Client{cc: cc, client: NewVerifierClient(cc), Timeout: 2 * time.Second}
}

func TestVerifier_RoundTrip(t *testing.T) {
	reference := []byte("Certificate of Completion issued to J. Doe")
	gateway := testkit.New()
	engine := verify.New(stubText{}, stubRaster{}, stubResolver{
		docs: map[string][]byte{"QmRef": reference},
	}, verify.Options{
		Markers: stubMarkers{payload: "https://ipfs.io/ipfs/QmRef"},
		Ledger:  gateway,
	})
	client := dialTestServer(t, engine)

	res, err := client.Verify(reference)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Verdict != verify.Genuine {
		t.Fatalf("Verdict = %q, want Genuine", res.Verdict)
	}
	if res.LocatorID != "QmRef" {
		t.Errorf("LocatorID = %q, want QmRef", res.LocatorID)
	}

	res, err = client.Verify([]byte("Certificate of Completion issued to X. Doe"))
	if err != nil {
		t.Fatalf("Verify tampered: %v", err)
	}
	if res.Verdict != verify.Fake {
		t.Errorf("tampered Verdict = %q, want Fake", res.Verdict)
	}
}

func TestVerifier_AnchorAndAnchored(t *testing.T) {
	doc := []byte("Certificate of Completion issued to J. Doe")
	gateway := testkit.New()
	engine := verify.New(stubText{}, stubRaster{}, stubResolver{}, verify.Options{
		Markers: stubMarkers{payload: "https://ipfs.io/ipfs/QmRef"},
		Ledger:  gateway,
	})
	client := dialTestServer(t, engine)

	txID, err := client.Anchor(doc)
	if err != nil {
		t.Fatalf("Anchor: %v", err)
	}
	if txID == "" || txID == ledger.FailedTxID {
		t.Fatalf("Anchor txID = %q", txID)
	}

	fp := fingerprint.Digest(string(doc))
	found, err := client.Anchored(ledger.KeyPDFHash, fp)
	if err != nil {
		t.Fatalf("Anchored: %v", err)
	}
	if !found {
		t.Error("anchored fingerprint not found")
	}

	found, err = client.Anchored(ledger.KeyPDFHash, "no-such-fingerprint")
	if err != nil {
		t.Fatalf("Anchored missing: %v", err)
	}
	if found {
		t.Error("missing fingerprint reported as anchored")
	}
}

func TestVerifier_ErrorMapping(t *testing.T) {
	engine := verify.New(stubText{}, stubRaster{}, stubResolver{}, verify.Options{
		Markers: stubMarkers{payload: "https://ipfs.io/ipfs/QmRef"},
	})
	client := dialTestServer(t, engine)

	if _, err := client.Anchor([]byte("doc")); !errors.Is(err, verify.ErrNoLedger) {
		t.Errorf("Anchor without ledger = %v, want ErrNoLedger", err)
	}
	if _, err := client.Anchor(nil); err == nil {
		t.Error("Anchor accepted empty document")
	}
	if _, err := client.Anchored("", ""); err == nil {
		t.Error("Anchored accepted empty key and value")
	}
}
