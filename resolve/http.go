package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"xdao.co/certverify/locator"
)

// HTTPResolver fetches reference documents with a single GET against the
// locator URI, typically through a content-addressed gateway.
type HTTPResolver struct {
	client  *http.Client
	timeout time.Duration
}

type HTTPOptions struct {
	// Client overrides the HTTP client. Nil means http.DefaultClient.
	Client *http.Client
	// Timeout bounds one fetch. Zero means DefaultTimeout.
	Timeout time.Duration
}

func NewHTTP(opts HTTPOptions) *HTTPResolver {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPResolver{client: client, timeout: timeout}
}

// Resolve issues one GET requesting a PDF content type. Success is strictly
// HTTP 200; 404 maps to ErrNotFound and every other failure to ErrRetrieval.
func (r *HTTPResolver) Resolve(ctx context.Context, loc locator.Locator) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.URI, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc.ID)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrRetrieval, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrRetrieval, MaxDocumentBytes)
	}
	return data, nil
}
