package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/certverify/cidutil"
	"xdao.co/certverify/locator"
)

// DirResolver serves reference documents from a content-addressed local
// directory, keyed by the locator's content identifier. It is the offline
// counterpart to the HTTP gateway, used for tests and air-gapped
// verification.
//
// Objects are stored immutably under their CID; Resolve validates bytes
// against the identifier on every read.
type DirResolver struct {
	root string
}

// NewDir constructs a DirResolver rooted at root, creating it if needed.
func NewDir(root string) (*DirResolver, error) {
	if root == "" {
		return nil, errors.New("resolve: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DirResolver{root: root}, nil
}

// Store writes data under its derived CID and returns the identifier.
// Storing identical bytes twice is a no-op.
func (r *DirResolver) Store(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	path := r.pathFor(id)
	if existing, err := os.ReadFile(path); err == nil {
		if !cidutil.Matches(existing, id) {
			return cid.Undef, fmt.Errorf("%w: stored object corrupted", ErrIntegrity)
		}
		return id, nil
	}
	if err := os.WriteFile(path, data, 0o444); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Resolve looks the locator's content identifier up in the directory.
// Locators whose identifier is not a CID cannot address anything here.
func (r *DirResolver) Resolve(_ context.Context, loc locator.Locator) ([]byte, error) {
	id, err := loc.ContentID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	data, err := os.ReadFile(r.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	if !cidutil.Matches(data, id) {
		return nil, fmt.Errorf("%w: %s", ErrIntegrity, id)
	}
	return data, nil
}

func (r *DirResolver) pathFor(id cid.Cid) string {
	return filepath.Join(r.root, id.String())
}
