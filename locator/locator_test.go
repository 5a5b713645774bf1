package locator

import (
	"errors"
	"testing"

	"xdao.co/certverify/cidutil"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		wantID  string
		wantErr error
	}{
		{
			name:    "gateway uri",
			payload: "https://gateway.example/ipfs/bafkreibtest",
			wantID:  "bafkreibtest",
		},
		{
			name:    "plain file uri",
			payload: "https://files.example/certs/cert-42.pdf",
			wantID:  "cert-42.pdf",
		},
		{
			name:    "empty",
			payload: "",
			wantErr: ErrEmpty,
		},
		{
			name:    "whitespace only",
			payload: "  \t ",
			wantErr: ErrEmpty,
		},
		{
			name:    "not a uri",
			payload: "certificate text, no address",
			wantErr: ErrInvalid,
		},
		{
			name:    "relative path",
			payload: "/ipfs/bafkreibtest",
			wantErr: ErrInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := Parse(tc.payload)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Parse(%q) err = %v, want %v", tc.payload, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.payload, err)
			}
			if loc.ID != tc.wantID {
				t.Fatalf("ID = %q, want %q", loc.ID, tc.wantID)
			}
			if loc.URI != tc.payload {
				t.Fatalf("URI = %q, want %q", loc.URI, tc.payload)
			}
		})
	}
}

func TestContentID(t *testing.T) {
	id := cidutil.CIDv1RawSHA256([]byte("reference bytes"))
	loc, err := Parse("https://gateway.example/ipfs/" + id)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := loc.ContentID()
	if err != nil {
		t.Fatalf("ContentID: %v", err)
	}
	if got.String() != id {
		t.Fatalf("ContentID = %s, want %s", got, id)
	}
}

func TestContentIDRejectsOpaqueSegment(t *testing.T) {
	loc, err := Parse("https://files.example/certs/cert-42.pdf")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := loc.ContentID(); !errors.Is(err, ErrNotContent) {
		t.Fatalf("ContentID err = %v, want ErrNotContent", err)
	}
}
