// Package metaref implements the metadata pointer convention used by label
// and item descriptors: "scheme://<content-id>[/<filename>]".
//
// The ledger treats pointers as opaque strings; this package exists for
// tooling and consumers that need to resolve or mint them. For the "ipfs"
// scheme the content id must be a valid CID.
package metaref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// SchemeIPFS is the scheme used by the reference front-end.
const SchemeIPFS = "ipfs"

// Pointer is a parsed metadata pointer.
type Pointer struct {
	Scheme    string
	ContentID string
	Filename  string
}

// ErrNotPointer is returned by Parse for strings that do not follow the
// pointer convention at all. Such strings are still legal metadata; the
// ledger does not reject them.
var ErrNotPointer = errors.New("metaref: not a scheme://content-id pointer")

// Parse splits a metadata pointer into scheme, content id and optional
// filename.
func Parse(s string) (Pointer, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" || rest == "" {
		return Pointer{}, fmt.Errorf("%w: %q", ErrNotPointer, s)
	}
	p := Pointer{Scheme: scheme}
	p.ContentID, p.Filename, _ = strings.Cut(rest, "/")
	if p.ContentID == "" {
		return Pointer{}, fmt.Errorf("%w: %q", ErrNotPointer, s)
	}
	if p.Scheme == SchemeIPFS {
		if _, err := cid.Decode(p.ContentID); err != nil {
			return Pointer{}, fmt.Errorf("metaref: invalid CID in %q: %w", s, err)
		}
	}
	return p, nil
}

func (p Pointer) String() string {
	if p.Filename == "" {
		return p.Scheme + "://" + p.ContentID
	}
	return p.Scheme + "://" + p.ContentID + "/" + p.Filename
}

// CID returns the decoded CID of an ipfs pointer.
func (p Pointer) CID() (cid.Cid, error) {
	if p.Scheme != SchemeIPFS {
		return cid.Undef, fmt.Errorf("metaref: scheme %q does not carry a CID", p.Scheme)
	}
	return cid.Decode(p.ContentID)
}

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec and a
// sha2-256 multihash, for deriving the pointer of a metadata document.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length, this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// PointerFor derives the ipfs pointer for a metadata document, optionally
// naming the file.
func PointerFor(data []byte, filename string) Pointer {
	return Pointer{Scheme: SchemeIPFS, ContentID: CIDv1RawSHA256(data), Filename: filename}
}
