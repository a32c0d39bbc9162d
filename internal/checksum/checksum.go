// Package checksum computes content digests over read streams.
package checksum

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/driftfs/driftfs/internal/domain"
)

// Algorithm selects the digest function
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// Parse validates an algorithm name
func Parse(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case MD5, SHA256:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("%w: unsupported algorithm %q", domain.ErrInvalidArgument, s)
	}
}

// Sum streams r through the selected hash and returns the hex digest.
// The context is checked between chunks so a cancelled transfer stops
// promptly instead of draining the stream.
func Sum(ctx context.Context, r io.Reader, algo Algorithm) (string, error) {
	var h hash.Hash
	switch algo {
	case MD5:
		h = md5.New()
	case SHA256:
		h = sha256.New()
	default:
		return "", fmt.Errorf("%w: unsupported algorithm %q", domain.ErrInvalidArgument, algo)
	}

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
