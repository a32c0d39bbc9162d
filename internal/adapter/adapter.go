package adapter

import (
	"context"
	"io"

	"github.com/driftfs/driftfs/internal/domain"
)

// NoLimit disables the result cap on List.
const NoLimit = -1

// Adapter defines the interface for storage backends.
// All implementations normalize path separators internally (backslashes
// become slashes) and return domain-level errors for consistent handling:
// absence of an entry is domain.ErrNotFound, never a backend-specific
// failure. Implementations hold no mutable state across calls, so any
// number of operations may run concurrently without coordination.
type Adapter interface {
	// ReadStream returns the content of the entry at path.
	// Returns domain.ErrNotFound if the entry is absent.
	// Caller is responsible for closing the reader.
	ReadStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns metadata for a single path.
	// Returns domain.ErrNotFound if the entry is absent.
	Stat(ctx context.Context, path string) (domain.FileInfo, error)

	// Exists checks if an entry exists. Absence is the boolean false,
	// not an error.
	Exists(ctx context.Context, path string) (bool, error)

	// Write creates or overwrites the entry at path with the content
	// of r. An interrupted upload may leave a partially written entry.
	Write(ctx context.Context, path string, r io.Reader) error

	// Rename moves an entry in place. No existence pre-check is made;
	// backend failures propagate.
	Rename(ctx context.Context, path, newPath string) error

	// Copy duplicates path to targetPath, composed from ReadStream and
	// Write. Returns domain.ErrNotFound without creating targetPath if
	// the source is absent. Not atomic.
	Copy(ctx context.Context, path, targetPath string) error

	// Delete removes the entry at path.
	// Returns domain.ErrNotFound if it was already absent.
	Delete(ctx context.Context, path string) error

	// DeleteMany removes every entry matching pattern, sequentially.
	// A failure on one entry does not abort the rest; the count of
	// deleted entries and the first failure are returned.
	DeleteMany(ctx context.Context, pattern string) (int, error)

	// List enumerates regular files matching pattern, in the backend's
	// native order, applying skip then limit client-side.
	// limit < 0 means unlimited; limit == 0 yields an empty result
	// without touching the backend.
	List(ctx context.Context, pattern string, limit, skip int) ([]domain.FileInfo, error)

	// Close releases any resources held by the adapter
	Close() error
}
