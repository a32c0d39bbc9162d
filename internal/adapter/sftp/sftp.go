// Package sftp implements the adapter.Adapter interface on top of an SFTP
// endpoint. Every operation opens its own session and releases it before
// returning; the adapter itself holds only the immutable resolved target,
// so concurrent calls need no coordination.
package sftp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/pkg/sftp"

	"github.com/driftfs/driftfs/internal/adapter"
	"github.com/driftfs/driftfs/internal/domain"
	"github.com/driftfs/driftfs/internal/logger"
)

// Adapter implements the adapter.Adapter interface for SFTP endpoints
type Adapter struct {
	target *Target
	log    logger.Logger

	// connect is swapped for a fake in tests
	connect func(ctx context.Context) (session, error)
}

// New resolves the descriptor and returns an adapter bound to it.
// No connection is made until the first operation.
func New(opt Options) (*Adapter, error) {
	target, err := Resolve(opt)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		target:  target,
		log:     logger.With("adapter", "sftp", "host", target.Host),
		connect: target.dial,
	}, nil
}

// Target returns the resolved connection target.
func (a *Adapter) Target() *Target {
	return a.target
}

// ReadStream downloads the entry at path into memory and returns a
// reader over it. The session is released before the reader is consumed.
func (a *Adapter) ReadStream(ctx context.Context, p string) (io.ReadCloser, error) {
	p, err := requirePath(p)
	if err != nil {
		return nil, err
	}

	sess, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	f, err := sess.Open(p)
	if err != nil {
		return nil, mapError(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, mapError(err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, p string) (domain.FileInfo, error) {
	p, err := requirePath(p)
	if err != nil {
		return domain.FileInfo{}, err
	}

	sess, err := a.connect(ctx)
	if err != nil {
		return domain.FileInfo{}, err
	}
	defer sess.Close()

	info, err := sess.Stat(p)
	if err != nil {
		return domain.FileInfo{}, mapError(err)
	}

	return fileInfoFromOS(p, info), nil
}

// Exists checks if an entry exists
func (a *Adapter) Exists(ctx context.Context, p string) (bool, error) {
	_, err := a.Stat(ctx, p)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Write uploads the content of r to path, overwriting any existing
// entry. Parent directories are created as needed. An interrupted upload
// may leave a partially written entry behind.
func (a *Adapter) Write(ctx context.Context, p string, r io.Reader) error {
	p, err := requirePath(p)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("%w: nil reader", domain.ErrInvalidArgument)
	}

	sess, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if dir := path.Dir(p); dir != "." && dir != "/" {
		if err := sess.MkdirAll(dir); err != nil {
			return mapError(err)
		}
	}

	f, err := sess.Create(p)
	if err != nil {
		return mapError(err)
	}

	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return mapError(copyErr)
	}
	return mapError(closeErr)
}

// Rename moves an entry in place. No existence pre-check is made.
func (a *Adapter) Rename(ctx context.Context, p, newPath string) error {
	p, err := requirePath(p)
	if err != nil {
		return err
	}
	newPath, err = requirePath(newPath)
	if err != nil {
		return err
	}

	sess, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return mapError(sess.Rename(p, newPath))
}

// Copy duplicates path to targetPath via download then upload. Two
// session lifetimes are used; the copy is not atomic. A missing source
// short-circuits to domain.ErrNotFound without creating the target.
func (a *Adapter) Copy(ctx context.Context, p, targetPath string) error {
	targetPath, err := requirePath(targetPath)
	if err != nil {
		return err
	}

	src, err := a.ReadStream(ctx, p)
	if err != nil {
		return err
	}
	defer src.Close()

	return a.Write(ctx, targetPath, src)
}

// Delete removes the entry at path. Deleting an absent entry is a
// failure value, not a raised transport error.
func (a *Adapter) Delete(ctx context.Context, p string) error {
	p, err := requirePath(p)
	if err != nil {
		return err
	}

	sess, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := mapError(sess.Remove(p)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.log.Debug("delete of absent entry", "path", p)
		}
		return err
	}
	return nil
}

// DeleteMany removes every entry matching pattern, one session per
// deletion, sequentially. A failed deletion does not abort the rest;
// the first failure is returned after all entries were attempted.
func (a *Adapter) DeleteMany(ctx context.Context, pattern string) (int, error) {
	files, err := a.List(ctx, pattern, adapter.NoLimit, 0)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var firstErr error
	for _, f := range files {
		if err := a.Delete(ctx, f.Path); err != nil {
			a.log.Debug("delete failed", "path", f.Path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}

// List enumerates regular files matching pattern in the prefix
// directory, non-recursively, applying skip then limit client-side.
func (a *Adapter) List(ctx context.Context, pattern string, limit, skip int) ([]domain.FileInfo, error) {
	if limit == 0 {
		return nil, nil
	}

	criteria := adapter.Decompose(pattern)

	sess, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	dir := criteria.Prefix
	if dir == "" {
		dir = "."
	}
	entries, err := sess.ReadDir(dir)
	if err != nil {
		// An absent prefix directory collapses to an empty result
		if err = mapError(err); errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var result []domain.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := adapter.FullName(criteria.Prefix, entry.Name())
		if !criteria.Matches(full) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		result = append(result, fileInfoFromOS(full, entry))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Close releases any resources (no-op: sessions are per-operation)
func (a *Adapter) Close() error {
	return nil
}

// requirePath normalizes separators and rejects empty paths before any
// network I/O happens.
func requirePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidArgument)
	}
	return adapter.NormalizePath(p), nil
}

// fileInfoFromOS converts os.FileInfo to domain.FileInfo
func fileInfoFromOS(p string, info os.FileInfo) domain.FileInfo {
	fileType := domain.FileTypeRegular
	if info.IsDir() {
		fileType = domain.FileTypeDirectory
	} else if info.Mode()&os.ModeSymlink != 0 {
		fileType = domain.FileTypeSymlink
	}

	return domain.FileInfo{
		Path:    p,
		Type:    fileType,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// mapError converts SFTP and SSH transport errors to domain errors.
// Only absence is absorbed by callers; everything else crosses the
// adapter boundary as a raised error.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, sftp.ErrSSHFxNoSuchFile):
		return domain.ErrNotFound
	case errors.Is(err, fs.ErrPermission),
		errors.Is(err, sftp.ErrSSHFxPermissionDenied):
		return domain.ErrPermissionDenied
	case errors.Is(err, sftp.ErrSSHFxConnectionLost),
		errors.Is(err, sftp.ErrSSHFxNoConnection):
		return fmt.Errorf("%w: %w", domain.ErrNetworkError, err)
	}

	return err
}

// Compile-time interface check
var _ adapter.Adapter = (*Adapter)(nil)
