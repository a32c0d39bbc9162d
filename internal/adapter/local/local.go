// Package local implements the adapter.Adapter interface for a local
// filesystem directory. It exists so callers can swap a remote endpoint
// for a local one without touching operation code, and it gives the
// shared pattern decomposition a backend that tests can exercise without
// a network.
package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftfs/driftfs/internal/adapter"
	"github.com/driftfs/driftfs/internal/domain"
)

// Adapter implements the adapter.Adapter interface for local filesystem
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter.
// root must be a path to an existing directory.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	return &Adapter{root: absRoot}, nil
}

// resolvePath safely resolves a relative path to an absolute path within
// root. Returns an error if the path attempts to escape root.
func (a *Adapter) resolvePath(relPath string) (string, error) {
	if relPath == "" {
		return "", domain.ErrInvalidArgument
	}

	relPath = filepath.FromSlash(adapter.NormalizePath(relPath))
	relPath = filepath.Clean(relPath)

	if filepath.IsAbs(relPath) {
		return "", domain.ErrPermissionDenied
	}

	fullPath := filepath.Join(a.root, relPath)

	// filepath.Rel handles edge cases like root="/root" vs "/root2"
	rel, err := filepath.Rel(a.root, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", domain.ErrPermissionDenied
	}

	return fullPath, nil
}

// ReadStream opens a file for reading
func (a *Adapter) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	if info.IsDir() {
		return nil, domain.ErrNotFile
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, a.mapError(err)
	}
	return file, nil
}

// Stat returns metadata for a single path
func (a *Adapter) Stat(ctx context.Context, path string) (domain.FileInfo, error) {
	fullPath, err := a.resolvePath(path)
	if err != nil {
		return domain.FileInfo{}, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return domain.FileInfo{}, a.mapError(err)
	}

	return a.fileInfoFromOS(adapter.NormalizePath(path), info), nil
}

// Exists checks if a path exists
func (a *Adapter) Exists(ctx context.Context, path string) (bool, error) {
	_, err := a.Stat(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Write creates or overwrites a file
func (a *Adapter) Write(ctx context.Context, path string, r io.Reader) error {
	fullPath, err := a.resolvePath(path)
	if err != nil {
		return err
	}
	if r == nil {
		return domain.ErrInvalidArgument
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return a.mapError(err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return a.mapError(err)
	}

	_, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// Rename moves an entry in place
func (a *Adapter) Rename(ctx context.Context, path, newPath string) error {
	fullPath, err := a.resolvePath(path)
	if err != nil {
		return err
	}
	fullNew, err := a.resolvePath(newPath)
	if err != nil {
		return err
	}

	return a.mapError(os.Rename(fullPath, fullNew))
}

// Copy duplicates path to targetPath. Not atomic.
func (a *Adapter) Copy(ctx context.Context, path, targetPath string) error {
	if _, err := a.resolvePath(targetPath); err != nil {
		return err
	}

	src, err := a.ReadStream(ctx, path)
	if err != nil {
		return err
	}
	defer src.Close()

	return a.Write(ctx, targetPath, src)
}

// Delete removes a file or empty directory
func (a *Adapter) Delete(ctx context.Context, path string) error {
	fullPath, err := a.resolvePath(path)
	if err != nil {
		return err
	}

	return a.mapError(os.Remove(fullPath))
}

// DeleteMany removes every entry matching pattern sequentially, without
// aborting on a failed deletion.
func (a *Adapter) DeleteMany(ctx context.Context, pattern string) (int, error) {
	files, err := a.List(ctx, pattern, adapter.NoLimit, 0)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var firstErr error
	for _, f := range files {
		if err := a.Delete(ctx, f.Path); err != nil {
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

	dir := a.root
	if criteria.Prefix != "" {
		var err error
		dir, err = a.resolvePath(criteria.Prefix)
		if err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, a.mapError(err)
	}

	var result []domain.FileInfo
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

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

		info, err := entry.Info()
		if err != nil {
			continue // entry vanished between readdir and stat
		}
		result = append(result, a.fileInfoFromOS(full, info))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Close releases any resources (no-op for local adapter)
func (a *Adapter) Close() error {
	return nil
}

// Root returns the root path of this adapter
func (a *Adapter) Root() string {
	return a.root
}

// fileInfoFromOS converts os.FileInfo to domain.FileInfo
func (a *Adapter) fileInfoFromOS(path string, info os.FileInfo) domain.FileInfo {
	fileType := domain.FileTypeRegular
	if info.IsDir() {
		fileType = domain.FileTypeDirectory
	} else if info.Mode()&os.ModeSymlink != 0 {
		fileType = domain.FileTypeSymlink
	}

	return domain.FileInfo{
		Path:    path,
		Type:    fileType,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// mapError converts OS errors to domain errors
func (a *Adapter) mapError(err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if os.IsPermission(err) {
		return domain.ErrPermissionDenied
	}
	if os.IsExist(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Compile-time interface check
var _ adapter.Adapter = (*Adapter)(nil)
