package domain

import "time"

// FileType represents the type of a filesystem entry
type FileType int

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
)

// FileInfo represents metadata about a file or directory.
// It is a value object built fresh per call and never cached.
type FileInfo struct {
	// Path is the entry's full name relative to the endpoint root,
	// slash-delimited
	Path string

	// Type indicates if this is a file, directory, or symlink
	Type FileType

	// Size in bytes (0 for directories)
	Size int64

	// ModTime is the last modification time. SFTP v3 carries no
	// creation time, so this is the only timestamp available.
	ModTime time.Time
}

// IsDir returns true if this is a directory
func (f FileInfo) IsDir() bool {
	return f.Type == FileTypeDirectory
}

// IsFile returns true if this is a regular file
func (f FileInfo) IsFile() bool {
	return f.Type == FileTypeRegular
}
