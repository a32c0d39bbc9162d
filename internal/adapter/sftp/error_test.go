package sftp

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/pkg/sftp"

	"github.com/driftfs/driftfs/internal/domain"
)

// TestMapError tests error classification from protocol errors to domain errors
func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		input error
		want  error // nil means passthrough of the original
	}{
		{
			name:  "nil error",
			input: nil,
			want:  nil,
		},
		{
			name:  "fs not exist",
			input: fs.ErrNotExist,
			want:  domain.ErrNotFound,
		},
		{
			name:  "wrapped path error",
			input: &fs.PathError{Op: "stat", Path: "a/b", Err: fs.ErrNotExist},
			want:  domain.ErrNotFound,
		},
		{
			name:  "sftp no such file",
			input: sftp.ErrSSHFxNoSuchFile,
			want:  domain.ErrNotFound,
		},
		{
			name:  "permission denied",
			input: sftp.ErrSSHFxPermissionDenied,
			want:  domain.ErrPermissionDenied,
		},
		{
			name:  "connection lost",
			input: sftp.ErrSSHFxConnectionLost,
			want:  domain.ErrNetworkError,
		},
		{
			name:  "no connection",
			input: sftp.ErrSSHFxNoConnection,
			want:  domain.ErrNetworkError,
		},
		{
			name:  "generic failure passes through",
			input: errors.New("sftp: \"Failure\" (SSH_FX_FAILURE)"),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.input)

			if tt.want == nil {
				if got != tt.input {
					t.Errorf("mapError() = %v, want passthrough of %v", got, tt.input)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestMapError_NetworkPreservesCause verifies the original error stays wrapped
func TestMapError_NetworkPreservesCause(t *testing.T) {
	got := mapError(sftp.ErrSSHFxConnectionLost)
	if !errors.Is(got, sftp.ErrSSHFxConnectionLost) {
		t.Errorf("mapError should wrap the protocol error, got %v", got)
	}
}
