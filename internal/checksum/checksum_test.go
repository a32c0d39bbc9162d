package checksum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/driftfs/driftfs/internal/domain"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name  string
		algo  Algorithm
		input string
		want  string
	}{
		{
			name:  "sha256 empty",
			algo:  SHA256,
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "sha256 hello",
			algo:  SHA256,
			input: "hello",
			want:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:  "md5 hello",
			algo:  MD5,
			input: "hello",
			want:  "5d41402abc4b2a76b9719d911017c592",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(context.Background(), strings.NewReader(tt.input), tt.algo)
			if err != nil {
				t.Fatalf("Sum() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Sum() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSum_UnsupportedAlgorithm(t *testing.T) {
	_, err := Sum(context.Background(), strings.NewReader("x"), Algorithm("crc32"))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Sum() error = %v, want ErrInvalidArgument", err)
	}
}

func TestSum_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sum(ctx, strings.NewReader(strings.Repeat("x", 1024)), SHA256)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sum() error = %v, want context.Canceled", err)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("sha256"); err != nil {
		t.Errorf("Parse(sha256) error: %v", err)
	}
	if _, err := Parse("md5"); err != nil {
		t.Errorf("Parse(md5) error: %v", err)
	}
	if _, err := Parse("whirlpool"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Parse(whirlpool) error = %v, want ErrInvalidArgument", err)
	}
}
