package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestMeter_CountsBytes(t *testing.T) {
	var status bytes.Buffer
	m := NewMeter(&status, "up", 100)

	var sink bytes.Buffer
	n, err := io.Copy(io.MultiWriter(&sink, m), strings.NewReader(strings.Repeat("x", 100)))
	if err != nil {
		t.Fatalf("Copy() error: %v", err)
	}
	if n != 100 || m.Done() != 100 {
		t.Errorf("copied %d, meter counted %d; want 100 for both", n, m.Done())
	}

	m.Finish()
	out := status.String()
	if !strings.Contains(out, "up:") || !strings.Contains(out, "100 B") {
		t.Errorf("final status line = %q", out)
	}
	if !strings.Contains(out, "100.0%") {
		t.Errorf("status line missing percentage: %q", out)
	}
}

func TestMeter_UnknownTotal(t *testing.T) {
	var status bytes.Buffer
	m := NewMeter(&status, "down", 0)

	m.Write(make([]byte, 2048))
	m.Finish()

	out := status.String()
	if strings.Contains(out, "%") {
		t.Errorf("unknown total must not render a percentage: %q", out)
	}
	if !strings.Contains(out, "2.0 KB") {
		t.Errorf("status line = %q, want byte count", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
