package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLevelPrefixes(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithLogger(log.New(&buf, "", 0))

	lg.Warnf("disk at %d%%", 90)
	lg.Errorf("kernel returned %v", "miss")
	lg.Infof("frame %d done", 3)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "WARN ") {
		t.Errorf("expected WARN prefix, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ERROR ") {
		t.Errorf("expected ERROR prefix, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "INFO ") {
		t.Errorf("expected INFO prefix, got %q", lines[2])
	}
}
