package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Info("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below threshold, got %q", buf.String())
	}

	l.Warn("should appear", "k", "v")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("expected context pair in output, got %q", buf.String())
	}
}

func TestChildLoggerInheritsContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	child := l.New("component", "gossip")
	child.Info("hello")
	if !strings.Contains(buf.String(), "component=gossip") {
		t.Fatalf("expected inherited context, got %q", buf.String())
	}
}
