package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_DefaultsToInfo(t *testing.T) {
	l := New("", "", &bytes.Buffer{})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", l.GetLevel())
	}
	if New("nonsense", "", &bytes.Buffer{}).GetLevel() != logrus.InfoLevel {
		t.Fatal("bad level name should fall back to info")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "JSON", &buf)
	l.WithField("session", "abc").Debug("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["session"] != "abc" || entry["msg"] != "started" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNew_TextFormatFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "text", &buf)
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("output = %q", out)
	}
}
