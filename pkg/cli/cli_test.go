package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatText)
	if err := f.FormatTo(&buf, "hello"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "hello\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON)
	if err := f.FormatTo(&buf, map[string]string{"verdict": "allow"}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if out["verdict"] != "allow" {
		t.Errorf("output = %v", out)
	}
	if !strings.Contains(buf.String(), "  ") {
		t.Error("JSON output is not indented")
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("boom")
	err := NewCommandError("eval", inner)
	if !errors.Is(err, inner) {
		t.Error("CommandError does not unwrap to inner error")
	}
	if !strings.Contains(err.Error(), "eval") {
		t.Errorf("Error() = %q, want command name included", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("tables.path", "must not be empty")
	if !strings.Contains(err.Error(), "tables.path") {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := NewConfigError("", "unreadable file")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("Error() = %q leaks empty field", bare.Error())
	}
}
