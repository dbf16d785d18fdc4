package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewTagsComponentAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "warn", "api")

	logger.Info("dropped")
	logger.Warn("kept", "user_id", "7")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "kept" || line["component"] != "api" || line["user_id"] != "7" {
		t.Fatalf("unexpected record %v", line)
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "loud", "")

	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered, got %q", buf.String())
	}
	logger.Info("kept")
	if buf.Len() == 0 {
		t.Fatalf("info should be written")
	}
}
