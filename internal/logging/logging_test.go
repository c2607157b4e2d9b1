package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {

	var buf bytes.Buffer
	logger := NewJSON(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown", slog.String("request_id", "abc"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"request_id":"abc"`) {
		t.Errorf("expected request_id attribute, got: %s", out)
	}
}
