package obs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"info level", "info", zerolog.InfoLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"invalid level defaults to info", "invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level)
			if zerolog.GlobalLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, zerolog.GlobalLevel())
			}
		})
	}
}

func TestLogger(t *testing.T) {
	logger := Logger("test-component")

	// Verify logger has the component field set
	ctx := logger.With().Logger().GetLevel()
	if ctx == zerolog.Disabled {
		t.Error("logger should not be disabled")
	}
}


func TestStorageHook(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	hook := StorageHook(logger)

	hook(context.Background(), db.Event{Op: db.OpSet, Keys: []string{"session/s/phrase_page_count"}, Value: "3"})
	if buf.Len() != 0 {
		t.Errorf("expected no log for unwatched key, got %s", buf.String())
	}

	hook(context.Background(), db.Event{
		Op:   db.OpDelete,
		Keys: []string{"durable/v/sphinx_highlight_phrases", "session/s/phrase_previous_page"},
	})
	out := buf.String()
	if !strings.Contains(out, "sphinx_highlight_phrases") {
		t.Errorf("expected watched key in log, got %s", out)
	}
	if strings.Contains(out, "phrase_previous_page") {
		t.Errorf("expected unwatched key to be dropped, got %s", out)
	}
	if !strings.Contains(out, `"op":"delete"`) {
		t.Errorf("expected op field, got %s", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	InitLogger("info")
	logger := Logger("filter")
	logger.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"service":"`+ServiceName+`"`) {
		t.Errorf("expected service field, got %s", out)
	}
	if !strings.Contains(out, `"component":"filter"`) {
		t.Errorf("expected component field, got %s", out)
	}
}
