package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"hookreg/internal/platform/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hookreg.log")
	w := writer(config.LoggingConfig{Output: "file", FilePath: path, MaxSizeMB: 1})

	lj, ok := w.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("writer() = %T, want *lumberjack.Logger", w)
	}
	defer lj.Close()

	if _, err := lj.Write([]byte("{}\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestInit_SetsGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Init(config.LoggingConfig{Level: "error"})
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("GlobalLevel = %v, want error", zerolog.GlobalLevel())
	}
	log.Debug().Msg("suppressed")
}
