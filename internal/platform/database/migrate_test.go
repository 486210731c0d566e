package database

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestMain(m *testing.M) {
	goose.SetLogger(goose.NopLogger())
	os.Exit(m.Run())
}

func TestGooseLogger_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	gooseLogger{}.Printf("goose: successfully migrated database to version: %d\n", 1)

	out := buf.String()
	if !strings.Contains(out, `"component":"migrate"`) {
		t.Errorf("output missing component field: %s", out)
	}
	if !strings.Contains(out, `"message":"goose: successfully migrated database to version: 1"`) {
		t.Errorf("output missing message: %s", out)
	}
}
