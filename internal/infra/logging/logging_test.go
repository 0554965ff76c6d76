package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockroom-app/stockroom/internal/daemon"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"development", "production"} {
		t.Run(mode, func(t *testing.T) {
			logger, err := New(daemon.LogConfig{Mode: mode, Level: "warn"})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if logger.Core().Enabled(zap.InfoLevel) {
				t.Error("info should be disabled at warn level")
			}
			if !logger.Core().Enabled(zap.ErrorLevel) {
				t.Error("error should be enabled at warn level")
			}
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(daemon.LogConfig{Level: "loud"}); err == nil {
		t.Error("unknown level should error")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockroom.log")
	logger, err := New(daemon.LogConfig{Level: "info", FileEnable: true, Filename: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("file sink check")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sales", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("status field = %v, want 201", fields["status"])
	}
	if fields["path"] != "/api/sales" {
		t.Errorf("path field = %v, want /api/sales", fields["path"])
	}
}
