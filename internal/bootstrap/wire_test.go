package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"autosonic/internal/config"
	"autosonic/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	t.Parallel()

	services, err := Build(testConfig(""), noopEventSink{}, noopLogger{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Controller == nil || services.Inbox == nil {
		t.Fatalf("expected controller and inbox")
	}
	if services.Inbox.Enabled() {
		t.Fatalf("inbox must be disabled without a watch dir")
	}

	state := services.Controller.State()
	if state.Tab != domain.TabUpload || state.CanAnalyze {
		t.Fatalf("unexpected initial state: %+v", state)
	}
}

func TestBuildWithLoadedConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AUTOSONIC_CONFIG", "")
	t.Setenv("AUTOSONIC_CATALOG_FILE", "")
	t.Setenv("AUTOSONIC_WATCH_DIR", filepath.Join(home, "drop"))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	services, err := Build(cfg, noopEventSink{}, noopLogger{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !services.Inbox.Enabled() {
		t.Fatalf("inbox must be enabled when a watch dir is configured")
	}
}

func TestBuildFailsOnInvalidCatalog(t *testing.T) {
	t.Parallel()

	catalog := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(catalog, []byte("damage_types: [not, a, map\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, err := Build(testConfig(catalog), noopEventSink{}, noopLogger{})
	if err == nil {
		t.Fatalf("expected build error due to invalid catalog")
	}
}

func testConfig(catalog string) config.Config {
	return config.Config{
		Backend: config.BackendConfig{BaseURL: config.DefaultBackendURL},
		Audio: config.AudioConfig{
			RecorderCommand: "ffmpeg",
			InputFormat:     "pulse",
			InputDevice:     "default",
			SampleRate:      16000,
			Channels:        1,
		},
		Catalog: config.CatalogConfig{Path: catalog},
		Session: config.SessionConfig{ChunkSize: 4096},
	}
}

type noopEventSink struct{}

func (noopEventSink) StateChanged(_ domain.ViewState, _ domain.StateReason) {}
func (noopEventSink) ClientError(_ domain.ErrorCode, _ string)              {}

type noopLogger struct{}

func (noopLogger) Print(string)   {}
func (noopLogger) Trace(string)   {}
func (noopLogger) Debug(string)   {}
func (noopLogger) Info(string)    {}
func (noopLogger) Warning(string) {}
func (noopLogger) Error(string)   {}
func (noopLogger) Fatal(string)   {}
