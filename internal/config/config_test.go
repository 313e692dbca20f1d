package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/docroute/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %q", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 50*1024*1024 {
		t.Errorf("max upload = %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Database.Enabled() {
		t.Error("database should be disabled without a name")
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled without credentials")
	}
	if cfg.Dispatch.Driver != config.DispatchHTTP {
		t.Errorf("driver = %q", cfg.Dispatch.Driver)
	}
	if cfg.Workbench.ClassifyTimeoutDuration() != 2*time.Minute {
		t.Errorf("classify timeout = %v", cfg.Workbench.ClassifyTimeoutDuration())
	}
	if cfg.Env() != "local" {
		t.Errorf("env = %q", cfg.Env())
	}
}

func TestLoadOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir, "config.toml", `
shutdown_timeout = "10s"

[server]
port = 9000

[dispatch]
driver = "nats"
subject = "routing.send"

[workbench]
classify_timeout = "30s"
`)
	writeFile(t, dir, "config.test.toml", `
[server]
port = 9100

[workbench]
archive = true
`)

	t.Setenv(config.EnvDocrouteEnv, "test")
	t.Setenv(config.EnvDispatchNATSURL, "nats://broker:4222")
	t.Setenv(config.EnvWorkbenchSessionTTL, "15m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want overlay 9100", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Dispatch.Driver != config.DispatchNATS || cfg.Dispatch.Subject != "routing.send" {
		t.Errorf("dispatch = %+v", cfg.Dispatch)
	}
	if cfg.Dispatch.NATSURL != "nats://broker:4222" {
		t.Errorf("nats url = %q", cfg.Dispatch.NATSURL)
	}
	if !cfg.Workbench.Archive {
		t.Error("archive should be enabled by overlay")
	}
	if cfg.Workbench.ClassifyTimeoutDuration() != 30*time.Second {
		t.Errorf("classify timeout = %v", cfg.Workbench.ClassifyTimeoutDuration())
	}
	if cfg.Workbench.SessionTTLDuration() != 15*time.Minute {
		t.Errorf("session ttl = %v", cfg.Workbench.SessionTTLDuration())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"bad port", "[server]\nport = 70000\n"},
		{"bad driver", "[dispatch]\ndriver = \"smtp\"\n"},
		{"relative classifier url", "[classifier]\nurl = \"/classify\"\n"},
		{"bad upload size", "[api]\nmax_upload_size = \"lots\"\n"},
		{"nested base path", "[api]\nbase_path = \"/api/v1\"\n"},
		{"bad classify timeout", "[workbench]\nclassify_timeout = \"soon\"\n"},
		{"bad idle timeout", "[server]\nidle_timeout = \"forever\"\n"},
		{"write timeout under classify timeout", "[server]\nwrite_timeout = \"1m\"\n[workbench]\nclassify_timeout = \"2m\"\n"},
		{"issuer without client", "[auth]\nissuer = \"https://login.example.test\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			writeFile(t, dir, "config.toml", tt.toml)

			if _, err := config.Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
