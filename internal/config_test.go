package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	if cfg.App.HTTP.Address() != "127.0.0.1:8787" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Journal.Enabled() {
		t.Error("journal should be disabled by default")
	}
}

func TestHTTPConfig_PortOutOfRange(t *testing.T) {
	cfg := HTTPConfig{Enabled: true, Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 70000 should fail")
	}
}

func TestHTTPConfig_DisabledIgnoresPort(t *testing.T) {
	cfg := HTTPConfig{Enabled: false, Port: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled http should not validate port: %v", err)
	}
}

func TestDataDirConfig_IdentifierOrPath(t *testing.T) {
	if err := (&DataDirConfig{}).Validate(); err == nil {
		t.Error("empty identifier and path should fail")
	}
	if err := (&DataDirConfig{Path: "/tmp/data"}).Validate(); err != nil {
		t.Errorf("path alone should pass: %v", err)
	}
	if err := (&DataDirConfig{Identifier: "com.example"}).Validate(); err != nil {
		t.Errorf("identifier alone should pass: %v", err)
	}
}

func TestFullConfig_NoTransport(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Enabled = false
	cfg.MCP.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("config without any transport should fail")
	}
	cfg.MCP.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mcp-only config should pass: %v", err)
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Events.Throttle = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig_OverridesBeforeValidation(t *testing.T) {
	mcp := true
	cases := []struct {
		name string
		body string
		o    Overrides
	}{
		{
			name: "mcp flag enables a transport",
			body: "app:\n  http:\n    enabled: false\nmcp:\n  enabled: false\n",
			o:    Overrides{MCP: &mcp},
		},
		{
			name: "data-dir flag replaces identifier",
			body: "data_dir:\n  identifier: \"\"\n",
			o:    Overrides{DataDir: "/tmp/ansuz-data"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeConfig(t, tc.body)
			if _, _, err := LoadConfig(p, Overrides{}); err == nil {
				t.Fatal("file alone should fail validation")
			}
			cfg, found, err := LoadConfig(p, tc.o)
			if err != nil {
				t.Fatalf("LoadConfig with overrides: %v", err)
			}
			if !found {
				t.Error("found = false")
			}
			if tc.o.MCP != nil && !cfg.MCP.Enabled {
				t.Error("mcp override not applied")
			}
			if tc.o.DataDir != "" && cfg.DataDir.Path != tc.o.DataDir {
				t.Errorf("data dir = %q", cfg.DataDir.Path)
			}
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, found, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), Overrides{})
	if err != nil || found {
		t.Fatalf("LoadConfig = %v, %v", found, err)
	}
	if cfg.App.HTTP.Port != 8787 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
}
