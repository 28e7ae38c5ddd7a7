package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/c360studio/semactivity/codec"
	_ "github.com/c360studio/semactivity/geo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Codec.Charset != "utf-8" {
		t.Errorf("expected default charset utf-8, got %s", cfg.Codec.Charset)
	}
	if cfg.Codec.Pretty {
		t.Error("expected compact output by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Export.Format != "turtle" {
		t.Errorf("expected default export format turtle, got %s", cfg.Export.Format)
	}
	if cfg.Store.Bucket != "SEMACTIVITY_DOCUMENTS" {
		t.Errorf("expected default bucket SEMACTIVITY_DOCUMENTS, got %s", cfg.Store.Bucket)
	}
	if cfg.Store.URL != "nats://127.0.0.1:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.Store.URL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "registered module",
			modify:  func(c *Config) { c.Codec.Modules = []string{"geo"} },
			wantErr: false,
		},
		{
			name:    "unknown module",
			modify:  func(c *Config) { c.Codec.Modules = []string{"nope"} },
			wantErr: true,
		},
		{
			name:    "missing charset",
			modify:  func(c *Config) { c.Codec.Charset = "" },
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "export format alias",
			modify:  func(c *Config) { c.Export.Format = "nt" },
			wantErr: false,
		},
		{
			name:    "bad export format",
			modify:  func(c *Config) { c.Export.Format = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "bad export profile",
			modify:  func(c *Config) { c.Export.Profile = "owl" },
			wantErr: true,
		},
		{
			name:    "missing store url",
			modify:  func(c *Config) { c.Store.URL = "" },
			wantErr: true,
		},
		{
			name:    "bad store bucket",
			modify:  func(c *Config) { c.Store.Bucket = "docs.v1" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
codec:
  pretty: true
  charset: utf-16le
  modules:
    - geo
log:
  level: debug
  format: json
export:
  format: jsonld
  profile: cco
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if !cfg.Codec.Pretty {
		t.Error("expected pretty output")
	}
	if cfg.Codec.Charset != "utf-16le" {
		t.Errorf("expected charset utf-16le, got %s", cfg.Codec.Charset)
	}
	if len(cfg.Codec.Modules) != 1 || cfg.Codec.Modules[0] != "geo" {
		t.Errorf("expected modules [geo], got %v", cfg.Codec.Modules)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Export.Format != "jsonld" || cfg.Export.Profile != "cco" {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Codec: CodecConfig{Modules: []string{"geo"}},
		Log:   LogConfig{Level: "debug"},
		Store: StoreConfig{Bucket: "ARCHIVE"},
	}

	base.Merge(override)
	base.Merge(nil)

	if len(base.Codec.Modules) != 1 {
		t.Errorf("expected modules to be overridden, got %v", base.Codec.Modules)
	}
	if base.Codec.Charset != "utf-8" {
		t.Errorf("expected charset to remain default, got %s", base.Codec.Charset)
	}
	if base.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", base.Log.Level)
	}
	if base.Log.Format != "text" {
		t.Errorf("expected log format to remain text, got %s", base.Log.Format)
	}
	if base.Store.Bucket != "ARCHIVE" || base.Store.URL == "" {
		t.Errorf("unexpected store config after merge: %+v", base.Store)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Codec.Modules = []string{"geo"}

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if len(loaded.Codec.Modules) != 1 || loaded.Codec.Modules[0] != "geo" {
		t.Errorf("expected modules [geo], got %v", loaded.Codec.Modules)
	}
}

func TestCodecOptions(t *testing.T) {
	cfg := CodecConfig{Pretty: true, Charset: "utf-8", Modules: []string{"geo"}}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	c, err := codec.New(opts...)
	if err != nil {
		t.Fatalf("codec.New() error = %v", err)
	}
	if _, ok := c.Schema().Model("place"); !ok {
		t.Error("geo module should contribute the place model")
	}

	if _, err := (CodecConfig{Modules: []string{"nope"}}).Options(); err == nil {
		t.Error("expected error for unknown module")
	}
}

func TestLogConfigLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn record, got %s", out)
	}

	if _, err := (LogConfig{Format: "xml"}).Logger(&buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	user := DefaultConfig()
	user.Log.Level = "debug"
	user.Codec.Pretty = true
	if err := user.SaveToFile(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Fatal(err)
	}
	projectYAML := "log:\n  level: warn\ncodec:\n  modules: [geo]\n"
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte(projectYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).WithDirs(home, nested).Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("project config should override user config, got level %s", cfg.Log.Level)
	}
	if !cfg.Codec.Pretty {
		t.Error("user config should still apply")
	}
	if len(cfg.Codec.Modules) != 1 {
		t.Errorf("expected project modules, got %v", cfg.Codec.Modules)
	}

	explicit := filepath.Join(t.TempDir(), "x.yaml")
	if err := os.WriteFile(explicit, []byte("log:\n  level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = NewLoader(nil).WithDirs(home, nested).Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("explicit file should win, got level %s", cfg.Log.Level)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := NewLoader(nil).WithDirs(home, "")
	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, UserConfigDir, UserConfigFile)); err != nil {
		t.Errorf("user config not created: %v", err)
	}
}

func TestFindProjectConfig(t *testing.T) {
	if got := FindProjectConfig(""); got != "" {
		t.Errorf("expected no config for empty dir, got %s", got)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectConfigFile), nil, 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "x")
	if err := os.Mkdir(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if got := FindProjectConfig(nested); got != filepath.Join(dir, ProjectConfigFile) {
		t.Errorf("FindProjectConfig() = %q", got)
	}
}
