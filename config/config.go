// Package config provides configuration loading and management for semactivity.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/export"
	"github.com/c360studio/semactivity/storage"
	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// Config represents the complete semactivity configuration
type Config struct {
	Codec  CodecConfig  `yaml:"codec"`
	Log    LogConfig    `yaml:"log"`
	Export ExportConfig `yaml:"export"`
	Store  StoreConfig  `yaml:"store"`
}

// CodecConfig configures the document codec
type CodecConfig struct {
	// Pretty enables indented JSON output
	Pretty bool `yaml:"pretty"`
	// Charset is the WHATWG label of the stream encoding (default: utf-8)
	Charset string `yaml:"charset"`
	// Modules lists registered modules to compose, in order
	Modules []string `yaml:"modules"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
	// Format is text or json (default: text)
	Format string `yaml:"format"`
}

// ExportConfig configures RDF export defaults
type ExportConfig struct {
	Format  string `yaml:"format"`
	Profile string `yaml:"profile"`
}

// StoreConfig configures the NATS KV document store
type StoreConfig struct {
	// URL is the NATS server URL (default: nats://127.0.0.1:4222)
	URL string `yaml:"url"`
	// Bucket is the KV bucket holding documents
	Bucket string `yaml:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecConfig{
			Charset: codec.DefaultCharset,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Format:  string(export.FormatTurtle),
			Profile: string(export.ProfileMinimal),
		},
		Store: StoreConfig{
			URL:    nats.DefaultURL,
			Bucket: storage.BucketDocuments,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Codec.Charset == "" {
		return fmt.Errorf("codec.charset is required")
	}
	for _, name := range c.Codec.Modules {
		if _, ok := codec.LookupModule(name); !ok {
			return fmt.Errorf("codec.modules: unknown module %q", name)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, ok := export.Profiles[export.Profile(c.Export.Profile)]; !ok {
		return fmt.Errorf("export.profile: unknown profile %q", c.Export.Profile)
	}
	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	if !storage.ValidBucket(c.Store.Bucket) {
		return fmt.Errorf("store.bucket: invalid bucket name %q", c.Store.Bucket)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	return readFile(path, DefaultConfig())
}

// loadLayer reads a YAML file without defaults, so unset fields do not
// override earlier layers on Merge.
func loadLayer(path string) (*Config, error) {
	return readFile(path, &Config{})
}

func readFile(path string, config *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Codec
	if other.Codec.Pretty {
		c.Codec.Pretty = true
	}
	if other.Codec.Charset != "" {
		c.Codec.Charset = other.Codec.Charset
	}
	if len(other.Codec.Modules) > 0 {
		c.Codec.Modules = other.Codec.Modules
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	// Export
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
	if other.Export.Profile != "" {
		c.Export.Profile = other.Export.Profile
	}

	// Store
	if other.Store.URL != "" {
		c.Store.URL = other.Store.URL
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}
}

// Options converts the codec settings into codec options. Module names are
// resolved through the module registry.
func (c CodecConfig) Options() ([]codec.Option, error) {
	opts := []codec.Option{codec.WithPretty(c.Pretty)}
	if c.Charset != "" {
		opts = append(opts, codec.WithCharset(c.Charset))
	}
	if len(c.Modules) > 0 {
		mods, err := codec.ResolveModules(c.Modules...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codec.WithModules(mods...))
	}
	return opts, nil
}

// Logger builds a logger writing to w.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log.format must be text or json, got %q", l.Format)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
