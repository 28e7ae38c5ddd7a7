// Package main provides the asctl binary entry point.
// asctl decodes, inspects and exports activity stream documents.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/c360studio/semactivity/codec"
	"github.com/c360studio/semactivity/config"

	// Register codec modules via init()
	_ "github.com/c360studio/semactivity/geo"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "asctl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds persistent flags shared by every command.
type flags struct {
	configPath  string
	logLevel    string
	logFormat   string
	pretty      bool
	charset     string
	modules     []string
	showMetrics bool
}

// app is the per-invocation state built from config and flags.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	codec    *codec.Codec
	registry *prometheus.Registry
}

func rootCmd() *cobra.Command {
	var (
		f flags
		a app
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Activity stream document tool",
		Long: `asctl decodes activity stream JSON documents through the schema-driven
codec and works with the result.

It provides:
- parse: decode documents and re-encode them canonically
- schema: list the models of the composed schema
- export: write documents as Turtle, N-Triples or JSON-LD
- triples: print the graph triples of documents
- show: render documents as Markdown
- watch: decode documents as files change
- store: keep documents in a NATS KV bucket`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, &f)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !f.showMetrics || a.registry == nil {
				return nil
			}
			return writeMetrics(cmd.ErrOrStderr(), a.registry)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
	pf.BoolVar(&f.pretty, "pretty", false, "Indent JSON output")
	pf.StringVar(&f.charset, "charset", "", "Input/output text encoding (WHATWG label)")
	pf.StringSliceVarP(&f.modules, "module", "m", nil, "Codec modules to compose (repeatable)")
	pf.BoolVar(&f.showMetrics, "metrics", false, "Print codec metrics to stderr on exit")

	cmd.AddCommand(
		parseCmd(&a),
		schemaCmd(&a),
		exportCmd(&a),
		triplesCmd(&a),
		showCmd(&a),
		watchCmd(&a),
		storeCmd(&a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// setup loads layered config, applies flag overrides and builds the codec.
func (a *app) setup(cmd *cobra.Command, f *flags) error {
	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.NewLoader(bootstrap).Load(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg.Merge(&config.Config{
		Codec: config.CodecConfig{Pretty: f.pretty, Charset: f.charset, Modules: f.modules},
		Log:   config.LogConfig{Level: f.logLevel, Format: f.logFormat},
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts, err := cfg.Codec.Options()
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	opts = append(opts, codec.WithLogger(logger), codec.WithMetrics(registry))

	c, err := codec.New(opts...)
	if err != nil {
		return fmt.Errorf("build codec: %w", err)
	}

	logger.Debug("Codec ready",
		slog.Any("modules", cfg.Codec.Modules),
		slog.String("charset", c.Charset()))

	a.cfg = cfg
	a.logger = logger
	a.codec = c
	a.registry = registry
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
