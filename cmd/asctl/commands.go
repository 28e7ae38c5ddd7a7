package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/c360studio/semactivity/document"
	"github.com/c360studio/semactivity/export"
	"github.com/c360studio/semactivity/graph"
	"github.com/c360studio/semactivity/render"
	"github.com/c360studio/semactivity/schema"
	"github.com/c360studio/semactivity/watch"
)

// input is one decoded document and where it came from.
type input struct {
	path string
	doc  document.Typed
}

// expandArgs resolves file arguments and doublestar patterns. "-" is stdin.
func expandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, "*?[{") {
			out = append(out, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", arg)
		}
		out = append(out, matches...)
	}
	return out, nil
}

// readInputs decodes every argument, or stdin when there are none.
func (a *app) readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	paths, err := expandArgs(args)
	if err != nil {
		return nil, err
	}
	out := make([]input, 0, len(paths))
	for _, path := range paths {
		doc, err := a.readOne(cmd.InOrStdin(), path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, input{path: path, doc: doc})
	}
	return out, nil
}

func (a *app) readOne(stdin io.Reader, path string) (document.Typed, error) {
	if path == "-" {
		return a.codec.Read(stdin, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.codec.Read(f, nil)
}

func parseCmd(a *app) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "parse [files or patterns...]",
		Short: "Decode documents and print them re-encoded",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, in := range inputs {
				if summary {
					fmt.Fprintf(out, "%s\t%T\t%s\n", in.path, in.doc, in.doc.Doc().ID())
					continue
				}
				if err := a.codec.Write(out, in.doc); err != nil {
					return fmt.Errorf("%s: %w", in.path, err)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Print path, type and id instead of JSON")
	return cmd
}

func schemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [tags...]",
		Short: "List schema models and their property kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.codec.Schema()
			tags := args
			if len(tags) == 0 {
				tags = s.Tags()
			}
			out := cmd.OutOrStdout()
			for _, tag := range tags {
				m, ok := s.Model(tag)
				if !ok {
					return fmt.Errorf("unknown model: %s", tag)
				}
				printModel(out, tag, m)
			}
			return nil
		},
	}
}

func printModel(w io.Writer, tag string, m *schema.Model) {
	fmt.Fprintf(w, "%s", tag)
	if m.Parent() != "" {
		fmt.Fprintf(w, " : %s", m.Parent())
	}
	if f := m.InheritedFactory(); f != nil {
		fmt.Fprintf(w, " [%s]", f.ID)
	}
	if m.Default() != schema.KindNone {
		fmt.Fprintf(w, " default=%s", m.Default())
	}
	fmt.Fprintln(w)

	props := m.Resolved()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		marker := " "
		if _, local := m.Local(name); local {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %-22s %s\n", marker, name, props[name])
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		format  string
		profile string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export [files or patterns...]",
		Short: "Export documents as RDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			if profile == "" {
				profile = a.cfg.Export.Profile
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if _, ok := export.Profiles[export.Profile(profile)]; !ok {
				return fmt.Errorf("unknown profile: %s", profile)
			}

			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			exporter := export.NewRDFExporter(export.Profile(profile))
			now := time.Now().UTC()
			for _, in := range inputs {
				exporter.AddDocument(in.doc, now)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			a.logger.Debug("Exporting documents",
				slog.Int("documents", len(inputs)),
				slog.String("format", string(f)),
				slog.String("profile", profile))
			return exporter.Write(w, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Type alignment profile (minimal, bfo, cco)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func triplesCmd(a *app) *cobra.Command {
	var payload bool

	cmd := &cobra.Command{
		Use:   "triples [files or patterns...]",
		Short: "Print graph triples as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			now := time.Now().UTC()
			for _, in := range inputs {
				if payload {
					p, err := graph.NewDocumentPayload(a.codec, in.doc, now)
					if err != nil {
						return err
					}
					if err := enc.Encode(p); err != nil {
						return err
					}
					continue
				}
				for _, t := range graph.Triples(in.doc, now) {
					if err := enc.Encode(t); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&payload, "payload", false, "Print one graph payload per document")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "show [files or patterns...]",
		Short: "Render documents as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := a.readInputs(cmd, args)
			if err != nil {
				return err
			}
			r := render.NewRenderer(lang)
			out := cmd.OutOrStdout()
			for i, in := range inputs {
				md, err := r.Document(in.doc)
				if err != nil {
					return fmt.Errorf("%s: %w", in.path, err)
				}
				if i > 0 {
					fmt.Fprintln(out, "---")
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, md)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Preferred language for language maps")
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	var (
		pattern  string
		debounce time.Duration
		initial  bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Decode documents as files change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			w, err := watch.NewWatcher(a.codec, watch.WatcherConfig{
				Root:          root,
				Pattern:       pattern,
				DebounceDelay: debounce,
				Logger:        a.logger,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			events, err := w.Scan(ctx)
			if err != nil {
				return err
			}
			if initial {
				for _, ev := range events {
					printEvent(out, ev)
				}
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			return drain(ctx, out, w.Events())
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", watch.DefaultPattern, "Doublestar pattern of document files")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Debounce delay")
	cmd.Flags().BoolVar(&initial, "initial", true, "Print existing documents before watching")
	return cmd
}

func drain(ctx context.Context, out io.Writer, events <-chan watch.WatchEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			printEvent(out, ev)
		}
	}
}

func printEvent(w io.Writer, ev watch.WatchEvent) {
	switch {
	case ev.Error != nil:
		fmt.Fprintf(w, "%s\t%s\terror: %v\n", ev.Operation, ev.Path, ev.Error)
	case ev.Document != nil:
		fmt.Fprintf(w, "%s\t%s\t%T\t%s\n", ev.Operation, ev.Path, ev.Document, ev.Document.Doc().ID())
	default:
		fmt.Fprintf(w, "%s\t%s\n", ev.Operation, ev.Path)
	}
}
