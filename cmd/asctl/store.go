package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/semactivity/storage"
)

func storeCmd(a *app) *cobra.Command {
	var (
		url    string
		bucket string
	)

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep documents in a NATS KV bucket",
	}
	cmd.PersistentFlags().StringVar(&url, "nats-url", "", "NATS server URL (default from config)")
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "KV bucket name (default from config)")

	// open connects and returns the store with a cleanup func.
	open := func(ctx context.Context) (*storage.Store, func(), error) {
		if url == "" {
			url = a.cfg.Store.URL
		}
		if bucket == "" {
			bucket = a.cfg.Store.Bucket
		}
		nc, err := nats.Connect(url,
			nats.Name(appName),
			nats.Timeout(5*time.Second),
			nats.MaxReconnects(0))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("create JetStream context: %w", err)
		}
		s, err := storage.NewStore(ctx, js, bucket, a.codec, a.logger)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		a.logger.Debug("Connected to document store",
			slog.String("url", url),
			slog.String("bucket", bucket))
		return s, nc.Close, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "put [files or patterns...]",
			Short: "Store documents and print their keys",
			RunE: func(cmd *cobra.Command, args []string) error {
				inputs, err := a.readInputs(cmd, args)
				if err != nil {
					return err
				}
				s, closeFn, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				out := cmd.OutOrStdout()
				for _, in := range inputs {
					key, err := s.Put(cmd.Context(), in.doc)
					if err != nil {
						return fmt.Errorf("%s: %w", in.path, err)
					}
					fmt.Fprintf(out, "%s\t%s\n", key, in.path)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <id>...",
			Short: "Print stored documents by id",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				for _, id := range args {
					entry, err := s.GetByID(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					if err := a.writeDoc(cmd.OutOrStdout(), entry); err != nil {
						return err
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored documents",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				entries, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					fmt.Fprintf(out, "%s\t%d\t%T\t%s\n", e.Key, e.Revision, e.Document, e.Document.Doc().ID())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>...",
			Short: "Remove stored documents by id",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, closeFn, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				for _, id := range args {
					if err := s.Delete(cmd.Context(), storage.DocumentKey(id)); err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *app) writeDoc(w io.Writer, e *storage.Entry) error {
	if err := a.codec.Write(w, e.Document); err != nil {
		return fmt.Errorf("%s: %w", e.Key, err)
	}
	_, err := fmt.Fprintln(w)
	return err
}
