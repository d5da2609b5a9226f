package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/artistsite/auth"
	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/logging"
	"github.com/eringen/artistsite/store"
)

// openContent connects to the configured content store without starting
// the web server.
func openContent(ctx context.Context, cc *commandContext) (*store.Client, func() error, *logging.Logger, error) {
	cfg, log, err := cc.load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL, store.WithLogger(log))
	if err != nil {
		return nil, nil, nil, err
	}
	return store.NewClient(st, log), st.Close, log, nil
}

func newSeedCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill fields missing from the stored content with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, log, err := openContent(cmd.Context(), cc)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := client.EnsureSeeded(cmd.Context()); err != nil {
				return err
			}
			log.Info("content seeded")
			return nil
		},
	}
}

func newExportCommand(cc *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the merged site content as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, _, err := openContent(cmd.Context(), cc)
			if err != nil {
				return err
			}
			defer closeFn()
			sc, _, err := client.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(sc)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored content with a JSON document",
		Long:  "Replace the stored content with a JSON document. Fields missing from the file take their default value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			body, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			sc, err := content.MergeBody(body, content.Defaults())
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			client, closeFn, log, err := openContent(cmd.Context(), cc)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := client.Save(cmd.Context(), sc); err != nil {
				return err
			}
			log.Info("content imported", "file", args[0])
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
