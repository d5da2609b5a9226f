package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/eringen/artistsite"
	"github.com/eringen/artistsite/logging"
)

type commandContext struct {
	configFlag *string

	once   sync.Once
	config artistsite.SiteConfig
	log    *logging.Logger
	err    error
}

func (c *commandContext) load() (artistsite.SiteConfig, *logging.Logger, error) {
	c.once.Do(func() {
		cfg, err := artistsite.LoadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.err = err
			return
		}
		log, err := logging.New(cfg.LogMode)
		if err != nil {
			c.err = fmt.Errorf("init logger: %w", err)
			return
		}
		c.config, c.log = cfg, log
	})
	return c.config, c.log, c.err
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "artistsite",
		Short:         "Artist site and content admin",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "TOML configuration file")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newHashPasswordCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "artistsite %s\n", version)
		},
	})
	return rootCmd
}
