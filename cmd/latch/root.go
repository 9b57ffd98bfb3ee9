package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/benaskins/latch/internal/config"
	"github.com/benaskins/latch/internal/credential"
	"github.com/benaskins/latch/internal/keyring"
)

// cli holds flag values and state shared by subcommands.
type cli struct {
	service    string
	domain     string
	configPath string
	verbose    bool

	cfg    *config.Config
	stdin  io.Reader
	stderr io.Writer

	// entryOpts are applied to every entry; tests use them to swap the adapter.
	entryOpts []keyring.Option
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "latch",
		Short:         "Store, fetch and delete credentials in the native keychain",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.setupLogging()
			return c.loadConfig()
		},
	}

	root.PersistentFlags().StringVarP(&c.service, "service", "s", "", "Service name (default from config, else \"latch\")")
	root.PersistentFlags().StringVarP(&c.domain, "domain", "d", "", "macOS keychain domain: user|system|common|dynamic")
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "Config file path (YAML)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(c.setCmd())
	root.AddCommand(c.getCmd())
	root.AddCommand(c.deleteCmd())
	root.AddCommand(c.domainsCmd())
	root.AddCommand(c.auditCmd())
	return root
}

func (c *cli) setupLogging() {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func (c *cli) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", c.configPath, err)
	}
	if c.service != "" {
		cfg.Service = c.service
	}
	if c.domain != "" {
		d, err := credential.ParseMacKeychainDomain(c.domain)
		if err != nil {
			return err
		}
		cfg.Domain = d
	}
	c.cfg = cfg
	slog.Debug("config loaded", "path", c.configPath, "service", cfg.Service, "domain", cfg.Domain)
	return nil
}
