package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/benaskins/latch/internal/audit"
	"github.com/benaskins/latch/internal/credential"
	"github.com/benaskins/latch/internal/keyring"
)

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <account> [password]",
		Short: "Store a password in the keychain",
		Long:  "Store a password. If password is omitted, prompts on a terminal or reads from stdin (useful for piping).",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := args[0]

			var password string
			if len(args) == 2 {
				password = args[1]
			} else {
				p, err := c.readPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}

			entry, done, err := c.openEntry(account, true)
			if err != nil {
				return err
			}
			defer done()

			if err := entry.SetPassword(password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password for %q stored\n", account)
			return nil
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "get <account>",
		Short: "Print a password from the keychain",
		Long: "Print a password. Items written by other tools may not be valid UTF-8; " +
			"use --hex to print the stored bytes hex-encoded instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, done, err := c.openEntry(args[0], false)
			if err != nil {
				return err
			}
			defer done()

			password, err := entry.GetPassword()
			if err != nil {
				var cerr *credential.Error
				if asHex && errors.As(err, &cerr) && cerr.Kind == credential.KindBadEncoding {
					fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(cerr.Raw))
					return nil
				}
				return err
			}
			if asHex {
				password = hex.EncodeToString([]byte(password))
			}
			fmt.Fprintln(cmd.OutOrStdout(), password)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "Print the stored bytes hex-encoded")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <account>",
		Short:   "Remove a password from the keychain",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, done, err := c.openEntry(args[0], true)
			if err != nil {
				return err
			}
			defer done()

			if err := entry.DeletePassword(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password for %q deleted\n", args[0])
			return nil
		},
	}
}

// openEntry builds the entry for account under the configured service and,
// on macOS, the configured domain. The returned func releases the audit log.
func (c *cli) openEntry(account string, writes bool) (keyring.Store, func(), error) {
	var entry *keyring.Entry
	if credential.Current() == credential.PlatformMacOS {
		if writes && c.cfg.Domain != credential.DomainUser && !privileged() {
			slog.Warn("writing to a shared keychain usually requires root", "domain", c.cfg.Domain)
		}
		entry = keyring.NewWithDomain(c.cfg.Domain, c.cfg.Service, account, c.entryOpts...)
	} else {
		entry = keyring.New(c.cfg.Service, account, c.entryOpts...)
	}
	slog.Debug("credential entry", "platform", entry.Credential().Platform(), "service", c.cfg.Service, "account", account)

	if !c.cfg.AuditEnabled() {
		return entry, func() {}, nil
	}
	auditLog, err := audit.NewLogger(c.cfg.AuditPath())
	if err != nil {
		return nil, nil, err
	}
	done := func() {
		if err := auditLog.Close(); err != nil {
			slog.Warn("closing audit log", "error", err)
		}
	}
	return keyring.NewAuditedEntry(entry, auditLog, "cli"), done, nil
}

func (c *cli) readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	b, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
