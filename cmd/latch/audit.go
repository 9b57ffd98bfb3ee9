package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/benaskins/latch/internal/audit"
)

func (c *cli) auditCmd() *cobra.Command {
	var (
		filter  audit.Filter
		action  string
		since   time.Duration
		limit   int
		jsonOut bool
		service bool
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent credential operations from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if service {
				filter.Service = c.cfg.Service
			}
			switch action {
			case "":
			case "read", "write", "delete":
				filter.Action = audit.Action("credential_" + action)
			default:
				return fmt.Errorf("unknown action %q (want read, write or delete)", action)
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			path := c.cfg.AuditPath()
			entries, skipped, err := audit.Read(path, filter)
			if err != nil {
				return err
			}
			if skipped > 0 {
				slog.Warn("skipped damaged audit log lines", "path", path, "count", skipped)
			}
			entries = audit.Last(entries, limit)

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if entries == nil {
					entries = []audit.Entry{}
				}
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tSERVICE\tACCOUNT\tDOMAIN\tOUTCOME")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.Action, e.Service, e.Account, e.Domain, e.Outcome)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Account, "account", "", "Only entries for this account")
	cmd.Flags().BoolVar(&service, "this-service", false, "Only entries for the configured service")
	cmd.Flags().StringVar(&action, "action", "", "Only entries for this action: read|write|delete")
	cmd.Flags().BoolVar(&filter.Failed, "failed", false, "Only failed operations")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this (e.g. 24h)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many entries (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
