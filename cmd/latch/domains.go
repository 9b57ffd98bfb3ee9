package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benaskins/latch/internal/credential"
)

var domainDescriptions = map[credential.MacKeychainDomain]string{
	credential.DomainUser:    "login keychain of the current user",
	credential.DomainSystem:  "system keychain shared by all users",
	credential.DomainCommon:  "common keychain shared by all users",
	credential.DomainDynamic: "keychain selected at runtime (e.g. smart card)",
}

func (c *cli) domainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List macOS keychain domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tACTIVE\tDESCRIPTION")
			for _, d := range credential.Domains() {
				active := ""
				if d == c.cfg.Domain {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d, active, domainDescriptions[d])
			}
			return w.Flush()
		},
	}
}
