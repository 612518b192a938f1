package main

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/cuemby/burrow/pkg/hosts"
	"github.com/cuemby/burrow/pkg/name"
	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Show the fixed entries a hosts file produces",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := hosts.Load(cfg.HostsFile)
		if err != nil {
			return err
		}

		owners := make([]name.CaseFoldedName, 0, len(entries))
		for owner := range entries {
			owners = append(owners, owner)
		}
		slices.SortFunc(owners, name.CaseFoldedName.Compare)

		fmt.Printf("%-40s %s\n", "NAME", "ENTRY")
		for _, owner := range owners {
			entry := entries[owner]
			if entry.IsAlias() {
				fmt.Printf("%-40s alias of %s\n", owner, entry.Alias)
				continue
			}
			for _, addr := range slices.Concat(entry.IPv4, entry.IPv6) {
				fmt.Printf("%-40s %s %s\n", owner, family(addr), addr)
			}
		}
		return nil
	},
}

func family(addr netip.Addr) string {
	if addr.Is4() {
		return "A"
	}
	return "AAAA"
}

func init() {
	hostsCmd.Flags().StringP("hosts-file", "f", hosts.DefaultPath, "Hosts file to read")
}
