package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the whole state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c.state.Snapshot())
		},
	}
}
