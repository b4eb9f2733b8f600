package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.ToLower(a.v.GetString("format")) == "json" {
				info, err := json.MarshalIndent(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(info))
				return nil
			}
			fmt.Fprintln(a.stdout, version)
			return nil
		},
	}
	cmd.Flags().String("format", "text", "output format (text or json)")
	return cmd
}
