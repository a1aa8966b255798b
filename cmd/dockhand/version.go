package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show client and daemon versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.client.Version(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client:  %s (commit: %s)\n", version, commit)
			fmt.Fprintf(out, "Daemon:  %s (API %s, %s/%s)\n", v.Version, v.APIVersion, v.Os, v.Arch)
			fmt.Fprintf(out, "Host:    %s\n", s.cfg.Daemon.Host)
			return nil
		},
	}
}
