package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-builder/manifest"
)

func newDescribeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe <file.wasm>",
		Short: "Print a manifest that reassembles the module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModule(args[0])
			if err != nil {
				return err
			}
			man, skipped, err := manifest.Describe(m)
			if err != nil {
				return err
			}
			for _, name := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s section not described\n", name)
			}
			data, err := manifest.Marshal(man, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml or yaml")
	return cmd
}
