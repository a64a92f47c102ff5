package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builder/builder"
	"github.com/wippyai/wasm-builder/engine"
	"github.com/wippyai/wasm-builder/wasm"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "wasmbuild",
		Short:         "Assemble, inspect and run WebAssembly modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				log = l
			}
			builder.SetLogger(log)
			engine.SetLogger(log)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAssembleCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newRunCmd())
	return root
}

func readModule(path string) (*wasm.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	m, err := wasm.ParseModule(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
