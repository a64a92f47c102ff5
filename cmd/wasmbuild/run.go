package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-builder/engine"
)

type runOptions struct {
	stubImports bool
	wasi        bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file.wasm> <export> [args...]",
		Short: "Instantiate a module and call an exported function",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args[0], args[1], args[2:], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.stubImports, "stub-imports", false, "satisfy missing function imports with stubs returning zero")
	f.BoolVar(&opts.wasi, "wasi", false, "provide wasi_snapshot_preview1")
	return cmd
}

func runCall(cmd *cobra.Command, path, export string, args []string, opts *runOptions) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	eng, err := engine.NewWazeroEngineWithConfig(ctx, &engine.Config{EnableWASI: opts.wasi})
	if err != nil {
		return err
	}
	defer eng.Close(ctx)

	mod, err := eng.LoadModule(ctx, data)
	if err != nil {
		return err
	}
	inst, err := mod.InstantiateWithConfig(ctx, &engine.InstanceConfig{StubImports: opts.stubImports})
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	results, err := inst.CallText(ctx, export, args)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(results, " "))
	}
	return nil
}
