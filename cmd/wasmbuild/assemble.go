package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-builder/engine"
	"github.com/wippyai/wasm-builder/manifest"
	"github.com/wippyai/wasm-builder/wasm"
)

type assembleOptions struct {
	output   string
	base     string
	dedup    bool
	validate bool
}

func newAssembleCmd() *cobra.Command {
	opts := &assembleOptions{}

	cmd := &cobra.Command{
		Use:   "assemble <manifest>",
		Short: "Assemble a module from a TOML, YAML or JSON manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: manifest path with .wasm extension)")
	f.StringVar(&opts.base, "base", "", "existing module to extend; function imports are rejected when it already defines functions")
	f.BoolVar(&opts.dedup, "dedup-types", false, "reuse equal function types")
	f.BoolVar(&opts.validate, "validate", false, "compile the result with wazero before writing it")
	return cmd
}

func runAssemble(cmd *cobra.Command, path string, opts *assembleOptions) error {
	man, err := manifest.Load(path)
	if err != nil {
		return err
	}
	if opts.dedup {
		man.DedupTypes = true
	}

	var seed *wasm.Module
	if opts.base != "" {
		if seed, err = readModule(opts.base); err != nil {
			return err
		}
	}

	m, err := manifest.Assemble(man, seed)
	if err != nil {
		return err
	}

	if opts.validate {
		ctx := cmd.Context()
		eng, err := engine.NewWazeroEngine(ctx)
		if err != nil {
			return err
		}
		defer eng.Close(ctx)
		if err := eng.Validate(ctx, m); err != nil {
			return err
		}
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".wasm"
	}
	data := m.Encode()
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d sections)\n", out, len(data), len(m.Sections))
	return nil
}
