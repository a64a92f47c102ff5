package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-builder/wasm"
)

func newInspectCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file.wasm>",
		Short: "List the sections, imports and exports of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runBrowser(args[0])
			}
			m, err := readModule(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderInspect(out, args[0], m, isTerminal(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse and call exports in a TUI")
	return cmd
}

// sectionSummary describes a section's contents in a few words.
func sectionSummary(s wasm.Section) string {
	switch s := s.(type) {
	case *wasm.TypeSection:
		return plural(s.Len(), "type")
	case *wasm.FunctionSection:
		return plural(s.Len(), "function")
	case *wasm.ImportSection:
		return fmt.Sprintf("%s (%s)", plural(s.Len(), "import"), plural(s.Functions(), "function"))
	case *wasm.CodeSection:
		return plural(s.Len(), "body")
	case *wasm.ExportSection:
		return plural(s.Len(), "export")
	case *wasm.MemorySection:
		return plural(len(s.Entries), "memory")
	case *wasm.StartSection:
		return fmt.Sprintf("function %d", s.FuncIdx)
	case *wasm.CustomSection:
		return fmt.Sprintf("%q, %s", s.Name, plural(len(s.Data), "byte"))
	case *wasm.RawSection:
		return plural(len(s.Payload), "byte")
	default:
		return ""
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	switch noun {
	case "body":
		noun = "bodies"
	case "memory":
		noun = "memories"
	default:
		noun += "s"
	}
	return fmt.Sprintf("%d %s", n, noun)
}

func renderInspect(w io.Writer, path string, m *wasm.Module, color bool) {
	fmt.Fprintf(w, "%s %s\n\n", styled(color, titleStyle, "module"), path)

	fmt.Fprintln(w, styled(color, sectionStyle, "Sections:"))
	for i, s := range m.Sections {
		fmt.Fprintf(w, "  %2d  %-9s %s\n", i, wasm.SectionName(s.ID()), sectionSummary(s))
	}

	if is := m.ImportSection(); is != nil && is.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styled(color, sectionStyle, "Imports:"))
		for _, imp := range is.Entries {
			desc := wasm.KindName(imp.Desc.Kind)
			if imp.Desc.Kind == wasm.KindFunc {
				desc += " type " + fmt.Sprint(imp.Desc.TypeIdx)
			}
			fmt.Fprintf(w, "  %s  %s\n", styled(color, funcStyle, imp.Module+"."+imp.Name), desc)
		}
	}

	if es := m.ExportSection(); es != nil && es.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styled(color, sectionStyle, "Exports:"))
		for _, e := range es.Entries {
			line := fmt.Sprintf("  %s  %s %d", styled(color, funcStyle, e.Name), wasm.KindName(e.Kind), e.Idx)
			if e.Kind == wasm.KindFunc {
				if ft := m.GetFuncType(e.Idx); ft != nil {
					line += " " + styled(color, typeStyle, ft.String())
				}
			}
			fmt.Fprintln(w, line)
		}
	}
}
