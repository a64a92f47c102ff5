package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/wasm-builder/wasm"
)

const addManifest = `
name = "calc"

[[functions]]
name = "add"
params = ["i32", "i32"]
results = ["i32"]
body = ["local.get 0", "local.get 1", "i32.add"]
export = "add"

[[functions]]
name = "answer"
results = ["i64"]
body = ["i64.const 42"]
export = "answer"
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func assembled(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "calc.toml")
	if err := os.WriteFile(src, []byte(addManifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out, _, err := execute(t, "assemble", src, "--validate")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	path := filepath.Join(dir, "calc.wasm")
	if !strings.Contains(out, "wrote "+path) {
		t.Errorf("assemble output = %q", out)
	}
	return path
}

func TestAssembleCommand(t *testing.T) {
	path := assembled(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if _, ok := m.ExportSection().Lookup("add"); !ok {
		t.Error("add not exported")
	}
}

func TestAssembleOnBase(t *testing.T) {
	base := assembled(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "more.yaml")
	manifest := "functions:\n  - name: one\n    results: [i32]\n    body: [\"i32.const 1\"]\n    export: one\n"
	if err := os.WriteFile(src, []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out := filepath.Join(dir, "out.wasm")
	if _, _, err := execute(t, "assemble", src, "--base", base, "-o", out, "--dedup-types"); err != nil {
		t.Fatalf("assemble: %v", err)
	}

	stdout, _, err := execute(t, "run", out, "one")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(stdout) != "1" {
		t.Errorf("one() = %q", stdout)
	}
	stdout, _, err = execute(t, "run", out, "add", "2", "3")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(stdout) != "5" {
		t.Errorf("add(2, 3) = %q", stdout)
	}
}

func TestAssembleErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[[functions]]\nbody = [\"nope\"]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing manifest", []string{"assemble", filepath.Join(dir, "none.toml")}},
		{"bad instruction", []string{"assemble", bad}},
		{"missing base", []string{"assemble", bad, "--base", filepath.Join(dir, "none.wasm")}},
		{"no args", []string{"assemble"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAssembleRejectsFunctionImportOnBase(t *testing.T) {
	base := assembled(t)
	src := filepath.Join(t.TempDir(), "imports.toml")
	manifest := "[[imports]]\nmodule = \"env\"\nname = \"tick\"\n"
	if err := os.WriteFile(src, []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, _, err := execute(t, "assemble", src, "--base", base)
	if err == nil || !strings.Contains(err.Error(), "renumber") {
		t.Errorf("err = %v, want renumbering error", err)
	}
}

func TestRunCommand(t *testing.T) {
	path := assembled(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"add", []string{"add", "40", "2"}, "42", false},
		{"negative", []string{"add", "-1", "-2"}, "-3", false},
		{"no params", []string{"answer"}, "42", false},
		{"missing export", []string{"sub", "1", "2"}, "", true},
		{"arity", []string{"add", "1"}, "", true},
		{"bad argument", []string{"add", "x", "1"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"run", path}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := strings.TrimSpace(stdout); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeCommand(t *testing.T) {
	path := assembled(t)

	stdout, stderr, err := execute(t, "describe", path)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	for _, want := range []string{"[[types]]", "[[functions]]", "i32.add", "[[exports]]", "answer"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("toml output missing %q:\n%s", want, stdout)
		}
	}
	if stderr != "" {
		t.Errorf("unexpected warnings: %q", stderr)
	}

	stdout, _, err = execute(t, "describe", path, "--format", "yaml")
	if err != nil {
		t.Fatalf("describe yaml: %v", err)
	}
	if !strings.Contains(stdout, "functions:") {
		t.Errorf("yaml output:\n%s", stdout)
	}

	if _, _, err := execute(t, "describe", path, "-f", "ini"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDescribeWarnsOnCustomSection(t *testing.T) {
	m := wasm.NewModule(&wasm.CustomSection{Name: "producers", Data: []byte{0}})
	path := filepath.Join(t.TempDir(), "custom.wasm")
	if err := os.WriteFile(path, m.Encode(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, stderr, err := execute(t, "describe", path)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(stderr, "custom:producers") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestInspectCommand(t *testing.T) {
	path := assembled(t)

	stdout, _, err := execute(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{
		"Sections:",
		"type      2 types",
		"function  2 functions",
		"code      2 bodies",
		"Exports:",
		"add  func 0 (i32, i32) -> (i32)",
		"answer  func 1 () -> (i64)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Error("styled output written to a non-terminal")
	}
}

func TestSectionSummary(t *testing.T) {
	one := uint64(1)
	tests := []struct {
		section wasm.Section
		want    string
	}{
		{&wasm.TypeSection{Types: []wasm.FuncType{{}}}, "1 type"},
		{&wasm.ImportSection{Entries: []wasm.Import{
			{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc}},
			{Module: "env", Name: "m", Desc: wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: wasm.Limits{Max: &one}}}},
		}}, "2 imports (1 function)"},
		{&wasm.MemorySection{Entries: make([]wasm.MemoryType, 2)}, "2 memories"},
		{&wasm.StartSection{FuncIdx: 3}, "function 3"},
		{&wasm.CustomSection{Name: "name", Data: []byte{1, 2}}, `"name", 2 bytes`},
		{&wasm.RawSection{SectionID: wasm.SectionGlobal, Payload: []byte{0}}, "1 byte"},
	}
	for _, tt := range tests {
		if got := sectionSummary(tt.section); got != tt.want {
			t.Errorf("sectionSummary(%s) = %q, want %q", wasm.SectionName(tt.section.ID()), got, tt.want)
		}
	}
}

func TestBrowseModel(t *testing.T) {
	path := assembled(t)

	m := newBrowseModel(path)
	defer m.close()

	m.Update(m.load())
	if m.err != nil {
		t.Fatalf("load: %v", m.err)
	}
	if len(m.funcs) != 2 || m.funcs[0].name != "add" || m.funcs[1].name != "answer" {
		t.Fatalf("funcs = %+v", m.funcs)
	}
	if !strings.Contains(m.View(), "Select a function") {
		t.Errorf("view:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInputArgs || len(m.inputs) != 2 {
		t.Fatalf("state = %d, inputs = %d", m.state, len(m.inputs))
	}
	m.inputs[0].SetValue("20")
	m.inputs[1].SetValue(" 22 ")

	m.Update(m.callFunction())
	if m.state != stateShowResult || m.err != nil || m.result != "42" {
		t.Fatalf("state = %d, result = %q, err = %v", m.state, m.result, m.err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.state != stateSelectFunc || m.selected != 1 {
		t.Fatalf("state = %d, selected = %d", m.state, m.selected)
	}
	m.prepareInputs()
	m.Update(m.callFunction())
	if m.result != "42" {
		t.Errorf("answer() = %q", m.result)
	}
}

func TestBrowseModelLoadError(t *testing.T) {
	m := newBrowseModel(filepath.Join(t.TempDir(), "missing.wasm"))
	m.Update(m.load())
	if m.err == nil {
		t.Fatal("expected load error")
	}
	if !strings.Contains(m.View(), "Error") {
		t.Errorf("view:\n%s", m.View())
	}
}
