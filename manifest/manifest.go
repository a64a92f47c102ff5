package manifest

import (
	"io"

	"github.com/spf13/viper"

	"github.com/wippyai/wasm-builder/errors"
)

// Manifest is a declarative module description.
type Manifest struct {
	Name       string      `mapstructure:"name" toml:"name,omitempty" yaml:"name,omitempty"`
	Start      string      `mapstructure:"start" toml:"start,omitempty" yaml:"start,omitempty"`
	Types      []Signature `mapstructure:"types" toml:"types,omitempty" yaml:"types,omitempty"`
	Imports    []Import    `mapstructure:"imports" toml:"imports,omitempty" yaml:"imports,omitempty"`
	Memories   []Memory    `mapstructure:"memories" toml:"memories,omitempty" yaml:"memories,omitempty"`
	Functions  []Function  `mapstructure:"functions" toml:"functions,omitempty" yaml:"functions,omitempty"`
	Exports    []Export    `mapstructure:"exports" toml:"exports,omitempty" yaml:"exports,omitempty"`
	DedupTypes bool        `mapstructure:"dedup_types" toml:"dedup_types,omitempty" yaml:"dedup_types,omitempty"`
}

// Signature is a function type by value type names.
type Signature struct {
	Params  []string `mapstructure:"params" toml:"params,omitempty" yaml:"params,omitempty"`
	Results []string `mapstructure:"results" toml:"results,omitempty" yaml:"results,omitempty"`
}

// Import is one import entry. Kind is func (default), memory, table or global.
// A function import takes its type from Type when set, otherwise from
// Params and Results. As names the import for calls.
type Import struct {
	Max       *uint64  `mapstructure:"max" toml:"max,omitempty" yaml:"max,omitempty"`
	Type      *uint32  `mapstructure:"type" toml:"type,omitempty" yaml:"type,omitempty"`
	Module    string   `mapstructure:"module" toml:"module" yaml:"module"`
	Name      string   `mapstructure:"name" toml:"name" yaml:"name"`
	Kind      string   `mapstructure:"kind" toml:"kind,omitempty" yaml:"kind,omitempty"`
	As        string   `mapstructure:"as" toml:"as,omitempty" yaml:"as,omitempty"`
	Elem      string   `mapstructure:"elem" toml:"elem,omitempty" yaml:"elem,omitempty"`
	ValueType string   `mapstructure:"value_type" toml:"value_type,omitempty" yaml:"value_type,omitempty"`
	Params    []string `mapstructure:"params" toml:"params,omitempty" yaml:"params,omitempty"`
	Results   []string `mapstructure:"results" toml:"results,omitempty" yaml:"results,omitempty"`
	Min       uint64   `mapstructure:"min" toml:"min,omitempty" yaml:"min,omitempty"`
	Mutable   bool     `mapstructure:"mutable" toml:"mutable,omitempty" yaml:"mutable,omitempty"`
}

// Memory declares a linear memory in 64KiB pages.
type Memory struct {
	Max    *uint64 `mapstructure:"max" toml:"max,omitempty" yaml:"max,omitempty"`
	Export string  `mapstructure:"export" toml:"export,omitempty" yaml:"export,omitempty"`
	Min    uint64  `mapstructure:"min" toml:"min" yaml:"min"`
}

// Function is a defined function. Type, when set, references an existing
// type index instead of declaring Params and Results inline.
type Function struct {
	Type    *uint32  `mapstructure:"type" toml:"type,omitempty" yaml:"type,omitempty"`
	Name    string   `mapstructure:"name" toml:"name,omitempty" yaml:"name,omitempty"`
	Export  string   `mapstructure:"export" toml:"export,omitempty" yaml:"export,omitempty"`
	Params  []string `mapstructure:"params" toml:"params,omitempty" yaml:"params,omitempty"`
	Results []string `mapstructure:"results" toml:"results,omitempty" yaml:"results,omitempty"`
	Locals  []string `mapstructure:"locals" toml:"locals,omitempty" yaml:"locals,omitempty"`
	Body    []string `mapstructure:"body" toml:"body,omitempty" yaml:"body,omitempty"`
}

// Export exports a definition by index, or a function by name.
type Export struct {
	Index    *uint32 `mapstructure:"index" toml:"index,omitempty" yaml:"index,omitempty"`
	Name     string  `mapstructure:"name" toml:"name" yaml:"name"`
	Kind     string  `mapstructure:"kind" toml:"kind,omitempty" yaml:"kind,omitempty"`
	Function string  `mapstructure:"function" toml:"function,omitempty" yaml:"function,omitempty"`
}

// Load reads a manifest file. The format follows the file extension.
func Load(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidInput, err, "read "+path)
	}
	return decode(v)
}

// Parse reads a manifest in the given format (toml, yaml or json).
func Parse(r io.Reader, format string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidInput, err, "parse "+format+" manifest")
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Manifest, error) {
	var man Manifest
	if err := v.Unmarshal(&man); err != nil {
		return nil, errors.Wrap(errors.PhaseManifest, errors.KindInvalidData, err, "decode manifest")
	}
	return &man, nil
}
