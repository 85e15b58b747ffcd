package generator

import "context"

// Generator is an external static-site generator driven through its command line.
type Generator interface {
	// Clean removes previously generated output.
	Clean(ctx context.Context) error
	// Generate renders the content store into OutputDir.
	Generate(ctx context.Context) error
	// OutputDir is the absolute path of the generated site.
	OutputDir() string
}

// Preset identifiers used across the CLI for selection.
const (
	PresetHexo   = "hexo"
	PresetHugo   = "hugo"
	PresetCustom = "custom"
)

// Preset carries the command line conventions of a known generator.
type Preset struct {
	Bin          string
	CleanArgs    []string
	GenerateArgs []string
	OutputDir    string
}

var presets = map[string]Preset{}

// RegisterPreset registers a generator name with its conventions.
func RegisterPreset(name string, p Preset) { presets[name] = p }

// LookupPreset returns the conventions registered for name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// init registers built-in presets.
func init() {
	RegisterPreset(PresetHexo, Preset{
		Bin:          "hexo",
		CleanArgs:    []string{"clean"},
		GenerateArgs: []string{"generate"},
		OutputDir:    "public",
	})
	// hugo has no clean command; Exec removes the output directory itself.
	RegisterPreset(PresetHugo, Preset{
		Bin:          "hugo",
		GenerateArgs: []string{"--cleanDestinationDir"},
		OutputDir:    "public",
	})
}
