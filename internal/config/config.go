package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds tool paths and per-workflow policy. Values left empty in an
// overlay file keep their defaults.
type Config struct {
	// GATKPath, STARPath and SamtoolsPath are the external executables,
	// resolved via $PATH when left as bare names.
	GATKPath     string `yaml:"gatk_path"`
	STARPath     string `yaml:"star_path"`
	SamtoolsPath string `yaml:"samtools_path"`

	Call  CallConfig  `yaml:"call"`
	Align AlignConfig `yaml:"align"`
}

// CallConfig is policy for the variant-calling workflow.
type CallConfig struct {
	// ReserveCore leaves one core for the OS when defaulting the thread count.
	ReserveCore bool `yaml:"reserve_core"`

	// MemoryFraction of detected total memory used when no explicit GiB given.
	MemoryFraction float64 `yaml:"memory_fraction"`

	// ResetLogs truncates log/err files from a previous failed attempt.
	ResetLogs bool `yaml:"reset_logs"`

	// FilterName / FilterExpression configure the hard-filtering stage.
	FilterName       string `yaml:"filter_name"`
	FilterExpression string `yaml:"filter_expression"`

	// KeepIntermediates disables the post-run cleanup of superseded artifacts.
	KeepIntermediates bool `yaml:"keep_intermediates"`
}

// AlignConfig is policy for the alignment workflow.
type AlignConfig struct {
	MemoryFraction float64 `yaml:"memory_fraction"`
}

// Default returns the built-in configuration. The calling workflow reserves
// a core and takes 85% of memory; the alignment workflow uses every core and
// 90%.
func Default() Config {
	return Config{
		GATKPath:     "gatk",
		STARPath:     "STAR",
		SamtoolsPath: "samtools",
		Call: CallConfig{
			ReserveCore:      true,
			MemoryFraction:   0.85,
			ResetLogs:        true,
			FilterName:       "basic_filter",
			FilterExpression: "FS > 30.0 || QD < 2.0",
		},
		Align: AlignConfig{
			MemoryFraction: 0.90,
		},
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
