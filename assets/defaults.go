package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// BuiltinNoisePatterns contains the embedded built-in noise pattern set.
//
//go:embed defaults/noise_patterns.txt
var BuiltinNoisePatterns []byte
