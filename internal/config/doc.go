// Package config provides the configuration system for Inkwell.
//
// Configuration merges in three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← INKWELL_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML or YAML
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Basic Usage
//
// Load configuration from a file path (empty path uses defaults plus
// environment):
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Watcher.Debounce())
//
// # Configuration Files
//
// Inkwell uses TOML as the primary configuration format; YAML is
// accepted for .yaml/.yml paths:
//
//	[logging]
//	level = "info"
//
//	[watcher]
//	enabled = true
//	debounce_ms = 100
//	exclude = ["*.tmp"]
//
//	[buffers]
//	max_file_size = 10485760
//
// # Project Settings
//
// A workspace may carry per-project overrides in an .inkwell.toml (or
// .inkwell.yml) file at its first root; see LoadProjectSettings.
package config
