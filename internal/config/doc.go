// Package config loads, validates, and normalizes castfetch configuration.
//
// Configuration is TOML with an embedded sample. Load order: explicit path,
// then ~/.config/castfetch/config.toml, then ./castfetch.toml, falling back
// to built-in defaults when no file exists. All path fields are expanded
// (~, relative) and the episode filter regex is compiled once at load time.
package config
