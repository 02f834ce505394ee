// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"os"
	"path"
	"strings"

	"github.com/gomlx/evtgen/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// EVTGEN_CONFIG is the environment variable with the default code generation configuration.
// See ParseConfig for the format.
//
//nolint:revive,stylecheck // Name mirrors the environment variable.
const EVTGEN_CONFIG = "EVTGEN_CONFIG"

// Config holds the options of a code generation Session.
type Config struct {
	// DescriptiveNames includes a fragment derived from the origins of the fused nodes
	// in the kernel names, e.g. "cuda_fused_add_mm_0" instead of "cuda_0".
	DescriptiveNames bool

	// CacheDir is the directory under which kernel paths are derived.
	// It is only used for bookkeeping: nothing is written there by the code generator.
	CacheDir string
}

// DefaultCacheDir is the cache directory used if none is configured.
func DefaultCacheDir() string {
	return path.Join(os.TempDir(), "evtgen")
}

// DefaultConfig returns the configuration with all options at their default values.
func DefaultConfig() Config {
	return Config{CacheDir: DefaultCacheDir()}
}

// ParseConfig parses a comma-separated list of options, starting from DefaultConfig:
//
//   - "descriptive_names" or "descriptive_names=false": DescriptiveNames.
//   - "cache_dir=<dir>": CacheDir; a leading "~" is replaced by the user's home directory.
//
// Unknown options are an error. An empty string returns the DefaultConfig.
func ParseConfig(config string) (Config, error) {
	c := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "descriptive_names":
			if !hasValue {
				c.DescriptiveNames = true
				break
			}
			switch strings.ToLower(value) {
			case "true", "1":
				c.DescriptiveNames = true
			case "false", "0":
				c.DescriptiveNames = false
			default:
				return c, errors.Errorf("invalid value %q for option %q in configuration %q", value, key, config)
			}
		case "cache_dir":
			if value == "" {
				return c, errors.Errorf("option %q requires a directory in configuration %q", key, config)
			}
			dir, err := fsutil.ReplaceTildeInDir(value)
			if err != nil {
				return c, errors.WithMessagef(err, "configuration %q", config)
			}
			c.CacheDir = dir
		default:
			return c, errors.Errorf("unknown option %q in code generation configuration %q", part, config)
		}
	}
	return c, nil
}

// ConfigFromEnv parses the configuration in the environment variable EVTGEN_CONFIG, or
// returns the DefaultConfig if it is not set.
func ConfigFromEnv() (Config, error) {
	config, found := os.LookupEnv(EVTGEN_CONFIG)
	if !found {
		return DefaultConfig(), nil
	}
	c, err := ParseConfig(config)
	if err != nil {
		return c, errors.WithMessagef(err, "parsing $%s", EVTGEN_CONFIG)
	}
	return c, nil
}
