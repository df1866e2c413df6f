package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oveo-dev/oveo/pkg/optimizer"
)

// ProjectConfig holds the contents of .oveo.yaml.
type ProjectConfig struct {
	Hoist            bool                             `yaml:"hoist"`
	Dedupe           bool                             `yaml:"dedupe"`
	Globals          optimizer.GlobalsOptions          `yaml:"globals"`
	Externs          optimizer.ExternsOptions          `yaml:"externs"`
	RenameProperties optimizer.RenamePropertiesOptions `yaml:"renameProperties"`
}

// loadProjectConfig reads .oveo.yaml from the current directory. Returns nil
// (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(".oveo.yaml")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveOptions applies the fallback chain: flags override the project
// config file, which overrides the engine zero-value defaults.
func resolveOptions(flags cliFlags) (optimizer.Options, error) {
	opts := optimizer.Options{}

	cfg, err := loadProjectConfig()
	if err != nil {
		return opts, err
	}
	if cfg != nil {
		opts.Hoist = cfg.Hoist
		opts.Dedupe = cfg.Dedupe
		opts.Globals = cfg.Globals
		opts.Externs = cfg.Externs
		opts.RenameProperties = cfg.RenameProperties
	}

	if flags.hoistSet {
		opts.Hoist = flags.hoist
	}
	if flags.dedupeSet {
		opts.Dedupe = flags.dedupe
	}
	if flags.renamePattern != "" {
		opts.RenameProperties.Pattern = flags.renamePattern
	}
	if flags.globalsInclude != "" {
		opts.Globals.Include = splitCommaList(flags.globalsInclude)
	}
	if flags.globalsHoistSet {
		opts.Globals.Hoist = flags.globalsHoist
	}
	if flags.singletonsSet {
		opts.Globals.Singletons = flags.singletons
	}

	return opts, nil
}

func splitCommaList(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
