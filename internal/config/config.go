// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	WorkspaceRoot string        `toml:"workspace_root"`
	Paths         []string      `toml:"paths"`
	Exclude       Exclude       `toml:"exclude"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Scan struct {
	Workers        int     `toml:"workers"`
	ReadsPerSecond float64 `toml:"reads_per_second"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

type Output struct {
	Mermaid string `toml:"mermaid"`
	DOT     string `toml:"dot"`
	TSV     string `toml:"tsv"`
	Minify  bool   `toml:"minify"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	ListenAddr   string `toml:"listen_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Load reads a TOML config file. A missing file is not an error: the caller
// gets the defaults, so running without any config works out of the box.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.WorkspaceRoot == "" {
		c.WorkspaceRoot = "."
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = 8
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Output.Mermaid == "" {
		c.Output.Mermaid = "depmap.mmd"
	}
	if c.History.Path == "" {
		c.History.Path = "depmap_history.db"
	}
}
