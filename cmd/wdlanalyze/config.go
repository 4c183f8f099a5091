package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional wdlanalyze.toml file's shape: worker pool size,
// sqlite store directory, and the serve listen address. There is no HTTP
// timeout setting. Every field has a sensible zero-value default so a
// missing file is equivalent to an empty one.
type Config struct {
	Workers    int    `toml:"workers"`
	StoreDir   string `toml:"store_dir"`
	ListenAddr string `toml:"listen_addr"`
}

const defaultConfigPath = "wdlanalyze.toml"

// loadConfig reads path (defaultConfigPath if empty) and unmarshals it. A
// missing file is not an error; it just yields a zero Config.
func loadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return 4
}

func (c Config) storeDir() string {
	if c.StoreDir != "" {
		return c.StoreDir
	}
	return "."
}

func (c Config) listenAddr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return "localhost:8080"
}
