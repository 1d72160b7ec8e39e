package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const defaultAddr = "127.0.0.1:8080"

// EnvConfig holds flag defaults read from the environment. Flags given on
// the command line override them.
type EnvConfig struct {
	Database string `env:"ATOM_DB"`
	Format   string `env:"ATOM_FORMAT"  envDefault:"text"`
	Verbose  bool   `env:"ATOM_VERBOSE"`
	Addr     string `env:"ATOM_ADDR"    envDefault:"127.0.0.1:8080"`
}

// LoadEnvConfig reads EnvConfig from the environment.
func LoadEnvConfig() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{Format: "text", Addr: defaultAddr}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
