package main

import (
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"
)

// Config is the demo program's configuration, loaded the way
// dc4eu-vc/pkg/configuration loads vc/pkg/model.Cfg: defaults applied via
// creasty/defaults, then overridden by an optional YAML file.
type Config struct {
	Issuer struct {
		Identifier string `yaml:"identifier" default:"https://issuer.example"`
	} `yaml:"issuer"`
	CredentialType string `yaml:"credential_type" default:"https://credentials.example/identity_credential"`
	HashAlgorithm  string `yaml:"hash_algorithm" default:"sha-256"`
	DecoyDigests   int    `yaml:"decoy_digests" default:"2"`
	Verifier       struct {
		Audience string `yaml:"audience" default:"https://verifier.example"`
	} `yaml:"verifier"`
}

// loadConfig applies defaults and then, if path is non-empty, overlays a
// YAML file on top of them.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
