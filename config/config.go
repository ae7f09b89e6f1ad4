// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment.
// A .env file in the working directory is loaded into the environment first
// when present, so local development credentials stay out of the shell.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields.
const (
	DefaultAddr          = ":8000"
	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUsername = "neo4j"
	DefaultNeo4jDatabase = "neo4j"
	DefaultModel         = "gpt-4o-mini"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, host:port or :port.
	Addr string `yaml:"addr" env:"KGCHAT_ADDR"`
}

// Neo4jConfig configures the graph store connection.
type Neo4jConfig struct {
	URI      string `yaml:"uri" env:"NEO4J_URI"`
	Username string `yaml:"username" env:"NEO4J_USERNAME"`
	Password string `yaml:"password" env:"NEO4J_PASSWORD"`
	Database string `yaml:"database" env:"NEO4J_DATABASE"`
}

// LLMConfig configures the generation backend. An empty APIKey selects the
// deterministic mock backend.
type LLMConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"OPENAI_MODEL"`
}

// RedisConfig configures the optional session history backend. An empty URL
// selects the in-process store.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Neo4j  Neo4jConfig  `yaml:"neo4j"`
	LLM    LLMConfig    `yaml:"llm"`
	Redis  RedisConfig  `yaml:"redis"`
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips the file layer. Environment variables override file values.
func Load(path string) (Config, error) {
	// Best effort: absence of a .env file is the common case.
	_ = godotenv.Load()

	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills unset fields. Defaults are applied after both layers so
// neither file nor environment values are clobbered.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Neo4j.URI == "" {
		c.Neo4j.URI = DefaultNeo4jURI
	}
	if c.Neo4j.Username == "" {
		c.Neo4j.Username = DefaultNeo4jUsername
	}
	if c.Neo4j.Database == "" {
		c.Neo4j.Database = DefaultNeo4jDatabase
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
}
