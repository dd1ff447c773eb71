/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads engine configuration and schema definition files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/suparena/transitstore/schema"
)

// Backend names accepted in the engine configuration.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Config is the engine configuration, loaded from YAML.
type Config struct {
	// Backend selects the document store: memory, badger, or dynamodb.
	Backend string `yaml:"backend"`

	// SchemaFile is the path to the JSON schema definitions.
	SchemaFile string `yaml:"schema_file"`

	Badger struct {
		// Dir is the Badger data directory.
		Dir string `yaml:"dir"`
	} `yaml:"badger"`

	DynamoDB struct {
		// Table is the DynamoDB table name; region and credentials come
		// from AWS_* environment variables.
		Table  string `yaml:"table"`
		Region string `yaml:"region"`
	} `yaml:"dynamodb"`

	Sweep struct {
		// Interval between sweep passes for backends without native TTL.
		Interval time.Duration `yaml:"interval"`
		// BatchSize bounds expired-key scans per pass iteration.
		BatchSize int `yaml:"batch_size"`
	} `yaml:"sweep"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = 30 * time.Second
	}
	if c.Sweep.BatchSize == 0 {
		c.Sweep.BatchSize = 256
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.Badger.Dir == "" {
			return fmt.Errorf("badger backend requires badger.dir")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			return fmt.Errorf("dynamodb backend requires dynamodb.table")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// LoadDefinitions reads a JSON schema definitions file: a mapping from
// entity-type name to its definition, in the existing wire shape.
func LoadDefinitions(path string) (map[string]schema.Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definitions %q: %w", path, err)
	}
	defs := map[string]schema.Definition{}
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse schema definitions %q: %w", path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("schema definitions %q are empty", path)
	}
	return defs, nil
}
