// Package config loads the listener's bind address, role, worker-pool sizes
// and persistence URL from a YAML file, the way the teacher's main.go loads
// server.yaml with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role selects which handler a listener serves.
type Role string

const (
	RoleLogin   Role = "login"
	RoleWorld   Role = "world"
	RoleChannel Role = "channel"
)

const (
	DefaultClientWorkers  = 10
	DefaultClientsThreads = 100
)

// Config is the on-disk shape of server.yaml, mirroring the teacher's
// Config struct in main.go.
type Config struct {
	Address string `yaml:"address"`
	Port    uint16 `yaml:"port"`

	ServerType Role `yaml:"server_type"`
	// ChannelSequence and ChannelBasePort only apply when ServerType is
	// "channel": the bound port is ChannelBasePort + ChannelSequence,
	// per spec.md §6.
	ChannelSequence int    `yaml:"channel_sequence"`
	ChannelBasePort uint16 `yaml:"channel_base_port"`

	ClientsThreads int `yaml:"clients_threads"`
	ClientWorkers  int `yaml:"client_workers"`

	DatabaseURL  string `yaml:"database_url"`
	AutoRegister bool   `yaml:"auto_register"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// WorldCoordinatorAddr, if set, is dialed by channel-role listeners
	// to open a yamux control stream reporting this channel's bound
	// port back to a world/coordinator process. See SPEC_FULL.md DOMAIN
	// STACK for why this is the one place yamux survives the rewrite.
	WorldCoordinatorAddr string `yaml:"world_coordinator_addr"`
}

// Load decodes path into a Config, applies defaults for unset pool sizes,
// and lets the AUTO_REGISTER / DATABASE_URL environment variables override
// the file the way the original's dotenv-based bootstrap did.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if cfg.ClientWorkers == 0 {
		cfg.ClientWorkers = DefaultClientWorkers
	}
	if cfg.ClientsThreads == 0 {
		cfg.ClientsThreads = DefaultClientsThreads
	}

	if v, ok := os.LookupEnv("DATABASE_URL"); ok && v != "" {
		cfg.DatabaseURL = v
	}
	if v, ok := os.LookupEnv("AUTO_REGISTER"); ok {
		cfg.AutoRegister = v == "true"
	}

	return cfg, cfg.Validate()
}

// Validate reports whether required fields are present, matching the
// teacher's pattern of a hard log.Fatal on any missing required key.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("config: missing `address`")
	}
	if c.Port == 0 {
		return fmt.Errorf("config: missing `port`")
	}
	switch c.ServerType {
	case RoleLogin, RoleWorld, RoleChannel:
	default:
		return fmt.Errorf("config: unknown server_type `%s`", c.ServerType)
	}
	if c.ServerType == RoleChannel && c.ChannelBasePort == 0 {
		return fmt.Errorf("config: channel role requires `channel_base_port`")
	}
	return nil
}

// ListenPort returns the port this instance should bind, applying the
// base_port + sequence rule for channel-role listeners.
func (c Config) ListenPort() uint16 {
	if c.ServerType == RoleChannel {
		return c.ChannelBasePort + uint16(c.ChannelSequence)
	}
	return c.Port
}
