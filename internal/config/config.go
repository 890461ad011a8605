// Package config loads and validates the bot configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the bot.
type Config struct {
	Client   ClientConfig   `yaml:"client"`
	Ark      ArkConfig      `yaml:"ark"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ClientConfig holds the Discord credentials.
type ClientConfig struct {
	Token         string `yaml:"token"`
	ApplicationID string `yaml:"application_id"`
	GuildID       string `yaml:"guild_id"`
}

// ArkConfig describes the managed cluster of game servers.
type ArkConfig struct {
	Servers     []ArkServer    `yaml:"servers"`
	DinoWipe    DinoWipeConfig `yaml:"dinowipe"`
	MaxServers  int            `yaml:"max_servers"`
	ComposeFile string         `yaml:"compose_file"`
}

// ArkServer is a single game server in the cluster.
type ArkServer struct {
	Name          string `yaml:"name"`
	Emoji         string `yaml:"emoji"`
	RconHost      string `yaml:"rcon_host"`
	RconPort      int    `yaml:"rcon_port"`
	RconPassword  string `yaml:"rcon_password"`
	DockerService string `yaml:"docker_service"`
}

// Label returns the display label for the server, including its emoji
// when one is configured.
func (s ArkServer) Label() string {
	if s.Emoji == "" {
		return s.Name
	}
	return s.Emoji + " " + s.Name
}

// HasRcon reports whether the server has complete remote console
// credentials. All of host, port, and password are required.
func (s ArkServer) HasRcon() bool {
	return s.RconHost != "" && s.RconPort > 0 && s.RconPassword != ""
}

// DinoWipeConfig controls the wild dino wipe vote workflow.
type DinoWipeConfig struct {
	Ping                string `yaml:"ping"`
	CooldownSeconds     int    `yaml:"cooldown_seconds"`
	PollDurationSeconds int    `yaml:"poll_duration_seconds"`
}

// Cooldown returns the minimum interval between successful wipes.
func (d DinoWipeConfig) Cooldown() time.Duration {
	return time.Duration(d.CooldownSeconds) * time.Second
}

// PollDuration returns how long a wipe vote stays open.
func (d DinoWipeConfig) PollDuration() time.Duration {
	return time.Duration(d.PollDurationSeconds) * time.Second
}

// DatabaseConfig holds the SQLite database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if token := os.Getenv("HLNA_TOKEN"); token != "" {
		cfg.Client.Token = token
	}
	if dbPath := os.Getenv("HLNA_DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ark.DinoWipe.CooldownSeconds == 0 {
		c.Ark.DinoWipe.CooldownSeconds = 3600
	}
	if c.Ark.DinoWipe.PollDurationSeconds == 0 {
		c.Ark.DinoWipe.PollDurationSeconds = 300
	}
	if c.Ark.MaxServers == 0 {
		c.Ark.MaxServers = 3
	}
	if c.Ark.ComposeFile == "" {
		c.Ark.ComposeFile = "/home/ark/docker-compose.yaml"
	}
	if c.Database.Path == "" {
		c.Database.Path = "hlna.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for required fields.
func (c *Config) Validate() error {
	if c.Client.Token == "" {
		return fmt.Errorf("client.token is required")
	}
	if c.Client.ApplicationID == "" {
		return fmt.Errorf("client.application_id is required")
	}
	if len(c.Ark.Servers) == 0 {
		return fmt.Errorf("at least one ark server must be configured")
	}
	seen := make(map[string]bool, len(c.Ark.Servers))
	for i, s := range c.Ark.Servers {
		if s.Name == "" {
			return fmt.Errorf("ark.servers[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("ark.servers: duplicate name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Server returns the configured server with the given name.
func (c *ArkConfig) Server(name string) (ArkServer, bool) {
	for _, s := range c.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return ArkServer{}, false
}
