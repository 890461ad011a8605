// Package docker wraps docker compose for game server lifecycle control.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// runFunc executes a command and returns its combined output. Injected
// for tests.
type runFunc func(ctx context.Context, name string, args ...string) (string, error)

// Compose drives a docker compose project.
type Compose struct {
	file string
	run  runFunc
	log  zerolog.Logger
}

// NewCompose creates a Compose wrapper for the given compose file.
func NewCompose(file string, log zerolog.Logger) *Compose {
	return &Compose{
		file: file,
		run: func(ctx context.Context, name string, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			return string(out), err
		},
		log: log.With().Str("component", "compose").Logger(),
	}
}

func (c *Compose) compose(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"compose", "-f", c.file}, args...)
	out, err := c.run(ctx, "docker", full...)
	if err != nil {
		return out, fmt.Errorf("docker %s: %w", strings.Join(full, " "), err)
	}
	return out, nil
}

// ServiceState is the running state of one compose service.
type ServiceState struct {
	Name   string `json:"Service"`
	State  string `json:"State"`
	Status string `json:"Status"`
}

// Running reports whether the service is up.
func (s ServiceState) Running() bool {
	return s.State == "running"
}

// Services returns the state of every service in the project.
func (c *Compose) Services(ctx context.Context) ([]ServiceState, error) {
	out, err := c.compose(ctx, "ps", "--all", "--format", "json")
	if err != nil {
		return nil, err
	}

	// docker compose emits one JSON object per line
	var services []ServiceState
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var s ServiceState
		if err := json.Unmarshal([]byte(line), &s); err != nil {
			return nil, fmt.Errorf("parsing compose ps output: %w", err)
		}
		services = append(services, s)
	}
	return services, nil
}

// Service returns the state of a single service, or nil when the project
// does not define it.
func (c *Compose) Service(ctx context.Context, name string) (*ServiceState, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}

// Up starts a service in the background.
func (c *Compose) Up(ctx context.Context, service string) error {
	c.log.Info().Str("service", service).Msg("starting service")
	_, err := c.compose(ctx, "up", "-d", service)
	return err
}

// Down stops and removes a service.
func (c *Compose) Down(ctx context.Context, service string) error {
	c.log.Info().Str("service", service).Msg("stopping service")
	_, err := c.compose(ctx, "down", service)
	return err
}

// Restart restarts a service. A silent restart means compose did not act
// on the service, so empty output is treated as failure.
func (c *Compose) Restart(ctx context.Context, service string) error {
	c.log.Info().Str("service", service).Msg("restarting service")
	out, err := c.compose(ctx, "restart", service)
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Errorf("restarting %s: no response from compose", service)
	}
	return nil
}
