package ark

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/axieum/hlna/internal/config"
	"github.com/axieum/hlna/internal/domain"
	"github.com/axieum/hlna/internal/rcon"
)

// saveGrace is how long to wait after SaveWorld for the save to flush.
const saveGrace = 10 * time.Second

// DialFunc opens an authenticated console to a game server.
type DialFunc func(ctx context.Context, host string, port int, password string) (Console, error)

// Cluster issues console commands against the configured game servers.
type Cluster struct {
	cfg   *config.ArkConfig
	dial  DialFunc
	sleep func(context.Context, time.Duration) error
	log   zerolog.Logger
}

// NewCluster creates a Cluster over the configured servers.
func NewCluster(cfg *config.ArkConfig, log zerolog.Logger) *Cluster {
	return &Cluster{
		cfg: cfg,
		dial: func(ctx context.Context, host string, port int, password string) (Console, error) {
			return rcon.Dial(ctx, host, port, password)
		},
		sleep: sleepContext,
		log:   log.With().Str("component", "cluster").Logger(),
	}
}

func (c *Cluster) server(name string) (config.ArkServer, error) {
	srv, ok := c.cfg.Server(name)
	if !ok {
		return config.ArkServer{}, fmt.Errorf("%w: %s", ErrUnknownServer, name)
	}
	if !srv.HasRcon() {
		return config.ArkServer{}, fmt.Errorf("%w: %s", ErrNoRcon, name)
	}
	return srv, nil
}

func (c *Cluster) connect(ctx context.Context, name string) (Console, error) {
	srv, err := c.server(name)
	if err != nil {
		return nil, err
	}
	console, err := c.dial(ctx, srv.RconHost, srv.RconPort, srv.RconPassword)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", name, err)
	}
	return console, nil
}

// Wipe runs the full countdown and wild dino wipe against a server.
func (c *Cluster) Wipe(ctx context.Context, name string) error {
	console, err := c.connect(ctx, name)
	if err != nil {
		return err
	}
	defer console.Close()

	ctx, cancel := context.WithTimeout(ctx, sessionDeadline)
	defer cancel()

	c.log.Info().Str("server", name).Msg("starting wild dino wipe")
	if err := runSequence(ctx, console, wipeSequence(), c.sleep); err != nil {
		return fmt.Errorf("wiping %s: %w", name, err)
	}
	c.log.Info().Str("server", name).Msg("wild dino wipe complete")
	return nil
}

// Save asks a server to save its world and waits for the save to settle.
func (c *Cluster) Save(ctx context.Context, name string) error {
	console, err := c.connect(ctx, name)
	if err != nil {
		return err
	}
	defer console.Close()

	if _, err := console.Execute("SaveWorld"); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	if err := c.sleep(ctx, saveGrace); err != nil {
		return err
	}
	c.log.Info().Str("server", name).Msg("world saved")
	return nil
}

// ListPlayers returns the players connected to a server.
func (c *Cluster) ListPlayers(ctx context.Context, name string) ([]domain.Player, error) {
	console, err := c.connect(ctx, name)
	if err != nil {
		return nil, err
	}
	defer console.Close()

	raw, err := console.Execute("ListPlayers")
	if err != nil {
		return nil, fmt.Errorf("listing players on %s: %w", name, err)
	}
	return domain.ParsePlayers(raw), nil
}

// Exec runs an arbitrary console command on a server.
func (c *Cluster) Exec(ctx context.Context, name, command string) (string, error) {
	console, err := c.connect(ctx, name)
	if err != nil {
		return "", err
	}
	defer console.Close()

	out, err := console.Execute(command)
	if err != nil {
		return "", fmt.Errorf("executing on %s: %w", name, err)
	}
	return out, nil
}
