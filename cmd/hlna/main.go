// hlna - ARK: Survival Ascended cluster companion bot
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/axieum/hlna/internal/ark"
	"github.com/axieum/hlna/internal/config"
	"github.com/axieum/hlna/internal/discord"
	"github.com/axieum/hlna/internal/domain"
	"github.com/axieum/hlna/internal/rcon"
	"github.com/axieum/hlna/internal/storage"
)

var version = "dev"

const defaultConfigPath = "/etc/hlna/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "wipes":
		cmdWipes(os.Args[2:])
	case "holds":
		cmdHolds(os.Args[2:])
	case "rcon":
		cmdRcon(os.Args[2:])
	case "players":
		cmdPlayers(os.Args[2:])
	case "version":
		fmt.Printf("hlna %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: hlna <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init                       Write a starter config file")
	fmt.Println("  serve                      Start the Discord bot")
	fmt.Println("  wipes [--recent N]         Show recent wipe votes (default: 20)")
	fmt.Println("  holds list                 Show active wipe holds")
	fmt.Println("  holds add <server>         Block wipe votes for a server")
	fmt.Println("  holds remove <server>      Release a wipe hold")
	fmt.Println("  rcon <server> <command>    Run a console command on a server")
	fmt.Println("  players <server>           Show who is playing on a server")
	fmt.Println("  version                    Show version")
	fmt.Println("  help                       Show this help")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --config <path>    Path to configuration file (default /etc/hlna/config.yml)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  hlna init")
	fmt.Println("  hlna serve --config /etc/hlna/config.yml")
	fmt.Println("  hlna holds add island")
	fmt.Println("  hlna rcon island SaveWorld")
}

func loadConfig(path string) *config.Config {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		} else {
			fmt.Fprintf(os.Stderr, "No config file found at %s. Use --config to specify one.\n", defaultConfigPath)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// cmdServe starts the Discord bot
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Info().Str("version", version).Int("servers", len(cfg.Ark.Servers)).Msg("hlna starting")

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()
	logger.Info().Str("path", cfg.Database.Path).Msg("database initialized")

	bot, err := discord.New(cfg, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bot.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start bot")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()
	if err := bot.Stop(); err != nil {
		logger.Error().Err(err).Msg("bot shutdown error")
	}
}

// cmdInit writes a starter config file
func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "where to write the config file")
	fs.Parse(args)

	if _, err := os.Stat(*configPath); err == nil {
		fmt.Fprintf(os.Stderr, "Config already exists at %s\n", *configPath)
		os.Exit(1)
	}

	sample := `client:
  token: ""            # Discord bot token (or set HLNA_TOKEN)
  application_id: ""
  guild_id: ""

ark:
  compose_file: /home/ark/docker-compose.yaml
  dinowipe:
    ping: ""           # e.g. <@&ROLE_ID>
    cooldown_seconds: 3600
    poll_duration_seconds: 300
  servers:
    - name: island
      emoji: "🏝️"
      rcon_host: 127.0.0.1
      rcon_port: 27020
      rcon_password: ""
      docker_service: ark-island

database:
  path: /var/lib/hlna/hlna.db

log:
  level: info
  pretty: false
`
	if err := os.WriteFile(*configPath, []byte(sample), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote starter config to %s\n", *configPath)
}

// cmdWipes shows recent wipe votes
func cmdWipes(args []string) {
	fs := flag.NewFlagSet("wipes", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	recent := fs.Int("recent", 20, "number of votes to show")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	votes, err := store.RecentVotes(context.Background(), *recent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list votes: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTARGET\tOUTCOME\tUSER")
	for _, v := range votes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			v.CreatedAt.Format("2006-01-02 15:04"), v.Target, v.Outcome, v.UserID)
	}
	w.Flush()
}

// cmdHolds manages wipe holds
func cmdHolds(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hlna holds <list|add|remove> [server]")
		os.Exit(1)
	}
	sub := args[0]

	fs := flag.NewFlagSet("holds", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args[1:])
	rest := fs.Args()

	cfg := loadConfig(*configPath)
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	switch sub {
	case "list":
		holds, err := store.ListHolds(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list holds: %v\n", err)
			os.Exit(1)
		}
		if len(holds) == 0 {
			fmt.Println("No active holds")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SINCE\tTARGET\tUSER")
		for _, h := range holds {
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.CreatedAt.Format("2006-01-02 15:04"), h.Target, h.UserID)
		}
		w.Flush()
	case "add":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: hlna holds add <server>")
			os.Exit(1)
		}
		target := rest[0]
		if _, ok := cfg.Ark.Server(target); !ok {
			fmt.Fprintf(os.Stderr, "Unknown server: %s\n", target)
			os.Exit(1)
		}
		orch := ark.New(&cfg.Ark, store, nil, nil, zerolog.Nop())
		if _, err := orch.PlaceHold(ctx, domain.Requester{ID: "cli", Name: "cli"}, target); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to place hold: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Hold placed on %s\n", target)
	case "remove":
		if len(rest) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: hlna holds remove <server>")
			os.Exit(1)
		}
		target := rest[0]
		released, err := store.DeleteHold(ctx, target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to release hold: %v\n", err)
			os.Exit(1)
		}
		if !released {
			fmt.Printf("No hold on %s\n", target)
			return
		}
		fmt.Printf("Hold released on %s\n", target)
	default:
		fmt.Fprintf(os.Stderr, "Unknown holds command: %s\n", sub)
		os.Exit(1)
	}
}

// cmdRcon runs a console command on a server
func cmdRcon(args []string) {
	fs := flag.NewFlagSet("rcon", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)
	rest := fs.Args()

	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hlna rcon <server> <command...>")
		os.Exit(1)
	}
	target := rest[0]
	command := strings.Join(rest[1:], " ")

	cfg := loadConfig(*configPath)
	srv, ok := cfg.Ark.Server(target)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown server: %s\n", target)
		os.Exit(1)
	}
	if srv.RconHost == "" || srv.RconPort == 0 {
		fmt.Fprintf(os.Stderr, "Server %s has no rcon configured\n", target)
		os.Exit(1)
	}

	password := srv.RconPassword
	if password == "" {
		fmt.Fprintf(os.Stderr, "RCON password for %s: ", target)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}
		password = string(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := rcon.Dial(ctx, srv.RconHost, srv.RconPort, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	out, err := session.Execute(command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(strings.TrimSpace(out))
}

// cmdPlayers shows who is playing on a server
func cmdPlayers(args []string) {
	fs := flag.NewFlagSet("players", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)
	rest := fs.Args()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hlna players <server>")
		os.Exit(1)
	}
	target := rest[0]

	cfg := loadConfig(*configPath)
	cluster := ark.NewCluster(&cfg.Ark, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	players, err := cluster.ListPlayers(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list players: %v\n", err)
		os.Exit(1)
	}
	if len(players) == 0 {
		fmt.Printf("No players on %s\n", target)
		return
	}
	for _, p := range players {
		fmt.Printf("%d. %s\n", p.Slot, p.Name)
	}
}
