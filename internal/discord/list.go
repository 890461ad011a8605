package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/axieum/hlna/internal/docker"
)

// handleList reports the running state of every configured server, with
// player counts for the ones that are up and reachable.
func (b *Bot) handleList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	services, err := b.compose.Services(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to list services")
		b.editComplex(s, i, "I couldn't reach the server host. Try again later.", nil)
		return
	}

	states := make(map[string]docker.ServiceState, len(services))
	for _, svc := range services {
		states[svc.Name] = svc
	}

	var sb strings.Builder
	sb.WriteString("**Servers**\n")
	for _, srv := range b.cfg.Ark.Servers {
		svc, deployed := states[srv.DockerService]
		switch {
		case !deployed:
			fmt.Fprintf(&sb, "- %s — not deployed\n", srv.Label())
		case svc.Running():
			fmt.Fprintf(&sb, "- %s — 🟢 %s%s\n", srv.Label(), svc.Status, b.playerCount(ctx, srv.Name))
		default:
			fmt.Fprintf(&sb, "- %s — 🔴 %s\n", srv.Label(), svc.State)
		}
	}
	b.editComplex(s, i, sb.String(), nil)
}

// playerCount returns a ", N playing" suffix, or nothing when the server
// has no console or cannot be reached.
func (b *Bot) playerCount(ctx context.Context, name string) string {
	srv, ok := b.cfg.Ark.Server(name)
	if !ok || !srv.HasRcon() {
		return ""
	}
	players, err := b.cluster.ListPlayers(ctx, name)
	if err != nil {
		b.log.Warn().Err(err).Str("target", name).Msg("failed to count players")
		return ""
	}
	return fmt.Sprintf(", %d playing", len(players))
}
