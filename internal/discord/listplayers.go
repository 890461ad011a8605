package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// handleListPlayers reports who is connected to the chosen server.
func (b *Bot) handleListPlayers(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, target string) {
	srv, ok := b.cfg.Ark.Server(target)
	if !ok {
		b.editComplex(s, i, fmt.Sprintf("I don't know a server called **%s**.", target), nil)
		return
	}

	players, err := b.cluster.ListPlayers(ctx, target)
	if err != nil {
		b.log.Error().Err(err).Str("target", target).Msg("failed to list players")
		b.editComplex(s, i, fmt.Sprintf("I couldn't reach **%s**. It may be offline.", srv.Label()), nil)
		return
	}

	if len(players) == 0 {
		b.editComplex(s, i, fmt.Sprintf("Nobody is playing on **%s** right now.", srv.Label()), nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%d** online on **%s**:\n", len(players), srv.Label())
	for _, p := range players {
		fmt.Fprintf(&sb, "%d. %s\n", p.Slot, p.Name)
	}
	b.editComplex(s, i, sb.String(), nil)
}
